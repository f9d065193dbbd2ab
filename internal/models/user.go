package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Minimum lengths count characters; MaxPasswordLen counts bytes.
const (
	DefaultLevel = 1
	DefaultBio   = "👨‍💻"

	MinUsernameLen = 3
	MinPasswordLen = 6
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordLen = 72
)

type Profile struct {
	Bio string `json:"bio" bson:"bio"`
}

type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash,omitempty"`
	Level        int       `json:"level" bson:"level"`
	XP           int       `json:"xp" bson:"xp"`
	Streak       int       `json:"streak" bson:"streak"`
	LastActiveAt time.Time `json:"last_active_at" bson:"last_active_at"`
	Profile      Profile   `json:"profile" bson:"profile"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// NewUser returns a normalized user carrying the registration defaults.
// ID and the password hash are filled in later by the write path.
func NewUser(username, email string, now time.Time) User {
	u := User{
		Username:     username,
		Email:        email,
		Level:        DefaultLevel,
		LastActiveAt: now,
		Profile:      Profile{Bio: DefaultBio},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	u.Normalize()
	return u
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = NormalizeEmail(u.Email)
}

func (u *User) Validate() error {
	if utf8.RuneCountInString(u.Username) < MinUsernameLen {
		return &ValidationError{Field: "username", Msg: "Username must be at least 3 characters"}
	}
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return &ValidationError{Field: "email", Msg: "Please provide a valid email"}
	}
	if u.Level < DefaultLevel {
		return &ValidationError{Field: "level", Msg: "level must be >= 1"}
	}
	if u.XP < 0 || u.Streak < 0 {
		return &ValidationError{Field: "progress", Msg: "xp and streak must be >= 0"}
	}
	return nil
}

// ValidatePassword checks a plaintext password before it reaches the hasher.
func ValidatePassword(p string) error {
	if utf8.RuneCountInString(p) < MinPasswordLen {
		return &ValidationError{Field: "password", Msg: "Password must be at least 6 characters"}
	}
	if len(p) > MaxPasswordLen {
		return &ValidationError{Field: "password", Msg: "Password must be at most 72 bytes"}
	}
	return nil
}

// Sanitized drops the credential so the record can leave the service layer.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
