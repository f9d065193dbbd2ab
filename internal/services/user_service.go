package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/baharkarakas/skillstack-backend/internal/activity"
	"github.com/baharkarakas/skillstack-backend/internal/auth"
	"github.com/baharkarakas/skillstack-backend/internal/metrics"
	"github.com/baharkarakas/skillstack-backend/internal/models"
	repo "github.com/baharkarakas/skillstack-backend/internal/repository"
	"github.com/baharkarakas/skillstack-backend/internal/worker"
)

const maxBioLen = 280

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthResult struct {
	User      models.User
	Token     string
	LeveledUp bool
}

type UserService struct {
	users  repo.Users
	audit  repo.AuditLogs
	hasher *auth.Hasher
	tokens TokenIssuer
	wp     *worker.Pool
	log    *slog.Logger
	now    func() time.Time
}

// NewUserService wires the account flows. wp may be nil, in which case audit
// entries are written inline.
func NewUserService(users repo.Users, audit repo.AuditLogs, h *auth.Hasher, tokens TokenIssuer, wp *worker.Pool, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{users: users, audit: audit, hasher: h, tokens: tokens, wp: wp, log: log, now: time.Now}
}

func (s *UserService) SetClock(now func() time.Time) { s.now = now }

func (s *UserService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return AuthResult{}, &models.ValidationError{Msg: "Please provide username, email, and password"}
	}

	u := models.NewUser(in.Username, in.Email, s.now().UTC())
	if err := u.Validate(); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return AuthResult{}, err
	}
	if err := models.ValidatePassword(in.Password); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return AuthResult{}, err
	}

	existing, err := s.users.FindByEmailOrUsername(ctx, u.Email, u.Username)
	switch {
	case err == nil:
		field := "username"
		if existing.Email == u.Email {
			field = "email"
		}
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return AuthResult{}, &repo.DuplicateFieldError{Field: field}
	case !errors.Is(err, repo.ErrNotFound):
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return AuthResult{}, err
	}

	if _, err := s.hasher.HashIfChanged(&u, in.Password); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return AuthResult{}, err
	}

	// The store constraint still decides a race between two registrations.
	created, err := s.users.Create(ctx, u)
	if err != nil {
		var dup *repo.DuplicateFieldError
		if errors.As(err, &dup) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		} else {
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return AuthResult{}, err
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	s.record(created.ID, models.AuditUserRegistered, map[string]any{"username": created.Username})
	return AuthResult{User: created, Token: token}, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return AuthResult{}, &models.ValidationError{Msg: "Please provide email and password"}
	}

	u, err := s.users.FindByEmail(ctx, email, true)
	if errors.Is(err, repo.ErrNotFound) {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return AuthResult{}, err
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return AuthResult{}, err
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return AuthResult{}, ErrInvalidCredentials
	}

	u = activity.ApplyLogin(u, s.now().UTC())
	u, leveled := activity.CheckLevelUp(u)
	// Untouched credential: Save keeps the stored hash.
	u.PasswordHash = ""

	saved, err := s.users.Save(ctx, u)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return AuthResult{}, err
	}

	token, err := s.tokens.Issue(saved.ID)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	s.record(saved.ID, models.AuditUserLogin, map[string]any{"streak": saved.Streak})
	if leveled {
		metrics.LevelUpsTotal.Inc()
		s.record(saved.ID, models.AuditUserLevelUp, map[string]any{"level": saved.Level, "xp": saved.XP})
	}
	return AuthResult{User: saved, Token: token, LeveledUp: leveled}, nil
}

func (s *UserService) Me(ctx context.Context, id string) (models.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id, bio string) (models.User, error) {
	bio = strings.TrimSpace(bio)
	if utf8.RuneCountInString(bio) > maxBioLen {
		return models.User{}, &models.ValidationError{Field: "bio", Msg: fmt.Sprintf("Bio must be at most %d characters", maxBioLen)}
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	u.Profile.Bio = bio

	saved, err := s.users.Save(ctx, u)
	if err != nil {
		return models.User{}, err
	}
	s.record(saved.ID, models.AuditUserProfileUpdated, nil)
	return saved, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id, current, next string) error {
	if current == "" || next == "" {
		return &models.ValidationError{Msg: "Please provide current and new password"}
	}
	if err := models.ValidatePassword(next); err != nil {
		return err
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	withHash, err := s.users.FindByEmail(ctx, u.Email, true)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(current, withHash.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWrongPassword
	}

	if _, err := s.hasher.HashIfChanged(&withHash, next); err != nil {
		return err
	}
	if _, err := s.users.Save(ctx, withHash); err != nil {
		return err
	}
	s.record(id, models.AuditUserPasswordChanged, nil)
	return nil
}

// record writes an audit entry off the request path. Failures are only logged.
func (s *UserService) record(userID, action string, details map[string]any) {
	if s.audit == nil {
		return
	}
	entry := models.AuditLog{
		EntityType: "user",
		EntityID:   &userID,
		Action:     action,
		Details:    details,
		CreatedAt:  s.now().UTC(),
	}
	write := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.audit.Create(ctx, entry); err != nil {
			s.log.Warn("audit log write failed", "action", action, "user_id", userID, "err", err)
		}
	}
	if s.wp == nil {
		write()
		return
	}
	if err := s.wp.Submit(write); err != nil {
		s.log.Warn("audit log dropped", "action", action, "user_id", userID, "err", err)
	}
}
