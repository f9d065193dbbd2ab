package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/baharkarakas/skillstack-backend/internal/models"
	"github.com/baharkarakas/skillstack-backend/internal/repository"
)

const (
	usersCollection     = "users"
	auditLogsCollection = "audit_logs"
)

// withoutCredential hides the hash on every read that does not ask for it.
var withoutCredential = bson.M{"password_hash": 0}

type usersRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUsers(c *mongo.Collection) repository.Users {
	return &usersRepo{coll: c, now: time.Now}
}

func (r *usersRepo) FindByEmailOrUsername(ctx context.Context, email, username string) (models.User, error) {
	filter := bson.M{"$or": bson.A{bson.M{"email": email}, bson.M{"username": username}}}
	return r.findOne(ctx, "find user by email or username", filter, false)
}

func (r *usersRepo) FindByEmail(ctx context.Context, email string, withCredential bool) (models.User, error) {
	return r.findOne(ctx, "find user by email", bson.M{"email": email}, withCredential)
}

func (r *usersRepo) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, "find user by id", bson.M{"_id": id}, false)
}

func (r *usersRepo) findOne(ctx context.Context, op string, filter bson.M, withCredential bool) (models.User, error) {
	opts := options.FindOne()
	if !withCredential {
		opts.SetProjection(withoutCredential)
	}
	var u models.User
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&u); err != nil {
		return models.User{}, mapErr(op, err)
	}
	return u, nil
}

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.LastActiveAt.IsZero() {
		u.LastActiveAt = u.CreatedAt
	}
	u.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		return models.User{}, mapErr("insert user", err)
	}
	return u.Sanitized(), nil
}

func (r *usersRepo) Save(ctx context.Context, u models.User) (models.User, error) {
	set := bson.M{
		"username":       u.Username,
		"email":          u.Email,
		"level":          u.Level,
		"xp":             u.XP,
		"streak":         u.Streak,
		"last_active_at": u.LastActiveAt,
		"profile":        u.Profile,
		"updated_at":     r.now().UTC(),
	}
	if u.PasswordHash != "" {
		set["password_hash"] = u.PasswordHash
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutCredential)

	var saved models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": u.ID}, bson.M{"$set": set}, opts).Decode(&saved)
	if err != nil {
		return models.User{}, mapErr("update user", err)
	}
	return saved, nil
}

// EnsureIndexes creates the unique indexes backing duplicate detection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return repository.Wrap("create user indexes", err)
}

func mapErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		switch dupIndex(err) {
		case "email_1":
			return &repository.DuplicateFieldError{Field: "email"}
		case "username_1":
			return &repository.DuplicateFieldError{Field: "username"}
		}
	}
	return repository.Wrap(op, err)
}

// dupIndex returns the index named by an E11000 message
// ("... index: email_1 dup key: { ... }"). The duplicated value comes after
// the index name, so only the first "index: " token is read.
func dupIndex(err error) string {
	msgs := []string{err.Error()}
	var we mongo.WriteException
	if errors.As(err, &we) {
		msgs = msgs[:0]
		for _, e := range we.WriteErrors {
			msgs = append(msgs, e.Message)
		}
	}
	for _, msg := range msgs {
		_, rest, ok := strings.Cut(msg, "index: ")
		if !ok {
			continue
		}
		if name, _, _ := strings.Cut(rest, " "); name != "" {
			return name
		}
	}
	return ""
}
