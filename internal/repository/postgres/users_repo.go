// internal/repository/postgres/users_repo.go
package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baharkarakas/skillstack-backend/internal/models"
	"github.com/baharkarakas/skillstack-backend/internal/repository"
)

const (
	uniqueViolation = "23505"

	emailConstraint    = "users_email_key"
	usernameConstraint = "users_username_key"
)

var (
	publicColumns = []string{
		"id", "username", "email", "level", "xp", "streak",
		"last_active_at", "bio", "created_at", "updated_at",
	}
	credentialColumns = append(append([]string{}, publicColumns...), "password_hash")
)

type usersRepo struct {
	db DBTX
	sb sq.StatementBuilderType
}

func NewUsers(db DBTX) repository.Users {
	return &usersRepo{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (r *usersRepo) FindByEmailOrUsername(ctx context.Context, email, username string) (models.User, error) {
	q, args, err := r.sb.Select(publicColumns...).
		From("users").
		Where(sq.Or{sq.Eq{"email": email}, sq.Eq{"username": username}}).
		Limit(1).
		ToSql()
	if err != nil {
		return models.User{}, repository.Wrap("build find user", err)
	}
	u, err := scanUser(r.db.QueryRow(ctx, q, args...), false)
	return u, mapErr("find user by email or username", err)
}

func (r *usersRepo) FindByEmail(ctx context.Context, email string, withCredential bool) (models.User, error) {
	cols := publicColumns
	if withCredential {
		cols = credentialColumns
	}
	q, args, err := r.sb.Select(cols...).From("users").Where(sq.Eq{"email": email}).ToSql()
	if err != nil {
		return models.User{}, repository.Wrap("build find user", err)
	}
	u, err := scanUser(r.db.QueryRow(ctx, q, args...), withCredential)
	return u, mapErr("find user by email", err)
}

func (r *usersRepo) FindByID(ctx context.Context, id string) (models.User, error) {
	q, args, err := r.sb.Select(publicColumns...).From("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return models.User{}, repository.Wrap("build find user", err)
	}
	u, err := scanUser(r.db.QueryRow(ctx, q, args...), false)
	return u, mapErr("find user by id", err)
}

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.LastActiveAt.IsZero() {
		u.LastActiveAt = u.CreatedAt
	}
	q, args, err := r.sb.Insert("users").
		Columns("id", "username", "email", "password_hash", "level", "xp", "streak", "last_active_at", "bio", "created_at", "updated_at").
		Values(u.ID, u.Username, u.Email, u.PasswordHash, u.Level, u.XP, u.Streak, u.LastActiveAt, u.Profile.Bio, u.CreatedAt, u.CreatedAt).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return models.User{}, repository.Wrap("build insert user", err)
	}
	if err := r.db.QueryRow(ctx, q, args...).Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return models.User{}, mapErr("insert user", err)
	}
	return u.Sanitized(), nil
}

func (r *usersRepo) Save(ctx context.Context, u models.User) (models.User, error) {
	q, args, err := r.sb.Update("users").
		Set("username", u.Username).
		Set("email", u.Email).
		Set("password_hash", sq.Expr("COALESCE(NULLIF(?, ''), password_hash)", u.PasswordHash)).
		Set("level", u.Level).
		Set("xp", u.XP).
		Set("streak", u.Streak).
		Set("last_active_at", u.LastActiveAt).
		Set("bio", u.Profile.Bio).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": u.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return models.User{}, repository.Wrap("build update user", err)
	}
	if err := r.db.QueryRow(ctx, q, args...).Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return models.User{}, mapErr("update user", err)
	}
	return u.Sanitized(), nil
}

func scanUser(row pgx.Row, withCredential bool) (models.User, error) {
	var u models.User
	dest := []any{
		&u.ID, &u.Username, &u.Email, &u.Level, &u.XP, &u.Streak,
		&u.LastActiveAt, &u.Profile.Bio, &u.CreatedAt, &u.UpdatedAt,
	}
	if withCredential {
		dest = append(dest, &u.PasswordHash)
	}
	err := row.Scan(dest...)
	return u, err
}

func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case emailConstraint:
			return &repository.DuplicateFieldError{Field: "email"}
		case usernameConstraint:
			return &repository.DuplicateFieldError{Field: "username"}
		}
	}
	return repository.Wrap(op, err)
}
