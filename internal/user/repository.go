// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

var (
	ErrUsernameTaken = fmt.Errorf("username taken: %w", core.ErrDuplicateKey)
	ErrEmailTaken    = fmt.Errorf("email taken: %w", core.ErrDuplicateKey)
)

const emailIndex = "users_email_key"

// Repository persists users. The tokens column is only ever changed by the
// token methods, each a single conditional statement.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Save(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, avatar string) error
	AddToken(ctx context.Context, id, token string) error
	RemoveTokenIfPresent(ctx context.Context, id, token string) (bool, error)
	ClearTokens(ctx context.Context, id string) error
	CountTokens(ctx context.Context, id string) (int, error)
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	DeleteAll(ctx context.Context) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `id, username, email, password_hash, avatar, role, tokens,
		       created_at, updated_at, deleted_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", duplicateError(err))
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE LOWER(username) = LOWER($1) AND deleted_at IS NULL`

	var user User
	err := r.db.GetContext(ctx, &user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by username: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	return &user, nil
}

// Save persists the mutable profile fields. Refresh tokens are excluded so
// a stale in-memory copy can never overwrite a concurrent rotation.
func (r *repository) Save(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, avatar = $4, role = $5, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Username,
		user.Email,
		user.Avatar,
		user.Role,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("save user: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("save user: %w", duplicateError(err))
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "update password", query, id, passwordHash)
}

func (r *repository) UpdateAvatar(ctx context.Context, id, avatar string) error {
	query := `
		UPDATE users
		SET avatar = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "update avatar", query, id, avatar)
}

func (r *repository) AddToken(ctx context.Context, id, token string) error {
	query := `
		UPDATE users
		SET tokens = array_append(tokens, $2)
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "add token", query, id, token)
}

// RemoveTokenIfPresent removes token in one statement and reports whether
// it was a member. Two concurrent callers presenting the same token cannot
// both observe true.
func (r *repository) RemoveTokenIfPresent(
	ctx context.Context,
	id, token string,
) (bool, error) {
	query := `
		UPDATE users
		SET tokens = array_remove(tokens, $2)
		WHERE id = $1 AND deleted_at IS NULL AND $2 = ANY(tokens)`

	result, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return false, fmt.Errorf("remove token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove token: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) ClearTokens(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET tokens = '{}'
		WHERE id = $1`

	return r.execOne(ctx, "clear tokens", query, id)
}

func (r *repository) CountTokens(ctx context.Context, id string) (int, error) {
	query := `
		SELECT COALESCE(array_length(tokens, 1), 0)
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`

	var n int
	err := r.db.GetContext(ctx, &n, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("count tokens: %w", core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}

	return n, nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET deleted_at = NOW(), updated_at = NOW(), tokens = '{}'
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "delete user", query, id)
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(username ILIKE $%d OR email ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, username, email, avatar, role,
		       created_at, updated_at, deleted_at
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

// DeleteAll removes every user row. Used to reset fixtures.
func (r *repository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("delete all users: %w", err)
	}
	return nil
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func duplicateError(err error) error {
	constraint, ok := core.UniqueViolation(err)
	if !ok {
		return err
	}

	if constraint == emailIndex {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
