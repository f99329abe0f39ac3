// AngelaMos | 2026
// repository_test.go

package user

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

func newRepoWithMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewRepository(sqlx.NewDb(db, "pgx")), mock
}

var userRowColumns = []string{
	"id", "username", "email", "password_hash", "avatar", "role", "tokens",
	"created_at", "updated_at", "deleted_at",
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT .* FROM users\s+WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u1", "alice", "alice@example.com", "hash", "", "user", "{abc,def}", now, now, nil))

	u, err := repo.GetByID(t.Context(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, []string{"abc", "def"}, []string(u.Tokens))
	assert.False(t, u.IsDeleted())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)SELECT .* FROM users`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.GetByID(t.Context(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_GetByUsername_CaseInsensitive(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)WHERE LOWER\(username\) = LOWER\(\$1\)`).
		WithArgs("ALICE").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u1", "alice", "alice@example.com", "hash", "", "user", "{}", now, now, nil))

	u, err := repo.GetByUsername(t.Context(), "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Empty(t, u.Tokens)
}

func TestRepository_Create_DuplicateMapping(t *testing.T) {
	cases := []struct {
		name       string
		constraint string
		want       error
	}{
		{"username", "users_username_key", ErrUsernameTaken},
		{"email", emailIndex, ErrEmailTaken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			mock.ExpectQuery(`(?s)INSERT INTO users`).
				WithArgs("u1", "alice", "alice@example.com", "hash", RoleUser).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tc.constraint})

			err := repo.Create(t.Context(), &User{
				ID:           "u1",
				Username:     "alice",
				Email:        "alice@example.com",
				PasswordHash: "hash",
				Role:         RoleUser,
			})
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, core.ErrDuplicateKey)
		})
	}
}

func TestRepository_Create_OtherError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)INSERT INTO users`).
		WillReturnError(errors.New("connection reset"))

	err := repo.Create(t.Context(), &User{ID: "u1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrDuplicateKey)
}

func TestRepository_AddToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)UPDATE users\s+SET tokens = array_append\(tokens, \$2\)`).
		WithArgs("u1", "digest").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)array_append`).
		WithArgs("gone", "digest").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.AddToken(t.Context(), "u1", "digest"))
	assert.ErrorIs(t, repo.AddToken(t.Context(), "gone", "digest"), core.ErrNotFound)
}

func TestRepository_RemoveTokenIfPresent(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	query := `(?s)SET tokens = array_remove\(tokens, \$2\)\s+WHERE id = \$1 AND deleted_at IS NULL AND \$2 = ANY\(tokens\)`

	mock.ExpectExec(query).
		WithArgs("u1", "digest").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).
		WithArgs("u1", "digest").
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.RemoveTokenIfPresent(t.Context(), "u1", "digest")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveTokenIfPresent(t.Context(), "u1", "digest")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRepository_ClearAndCountTokens(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)SET tokens = '\{\}'`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`(?s)SELECT COALESCE\(array_length\(tokens, 1\), 0\)`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))

	require.NoError(t, repo.ClearTokens(t.Context(), "u1"))

	n, err := repo.CountTokens(t.Context(), "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRepository_SaveExcludesTokens(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)UPDATE users\s+SET username = \$2, email = \$3, avatar = \$4, role = \$5, updated_at = NOW\(\)`).
		WithArgs("u1", "alice", "alice@example.com", "avatars/u1/a.png", RoleUser).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	u := &User{
		ID:       "u1",
		Username: "alice",
		Email:    "alice@example.com",
		Avatar:   "avatars/u1/a.png",
		Role:     RoleUser,
		Tokens:   []string{"stale"},
	}
	require.NoError(t, repo.Save(t.Context(), u))
	assert.Equal(t, now, u.UpdatedAt)
}

func TestRepository_SoftDeleteClearsTokens(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)SET deleted_at = NOW\(\), updated_at = NOW\(\), tokens = '\{\}'`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(t.Context(), "u1"))
}

func TestRepository_ListWithFilters(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE deleted_at IS NULL AND \(username ILIKE \$1 OR email ILIKE \$1\) AND role = \$2`).
		WithArgs(`%50\%%`, RoleAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`(?s)ORDER BY created_at DESC\s+LIMIT \$3 OFFSET \$4`).
		WithArgs(`%50\%%`, RoleAdmin, 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "avatar", "role", "created_at", "updated_at", "deleted_at",
		}).AddRow("u1", "admin50", "a@example.com", "", RoleAdmin, now, now, nil))

	users, total, err := repo.List(t.Context(), ListUsersParams{
		Page:     2,
		PageSize: 10,
		Search:   "50%",
		Role:     RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "admin50", users[0].Username)
}
