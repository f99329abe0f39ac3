// AngelaMos | 2026
// repository_test.go

package post

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
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

var viewColumns = []string{
	"id", "author_id", "title", "body", "media", "created_at", "updated_at",
	"author_username", "comment_count", "like_count",
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)FROM posts p\s+JOIN users u ON u.id = p.author_id AND u.deleted_at IS NULL\s+WHERE p.id = \$1`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(viewColumns).
			AddRow("p1", "u1", "hello", "world", "{posts/p1/a.png}", now, now, "alice", 3, 7))

	v, err := repo.GetByID(t.Context(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "alice", v.AuthorUsername)
	assert.Equal(t, 3, v.CommentCount)
	assert.Equal(t, 7, v.LikeCount)
	assert.Equal(t, []string{"posts/p1/a.png"}, []string(v.Media))
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM posts p`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(viewColumns))

	_, err := repo.GetByID(t.Context(), "p1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_ListByAuthor(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT COUNT\(\*\) FROM posts p\s+JOIN users u ON u.id = p.author_id AND u.deleted_at IS NULL WHERE p.author_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`(?s)WHERE p.author_id = \$1\s+ORDER BY p.created_at DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs("u1", 20, 0).
		WillReturnRows(sqlmock.NewRows(viewColumns).
			AddRow("p1", "u1", "hello", "world", "{}", now, now, "alice", 0, 0))

	views, total, err := repo.List(t.Context(), ListPostsParams{AuthorID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, views, 1)
	assert.Equal(t, "p1", views[0].ID)
}

func TestRepository_DeleteMissing(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM posts WHERE id = \$1`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(t.Context(), "p1"), core.ErrNotFound)
}

func TestRepository_AddMedia(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)SET media = array_append\(media, \$2\)`).
		WithArgs("p1", "posts/p1/a.png").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddMedia(t.Context(), "p1", "posts/p1/a.png"))
}

func TestRepository_Exists(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)SELECT EXISTS\(SELECT 1 FROM posts p\s+JOIN users u ON u.id = p.author_id AND u.deleted_at IS NULL\s+WHERE p.id = \$1\)`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(t.Context(), "p1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepository_ListHidesDeletedAuthors(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)SELECT COUNT\(\*\) FROM posts p\s+JOIN users u ON u.id = p.author_id AND u.deleted_at IS NULL$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`(?s)JOIN users u ON u.id = p.author_id AND u.deleted_at IS NULL\s+ORDER BY p.created_at DESC\s+LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(viewColumns))

	views, total, err := repo.List(t.Context(), ListPostsParams{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, views)
}
