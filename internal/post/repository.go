// AngelaMos | 2026
// repository.go

package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id string) (*View, error)
	List(ctx context.Context, params ListPostsParams) ([]View, int, error)
	Update(ctx context.Context, post *Post) error
	AddMedia(ctx context.Context, id, key string) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Posts whose author is soft-deleted are hidden from every read.
const liveAuthorJoin = `
		JOIN users u ON u.id = p.author_id AND u.deleted_at IS NULL`

const viewSelect = `
		SELECT p.id, p.author_id, p.title, p.body, p.media,
		       p.created_at, p.updated_at,
		       u.username AS author_username,
		       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count,
		       (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS like_count
		FROM posts p` + liveAuthorJoin

func (r *repository) Create(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (id, author_id, title, body)
		VALUES ($1, $2, $3, $4)
		RETURNING media, created_at, updated_at`

	err := r.db.GetContext(ctx, post, query,
		post.ID,
		post.AuthorID,
		post.Title,
		post.Body,
	)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*View, error) {
	query := viewSelect + `
		WHERE p.id = $1`

	var view View
	err := r.db.GetContext(ctx, &view, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get post: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &view, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListPostsParams,
) ([]View, int, error) {
	params.Normalize()

	where := ""
	var args []any
	if params.AuthorID != "" {
		where = " WHERE p.author_id = $1"
		args = append(args, params.AuthorID)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM posts p" + liveAuthorJoin + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query := fmt.Sprintf(`%s%s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`,
		viewSelect, where, len(args)+1, len(args)+2)

	args = append(args, params.PageSize, params.Offset())

	var views []View
	if err := r.db.SelectContext(ctx, &views, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	return views, total, nil
}

func (r *repository) Update(ctx context.Context, post *Post) error {
	query := `
		UPDATE posts
		SET title = $2, body = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &post.UpdatedAt, query,
		post.ID,
		post.Title,
		post.Body,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update post: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	return nil
}

func (r *repository) AddMedia(ctx context.Context, id, key string) error {
	query := `
		UPDATE posts
		SET media = array_append(media, $2), updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, key)
	if err != nil {
		return fmt.Errorf("add post media: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("add post media: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("add post media: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete post: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM posts p` + liveAuthorJoin + `
		WHERE p.id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}

	return exists, nil
}
