// AngelaMos | 2026
// repository.go

package comment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id string) (*Comment, error)
	ListByPost(ctx context.Context, params ListParams) ([]Comment, int, error)
	Update(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const commentSelect = `
		SELECT c.id, c.post_id, c.author_id, u.username AS author_username,
		       c.body, c.created_at, c.updated_at
		FROM comments c
		JOIN users u ON u.id = c.author_id`

func (r *repository) Create(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (id, post_id, author_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, c, query, c.ID, c.PostID, c.AuthorID, c.Body)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Comment, error) {
	query := commentSelect + `
		WHERE c.id = $1`

	var c Comment
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get comment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &c, nil
}

func (r *repository) ListByPost(
	ctx context.Context,
	params ListParams,
) ([]Comment, int, error) {
	params.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM comments WHERE post_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, params.PostID); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query := commentSelect + `
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC
		LIMIT $2 OFFSET $3`

	var comments []Comment
	err := r.db.SelectContext(ctx, &comments, query,
		params.PostID,
		params.PageSize,
		params.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	return comments, total, nil
}

func (r *repository) Update(ctx context.Context, c *Comment) error {
	query := `
		UPDATE comments
		SET body = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &c.UpdatedAt, query, c.ID, c.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update comment: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete comment: %w", core.ErrNotFound)
	}

	return nil
}
