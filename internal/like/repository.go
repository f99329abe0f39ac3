// AngelaMos | 2026
// repository.go

package like

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

type Repository interface {
	Add(ctx context.Context, postID, userID string) (bool, error)
	Remove(ctx context.Context, postID, userID string) (bool, error)
	Count(ctx context.Context, postID string) (int, error)
	Exists(ctx context.Context, postID, userID string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Add inserts the like and reports whether a new row was created. The
// composite primary key makes repeated likes a no-op.
func (r *repository) Add(ctx context.Context, postID, userID string) (bool, error) {
	query := `
		INSERT INTO likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("add like: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add like: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) Remove(ctx context.Context, postID, userID string) (bool, error) {
	query := `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("remove like: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove like: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) Count(ctx context.Context, postID string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM likes WHERE post_id = $1`
	if err := r.db.GetContext(ctx, &n, query, postID); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}

func (r *repository) Exists(ctx context.Context, postID, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM likes WHERE post_id = $1 AND user_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, postID, userID); err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return exists, nil
}
