// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

type ContentStats struct {
	Users        int64 `db:"users"         json:"users"`
	Posts        int64 `db:"posts"         json:"posts"`
	Comments     int64 `db:"comments"      json:"comments"`
	Likes        int64 `db:"likes"         json:"likes"`
	LiveSessions int64 `db:"live_sessions" json:"live_sessions"`
}

type Repository interface {
	ContentStats(ctx context.Context) (*ContentStats, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Live sessions are the refresh tokens currently held by active accounts.
func (r *repository) ContentStats(ctx context.Context) (*ContentStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL) AS users,
			(SELECT COUNT(*) FROM posts) AS posts,
			(SELECT COUNT(*) FROM comments) AS comments,
			(SELECT COUNT(*) FROM likes) AS likes,
			(SELECT COALESCE(SUM(cardinality(tokens)), 0)
				FROM users WHERE deleted_at IS NULL) AS live_sessions`

	var stats ContentStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("content stats: %w", err)
	}
	return &stats, nil
}
