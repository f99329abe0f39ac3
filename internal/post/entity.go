// AngelaMos | 2026
// entity.go

package post

import (
	"time"

	"github.com/lib/pq"
)

type Post struct {
	ID        string         `db:"id"`
	AuthorID  string         `db:"author_id"`
	Title     string         `db:"title"`
	Body      string         `db:"body"`
	Media     pq.StringArray `db:"media"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// View is a post joined with its author and engagement counts.
type View struct {
	Post
	AuthorUsername string `db:"author_username"`
	CommentCount   int    `db:"comment_count"`
	LikeCount      int    `db:"like_count"`
}
