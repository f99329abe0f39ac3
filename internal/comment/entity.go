// AngelaMos | 2026
// entity.go

package comment

import (
	"time"
)

type Comment struct {
	ID             string    `db:"id"`
	PostID         string    `db:"post_id"`
	AuthorID       string    `db:"author_id"`
	AuthorUsername string    `db:"author_username"`
	Body           string    `db:"body"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
