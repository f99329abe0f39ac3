// AngelaMos | 2026
// dto.go

package post

import (
	"time"
)

type CreatePostRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
	Body  string `json:"body"  validate:"required,min=1,max=10000"`
}

type UpdatePostRequest struct {
	Title *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Body  *string `json:"body,omitempty"  validate:"omitempty,min=1,max=10000"`
}

type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type PostResponse struct {
	ID           string    `json:"id"`
	Author       Author    `json:"author"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Media        []string  `json:"media"`
	CommentCount int       `json:"comment_count"`
	LikeCount    int       `json:"like_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ListPostsParams struct {
	Page     int
	PageSize int
	AuthorID string
}

func (p *ListPostsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListPostsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
