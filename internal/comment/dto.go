// AngelaMos | 2026
// dto.go

package comment

import (
	"time"
)

type CommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	Author    Author    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListParams struct {
	PostID   string
	Page     int
	PageSize int
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 50
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToResponse(c *Comment) CommentResponse {
	return CommentResponse{
		ID:     c.ID,
		PostID: c.PostID,
		Author: Author{
			ID:       c.AuthorID,
			Username: c.AuthorUsername,
		},
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
