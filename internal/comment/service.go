// AngelaMos | 2026
// service.go

package comment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
)

type PostLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo  Repository
	posts PostLookup
	roles middleware.RoleProvider
}

func NewService(
	repo Repository,
	posts PostLookup,
	roles middleware.RoleProvider,
) *Service {
	return &Service{repo: repo, posts: posts, roles: roles}
}

func (s *Service) Create(
	ctx context.Context,
	authorID, postID string,
	req CommentRequest,
) (*CommentResponse, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	c := &Comment{
		ID:       uuid.New().String(),
		PostID:   postID,
		AuthorID: authorID,
		Body:     req.Body,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	resp := ToResponse(created)
	return &resp, nil
}

func (s *Service) List(
	ctx context.Context,
	params ListParams,
) ([]CommentResponse, int, error) {
	if err := s.requirePost(ctx, params.PostID); err != nil {
		return nil, 0, err
	}

	comments, total, err := s.repo.ListByPost(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, ToResponse(&comments[i]))
	}

	return out, total, nil
}

func (s *Service) Update(
	ctx context.Context,
	requesterID, id string,
	req CommentRequest,
) (*CommentResponse, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := middleware.CanModify(ctx, s.roles, requesterID, c.AuthorID); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	c.Body = req.Body
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	resp := ToResponse(c)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, requesterID, id string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := middleware.CanModify(ctx, s.roles, requesterID, c.AuthorID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) requirePost(ctx context.Context, postID string) error {
	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("post %s: %w", postID, core.ErrNotFound)
	}
	return nil
}
