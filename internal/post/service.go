// AngelaMos | 2026
// service.go

package post

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/media"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
)

type MediaUploader interface {
	UploadPostMedia(ctx context.Context, postID string, r io.Reader) (*media.Object, error)
	Remove(ctx context.Context, key string)
	URL(key string) string
}

type Service struct {
	repo  Repository
	roles middleware.RoleProvider
	media MediaUploader
}

func NewService(
	repo Repository,
	roles middleware.RoleProvider,
	uploads MediaUploader,
) *Service {
	return &Service{
		repo:  repo,
		roles: roles,
		media: uploads,
	}
}

func (s *Service) Create(
	ctx context.Context,
	authorID string,
	req CreatePostRequest,
) (*PostResponse, error) {
	if authorID == "" {
		return nil, fmt.Errorf("create post: %w", core.ErrUnauthorized)
	}

	p := &Post{
		ID:       uuid.New().String(),
		AuthorID: authorID,
		Title:    req.Title,
		Body:     req.Body,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	return s.Get(ctx, p.ID)
}

func (s *Service) Get(ctx context.Context, id string) (*PostResponse, error) {
	view, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(view)
	return &resp, nil
}

func (s *Service) List(
	ctx context.Context,
	params ListPostsParams,
) ([]PostResponse, int, error) {
	views, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	out := make([]PostResponse, 0, len(views))
	for i := range views {
		out = append(out, s.toResponse(&views[i]))
	}

	return out, total, nil
}

func (s *Service) Update(
	ctx context.Context,
	requesterID, id string,
	req UpdatePostRequest,
) (*PostResponse, error) {
	view, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := middleware.CanModify(ctx, s.roles, requesterID, view.AuthorID); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	p := view.Post
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Body != nil {
		p.Body = *req.Body
	}

	if err := s.repo.Update(ctx, &p); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, requesterID, id string) error {
	view, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := middleware.CanModify(ctx, s.roles, requesterID, view.AuthorID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	for _, key := range view.Media {
		s.media.Remove(ctx, key)
	}

	return nil
}

// AttachMedia uploads a file and appends it to the post. Only the author
// may attach media.
func (s *Service) AttachMedia(
	ctx context.Context,
	requesterID, id string,
	file io.Reader,
) (*media.Object, error) {
	view, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if requesterID != view.AuthorID {
		return nil, fmt.Errorf("attach media: %w", core.ErrForbidden)
	}

	obj, err := s.media.UploadPostMedia(ctx, id, file)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddMedia(ctx, id, obj.Key); err != nil {
		s.media.Remove(ctx, obj.Key)
		return nil, err
	}

	return obj, nil
}

func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *Service) toResponse(v *View) PostResponse {
	urls := make([]string, 0, len(v.Media))
	for _, key := range v.Media {
		urls = append(urls, s.media.URL(key))
	}

	return PostResponse{
		ID: v.ID,
		Author: Author{
			ID:       v.AuthorID,
			Username: v.AuthorUsername,
		},
		Title:        v.Title,
		Body:         v.Body,
		Media:        urls,
		CommentCount: v.CommentCount,
		LikeCount:    v.LikeCount,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}
