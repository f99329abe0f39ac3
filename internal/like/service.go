// AngelaMos | 2026
// service.go

package like

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

type PostLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Summary struct {
	Count int  `json:"count"`
	Liked bool `json:"liked"`
}

type Service struct {
	repo  Repository
	posts PostLookup
}

func NewService(repo Repository, posts PostLookup) *Service {
	return &Service{repo: repo, posts: posts}
}

// Like records userID's like on postID. created is false when the like
// already existed.
func (s *Service) Like(
	ctx context.Context,
	userID, postID string,
) (summary *Summary, created bool, err error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, false, err
	}

	created, err = s.repo.Add(ctx, postID, userID)
	if err != nil {
		return nil, false, err
	}

	summary, err = s.Summary(ctx, postID, userID)
	if err != nil {
		return nil, false, err
	}

	return summary, created, nil
}

func (s *Service) Unlike(ctx context.Context, userID, postID string) error {
	if err := s.requirePost(ctx, postID); err != nil {
		return err
	}

	if _, err := s.repo.Remove(ctx, postID, userID); err != nil {
		return err
	}
	return nil
}

func (s *Service) Get(
	ctx context.Context,
	postID, viewerID string,
) (*Summary, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	return s.Summary(ctx, postID, viewerID)
}

// Summary counts likes on postID; Liked is only set for a known viewer.
func (s *Service) Summary(
	ctx context.Context,
	postID, viewerID string,
) (*Summary, error) {
	count, err := s.repo.Count(ctx, postID)
	if err != nil {
		return nil, err
	}

	out := &Summary{Count: count}
	if viewerID == "" {
		return out, nil
	}

	out.Liked, err = s.repo.Exists(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}

	return out, nil
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
