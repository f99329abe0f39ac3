// AngelaMos | 2026
// service.go

package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/metrics"
)

type Kind string

const (
	KindAvatar Kind = "avatar"
	KindPost   Kind = "post"
)

var (
	imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	postTypes  = append(append([]string{}, imageTypes...), "video/mp4")
)

// multipart framing on top of the file itself
const formOverhead = 1 << 20

type Store interface {
	Put(
		ctx context.Context,
		key string,
		body io.Reader,
		size int64,
		contentType string,
	) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type Service struct {
	store   Store
	maxSize int64
}

func NewService(store Store, maxSize int64) *Service {
	return &Service{store: store, maxSize: maxSize}
}

func (s *Service) MaxSize() int64 {
	return s.maxSize
}

func (s *Service) URL(key string) string {
	return s.store.URL(key)
}

func (s *Service) UploadAvatar(
	ctx context.Context,
	userID string,
	r io.Reader,
) (*Object, error) {
	obj, err := s.upload(ctx, "avatars/"+userID+"/", r, imageTypes)
	metrics.Upload(string(KindAvatar), err)
	return obj, err
}

func (s *Service) UploadPostMedia(
	ctx context.Context,
	postID string,
	r io.Reader,
) (*Object, error) {
	obj, err := s.upload(ctx, "posts/"+postID+"/", r, postTypes)
	metrics.Upload(string(KindPost), err)
	return obj, err
}

// Remove deletes key best-effort; failures are logged, never returned.
func (s *Service) Remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "media delete failed", "key", key, "error", err)
	}
}

func (s *Service) upload(
	ctx context.Context,
	prefix string,
	r io.Reader,
	allowed []string,
) (*Object, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	if int64(len(data)) > s.maxSize {
		return nil, core.PayloadTooLargeError(s.maxSize)
	}
	if len(data) == 0 {
		return nil, core.BadRequestError("upload is empty")
	}

	mt := mimetype.Detect(data)
	if !isAllowed(mt, allowed) {
		return nil, core.UnsupportedMediaError(mt.String())
	}

	contentType, _, _ := strings.Cut(mt.String(), ";")
	key := prefix + uuid.New().String() + mt.Extension()
	size := int64(len(data))

	if err := s.store.Put(ctx, key, bytes.NewReader(data), size, contentType); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	return &Object{
		Key:         key,
		URL:         s.store.URL(key),
		ContentType: contentType,
		Size:        size,
	}, nil
}

// FormFile opens a single multipart file field while bounding the whole
// request body. Oversized bodies map to PayloadTooLarge.
func (s *Service) FormFile(
	w http.ResponseWriter,
	r *http.Request,
	field string,
) (multipart.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxSize+formOverhead)

	if err := r.ParseMultipartForm(s.maxSize + formOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, core.PayloadTooLargeError(s.maxSize)
		}
		return nil, core.BadRequestError("invalid multipart form")
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, core.MissingCredentialError(field + " file is required")
	}

	return file, nil
}

func isAllowed(mt *mimetype.MIME, allowed []string) bool {
	for _, a := range allowed {
		if mt.Is(a) {
			return true
		}
	}
	return false
}
