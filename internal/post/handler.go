// AngelaMos | 2026
// handler.go

package post

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
)

const mediaField = "media"

type FormReader interface {
	FormFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, error)
}

type Handler struct {
	service   *Service
	forms     FormReader
	validator *validator.Validate
}

func NewHandler(service *Service, forms FormReader) *Handler {
	return &Handler{
		service:   service,
		forms:     forms,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Get("/posts", h.List)
	r.Get("/posts/{postID}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/posts", h.Create)
		r.Put("/posts/{postID}", h.Update)
		r.Delete("/posts/{postID}", h.Delete)
		r.Post("/posts/{postID}/media", h.UploadMedia)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListPostsParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 20),
		AuthorID: r.URL.Query().Get("author"),
	}
	params.Normalize()

	if params.AuthorID != "" {
		author, err := uuid.Parse(params.AuthorID)
		if err != nil {
			core.BadRequest(w, "author must be a user id")
			return
		}
		params.AuthorID = author.String()
	}

	posts, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, posts, params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	postID, ok := core.PathID(r, "postID")
	if !ok {
		core.NotFound(w, "post")
		return
	}

	resp, err := h.service.Get(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Create(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	postID, ok := core.PathID(r, "postID")
	if !ok {
		core.NotFound(w, "post")
		return
	}

	var req UpdatePostRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Update(
		r.Context(),
		middleware.GetUserID(r.Context()),
		postID,
		req,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	postID, ok := core.PathID(r, "postID")
	if !ok {
		core.NotFound(w, "post")
		return
	}

	err := h.service.Delete(
		r.Context(),
		middleware.GetUserID(r.Context()),
		postID,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	postID, ok := core.PathID(r, "postID")
	if !ok {
		core.NotFound(w, "post")
		return
	}

	file, err := h.forms.FormFile(w, r, mediaField)
	if err != nil {
		core.JSONError(w, err)
		return
	}
	defer file.Close() //nolint:errcheck // read-only multipart part

	obj, err := h.service.AttachMedia(
		r.Context(),
		middleware.GetUserID(r.Context()),
		postID,
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, obj)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "post")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "only the author or an admin can modify this post")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "")
	default:
		core.InternalServerError(w, err)
	}
}
