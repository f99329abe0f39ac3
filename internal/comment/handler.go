// AngelaMos | 2026
// handler.go

package comment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Get("/posts/{postID}/comments", h.List)

	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/posts/{postID}/comments", h.Create)
		r.Put("/comments/{commentID}", h.Update)
		r.Delete("/comments/{commentID}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	postID, ok := core.PathID(r, "postID")
	if !ok {
		core.NotFound(w, "post")
		return
	}

	params := ListParams{
		PostID:   postID,
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 50),
	}
	params.Normalize()

	comments, total, err := h.service.List(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, comments, params.Page, params.PageSize, total)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	postID, ok := core.PathID(r, "postID")
	if !ok {
		core.NotFound(w, "post")
		return
	}

	var req CommentRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Create(
		r.Context(),
		middleware.GetUserID(r.Context()),
		postID,
		req,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	commentID, ok := core.PathID(r, "commentID")
	if !ok {
		core.NotFound(w, "comment")
		return
	}

	var req CommentRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Update(
		r.Context(),
		middleware.GetUserID(r.Context()),
		commentID,
		req,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID, ok := core.PathID(r, "commentID")
	if !ok {
		core.NotFound(w, "comment")
		return
	}

	err := h.service.Delete(
		r.Context(),
		middleware.GetUserID(r.Context()),
		commentID,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
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
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "resource")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "only the author or an admin can modify this comment")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "")
	default:
		core.InternalServerError(w, err)
	}
}
