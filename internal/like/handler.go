// AngelaMos | 2026
// handler.go

package like

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, optionalAuth func(http.Handler) http.Handler,
) {
	r.With(optionalAuth).Get("/posts/{postID}/likes", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/posts/{postID}/likes", h.Like)
		r.Delete("/posts/{postID}/likes", h.Unlike)
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	postID, ok := core.PathID(r, "postID")
	if !ok {
		core.NotFound(w, "post")
		return
	}

	summary, err := h.service.Get(
		r.Context(),
		postID,
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, summary)
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	postID, ok := core.PathID(r, "postID")
	if !ok {
		core.NotFound(w, "post")
		return
	}

	summary, created, err := h.service.Like(
		r.Context(),
		middleware.GetUserID(r.Context()),
		postID,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	if created {
		core.Created(w, summary)
		return
	}
	core.OK(w, summary)
}

func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	postID, ok := core.PathID(r, "postID")
	if !ok {
		core.NotFound(w, "post")
		return
	}

	err := h.service.Unlike(
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

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "post")
		return
	}
	core.InternalServerError(w, err)
}
