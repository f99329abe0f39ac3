// AngelaMos | 2026
// handler_test.go

package post

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
)

func asAlice(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), "alice")))
	})
}

func TestHandler_PostIDs(t *testing.T) {
	svc, _, _ := newTestService()
	created := createPost(t, svc, "alice")

	r := chi.NewRouter()
	NewHandler(svc, nil).RegisterRoutes(r, asAlice)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"existing", http.MethodGet, "/posts/" + created.ID, "", http.StatusOK},
		{"uppercase id", http.MethodGet, "/posts/" + strings.ToUpper(created.ID), "", http.StatusOK},
		{"malformed get", http.MethodGet, "/posts/abc", "", http.StatusNotFound},
		{"malformed update", http.MethodPut, "/posts/abc", `{"title":"x"}`, http.StatusNotFound},
		{"malformed delete", http.MethodDelete, "/posts/abc", "", http.StatusNotFound},
		{"malformed upload", http.MethodPost, "/posts/abc/media", "", http.StatusNotFound},
		{"malformed author", http.MethodGet, "/posts?author=abc", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
