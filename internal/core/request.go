// AngelaMos | 2026
// request.go

package core

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// QueryInt reads an integer query parameter, returning fallback when it is
// absent or malformed.
func QueryInt(r *http.Request, key string, fallback int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return n
	}
	return fallback
}

// PathID returns the named route parameter in canonical UUID form. Every
// resource id is a UUID, so ok is false for anything that could never
// match a row.
func PathID(r *http.Request, name string) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return "", false
	}
	return id.String(), true
}
