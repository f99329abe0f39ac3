// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

type stubVerifier map[string]error

func (s stubVerifier) VerifyAccessToken(_ context.Context, token string) (*AccessTokenClaims, error) {
	if err, ok := s[token]; ok && err != nil {
		return nil, err
	}
	return &AccessTokenClaims{UserID: "user-" + token, TokenID: "jti-" + token, ExpiresAt: time.Now().Add(time.Minute)}, nil
}

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s stubRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return s.revoked[tokenID], s.err
}

type stubRoles map[string]string

func (s stubRoles) GetRole(_ context.Context, userID string) (string, error) {
	role, ok := s[userID]
	if !ok {
		return "", core.ErrNotFound
	}
	return role, nil
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-User", GetUserID(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticator(t *testing.T) {
	verifier := stubVerifier{
		"expired": core.ErrTokenExpired,
		"bad":     errors.New("signature mismatch"),
	}
	revocations := stubRevocations{revoked: map[string]bool{"jti-revoked": true}}
	h := Authenticator(verifier, revocations)(echoUser())

	cases := []struct {
		token  string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"expired", http.StatusForbidden},
		{"bad", http.StatusForbidden},
		{"revoked", http.StatusForbidden},
		{"ok", http.StatusOK},
	}

	for _, tc := range cases {
		rec := serve(h, tc.token)
		assert.Equal(t, tc.status, rec.Code, "token %q", tc.token)
	}

	assert.Equal(t, "user-ok", serve(h, "ok").Header().Get("X-User"))
}

func TestAuthenticator_RevocationFailsOpen(t *testing.T) {
	h := Authenticator(stubVerifier{}, stubRevocations{err: errors.New("redis down")})(echoUser())

	rec := serve(h, "ok")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	h := OptionalAuth(stubVerifier{"bad": core.ErrTokenInvalid})(echoUser())

	assert.Equal(t, "user-ok", serve(h, "ok").Header().Get("X-User"))
	assert.Empty(t, serve(h, "bad").Header().Get("X-User"))
	assert.Empty(t, serve(h, "").Header().Get("X-User"))
	assert.Equal(t, http.StatusOK, serve(h, "bad").Code)
}

func TestExtractToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"abc":          "",
		"":             "",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		assert.Equal(t, want, ExtractToken(req), header)
	}
}

func TestRequireAdmin(t *testing.T) {
	roles := stubRoles{"user-root": "admin", "user-alice": "user"}
	h := Authenticator(stubVerifier{}, nil)(RequireAdmin(roles)(echoUser()))

	assert.Equal(t, http.StatusOK, serve(h, "root").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, "alice").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, "ghost").Code)
}

func TestCanModify(t *testing.T) {
	roles := stubRoles{"root": "admin", "alice": "user"}
	ctx := context.Background()

	require.NoError(t, CanModify(ctx, roles, "alice", "alice"))
	require.NoError(t, CanModify(ctx, roles, "root", "alice"))
	assert.ErrorIs(t, CanModify(ctx, roles, "alice", "bob"), core.ErrForbidden)
	assert.ErrorIs(t, CanModify(ctx, roles, "ghost", "bob"), core.ErrForbidden)
	assert.ErrorIs(t, CanModify(ctx, roles, "", "bob"), core.ErrUnauthorized)
}
