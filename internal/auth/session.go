// AngelaMos | 2026
// session.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/metrics"
)

var ErrTokenReuse = errors.New("refresh token reuse detected")

type Credential struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Avatar       string
	Role         string
	CreatedAt    time.Time
}

// CredentialStore owns the per-user set of live refresh tokens. Every
// mutation must be a single atomic statement against durable storage; the
// session manager never caches membership.
type CredentialStore interface {
	FindByID(ctx context.Context, id string) (*Credential, error)
	AddToken(ctx context.Context, userID, token string) error
	RemoveTokenIfPresent(ctx context.Context, userID, token string) (bool, error)
	ClearTokens(ctx context.Context, userID string) error
	CountTokens(ctx context.Context, userID string) (int, error)
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type SessionManager struct {
	codec  *TokenCodec
	store  CredentialStore
	logger *slog.Logger
}

func NewSessionManager(
	codec *TokenCodec,
	store CredentialStore,
	logger *slog.Logger,
) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		codec:  codec,
		store:  store,
		logger: logger,
	}
}

// IssueTokens mints an access/refresh pair for userID. It has no store side
// effect; StartSession and Refresh persist the refresh token.
func (m *SessionManager) IssueTokens(userID string) (*TokenPair, error) {
	access, accessClaims, err := m.codec.Sign(userID, TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh, refreshClaims, err := m.codec.Sign(userID, TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessClaims.ExpiresAt,
		RefreshExpiresAt: refreshClaims.ExpiresAt,
	}, nil
}

// StartSession issues a pair and records the refresh token as live.
func (m *SessionManager) StartSession(
	ctx context.Context,
	userID string,
) (*TokenPair, error) {
	pair, err := m.IssueTokens(userID)
	if err != nil {
		return nil, err
	}

	if err := m.store.AddToken(ctx, userID, core.HashToken(pair.RefreshToken)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	metrics.SessionEvent(metrics.SessionIssued)
	return pair, nil
}

// Authenticate is stateless: signature, expiry and token type only.
func (m *SessionManager) Authenticate(
	_ context.Context,
	accessToken string,
) (string, error) {
	if accessToken == "" {
		return "", fmt.Errorf("authenticate: %w", core.ErrUnauthorized)
	}

	claims, err := m.codec.Verify(accessToken, TokenTypeAccess)
	if err != nil {
		return "", fmt.Errorf("authenticate: %w: %w", core.ErrForbidden, err)
	}

	return claims.UserID, nil
}

// RotateRefreshToken consumes oldToken. Presenting a token that is not in
// the live set revokes every live token of its owner.
func (m *SessionManager) RotateRefreshToken(
	ctx context.Context,
	oldToken string,
) (*Credential, error) {
	claims, err := m.codec.Verify(oldToken, TokenTypeRefresh)
	if err != nil {
		metrics.SessionEvent(metrics.SessionRejected)
		return nil, fmt.Errorf("rotate refresh token: %w: %w", core.ErrTokenInvalid, err)
	}

	user, err := m.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			metrics.SessionEvent(metrics.SessionRejected)
			return nil, fmt.Errorf("rotate refresh token: unknown user: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	removed, err := m.store.RemoveTokenIfPresent(ctx, user.ID, core.HashToken(oldToken))
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	if !removed {
		if err := m.store.ClearTokens(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("revoke sessions after reuse: %w", err)
		}

		m.logger.WarnContext(ctx, "refresh token reuse detected, all sessions revoked",
			"user_id", user.ID,
			"token_id", claims.ID,
		)
		metrics.SessionEvent(metrics.SessionReuseDetected)
		core.AddSpanEvent(ctx, "refresh_token_reuse",
			attribute.String("user_id", user.ID),
		)

		return nil, fmt.Errorf(
			"rotate refresh token: %w: %w",
			ErrTokenReuse,
			core.ErrTokenInvalid,
		)
	}

	return user, nil
}

// Refresh rotates oldToken and persists the replacement pair.
func (m *SessionManager) Refresh(
	ctx context.Context,
	oldToken string,
) (user *Credential, pair *TokenPair, err error) {
	ctx, span := core.StartSpan(ctx, "session.refresh")
	defer func() { core.EndSpan(span, err) }()

	user, err = m.RotateRefreshToken(ctx, oldToken)
	if err != nil {
		return nil, nil, err
	}
	span.SetAttributes(attribute.String("user_id", user.ID))

	pair, err = m.IssueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := m.store.AddToken(ctx, user.ID, core.HashToken(pair.RefreshToken)); err != nil {
		return nil, nil, fmt.Errorf("store refresh token: %w", err)
	}

	metrics.SessionEvent(metrics.SessionRotated)
	return user, pair, nil
}

// Logout removes refreshToken from its owner's live set. callerID, when
// non-empty, must match the token subject. Logout never mass-revokes.
func (m *SessionManager) Logout(
	ctx context.Context,
	refreshToken, callerID string,
) error {
	claims, err := m.codec.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return fmt.Errorf("logout: %w: %w", core.ErrForbidden, err)
	}

	if callerID != "" && callerID != claims.UserID {
		return fmt.Errorf("logout: token belongs to another user: %w", core.ErrForbidden)
	}

	user, err := m.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("logout: unknown user: %w", core.ErrForbidden)
		}
		return fmt.Errorf("logout: %w", err)
	}

	if _, err := m.store.RemoveTokenIfPresent(ctx, user.ID, core.HashToken(refreshToken)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	metrics.SessionEvent(metrics.SessionLogout)
	return nil
}

func (m *SessionManager) RevokeAll(ctx context.Context, userID string) error {
	if err := m.store.ClearTokens(ctx, userID); err != nil {
		return fmt.Errorf("revoke all sessions: %w", err)
	}

	metrics.SessionEvent(metrics.SessionRevokedAll)
	return nil
}

func (m *SessionManager) ActiveSessions(
	ctx context.Context,
	userID string,
) (int, error) {
	n, err := m.store.CountTokens(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (m *SessionManager) Codec() *TokenCodec {
	return m.codec
}
