// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/templates/social-backend/internal/config"
	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

const (
	claimType  = "type"
	claimNonce = "nonce"
)

type Claims struct {
	ID        string
	UserID    string
	Type      TokenType
	Nonce     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Clock func() time.Time

// TokenCodec signs and verifies HS256 tokens with a single shared secret.
// Access and refresh tokens differ only by their lifetime and "type" claim.
type TokenCodec struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        Clock
}

func NewTokenCodec(cfg config.JWTConfig) (*TokenCodec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token codec: empty secret")
	}

	return &TokenCodec{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  cfg.AccessTokenExpire,
		refreshTTL: cfg.RefreshTokenExpire,
		now:        time.Now,
	}, nil
}

func (c *TokenCodec) WithClock(now Clock) *TokenCodec {
	cp := *c
	cp.now = now
	return &cp
}

func (c *TokenCodec) AccessTTL() time.Duration {
	return c.accessTTL
}

func (c *TokenCodec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

func (c *TokenCodec) Sign(userID string, typ TokenType) (string, *Claims, error) {
	ttl := c.accessTTL
	if typ == TokenTypeRefresh {
		ttl = c.refreshTTL
	}

	nonce, err := core.NewNonce()
	if err != nil {
		return "", nil, fmt.Errorf("generate nonce: %w", err)
	}

	now := c.now()
	claims := &Claims{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      typ,
		Nonce:     nonce,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	token, err := jwt.NewBuilder().
		JwtID(claims.ID).
		Issuer(c.issuer).
		Audience([]string{c.audience}).
		Subject(userID).
		IssuedAt(now).
		Expiration(claims.ExpiresAt).
		NotBefore(now).
		Claim(claimType, string(typ)).
		Claim(claimNonce, nonce).
		Build()
	if err != nil {
		return "", nil, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), c.secret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return string(signed), claims, nil
}

// Verify checks signature, issuer, audience, expiry and the type claim.
// A token is valid strictly before its expiry instant.
func (c *TokenCodec) Verify(tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), c.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithClock(jwt.ClockFunc(c.now)),
	)
	if err != nil {
		if errors.Is(err, jwt.TokenExpiredError()) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var typ string
	if err := token.Get(claimType, &typ); err != nil || TokenType(typ) != want {
		return nil, fmt.Errorf(
			"verify token: expected %s token: %w",
			want,
			core.ErrTokenInvalid,
		)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	exp, ok := token.Expiration()
	if !ok {
		return nil, fmt.Errorf(
			"verify token: missing expiry: %w",
			core.ErrTokenInvalid,
		)
	}
	if !c.now().Before(exp) {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
	}

	claims := &Claims{
		UserID:    subject,
		Type:      want,
		ExpiresAt: exp,
	}
	claims.ID, _ = token.JwtID()
	claims.IssuedAt, _ = token.IssuedAt()
	//nolint:errcheck // nonce is informational once the signature verified
	_ = token.Get(claimNonce, &claims.Nonce)

	return claims, nil
}

// VerifyAccessToken adapts the codec to middleware.TokenVerifier.
func (c *TokenCodec) VerifyAccessToken(
	_ context.Context,
	tokenString string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := c.Verify(tokenString, TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	return &middleware.AccessTokenClaims{
		UserID:    claims.UserID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}
