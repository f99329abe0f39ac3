// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
)

type UserProvider interface {
	CredentialStore
	GetByUsername(ctx context.Context, username string) (*Credential, error)
	Create(
		ctx context.Context,
		username, email, passwordHash string,
	) (*Credential, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// TokenRevoker remembers access token ids that must stop working before
// they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type Service struct {
	sessions *SessionManager
	users    UserProvider
	revoker  TokenRevoker
}

func NewService(
	sessions *SessionManager,
	users UserProvider,
	revoker TokenRevoker,
) *Service {
	return &Service{
		sessions: sessions,
		users:    users,
		revoker:  revoker,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Username, req.Email, passwordHash)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			if errors.Is(err, ErrEmailExists) {
				return nil, ErrEmailExists
			}
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.startSession(ctx, user)
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.BurnPasswordCheck(req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	check, err := core.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !check.Match {
		return nil, ErrInvalidCredentials
	}

	if check.Upgraded != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, check.Upgraded); err != nil {
			slog.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	return s.startSession(ctx, user)
}

func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
) (*AuthResponse, error) {
	user, pair, err := s.sessions.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:   toUserResponse(user),
		Tokens: toTokenResponse(pair, s.sessions.Codec().AccessTTL()),
	}, nil
}

// Logout drops refreshToken from the live set. When the request also
// carried an access token, its id is blacklisted until expiry.
func (s *Service) Logout(
	ctx context.Context,
	refreshToken string,
	access *middleware.AccessTokenClaims,
) error {
	callerID := ""
	if access != nil {
		callerID = access.UserID
	}

	if err := s.sessions.Logout(ctx, refreshToken, callerID); err != nil {
		return err
	}

	s.revokeAccess(ctx, access)
	return nil
}

func (s *Service) LogoutAll(
	ctx context.Context,
	userID string,
	access *middleware.AccessTokenClaims,
) error {
	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		return err
	}

	s.revokeAccess(ctx, access)
	return nil
}

// RevokeUserSessions is the administrative form of LogoutAll.
func (s *Service) RevokeUserSessions(ctx context.Context, userID string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	return s.sessions.RevokeAll(ctx, userID)
}

func (s *Service) ActiveSessions(
	ctx context.Context,
	userID string,
) (*SessionsResponse, error) {
	n, err := s.sessions.ActiveSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &SessionsResponse{Active: n}, nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID string,
	req ChangePasswordRequest,
) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	check, err := core.CheckPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !check.Match {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return s.sessions.RevokeAll(ctx, userID)
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) startSession(
	ctx context.Context,
	user *Credential,
) (*AuthResponse, error) {
	pair, err := s.sessions.StartSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:   toUserResponse(user),
		Tokens: toTokenResponse(pair, s.sessions.Codec().AccessTTL()),
	}, nil
}

func (s *Service) revokeAccess(
	ctx context.Context,
	access *middleware.AccessTokenClaims,
) {
	if s.revoker == nil || access == nil {
		return
	}

	if err := s.revoker.Revoke(ctx, access.TokenID, access.ExpiresAt); err != nil {
		slog.WarnContext(ctx, "access token blacklist failed",
			"user_id", access.UserID,
			"error", err,
		)
	}
}
