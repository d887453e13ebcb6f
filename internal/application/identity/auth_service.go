package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medisync/backend/internal/domain/identity"
	"github.com/medisync/backend/internal/domain/shared"
	"github.com/medisync/backend/internal/infrastructure/auth"
)

// AuthService handles login and token refresh for portal accounts
type AuthService struct {
	users  identity.UserRepository
	tokens *auth.JWTService
	logger *zap.Logger
}

// NewAuthService creates the service
func NewAuthService(users identity.UserRepository, tokens *auth.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// LoginResult is the successful login payload
type LoginResult struct {
	UserID          uuid.UUID       `json:"user_id"`
	Username        string          `json:"username"`
	Role            identity.Role   `json:"role"`
	StoreID         uuid.UUID       `json:"store_id"`
	CanOverrideFEFO bool            `json:"can_override_fefo"`
	Tokens          *auth.TokenPair `json:"tokens"`
}

// Login authenticates a username/password pair and issues a token pair.
// All failure modes return the same Unauthorized error; the response never
// reveals whether the username exists.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Warn("login failed", zap.String("username", username))
		return nil, shared.ErrUnauthorized
	}
	if !user.Active || !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.Warn("login failed", zap.String("username", username))
		return nil, shared.ErrUnauthorized
	}

	tokens, err := s.tokens.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("login succeeded",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return &LoginResult{
		UserID:          user.ID,
		Username:        user.Username,
		Role:            user.Role,
		StoreID:         user.StoreID,
		CanOverrideFEFO: user.Role.CanOverrideFEFO(),
		Tokens:          tokens,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair. Role and
// capabilities are re-read from the user record, so a role change takes
// effect at the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil || !user.Active {
		return nil, shared.ErrUnauthorized
	}

	tokens, err := s.tokens.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		UserID:          user.ID,
		Username:        user.Username,
		Role:            user.Role,
		StoreID:         user.StoreID,
		CanOverrideFEFO: user.Role.CanOverrideFEFO(),
		Tokens:          tokens,
	}, nil
}
