package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yigit/learnhub/internal/app/models"
	"github.com/yigit/learnhub/internal/app/models/dto"
	"github.com/yigit/learnhub/internal/pkg/apperrors"
	"github.com/yigit/learnhub/internal/pkg/auth"
	"github.com/yigit/learnhub/internal/pkg/events"
	"github.com/yigit/learnhub/internal/pkg/metrics"
)

// TokenType is the scheme of every issued access token
const TokenType = "Bearer"

// emailTakenMessage matches the unique rule message so that a lost insert
// race reads the same as a failed pre-check.
const emailTakenMessage = "The email has already been taken."

// AuthService handles authentication operations
type AuthService struct {
	users    UserStore
	tokens   TokenIssuer
	hasher   Hasher
	denylist auth.Denylist
	events   events.Emitter
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users UserStore,
	tokens TokenIssuer,
	hasher Hasher,
	denylist auth.Denylist,
	emitter events.Emitter,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		denylist: denylist,
		events:   emitter,
		logger:   logger,
	}
}

// Register creates a student account and signs it in
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	user, token, err := s.createAccount(ctx, req, models.RoleStudent)
	if err != nil {
		metrics.RecordAuth("register", "failure")
		return nil, err
	}
	metrics.RecordAuth("register", "success")

	s.events.Emit(ctx, events.UserRegistered, dto.NewUserResponse(user))
	s.logger.Info().Int64("user_id", user.ID).Msg("Student registered")

	return &dto.AuthResponse{
		TokenResponse: token,
		User:          dto.NewUserResponse(user),
	}, nil
}

// CreateAdmin creates an admin account and signs it in
func (s *AuthService) CreateAdmin(ctx context.Context, req dto.RegisterRequest) (*dto.AdminAuthResponse, error) {
	user, token, err := s.createAccount(ctx, req, models.RoleAdmin)
	if err != nil {
		metrics.RecordAuth("create-admin", "failure")
		return nil, err
	}
	metrics.RecordAuth("create-admin", "success")

	s.events.Emit(ctx, events.AdminCreated, dto.NewAdminResponse(user))
	s.logger.Info().Int64("user_id", user.ID).Msg("Admin created")

	return &dto.AdminAuthResponse{
		TokenResponse: token,
		Admin:         dto.NewAdminResponse(user),
	}, nil
}

// Login verifies credentials and issues a new access token. Unknown emails
// and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		s.hasher.CheckDummy(req.Password)
		metrics.RecordAuth("login", "failure")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !s.hasher.Check(user.Password, req.Password) {
		metrics.RecordAuth("login", "failure")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	metrics.RecordAuth("login", "success")

	return &dto.AuthResponse{
		TokenResponse: token,
		User:          dto.NewUserResponse(user),
	}, nil
}

// Logout revokes the caller's current access token
func (s *AuthService) Logout(ctx context.Context, identity *auth.Identity) error {
	if identity == nil || identity.TokenID == "" {
		return apperrors.ErrTokenInvalid
	}

	if err := s.denylist.Revoke(ctx, identity.UserID, identity.TokenID, identity.ExpiresAt); err != nil {
		metrics.RecordAuth("logout", "failure")
		return fmt.Errorf("failed to log out: %w", err)
	}
	metrics.RecordAuth("logout", "success")

	s.logger.Info().Int64("user_id", identity.UserID).Msg("User logged out")
	return nil
}

func (s *AuthService) createAccount(ctx context.Context, req dto.RegisterRequest, role models.RoleType) (*models.User, dto.TokenResponse, error) {
	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, dto.TokenResponse{}, err
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		RoleType: role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, dto.TokenResponse{}, apperrors.NewValidationError(emailTakenMessage)
		}
		return nil, dto.TokenResponse{}, fmt.Errorf("user creation error: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, dto.TokenResponse{}, err
	}
	return user, token, nil
}

func (s *AuthService) issueToken(user *models.User) (dto.TokenResponse, error) {
	issued, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return dto.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return dto.TokenResponse{
		AccessToken: issued.AccessToken,
		TokenType:   TokenType,
		ExpiresIn:   issued.ExpiresIn,
	}, nil
}
