package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/lifecycle"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/app/repositories"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/auth"
	"github.com/yigit/admission/internal/pkg/guard"
	"github.com/yigit/admission/internal/pkg/metrics"
)

// Authenticator is the registration and session surface used by the HTTP layer
type Authenticator interface {
	Register(ctx context.Context, req *dto.RegisterRequest, clientIP string) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, clientIP string) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID int64, refreshToken, clientIP string) error
}

var _ Authenticator = (*AuthService)(nil)

// AuthService handles registration and authentication
type AuthService struct {
	userRepo     repositories.IUserRepository
	studentRepo  repositories.IStudentRepository
	courseRepo   repositories.ICourseRepository
	tokenRepo    repositories.ITokenRepository
	activityRepo repositories.IActivityRepository
	jwtService   *auth.JWTService
	hasher       *auth.PasswordHasher
	guard        *guard.Guard
	notifier     lifecycle.Notifier
	logger       zerolog.Logger
	now          func() time.Time
}

// AuthDependencies groups the collaborators of AuthService
type AuthDependencies struct {
	Users    repositories.IUserRepository
	Students repositories.IStudentRepository
	Courses  repositories.ICourseRepository
	Tokens   repositories.ITokenRepository
	Activity repositories.IActivityRepository
	JWT      *auth.JWTService
	Hasher   *auth.PasswordHasher
	Guard    *guard.Guard
	Notifier lifecycle.Notifier
	Clock    func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(deps AuthDependencies, logger zerolog.Logger) *AuthService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	hasher := deps.Hasher
	if hasher == nil {
		hasher = auth.NewPasswordHasher(auth.BcryptCost)
	}
	return &AuthService{
		userRepo:     deps.Users,
		studentRepo:  deps.Students,
		courseRepo:   deps.Courses,
		tokenRepo:    deps.Tokens,
		activityRepo: deps.Activity,
		jwtService:   deps.JWT,
		hasher:       hasher,
		guard:        deps.Guard,
		notifier:     deps.Notifier,
		logger:       logger.With().Str("service", "auth").Logger(),
		now:          now,
	}
}

// Login authenticates a credential by username or email.
//
// A locked-out client address is rejected before the credential store is
// consulted. Unknown identifiers and wrong passwords both return
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest, clientIP string) (*dto.AuthResponse, error) {
	if err := s.guard.Check(ctx, clientIP); err != nil {
		var lockout *apperrors.LockoutError
		if errors.As(err, &lockout) {
			metrics.LoginAttempts.WithLabelValues("locked").Inc()
			return nil, err
		}
		s.logger.Warn().Err(err).Str("ip", clientIP).Msg("Login guard unavailable, continuing without lockout check")
	}

	identifier := strings.TrimSpace(req.Identifier)
	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		s.hasher.CheckDummy(req.Password)
		return nil, s.loginFailed(ctx, nil, identifier, clientIP)
	case err != nil:
		return nil, fmt.Errorf("failed to look up credential: %w", err)
	}

	if !s.hasher.Check(user.PasswordHash, req.Password) {
		return nil, s.loginFailed(ctx, &user.ID, identifier, clientIP)
	}

	if !user.IsActive {
		metrics.LoginAttempts.WithLabelValues("disabled").Inc()
		s.logger.Warn().Int64("userID", user.ID).Msg("Login attempt on deactivated account")
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.guard.Succeed(ctx, clientIP); err != nil {
		s.logger.Warn().Err(err).Str("ip", clientIP).Msg("Failed to clear login failures")
	}
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login time")
	}

	token, err := s.issueTokens(ctx, user, req.RememberMe)
	if err != nil {
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	recordActivity(ctx, s.activityRepo, s.logger, &user.ID, models.ActionLogin, "User logged in", clientIP)

	return &dto.AuthResponse{
		Token: *token,
		User:  dto.NewUserResponse(user),
	}, nil
}

// loginFailed counts a failure against the client address
func (s *AuthService) loginFailed(ctx context.Context, userID *int64, identifier, clientIP string) error {
	metrics.LoginAttempts.WithLabelValues("failure").Inc()

	if _, err := s.guard.Fail(ctx, clientIP); err != nil {
		s.logger.Warn().Err(err).Str("ip", clientIP).Msg("Failed to record login failure")
	}
	recordActivity(ctx, s.activityRepo, s.logger, userID, models.ActionFailedLogin,
		fmt.Sprintf("Failed login for %q", identifier), clientIP)

	return apperrors.ErrInvalidCredentials
}

// RefreshToken rotates a refresh token and issues a new access token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	stored, err := s.tokenRepo.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to load token owner: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	// Revoke old token to prevent reuse
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	rememberMe := stored.ExpiryDate.Sub(stored.CreatedAt) > s.jwtService.RefreshTTL(false)
	return s.issueTokens(ctx, user, rememberMe)
}

// Logout revokes the refresh token. An unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, userID int64, refreshToken, clientIP string) error {
	if refreshToken != "" {
		if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) {
			return fmt.Errorf("failed to revoke token: %w", err)
		}
	}
	recordActivity(ctx, s.activityRepo, s.logger, &userID, models.ActionLogout, "User logged out", clientIP)
	return nil
}

// issueTokens creates an access/refresh pair and stores the refresh token
func (s *AuthService) issueTokens(ctx context.Context, user *models.User, rememberMe bool) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user, rememberMe)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiry); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             pair.ExpiresIn,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: pair.RefreshExpiresIn,
	}, nil
}
