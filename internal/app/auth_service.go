package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/auth"
	"jobboard/internal/domain/user"
	"jobboard/internal/ratelimit"
	"jobboard/internal/security"
	"jobboard/internal/validation"
)

type AuthConfig struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration
}

type AuthResult struct {
	User   *user.User
	Tokens auth.TokenPair
}

type AuthService struct {
	users    user.Repository
	refresh  auth.RefreshTokenRepository
	resets   auth.ResetTokenRepository
	jwt      *security.JWTProvider
	attempts ratelimit.AttemptCounter
	notifier Notifier
	logger   *slog.Logger
	cfg      AuthConfig
	now      func() time.Time
}

func NewAuthService(users user.Repository, refresh auth.RefreshTokenRepository, resets auth.ResetTokenRepository, jwt *security.JWTProvider,
	attempts ratelimit.AttemptCounter, notifier Notifier, logger *slog.Logger, cfg AuthConfig) *AuthService {
	return &AuthService{
		users:    users,
		refresh:  refresh,
		resets:   resets,
		jwt:      jwt,
		attempts: attempts,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Email = user.NormalizeEmail(input.Email)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if err := validation.Struct("invalid registration data", input); err != nil {
		return nil, err
	}
	role := user.RoleCandidate
	if input.Role != "" {
		role = user.Role(input.Role)
	}
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, common.NewError(common.CodeConflict, "email already registered", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to hash password", err)
	}
	created, err := s.users.Create(ctx, user.User{
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		Profile: user.Profile{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Phone:     strings.TrimSpace(input.Phone),
		},
	})
	if err != nil {
		if common.Is(err, common.CodeConflict) {
			return nil, common.NewError(common.CodeConflict, "email already registered", err)
		}
		return nil, err
	}
	tokens, err := s.issueTokens(ctx, *created)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", created.ID.String()), slog.String("role", string(role)))
	return &AuthResult{User: created, Tokens: tokens}, nil
}

// Login verifies credentials. Failures are counted per client IP and per
// email; once either key reaches the limit further attempts are rejected
// until the window expires.
func (s *AuthService) Login(ctx context.Context, input LoginInput, clientIP string) (*AuthResult, error) {
	input.Email = user.NormalizeEmail(input.Email)
	if err := validation.Struct("invalid login data", input); err != nil {
		return nil, err
	}
	ipKey := "login:ip:" + clientIP
	emailKey := "login:email:" + input.Email
	if s.attempts.Blocked(ctx, ipKey) || s.attempts.Blocked(ctx, emailKey) {
		return nil, common.NewError(common.CodeRateLimited, "too many login attempts, try again later", nil)
	}

	account, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil && !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	if account == nil || !security.CheckPassword(account.PasswordHash, input.Password) {
		s.attempts.Fail(ctx, ipKey)
		s.attempts.Fail(ctx, emailKey)
		s.logger.WarnContext(ctx, "login failed", slog.String("email", input.Email), slog.String("ip", clientIP))
		return nil, common.NewError(common.CodeUnauthorized, "invalid email or password", nil)
	}
	if !account.IsActive {
		return nil, common.NewError(common.CodeForbidden, "account is deactivated", nil)
	}
	s.attempts.Reset(ctx, emailKey)

	now := s.now().UTC()
	if err := s.users.TouchLogin(ctx, account.ID, now); err != nil {
		return nil, err
	}
	account.LastLoginAt = &now
	tokens, err := s.issueTokens(ctx, *account)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: account, Tokens: tokens}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, common.NewValidationError("refresh token is required", map[string]string{"refreshToken": "refreshToken is required"})
	}
	hash := security.HashToken(refreshToken)
	stored, err := s.refresh.GetByHash(ctx, hash)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeUnauthorized, "invalid refresh token", nil)
		}
		return nil, err
	}
	now := s.now().UTC()
	if stored.RevokedAt != nil || !now.Before(stored.ExpiresAt) {
		return nil, common.NewError(common.CodeUnauthorized, "refresh token expired or revoked", nil)
	}
	account, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeUnauthorized, "invalid refresh token", nil)
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, common.NewError(common.CodeUnauthorized, "account is deactivated", nil)
	}
	if err := s.refresh.Revoke(ctx, hash, now); err != nil {
		if common.Is(err, common.CodeConflict) || common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeUnauthorized, "refresh token expired or revoked", nil)
		}
		return nil, err
	}
	tokens, err := s.issueTokens(ctx, *account)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: account, Tokens: tokens}, nil
}

// Logout revokes the presented refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	err := s.refresh.Revoke(ctx, security.HashToken(refreshToken), s.now().UTC())
	if err != nil && !common.Is(err, common.CodeNotFound) && !common.Is(err, common.CodeConflict) {
		return err
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID common.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ForgotPassword issues a single-use reset token. Unknown emails succeed
// silently so the endpoint does not reveal which accounts exist.
func (s *AuthService) ForgotPassword(ctx context.Context, input ForgotPasswordInput) error {
	input.Email = user.NormalizeEmail(input.Email)
	if err := validation.Struct("invalid email", input); err != nil {
		return err
	}
	account, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil
		}
		return err
	}
	if !account.IsActive {
		return nil
	}
	token, digest, err := security.NewOpaqueToken()
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to create reset token", err)
	}
	now := s.now().UTC()
	expiresAt := now.Add(s.cfg.ResetTokenTTL)
	if err := s.resets.Store(ctx, auth.ResetToken{
		ID:        common.NewUUID(),
		UserID:    account.ID,
		TokenHash: digest,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}); err != nil {
		return err
	}
	if err := s.notifier.PasswordReset(ctx, *account, token, expiresAt); err != nil {
		s.logger.ErrorContext(ctx, "password reset delivery failed", slog.String("user_id", account.ID.String()), slog.String("error", err.Error()))
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if err := validation.Struct("invalid reset data", input); err != nil {
		return err
	}
	invalid := common.NewError(common.CodeValidation, "invalid or expired reset token", nil)
	stored, err := s.resets.GetByHash(ctx, security.HashToken(strings.TrimSpace(input.Token)))
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return invalid
		}
		return err
	}
	now := s.now().UTC()
	if stored.UsedAt != nil || !now.Before(stored.ExpiresAt) {
		return invalid
	}
	if err := s.resets.MarkUsed(ctx, stored.ID, now); err != nil {
		if common.Is(err, common.CodeConflict) {
			return invalid
		}
		return err
	}
	return s.setPassword(ctx, stored.UserID, input.Password)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID common.UUID, input ChangePasswordInput) error {
	if err := validation.Struct("invalid password data", input); err != nil {
		return err
	}
	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !security.CheckPassword(account.PasswordHash, input.CurrentPassword) {
		return common.NewError(common.CodeUnauthorized, "current password is incorrect", nil)
	}
	return s.setPassword(ctx, userID, input.NewPassword)
}

// setPassword stores the new hash and revokes every refresh token so other
// sessions must log in again.
func (s *AuthService) setPassword(ctx context.Context, userID common.UUID, password string) error {
	hash, err := security.HashPassword(password)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	if err := s.refresh.RevokeAll(ctx, userID, s.now().UTC()); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "password changed", slog.String("user_id", userID.String()))
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, account user.User) (auth.TokenPair, error) {
	access, expiresAt, err := s.jwt.Generate(account.ID, account.Email, account.Role, s.cfg.AccessTokenTTL)
	if err != nil {
		return auth.TokenPair{}, common.NewError(common.CodeInternal, "failed to sign access token", err)
	}
	refresh, digest, err := security.NewOpaqueToken()
	if err != nil {
		return auth.TokenPair{}, common.NewError(common.CodeInternal, "failed to create refresh token", err)
	}
	now := s.now().UTC()
	if err := s.refresh.Store(ctx, auth.RefreshToken{
		ID:        common.NewUUID(),
		UserID:    account.ID,
		TokenHash: digest,
		ExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
		CreatedAt: now,
	}); err != nil {
		return auth.TokenPair{}, err
	}
	return auth.TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}
