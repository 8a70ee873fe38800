package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/common"
	"jobboard/internal/domain/auth"
	"jobboard/internal/domain/user"
	"jobboard/internal/security"
)

func TestRegisterDefaultsToCandidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.auth.Register(ctx, RegisterInput{Email: " Ada@Example.com ", Password: "password123", FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", result.User.Email)
	assert.Equal(t, user.RoleCandidate, result.User.Role)
	assert.True(t, result.User.IsActive)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)

	claims, err := security.NewJWTProvider("test-secret").Parse(result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID.String(), claims.ID)
	assert.Equal(t, "candidate", claims.Role)

	_, err = f.auth.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "password123", FirstName: "A", LastName: "L"})
	assert.Equal(t, common.CodeConflict, common.CodeOf(err))
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), RegisterInput{Email: "root@example.com", Password: "password123", Role: "admin", FirstName: "R", LastName: "T"})
	var appErr *common.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "role")
}

func TestLoginLocksOutAfterRepeatedFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ada@example.com", user.RoleCandidate)

	for i := 0; i < 5; i++ {
		_, err := f.auth.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong-password"}, "10.0.0.1")
		assert.Equal(t, common.CodeUnauthorized, common.CodeOf(err))
	}
	_, err := f.auth.Login(ctx, LoginInput{Email: "ada@example.com", Password: "password123"}, "10.0.0.2")
	assert.Equal(t, common.CodeRateLimited, common.CodeOf(err))
}

func TestLoginResetsEmailCounterOnSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ada@example.com", user.RoleCandidate)

	for i := 0; i < 4; i++ {
		_, _ = f.auth.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong-password"}, "10.0.0.1")
	}
	result, err := f.auth.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "password123"}, "10.0.0.3")
	require.NoError(t, err)
	require.NotNil(t, result.User.LastLoginAt)

	_, err = f.auth.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong-password"}, "10.0.0.3")
	assert.Equal(t, common.CodeUnauthorized, common.CodeOf(err))
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.register(t, "ada@example.com", user.RoleCandidate)
	require.NoError(t, f.users.SetActive(ctx, actor.ID, false))

	_, err := f.auth.Login(ctx, LoginInput{Email: "ada@example.com", Password: "password123"}, "10.0.0.1")
	assert.Equal(t, common.CodeForbidden, common.CodeOf(err))
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered, err := f.auth.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "password123", FirstName: "Ada", LastName: "L"})
	require.NoError(t, err)

	rotated, err := f.auth.Refresh(ctx, registered.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, registered.Tokens.RefreshToken, rotated.Tokens.RefreshToken)

	_, err = f.auth.Refresh(ctx, registered.Tokens.RefreshToken)
	assert.Equal(t, common.CodeUnauthorized, common.CodeOf(err))

	require.NoError(t, f.auth.Logout(ctx, rotated.Tokens.RefreshToken))
	_, err = f.auth.Refresh(ctx, rotated.Tokens.RefreshToken)
	assert.Equal(t, common.CodeUnauthorized, common.CodeOf(err))

	assert.NoError(t, f.auth.Logout(ctx, "unknown-token"))
	_, err = f.auth.Refresh(ctx, "")
	assert.Equal(t, common.CodeValidation, common.CodeOf(err))
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered, err := f.auth.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "password123", FirstName: "Ada", LastName: "L"})
	require.NoError(t, err)

	require.NoError(t, f.auth.ForgotPassword(ctx, ForgotPasswordInput{Email: "nobody@example.com"}))
	assert.Empty(t, f.notifier.tokens)

	require.NoError(t, f.auth.ForgotPassword(ctx, ForgotPasswordInput{Email: "ada@example.com"}))
	require.Len(t, f.notifier.tokens, 1)
	token := f.notifier.tokens[0]

	require.NoError(t, f.auth.ResetPassword(ctx, ResetPasswordInput{Token: token, Password: "new-password"}))
	err = f.auth.ResetPassword(ctx, ResetPasswordInput{Token: token, Password: "another-password"})
	assert.Equal(t, common.CodeValidation, common.CodeOf(err))

	_, err = f.auth.Refresh(ctx, registered.Tokens.RefreshToken)
	assert.Equal(t, common.CodeUnauthorized, common.CodeOf(err))

	_, err = f.auth.Login(ctx, LoginInput{Email: "ada@example.com", Password: "password123"}, "10.0.0.1")
	assert.Equal(t, common.CodeUnauthorized, common.CodeOf(err))
	_, err = f.auth.Login(ctx, LoginInput{Email: "ada@example.com", Password: "new-password"}, "10.0.0.1")
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.register(t, "ada@example.com", user.RoleCandidate)

	err := f.auth.ChangePassword(ctx, actor.ID, ChangePasswordInput{CurrentPassword: "wrong", NewPassword: "new-password"})
	assert.Equal(t, common.CodeUnauthorized, common.CodeOf(err))
	err = f.auth.ChangePassword(ctx, actor.ID, ChangePasswordInput{CurrentPassword: "password123", NewPassword: "short"})
	assert.Equal(t, common.CodeValidation, common.CodeOf(err))

	require.NoError(t, f.auth.ChangePassword(ctx, actor.ID, ChangePasswordInput{CurrentPassword: "password123", NewPassword: "new-password"}))
	_, err = f.auth.Login(ctx, LoginInput{Email: "ada@example.com", Password: "new-password"}, "10.0.0.1")
	assert.NoError(t, err)
}

// staleRefreshTokens serves every token as still live, as a concurrent
// reader would see it before the other request revoked it.
type staleRefreshTokens struct {
	auth.RefreshTokenRepository
}

func (r staleRefreshTokens) GetByHash(ctx context.Context, hash string) (*auth.RefreshToken, error) {
	token, err := r.RefreshTokenRepository.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	token.RevokedAt = nil
	return token, nil
}

func TestConcurrentRefreshMintsOnePair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered, err := f.auth.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "password123", FirstName: "Ada", LastName: "L"})
	require.NoError(t, err)
	f.auth.refresh = staleRefreshTokens{f.auth.refresh}

	_, err = f.auth.Refresh(ctx, registered.Tokens.RefreshToken)
	require.NoError(t, err)
	_, err = f.auth.Refresh(ctx, registered.Tokens.RefreshToken)
	assert.Equal(t, common.CodeUnauthorized, common.CodeOf(err))
}
