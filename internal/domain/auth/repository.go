package auth

import (
	"context"
	"time"

	"jobboard/internal/common"
)

type RefreshTokenRepository interface {
	Store(ctx context.Context, token RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	// Revoke fails with common.CodeConflict when the token is already revoked.
	Revoke(ctx context.Context, tokenHash string, revokedAt time.Time) error
	RevokeAll(ctx context.Context, userID common.UUID, revokedAt time.Time) error
}

type ResetTokenRepository interface {
	Store(ctx context.Context, token ResetToken) error
	GetByHash(ctx context.Context, tokenHash string) (*ResetToken, error)
	MarkUsed(ctx context.Context, id common.UUID, usedAt time.Time) error
}
