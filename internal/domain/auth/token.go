package auth

import (
	"time"

	"jobboard/internal/common"
)

// RefreshToken is stored by hash; the raw value only ever leaves the
// service inside a TokenPair.
type RefreshToken struct {
	ID        common.UUID
	UserID    common.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

type ResetToken struct {
	ID        common.UUID
	UserID    common.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	UsedAt    *time.Time
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
