package memory

import (
	"context"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/auth"
)

type RefreshTokenRepository struct {
	store *Store
}

func NewRefreshTokenRepository(store *Store) *RefreshTokenRepository {
	return &RefreshTokenRepository{store: store}
}

func (r *RefreshTokenRepository) Store(_ context.Context, token auth.RefreshToken) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.refreshTokens[token.TokenHash]; exists {
		return common.NewError(common.CodeConflict, "refresh token already stored", nil)
	}
	if token.ID.IsZero() {
		token.ID = common.NewUUID()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = s.timestamp()
	}
	s.refreshTokens[token.TokenHash] = token
	return nil
}

func (r *RefreshTokenRepository) GetByHash(_ context.Context, tokenHash string) (*auth.RefreshToken, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.refreshTokens[tokenHash]
	if !ok {
		return nil, notFound("refresh token")
	}
	return &token, nil
}

func (r *RefreshTokenRepository) Revoke(_ context.Context, tokenHash string, revokedAt time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.refreshTokens[tokenHash]
	if !ok {
		return notFound("refresh token")
	}
	if token.RevokedAt != nil {
		return common.NewError(common.CodeConflict, "refresh token already revoked", nil)
	}
	token.RevokedAt = &revokedAt
	s.refreshTokens[tokenHash] = token
	return nil
}

func (r *RefreshTokenRepository) RevokeAll(_ context.Context, userID common.UUID, revokedAt time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, token := range s.refreshTokens {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &revokedAt
			s.refreshTokens[hash] = token
		}
	}
	return nil
}

type ResetTokenRepository struct {
	store *Store
}

func NewResetTokenRepository(store *Store) *ResetTokenRepository {
	return &ResetTokenRepository{store: store}
}

func (r *ResetTokenRepository) Store(_ context.Context, token auth.ResetToken) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if token.ID.IsZero() {
		token.ID = common.NewUUID()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = s.timestamp()
	}
	s.resetTokens[token.TokenHash] = token
	return nil
}

func (r *ResetTokenRepository) GetByHash(_ context.Context, tokenHash string) (*auth.ResetToken, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.resetTokens[tokenHash]
	if !ok {
		return nil, notFound("reset token")
	}
	return &token, nil
}

func (r *ResetTokenRepository) MarkUsed(_ context.Context, id common.UUID, usedAt time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, token := range s.resetTokens {
		if token.ID != id {
			continue
		}
		if token.UsedAt != nil {
			return common.NewError(common.CodeConflict, "reset token already used", nil)
		}
		token.UsedAt = &usedAt
		s.resetTokens[hash] = token
		return nil
	}
	return notFound("reset token")
}
