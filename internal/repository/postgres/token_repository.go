package postgres

import (
	"context"
	"database/sql"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/auth"
)

type RefreshTokenRepository struct {
	db *sql.DB
}

func NewRefreshTokenRepository(db *sql.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Store(ctx context.Context, token auth.RefreshToken) error {
	if token.ID.IsZero() {
		token.ID = common.NewUUID()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt.UTC(), token.CreatedAt)
	if err != nil {
		return dbError(err, "refresh token", "store")
	}
	return nil
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, token_hash, expires_at, created_at, revoked_at FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	var (
		token   auth.RefreshToken
		revoked sql.NullTime
	)
	if err := row.Scan(&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.CreatedAt, &revoked); err != nil {
		return nil, dbError(err, "refresh token", "load")
	}
	if revoked.Valid {
		at := revoked.Time
		token.RevokedAt = &at
	}
	return &token, nil
}

const revokeRefreshSQL = `UPDATE refresh_tokens SET revoked_at = $1 WHERE token_hash = $2 AND revoked_at IS NULL`

// Revoke reports a conflict when no live token matched, so only one caller
// can consume a given refresh token.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, tokenHash string, revokedAt time.Time) error {
	result, err := r.db.ExecContext(ctx, revokeRefreshSQL, revokedAt.UTC(), tokenHash)
	if err != nil {
		return dbError(err, "refresh token", "revoke")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return common.NewError(common.CodeConflict, "refresh token already revoked", nil)
	}
	return nil
}

func (r *RefreshTokenRepository) RevokeAll(ctx context.Context, userID common.UUID, revokedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked_at = $1 WHERE user_id = $2 AND revoked_at IS NULL`, revokedAt.UTC(), userID)
	if err != nil {
		return dbError(err, "refresh token", "revoke")
	}
	return nil
}

type ResetTokenRepository struct {
	db *sql.DB
}

func NewResetTokenRepository(db *sql.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Store(ctx context.Context, token auth.ResetToken) error {
	if token.ID.IsZero() {
		token.ID = common.NewUUID()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt.UTC(), token.CreatedAt)
	if err != nil {
		return dbError(err, "reset token", "store")
	}
	return nil
}

func (r *ResetTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*auth.ResetToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, token_hash, expires_at, created_at, used_at FROM password_reset_tokens WHERE token_hash = $1`, tokenHash)
	var (
		token auth.ResetToken
		used  sql.NullTime
	)
	if err := row.Scan(&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.CreatedAt, &used); err != nil {
		return nil, dbError(err, "reset token", "load")
	}
	if used.Valid {
		at := used.Time
		token.UsedAt = &at
	}
	return &token, nil
}

// MarkUsed consumes the token; a second call reports a conflict.
func (r *ResetTokenRepository) MarkUsed(ctx context.Context, id common.UUID, usedAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE password_reset_tokens SET used_at = $1 WHERE id = $2 AND used_at IS NULL`, usedAt.UTC(), id)
	if err != nil {
		return dbError(err, "reset token", "update")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return common.NewError(common.CodeConflict, "reset token already used", nil)
	}
	return nil
}
