package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"jobboard/internal/common"
	"jobboard/internal/domain/user"
)

const userColumns = `id, email, password_hash, role, is_active, email_verified, profile, saved_jobs, last_login_at, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, account user.User) (*user.User, error) {
	if account.ID.IsZero() {
		account.ID = common.NewUUID()
	}
	now := time.Now().UTC()
	account.Email = user.NormalizeEmail(account.Email)
	account.CreatedAt = now
	account.UpdatedAt = now
	if account.SavedJobs == nil {
		account.SavedJobs = []common.UUID{}
	}
	profile, err := toJSON(account.Profile)
	if err != nil {
		return nil, err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO users (id, email, password_hash, role, is_active, email_verified, profile, saved_jobs, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		account.ID, account.Email, account.PasswordHash, account.Role, account.IsActive, account.EmailVerified, profile, pq.Array(uuidStrings(account.SavedJobs)), account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return nil, dbError(err, "user", "create")
	}
	return &account, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id common.UUID) (*user.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, user.NormalizeEmail(email)))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id common.UUID, profile user.Profile) (*user.User, error) {
	doc, err := toJSON(profile)
	if err != nil {
		return nil, err
	}
	return r.scanOne(r.db.QueryRowContext(ctx, `UPDATE users SET profile = $1, updated_at = $2 WHERE id = $3 RETURNING `+userColumns,
		doc, time.Now().UTC(), id))
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id common.UUID, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`, passwordHash, time.Now().UTC(), id)
}

func (r *UserRepository) SetActive(ctx context.Context, id common.UUID, active bool) error {
	return r.exec(ctx, `UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`, active, time.Now().UTC(), id)
}

func (r *UserRepository) TouchLogin(ctx context.Context, id common.UUID, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at.UTC(), id)
}

func (r *UserRepository) SaveJob(ctx context.Context, userID, jobID common.UUID) error {
	return r.exec(ctx, `UPDATE users SET saved_jobs = CASE WHEN $1 = ANY(saved_jobs) THEN saved_jobs ELSE array_append(saved_jobs, $1) END, updated_at = $2 WHERE id = $3`,
		jobID.String(), time.Now().UTC(), userID)
}

func (r *UserRepository) UnsaveJob(ctx context.Context, userID, jobID common.UUID) error {
	return r.exec(ctx, `UPDATE users SET saved_jobs = array_remove(saved_jobs, $1), updated_at = $2 WHERE id = $3`,
		jobID.String(), time.Now().UTC(), userID)
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return dbError(err, "user", "update")
	}
	return expectRow(result, "user")
}

func (r *UserRepository) scanOne(row scanner) (*user.User, error) {
	var (
		account   user.User
		profile   []byte
		savedJobs []string
		lastLogin sql.NullTime
	)
	err := row.Scan(&account.ID, &account.Email, &account.PasswordHash, &account.Role, &account.IsActive, &account.EmailVerified,
		&profile, pq.Array(&savedJobs), &lastLogin, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, dbError(err, "user", "load")
	}
	if err := fromJSON(profile, &account.Profile); err != nil {
		return nil, err
	}
	account.SavedJobs = uuidsFrom(savedJobs)
	if lastLogin.Valid {
		at := lastLogin.Time
		account.LastLoginAt = &at
	}
	return &account, nil
}
