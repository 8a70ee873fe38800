package memory

import (
	"context"
	"slices"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/user"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(_ context.Context, account user.User) (*user.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	email := user.NormalizeEmail(account.Email)
	if _, exists := s.emails[email]; exists {
		return nil, common.NewError(common.CodeConflict, "email already registered", nil)
	}
	if account.ID.IsZero() {
		account.ID = common.NewUUID()
	}
	now := s.timestamp()
	account.Email = email
	account.CreatedAt = now
	account.UpdatedAt = now
	if account.SavedJobs == nil {
		account.SavedJobs = []common.UUID{}
	}
	s.users[account.ID] = cloneUser(account)
	s.emails[email] = account.ID
	return &account, nil
}

func (r *UserRepository) GetByID(_ context.Context, id common.UUID) (*user.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.users[id]
	if !ok {
		return nil, notFound("user")
	}
	out := cloneUser(account)
	return &out, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.store.mu.RLock()
	id, ok := r.store.emails[user.NormalizeEmail(email)]
	r.store.mu.RUnlock()
	if !ok {
		return nil, notFound("user")
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) UpdateProfile(_ context.Context, id common.UUID, profile user.Profile) (*user.User, error) {
	var out user.User
	err := r.mutate(id, func(account *user.User) {
		account.Profile = profile
		account.Profile.Skills = slices.Clone(profile.Skills)
		out = cloneUser(*account)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id common.UUID, passwordHash string) error {
	return r.mutate(id, func(account *user.User) { account.PasswordHash = passwordHash })
}

func (r *UserRepository) SetActive(_ context.Context, id common.UUID, active bool) error {
	return r.mutate(id, func(account *user.User) { account.IsActive = active })
}

func (r *UserRepository) TouchLogin(_ context.Context, id common.UUID, at time.Time) error {
	return r.mutate(id, func(account *user.User) { account.LastLoginAt = &at })
}

func (r *UserRepository) SaveJob(_ context.Context, userID, jobID common.UUID) error {
	return r.mutate(userID, func(account *user.User) {
		if !slices.Contains(account.SavedJobs, jobID) {
			account.SavedJobs = append(account.SavedJobs, jobID)
		}
	})
}

func (r *UserRepository) UnsaveJob(_ context.Context, userID, jobID common.UUID) error {
	return r.mutate(userID, func(account *user.User) {
		account.SavedJobs = slices.DeleteFunc(account.SavedJobs, func(id common.UUID) bool { return id == jobID })
	})
}

func (r *UserRepository) mutate(id common.UUID, fn func(*user.User)) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.users[id]
	if !ok {
		return notFound("user")
	}
	account = cloneUser(account)
	fn(&account)
	account.UpdatedAt = s.timestamp()
	s.users[id] = account
	return nil
}

func cloneUser(u user.User) user.User {
	u.Profile.Skills = slices.Clone(u.Profile.Skills)
	u.SavedJobs = slices.Clone(u.SavedJobs)
	if u.SavedJobs == nil {
		u.SavedJobs = []common.UUID{}
	}
	if u.LastLoginAt != nil {
		at := *u.LastLoginAt
		u.LastLoginAt = &at
	}
	return u
}
