package app

import (
	"context"
	"log/slog"
	"strings"

	"jobboard/internal/authz"
	"jobboard/internal/common"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
	"jobboard/internal/validation"
)

type UserService struct {
	users  user.Repository
	jobs   job.Repository
	logger *slog.Logger
}

func NewUserService(users user.Repository, jobs job.Repository, logger *slog.Logger) *UserService {
	return &UserService{users: users, jobs: jobs, logger: logger}
}

func (s *UserService) Get(ctx context.Context, actor authz.Actor, id common.UUID) (*user.User, error) {
	if err := authz.CanAccessUser(actor, id); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, actor authz.Actor, id common.UUID, input ProfileInput) (*user.User, error) {
	if err := authz.CanAccessUser(actor, id); err != nil {
		return nil, err
	}
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Skills = trimAll(input.Skills)
	if err := validation.Struct("invalid profile", input); err != nil {
		return nil, err
	}
	return s.users.UpdateProfile(ctx, id, user.Profile{
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Phone:             strings.TrimSpace(input.Phone),
		Headline:          strings.TrimSpace(input.Headline),
		Bio:               strings.TrimSpace(input.Bio),
		Location:          strings.TrimSpace(input.Location),
		Website:           strings.TrimSpace(input.Website),
		Skills:            input.Skills,
		YearsOfExperience: input.YearsOfExperience,
	})
}

// SetActive lets admins deactivate or reactivate accounts. Admins cannot
// deactivate themselves.
func (s *UserService) SetActive(ctx context.Context, actor authz.Actor, id common.UUID, active bool) (*user.User, error) {
	if err := authz.Require(actor, authz.CapUserManage); err != nil {
		return nil, err
	}
	if actor.ID == id && !active {
		return nil, common.NewError(common.CodeValidation, "you cannot deactivate your own account", nil)
	}
	if err := s.users.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user activation changed", slog.String("user_id", id.String()), slog.Bool("active", active), slog.String("by", actor.ID.String()))
	return s.users.GetByID(ctx, id)
}

func (s *UserService) SaveJob(ctx context.Context, actor authz.Actor, jobID common.UUID) error {
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return err
	}
	return s.users.SaveJob(ctx, actor.ID, jobID)
}

func (s *UserService) UnsaveJob(ctx context.Context, actor authz.Actor, jobID common.UUID) error {
	return s.users.UnsaveJob(ctx, actor.ID, jobID)
}

// SavedJobs resolves the actor's saved references, skipping jobs that have
// since been deleted.
func (s *UserService) SavedJobs(ctx context.Context, actor authz.Actor) ([]job.Job, error) {
	account, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	items := make([]job.Job, 0, len(account.SavedJobs))
	for _, id := range account.SavedJobs {
		j, err := s.jobs.GetByID(ctx, id)
		if common.Is(err, common.CodeNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, *j)
	}
	return items, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
