package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"jobboard/internal/authz"
	"jobboard/internal/common"
	"jobboard/internal/domain/company"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
	"jobboard/internal/validation"
)

type JobPage struct {
	Items []job.Job       `json:"jobs"`
	Meta  common.PageMeta `json:"pagination"`
}

type JobStats struct {
	Total      int                `json:"total"`
	ByStatus   map[job.Status]int `json:"byStatus"`
	ByCategory map[string]int     `json:"byCategory"`
}

type JobService struct {
	jobs      job.Repository
	companies company.Repository
	users     user.Repository
	logger    *slog.Logger
	now       func() time.Time
}

func NewJobService(jobs job.Repository, companies company.Repository, users user.Repository, logger *slog.Logger) *JobService {
	return &JobService{jobs: jobs, companies: companies, users: users, logger: logger, now: time.Now}
}

func (s *JobService) Create(ctx context.Context, actor authz.Actor, input JobInput) (*job.Job, error) {
	if err := authz.Require(actor, authz.CapJobCreate); err != nil {
		return nil, err
	}
	j, err := s.fromInput(ctx, actor, job.Job{PostedBy: actor.ID}, input)
	if err != nil {
		return nil, err
	}
	if j.CompanyID == nil {
		if c, err := s.companies.GetByEmployer(ctx, actor.ID); err == nil {
			j.CompanyID = &c.ID
		} else if !common.Is(err, common.CodeNotFound) {
			return nil, err
		}
	}
	created, err := s.jobs.Create(ctx, j)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "job created", slog.String("job_id", created.ID.String()), slog.String("posted_by", actor.ID.String()))
	return created, nil
}

func (s *JobService) Update(ctx context.Context, actor authz.Actor, id common.UUID, input JobInput) (*job.Job, error) {
	current, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanWriteJob(actor, *current); err != nil {
		return nil, err
	}
	j, err := s.fromInput(ctx, actor, *current, input)
	if err != nil {
		return nil, err
	}
	return s.jobs.Update(ctx, j)
}

func (s *JobService) Delete(ctx context.Context, actor authz.Actor, id common.UUID) error {
	current, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.CanWriteJob(actor, *current); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "job deleted", slog.String("job_id", id.String()), slog.String("by", actor.ID.String()))
	return nil
}

// Get returns a job and counts the view. Drafts are visible only to their
// owner and admins.
func (s *JobService) Get(ctx context.Context, actor *authz.Actor, id common.UUID) (*job.Job, error) {
	j, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.Status == job.StatusDraft && (actor == nil || authz.CanWriteJob(*actor, *j) != nil) {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	if err := s.jobs.IncrementViews(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "job view count failed", slog.String("job_id", id.String()), slog.String("error", err.Error()))
	} else {
		j.Views++
	}
	return j, nil
}

// List serves the public job search. Only active jobs are listed unless a
// non-draft status is asked for explicitly.
func (s *JobService) List(ctx context.Context, query JobQuery) (*JobPage, error) {
	filter, err := buildJobFilter(query)
	if err != nil {
		return nil, err
	}
	if len(filter.Statuses) == 0 {
		filter.Statuses = []job.Status{job.StatusActive}
	} else if filter.Statuses[0] == job.StatusDraft {
		return nil, common.NewValidationError("invalid status", map[string]string{"status": "draft jobs are not listed publicly"})
	}
	return s.page(ctx, filter, query.Page, query.Limit)
}

// Mine lists every job the actor posted, drafts included.
func (s *JobService) Mine(ctx context.Context, actor authz.Actor, query JobQuery) (*JobPage, error) {
	if err := authz.Require(actor, authz.CapJobCreate); err != nil {
		return nil, err
	}
	filter, err := buildJobFilter(query)
	if err != nil {
		return nil, err
	}
	filter.PostedBy = &actor.ID
	return s.page(ctx, filter, query.Page, query.Limit)
}

// Recommended matches active jobs against a candidate's profile skills and
// falls back to the newest active jobs otherwise.
func (s *JobService) Recommended(ctx context.Context, actor *authz.Actor, page, limit int) (*JobPage, error) {
	filter := job.Filter{Statuses: []job.Status{job.StatusActive}}
	if actor != nil && actor.Role == user.RoleCandidate {
		account, err := s.users.GetByID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		filter.Skills = account.Profile.Skills
	}
	return s.page(ctx, filter, page, limit)
}

// Stats counts jobs by status and category. Employers see their own jobs,
// admins see everything and everyone else sees active jobs.
func (s *JobService) Stats(ctx context.Context, actor *authz.Actor) (*JobStats, error) {
	filter := job.Filter{Statuses: []job.Status{job.StatusActive}}
	if actor != nil {
		switch {
		case authz.Has(actor.Role, authz.CapStatsAll):
			filter = job.Filter{}
		case authz.Has(actor.Role, authz.CapJobCreate):
			filter = job.Filter{PostedBy: &actor.ID}
		}
	}
	byStatus, err := s.jobs.CountByStatus(ctx, filter)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.jobs.CountByCategory(ctx, filter)
	if err != nil {
		return nil, err
	}
	stats := &JobStats{ByStatus: map[job.Status]int{}, ByCategory: byCategory}
	for _, status := range []job.Status{job.StatusActive, job.StatusPaused, job.StatusClosed, job.StatusDraft} {
		stats.ByStatus[status] = byStatus[status]
		stats.Total += byStatus[status]
	}
	return stats, nil
}

func (s *JobService) page(ctx context.Context, filter job.Filter, page, limit int) (*JobPage, error) {
	p := common.NewPage(page, limit)
	items, total, err := s.jobs.List(ctx, filter, p)
	if err != nil {
		return nil, err
	}
	return &JobPage{Items: items, Meta: common.NewPageMeta(p, total)}, nil
}

func (s *JobService) fromInput(ctx context.Context, actor authz.Actor, j job.Job, input JobInput) (job.Job, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Skills = trimAll(input.Skills)
	if err := validation.Struct("invalid job data", input); err != nil {
		return job.Job{}, err
	}
	if input.Salary.Min < 0 || input.Salary.Max < 0 || (input.Salary.Max > 0 && input.Salary.Min > input.Salary.Max) {
		return job.Job{}, common.NewValidationError("invalid job data", map[string]string{"salary": "salary range is invalid"})
	}
	if input.Deadline != nil && j.ID.IsZero() && !input.Deadline.After(s.now()) {
		return job.Job{}, common.NewValidationError("invalid job data", map[string]string{"deadline": "deadline must be in the future"})
	}
	if input.Company != "" {
		companyID := common.UUID(strings.ToLower(input.Company))
		c, err := s.companies.GetByID(ctx, companyID)
		if err != nil {
			return job.Job{}, err
		}
		if err := authz.CanWriteCompany(actor, *c); err != nil {
			return job.Job{}, err
		}
		j.CompanyID = &c.ID
	}

	j.Title = input.Title
	j.Description = input.Description
	j.Location = strings.TrimSpace(input.Location)
	j.Type = input.Type
	j.Category = strings.TrimSpace(input.Category)
	j.ExperienceLevel = job.ExperienceLevel(input.ExperienceLevel)
	j.Salary = input.Salary
	j.Remote = input.Remote
	j.Skills = input.Skills
	j.Benefits = trimAll(input.Benefits)
	j.Requirements = trimAll(input.Requirements)
	j.Deadline = input.Deadline
	switch {
	case input.Status != "":
		j.Status = job.Status(input.Status)
	case j.Status == "":
		j.Status = job.StatusActive
	}
	return j, nil
}

func buildJobFilter(query JobQuery) (job.Filter, error) {
	filter := job.Filter{
		Category:        strings.TrimSpace(query.Category),
		Location:        strings.TrimSpace(query.Location),
		Remote:          query.Remote,
		Query:           strings.TrimSpace(query.Query),
		Skills:          trimAll(query.Skills),
		Type:            job.Type(strings.TrimSpace(query.Type)),
		ExperienceLevel: job.ExperienceLevel(strings.TrimSpace(query.ExperienceLevel)),
	}
	if query.Status != "" {
		status, ok := job.ParseStatus(query.Status)
		if !ok {
			return job.Filter{}, common.NewValidationError("invalid status", map[string]string{"status": "status must be one of: active, paused, closed, draft"})
		}
		filter.Statuses = []job.Status{status}
	}
	return filter, nil
}
