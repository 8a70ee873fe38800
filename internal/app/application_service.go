package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"jobboard/internal/authz"
	"jobboard/internal/common"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
	"jobboard/internal/validation"
)

type ApplicationPage struct {
	Items []application.Application `json:"applications"`
	Meta  common.PageMeta           `json:"pagination"`
}

type ApplicationStats struct {
	Total    int                        `json:"total"`
	ByStatus map[application.Status]int `json:"byStatus"`
}

type ApplicationService struct {
	repo   application.Repository
	jobs   job.Repository
	users  user.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewApplicationService(repo application.Repository, jobs job.Repository, users user.Repository, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{repo: repo, jobs: jobs, users: users, logger: logger, now: time.Now}
}

// Submit creates a pending application. Checks run in a fixed order and the
// first failure is returned: role, job existence, job open, duplicate,
// resume present, personal information.
func (s *ApplicationService) Submit(ctx context.Context, actor authz.Actor, input SubmitInput) (*application.Application, error) {
	if err := authz.Require(actor, authz.CapApplicationSubmit); err != nil {
		return nil, common.NewError(common.CodeForbidden, "only candidates can apply for jobs", nil)
	}
	jobID, err := common.ParseUUID(input.JobID)
	if err != nil {
		return nil, common.NewValidationError("invalid job id", map[string]string{"jobId": "jobId must be a valid id"})
	}
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeNotFound, "job not found", err)
		}
		return nil, err
	}
	now := s.now().UTC()
	if !j.AcceptsApplications(now) {
		return nil, common.NewError(common.CodeValidation, "this job is no longer accepting applications", nil)
	}
	if _, err := s.repo.FindByApplicantAndJob(ctx, actor.ID, jobID); err == nil {
		return nil, duplicateApplication(nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	if input.Resume == nil {
		return nil, common.NewValidationError("resume is required", map[string]string{"resume": "resume is required"})
	}
	input.PersonalInfo.Normalize()
	if err := validation.Struct("invalid personal information", input.PersonalInfo); err != nil {
		fields := map[string]string{}
		for name, msg := range fieldsOf(err) {
			fields[name] = msg
		}
		for name, msg := range input.InvalidFields {
			fields[name] = msg
		}
		return nil, common.NewValidationError("missing or invalid personal information: "+validation.FieldList(err), fields)
	}
	if len(input.InvalidFields) > 0 {
		return nil, common.NewValidationError("invalid application data", input.InvalidFields)
	}

	skills := trimAll(input.Skills)
	years := 0
	if input.Experience != nil {
		years = input.Experience.Years
	}
	if account, err := s.users.GetByID(ctx, actor.ID); err == nil {
		if len(skills) == 0 {
			skills = account.Profile.Skills
		}
		if input.Experience == nil {
			years = account.Profile.YearsOfExperience
		}
	}

	app := application.Application{
		ID:                  common.NewUUID(),
		ApplicantID:         actor.ID,
		JobID:               jobID,
		Status:              application.StatusPending,
		PersonalInfo:        input.PersonalInfo,
		CoverLetter:         strings.TrimSpace(input.CoverLetter),
		ExpectedSalary:      input.ExpectedSalary,
		Availability:        input.Availability,
		Experience:          input.Experience,
		Skills:              trimAll(input.Skills),
		Education:           input.Education,
		Languages:           input.Languages,
		Answers:             input.Answers,
		Resume:              input.Resume,
		Portfolio:           input.Portfolio,
		AdditionalDocuments: input.AdditionalDocuments,
		Timeline: []application.TimelineEntry{{
			Status:    application.StatusPending,
			Date:      now,
			Notes:     "Application submitted",
			UpdatedBy: actor.ID,
		}},
		CompatibilityScore: CompatibilityScore(*j, skills, years),
		CreatedAt:          now,
	}
	created, err := s.repo.Create(ctx, app)
	if err != nil {
		if common.Is(err, common.CodeConflict) {
			return nil, duplicateApplication(err)
		}
		return nil, err
	}
	if err := s.jobs.AddApplication(ctx, jobID, created.ID); err != nil {
		s.logger.ErrorContext(ctx, "job back-reference failed",
			slog.String("job_id", jobID.String()), slog.String("application_id", created.ID.String()), slog.String("error", err.Error()))
	}
	s.logger.InfoContext(ctx, "application submitted",
		slog.String("application_id", created.ID.String()), slog.String("job_id", jobID.String()), slog.Int("score", created.CompatibilityScore))
	return created, nil
}

// UpdateStatus moves an application as the job owner or an admin. Terminal
// applications keep their status; repeating the current status only adds a
// timeline entry.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor authz.Actor, id common.UUID, input UpdateStatusInput) (*application.Application, error) {
	app, j, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanReviewApplications(actor, j); err != nil {
		return nil, err
	}
	if err := validation.Struct("invalid status update", input); err != nil {
		return nil, err
	}
	next, ok := application.ParseStatus(input.Status)
	if !ok {
		return nil, common.NewValidationError("invalid status", map[string]string{"status": "status must be one of: " + statusList()})
	}
	if next == application.StatusWithdrawn {
		return nil, common.NewValidationError("invalid status", map[string]string{"status": "only the applicant can withdraw an application"})
	}
	if app.Status.IsTerminal() && next != app.Status {
		return nil, common.NewError(common.CodeValidation, "application is already "+string(app.Status)+" and cannot change status", nil)
	}
	updated, err := s.repo.UpdateStatus(ctx, id, app.Status, next, application.TimelineEntry{
		Status:    next,
		Date:      s.now().UTC(),
		Notes:     strings.TrimSpace(input.Notes),
		UpdatedBy: actor.ID,
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "application status changed",
		slog.String("application_id", id.String()), slog.String("from", string(app.Status)), slog.String("to", string(next)), slog.String("by", actor.ID.String()))
	return updated, nil
}

// Withdraw is reserved for the applicant and allowed until the application
// reaches a terminal status.
func (s *ApplicationService) Withdraw(ctx context.Context, actor authz.Actor, id common.UUID) (*application.Application, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanWithdrawApplication(actor, *app); err != nil {
		return nil, err
	}
	if app.Status.IsTerminal() {
		return nil, common.NewError(common.CodeValidation, "application is already "+string(app.Status)+" and cannot be withdrawn", nil)
	}
	updated, err := s.repo.UpdateStatus(ctx, id, app.Status, application.StatusWithdrawn, application.TimelineEntry{
		Status:    application.StatusWithdrawn,
		Date:      s.now().UTC(),
		Notes:     "Application withdrawn by applicant",
		UpdatedBy: actor.ID,
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "application withdrawn", slog.String("application_id", id.String()))
	return updated, nil
}

func (s *ApplicationService) Get(ctx context.Context, actor authz.Actor, id common.UUID) (*application.Application, error) {
	app, j, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanReadApplication(actor, *app, j); err != nil {
		return nil, err
	}
	return app, nil
}

// List scopes results by role: candidates see their own applications,
// employers those sent to their jobs and admins everything.
func (s *ApplicationService) List(ctx context.Context, actor authz.Actor, query ApplicationQuery) (*ApplicationPage, error) {
	filter, err := s.scope(ctx, actor, query)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, filter, query)
}

// ListMine always restricts to applications the actor submitted.
func (s *ApplicationService) ListMine(ctx context.Context, actor authz.Actor, query ApplicationQuery) (*ApplicationPage, error) {
	status, err := parseStatusFilter(query.Status)
	if err != nil {
		return nil, err
	}
	filter := application.Filter{ApplicantID: &actor.ID, Status: status}
	if query.JobID != "" {
		jobID, err := common.ParseUUID(query.JobID)
		if err != nil {
			return nil, common.NewValidationError("invalid job id", map[string]string{"job": "job must be a valid id"})
		}
		filter.JobID = &jobID
	}
	return s.page(ctx, filter, query)
}

func (s *ApplicationService) ListByJob(ctx context.Context, actor authz.Actor, jobID common.UUID, query ApplicationQuery) (*ApplicationPage, error) {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanReviewApplications(actor, *j); err != nil {
		return nil, err
	}
	status, err := parseStatusFilter(query.Status)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, application.Filter{JobID: &jobID, Status: status}, query)
}

// Stats counts applications by status within the same scope as List. Every
// status is present in the result.
func (s *ApplicationService) Stats(ctx context.Context, actor authz.Actor) (*ApplicationStats, error) {
	filter, err := s.scope(ctx, actor, ApplicationQuery{})
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByStatus(ctx, filter)
	if err != nil {
		return nil, err
	}
	stats := &ApplicationStats{ByStatus: make(map[application.Status]int, len(application.Statuses()))}
	for _, status := range application.Statuses() {
		stats.ByStatus[status] = counts[status]
		stats.Total += counts[status]
	}
	return stats, nil
}

func (s *ApplicationService) AddNote(ctx context.Context, actor authz.Actor, id common.UUID, input NoteInput) (*application.Application, error) {
	app, j, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanReadApplication(actor, *app, j); err != nil {
		return nil, err
	}
	input.Body = strings.TrimSpace(input.Body)
	if err := validation.Struct("invalid note", input); err != nil {
		return nil, err
	}
	return s.repo.AddNote(ctx, id, application.Note{
		Author:     actor.ID,
		AuthorRole: actor.Role,
		Body:       input.Body,
		CreatedAt:  s.now().UTC(),
	})
}

func (s *ApplicationService) ScheduleInterview(ctx context.Context, actor authz.Actor, id common.UUID, input InterviewInput) (*application.Application, error) {
	app, j, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanReviewApplications(actor, j); err != nil {
		return nil, err
	}
	if err := validation.Struct("invalid interview", input); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if !input.ScheduledAt.After(now) {
		return nil, common.NewValidationError("invalid interview", map[string]string{"scheduledAt": "scheduledAt must be in the future"})
	}
	if app.Status.IsTerminal() {
		return nil, common.NewError(common.CodeValidation, "cannot schedule an interview for a "+string(app.Status)+" application", nil)
	}
	updated, err := s.repo.AddInterview(ctx, id, application.Interview{
		ScheduledAt: input.ScheduledAt.UTC(),
		Type:        input.Type,
		Location:    strings.TrimSpace(input.Location),
		Notes:       strings.TrimSpace(input.Notes),
		CreatedBy:   actor.ID,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "interview scheduled", slog.String("application_id", id.String()), slog.Time("scheduled_at", input.ScheduledAt))
	return updated, nil
}

// load fetches an application with its job. A deleted job yields a zero job
// so only the applicant and admins keep access.
func (s *ApplicationService) load(ctx context.Context, id common.UUID) (*application.Application, job.Job, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, job.Job{}, err
	}
	j, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return app, job.Job{}, nil
		}
		return nil, job.Job{}, err
	}
	return app, *j, nil
}

func (s *ApplicationService) scope(ctx context.Context, actor authz.Actor, query ApplicationQuery) (application.Filter, error) {
	status, err := parseStatusFilter(query.Status)
	if err != nil {
		return application.Filter{}, err
	}
	filter := application.Filter{Status: status}
	if query.JobID != "" {
		jobID, err := common.ParseUUID(query.JobID)
		if err != nil {
			return application.Filter{}, common.NewValidationError("invalid job id", map[string]string{"job": "job must be a valid id"})
		}
		filter.JobID = &jobID
	}
	switch actor.Role {
	case user.RoleAdmin:
	case user.RoleEmployer:
		if filter.JobID != nil {
			j, err := s.jobs.GetByID(ctx, *filter.JobID)
			if err != nil {
				return application.Filter{}, err
			}
			if err := authz.CanReviewApplications(actor, *j); err != nil {
				return application.Filter{}, err
			}
		}
		filter.EmployerID = &actor.ID
	default:
		filter.ApplicantID = &actor.ID
	}
	return filter, nil
}

func (s *ApplicationService) page(ctx context.Context, filter application.Filter, query ApplicationQuery) (*ApplicationPage, error) {
	p := common.NewPage(query.Page, query.Limit)
	items, total, err := s.repo.List(ctx, filter, p)
	if err != nil {
		return nil, err
	}
	return &ApplicationPage{Items: items, Meta: common.NewPageMeta(p, total)}, nil
}

func parseStatusFilter(value string) (application.Status, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	status, ok := application.ParseStatus(value)
	if !ok {
		return "", common.NewValidationError("invalid status", map[string]string{"status": "status must be one of: " + statusList()})
	}
	return status, nil
}

func statusList() string {
	names := make([]string, 0, len(application.Statuses()))
	for _, status := range application.Statuses() {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}

func duplicateApplication(err error) error {
	return common.NewError(common.CodeConflict, "you have already applied for this job", err)
}

func fieldsOf(err error) map[string]string {
	var appErr *common.Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
