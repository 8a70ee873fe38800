package memory

import (
	"context"
	"slices"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/application"
)

type ApplicationRepository struct {
	store *Store
}

func NewApplicationRepository(store *Store) *ApplicationRepository {
	return &ApplicationRepository{store: store}
}

func (r *ApplicationRepository) Create(_ context.Context, app application.Application) (*application.Application, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.applications {
		if existing.ApplicantID == app.ApplicantID && existing.JobID == app.JobID {
			return nil, common.NewError(common.CodeConflict, "application already exists", nil)
		}
	}
	if app.ID.IsZero() {
		app.ID = common.NewUUID()
	}
	now := s.timestamp()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = app.CreatedAt
	s.applications[app.ID] = cloneApplication(app)
	out := cloneApplication(app)
	return &out, nil
}

func (r *ApplicationRepository) GetByID(_ context.Context, id common.UUID) (*application.Application, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[id]
	if !ok {
		return nil, notFound("application")
	}
	out := cloneApplication(app)
	return &out, nil
}

func (r *ApplicationRepository) FindByApplicantAndJob(_ context.Context, applicantID, jobID common.UUID) (*application.Application, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, app := range s.applications {
		if app.ApplicantID == applicantID && app.JobID == jobID {
			out := cloneApplication(app)
			return &out, nil
		}
	}
	return nil, notFound("application")
}

func (r *ApplicationRepository) List(_ context.Context, filter application.Filter, page common.Page) ([]application.Application, int, error) {
	matched := r.matching(filter)
	newestFirst(matched,
		func(a application.Application) time.Time { return a.CreatedAt },
		func(a application.Application) common.UUID { return a.ID })
	return paginate(matched, page), len(matched), nil
}

func (r *ApplicationRepository) CountByStatus(_ context.Context, filter application.Filter) (map[application.Status]int, error) {
	counts := map[application.Status]int{}
	for _, app := range r.matching(filter) {
		counts[app.Status]++
	}
	return counts, nil
}

func (r *ApplicationRepository) UpdateStatus(_ context.Context, id common.UUID, from, to application.Status, entry application.TimelineEntry) (*application.Application, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[id]
	if !ok {
		return nil, notFound("application")
	}
	if app.Status != from {
		return nil, staleStatus(app.Status)
	}
	app = cloneApplication(app)
	app.Status = to
	app.Timeline = append(app.Timeline, entry)
	app.UpdatedAt = s.timestamp()
	s.applications[id] = app
	out := cloneApplication(app)
	return &out, nil
}

func staleStatus(current application.Status) error {
	return common.NewError(common.CodeValidation, "application status changed to "+string(current)+", reload and retry", nil)
}

func (r *ApplicationRepository) AddNote(_ context.Context, id common.UUID, note application.Note) (*application.Application, error) {
	return r.mutate(id, func(app *application.Application) {
		app.Notes = append(app.Notes, note)
	})
}

func (r *ApplicationRepository) AddInterview(_ context.Context, id common.UUID, interview application.Interview) (*application.Application, error) {
	return r.mutate(id, func(app *application.Application) {
		app.Interviews = append(app.Interviews, interview)
	})
}

func (r *ApplicationRepository) mutate(id common.UUID, fn func(*application.Application)) (*application.Application, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[id]
	if !ok {
		return nil, notFound("application")
	}
	app = cloneApplication(app)
	fn(&app)
	app.UpdatedAt = s.timestamp()
	s.applications[id] = app
	out := cloneApplication(app)
	return &out, nil
}

func (r *ApplicationRepository) matching(filter application.Filter) []application.Application {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]application.Application, 0, len(s.applications))
	for _, app := range s.applications {
		if filter.ApplicantID != nil && app.ApplicantID != *filter.ApplicantID {
			continue
		}
		if filter.JobID != nil && app.JobID != *filter.JobID {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		if filter.EmployerID != nil {
			j, ok := s.jobs[app.JobID]
			if !ok || j.PostedBy != *filter.EmployerID {
				continue
			}
		}
		out = append(out, cloneApplication(app))
	}
	return out
}

func cloneApplication(app application.Application) application.Application {
	if app.ExpectedSalary != nil {
		v := *app.ExpectedSalary
		app.ExpectedSalary = &v
	}
	if app.Availability != nil {
		v := *app.Availability
		app.Availability = &v
	}
	if app.Experience != nil {
		v := *app.Experience
		app.Experience = &v
	}
	if app.Resume != nil {
		v := *app.Resume
		app.Resume = &v
	}
	if app.Portfolio != nil {
		v := *app.Portfolio
		app.Portfolio = &v
	}
	app.Skills = cloneStrings(app.Skills)
	app.Education = cloneSlice(app.Education)
	app.Languages = cloneSlice(app.Languages)
	app.Answers = cloneSlice(app.Answers)
	app.AdditionalDocuments = cloneSlice(app.AdditionalDocuments)
	app.Timeline = cloneSlice(app.Timeline)
	app.Notes = cloneSlice(app.Notes)
	app.Interviews = cloneSlice(app.Interviews)
	return app
}

func cloneSlice[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return slices.Clone(values)
}
