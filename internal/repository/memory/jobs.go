package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/job"
)

type JobRepository struct {
	store *Store
}

func NewJobRepository(store *Store) *JobRepository {
	return &JobRepository{store: store}
}

func (r *JobRepository) Create(_ context.Context, j job.Job) (*job.Job, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if j.ID.IsZero() {
		j.ID = common.NewUUID()
	}
	now := s.timestamp()
	j.CreatedAt = now
	j.UpdatedAt = now
	j.Views = 0
	j.Applications = []common.UUID{}
	s.jobs[j.ID] = cloneJob(j)
	out := cloneJob(j)
	return &out, nil
}

func (r *JobRepository) Update(_ context.Context, j job.Job) (*job.Job, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.jobs[j.ID]
	if !ok {
		return nil, notFound("job")
	}
	j.PostedBy = current.PostedBy
	j.Views = current.Views
	j.Applications = current.Applications
	j.CreatedAt = current.CreatedAt
	j.UpdatedAt = s.timestamp()
	s.jobs[j.ID] = cloneJob(j)
	out := cloneJob(j)
	return &out, nil
}

func (r *JobRepository) Delete(_ context.Context, id common.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return notFound("job")
	}
	delete(s.jobs, id)
	return nil
}

func (r *JobRepository) GetByID(_ context.Context, id common.UUID) (*job.Job, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, notFound("job")
	}
	out := cloneJob(j)
	return &out, nil
}

func (r *JobRepository) List(_ context.Context, filter job.Filter, page common.Page) ([]job.Job, int, error) {
	matched := r.matching(filter)
	newestFirst(matched, func(j job.Job) time.Time { return j.CreatedAt }, func(j job.Job) common.UUID { return j.ID })
	return paginate(matched, page), len(matched), nil
}

func (r *JobRepository) IncrementViews(_ context.Context, id common.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return notFound("job")
	}
	j.Views++
	s.jobs[id] = j
	return nil
}

func (r *JobRepository) AddApplication(_ context.Context, jobID, applicationID common.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return notFound("job")
	}
	if slices.Contains(j.Applications, applicationID) {
		return nil
	}
	j.Applications = append(slices.Clone(j.Applications), applicationID)
	s.jobs[jobID] = j
	return nil
}

func (r *JobRepository) CountByStatus(_ context.Context, filter job.Filter) (map[job.Status]int, error) {
	counts := map[job.Status]int{}
	for _, j := range r.matching(filter) {
		counts[j.Status]++
	}
	return counts, nil
}

func (r *JobRepository) CountByCategory(_ context.Context, filter job.Filter) (map[string]int, error) {
	counts := map[string]int{}
	for _, j := range r.matching(filter) {
		counts[j.Category]++
	}
	return counts, nil
}

func (r *JobRepository) matching(filter job.Filter) []job.Job {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]job.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if matchesJob(j, filter) {
			out = append(out, cloneJob(j))
		}
	}
	return out
}

func matchesJob(j job.Job, f job.Filter) bool {
	if f.PostedBy != nil && j.PostedBy != *f.PostedBy {
		return false
	}
	if f.CompanyID != nil && (j.CompanyID == nil || *j.CompanyID != *f.CompanyID) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, j.Status) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(j.Category, f.Category) {
		return false
	}
	if f.Type != "" && j.Type != f.Type {
		return false
	}
	if f.ExperienceLevel != "" && j.ExperienceLevel != f.ExperienceLevel {
		return false
	}
	if f.Location != "" && !containsFold(j.Location, f.Location) {
		return false
	}
	if f.Remote != nil && j.Remote != *f.Remote {
		return false
	}
	if f.Query != "" && !containsFold(j.Title, f.Query) && !containsFold(j.Description, f.Query) {
		return false
	}
	if len(f.Skills) > 0 && !overlapsFold(j.Skills, f.Skills) {
		return false
	}
	return true
}

func containsFold(value, sub string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(sub))
}

func overlapsFold(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if strings.EqualFold(strings.TrimSpace(x), strings.TrimSpace(y)) {
				return true
			}
		}
	}
	return false
}

func cloneJob(j job.Job) job.Job {
	if j.CompanyID != nil {
		id := *j.CompanyID
		j.CompanyID = &id
	}
	if j.Deadline != nil {
		d := *j.Deadline
		j.Deadline = &d
	}
	j.Skills = cloneStrings(j.Skills)
	j.Benefits = cloneStrings(j.Benefits)
	j.Requirements = cloneStrings(j.Requirements)
	j.Applications = slices.Clone(j.Applications)
	if j.Applications == nil {
		j.Applications = []common.UUID{}
	}
	return j
}

func cloneStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return slices.Clone(values)
}
