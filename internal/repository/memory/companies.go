package memory

import (
	"context"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/company"
)

type CompanyRepository struct {
	store *Store
}

func NewCompanyRepository(store *Store) *CompanyRepository {
	return &CompanyRepository{store: store}
}

func (r *CompanyRepository) Create(_ context.Context, c company.Company) (*company.Company, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.companies {
		if existing.EmployerID == c.EmployerID {
			return nil, common.NewError(common.CodeConflict, "employer already has a company", nil)
		}
	}
	if c.ID.IsZero() {
		c.ID = common.NewUUID()
	}
	now := s.timestamp()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.companies[c.ID] = c
	return &c, nil
}

func (r *CompanyRepository) Update(_ context.Context, c company.Company) (*company.Company, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.companies[c.ID]
	if !ok {
		return nil, notFound("company")
	}
	c.EmployerID = current.EmployerID
	c.CreatedAt = current.CreatedAt
	c.UpdatedAt = s.timestamp()
	s.companies[c.ID] = c
	return &c, nil
}

func (r *CompanyRepository) Delete(_ context.Context, id common.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[id]; !ok {
		return notFound("company")
	}
	delete(s.companies, id)
	return nil
}

func (r *CompanyRepository) GetByID(_ context.Context, id common.UUID) (*company.Company, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, notFound("company")
	}
	return &c, nil
}

func (r *CompanyRepository) GetByEmployer(_ context.Context, employerID common.UUID) (*company.Company, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.companies {
		if c.EmployerID == employerID {
			return &c, nil
		}
	}
	return nil, notFound("company")
}

func (r *CompanyRepository) List(_ context.Context, query string, page common.Page) ([]company.Company, int, error) {
	s := r.store
	s.mu.RLock()
	matched := make([]company.Company, 0, len(s.companies))
	for _, c := range s.companies {
		if query == "" || containsFold(c.Name, query) || containsFold(c.Industry, query) {
			matched = append(matched, c)
		}
	}
	s.mu.RUnlock()
	newestFirst(matched, func(c company.Company) time.Time { return c.CreatedAt }, func(c company.Company) common.UUID { return c.ID })
	return paginate(matched, page), len(matched), nil
}
