package app

import (
	"context"
	"strings"

	"jobboard/internal/authz"
	"jobboard/internal/common"
	"jobboard/internal/domain/company"
	"jobboard/internal/validation"
)

type CompanyPage struct {
	Items []company.Company `json:"companies"`
	Meta  common.PageMeta   `json:"pagination"`
}

type CompanyService struct {
	companies company.Repository
}

func NewCompanyService(companies company.Repository) *CompanyService {
	return &CompanyService{companies: companies}
}

func (s *CompanyService) Create(ctx context.Context, actor authz.Actor, input CompanyInput) (*company.Company, error) {
	if err := authz.Require(actor, authz.CapCompanyManage); err != nil {
		return nil, err
	}
	c, err := applyCompanyInput(company.Company{EmployerID: actor.ID}, input)
	if err != nil {
		return nil, err
	}
	created, err := s.companies.Create(ctx, c)
	if common.Is(err, common.CodeConflict) {
		return nil, common.NewError(common.CodeConflict, "you already have a company profile", err)
	}
	return created, err
}

func (s *CompanyService) Update(ctx context.Context, actor authz.Actor, id common.UUID, input CompanyInput) (*company.Company, error) {
	current, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanWriteCompany(actor, *current); err != nil {
		return nil, err
	}
	c, err := applyCompanyInput(*current, input)
	if err != nil {
		return nil, err
	}
	return s.companies.Update(ctx, c)
}

func (s *CompanyService) Delete(ctx context.Context, actor authz.Actor, id common.UUID) error {
	current, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.CanWriteCompany(actor, *current); err != nil {
		return err
	}
	return s.companies.Delete(ctx, id)
}

func (s *CompanyService) Get(ctx context.Context, id common.UUID) (*company.Company, error) {
	return s.companies.GetByID(ctx, id)
}

func (s *CompanyService) Mine(ctx context.Context, actor authz.Actor) (*company.Company, error) {
	return s.companies.GetByEmployer(ctx, actor.ID)
}

func (s *CompanyService) List(ctx context.Context, query string, page, limit int) (*CompanyPage, error) {
	p := common.NewPage(page, limit)
	items, total, err := s.companies.List(ctx, strings.TrimSpace(query), p)
	if err != nil {
		return nil, err
	}
	return &CompanyPage{Items: items, Meta: common.NewPageMeta(p, total)}, nil
}

func applyCompanyInput(c company.Company, input CompanyInput) (company.Company, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct("invalid company data", input); err != nil {
		return company.Company{}, err
	}
	c.Name = input.Name
	c.Description = strings.TrimSpace(input.Description)
	c.Website = strings.TrimSpace(input.Website)
	c.Industry = strings.TrimSpace(input.Industry)
	c.Size = input.Size
	c.Location = strings.TrimSpace(input.Location)
	c.LogoURL = strings.TrimSpace(input.LogoURL)
	c.Founded = input.Founded
	return c, nil
}
