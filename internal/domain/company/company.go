package company

import (
	"context"
	"time"

	"jobboard/internal/common"
)

type Company struct {
	ID          common.UUID `json:"id"`
	EmployerID  common.UUID `json:"employer"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Website     string      `json:"website,omitempty"`
	Industry    string      `json:"industry,omitempty"`
	Size        string      `json:"size,omitempty"`
	Location    string      `json:"location,omitempty"`
	LogoURL     string      `json:"logoUrl,omitempty"`
	Founded     int         `json:"founded,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type Repository interface {
	Create(ctx context.Context, c Company) (*Company, error)
	Update(ctx context.Context, c Company) (*Company, error)
	Delete(ctx context.Context, id common.UUID) error
	GetByID(ctx context.Context, id common.UUID) (*Company, error)
	GetByEmployer(ctx context.Context, employerID common.UUID) (*Company, error)
	List(ctx context.Context, query string, page common.Page) ([]Company, int, error)
}
