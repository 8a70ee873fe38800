package job

import (
	"context"

	"jobboard/internal/common"
)

type Repository interface {
	Create(ctx context.Context, j Job) (*Job, error)
	Update(ctx context.Context, j Job) (*Job, error)
	Delete(ctx context.Context, id common.UUID) error
	GetByID(ctx context.Context, id common.UUID) (*Job, error)
	List(ctx context.Context, filter Filter, page common.Page) ([]Job, int, error)
	IncrementViews(ctx context.Context, id common.UUID) error
	// AddApplication records the back-reference once; repeated calls are no-ops.
	AddApplication(ctx context.Context, jobID, applicationID common.UUID) error
	CountByStatus(ctx context.Context, filter Filter) (map[Status]int, error)
	CountByCategory(ctx context.Context, filter Filter) (map[string]int, error)
}
