package application

import (
	"context"

	"jobboard/internal/common"
)

type Repository interface {
	// Create fails with common.CodeConflict when (applicant, job) exists.
	Create(ctx context.Context, app Application) (*Application, error)
	GetByID(ctx context.Context, id common.UUID) (*Application, error)
	FindByApplicantAndJob(ctx context.Context, applicantID, jobID common.UUID) (*Application, error)
	List(ctx context.Context, filter Filter, page common.Page) ([]Application, int, error)
	CountByStatus(ctx context.Context, filter Filter) (map[Status]int, error)
	// UpdateStatus moves the application from status from to status to and
	// appends entry to the timeline atomically. If the stored status is no
	// longer from, nothing is written and a common.CodeValidation error is
	// returned.
	UpdateStatus(ctx context.Context, id common.UUID, from, to Status, entry TimelineEntry) (*Application, error)
	AddNote(ctx context.Context, id common.UUID, note Note) (*Application, error)
	AddInterview(ctx context.Context, id common.UUID, interview Interview) (*Application, error)
}
