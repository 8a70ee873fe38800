package user

import (
	"context"
	"time"

	"jobboard/internal/common"
)

type Repository interface {
	Create(ctx context.Context, account User) (*User, error)
	GetByID(ctx context.Context, id common.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id common.UUID, profile Profile) (*User, error)
	UpdatePassword(ctx context.Context, id common.UUID, passwordHash string) error
	SetActive(ctx context.Context, id common.UUID, active bool) error
	TouchLogin(ctx context.Context, id common.UUID, at time.Time) error
	SaveJob(ctx context.Context, userID, jobID common.UUID) error
	UnsaveJob(ctx context.Context, userID, jobID common.UUID) error
}
