package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobboard/internal/authz"
	"jobboard/internal/common"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
	"jobboard/internal/ratelimit"
	"jobboard/internal/repository/memory"
	"jobboard/internal/security"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store        *memory.Store
	users        *memory.UserRepository
	jobs         *memory.JobRepository
	applications *memory.ApplicationRepository
	companies    *memory.CompanyRepository

	auth     *AuthService
	userSvc  *UserService
	jobSvc   *JobService
	appSvc   *ApplicationService
	company  *CompanyService
	notifier *recordingNotifier
	attempts *ratelimit.MemoryAttemptCounter
}

type recordingNotifier struct {
	tokens []string
}

func (n *recordingNotifier) PasswordReset(_ context.Context, _ user.User, token string, _ time.Time) error {
	n.tokens = append(n.tokens, token)
	return nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	f := &fixture{
		store:        store,
		users:        memory.NewUserRepository(store),
		jobs:         memory.NewJobRepository(store),
		applications: memory.NewApplicationRepository(store),
		companies:    memory.NewCompanyRepository(store),
		notifier:     &recordingNotifier{},
		attempts:     ratelimit.NewMemoryAttemptCounter(5, 15*time.Minute),
	}
	clock := func() time.Time { return testNow }
	f.auth = NewAuthService(f.users, memory.NewRefreshTokenRepository(store), memory.NewResetTokenRepository(store),
		security.NewJWTProvider("test-secret"), f.attempts, f.notifier, logger,
		AuthConfig{AccessTokenTTL: 15 * time.Minute, RefreshTokenTTL: 24 * time.Hour, ResetTokenTTL: time.Hour})
	f.auth.now = clock
	f.userSvc = NewUserService(f.users, f.jobs, logger)
	f.jobSvc = NewJobService(f.jobs, f.companies, f.users, logger)
	f.jobSvc.now = clock
	f.appSvc = NewApplicationService(f.applications, f.jobs, f.users, logger)
	f.appSvc.now = clock
	f.company = NewCompanyService(f.companies)
	return f
}

func (f *fixture) register(t *testing.T, email string, role user.Role) authz.Actor {
	t.Helper()
	result, err := f.auth.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  "password123",
		Role:      string(role),
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return authz.Actor{ID: result.User.ID, Role: result.User.Role}
}

func (f *fixture) admin(t *testing.T) authz.Actor {
	t.Helper()
	account, err := f.users.Create(context.Background(), user.User{Email: "admin@example.com", Role: user.RoleAdmin, IsActive: true})
	require.NoError(t, err)
	return authz.Actor{ID: account.ID, Role: user.RoleAdmin}
}

func (f *fixture) postJob(t *testing.T, employer authz.Actor, mutate ...func(*JobInput)) *job.Job {
	t.Helper()
	input := JobInput{
		Title:           "Backend Engineer",
		Description:     "Build APIs",
		Location:        "Berlin",
		Type:            job.TypeFullTime,
		Category:        "engineering",
		ExperienceLevel: string(job.LevelMid),
		Skills:          []string{"Go", "PostgreSQL"},
	}
	for _, m := range mutate {
		m(&input)
	}
	created, err := f.jobSvc.Create(context.Background(), employer, input)
	require.NoError(t, err)
	return created
}

func submission(jobID common.UUID) SubmitInput {
	return SubmitInput{
		JobID: jobID.String(),
		PersonalInfo: application.PersonalInfo{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Phone:     "+44 20 0000 0000",
		},
		Resume: &application.FileDescriptor{
			Filename:     "resume-1-a.pdf",
			OriginalName: "cv.pdf",
			MimeType:     "application/pdf",
			Size:         10,
			URL:          "/uploads/resumes/resume-1-a.pdf",
		},
	}
}
