package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/common"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/auth"
	"jobboard/internal/domain/company"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
)

func TestUserEmailIsUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewStore())

	created, err := repo.Create(ctx, user.User{Email: " Ada@Example.com ", Role: user.RoleCandidate})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", created.Email)

	_, err = repo.Create(ctx, user.User{Email: "ada@example.com"})
	assert.True(t, common.Is(err, common.CodeConflict))

	found, err := repo.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestSavedJobsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewStore())
	u, err := repo.Create(ctx, user.User{Email: "a@b.c"})
	require.NoError(t, err)
	jobID := common.NewUUID()

	require.NoError(t, repo.SaveJob(ctx, u.ID, jobID))
	require.NoError(t, repo.SaveJob(ctx, u.ID, jobID))
	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []common.UUID{jobID}, got.SavedJobs)

	require.NoError(t, repo.UnsaveJob(ctx, u.ID, jobID))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SavedJobs)
}

func TestApplicationUniquenessAndEmployerScope(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	jobs := NewJobRepository(store)
	apps := NewApplicationRepository(store)

	employer := common.NewUUID()
	other := common.NewUUID()
	mine, err := jobs.Create(ctx, job.Job{PostedBy: employer, Title: "Go dev", Status: job.StatusActive})
	require.NoError(t, err)
	theirs, err := jobs.Create(ctx, job.Job{PostedBy: other, Title: "Rust dev", Status: job.StatusActive})
	require.NoError(t, err)

	applicant := common.NewUUID()
	_, err = apps.Create(ctx, application.Application{ApplicantID: applicant, JobID: mine.ID, Status: application.StatusPending})
	require.NoError(t, err)
	_, err = apps.Create(ctx, application.Application{ApplicantID: applicant, JobID: mine.ID, Status: application.StatusPending})
	assert.True(t, common.Is(err, common.CodeConflict))
	_, err = apps.Create(ctx, application.Application{ApplicantID: applicant, JobID: theirs.ID, Status: application.StatusPending})
	require.NoError(t, err)

	items, total, err := apps.List(ctx, application.Filter{EmployerID: &employer}, common.NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].JobID)

	counts, err := apps.CountByStatus(ctx, application.Filter{ApplicantID: &applicant})
	require.NoError(t, err)
	assert.Equal(t, 2, counts[application.StatusPending])
}

func TestUpdateStatusAppendsTimeline(t *testing.T) {
	ctx := context.Background()
	apps := NewApplicationRepository(NewStore())
	created, err := apps.Create(ctx, application.Application{
		ApplicantID: common.NewUUID(),
		JobID:       common.NewUUID(),
		Status:      application.StatusPending,
		Timeline:    []application.TimelineEntry{{Status: application.StatusPending}},
	})
	require.NoError(t, err)

	updated, err := apps.UpdateStatus(ctx, created.ID, application.StatusPending, application.StatusShortlisted,
		application.TimelineEntry{Status: application.StatusShortlisted, Notes: "strong portfolio"})
	require.NoError(t, err)
	assert.Equal(t, application.StatusShortlisted, updated.Status)
	require.Len(t, updated.Timeline, 2)
	assert.Equal(t, "strong portfolio", updated.Timeline[1].Notes)

	// returned values never alias stored state
	updated.Timeline[0].Notes = "mutated"
	again, err := apps.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Timeline[0].Notes)
}

func TestUpdateStatusRejectsStaleTransition(t *testing.T) {
	ctx := context.Background()
	apps := NewApplicationRepository(NewStore())
	created, err := apps.Create(ctx, application.Application{
		ApplicantID: common.NewUUID(),
		JobID:       common.NewUUID(),
		Status:      application.StatusPending,
		Timeline:    []application.TimelineEntry{{Status: application.StatusPending}},
	})
	require.NoError(t, err)

	// two writers both read pending; only the first transition lands
	_, err = apps.UpdateStatus(ctx, created.ID, application.StatusPending, application.StatusWithdrawn,
		application.TimelineEntry{Status: application.StatusWithdrawn})
	require.NoError(t, err)
	_, err = apps.UpdateStatus(ctx, created.ID, application.StatusPending, application.StatusOffered,
		application.TimelineEntry{Status: application.StatusOffered})
	assert.True(t, common.Is(err, common.CodeValidation))

	stored, err := apps.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusWithdrawn, stored.Status)
	assert.Len(t, stored.Timeline, 2)

	_, err = apps.UpdateStatus(ctx, common.NewUUID(), application.StatusPending, application.StatusReviewing, application.TimelineEntry{})
	assert.True(t, common.Is(err, common.CodeNotFound))
}

func TestJobListFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	jobs := NewJobRepository(store)
	poster := common.NewUUID()
	for _, seed := range []struct {
		title  string
		status job.Status
		skills []string
	}{
		{"Backend Go", job.StatusActive, []string{"go", "sql"}},
		{"Frontend", job.StatusActive, []string{"react"}},
		{"Go platform", job.StatusDraft, []string{"Go"}},
		{"Data", job.StatusActive, []string{"python"}},
	} {
		_, err := jobs.Create(ctx, job.Job{PostedBy: poster, Title: seed.title, Status: seed.status, Skills: seed.skills, Category: "eng"})
		require.NoError(t, err)
	}

	active := job.Filter{Statuses: []job.Status{job.StatusActive}}
	items, total, err := jobs.List(ctx, active, common.NewPage(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Data", items[0].Title)

	items, _, err = jobs.List(ctx, job.Filter{Query: "go"}, common.NewPage(1, 10))
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, _, err = jobs.List(ctx, job.Filter{Skills: []string{"GO"}, Statuses: []job.Status{job.StatusActive}}, common.NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Backend Go", items[0].Title)

	byStatus, err := jobs.CountByStatus(ctx, job.Filter{PostedBy: &poster})
	require.NoError(t, err)
	assert.Equal(t, map[job.Status]int{job.StatusActive: 3, job.StatusDraft: 1}, byStatus)
}

func TestAddApplicationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	jobs := NewJobRepository(NewStore())
	j, err := jobs.Create(ctx, job.Job{PostedBy: common.NewUUID(), Status: job.StatusActive})
	require.NoError(t, err)
	appID := common.NewUUID()

	require.NoError(t, jobs.AddApplication(ctx, j.ID, appID))
	require.NoError(t, jobs.AddApplication(ctx, j.ID, appID))
	got, err := jobs.GetByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, []common.UUID{appID}, got.Applications)
}

func TestCompanyPerEmployer(t *testing.T) {
	ctx := context.Background()
	repo := NewCompanyRepository(NewStore())
	employer := common.NewUUID()

	_, err := repo.Create(ctx, company.Company{EmployerID: employer, Name: "Acme"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, company.Company{EmployerID: employer, Name: "Acme 2"})
	assert.True(t, common.Is(err, common.CodeConflict))

	found, err := repo.GetByEmployer(ctx, employer)
	require.NoError(t, err)
	assert.Equal(t, "Acme", found.Name)
}

func TestResetTokenSingleUse(t *testing.T) {
	ctx := context.Background()
	repo := NewResetTokenRepository(NewStore())
	token := auth.ResetToken{ID: common.NewUUID(), UserID: common.NewUUID(), TokenHash: "h", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Store(ctx, token))

	require.NoError(t, repo.MarkUsed(ctx, token.ID, time.Now()))
	err := repo.MarkUsed(ctx, token.ID, time.Now())
	assert.True(t, common.Is(err, common.CodeConflict))
}

func TestRefreshRevokeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	repo := NewRefreshTokenRepository(NewStore())
	require.NoError(t, repo.Store(ctx, auth.RefreshToken{UserID: common.NewUUID(), TokenHash: "a"}))

	require.NoError(t, repo.Revoke(ctx, "a", time.Now()))
	assert.True(t, common.Is(repo.Revoke(ctx, "a", time.Now()), common.CodeConflict))
	assert.True(t, common.Is(repo.Revoke(ctx, "missing", time.Now()), common.CodeNotFound))
}

func TestRefreshRevokeAll(t *testing.T) {
	ctx := context.Background()
	repo := NewRefreshTokenRepository(NewStore())
	userID := common.NewUUID()
	require.NoError(t, repo.Store(ctx, auth.RefreshToken{UserID: userID, TokenHash: "a"}))
	require.NoError(t, repo.Store(ctx, auth.RefreshToken{UserID: userID, TokenHash: "b"}))

	require.NoError(t, repo.RevokeAll(ctx, userID, time.Now()))
	for _, hash := range []string{"a", "b"} {
		token, err := repo.GetByHash(ctx, hash)
		require.NoError(t, err)
		assert.NotNil(t, token.RevokedAt)
	}
}
