package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/authz"
	"jobboard/internal/common"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
)

func TestSubmitCreatesPendingApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employer := f.register(t, "hr@example.com", user.RoleEmployer)
	candidate := f.register(t, "ada@example.com", user.RoleCandidate)
	posted := f.postJob(t, employer)

	input := submission(posted.ID)
	input.Skills = []string{"go", "Kubernetes"}
	input.Experience = &application.Experience{Years: 3}
	app, err := f.appSvc.Submit(ctx, candidate, input)
	require.NoError(t, err)

	assert.Equal(t, application.StatusPending, app.Status)
	require.Len(t, app.Timeline, 1)
	assert.Equal(t, application.StatusPending, app.Timeline[0].Status)
	assert.Equal(t, "Application submitted", app.Timeline[0].Notes)
	assert.Equal(t, candidate.ID, app.Timeline[0].UpdatedBy)
	// one of two skills (10/20) plus full experience (20/20)
	assert.Equal(t, 75, app.CompatibilityScore)

	stored, err := f.jobs.GetByID(ctx, posted.ID)
	require.NoError(t, err)
	assert.Equal(t, []common.UUID{app.ID}, stored.Applications)
}

func TestSubmitFallsBackToProfileForScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employer := f.register(t, "hr@example.com", user.RoleEmployer)
	candidate := f.register(t, "ada@example.com", user.RoleCandidate)
	posted := f.postJob(t, employer)

	_, err := f.userSvc.UpdateProfile(ctx, candidate, candidate.ID, ProfileInput{
		FirstName:         "Ada",
		LastName:          "Lovelace",
		Skills:            []string{"Go", "PostgreSQL"},
		YearsOfExperience: 2,
	})
	require.NoError(t, err)

	app, err := f.appSvc.Submit(ctx, candidate, submission(posted.ID))
	require.NoError(t, err)
	// both skills (20/20) and 2 of 3 years, under the 70% threshold (0/20)
	assert.Equal(t, 50, app.CompatibilityScore)
	assert.Empty(t, app.Skills)
}

func TestSubmitRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employer := f.register(t, "hr@example.com", user.RoleEmployer)
	candidate := f.register(t, "ada@example.com", user.RoleCandidate)
	posted := f.postJob(t, employer)

	_, err := f.appSvc.Submit(ctx, candidate, submission(posted.ID))
	require.NoError(t, err)

	_, err = f.appSvc.Submit(ctx, candidate, submission(posted.ID))
	require.Error(t, err)
	assert.Equal(t, common.CodeConflict, common.CodeOf(err))

	page, err := f.appSvc.ListMine(ctx, candidate, ApplicationQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Meta.Total)
}

func TestSubmitPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employer := f.register(t, "hr@example.com", user.RoleEmployer)
	candidate := f.register(t, "ada@example.com", user.RoleCandidate)
	open := f.postJob(t, employer)
	closed := f.postJob(t, employer, func(in *JobInput) { in.Status = string(job.StatusClosed) })

	t.Run("employers cannot apply", func(t *testing.T) {
		_, err := f.appSvc.Submit(ctx, employer, submission(open.ID))
		assert.Equal(t, common.CodeForbidden, common.CodeOf(err))
	})
	t.Run("unknown job", func(t *testing.T) {
		_, err := f.appSvc.Submit(ctx, candidate, submission(common.NewUUID()))
		assert.Equal(t, common.CodeNotFound, common.CodeOf(err))
	})
	t.Run("malformed job id", func(t *testing.T) {
		input := submission(open.ID)
		input.JobID = "nope"
		_, err := f.appSvc.Submit(ctx, candidate, input)
		assert.Equal(t, common.CodeValidation, common.CodeOf(err))
	})
	t.Run("closed job", func(t *testing.T) {
		_, err := f.appSvc.Submit(ctx, candidate, submission(closed.ID))
		assert.Equal(t, common.CodeValidation, common.CodeOf(err))
	})
	t.Run("resume required", func(t *testing.T) {
		input := submission(open.ID)
		input.Resume = nil
		_, err := f.appSvc.Submit(ctx, candidate, input)
		var appErr *common.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, common.CodeValidation, appErr.Code)
		assert.Contains(t, appErr.Fields, "resume")
	})
	t.Run("personal info required", func(t *testing.T) {
		input := submission(open.ID)
		input.PersonalInfo.Phone = "  "
		input.PersonalInfo.Email = "not-an-email"
		_, err := f.appSvc.Submit(ctx, candidate, input)
		var appErr *common.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, common.CodeValidation, appErr.Code)
		assert.Contains(t, appErr.Fields, "phone")
		assert.Contains(t, appErr.Fields, "email")
	})

	page, err := f.appSvc.ListMine(ctx, candidate, ApplicationQuery{})
	require.NoError(t, err)
	assert.Zero(t, page.Meta.Total)
}

func TestSubmitRejectsPastDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employer := f.register(t, "hr@example.com", user.RoleEmployer)
	candidate := f.register(t, "ada@example.com", user.RoleCandidate)
	deadline := testNow.Add(time.Hour)
	posted := f.postJob(t, employer, func(in *JobInput) { in.Deadline = &deadline })

	f.appSvc.now = func() time.Time { return deadline.Add(time.Minute) }
	_, err := f.appSvc.Submit(ctx, candidate, submission(posted.ID))
	assert.Equal(t, common.CodeValidation, common.CodeOf(err))
}

func TestUpdateStatusAppendsTimeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employer := f.register(t, "hr@example.com", user.RoleEmployer)
	candidate := f.register(t, "ada@example.com", user.RoleCandidate)
	posted := f.postJob(t, employer)
	app, err := f.appSvc.Submit(ctx, candidate, submission(posted.ID))
	require.NoError(t, err)

	updated, err := f.appSvc.UpdateStatus(ctx, employer, app.ID, UpdateStatusInput{Status: "shortlisted", Notes: "strong portfolio"})
	require.NoError(t, err)
	assert.Equal(t, application.StatusShortlisted, updated.Status)
	require.Len(t, updated.Timeline, 2)
	assert.Equal(t, "strong portfolio", updated.Timeline[1].Notes)
	assert.Equal(t, employer.ID, updated.Timeline[1].UpdatedBy)

	updated, err = f.appSvc.UpdateStatus(ctx, employer, app.ID, UpdateStatusInput{Status: "rejected"})
	require.NoError(t, err)
	assert.Len(t, updated.Timeline, 3)

	_, err = f.appSvc.UpdateStatus(ctx, employer, app.ID, UpdateStatusInput{Status: "reviewing"})
	assert.Equal(t, common.CodeValidation, common.CodeOf(err))

	again, err := f.appSvc.UpdateStatus(ctx, employer, app.ID, UpdateStatusInput{Status: "rejected", Notes: "closing note"})
	require.NoError(t, err)
	assert.Equal(t, application.StatusRejected, again.Status)
	assert.Len(t, again.Timeline, 4)
}

func TestUpdateStatusAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employer := f.register(t, "hr@example.com", user.RoleEmployer)
	other := f.register(t, "other@example.com", user.RoleEmployer)
	candidate := f.register(t, "ada@example.com", user.RoleCandidate)
	admin := f.admin(t)
	posted := f.postJob(t, employer)
	app, err := f.appSvc.Submit(ctx, candidate, submission(posted.ID))
	require.NoError(t, err)

	_, err = f.appSvc.UpdateStatus(ctx, other, app.ID, UpdateStatusInput{Status: "reviewing"})
	assert.Equal(t, common.CodeForbidden, common.CodeOf(err))
	_, err = f.appSvc.UpdateStatus(ctx, candidate, app.ID, UpdateStatusInput{Status: "reviewing"})
	assert.Equal(t, common.CodeForbidden, common.CodeOf(err))
	_, err = f.appSvc.UpdateStatus(ctx, employer, app.ID, UpdateStatusInput{Status: "hired"})
	assert.Equal(t, common.CodeValidation, common.CodeOf(err))
	_, err = f.appSvc.UpdateStatus(ctx, employer, app.ID, UpdateStatusInput{Status: "withdrawn"})
	assert.Equal(t, common.CodeValidation, common.CodeOf(err))

	updated, err := f.appSvc.UpdateStatus(ctx, admin, app.ID, UpdateStatusInput{Status: "reviewing"})
	require.NoError(t, err)
	assert.Equal(t, application.StatusReviewing, updated.Status)
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employer := f.register(t, "hr@example.com", user.RoleEmployer)
	candidate := f.register(t, "ada@example.com", user.RoleCandidate)
	posted := f.postJob(t, employer)
	app, err := f.appSvc.Submit(ctx, candidate, submission(posted.ID))
	require.NoError(t, err)

	_, err = f.appSvc.Withdraw(ctx, employer, app.ID)
	assert.Equal(t, common.CodeForbidden, common.CodeOf(err))

	withdrawn, err := f.appSvc.Withdraw(ctx, candidate, app.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusWithdrawn, withdrawn.Status)
	require.Len(t, withdrawn.Timeline, 2)
	assert.Equal(t, "Application withdrawn by applicant", withdrawn.Timeline[1].Notes)

	_, err = f.appSvc.Withdraw(ctx, candidate, app.ID)
	assert.Equal(t, common.CodeValidation, common.CodeOf(err))
}

func TestWithdrawDependsOnCurrentStatus(t *testing.T) {
	tests := []struct {
		from    application.Status
		allowed bool
	}{
		{application.StatusPending, true},
		{application.StatusReviewing, true},
		{application.StatusShortlisted, true},
		{application.StatusInterviewed, true},
		{application.StatusOffered, false},
		{application.StatusRejected, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			employer := f.register(t, "hr@example.com", user.RoleEmployer)
			candidate := f.register(t, "ada@example.com", user.RoleCandidate)
			posted := f.postJob(t, employer)
			app, err := f.appSvc.Submit(ctx, candidate, submission(posted.ID))
			require.NoError(t, err)

			entries := 1
			if tt.from != application.StatusPending {
				_, err = f.appSvc.UpdateStatus(ctx, employer, app.ID, UpdateStatusInput{Status: string(tt.from)})
				require.NoError(t, err)
				entries++
			}

			withdrawn, err := f.appSvc.Withdraw(ctx, candidate, app.ID)
			if !tt.allowed {
				assert.Equal(t, common.CodeValidation, common.CodeOf(err))
				stored, err := f.applications.GetByID(ctx, app.ID)
				require.NoError(t, err)
				assert.Equal(t, tt.from, stored.Status)
				assert.Len(t, stored.Timeline, entries)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, application.StatusWithdrawn, withdrawn.Status)
			require.Len(t, withdrawn.Timeline, entries+1)
			assert.Equal(t, application.StatusWithdrawn, withdrawn.Timeline[entries].Status)
		})
	}
}

func TestListScopesByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employerA := f.register(t, "a@example.com", user.RoleEmployer)
	employerB := f.register(t, "b@example.com", user.RoleEmployer)
	ada := f.register(t, "ada@example.com", user.RoleCandidate)
	bob := f.register(t, "bob@example.com", user.RoleCandidate)
	admin := f.admin(t)
	jobA := f.postJob(t, employerA)
	jobB := f.postJob(t, employerB)

	submissions := []struct {
		actor authz.Actor
		jobID common.UUID
	}{
		{ada, jobA.ID},
		{ada, jobB.ID},
		{bob, jobA.ID},
	}
	for _, s := range submissions {
		_, err := f.appSvc.Submit(ctx, s.actor, submission(s.jobID))
		require.NoError(t, err)
	}

	page, err := f.appSvc.List(ctx, ada, ApplicationQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Meta.Total)
	for _, app := range page.Items {
		assert.Equal(t, ada.ID, app.ApplicantID)
	}

	page, err = f.appSvc.List(ctx, employerA, ApplicationQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Meta.Total)
	for _, app := range page.Items {
		assert.Equal(t, jobA.ID, app.JobID)
	}

	page, err = f.appSvc.List(ctx, employerB, ApplicationQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Meta.Total)

	_, err = f.appSvc.List(ctx, employerB, ApplicationQuery{JobID: jobA.ID.String()})
	assert.Equal(t, common.CodeForbidden, common.CodeOf(err))

	page, err = f.appSvc.List(ctx, admin, ApplicationQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Meta.Total)

	page, err = f.appSvc.ListByJob(ctx, employerA, jobA.ID, ApplicationQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Meta.Total)
	_, err = f.appSvc.ListByJob(ctx, employerB, jobA.ID, ApplicationQuery{})
	assert.Equal(t, common.CodeForbidden, common.CodeOf(err))

	_, err = f.appSvc.List(ctx, admin, ApplicationQuery{Status: "bogus"})
	assert.Equal(t, common.CodeValidation, common.CodeOf(err))
}

func TestGetApplicationAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employer := f.register(t, "hr@example.com", user.RoleEmployer)
	other := f.register(t, "other@example.com", user.RoleEmployer)
	ada := f.register(t, "ada@example.com", user.RoleCandidate)
	bob := f.register(t, "bob@example.com", user.RoleCandidate)
	posted := f.postJob(t, employer)
	app, err := f.appSvc.Submit(ctx, ada, submission(posted.ID))
	require.NoError(t, err)

	_, err = f.appSvc.Get(ctx, ada, app.ID)
	assert.NoError(t, err)
	_, err = f.appSvc.Get(ctx, employer, app.ID)
	assert.NoError(t, err)
	_, err = f.appSvc.Get(ctx, other, app.ID)
	assert.Equal(t, common.CodeForbidden, common.CodeOf(err))
	_, err = f.appSvc.Get(ctx, bob, app.ID)
	assert.Equal(t, common.CodeForbidden, common.CodeOf(err))

	require.NoError(t, f.jobs.Delete(ctx, posted.ID))
	_, err = f.appSvc.Get(ctx, employer, app.ID)
	assert.Equal(t, common.CodeForbidden, common.CodeOf(err))
	_, err = f.appSvc.Get(ctx, ada, app.ID)
	assert.NoError(t, err)
}

func TestStatsAreZeroFilled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employer := f.register(t, "hr@example.com", user.RoleEmployer)
	ada := f.register(t, "ada@example.com", user.RoleCandidate)

	stats, err := f.appSvc.Stats(ctx, ada)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Len(t, stats.ByStatus, len(application.Statuses()))

	posted := f.postJob(t, employer)
	app, err := f.appSvc.Submit(ctx, ada, submission(posted.ID))
	require.NoError(t, err)
	_, err = f.appSvc.UpdateStatus(ctx, employer, app.ID, UpdateStatusInput{Status: "reviewing"})
	require.NoError(t, err)

	stats, err = f.appSvc.Stats(ctx, employer)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[application.StatusReviewing])
	assert.Equal(t, 0, stats.ByStatus[application.StatusPending])
	assert.Contains(t, stats.ByStatus, application.StatusWithdrawn)
}

func TestNotesAndInterviews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employer := f.register(t, "hr@example.com", user.RoleEmployer)
	ada := f.register(t, "ada@example.com", user.RoleCandidate)
	posted := f.postJob(t, employer)
	app, err := f.appSvc.Submit(ctx, ada, submission(posted.ID))
	require.NoError(t, err)

	noted, err := f.appSvc.AddNote(ctx, employer, app.ID, NoteInput{Body: "  call next week "})
	require.NoError(t, err)
	require.Len(t, noted.Notes, 1)
	assert.Equal(t, "call next week", noted.Notes[0].Body)
	assert.Equal(t, user.RoleEmployer, noted.Notes[0].AuthorRole)

	_, err = f.appSvc.AddNote(ctx, employer, app.ID, NoteInput{Body: "   "})
	assert.Equal(t, common.CodeValidation, common.CodeOf(err))

	_, err = f.appSvc.ScheduleInterview(ctx, employer, app.ID, InterviewInput{ScheduledAt: testNow.Add(-time.Hour), Type: "video"})
	assert.Equal(t, common.CodeValidation, common.CodeOf(err))
	_, err = f.appSvc.ScheduleInterview(ctx, ada, app.ID, InterviewInput{ScheduledAt: testNow.Add(time.Hour), Type: "video"})
	assert.Equal(t, common.CodeForbidden, common.CodeOf(err))

	scheduled, err := f.appSvc.ScheduleInterview(ctx, employer, app.ID, InterviewInput{ScheduledAt: testNow.Add(48 * time.Hour), Type: "video", Location: "meet"})
	require.NoError(t, err)
	require.Len(t, scheduled.Interviews, 1)
	assert.Equal(t, "video", scheduled.Interviews[0].Type)
	assert.Equal(t, employer.ID, scheduled.Interviews[0].CreatedBy)
}
