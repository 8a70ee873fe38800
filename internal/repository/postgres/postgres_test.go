package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/common"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/job"
)

func TestDBErrorTranslation(t *testing.T) {
	assert.Equal(t, common.CodeNotFound, common.CodeOf(dbError(sql.ErrNoRows, "job", "load")))
	assert.Equal(t, common.CodeConflict, common.CodeOf(dbError(&pgconn.PgError{Code: "23505"}, "application", "create")))
	assert.Equal(t, common.CodeValidation, common.CodeOf(dbError(fmt.Errorf("scan: %w", &pgconn.PgError{Code: "22P02"}), "job", "load")))
	assert.Equal(t, common.CodeInternal, common.CodeOf(dbError(errors.New("boom"), "job", "load")))
}

func TestUpdateStatusIsGuardedByPreviousStatus(t *testing.T) {
	assert.Contains(t, updateStatusSQL, "WHERE id = $4 AND status = $5")
	assert.Contains(t, updateStatusSQL, "timeline = timeline || $2::jsonb")
	assert.Contains(t, revokeRefreshSQL, "revoked_at IS NULL")
}

func TestJobFilterSQL(t *testing.T) {
	poster := common.UUID("7d9f7c1e-0000-4000-8000-000000000001")
	remote := true
	query, args, err := applyJobFilter(psql.Select("id").From("jobs"), job.Filter{
		PostedBy: &poster,
		Statuses: []job.Status{job.StatusActive, job.StatusPaused},
		Remote:   &remote,
		Query:    "go",
		Skills:   []string{" Go "},
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "posted_by = $1")
	assert.Contains(t, query, "status IN ($2,$3)")
	assert.Contains(t, query, "remote = $4")
	assert.Contains(t, query, "title ILIKE $5")
	assert.Contains(t, query, "description ILIKE $6")
	assert.Contains(t, query, "lower(s) = ANY($7)")
	require.Len(t, args, 7)
	assert.Equal(t, "%go%", args[4])
}

func TestApplicationFilterJoinsJobsForEmployer(t *testing.T) {
	employer := common.UUID("7d9f7c1e-0000-4000-8000-000000000002")
	query, args, err := applyApplicationFilter(psql.Select("COUNT(*)").From("applications a"), application.Filter{
		EmployerID: &employer,
		Status:     application.StatusPending,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "JOIN jobs j ON j.id = a.job_id")
	assert.Contains(t, query, "j.posted_by = $1")
	assert.Contains(t, query, "a.status = $2")
	assert.Equal(t, []any{employer, application.StatusPending}, args)
}
