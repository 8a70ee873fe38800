package postgres

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"jobboard/internal/common"
	"jobboard/internal/domain/application"
)

var applicationColumns = []string{
	"a.id", "a.applicant_id", "a.job_id", "a.status", "a.personal_info", "a.cover_letter", "a.expected_salary", "a.availability",
	"a.experience", "a.skills", "a.education", "a.languages", "a.answers", "a.resume", "a.portfolio", "a.additional_documents",
	"a.timeline", "a.notes", "a.interviews", "a.compatibility_score", "a.created_at", "a.updated_at",
}

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	if app.ID.IsZero() {
		app.ID = common.NewUUID()
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	app.UpdatedAt = app.CreatedAt

	docs := []any{app.PersonalInfo, app.ExpectedSalary, app.Availability, app.Experience, emptyIfNil(app.Education), emptyIfNil(app.Languages),
		emptyIfNil(app.Answers), app.Resume, app.Portfolio, emptyIfNil(app.AdditionalDocuments), emptyIfNil(app.Timeline), emptyIfNil(app.Notes),
		emptyIfNil(app.Interviews)}
	encoded := make([]any, 0, len(docs))
	for _, doc := range docs {
		value, err := toJSON(doc)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, value)
	}

	args := []any{app.ID, app.ApplicantID, app.JobID, app.Status}
	args = append(args, encoded[0], app.CoverLetter, encoded[1], encoded[2], encoded[3], pq.Array(nonNil(app.Skills)))
	args = append(args, encoded[4:]...)
	args = append(args, app.CompatibilityScore, app.CreatedAt, app.UpdatedAt)
	_, err := r.db.ExecContext(ctx, `INSERT INTO applications (id, applicant_id, job_id, status, personal_info, cover_letter, expected_salary,
		availability, experience, skills, education, languages, answers, resume, portfolio, additional_documents, timeline, notes, interviews,
		compatibility_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`, args...)
	if err != nil {
		return nil, dbError(err, "application", "create")
	}
	return r.GetByID(ctx, app.ID)
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	return r.getOne(ctx, sq.Eq{"a.id": id})
}

func (r *ApplicationRepository) FindByApplicantAndJob(ctx context.Context, applicantID, jobID common.UUID) (*application.Application, error) {
	return r.getOne(ctx, sq.Eq{"a.applicant_id": applicantID, "a.job_id": jobID})
}

func (r *ApplicationRepository) List(ctx context.Context, filter application.Filter, page common.Page) ([]application.Application, int, error) {
	countSQL, countArgs, err := applyApplicationFilter(psql.Select("COUNT(*)").From("applications a"), filter).ToSql()
	if err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to build application query", err)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, dbError(err, "application", "count")
	}

	listSQL, listArgs, err := applyApplicationFilter(psql.Select(applicationColumns...).From("applications a"), filter).
		OrderBy("a.created_at DESC", "a.id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to build application query", err)
	}
	rows, err := r.db.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, dbError(err, "application", "list")
	}
	defer rows.Close()
	items := []application.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dbError(err, "application", "list")
	}
	return items, total, nil
}

func (r *ApplicationRepository) CountByStatus(ctx context.Context, filter application.Filter) (map[application.Status]int, error) {
	query, args, err := applyApplicationFilter(psql.Select("a.status", "COUNT(*)").From("applications a"), filter).GroupBy("a.status").ToSql()
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to build application query", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "application", "count")
	}
	defer rows.Close()
	counts := map[application.Status]int{}
	for rows.Next() {
		var (
			status application.Status
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, dbError(err, "application", "count")
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "application", "count")
	}
	return counts, nil
}

// UpdateStatus writes the status and appends the entry in one statement.
// The row is only touched while its status still equals from, so two
// concurrent transitions cannot both pass a check made on a stale read.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id common.UUID, from, to application.Status, entry application.TimelineEntry) (*application.Application, error) {
	doc, err := toJSON([]application.TimelineEntry{entry})
	if err != nil {
		return nil, err
	}
	result, err := r.db.ExecContext(ctx, updateStatusSQL, to, doc, time.Now().UTC(), id, from)
	if err != nil {
		return nil, dbError(err, "application", "update")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, common.NewError(common.CodeValidation, "application status changed to "+string(current.Status)+", reload and retry", nil)
	}
	return r.GetByID(ctx, id)
}

const updateStatusSQL = `UPDATE applications SET status = $1, timeline = timeline || $2::jsonb, updated_at = $3 WHERE id = $4 AND status = $5`

func (r *ApplicationRepository) AddNote(ctx context.Context, id common.UUID, note application.Note) (*application.Application, error) {
	doc, err := toJSON([]application.Note{note})
	if err != nil {
		return nil, err
	}
	return r.appendTo(ctx, id, `UPDATE applications SET notes = notes || $1::jsonb, updated_at = $2 WHERE id = $3`, doc, time.Now().UTC(), id)
}

func (r *ApplicationRepository) AddInterview(ctx context.Context, id common.UUID, interview application.Interview) (*application.Application, error) {
	doc, err := toJSON([]application.Interview{interview})
	if err != nil {
		return nil, err
	}
	return r.appendTo(ctx, id, `UPDATE applications SET interviews = interviews || $1::jsonb, updated_at = $2 WHERE id = $3`, doc, time.Now().UTC(), id)
}

func (r *ApplicationRepository) appendTo(ctx context.Context, id common.UUID, query string, args ...any) (*application.Application, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "application", "update")
	}
	if err := expectRow(result, "application"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ApplicationRepository) getOne(ctx context.Context, where sq.Sqlizer) (*application.Application, error) {
	query, args, err := psql.Select(applicationColumns...).From("applications a").Where(where).ToSql()
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to build application query", err)
	}
	return scanApplication(r.db.QueryRowContext(ctx, query, args...))
}

func applyApplicationFilter(b sq.SelectBuilder, f application.Filter) sq.SelectBuilder {
	if f.EmployerID != nil {
		b = b.Join("jobs j ON j.id = a.job_id").Where(sq.Eq{"j.posted_by": *f.EmployerID})
	}
	if f.ApplicantID != nil {
		b = b.Where(sq.Eq{"a.applicant_id": *f.ApplicantID})
	}
	if f.JobID != nil {
		b = b.Where(sq.Eq{"a.job_id": *f.JobID})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"a.status": f.Status})
	}
	return b
}

func scanApplication(row scanner) (*application.Application, error) {
	var (
		app                                                    application.Application
		personalInfo, expectedSalary, availability, experience []byte
		education, languages, answers, resume, portfolio       []byte
		documents, timeline, notes, interviews                 []byte
	)
	err := row.Scan(&app.ID, &app.ApplicantID, &app.JobID, &app.Status, &personalInfo, &app.CoverLetter, &expectedSalary, &availability,
		&experience, pq.Array(&app.Skills), &education, &languages, &answers, &resume, &portfolio, &documents,
		&timeline, &notes, &interviews, &app.CompatibilityScore, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, dbError(err, "application", "load")
	}
	decode := []struct {
		data []byte
		dst  any
	}{
		{personalInfo, &app.PersonalInfo},
		{expectedSalary, &app.ExpectedSalary},
		{availability, &app.Availability},
		{experience, &app.Experience},
		{education, &app.Education},
		{languages, &app.Languages},
		{answers, &app.Answers},
		{resume, &app.Resume},
		{portfolio, &app.Portfolio},
		{documents, &app.AdditionalDocuments},
		{timeline, &app.Timeline},
		{notes, &app.Notes},
		{interviews, &app.Interviews},
	}
	for _, d := range decode {
		if err := fromJSON(d.data, d.dst); err != nil {
			return nil, err
		}
	}
	app.Skills = nonNil(app.Skills)
	app.Education = emptyIfNil(app.Education)
	app.Languages = emptyIfNil(app.Languages)
	app.Answers = emptyIfNil(app.Answers)
	app.AdditionalDocuments = emptyIfNil(app.AdditionalDocuments)
	app.Timeline = emptyIfNil(app.Timeline)
	app.Notes = emptyIfNil(app.Notes)
	app.Interviews = emptyIfNil(app.Interviews)
	return &app, nil
}

func emptyIfNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
