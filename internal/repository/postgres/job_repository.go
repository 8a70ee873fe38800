package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"jobboard/internal/common"
	"jobboard/internal/domain/job"
)

var jobColumns = []string{
	"id", "posted_by", "company_id", "title", "description", "location", "job_type", "category", "experience_level",
	"salary", "remote", "skills", "benefits", "requirements", "deadline", "status", "views", "applications", "created_at", "updated_at",
}

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, j job.Job) (*job.Job, error) {
	if j.ID.IsZero() {
		j.ID = common.NewUUID()
	}
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	j.Views = 0
	j.Applications = []common.UUID{}
	salary, err := toJSON(j.Salary)
	if err != nil {
		return nil, err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO jobs (id, posted_by, company_id, title, description, location, job_type, category, experience_level,
		salary, remote, skills, benefits, requirements, deadline, status, views, applications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 0, '{}', $17, $18)`,
		j.ID, j.PostedBy, nullableUUID(j.CompanyID), j.Title, j.Description, j.Location, j.Type, j.Category, j.ExperienceLevel,
		salary, j.Remote, pq.Array(nonNil(j.Skills)), pq.Array(nonNil(j.Benefits)), pq.Array(nonNil(j.Requirements)), nullableTime(j.Deadline), j.Status,
		j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return nil, dbError(err, "job", "create")
	}
	return &j, nil
}

func (r *JobRepository) Update(ctx context.Context, j job.Job) (*job.Job, error) {
	salary, err := toJSON(j.Salary)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `UPDATE jobs SET company_id = $1, title = $2, description = $3, location = $4, job_type = $5, category = $6,
		experience_level = $7, salary = $8, remote = $9, skills = $10, benefits = $11, requirements = $12, deadline = $13, status = $14, updated_at = $15
		WHERE id = $16 RETURNING `+strings.Join(jobColumns, ", "),
		nullableUUID(j.CompanyID), j.Title, j.Description, j.Location, j.Type, j.Category,
		j.ExperienceLevel, salary, j.Remote, pq.Array(nonNil(j.Skills)), pq.Array(nonNil(j.Benefits)), pq.Array(nonNil(j.Requirements)), nullableTime(j.Deadline), j.Status, time.Now().UTC(),
		j.ID)
	return scanJob(row)
}

func (r *JobRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return dbError(err, "job", "delete")
	}
	return expectRow(result, "job")
}

func (r *JobRepository) GetByID(ctx context.Context, id common.UUID) (*job.Job, error) {
	query, args, err := psql.Select(jobColumns...).From("jobs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to build job query", err)
	}
	return scanJob(r.db.QueryRowContext(ctx, query, args...))
}

func (r *JobRepository) List(ctx context.Context, filter job.Filter, page common.Page) ([]job.Job, int, error) {
	total, err := r.count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	query, args, err := applyJobFilter(psql.Select(jobColumns...).From("jobs"), filter).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to build job query", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, dbError(err, "job", "list")
	}
	defer rows.Close()
	items := []job.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dbError(err, "job", "list")
	}
	return items, total, nil
}

func (r *JobRepository) IncrementViews(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE jobs SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return dbError(err, "job", "update")
	}
	return expectRow(result, "job")
}

func (r *JobRepository) AddApplication(ctx context.Context, jobID, applicationID common.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE jobs SET applications = CASE WHEN $1 = ANY(applications) THEN applications ELSE array_append(applications, $1) END
		WHERE id = $2`, applicationID.String(), jobID)
	if err != nil {
		return dbError(err, "job", "update")
	}
	return expectRow(result, "job")
}

func (r *JobRepository) CountByStatus(ctx context.Context, filter job.Filter) (map[job.Status]int, error) {
	counts := map[job.Status]int{}
	err := r.group(ctx, filter, "status", func(key string, n int) { counts[job.Status(key)] = n })
	return counts, err
}

func (r *JobRepository) CountByCategory(ctx context.Context, filter job.Filter) (map[string]int, error) {
	counts := map[string]int{}
	err := r.group(ctx, filter, "category", func(key string, n int) { counts[key] = n })
	return counts, err
}

func (r *JobRepository) count(ctx context.Context, filter job.Filter) (int, error) {
	query, args, err := applyJobFilter(psql.Select("COUNT(*)").From("jobs"), filter).ToSql()
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to build job query", err)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, dbError(err, "job", "count")
	}
	return total, nil
}

func (r *JobRepository) group(ctx context.Context, filter job.Filter, column string, emit func(string, int)) error {
	query, args, err := applyJobFilter(psql.Select(column, "COUNT(*)").From("jobs"), filter).GroupBy(column).ToSql()
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to build job query", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return dbError(err, "job", "count")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return dbError(err, "job", "count")
		}
		emit(key, n)
	}
	return rows.Err()
}

func applyJobFilter(b sq.SelectBuilder, f job.Filter) sq.SelectBuilder {
	if f.PostedBy != nil {
		b = b.Where(sq.Eq{"posted_by": *f.PostedBy})
	}
	if f.CompanyID != nil {
		b = b.Where(sq.Eq{"company_id": *f.CompanyID})
	}
	if len(f.Statuses) > 0 {
		b = b.Where(sq.Eq{"status": f.Statuses})
	}
	if f.Category != "" {
		b = b.Where(sq.Expr("lower(category) = lower(?)", f.Category))
	}
	if f.Type != "" {
		b = b.Where(sq.Eq{"job_type": f.Type})
	}
	if f.ExperienceLevel != "" {
		b = b.Where(sq.Eq{"experience_level": f.ExperienceLevel})
	}
	if f.Location != "" {
		b = b.Where(sq.ILike{"location": "%" + f.Location + "%"})
	}
	if f.Remote != nil {
		b = b.Where(sq.Eq{"remote": *f.Remote})
	}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		b = b.Where(sq.Or{sq.ILike{"title": pattern}, sq.ILike{"description": pattern}})
	}
	if len(f.Skills) > 0 {
		lowered := make([]string, 0, len(f.Skills))
		for _, s := range f.Skills {
			lowered = append(lowered, strings.ToLower(strings.TrimSpace(s)))
		}
		b = b.Where(sq.Expr("EXISTS (SELECT 1 FROM unnest(skills) AS s WHERE lower(s) = ANY(?))", pq.Array(lowered)))
	}
	return b
}

func scanJob(row scanner) (*job.Job, error) {
	var (
		j            job.Job
		companyID    sql.NullString
		salary       []byte
		deadline     sql.NullTime
		applications []string
	)
	err := row.Scan(&j.ID, &j.PostedBy, &companyID, &j.Title, &j.Description, &j.Location, &j.Type, &j.Category, &j.ExperienceLevel,
		&salary, &j.Remote, pq.Array(&j.Skills), pq.Array(&j.Benefits), pq.Array(&j.Requirements), &deadline, &j.Status, &j.Views,
		pq.Array(&applications), &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, dbError(err, "job", "load")
	}
	if companyID.Valid {
		id := common.UUID(companyID.String)
		j.CompanyID = &id
	}
	if deadline.Valid {
		at := deadline.Time
		j.Deadline = &at
	}
	if err := fromJSON(salary, &j.Salary); err != nil {
		return nil, err
	}
	j.Skills = nonNil(j.Skills)
	j.Benefits = nonNil(j.Benefits)
	j.Requirements = nonNil(j.Requirements)
	j.Applications = uuidsFrom(applications)
	return &j, nil
}

func nullableUUID(id *common.UUID) any {
	if id == nil || id.IsZero() {
		return nil
	}
	return id.String()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
