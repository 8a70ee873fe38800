package postgres

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"jobboard/internal/common"
	"jobboard/internal/domain/company"
)

const companyColumns = `id, employer_id, name, description, website, industry, size, location, logo_url, founded, created_at, updated_at`

type CompanyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, c company.Company) (*company.Company, error) {
	if c.ID.IsZero() {
		c.ID = common.NewUUID()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO companies (`+companyColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.EmployerID, c.Name, c.Description, c.Website, c.Industry, c.Size, c.Location, c.LogoURL, c.Founded, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, dbError(err, "company", "create")
	}
	return &c, nil
}

func (r *CompanyRepository) Update(ctx context.Context, c company.Company) (*company.Company, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE companies SET name = $1, description = $2, website = $3, industry = $4, size = $5, location = $6,
		logo_url = $7, founded = $8, updated_at = $9 WHERE id = $10 RETURNING `+companyColumns,
		c.Name, c.Description, c.Website, c.Industry, c.Size, c.Location, c.LogoURL, c.Founded, time.Now().UTC(), c.ID)
	return scanCompany(row)
}

func (r *CompanyRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return dbError(err, "company", "delete")
	}
	return expectRow(result, "company")
}

func (r *CompanyRepository) GetByID(ctx context.Context, id common.UUID) (*company.Company, error) {
	return scanCompany(r.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
}

func (r *CompanyRepository) GetByEmployer(ctx context.Context, employerID common.UUID) (*company.Company, error) {
	return scanCompany(r.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE employer_id = $1`, employerID))
}

func (r *CompanyRepository) List(ctx context.Context, query string, page common.Page) ([]company.Company, int, error) {
	where := sq.And{}
	if query != "" {
		pattern := "%" + query + "%"
		where = append(where, sq.Or{sq.ILike{"name": pattern}, sq.ILike{"industry": pattern}})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("companies").Where(where).ToSql()
	if err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to build company query", err)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, dbError(err, "company", "count")
	}

	listSQL, listArgs, err := psql.Select(companyColumns).From("companies").Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to build company query", err)
	}
	rows, err := r.db.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, dbError(err, "company", "list")
	}
	defer rows.Close()
	items := []company.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dbError(err, "company", "list")
	}
	return items, total, nil
}

func scanCompany(row scanner) (*company.Company, error) {
	var c company.Company
	err := row.Scan(&c.ID, &c.EmployerID, &c.Name, &c.Description, &c.Website, &c.Industry, &c.Size, &c.Location, &c.LogoURL, &c.Founded,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, dbError(err, "company", "load")
	}
	return &c, nil
}
