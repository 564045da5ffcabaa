package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/pkg/apperrors"
	"github.com/skillpivot/api/internal/pkg/logger"
)

var companyColumns = []string{
	"id", "name", "contact_email", "industry", "website", "description",
	"location", "logo_path", "is_verified", "registered_date", "updated_at",
}

// CompanyRepository handles company database operations
type CompanyRepository struct {
	db dbConn
	sb squirrel.StatementBuilderType
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{
		db: pool,
		sb: statementBuilder,
	}
}

func scanCompany(row pgx.Row) (*models.Company, error) {
	c := &models.Company{}
	err := row.Scan(
		&c.ID, &c.Name, &c.ContactEmail, &c.Industry, &c.Website, &c.Description,
		&c.Location, &c.LogoPath, &c.IsVerified, &c.RegisteredDate, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// insertCompany is shared with the registration transaction.
func insertCompany(ctx context.Context, q querier, company *models.Company) error {
	if company.Industry == "" {
		company.Industry = models.DefaultIndustry
	}
	sql, args, err := statementBuilder.Insert("companies").
		Columns("name", "contact_email", "industry", "website", "description", "location", "is_verified").
		Values(company.Name, company.ContactEmail, company.Industry, company.Website, company.Description, company.Location, company.IsVerified).
		Suffix("RETURNING id, registered_date, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create company SQL")
		return fmt.Errorf("failed to build create company query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&company.ID, &company.RegisteredDate, &company.UpdatedAt); err != nil {
		logger.Error().Err(err).Str("name", company.Name).Msg("Error executing create company query")
		return fmt.Errorf("error creating company: %w", err)
	}
	return nil
}

func (r *CompanyRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Company, error) {
	sql, args, err := r.sb.Select(companyColumns...).
		From("companies").
		Where(where).
		OrderBy("id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get company SQL")
		return nil, fmt.Errorf("failed to build get company query: %w", err)
	}

	company, err := scanCompany(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCompanyNotFound
		}
		logger.Error().Err(err).Msg("Error scanning company row")
		return nil, fmt.Errorf("error getting company: %w", err)
	}
	return company, nil
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByContactEmail returns the company owned by the user with that email.
func (r *CompanyRepository) GetByContactEmail(ctx context.Context, email string) (*models.Company, error) {
	return r.getOne(ctx, squirrel.Eq{"contact_email": email})
}

// Exists reports whether a company with id exists.
func (r *CompanyRepository) Exists(ctx context.Context, id int64) (bool, error) {
	found, err := exists(ctx, r.db, "companies", squirrel.Eq{"id": id})
	if err != nil {
		return false, fmt.Errorf("error checking company existence: %w", err)
	}
	return found, nil
}

// List returns every company ordered by id.
func (r *CompanyRepository) List(ctx context.Context) ([]*models.Company, error) {
	sql, args, err := r.sb.Select(companyColumns...).
		From("companies").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list companies SQL")
		return nil, fmt.Errorf("failed to build list companies query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list companies query")
		return nil, fmt.Errorf("error querying companies: %w", err)
	}
	defer rows.Close()

	companies := []*models.Company{}
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning company row: %w", err)
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating company rows: %w", err)
	}
	return companies, nil
}

// Update saves the editable company fields if the row still carries
// company.UpdatedAt. A stale or missing row yields apperrors.ErrConflict.
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	sql, args, err := r.sb.Update("companies").
		SetMap(map[string]interface{}{
			"name":          company.Name,
			"contact_email": company.ContactEmail,
			"industry":      company.Industry,
			"website":       company.Website,
			"description":   company.Description,
			"location":      company.Location,
			"updated_at":    squirrel.Expr("now()"),
		}).
		Where(squirrel.Eq{"id": company.ID, "updated_at": company.UpdatedAt}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update company SQL")
		return fmt.Errorf("failed to build update company query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&company.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrConflict
		}
		logger.Error().Err(err).Int64("companyID", company.ID).Msg("Error executing update company query")
		return fmt.Errorf("error updating company: %w", err)
	}
	return nil
}

func (r *CompanyRepository) setFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	fields["updated_at"] = squirrel.Expr("now()")
	sql, args, err := r.sb.Update("companies").
		SetMap(fields).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building company field update SQL")
		return fmt.Errorf("failed to build company update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("companyID", id).Msg("Error executing company field update")
		return fmt.Errorf("error updating company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCompanyNotFound
	}
	return nil
}

// SetVerified flips the company's verification flag.
func (r *CompanyRepository) SetVerified(ctx context.Context, id int64, verified bool) error {
	return r.setFields(ctx, id, map[string]interface{}{"is_verified": verified})
}

// UpdateLogo stores the URL of the company logo.
func (r *CompanyRepository) UpdateLogo(ctx context.Context, id int64, url string) error {
	return r.setFields(ctx, id, map[string]interface{}{"logo_path": url})
}
