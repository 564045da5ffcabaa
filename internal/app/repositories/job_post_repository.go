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
	"github.com/skillpivot/api/internal/pkg/dberrors"
	"github.com/skillpivot/api/internal/pkg/logger"
)

const jobPostsCompanyFKConstraint = "job_posts_company_id_fkey"

var jobPostColumns = []string{
	"jp.id", "jp.title", "jp.description", "jp.tech_stack", "jp.job_type",
	"jp.job_role", "jp.status", "jp.posted_date", "jp.updated_at", "jp.company_id",
}

// JobPostRepository handles job post database operations
type JobPostRepository struct {
	db dbConn
	sb squirrel.StatementBuilderType
}

// NewJobPostRepository creates a new JobPostRepository
func NewJobPostRepository(pool *pgxpool.Pool) *JobPostRepository {
	return &JobPostRepository{
		db: pool,
		sb: statementBuilder,
	}
}

func jobPostDest(jp *models.JobPost) []any {
	return []any{
		&jp.ID, &jp.Title, &jp.Description, &jp.TechStack, &jp.JobType,
		&jp.JobRole, &jp.Status, &jp.PostedDate, &jp.UpdatedAt, &jp.CompanyID,
	}
}

// Create inserts a job post. An unknown company is a validation error.
func (r *JobPostRepository) Create(ctx context.Context, post *models.JobPost) (int64, error) {
	if post.Status == "" {
		post.Status = models.JobPostPending
	}
	sql, args, err := r.sb.Insert("job_posts").
		Columns("title", "description", "tech_stack", "job_type", "job_role", "status", "company_id").
		Values(post.Title, post.Description, post.TechStack, post.JobType, post.JobRole, post.Status, post.CompanyID).
		Suffix("RETURNING id, posted_date, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create job post SQL")
		return 0, fmt.Errorf("failed to build create job post query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&post.ID, &post.PostedDate, &post.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err, jobPostsCompanyFKConstraint) {
			return 0, apperrors.NewValidationError("Invalid CompanyId. The company does not exist.")
		}
		logger.Error().Err(err).Int64("companyID", post.CompanyID).Msg("Error executing create job post query")
		return 0, fmt.Errorf("error creating job post: %w", err)
	}
	return post.ID, nil
}

// GetByID retrieves a job post by ID
func (r *JobPostRepository) GetByID(ctx context.Context, id int64) (*models.JobPost, error) {
	sql, args, err := r.sb.Select(jobPostColumns...).
		From("job_posts jp").
		Where(squirrel.Eq{"jp.id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get job post SQL")
		return nil, fmt.Errorf("failed to build get job post query: %w", err)
	}

	post := &models.JobPost{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(jobPostDest(post)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrJobPostNotFound
		}
		logger.Error().Err(err).Int64("jobPostID", id).Msg("Error scanning job post row")
		return nil, fmt.Errorf("error getting job post: %w", err)
	}
	return post, nil
}

// Exists reports whether a job post with id exists.
func (r *JobPostRepository) Exists(ctx context.Context, id int64) (bool, error) {
	found, err := exists(ctx, r.db, "job_posts", squirrel.Eq{"id": id})
	if err != nil {
		return false, fmt.Errorf("error checking job post existence: %w", err)
	}
	return found, nil
}

// List returns every job post ordered by id.
func (r *JobPostRepository) List(ctx context.Context) ([]*models.JobPost, error) {
	sql, args, err := r.sb.Select(jobPostColumns...).
		From("job_posts jp").
		OrderBy("jp.id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list job posts SQL")
		return nil, fmt.Errorf("failed to build list job posts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list job posts query")
		return nil, fmt.Errorf("error querying job posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.JobPost{}
	for rows.Next() {
		post := &models.JobPost{}
		if err := rows.Scan(jobPostDest(post)...); err != nil {
			return nil, fmt.Errorf("error scanning job post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job post rows: %w", err)
	}
	return posts, nil
}

// ListWithCompany returns every job post together with its company in a
// single joined query.
func (r *JobPostRepository) ListWithCompany(ctx context.Context) ([]*models.JobPost, error) {
	columns := append([]string{}, jobPostColumns...)
	columns = append(columns,
		"c.id", "c.name", "c.contact_email", "c.industry", "c.website", "c.description",
		"c.location", "c.logo_path", "c.is_verified", "c.registered_date", "c.updated_at",
	)
	sql, args, err := r.sb.Select(columns...).
		From("job_posts jp").
		Join("companies c ON c.id = jp.company_id").
		OrderBy("jp.id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list job posts with company SQL")
		return nil, fmt.Errorf("failed to build list job posts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list job posts with company query")
		return nil, fmt.Errorf("error querying job posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.JobPost{}
	for rows.Next() {
		post := &models.JobPost{Company: &models.Company{}}
		c := post.Company
		dest := append(jobPostDest(post),
			&c.ID, &c.Name, &c.ContactEmail, &c.Industry, &c.Website, &c.Description,
			&c.Location, &c.LogoPath, &c.IsVerified, &c.RegisteredDate, &c.UpdatedAt,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning job post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job post rows: %w", err)
	}
	return posts, nil
}

// Update saves the mutable job post fields if the row still carries
// post.UpdatedAt. A stale or missing row yields apperrors.ErrConflict.
func (r *JobPostRepository) Update(ctx context.Context, post *models.JobPost) error {
	sql, args, err := r.sb.Update("job_posts").
		SetMap(map[string]interface{}{
			"title":       post.Title,
			"description": post.Description,
			"tech_stack":  post.TechStack,
			"job_type":    post.JobType,
			"job_role":    post.JobRole,
			"status":      post.Status,
			"updated_at":  squirrel.Expr("now()"),
		}).
		Where(squirrel.Eq{"id": post.ID, "updated_at": post.UpdatedAt}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update job post SQL")
		return fmt.Errorf("failed to build update job post query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&post.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrConflict
		}
		logger.Error().Err(err).Int64("jobPostID", post.ID).Msg("Error executing update job post query")
		return fmt.Errorf("error updating job post: %w", err)
	}
	return nil
}

// UpdateStatus sets the moderation status of a job post.
func (r *JobPostRepository) UpdateStatus(ctx context.Context, id int64, status models.JobPostStatus) error {
	sql, args, err := r.sb.Update("job_posts").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building job post status SQL")
		return fmt.Errorf("failed to build job post status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("jobPostID", id).Msg("Error executing job post status update")
		return fmt.Errorf("error updating job post status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrJobPostNotFound
	}
	return nil
}

// Delete removes a job post; its applications cascade.
func (r *JobPostRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "job_posts", id, apperrors.ErrJobPostNotFound)
}
