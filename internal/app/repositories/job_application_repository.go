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

// JobApplicationRepository handles job application database operations
type JobApplicationRepository struct {
	db dbConn
	sb squirrel.StatementBuilderType
}

// NewJobApplicationRepository creates a new JobApplicationRepository
func NewJobApplicationRepository(pool *pgxpool.Pool) *JobApplicationRepository {
	return &JobApplicationRepository{
		db: pool,
		sb: statementBuilder,
	}
}

// Create inserts an application with status Pending unless set.
func (r *JobApplicationRepository) Create(ctx context.Context, app *models.JobApplication) (int64, error) {
	if app.Status == "" {
		app.Status = models.ApplicationPending
	}
	sql, args, err := r.sb.Insert("job_applications").
		Columns("job_post_id", "student_id", "status").
		Values(app.JobPostID, app.StudentID, app.Status).
		Suffix("RETURNING id, applied_date, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create job application SQL")
		return 0, fmt.Errorf("failed to build create job application query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&app.ID, &app.AppliedDate, &app.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err, "") {
			return 0, apperrors.NewValidationError("Invalid JobPostId or StudentId.")
		}
		logger.Error().Err(err).
			Int64("jobPostID", app.JobPostID).
			Int64("studentID", app.StudentID).
			Msg("Error executing create job application query")
		return 0, fmt.Errorf("error creating job application: %w", err)
	}
	return app.ID, nil
}

// GetByID retrieves an application by ID
func (r *JobApplicationRepository) GetByID(ctx context.Context, id int64) (*models.JobApplication, error) {
	sql, args, err := r.sb.Select("id", "job_post_id", "student_id", "applied_date", "status", "updated_at").
		From("job_applications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get job application SQL")
		return nil, fmt.Errorf("failed to build get job application query: %w", err)
	}

	app := &models.JobApplication{}
	err = r.db.QueryRow(ctx, sql, args...).
		Scan(&app.ID, &app.JobPostID, &app.StudentID, &app.AppliedDate, &app.Status, &app.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error scanning job application row")
		return nil, fmt.Errorf("error getting job application: %w", err)
	}
	return app, nil
}

// ExistsForStudentAndJob reports whether the student already applied.
func (r *JobApplicationRepository) ExistsForStudentAndJob(ctx context.Context, studentID, jobPostID int64) (bool, error) {
	found, err := exists(ctx, r.db, "job_applications", squirrel.Eq{"student_id": studentID, "job_post_id": jobPostID})
	if err != nil {
		return false, fmt.Errorf("error checking job application existence: %w", err)
	}
	return found, nil
}

// ListSummaries returns every application with its job title and company
// name in one query. Titles and names are nil when the join finds nothing.
func (r *JobApplicationRepository) ListSummaries(ctx context.Context) ([]*models.ApplicationSummary, error) {
	sql, args, err := r.sb.Select(
		"ja.id", "ja.job_post_id", "ja.student_id", "ja.applied_date", "ja.status",
		"jp.title", "c.name",
	).
		From("job_applications ja").
		LeftJoin("job_posts jp ON jp.id = ja.job_post_id").
		LeftJoin("companies c ON c.id = jp.company_id").
		OrderBy("ja.id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list job applications SQL")
		return nil, fmt.Errorf("failed to build list job applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list job applications query")
		return nil, fmt.Errorf("error querying job applications: %w", err)
	}
	defer rows.Close()

	summaries := []*models.ApplicationSummary{}
	for rows.Next() {
		s := &models.ApplicationSummary{}
		if err := rows.Scan(&s.ApplicationID, &s.JobPostID, &s.StudentID, &s.AppliedDate, &s.Status, &s.JobTitle, &s.CompanyName); err != nil {
			return nil, fmt.Errorf("error scanning job application row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job application rows: %w", err)
	}
	return summaries, nil
}

// UpdateStatus saves a new status if the row still carries app.UpdatedAt.
// A stale or missing row yields apperrors.ErrConflict.
func (r *JobApplicationRepository) UpdateStatus(ctx context.Context, app *models.JobApplication) error {
	sql, args, err := r.sb.Update("job_applications").
		Set("status", app.Status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": app.ID, "updated_at": app.UpdatedAt}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building job application status SQL")
		return fmt.Errorf("failed to build job application status query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&app.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrConflict
		}
		logger.Error().Err(err).Int64("applicationID", app.ID).Msg("Error executing job application status update")
		return fmt.Errorf("error updating job application: %w", err)
	}
	return nil
}

// Exists reports whether an application with id exists.
func (r *JobApplicationRepository) Exists(ctx context.Context, id int64) (bool, error) {
	found, err := exists(ctx, r.db, "job_applications", squirrel.Eq{"id": id})
	if err != nil {
		return false, fmt.Errorf("error checking job application existence: %w", err)
	}
	return found, nil
}

// Delete removes an application
func (r *JobApplicationRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "job_applications", id, apperrors.ErrApplicationNotFound)
}
