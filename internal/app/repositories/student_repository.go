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

const (
	studentsUserConstraint   = "students_user_id_key"
	studentsUserFKConstraint = "students_user_id_fkey"
)

var studentColumns = []string{
	"id", "user_id", "university", "degree", "gpa", "skills", "gender",
	"is_verified", "nic_document_path", "updated_at",
}

// StudentRepository handles student profile database operations
type StudentRepository struct {
	db dbConn
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: pool,
		sb: statementBuilder,
	}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	s := &models.Student{}
	err := row.Scan(
		&s.ID, &s.UserID, &s.University, &s.Degree, &s.GPA, &s.Skills, &s.Gender,
		&s.IsVerified, &s.NicDocumentPath, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// insertStudent is shared with the registration transaction.
func insertStudent(ctx context.Context, q querier, student *models.Student) error {
	sql, args, err := statementBuilder.Insert("students").
		Columns("user_id", "university", "degree", "gpa", "skills", "gender", "nic_document_path").
		Values(student.UserID, student.University, student.Degree, student.GPA, student.Skills, student.Gender, student.NicDocumentPath).
		Suffix("RETURNING id, is_verified, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&student.ID, &student.IsVerified, &student.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, studentsUserConstraint) {
			return apperrors.ErrStudentExists
		}
		if dberrors.IsForeignKeyViolation(err, studentsUserFKConstraint) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", student.UserID).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

// Create inserts a student profile. A second profile for the same user
// yields apperrors.ErrStudentExists.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (int64, error) {
	if err := insertStudent(ctx, r.db, student); err != nil {
		return 0, err
	}
	return student.ID, nil
}

func (r *StudentRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("students").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get student SQL")
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Msg("Error scanning student row")
		return nil, fmt.Errorf("error getting student: %w", err)
	}
	return student, nil
}

// GetByUserID retrieves the profile owned by a user
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"user_id": userID})
}

// GetByID retrieves a profile by its own id
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// ExistsForUser reports whether userID already has a profile.
func (r *StudentRepository) ExistsForUser(ctx context.Context, userID int64) (bool, error) {
	found, err := exists(ctx, r.db, "students", squirrel.Eq{"user_id": userID})
	if err != nil {
		return false, fmt.Errorf("error checking student existence: %w", err)
	}
	return found, nil
}

// List returns every student profile ordered by id.
func (r *StudentRepository) List(ctx context.Context) ([]*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("students").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list students SQL")
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}
	return students, nil
}

// Update saves the academic fields if the row still carries
// student.UpdatedAt. A stale or missing row yields apperrors.ErrConflict.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	sql, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"university": student.University,
			"degree":     student.Degree,
			"gpa":        student.GPA,
			"skills":     student.Skills,
			"gender":     student.Gender,
			"updated_at": squirrel.Expr("now()"),
		}).
		Where(squirrel.Eq{"id": student.ID, "updated_at": student.UpdatedAt}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update student SQL")
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&student.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrConflict
		}
		logger.Error().Err(err).Int64("studentID", student.ID).Msg("Error executing update student query")
		return fmt.Errorf("error updating student: %w", err)
	}
	return nil
}

func (r *StudentRepository) setFieldsByUser(ctx context.Context, userID int64, fields map[string]interface{}) error {
	fields["updated_at"] = squirrel.Expr("now()")
	sql, args, err := r.sb.Update("students").
		SetMap(fields).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building student field update SQL")
		return fmt.Errorf("failed to build student update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing student field update")
		return fmt.Errorf("error updating student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// SetVerified flips the verification flag of the user's profile.
func (r *StudentRepository) SetVerified(ctx context.Context, userID int64, verified bool) error {
	return r.setFieldsByUser(ctx, userID, map[string]interface{}{"is_verified": verified})
}

// UpdateNicDocument stores the URL of the user's identity document.
func (r *StudentRepository) UpdateNicDocument(ctx context.Context, userID int64, url string) error {
	return r.setFieldsByUser(ctx, userID, map[string]interface{}{"nic_document_path": url})
}
