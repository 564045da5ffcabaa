package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/db"
	"github.com/skillpivot/api/internal/pkg/apperrors"
	"github.com/skillpivot/api/internal/pkg/dberrors"
	"github.com/skillpivot/api/internal/pkg/logger"
)

const usersEmailConstraint = "users_email_key"

var userColumns = []string{
	"id", "email", "password", "role", "first_name", "last_name",
	"verification_code", "otp_expiry", "otp_verified", "is_verified",
	"location", "industry", "profile_picture", "created_at", "updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db dbConn
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: pool,
		sb: statementBuilder,
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.Password, &u.Role, &u.FirstName, &u.LastName,
		&u.VerificationCode, &u.OTPExpiry, &u.OTPVerified, &u.IsVerified,
		&u.Location, &u.Industry, &u.ProfilePicture, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) insertUser(ctx context.Context, q querier, user *models.User) error {
	sql, args, err := r.sb.Insert("users").
		Columns("email", "password", "role", "first_name", "last_name", "is_verified").
		Values(user.Email, user.Password, user.Role, user.FirstName, user.LastName, user.IsVerified).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, usersEmailConstraint) {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// Create inserts a user without a companion profile.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (int64, error) {
	if err := r.insertUser(ctx, r.db, user); err != nil {
		return 0, err
	}
	return user.ID, nil
}

// CreateWithProfile inserts the user and, in the same transaction, the
// profile its role requires: the given company for Company users or an empty
// student row for Student users.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user *models.User, company *models.Company) (int64, error) {
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := r.insertUser(ctx, tx, user); err != nil {
			return err
		}

		switch user.Role {
		case models.RoleCompany:
			if company == nil {
				return apperrors.NewValidationError("Company name is required for company accounts.")
			}
			return insertCompany(ctx, tx, company)
		case models.RoleStudent:
			return insertStudent(ctx, tx, &models.Student{UserID: user.ID})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get user SQL")
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	found, err := exists(ctx, r.db, "users", squirrel.Eq{"email": email})
	if err != nil {
		logger.Error().Err(err).Msg("Error checking email existence")
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return found, nil
}

// Exists reports whether a user with id exists.
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	found, err := exists(ctx, r.db, "users", squirrel.Eq{"id": id})
	if err != nil {
		return false, fmt.Errorf("error checking user existence: %w", err)
	}
	return found, nil
}

// List returns every user ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list users SQL")
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// Update saves the profile fields of user if the row still carries
// user.UpdatedAt. A stale or missing row yields apperrors.ErrConflict.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	sql, args, err := r.sb.Update("users").
		SetMap(map[string]interface{}{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
			"location":   user.Location,
			"industry":   user.Industry,
			"updated_at": squirrel.Expr("now()"),
		}).
		Where(squirrel.Eq{"id": user.ID, "updated_at": user.UpdatedAt}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update user SQL")
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrConflict
		}
		if dberrors.IsDuplicateConstraintError(err, usersEmailConstraint) {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Int64("userID", user.ID).Msg("Error executing update user query")
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

// Delete removes a user; the student profile cascades.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "users", id, apperrors.ErrUserNotFound)
}

func (r *UserRepository) setFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	fields["updated_at"] = squirrel.Expr("now()")
	sql, args, err := r.sb.Update("users").
		SetMap(fields).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building user field update SQL")
		return fmt.Errorf("failed to build user update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error executing user field update")
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// SetOTP stores a fresh verification code and clears any earlier verification.
func (r *UserRepository) SetOTP(ctx context.Context, id int64, code string, expiry time.Time) error {
	return r.setFields(ctx, id, map[string]interface{}{
		"verification_code": code,
		"otp_expiry":        expiry,
		"otp_verified":      false,
	})
}

// MarkOTPVerified records that the current code was confirmed.
func (r *UserRepository) MarkOTPVerified(ctx context.Context, id int64) error {
	return r.setFields(ctx, id, map[string]interface{}{"otp_verified": true})
}

// UpdatePassword stores a new hash and clears the verification code state.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.setFields(ctx, id, map[string]interface{}{
		"password":          passwordHash,
		"verification_code": nil,
		"otp_expiry":        nil,
		"otp_verified":      false,
	})
}

// UpdateProfilePicture stores the URL of the user's picture.
func (r *UserRepository) UpdateProfilePicture(ctx context.Context, id int64, url string) error {
	return r.setFields(ctx, id, map[string]interface{}{"profile_picture": url})
}

// deleteByID deletes one row and maps a miss onto notFound.
func deleteByID(ctx context.Context, q querier, table string, id int64, notFound error) error {
	sql, args, err := statementBuilder.Delete(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", table).Msg("Error building delete SQL")
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", table).Int64("id", id).Msg("Error executing delete query")
		return fmt.Errorf("error deleting from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
