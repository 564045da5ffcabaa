package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/pkg/apperrors"
)

// The store interfaces below are implemented by the repositories package.
// Services depend on them so tests can substitute in-memory fakes.

// UserStore persists users.
type UserStore interface {
	CreateWithProfile(ctx context.Context, user *models.User, company *models.Company) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
	SetOTP(ctx context.Context, id int64, code string, expiry time.Time) error
	MarkOTPVerified(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateProfilePicture(ctx context.Context, id int64, url string) error
}

// CompanyStore persists companies.
type CompanyStore interface {
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	GetByContactEmail(ctx context.Context, email string) (*models.Company, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	SetVerified(ctx context.Context, id int64, verified bool) error
	UpdateLogo(ctx context.Context, id int64, url string) error
}

// JobPostStore persists job posts.
type JobPostStore interface {
	Create(ctx context.Context, post *models.JobPost) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.JobPost, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*models.JobPost, error)
	ListWithCompany(ctx context.Context) ([]*models.JobPost, error)
	Update(ctx context.Context, post *models.JobPost) error
	UpdateStatus(ctx context.Context, id int64, status models.JobPostStatus) error
	Delete(ctx context.Context, id int64) error
}

// JobApplicationStore persists job applications.
type JobApplicationStore interface {
	Create(ctx context.Context, app *models.JobApplication) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.JobApplication, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ExistsForStudentAndJob(ctx context.Context, studentID, jobPostID int64) (bool, error)
	ListSummaries(ctx context.Context) ([]*models.ApplicationSummary, error)
	UpdateStatus(ctx context.Context, app *models.JobApplication) error
	Delete(ctx context.Context, id int64) error
}

// StudentStore persists student profiles.
type StudentStore interface {
	Create(ctx context.Context, student *models.Student) (int64, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	ExistsForUser(ctx context.Context, userID int64) (bool, error)
	List(ctx context.Context) ([]*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	SetVerified(ctx context.Context, userID int64, verified bool) error
	UpdateNicDocument(ctx context.Context, userID int64, url string) error
}

// RefreshTokenStore keeps refresh tokens.
type RefreshTokenStore interface {
	CreateToken(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	ConsumeToken(ctx context.Context, token string) (int64, error)
	DeleteToken(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
}

// normalizeEmail is applied to every email before lookup or storage.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// resolveSaveConflict handles a stale optimistic update: a row that vanished
// becomes notFound, a row that still exists is a 409.
func resolveSaveConflict(ctx context.Context, err error, exists func(context.Context) (bool, error), notFound error) error {
	if !errors.Is(err, apperrors.ErrConflict) {
		return err
	}
	found, existsErr := exists(ctx)
	if existsErr != nil {
		return existsErr
	}
	if !found {
		return notFound
	}
	return apperrors.NewConflictError("The record was changed by another request. Reload it and try again.")
}

func mismatchError(entity string) error {
	return apperrors.NewBadRequestError(entity + " ID mismatch.")
}
