package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/pkg/apperrors"
)

// AdminService defines the moderation views and actions
type AdminService interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	ListCompanies(ctx context.Context) ([]*models.Company, error)
	ListJobsWithCompany(ctx context.Context) ([]*models.JobPost, error)
	VerifyCompany(ctx context.Context, companyID int64) error
	VerifyStudent(ctx context.Context, userID int64) error
	SetJobStatus(ctx context.Context, jobPostID int64, status models.JobPostStatus) error
}

type adminServiceImpl struct {
	userRepo    UserStore
	companyRepo CompanyStore
	jobPostRepo JobPostStore
	studentRepo StudentStore
	logger      zerolog.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(
	userRepo UserStore,
	companyRepo CompanyStore,
	jobPostRepo JobPostStore,
	studentRepo StudentStore,
	logger zerolog.Logger,
) AdminService {
	return &adminServiceImpl{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		jobPostRepo: jobPostRepo,
		studentRepo: studentRepo,
		logger:      logger,
	}
}

func (s *adminServiceImpl) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *adminServiceImpl) ListCompanies(ctx context.Context) ([]*models.Company, error) {
	return s.companyRepo.List(ctx)
}

// ListJobsWithCompany returns every job post with its company attached
func (s *adminServiceImpl) ListJobsWithCompany(ctx context.Context) ([]*models.JobPost, error) {
	return s.jobPostRepo.ListWithCompany(ctx)
}

// VerifyCompany approves a company
func (s *adminServiceImpl) VerifyCompany(ctx context.Context, companyID int64) error {
	if err := s.companyRepo.SetVerified(ctx, companyID, true); err != nil {
		return err
	}
	s.logger.Info().Int64("companyID", companyID).Msg("Company verified")
	return nil
}

// VerifyStudent approves the profile owned by userID
func (s *adminServiceImpl) VerifyStudent(ctx context.Context, userID int64) error {
	if err := s.studentRepo.SetVerified(ctx, userID, true); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", userID).Msg("Student verified")
	return nil
}

// SetJobStatus moderates a job post
func (s *adminServiceImpl) SetJobStatus(ctx context.Context, jobPostID int64, status models.JobPostStatus) error {
	if !status.Valid() {
		return apperrors.NewValidationError("Invalid job post status.")
	}
	if err := s.jobPostRepo.UpdateStatus(ctx, jobPostID, status); err != nil {
		return err
	}
	s.logger.Info().Int64("jobPostID", jobPostID).Str("status", string(status)).Msg("Job post status changed")
	return nil
}
