package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/app/models/dto"
	"github.com/skillpivot/api/internal/pkg/apperrors"
)

// JobApplicationService defines job application operations
type JobApplicationService interface {
	ListApplications(ctx context.Context) ([]*models.ApplicationSummary, error)
	GetApplicationByID(ctx context.Context, id int64) (*models.JobApplication, error)
	Apply(ctx context.Context, req *dto.CreateJobApplicationRequest) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*models.JobApplication, error)
	DeleteApplication(ctx context.Context, id int64) error
}

type jobApplicationServiceImpl struct {
	applicationRepo JobApplicationStore
	jobPostRepo     JobPostStore
	studentRepo     StudentStore
	allowDuplicate  bool
	logger          zerolog.Logger
}

// NewJobApplicationService creates a new JobApplicationService. With
// allowDuplicate a student may apply to the same job post more than once.
func NewJobApplicationService(
	applicationRepo JobApplicationStore,
	jobPostRepo JobPostStore,
	studentRepo StudentStore,
	allowDuplicate bool,
	logger zerolog.Logger,
) JobApplicationService {
	return &jobApplicationServiceImpl{
		applicationRepo: applicationRepo,
		jobPostRepo:     jobPostRepo,
		studentRepo:     studentRepo,
		allowDuplicate:  allowDuplicate,
		logger:          logger,
	}
}

func (s *jobApplicationServiceImpl) ListApplications(ctx context.Context) ([]*models.ApplicationSummary, error) {
	return s.applicationRepo.ListSummaries(ctx)
}

func (s *jobApplicationServiceImpl) GetApplicationByID(ctx context.Context, id int64) (*models.JobApplication, error) {
	return s.applicationRepo.GetByID(ctx, id)
}

// Apply records a Pending application of a student to a job post
func (s *jobApplicationServiceImpl) Apply(ctx context.Context, req *dto.CreateJobApplicationRequest) (int64, error) {
	found, err := s.jobPostRepo.Exists(ctx, req.JobPostID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, apperrors.NewValidationError("Invalid JobPostId. The job post does not exist.")
	}

	if _, err := s.studentRepo.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return 0, apperrors.NewValidationError("Invalid StudentId. The student does not exist.")
		}
		return 0, err
	}

	if !s.allowDuplicate {
		applied, err := s.applicationRepo.ExistsForStudentAndJob(ctx, req.StudentID, req.JobPostID)
		if err != nil {
			return 0, err
		}
		if applied {
			return 0, apperrors.NewCustomError(apperrors.ErrDuplicateApplication, "You have already applied to this job post.")
		}
	}

	app := &models.JobApplication{
		JobPostID: req.JobPostID,
		StudentID: req.StudentID,
		Status:    models.ApplicationPending,
	}
	id, err := s.applicationRepo.Create(ctx, app)
	if err != nil {
		return 0, fmt.Errorf("error creating job application: %w", err)
	}

	s.logger.Info().Int64("applicationID", id).Int64("jobPostID", req.JobPostID).Msg("Job application submitted")
	return id, nil
}

// UpdateStatus moves an application to a new review status
func (s *jobApplicationServiceImpl) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*models.JobApplication, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("Invalid application status.")
	}

	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	app.Status = status

	if err := s.applicationRepo.UpdateStatus(ctx, app); err != nil {
		return nil, resolveSaveConflict(ctx, err, func(ctx context.Context) (bool, error) {
			return s.applicationRepo.Exists(ctx, id)
		}, apperrors.ErrApplicationNotFound)
	}
	return app, nil
}

func (s *jobApplicationServiceImpl) DeleteApplication(ctx context.Context, id int64) error {
	return s.applicationRepo.Delete(ctx, id)
}
