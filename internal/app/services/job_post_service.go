package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/app/models/dto"
	"github.com/skillpivot/api/internal/pkg/apperrors"
)

// JobPostService defines job post operations
type JobPostService interface {
	ListJobPosts(ctx context.Context) ([]*models.JobPost, error)
	GetJobPostByID(ctx context.Context, id int64) (*models.JobPost, error)
	CreateJobPost(ctx context.Context, req *dto.CreateJobPostRequest) (int64, error)
	UpdateJobPost(ctx context.Context, id int64, req *dto.UpdateJobPostRequest) (*models.JobPost, error)
	DeleteJobPost(ctx context.Context, id int64) error
}

type jobPostServiceImpl struct {
	jobPostRepo JobPostStore
	logger      zerolog.Logger
}

// NewJobPostService creates a new JobPostService
func NewJobPostService(jobPostRepo JobPostStore, logger zerolog.Logger) JobPostService {
	return &jobPostServiceImpl{
		jobPostRepo: jobPostRepo,
		logger:      logger,
	}
}

func (s *jobPostServiceImpl) ListJobPosts(ctx context.Context) ([]*models.JobPost, error) {
	return s.jobPostRepo.List(ctx)
}

func (s *jobPostServiceImpl) GetJobPostByID(ctx context.Context, id int64) (*models.JobPost, error) {
	return s.jobPostRepo.GetByID(ctx, id)
}

// CreateJobPost inserts a Pending job post. The company must exist.
func (s *jobPostServiceImpl) CreateJobPost(ctx context.Context, req *dto.CreateJobPostRequest) (int64, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return 0, apperrors.NewValidationError("Job title is required.")
	}

	post := &models.JobPost{
		Title:       title,
		Description: req.Description,
		TechStack:   req.TechStack,
		JobType:     req.JobType,
		JobRole:     req.JobRole,
		Status:      models.JobPostPending,
		CompanyID:   req.CompanyID,
	}
	id, err := s.jobPostRepo.Create(ctx, post)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("jobPostID", id).Int64("companyID", req.CompanyID).Msg("Job post created")
	return id, nil
}

// UpdateJobPost overwrites the mutable job post fields
func (s *jobPostServiceImpl) UpdateJobPost(ctx context.Context, id int64, req *dto.UpdateJobPostRequest) (*models.JobPost, error) {
	if req.JobPostID != id {
		return nil, mismatchError("Job post")
	}

	post, err := s.jobPostRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(req.Title)
	post.Description = req.Description
	post.TechStack = req.TechStack
	post.JobType = req.JobType
	post.JobRole = req.JobRole
	if req.Status != "" {
		status := models.JobPostStatus(req.Status)
		if !status.Valid() {
			return nil, apperrors.NewValidationError("Invalid job post status.")
		}
		post.Status = status
	}

	if err := s.jobPostRepo.Update(ctx, post); err != nil {
		return nil, resolveSaveConflict(ctx, err, func(ctx context.Context) (bool, error) {
			return s.jobPostRepo.Exists(ctx, id)
		}, apperrors.ErrJobPostNotFound)
	}
	return post, nil
}

// DeleteJobPost removes a job post and its applications
func (s *jobPostServiceImpl) DeleteJobPost(ctx context.Context, id int64) error {
	if err := s.jobPostRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("jobPostID", id).Msg("Job post deleted")
	return nil
}
