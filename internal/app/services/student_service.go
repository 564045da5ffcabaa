package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/app/models/dto"
	"github.com/skillpivot/api/internal/pkg/apperrors"
	"github.com/skillpivot/api/internal/pkg/filestorage"
)

// StudentService defines the interface for student profile operations
type StudentService interface {
	ListStudents(ctx context.Context) ([]*models.Student, error)
	GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error)
	CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*models.Student, error)
	UpdateStudent(ctx context.Context, userID int64, req *dto.UpdateStudentRequest) (*models.Student, error)
	UploadNicDocument(ctx context.Context, userID int64, file *multipart.FileHeader) (string, error)
}

type studentServiceImpl struct {
	studentRepo StudentStore
	userRepo    UserStore
	fileStorage filestorage.BlobStore
	logger      zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	studentRepo StudentStore,
	userRepo UserStore,
	fileStorage filestorage.BlobStore,
	logger zerolog.Logger,
) StudentService {
	return &studentServiceImpl{
		studentRepo: studentRepo,
		userRepo:    userRepo,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

func (s *studentServiceImpl) ListStudents(ctx context.Context) ([]*models.Student, error) {
	return s.studentRepo.List(ctx)
}

func (s *studentServiceImpl) GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	return s.studentRepo.GetByUserID(ctx, userID)
}

// CreateStudent adds a profile for a user that has none yet
func (s *studentServiceImpl) CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*models.Student, error) {
	found, err := s.userRepo.Exists(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewValidationError("Invalid UserId. The user does not exist.")
	}

	student := &models.Student{
		UserID:     req.UserID,
		University: strings.TrimSpace(req.University),
		Degree:     strings.TrimSpace(req.Degree),
		GPA:        strings.TrimSpace(req.GPA),
		Skills:     strings.TrimSpace(req.Skills),
		Gender:     strings.TrimSpace(req.Gender),
	}
	if _, err := s.studentRepo.Create(ctx, student); err != nil {
		if errors.Is(err, apperrors.ErrStudentExists) {
			return nil, apperrors.NewCustomError(apperrors.ErrStudentExists, "A student profile already exists for this user.")
		}
		return nil, err
	}
	return student, nil
}

// UpdateStudent overwrites the academic fields of the profile owned by userID
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, userID int64, req *dto.UpdateStudentRequest) (*models.Student, error) {
	if req.UserID != userID {
		return nil, mismatchError("User")
	}

	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	student.University = strings.TrimSpace(req.University)
	student.Degree = strings.TrimSpace(req.Degree)
	student.GPA = strings.TrimSpace(req.GPA)
	student.Skills = strings.TrimSpace(req.Skills)
	student.Gender = strings.TrimSpace(req.Gender)

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, resolveSaveConflict(ctx, err, func(ctx context.Context) (bool, error) {
			return s.studentRepo.ExistsForUser(ctx, userID)
		}, apperrors.ErrStudentNotFound)
	}
	return student, nil
}

// UploadNicDocument stores an identity document and replaces the previous one
func (s *studentServiceImpl) UploadNicDocument(ctx context.Context, userID int64, file *multipart.FileHeader) (string, error) {
	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.fileStorage.Store(ctx, filestorage.CategoryNIC, userID, file)
	if err != nil {
		return "", err
	}
	if err := s.studentRepo.UpdateNicDocument(ctx, userID, url); err != nil {
		_ = s.fileStorage.Delete(ctx, url)
		return "", fmt.Errorf("error saving nic document: %w", err)
	}

	if student.NicDocumentPath != url && filestorage.OwnedBy(student.NicDocumentPath, filestorage.CategoryNIC, userID) {
		if err := s.fileStorage.Delete(ctx, student.NicDocumentPath); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to delete previous nic document")
		}
	}
	return url, nil
}
