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
	"github.com/skillpivot/api/internal/pkg/auth"
	"github.com/skillpivot/api/internal/pkg/filestorage"
)

// UserService defines the interface for user operations
type UserService interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	UploadProfilePicture(ctx context.Context, id int64, file *multipart.FileHeader) (string, error)
	ChangePassword(ctx context.Context, req *dto.ChangePasswordRequest) error
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	userRepo    UserStore
	tokenRepo   RefreshTokenStore
	fileStorage filestorage.BlobStore
	logger      zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo UserStore,
	tokenRepo RefreshTokenStore,
	fileStorage filestorage.BlobStore,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

// ListUsers returns every user
func (s *userServiceImpl) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.List(ctx)
}

// GetUserByID retrieves a user by ID
func (s *userServiceImpl) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateUser overwrites the profile fields of a user
func (s *userServiceImpl) UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	if req.UserID != id {
		return nil, mismatchError("User")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newEmail := normalizeEmail(req.Email)
	if newEmail != user.Email {
		taken, err := s.userRepo.EmailExists(ctx, newEmail)
		if err != nil {
			return nil, fmt.Errorf("error checking email availability: %w", err)
		}
		if taken {
			return nil, errEmailTaken
		}
	}

	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Email = newEmail
	user.Location = req.Location
	user.Industry = req.Industry

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, errEmailTaken
		}
		return nil, resolveSaveConflict(ctx, err, func(ctx context.Context) (bool, error) {
			return s.userRepo.Exists(ctx, id)
		}, apperrors.ErrUserNotFound)
	}

	s.logger.Info().Int64("userID", id).Msg("User profile updated")
	return user, nil
}

// DeleteUser removes a user and, best effort, the profile picture
func (s *userServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	if user.ProfilePicture != nil && filestorage.OwnedBy(*user.ProfilePicture, filestorage.CategoryProfile, id) {
		if err := s.fileStorage.Delete(ctx, *user.ProfilePicture); err != nil {
			s.logger.Warn().Err(err).Int64("userID", id).Msg("Failed to delete profile picture of removed user")
		}
	}
	return nil
}

// UploadProfilePicture stores a new picture and replaces the previous one
func (s *userServiceImpl) UploadProfilePicture(ctx context.Context, id int64, file *multipart.FileHeader) (string, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	url, err := s.fileStorage.Store(ctx, filestorage.CategoryProfile, id, file)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdateProfilePicture(ctx, id, url); err != nil {
		_ = s.fileStorage.Delete(ctx, url)
		return "", fmt.Errorf("error saving profile picture: %w", err)
	}

	if user.ProfilePicture != nil && *user.ProfilePicture != url && filestorage.OwnedBy(*user.ProfilePicture, filestorage.CategoryProfile, id) {
		if err := s.fileStorage.Delete(ctx, *user.ProfilePicture); err != nil {
			s.logger.Warn().Err(err).Str("file", *user.ProfilePicture).Msg("Failed to delete previous profile picture")
		}
	}
	return url, nil
}

// ChangePassword verifies the current password and stores the new one
func (s *userServiceImpl) ChangePassword(ctx context.Context, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.NewBadRequestError("Current password is incorrect.")
	}

	hashedPassword, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	if err := s.tokenRepo.RevokeAllForUser(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to revoke refresh tokens after password change")
	}
	return nil
}
