package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/app/models/dto"
	"github.com/skillpivot/api/internal/pkg/apperrors"
	"github.com/skillpivot/api/internal/pkg/filestorage"
)

// CompanyService defines company profile operations
type CompanyService interface {
	ListCompanies(ctx context.Context) ([]*models.Company, error)
	GetCompanyByID(ctx context.Context, id int64) (*models.Company, error)
	UpdateCompany(ctx context.Context, id int64, req *dto.UpdateCompanyRequest) (*models.Company, error)
	UploadLogo(ctx context.Context, id int64, file *multipart.FileHeader) (string, error)
}

type companyServiceImpl struct {
	companyRepo CompanyStore
	fileStorage filestorage.BlobStore
	logger      zerolog.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo CompanyStore, fileStorage filestorage.BlobStore, logger zerolog.Logger) CompanyService {
	return &companyServiceImpl{
		companyRepo: companyRepo,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

func (s *companyServiceImpl) ListCompanies(ctx context.Context) ([]*models.Company, error) {
	return s.companyRepo.List(ctx)
}

func (s *companyServiceImpl) GetCompanyByID(ctx context.Context, id int64) (*models.Company, error) {
	return s.companyRepo.GetByID(ctx, id)
}

// UpdateCompany overwrites the editable company fields. Verification and the
// registration date are never changed here.
func (s *companyServiceImpl) UpdateCompany(ctx context.Context, id int64, req *dto.UpdateCompanyRequest) (*models.Company, error) {
	if req.CompanyID != id {
		return nil, mismatchError("Company")
	}

	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	company.Name = strings.TrimSpace(req.Name)
	company.ContactEmail = normalizeEmail(req.ContactEmail)
	company.Industry = strings.TrimSpace(req.Industry)
	if company.Industry == "" {
		company.Industry = models.DefaultIndustry
	}
	company.Website = req.Website
	company.Description = req.Description
	company.Location = req.Location

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, resolveSaveConflict(ctx, err, func(ctx context.Context) (bool, error) {
			return s.companyRepo.Exists(ctx, id)
		}, apperrors.ErrCompanyNotFound)
	}
	return company, nil
}

// UploadLogo stores a logo and replaces the previous one
func (s *companyServiceImpl) UploadLogo(ctx context.Context, id int64, file *multipart.FileHeader) (string, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	url, err := s.fileStorage.Store(ctx, filestorage.CategoryLogo, id, file)
	if err != nil {
		return "", err
	}
	if err := s.companyRepo.UpdateLogo(ctx, id, url); err != nil {
		_ = s.fileStorage.Delete(ctx, url)
		return "", fmt.Errorf("error saving company logo: %w", err)
	}

	if company.LogoPath != nil && *company.LogoPath != url && filestorage.OwnedBy(*company.LogoPath, filestorage.CategoryLogo, id) {
		if err := s.fileStorage.Delete(ctx, *company.LogoPath); err != nil {
			s.logger.Warn().Err(err).Int64("companyID", id).Msg("Failed to delete previous company logo")
		}
	}
	return url, nil
}
