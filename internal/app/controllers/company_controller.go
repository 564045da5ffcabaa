package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/skillpivot/api/internal/app/models/dto"
	"github.com/skillpivot/api/internal/app/services"
	"github.com/skillpivot/api/internal/middleware"
	"github.com/skillpivot/api/internal/pkg/apperrors"
)

// CompanyController handles company profile operations
type CompanyController struct {
	companyService services.CompanyService
	logger         zerolog.Logger
}

// NewCompanyController creates a new CompanyController
func NewCompanyController(companyService services.CompanyService, logger zerolog.Logger) *CompanyController {
	return &CompanyController{
		companyService: companyService,
		logger:         logger,
	}
}

// ListCompanies returns every company
// @Summary List companies
// @Tags companies
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Company}
// @Router /companies [get]
func (c *CompanyController) ListCompanies(ctx *gin.Context) {
	companies, err := c.companyService.ListCompanies(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(companies, ""))
}

// GetCompany returns one company
// @Summary Get company by ID
// @Tags companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} dto.APIResponse{data=models.Company}
// @Failure 404 {object} dto.ErrorResponse "Company profile not found"
// @Router /companies/{id} [get]
func (c *CompanyController) GetCompany(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Company")
	if !ok {
		return
	}

	company, err := c.companyService.GetCompanyByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, withMessage(err, apperrors.ErrCompanyNotFound, "Company profile not found."))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(company, ""))
}

// UpdateCompany overwrites the editable company fields
// @Summary Update company profile
// @Tags companies
// @Accept json
// @Produce json
// @Param id path int true "Company ID"
// @Param request body dto.UpdateCompanyRequest true "Company fields; companyId must equal the path id"
// @Success 200 {object} dto.APIResponse{data=models.Company}
// @Failure 400 {object} dto.ErrorResponse "Company ID mismatch"
// @Failure 404 {object} dto.ErrorResponse "Company not found"
// @Failure 409 {object} dto.ErrorResponse "Concurrent update"
// @Router /companies/{id} [put]
func (c *CompanyController) UpdateCompany(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Company")
	if !ok {
		return
	}

	var req dto.UpdateCompanyRequest
	if !bindJSON(ctx, &req) {
		return
	}

	company, err := c.companyService.UpdateCompany(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(company, "Company profile updated successfully!"))
}

// UploadLogo stores a company logo
// @Summary Upload company logo
// @Tags companies
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Company ID"
// @Param file formData file true "Logo image"
// @Success 200 {object} dto.APIResponse{data=dto.FileURLResponse}
// @Failure 400 {object} dto.ErrorResponse "No file uploaded"
// @Failure 404 {object} dto.ErrorResponse "Company not found"
// @Router /companies/{id}/logo [post]
func (c *CompanyController) UploadLogo(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Company")
	if !ok {
		return
	}

	file, err := uploadedFile(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	url, err := c.companyService.UploadLogo(ctx.Request.Context(), id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FileURLResponse{URL: url}, "Logo uploaded successfully."))
}
