package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/app/models/dto"
	"github.com/skillpivot/api/internal/app/services"
	"github.com/skillpivot/api/internal/middleware"
	"github.com/skillpivot/api/internal/pkg/apperrors"
)

// AdminController exposes the moderation endpoints. Every route requires
// the Admin role.
type AdminController struct {
	adminService services.AdminService
	logger       zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService services.AdminService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// ListUsers returns every user
// @Summary Admin: list users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.User}
// @Router /admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	users, err := c.adminService.ListUsers(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(users, ""))
}

// ListCompanies returns every company
// @Summary Admin: list companies
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Company}
// @Router /admin/companies [get]
func (c *AdminController) ListCompanies(ctx *gin.Context) {
	companies, err := c.adminService.ListCompanies(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(companies, ""))
}

// ListJobs returns every job post with its company
// @Summary Admin: list job posts with company
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.JobPost}
// @Router /admin/jobs [get]
func (c *AdminController) ListJobs(ctx *gin.Context) {
	jobs, err := c.adminService.ListJobsWithCompany(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(jobs, ""))
}

// VerifyCompany approves a company
// @Summary Admin: verify company
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 200 {object} dto.APIResponse "Company verified successfully!"
// @Failure 404 {object} dto.ErrorResponse "Company record not found"
// @Router /admin/verify-company/{id} [put]
func (c *AdminController) VerifyCompany(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Company")
	if !ok {
		return
	}

	if err := c.adminService.VerifyCompany(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, withMessage(err, apperrors.ErrCompanyNotFound,
			"Verification failed: Company record not found."))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Company verified successfully!"))
}

// VerifyStudent approves the student profile of a user
// @Summary Admin: verify student
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} dto.APIResponse "Student verified successfully!"
// @Failure 404 {object} dto.ErrorResponse "Student profile not found"
// @Router /admin/verify-student/{userId} [put]
func (c *AdminController) VerifyStudent(ctx *gin.Context) {
	userID, ok := parseIDParam(ctx, "userId", "User")
	if !ok {
		return
	}

	if err := c.adminService.VerifyStudent(ctx.Request.Context(), userID); err != nil {
		middleware.HandleAPIError(ctx, withMessage(err, apperrors.ErrStudentNotFound,
			"Verification failed: Student profile not found."))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Student verified successfully!"))
}

// SetJobStatus moderates a job post
// @Summary Admin: set job post status
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job post ID"
// @Param request body dto.JobStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /admin/jobs/{id}/status [put]
func (c *AdminController) SetJobStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Job post")
	if !ok {
		return
	}

	var req dto.JobStatusRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.adminService.SetJobStatus(ctx.Request.Context(), id, models.JobPostStatus(req.Status)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Job status updated."))
}
