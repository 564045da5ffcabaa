package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/app/models/dto"
	"github.com/skillpivot/api/internal/app/services"
	"github.com/skillpivot/api/internal/middleware"
)

// JobApplicationController handles applications of students to job posts
type JobApplicationController struct {
	applicationService services.JobApplicationService
	logger             zerolog.Logger
}

// NewJobApplicationController creates a new JobApplicationController
func NewJobApplicationController(applicationService services.JobApplicationService, logger zerolog.Logger) *JobApplicationController {
	return &JobApplicationController{
		applicationService: applicationService,
		logger:             logger,
	}
}

// ListApplications returns every application with its job title and company name
// @Summary List job applications
// @Tags jobapplications
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.ApplicationSummary}
// @Router /jobapplications [get]
func (c *JobApplicationController) ListApplications(ctx *gin.Context) {
	summaries, err := c.applicationService.ListApplications(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(summaries, ""))
}

// GetApplication returns one application
// @Summary Get job application by ID
// @Tags jobapplications
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.JobApplication}
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /jobapplications/{id} [get]
func (c *JobApplicationController) GetApplication(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Application")
	if !ok {
		return
	}

	app, err := c.applicationService.GetApplicationByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app, ""))
}

// Apply submits an application
// @Summary Apply to a job post
// @Tags jobapplications
// @Accept json
// @Produce json
// @Param request body dto.CreateJobApplicationRequest true "Job post and student"
// @Success 201 {object} dto.APIResponse{data=dto.CreateJobApplicationResponse} "Application submitted successfully!"
// @Failure 400 {object} dto.ErrorResponse "Unknown job post or student"
// @Failure 409 {object} dto.ErrorResponse "Already applied"
// @Router /jobapplications [post]
func (c *JobApplicationController) Apply(ctx *gin.Context) {
	var req dto.CreateJobApplicationRequest
	if !bindJSON(ctx, &req) {
		return
	}

	id, err := c.applicationService.Apply(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(
		dto.CreateJobApplicationResponse{ApplicationID: id}, "Application submitted successfully!"))
}

// UpdateStatus moves an application to a new review status
// @Summary Update application status
// @Tags jobapplications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param request body dto.ApplicationStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.JobApplication}
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Concurrent update"
// @Router /jobapplications/{id}/status [put]
func (c *JobApplicationController) UpdateStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Application")
	if !ok {
		return
	}

	var req dto.ApplicationStatusRequest
	if !bindJSON(ctx, &req) {
		return
	}

	app, err := c.applicationService.UpdateStatus(ctx.Request.Context(), id, models.ApplicationStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app, "Application status updated."))
}

// DeleteApplication withdraws an application
// @Summary Delete job application
// @Tags jobapplications
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /jobapplications/{id} [delete]
func (c *JobApplicationController) DeleteApplication(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Application")
	if !ok {
		return
	}

	if err := c.applicationService.DeleteApplication(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Application deleted."))
}
