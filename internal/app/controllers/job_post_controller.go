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

// JobPostController handles internship advertisements
type JobPostController struct {
	jobPostService services.JobPostService
	logger         zerolog.Logger
}

// NewJobPostController creates a new JobPostController
func NewJobPostController(jobPostService services.JobPostService, logger zerolog.Logger) *JobPostController {
	return &JobPostController{
		jobPostService: jobPostService,
		logger:         logger,
	}
}

// ListJobPosts returns every job post. An empty table yields an empty list.
// @Summary List job posts
// @Tags jobposts
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.JobPost}
// @Router /jobposts [get]
func (c *JobPostController) ListJobPosts(ctx *gin.Context) {
	posts, err := c.jobPostService.ListJobPosts(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(posts, ""))
}

// GetJobPost returns one job post
// @Summary Get job post by ID
// @Tags jobposts
// @Produce json
// @Param id path int true "Job post ID"
// @Success 200 {object} dto.APIResponse{data=models.JobPost}
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /jobposts/{id} [get]
func (c *JobPostController) GetJobPost(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Job post")
	if !ok {
		return
	}

	post, err := c.jobPostService.GetJobPostByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, withMessage(err, apperrors.ErrJobPostNotFound, "Job not found."))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post, ""))
}

// CreateJobPost publishes a new job post in Pending state
// @Summary Create job post
// @Tags jobposts
// @Accept json
// @Produce json
// @Param request body dto.CreateJobPostRequest true "Job post"
// @Success 201 {object} dto.APIResponse{data=dto.CreateJobPostResponse} "Internship Posted Successfully!"
// @Failure 400 {object} dto.ErrorResponse "Validation failed or unknown company"
// @Router /jobposts [post]
func (c *JobPostController) CreateJobPost(ctx *gin.Context) {
	var req dto.CreateJobPostRequest
	if !bindJSON(ctx, &req) {
		return
	}

	id, err := c.jobPostService.CreateJobPost(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.CreateJobPostResponse{JobID: id}, "Internship Posted Successfully!"))
}

// UpdateJobPost overwrites the mutable job post fields
// @Summary Update job post
// @Tags jobposts
// @Accept json
// @Produce json
// @Param id path int true "Job post ID"
// @Param request body dto.UpdateJobPostRequest true "Job post; jobPostId must equal the path id"
// @Success 200 {object} dto.APIResponse{data=models.JobPost} "Updated successfully!"
// @Failure 400 {object} dto.ErrorResponse "ID mismatch"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Failure 409 {object} dto.ErrorResponse "Concurrent update"
// @Router /jobposts/{id} [put]
func (c *JobPostController) UpdateJobPost(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Job post")
	if !ok {
		return
	}

	var req dto.UpdateJobPostRequest
	if !bindJSON(ctx, &req) {
		return
	}

	post, err := c.jobPostService.UpdateJobPost(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post, "Updated successfully!"))
}

// DeleteJobPost removes a job post together with its applications
// @Summary Delete job post
// @Tags jobposts
// @Param id path int true "Job post ID"
// @Success 200 {object} dto.APIResponse "Deleted successfully!"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /jobposts/{id} [delete]
func (c *JobPostController) DeleteJobPost(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Job post")
	if !ok {
		return
	}

	if err := c.jobPostService.DeleteJobPost(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, withMessage(err, apperrors.ErrJobPostNotFound, "Job not found."))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Deleted successfully!"))
}
