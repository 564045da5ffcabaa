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

// UserController handles user profile operations
type UserController struct {
	userService services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// ListUsers returns every user
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.User}
// @Router /users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	users, err := c.userService.ListUsers(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(users, ""))
}

// GetUser returns one user
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Failure 404 {object} dto.ErrorResponse "User profile not found"
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "User")
	if !ok {
		return
	}

	user, err := c.userService.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, withMessage(err, apperrors.ErrUserNotFound, "User profile not found."))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, ""))
}

// UpdateUser overwrites the profile fields of a user
// @Summary Update user profile
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Profile fields; userId must equal the path id"
// @Success 200 {object} dto.APIResponse{data=models.User} "Profile updated successfully!"
// @Failure 400 {object} dto.ErrorResponse "User ID mismatch"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 409 {object} dto.ErrorResponse "Email taken or concurrent update"
// @Router /users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "User")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.UpdateUser(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, "Profile updated successfully!"))
}

// DeleteUser removes a user
// @Summary Delete user
// @Tags users
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "User")
	if !ok {
		return
	}

	if err := c.userService.DeleteUser(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "User deleted successfully."))
}

// UploadProfilePicture stores a profile picture
// @Summary Upload profile picture
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "User ID"
// @Param file formData file true "Image"
// @Success 200 {object} dto.APIResponse{data=dto.FileURLResponse}
// @Failure 400 {object} dto.ErrorResponse "No file uploaded"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/upload-image/{id} [post]
func (c *UserController) UploadProfilePicture(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "User")
	if !ok {
		return
	}

	file, err := uploadedFile(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	url, err := c.userService.UploadProfilePicture(ctx.Request.Context(), id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FileURLResponse{URL: url}, "Profile picture uploaded successfully."))
}

// ChangePassword replaces the caller's password
// @Summary Change password
// @Description Requires a bearer token of the same user or an admin
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Current password is incorrect"
// @Failure 403 {object} dto.ErrorResponse "Not your account"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/change-password [post]
func (c *UserController) ChangePassword(ctx *gin.Context) {
	var req dto.ChangePasswordRequest
	if !bindJSON(ctx, &req) {
		return
	}

	callerID, _ := middleware.CurrentUserID(ctx)
	role, _ := middleware.CurrentRole(ctx)
	if callerID != req.UserID && role != models.RoleAdmin {
		middleware.HandleAPIError(ctx, apperrors.NewForbiddenError("You can only change your own password."))
		return
	}

	if err := c.userService.ChangePassword(ctx.Request.Context(), &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", req.UserID).Msg("Password changed")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Password changed successfully."))
}
