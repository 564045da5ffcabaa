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

// StudentController handles student profiles
type StudentController struct {
	studentService services.StudentService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		logger:         logger,
	}
}

// ListStudents returns every student profile
// @Summary List student profiles
// @Tags students
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Student}
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	students, err := c.studentService.ListStudents(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(students, ""))
}

// GetStudentByUser returns the profile owned by a user
// @Summary Get student profile by user ID
// @Tags students
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.ErrorResponse "Student profile not found"
// @Router /students/user/{userId} [get]
func (c *StudentController) GetStudentByUser(ctx *gin.Context) {
	userID, ok := parseIDParam(ctx, "userId", "User")
	if !ok {
		return
	}

	student, err := c.studentService.GetStudentByUserID(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, withMessage(err, apperrors.ErrStudentNotFound, "Student profile not found."))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, ""))
}

// CreateStudent adds a profile for a user that has none
// @Summary Create student profile
// @Tags students
// @Accept json
// @Produce json
// @Param request body dto.CreateStudentRequest true "Profile"
// @Success 201 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse "Unknown user"
// @Failure 409 {object} dto.ErrorResponse "Profile already exists"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.CreateStudent(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(student, "Student profile created."))
}

// UpdateStudent overwrites the academic fields of a profile
// @Summary Update student profile
// @Tags students
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Param request body dto.UpdateStudentRequest true "Profile; userId must equal the path id"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Profile updated successfully!"
// @Failure 400 {object} dto.ErrorResponse "User ID mismatch"
// @Failure 404 {object} dto.ErrorResponse "Student profile not found"
// @Failure 409 {object} dto.ErrorResponse "Concurrent update"
// @Router /students/user/{userId} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	userID, ok := parseIDParam(ctx, "userId", "User")
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.UpdateStudent(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, withMessage(err, apperrors.ErrStudentNotFound, "Student profile not found."))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, "Profile updated successfully!"))
}

// UploadNicDocument stores the identity document of a student
// @Summary Upload NIC document
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Param userId path int true "User ID"
// @Param file formData file true "Scan of the national identity card"
// @Success 200 {object} dto.APIResponse{data=dto.FileURLResponse}
// @Failure 400 {object} dto.ErrorResponse "No file uploaded"
// @Failure 404 {object} dto.ErrorResponse "Student profile not found"
// @Router /students/upload-nic/{userId} [post]
func (c *StudentController) UploadNicDocument(ctx *gin.Context) {
	userID, ok := parseIDParam(ctx, "userId", "User")
	if !ok {
		return
	}

	file, err := uploadedFile(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	url, err := c.studentService.UploadNicDocument(ctx.Request.Context(), userID, file)
	if err != nil {
		middleware.HandleAPIError(ctx, withMessage(err, apperrors.ErrStudentNotFound, "Student profile not found."))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FileURLResponse{URL: url}, "NIC document uploaded successfully."))
}
