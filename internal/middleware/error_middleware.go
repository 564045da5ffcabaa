package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillpivot/api/internal/app/models/dto"
	"github.com/skillpivot/api/internal/pkg/apperrors"
	"github.com/skillpivot/api/internal/pkg/logger"
)

// HandleAPIError maps a service error to a status code and error envelope.
// Only messages carried by apperrors.CustomError reach the client.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classifyError(err)

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	} else {
		detail.WithSeverity(dto.ErrorSeverityWarning)
	}
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Cause != nil {
		event = event.AnErr("cause", ce.Cause)
	}
	event.Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Int("status", status).
		Msg("Request failed")

	c.JSON(status, dto.NewErrorResponse(detail))
}

func classifyError(err error) (int, *dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed,
			apperrors.Message(err, "Validation failed"))
	case errors.Is(err, apperrors.ErrEmptyFile):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeEmptyFile,
			apperrors.Message(err, "No file uploaded."))
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeBadRequest,
			apperrors.Message(err, "Bad request"))
	case errors.Is(err, apperrors.ErrInvalidOTP):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidOTP,
			apperrors.Message(err, "Invalid or expired code."))

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials,
			apperrors.Message(err, "Invalid email or password."))
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeTokenNotFound, "Token not found")
	case apperrors.Is(err, apperrors.ErrTokenInvalid, apperrors.ErrTokenRevoked, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")

	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden,
			apperrors.Message(err, "Permission denied"))

	case errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound,
			apperrors.Message(err, "User not found."))
	case errors.Is(err, apperrors.ErrCompanyNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound,
			apperrors.Message(err, "Company not found."))
	case errors.Is(err, apperrors.ErrJobPostNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound,
			apperrors.Message(err, "Job post not found."))
	case errors.Is(err, apperrors.ErrApplicationNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound,
			apperrors.Message(err, "Job application not found."))
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound,
			apperrors.Message(err, "Student not found."))
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound,
			apperrors.Message(err, "Resource not found"))

	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists,
			apperrors.Message(err, "Email already exists"))
	case apperrors.Is(err, apperrors.ErrStudentExists, apperrors.ErrDuplicateApplication, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists,
			apperrors.Message(err, "Resource already exists"))
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict,
			apperrors.Message(err, "The record was changed by another request."))

	case errors.Is(err, apperrors.ErrExternalService):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeExternalServiceError,
			apperrors.Message(err, "An external service failed."))
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}
