package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/logger"
)

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)
	if status == http.StatusTooManyRequests {
		var lockout *apperrors.LockoutError
		if errors.As(err, &lockout) && lockout.RetryAfterSeconds > 0 {
			c.Header("Retry-After", strconv.Itoa(lockout.RetryAfterSeconds))
		}
	}
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// errorDetailFor maps an error to its HTTP status and public error detail.
// Internal messages never reach the client for 5xx responses.
func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	var fieldErr *apperrors.FieldError
	if errors.As(err, &fieldErr) {
		if apperrors.Is(fieldErr.Err, apperrors.ErrUsernameExists, apperrors.ErrEmailExists) {
			return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, fieldErr.Message).
				WithField(fieldErr.Field)
		}
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, fieldErr.Message).
			WithField(fieldErr.Field)
	}

	switch {
	case errors.Is(err, apperrors.ErrTooManyAttempts):
		return http.StatusTooManyRequests, dto.NewErrorDetail(dto.ErrorCodeTooManyAttempts,
			"Too many failed login attempts. Please try again later.")
	case errors.Is(err, apperrors.ErrPartialRegistration):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodePartialRegistration,
			"Registration could not be completed. Please contact the admissions office.")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid username or password")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeAccountDisabled,
			"Your account has been deactivated. Please contact the administrator.")
	case apperrors.Is(err, apperrors.ErrStudentNotFound,
		apperrors.ErrDocumentNotFound, apperrors.ErrCourseNotFound, apperrors.ErrResourceNotFound, apperrors.ErrUserNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, notFoundMessage(err))
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, messageOr(err, "Permission denied"))
	case apperrors.Is(err, apperrors.ErrCourseAlreadyExists, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, messageOr(err, "Resource already exists"))
	case apperrors.Is(err, apperrors.ErrUsernameExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Username already exists").
			WithField("username")
	case apperrors.Is(err, apperrors.ErrEmailExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already registered").
			WithField("email")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeTokenNotFound, "Token not found")
	case apperrors.Is(err, apperrors.ErrTokenInvalid, apperrors.ErrTokenRevoked):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case apperrors.Is(err, apperrors.ErrInvalidDecision, apperrors.ErrRejectionReasonRequired,
		apperrors.ErrCourseInactive, apperrors.ErrInvalidDocumentType, apperrors.ErrInvalidFile):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, messageOr(err, badInputMessage(err)))
	case apperrors.Is(err, apperrors.ErrValidationFailed, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeBadRequest, messageOr(err, "Invalid request"))
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer,
			"An unexpected error occurred. Please try again later.")
	}
}

// messageOr returns the message of a CustomError in the chain, or def.
func messageOr(err error, def string) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return def
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return messageOr(err, "Student not found")
	case errors.Is(err, apperrors.ErrDocumentNotFound):
		return messageOr(err, "Document not found")
	case errors.Is(err, apperrors.ErrCourseNotFound):
		return messageOr(err, "Course not found")
	case errors.Is(err, apperrors.ErrUserNotFound):
		return messageOr(err, "User not found")
	default:
		return messageOr(err, "Resource not found")
	}
}

func badInputMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrRejectionReasonRequired):
		return "Rejection reason is required"
	case errors.Is(err, apperrors.ErrInvalidDecision):
		return "Decision must be APPROVE or REJECT"
	case errors.Is(err, apperrors.ErrCourseInactive):
		return "Course is not open for admission"
	case errors.Is(err, apperrors.ErrInvalidDocumentType):
		return "Invalid document type"
	default:
		return "Invalid file"
	}
}
