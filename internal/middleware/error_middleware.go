package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/learnhub/internal/app/models/dto"
	"github.com/yigit/learnhub/internal/pkg/apperrors"
	"github.com/yigit/learnhub/internal/pkg/logger"
)

// Envelope messages owned by the transport layer
const (
	MsgValidationError     = "validation error"
	MsgInternalServerError = "internal server error"
	MsgRouteNotFound       = "route not found"
)

// HandleAPIError maps err onto its status and error envelope and aborts the
// request. It is the only place errors are translated for the client.
func HandleAPIError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status == http.StatusInternalServerError {
		logger.Error().
			Err(err).
			Str("request_id", RequestIDFromContext(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error")
	}
	c.AbortWithStatusJSON(status, body)
}

func errorResponse(err error) (int, dto.ErrorResponse) {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusUnprocessableEntity, dto.NewErrorResponse(MsgValidationError, validationErr.Errors...)
	}

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusUnprocessableEntity, dto.NewErrorResponse(MsgValidationError)
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorResponse(apperrors.ErrInvalidCredentials.Error())
	case errors.Is(err, apperrors.ErrTokenExpired):
		return tokenError(apperrors.ErrTokenExpired)
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenRevoked):
		return tokenError(apperrors.ErrTokenInvalid)
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return tokenError(apperrors.ErrTokenNotFound)
	case errors.Is(err, apperrors.ErrAlreadyEnrolled):
		return http.StatusUnauthorized, dto.NewErrorResponse(apperrors.ErrAlreadyEnrolled.Error())
	case errors.Is(err, apperrors.ErrNotEnrolled):
		return http.StatusUnauthorized, dto.NewErrorResponse(apperrors.ErrNotEnrolled.Error())
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorResponse(apperrors.ErrPermissionDenied.Error())
	case apperrors.Is(err, apperrors.ErrResourceNotFound, apperrors.ErrCourseNotFound, apperrors.ErrUserNotFound):
		return http.StatusNotFound, notFound(err)
	default:
		return http.StatusInternalServerError, dto.NewErrorResponse(MsgInternalServerError)
	}
}

func tokenError(err error) (int, dto.ErrorResponse) {
	return http.StatusUnauthorized, dto.NewErrorResponse(err.Error(), err.Error())
}

// notFound uses the resource's status message as the envelope message and
// the detailed message as its only error.
func notFound(err error) dto.ErrorResponse {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		message := custom.StatusMsg
		if message == "" && custom.Err != nil {
			message = custom.Err.Error()
		}
		return dto.NewErrorResponse(message, custom.Error())
	}
	return dto.NewErrorResponse(err.Error())
}
