package middleware

import (
	"errors"
	"net/http"

	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/bobasi/bursary/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// HandleAPIError maps a service error onto a status code and error envelope.
// Authorization failures always carry the same generic message.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorResponse(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error().Err(err).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error")
	}
	c.JSON(status, dto.APIResponse{Error: detail})
}

func errorResponse(err error) (int, *dto.ErrorDetail) {
	var ce *apperrors.CustomError
	hasCustom := errors.As(err, &ce)

	withDetails := func(d *dto.ErrorDetail) *dto.ErrorDetail {
		if hasCustom && len(ce.Details) > 0 {
			d = d.WithDetails(ce.Details)
		}
		return d
	}

	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "access denied")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeAccountDisabled,
			apperrors.MessageOf(err, "Account is disabled"))
	case errors.Is(err, apperrors.ErrAuthentication):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials,
			apperrors.MessageOf(err, "Invalid credentials"))
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, withDetails(dto.NewErrorDetail(dto.ErrorCodeResourceNotFound,
			apperrors.MessageOf(err, "Resource not found")))
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest, withDetails(dto.NewErrorDetail(dto.ErrorCodeValidationFailed,
			apperrors.MessageOf(err, "Validation failed")))
	case errors.Is(err, apperrors.ErrInvalidState):
		return http.StatusUnprocessableEntity, withDetails(dto.NewErrorDetail(dto.ErrorCodeInvalidState,
			apperrors.MessageOf(err, "Operation not allowed in the current state")))
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, withDetails(dto.NewErrorDetail(dto.ErrorCodeConflict,
			apperrors.MessageOf(err, "Resource already exists")))
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// Recovery converts panics into a 500 envelope
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.FromContext(c.Request.Context()).Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
		})
	})
}
