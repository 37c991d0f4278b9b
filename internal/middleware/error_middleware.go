package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolportal/internal/app/models/dto"
	"github.com/yigit/schoolportal/internal/pkg/apperrors"
	"github.com/yigit/schoolportal/internal/pkg/logger"
)

// errorMapping pairs a sentinel with its status and fallback message.
type errorMapping struct {
	target  error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{apperrors.ErrMissingField, http.StatusBadRequest, "Please provide all required fields"},
	{apperrors.ErrInvalidFormat, http.StatusBadRequest, "Invalid format"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, "Bad request"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, "Resource not found"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, "Resource already exists"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, "Invalid token"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "Authentication required"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, "Access denied"},
	{apperrors.ErrUpstreamFailure, http.StatusBadGateway, "Upstream service failed"},
}

// StatusFor returns the HTTP status and client message for err.
func StatusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, apperrors.PublicMessage(err, m.message)
		}
	}
	return http.StatusInternalServerError, "Server error"
}

// HandleAPIError writes err as a {"message"} response. Unmapped errors are logged and become 500s.
func HandleAPIError(c *gin.Context, err error) {
	status, message := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}
	c.JSON(status, dto.NewErrorResponse(message))
}

// abortWithError is HandleAPIError for middleware that must stop the chain.
func abortWithError(c *gin.Context, err error) {
	status, message := StatusFor(err)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message))
}

// Recovery turns panics into a 500 {"message"} response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("Server error"))
	})
}
