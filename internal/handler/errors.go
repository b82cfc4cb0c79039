// Package handler provides HTTP request handlers for the block registry API.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/memberguard/block-registry/internal/db"
	"github.com/memberguard/block-registry/internal/models"
	"github.com/memberguard/block-registry/internal/service"
	"github.com/memberguard/block-registry/internal/session"
	"github.com/memberguard/block-registry/pkg/logger"
)

// Error codes for rejected moderation requests.
const (
	CodeForbidden       = "forbidden"
	CodeSelfBlock       = "self_block"
	CodeProtectedUser   = "protected_user"
	CodeSessionsNotDone = "sessions_not_invalidated"
	CodeSessionNotFound = "session_not_found"
	CodeSessionsHosted  = "sessions_unmanaged"
)

func respond(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      c.Request.URL.Path,
		Code:      code,
	})
}

func badRequest(c *gin.Context, message string) {
	logger.L().Warn("Invalid request",
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)
	respond(c, http.StatusBadRequest, message, "")
}

// handleError maps service errors to HTTP responses.
func handleError(c *gin.Context, err error) {
	path := zap.String("path", c.Request.URL.Path)

	var validationErr *service.ValidationError
	if blocked, ok := service.IsBlockedError(err); ok {
		respond(c, http.StatusForbidden, blocked.Error(), blocked.Code())
		return
	}

	switch {
	case errors.As(err, &validationErr), errors.Is(err, service.ErrInvalidUserID):
		badRequest(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		respond(c, http.StatusForbidden, err.Error(), CodeForbidden)
	case errors.Is(err, service.ErrSelfBlock):
		respond(c, http.StatusForbidden, err.Error(), CodeSelfBlock)
	case errors.Is(err, service.ErrProtectedUser):
		respond(c, http.StatusForbidden, err.Error(), CodeProtectedUser)
	case errors.Is(err, session.ErrSessionNotFound):
		respond(c, http.StatusUnauthorized, "The session is unknown or has expired", CodeSessionNotFound)
	case errors.Is(err, service.ErrSessionsUnmanaged):
		respond(c, http.StatusBadRequest, err.Error(), CodeSessionsHosted)
	case errors.Is(err, service.ErrSessionInvalidation):
		logger.L().Error("Session invalidation error", zap.Error(err), path)
		respond(c, http.StatusInternalServerError,
			"The block was stored but the user's sessions could not be ended", CodeSessionsNotDone)
	case db.IsStoreUnavailable(err):
		logger.L().Error("Store unavailable", zap.Error(err), path)
		respond(c, http.StatusServiceUnavailable, "The block store is unavailable", "")
	default:
		logger.L().Error("Unexpected error", zap.Error(err), path)
		respond(c, http.StatusInternalServerError, "An unexpected error occurred", "")
	}
}
