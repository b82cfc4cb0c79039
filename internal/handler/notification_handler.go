package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/memberguard/block-registry/internal/models"
	"github.com/memberguard/block-registry/internal/service"
	"github.com/memberguard/block-registry/internal/validation"
)

// NotificationHandler decides whether a notification may reach its recipient.
type NotificationHandler struct {
	guard     *service.NotificationGuard
	validator *validation.Validator
}

// NewNotificationHandler creates a new NotificationHandler instance.
func NewNotificationHandler(guard *service.NotificationGuard, validator *validation.Validator) *NotificationHandler {
	return &NotificationHandler{guard: guard, validator: validator}
}

// Check returns the dispatch decision for a recipient and notification key.
func (h *NotificationHandler) Check(c *gin.Context) {
	var req models.NotificationCheckRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if err := h.validator.ValidateNotificationKey(req.Key); err != nil {
		badRequest(c, err.Error())
		return
	}

	allowed, err := h.guard.AllowDispatch(c.Request.Context(), req.UserID, req.Key)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NotificationCheckResponseDTO{
		UserID:  req.UserID,
		Key:     req.Key,
		Allowed: allowed,
	})
}
