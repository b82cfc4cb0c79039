package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/memberguard/block-registry/internal/models"
	"github.com/memberguard/block-registry/internal/service"
)

// AuthHandler lets the host's authentication layer ask whether a verified
// principal may proceed.
type AuthHandler struct {
	guard *service.AuthGuard
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(guard *service.AuthGuard) *AuthHandler {
	return &AuthHandler{guard: guard}
}

// LoginCheck answers 403 when the user is blocked. Otherwise it answers 200
// with a new session token, or 204 when sessions live in the host.
func (h *AuthHandler) LoginCheck(c *gin.Context) {
	var req models.AuthCheckRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if req.UserID <= 0 {
		badRequest(c, "user_id must be a positive integer")
		return
	}

	token, err := h.guard.Login(c.Request.Context(), req.UserID)
	if err != nil {
		handleError(c, err)
		return
	}
	if token == "" {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, models.LoginCheckResponseDTO{UserID: req.UserID, Token: token})
}

// SessionCheck answers 204 when the session may continue. A blocked user's
// sessions are destroyed before the 403. Sessions are named by token, or by
// user id when the host manages them.
func (h *AuthHandler) SessionCheck(c *gin.Context) {
	var req models.SessionCheckRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	var err error
	switch {
	case req.Token != "":
		_, err = h.guard.CheckToken(ctx, req.Token)
	case req.UserID > 0:
		err = h.guard.CheckSession(ctx, req.UserID)
	default:
		badRequest(c, "token or a positive user_id is required")
		return
	}

	if err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
