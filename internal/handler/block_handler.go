package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/memberguard/block-registry/internal/middleware"
	"github.com/memberguard/block-registry/internal/models"
	"github.com/memberguard/block-registry/internal/service"
)

// BlockedLister lists currently blocked users.
type BlockedLister interface {
	ListBlockedUserIDs(ctx context.Context) ([]int64, error)
}

// BlockHandler serves the moderation endpoints.
type BlockHandler struct {
	moderation *service.ModerationService
	lister     BlockedLister
}

// NewBlockHandler creates a new BlockHandler instance.
func NewBlockHandler(moderation *service.ModerationService, lister BlockedLister) *BlockHandler {
	return &BlockHandler{moderation: moderation, lister: lister}
}

// GetStatus returns the block status of a user.
func (h *BlockHandler) GetStatus(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	status, err := h.moderation.Status(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Block blocks a user, or unblocks when the body sets "block": false.
// An empty body blocks indefinitely.
func (h *BlockHandler) Block(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var req models.BlockRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	h.apply(c, userID, req)
}

// Unblock clears a user's block.
func (h *BlockHandler) Unblock(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	unblock := false
	h.apply(c, userID, models.BlockRequestDTO{Block: &unblock})
}

func (h *BlockHandler) apply(c *gin.Context, userID int64, req models.BlockRequestDTO) {
	status, err := h.moderation.Apply(c.Request.Context(), middleware.ActorFrom(c), userID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ListBlocked returns the ids of every currently blocked user.
func (h *BlockHandler) ListBlocked(c *gin.Context) {
	ids, err := h.lister.ListBlockedUserIDs(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	c.JSON(http.StatusOK, models.BlockedUsersResponseDTO{UserIDs: ids, Count: len(ids)})
}

// UnblockAll clears every block.
func (h *BlockHandler) UnblockAll(c *gin.Context) {
	count, err := h.moderation.UnblockAll(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.UnblockAllResponseDTO{Unblocked: count})
}

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "user id must be a positive integer")
		return 0, false
	}
	return id, true
}
