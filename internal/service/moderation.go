package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/memberguard/block-registry/internal/models"
	"github.com/memberguard/block-registry/internal/policy"
	"github.com/memberguard/block-registry/internal/validation"
	"github.com/memberguard/block-registry/pkg/logger"
)

// Status messages shown to moderators.
const (
	StatusNotBlocked        = "This user is not currently blocked."
	StatusBlockedIndefinite = "This user is blocked indefinitely."
	statusBlockedUntil      = "This user is blocked until %s at %s."
)

const (
	statusDateLayout = "January 2, 2006"
	statusTimeLayout = "3:04 pm"
)

// Actor is the principal performing a moderation action.
type Actor struct {
	ID          int64
	CanModerate bool
}

// ModerationService applies moderator block and unblock requests.
type ModerationService struct {
	registry  Registry
	validator *validation.Validator
	protected map[int64]struct{}
	location  *time.Location
}

// NewModerationService creates a new ModerationService. Protected ids can
// never be blocked. Status times are rendered in loc, UTC when nil.
func NewModerationService(registry Registry, validator *validation.Validator, protectedIDs []int64, loc *time.Location) *ModerationService {
	if loc == nil {
		loc = time.UTC
	}
	protected := make(map[int64]struct{}, len(protectedIDs))
	for _, id := range protectedIDs {
		protected[id] = struct{}{}
	}
	return &ModerationService{
		registry:  registry,
		validator: validator,
		protected: protected,
		location:  loc,
	}
}

// Apply blocks or unblocks targetID on behalf of actor and returns the resulting status.
func (s *ModerationService) Apply(ctx context.Context, actor Actor, targetID int64, req models.BlockRequestDTO) (models.BlockStatus, error) {
	if !actor.CanModerate {
		return models.BlockStatus{}, ErrForbidden
	}

	if err := s.validator.ValidateUserID(targetID); err != nil {
		return models.BlockStatus{}, &ValidationError{Message: err.Error()}
	}

	if req.WantsBlock() {
		if err := s.block(ctx, actor, targetID, req); err != nil {
			return models.BlockStatus{}, err
		}
	} else {
		if _, err := s.registry.Unblock(ctx, targetID); err != nil {
			return models.BlockStatus{}, &ProcessingError{Message: "failed to unblock user", Cause: err}
		}
		logger.L().Info("User unblocked",
			logger.UserID(targetID),
			zap.Int64("actorId", actor.ID),
		)
	}

	return s.Status(ctx, targetID)
}

func (s *ModerationService) block(ctx context.Context, actor Actor, targetID int64, req models.BlockRequestDTO) error {
	if actor.ID == targetID {
		return ErrSelfBlock
	}
	if _, ok := s.protected[targetID]; ok {
		return ErrProtectedUser
	}
	if err := s.validator.ValidateBlockRequest(&req); err != nil {
		return &ValidationError{Message: err.Error()}
	}

	ok, err := s.registry.Block(ctx, targetID, req.Length, policy.ParseUnit(req.Unit))
	if err != nil {
		logger.L().Error("Failed to block user",
			zap.Error(err),
			logger.UserID(targetID),
			zap.Int64("actorId", actor.ID),
		)
		return &ProcessingError{Message: "failed to block user", Cause: err}
	}
	if !ok {
		return &ProcessingError{Message: "failed to block user", Cause: errors.New("block was not applied")}
	}

	logger.L().Info("User blocked",
		logger.UserID(targetID),
		zap.Int64("actorId", actor.ID),
		zap.Int("length", req.Length),
		zap.String("unit", string(policy.ParseUnit(req.Unit))),
	)
	return nil
}

// Status returns the target's block status with a moderator-facing message.
func (s *ModerationService) Status(ctx context.Context, targetID int64) (models.BlockStatus, error) {
	if err := s.validator.ValidateUserID(targetID); err != nil {
		return models.BlockStatus{}, &ValidationError{Message: err.Error()}
	}

	status, err := s.registry.Status(ctx, targetID)
	if err != nil {
		return models.BlockStatus{}, &ProcessingError{Message: "failed to read block status", Cause: err}
	}
	status.Message = s.statusMessage(status)
	return status, nil
}

// UnblockAll clears every block on behalf of actor.
func (s *ModerationService) UnblockAll(ctx context.Context, actor Actor) (int, error) {
	if !actor.CanModerate {
		return 0, ErrForbidden
	}

	count, err := s.registry.UnblockAll(ctx)
	if err != nil {
		return count, &ProcessingError{Message: fmt.Sprintf("failed after unblocking %d users", count), Cause: err}
	}

	logger.L().Info("Unblocked all users", zap.Int("count", count), zap.Int64("actorId", actor.ID))
	return count, nil
}

func (s *ModerationService) statusMessage(status models.BlockStatus) string {
	if !status.Blocked {
		return StatusNotBlocked
	}
	at, timed := status.ExpiresAt.Time()
	if !timed {
		return StatusBlockedIndefinite
	}
	local := at.In(s.location)
	return fmt.Sprintf(statusBlockedUntil, local.Format(statusDateLayout), local.Format(statusTimeLayout))
}
