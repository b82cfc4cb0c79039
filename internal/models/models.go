// Package models contains the data models and DTOs for the member block registry.
package models

import (
	"time"
)

// BlockKind classifies a block for user-facing messages.
type BlockKind string

// BlockKind constants define the possible block classifications.
const (
	BlockKindNone       BlockKind = "none"
	BlockKindIndefinite BlockKind = "indefinite"
	BlockKindTemporary  BlockKind = "temporary"
)

// BlockRecord is the stored block state of a single account.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type BlockRecord struct {
	UserID    int64      `json:"user_id"`
	Blocked   bool       `json:"blocked"`
	ExpiresAt Expiration `json:"expires_at"`
}

// IsZero reports whether the record carries no block data.
func (r BlockRecord) IsZero() bool {
	return !r.Blocked && r.ExpiresAt.IsNever()
}

// Kind returns the classification of the stored block, ignoring expiry.
func (r BlockRecord) Kind() BlockKind {
	switch {
	case !r.Blocked:
		return BlockKindNone
	case r.ExpiresAt.IsNever():
		return BlockKindIndefinite
	default:
		return BlockKindTemporary
	}
}

// BlockStatus is the moderation view of a user's block.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type BlockStatus struct {
	UserID    int64      `json:"user_id"`
	Blocked   bool       `json:"blocked"`
	Kind      BlockKind  `json:"kind"`
	ExpiresAt Expiration `json:"expires_at"`
	Message   string     `json:"message"`
}

// BlockRequestDTO is the moderation request to block or unblock a user.
// A nil Block means "block".
type BlockRequestDTO struct {
	Block  *bool  `json:"block,omitempty"`
	Length int    `json:"length"`
	Unit   string `json:"unit"`
}

// WantsBlock reports whether the request asks for a block.
func (r BlockRequestDTO) WantsBlock() bool {
	return r.Block == nil || *r.Block
}

// BlockedUsersResponseDTO lists the currently blocked user ids.
type BlockedUsersResponseDTO struct {
	UserIDs []int64 `json:"user_ids"`
	Count   int     `json:"count"`
}

// UnblockAllResponseDTO reports a bulk unblock.
type UnblockAllResponseDTO struct {
	Unblocked int `json:"unblocked"`
}

// AuthCheckRequestDTO asks whether a verified principal may proceed.
type AuthCheckRequestDTO struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// LoginCheckResponseDTO carries the session opened for an allowed login.
type LoginCheckResponseDTO struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}

// SessionCheckRequestDTO names the session to check, by token when this
// service issued it or by user id when sessions live in the host.
type SessionCheckRequestDTO struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}

// NotificationCheckRequestDTO asks whether a notification may be dispatched.
type NotificationCheckRequestDTO struct {
	UserID int64  `json:"user_id"`
	Key    string `json:"key" binding:"required,max=100"`
}

// NotificationCheckResponseDTO is the dispatch decision.
type NotificationCheckResponseDTO struct {
	UserID  int64  `json:"user_id"`
	Key     string `json:"key"`
	Allowed bool   `json:"allowed"`
}

// ErrorResponse represents an error response.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Code      string    `json:"code,omitempty"`
}
