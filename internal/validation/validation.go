// Package validation checks moderation and guard requests before they reach the registry.
package validation

import (
	"fmt"
	"regexp"

	"github.com/memberguard/block-registry/internal/models"
	"github.com/memberguard/block-registry/internal/policy"
)

var notificationKeyRegex = regexp.MustCompile(`^[a-z0-9_]{1,100}$`)

// Validator rejects malformed requests. When disabled only user ids are checked,
// and unknown units fall through to the indefinite policy.
type Validator struct {
	maxLength         int
	validationEnabled bool
}

// New creates a Validator. maxLength caps the numeric block length.
func New(maxLength int, enabled bool) *Validator {
	return &Validator{
		maxLength:         maxLength,
		validationEnabled: enabled,
	}
}

// ValidateUserID rejects ids that cannot name an account.
func (v *Validator) ValidateUserID(userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id: %d", userID)
	}
	return nil
}

// ValidateBlockRequest checks the length and unit of a block request.
// Unblock requests carry no duration and always pass.
func (v *Validator) ValidateBlockRequest(req *models.BlockRequestDTO) error {
	if !v.validationEnabled || !req.WantsBlock() {
		return nil
	}

	if req.Unit != "" && !policy.IsKnownUnit(req.Unit) {
		return fmt.Errorf("invalid unit: %s", req.Unit)
	}

	if req.Length < 0 {
		return fmt.Errorf("length must not be negative")
	}

	if v.maxLength > 0 && req.Length > v.maxLength {
		return fmt.Errorf("length exceeds maximum of %d", v.maxLength)
	}

	return nil
}

// ValidateNotificationKey checks the shape of a notification key.
func (v *Validator) ValidateNotificationKey(key string) error {
	if !v.validationEnabled {
		return nil
	}
	if !notificationKeyRegex.MatchString(key) {
		return fmt.Errorf("invalid notification key format: %s", key)
	}
	return nil
}
