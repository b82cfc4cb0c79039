package validation

import (
	"strings"
	"testing"

	"github.com/memberguard/block-registry/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func TestNew(t *testing.T) {
	v := New(1000, true)
	if v == nil {
		t.Fatal("New() returned nil")
	}
	if v.maxLength != 1000 {
		t.Errorf("maxLength = %d, want 1000", v.maxLength)
	}
	if !v.validationEnabled {
		t.Error("validationEnabled = false, want true")
	}
}

func TestValidator_ValidateUserID(t *testing.T) {
	v := New(0, false)

	if err := v.ValidateUserID(42); err != nil {
		t.Errorf("ValidateUserID(42) error = %v", err)
	}
	for _, id := range []int64{0, -1} {
		if err := v.ValidateUserID(id); err == nil {
			t.Errorf("ValidateUserID(%d) expected error", id)
		}
	}
}

func TestValidator_ValidateBlockRequest(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		req     models.BlockRequestDTO
		wantErr bool
		errMsg  string
	}{
		{
			name:    "timed block",
			enabled: true,
			req:     models.BlockRequestDTO{Length: 3, Unit: "minutes"},
		},
		{
			name:    "indefinite block without unit",
			enabled: true,
			req:     models.BlockRequestDTO{},
		},
		{
			name:    "singular unit",
			enabled: true,
			req:     models.BlockRequestDTO{Length: 1, Unit: "week"},
		},
		{
			name:    "unknown unit",
			enabled: true,
			req:     models.BlockRequestDTO{Length: 1, Unit: "fortnights"},
			wantErr: true,
			errMsg:  "invalid unit",
		},
		{
			name:    "negative length",
			enabled: true,
			req:     models.BlockRequestDTO{Length: -1, Unit: "days"},
			wantErr: true,
			errMsg:  "must not be negative",
		},
		{
			name:    "length above maximum",
			enabled: true,
			req:     models.BlockRequestDTO{Length: 1001, Unit: "days"},
			wantErr: true,
			errMsg:  "exceeds maximum",
		},
		{
			name:    "unblock ignores duration",
			enabled: true,
			req:     models.BlockRequestDTO{Block: boolPtr(false), Length: -5, Unit: "junk"},
		},
		{
			name:    "disabled validator accepts unknown unit",
			enabled: false,
			req:     models.BlockRequestDTO{Length: 1, Unit: "fortnights"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(1000, tt.enabled)
			err := v.ValidateBlockRequest(&tt.req)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateBlockRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestValidator_ValidateNotificationKey(t *testing.T) {
	v := New(0, true)

	if err := v.ValidateNotificationKey("notification_messages_new_message"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateNotificationKey("Bad Key!"); err == nil {
		t.Error("expected error for malformed key")
	}
	if err := v.ValidateNotificationKey(strings.Repeat("a", 101)); err == nil {
		t.Error("expected error for oversized key")
	}
	if err := New(0, false).ValidateNotificationKey("Bad Key!"); err != nil {
		t.Errorf("disabled validator returned %v", err)
	}
}
