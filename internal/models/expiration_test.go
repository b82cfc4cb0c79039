package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestExpiration_JSON(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name string
		exp  Expiration
		want string
	}{
		{"never is null", Never(), `null`},
		{"timed is rfc3339", At(at), `"2024-01-02T03:04:05Z"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.exp)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %s, want %s", data, tt.want)
			}

			var back Expiration
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !back.Equal(tt.exp) {
				t.Errorf("Unmarshal() = %v, want %v", back, tt.exp)
			}
		})
	}
}

func TestExpiration_UnmarshalInvalid(t *testing.T) {
	var e Expiration
	if err := json.Unmarshal([]byte(`"yesterday"`), &e); err == nil {
		t.Error("expected error for invalid timestamp")
	}
	if err := json.Unmarshal([]byte(`42`), &e); err == nil {
		t.Error("expected error for non-string value")
	}
}

func TestExpiration_ZeroValueIsNever(t *testing.T) {
	var e Expiration
	if !e.IsNever() {
		t.Error("zero Expiration must be Never")
	}
	if _, ok := e.Time(); ok {
		t.Error("Never must not report a time")
	}
}

func TestBlockRecord_Kind(t *testing.T) {
	tests := []struct {
		name   string
		record BlockRecord
		want   BlockKind
	}{
		{"not blocked", BlockRecord{UserID: 1}, BlockKindNone},
		{"indefinite", BlockRecord{UserID: 1, Blocked: true, ExpiresAt: Never()}, BlockKindIndefinite},
		{"temporary", BlockRecord{UserID: 1, Blocked: true, ExpiresAt: At(time.Now())}, BlockKindTemporary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}
