package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Expiration is the instant a block stops applying, or Never.
// The zero value is Never.
type Expiration struct {
	at    time.Time
	timed bool
}

// Never returns an expiration that never passes.
func Never() Expiration {
	return Expiration{}
}

// At returns an expiration at t, normalised to UTC with second precision.
func At(t time.Time) Expiration {
	return Expiration{at: t.UTC().Truncate(time.Second), timed: true}
}

// IsNever reports whether the expiration never passes.
func (e Expiration) IsNever() bool {
	return !e.timed
}

// Time returns the expiration instant and true, or the zero time and false for Never.
func (e Expiration) Time() (time.Time, bool) {
	return e.at, e.timed
}

// Equal reports whether both expirations denote the same instant.
func (e Expiration) Equal(other Expiration) bool {
	if e.timed != other.timed {
		return false
	}
	return !e.timed || e.at.Equal(other.at)
}

func (e Expiration) String() string {
	if !e.timed {
		return "never"
	}
	return e.at.Format(time.RFC3339)
}

// MarshalJSON encodes Never as null and a timed expiration as RFC 3339.
func (e Expiration) MarshalJSON() ([]byte, error) {
	if !e.timed {
		return []byte("null"), nil
	}
	return json.Marshal(e.at.Format(time.RFC3339))
}

// UnmarshalJSON accepts null or an RFC 3339 string.
func (e *Expiration) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*e = Never()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expiration must be null or a string: %w", err)
	}
	if s == "" {
		*e = Never()
		return nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid expiration %q: %w", s, err)
	}
	*e = At(t)
	return nil
}
