// Package policy converts moderator-supplied block lengths into expiration
// instants and decides whether a stored expiration has passed.
package policy

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/memberguard/block-registry/internal/models"
)

// Unit is the unit of a block length.
type Unit string

// Recognised units.
const (
	UnitMinutes      Unit = "minutes"
	UnitHours        Unit = "hours"
	UnitDays         Unit = "days"
	UnitWeeks        Unit = "weeks"
	UnitMonths       Unit = "months"
	UnitIndefinitely Unit = "indefinitely"
)

// Month is a fixed 30 days, not a calendar month.
const Month = 30 * 24 * time.Hour

// StoredLayout is the textual layout expirations are persisted in, always UTC.
const StoredLayout = "2006-01-02 15:04:05"

// legacyNever is the far-future date older deployments wrote for indefinite blocks.
const legacyNever = "3000-01-01 00:00:00"

var unitDurations = map[Unit]time.Duration{
	UnitMinutes: time.Minute,
	UnitHours:   time.Hour,
	UnitDays:    24 * time.Hour,
	UnitWeeks:   7 * 24 * time.Hour,
	UnitMonths:  Month,
}

var unitAliases = map[string]Unit{
	"minute":      UnitMinutes,
	"hour":        UnitHours,
	"day":         UnitDays,
	"week":        UnitWeeks,
	"month":       UnitMonths,
	"indefinite":  UnitIndefinitely,
	"indefintely": UnitIndefinitely,
}

// ParseUnit normalises s into a Unit. Unrecognised input becomes UnitIndefinitely.
func ParseUnit(s string) Unit {
	s = strings.ToLower(strings.TrimSpace(s))
	u := Unit(s)
	if _, ok := unitDurations[u]; ok || u == UnitIndefinitely {
		return u
	}
	if alias, ok := unitAliases[s]; ok {
		return alias
	}
	return UnitIndefinitely
}

// Duration returns the length of one unit. UnitIndefinitely and unknown units
// report false.
func (u Unit) Duration() (time.Duration, bool) {
	d, ok := unitDurations[u]
	return d, ok
}

// ComputeExpiration returns now + length*unit, or Never when the unit is
// indefinite or length is not positive. A length too long for a time.Duration
// (roughly 292 years) is also Never.
func ComputeExpiration(length int, unit Unit, now time.Time) models.Expiration {
	d, ok := unit.Duration()
	if !ok || length <= 0 {
		return models.Never()
	}
	if int64(length) > math.MaxInt64/int64(d) {
		return models.Never()
	}
	return models.At(now.Add(time.Duration(length) * d))
}

// IsExpired reports whether exp has passed at now. Never is never expired.
func IsExpired(exp models.Expiration, now time.Time) bool {
	return IsExpiredWithBuffer(exp, now, 0)
}

// IsExpiredWithBuffer is IsExpired evaluated against now - buffer. Batch
// queries use it; single-record checks use IsExpired.
func IsExpiredWithBuffer(exp models.Expiration, now time.Time, buffer time.Duration) bool {
	at, timed := exp.Time()
	if !timed {
		return false
	}
	return !at.After(now.Add(-buffer))
}

// FormatStoredExpiration renders exp in the persisted text layout. Never is "".
func FormatStoredExpiration(exp models.Expiration) string {
	at, timed := exp.Time()
	if !timed {
		return ""
	}
	return at.UTC().Format(StoredLayout)
}

// ParseStoredExpiration decodes a persisted expiration. "", "0" and the legacy
// year-3000 sentinel decode to Never; RFC 3339 is accepted as well as StoredLayout.
func ParseStoredExpiration(s string) (models.Expiration, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "0", legacyNever:
		return models.Never(), nil
	}

	if t, err := time.ParseInLocation(StoredLayout, s, time.UTC); err == nil {
		return models.At(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return models.At(t), nil
	}
	return models.Never(), fmt.Errorf("invalid stored expiration %q", s)
}

// IsKnownUnit reports whether s names a unit without falling back to indefinitely.
func IsKnownUnit(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := unitDurations[Unit(s)]; ok || Unit(s) == UnitIndefinitely {
		return true
	}
	_, ok := unitAliases[s]
	return ok
}
