package dispensing

import "time"

// Severity is a coarse classification of a batch by days until expiry
type Severity string

const (
	SeverityExpired Severity = "expired"
	SeverityUrgent  Severity = "urgent"
	SeveritySoon    Severity = "soon"
	SeverityOK      Severity = "ok"
)

// String returns the string representation
func (s Severity) String() string {
	return string(s)
}

// Thresholds is the single expiry policy shared by the dispensing screen and
// the expiry-monitoring report. The per-screen magic numbers of earlier
// iterations (14/15-day critical, flat 30-day near, 90-day horizon) collapse
// into this one configurable object.
type Thresholds struct {
	CriticalDays int // urgent at or below this many days left
	NearDays     int // soon at or below this many days left
	HorizonDays  int // monitoring report cutoff; never gates dispensing
}

// DefaultThresholds returns the policy used when none is configured
func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalDays: 15,
		NearDays:     30,
		HorizonDays:  90,
	}
}

// DaysLeft returns the whole calendar days from today until expiry. Both
// operands are reduced to calendar dates first, so fractional-day drift within
// the same day never changes the result. Negative means already expired.
func DaysLeft(today, expiry time.Time) int {
	ty, tm, td := today.Date()
	ey, em, ed := expiry.Date()
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(e.Sub(t).Hours() / 24)
}

// Classify maps days-left to a severity tier
func (t Thresholds) Classify(daysLeft int) Severity {
	switch {
	case daysLeft < 0:
		return SeverityExpired
	case daysLeft <= t.CriticalDays:
		return SeverityUrgent
	case daysLeft <= t.NearDays:
		return SeveritySoon
	default:
		return SeverityOK
	}
}

// WithinHorizon reports whether a row belongs in expiry-monitoring result
// sets. Dispensing selection ignores the horizon; only expired status gates
// action there.
func (t Thresholds) WithinHorizon(daysLeft int) bool {
	return daysLeft <= t.HorizonDays
}
