package booking

import (
	"time"

	"github.com/laraibshahid/carrental/pkg/domain"
)

// Period is a half-open rental interval [Start, End) in absolute time.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewPeriod validates the interval ordering and returns the Period in UTC.
func NewPeriod(start, end time.Time) (Period, error) {
	if !start.Before(end) {
		return Period{}, domain.NewValidationError("end must be after start")
	}
	return Period{Start: start.UTC(), End: end.UTC()}, nil
}

// Overlaps reports whether two half-open intervals intersect:
// a.Start < b.End AND b.Start < a.End. Back-to-back periods sharing a
// boundary instant do not overlap.
func (p Period) Overlaps(other Period) bool {
	return p.Start.Before(other.End) && other.Start.Before(p.End)
}

// Duration returns the length of the interval.
func (p Period) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

// Days returns the rental length in fractional days, the unit the daily rate
// is charged in.
func (p Period) Days() float64 {
	return p.Duration().Hours() / 24
}

// Contains reports whether t falls inside the half-open interval.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}
