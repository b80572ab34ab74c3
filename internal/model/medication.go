package model

import (
	"math"
	"time"
)

const DateLayout = "2006-01-02"

// RefillDueSoon reports whether the refill date falls 1 to 7 days after now,
// counting partial days as whole ones. Missing or malformed dates are never due.
func (m Medication) RefillDueSoon(now time.Time) bool {
	if m.RefillDate == "" {
		return false
	}
	refill, err := time.Parse(DateLayout, m.RefillDate)
	if err != nil {
		return false
	}
	days := math.Ceil(refill.Sub(now).Hours() / 24)
	return days > 0 && days <= 7
}
