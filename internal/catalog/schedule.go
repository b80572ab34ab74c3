package catalog

import (
	"strings"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

// Time-of-day slots for the daily schedule, in display order.
const (
	Morning   = "Morning"
	Afternoon = "Afternoon"
	Evening   = "Evening"
)

var ScheduleSlots = []string{Morning, Afternoon, Evening}

// Schedule groups active medications by the slots named in their Time
// field. A medication taken "Morning and Evening" appears in both. Every
// slot has a key, empty when nothing is due.
func Schedule(meds []model.Medication) map[string][]model.Medication {
	out := make(map[string][]model.Medication, len(ScheduleSlots))
	for _, slot := range ScheduleSlots {
		out[slot] = []model.Medication{}
	}
	for _, m := range Active(meds) {
		for _, slot := range ScheduleSlots {
			if strings.Contains(m.Time, slot) {
				out[slot] = append(out[slot], m)
			}
		}
	}
	return out
}
