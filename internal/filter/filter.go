// Package filter narrows the record lists shown by each view: a
// case-insensitive substring search over a few text fields, intersected
// with an optional status match. Every call recomputes from the full list.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

var ErrUnknownStatus = errors.New("unknown status")

// Query is the view-local filter state. An empty Status or model.StatusAll
// disables the status match; an empty Term matches everything.
type Query struct {
	Term   string
	Status string
}

func (q Query) anyStatus() bool {
	return q.Status == "" || q.Status == model.StatusAll
}

// Apply keeps the items where some field contains the term and, unless the
// query allows any status, whose status equals the query's. Order is kept.
func Apply[T any](items []T, q Query, fields func(T) []string, status func(T) string) []T {
	term := strings.ToLower(q.Term)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !q.anyStatus() && status(it) != q.Status {
			continue
		}
		if matches(fields(it), term) {
			out = append(out, it)
		}
	}
	return out
}

func matches(fields []string, term string) bool {
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func Appointments(items []model.Appointment, q Query) []model.Appointment {
	return Apply(items, q,
		func(a model.Appointment) []string { return []string{a.Doctor, a.Specialty, a.Location} },
		func(a model.Appointment) string { return string(a.Status) })
}

func Records(items []model.MedicalRecord, q Query) []model.MedicalRecord {
	return Apply(items, q,
		func(r model.MedicalRecord) []string { return []string{r.Type, r.Provider, r.Description} },
		func(r model.MedicalRecord) string { return string(r.Status) })
}

func Medications(items []model.Medication, q Query) []model.Medication {
	return Apply(items, q,
		func(m model.Medication) []string { return []string{m.Name, m.Dosage, m.Instructions} },
		func(m model.Medication) string { return string(m.Status) })
}

// Check validates the status of a query for one of the three lists.
// kind is "appointments", "records", or "medications".
func Check(kind string, q Query) error {
	if q.anyStatus() {
		return nil
	}
	var ok bool
	switch kind {
	case "appointments":
		ok = model.AppointmentStatus(q.Status).Valid()
	case "records":
		ok = model.RecordStatus(q.Status).Valid()
	case "medications":
		ok = model.MedicationStatus(q.Status).Valid()
	default:
		return fmt.Errorf("unknown list %q", kind)
	}
	if !ok {
		return fmt.Errorf("%w %q for %s", ErrUnknownStatus, q.Status, kind)
	}
	return nil
}
