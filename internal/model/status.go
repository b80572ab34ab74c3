package model

import "fmt"

type AppointmentStatus string

const (
	AppointmentUpcoming  AppointmentStatus = "upcoming"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

type RecordStatus string

const (
	RecordNew       RecordStatus = "new"
	RecordProcessed RecordStatus = "processed"
	RecordArchived  RecordStatus = "archived"
)

type MedicationStatus string

const (
	MedicationActive       MedicationStatus = "active"
	MedicationCompleted    MedicationStatus = "completed"
	MedicationDiscontinued MedicationStatus = "discontinued"
)

// StatusAll is the filter value that matches every status.
const StatusAll = "all"

var (
	AppointmentStatuses = []AppointmentStatus{AppointmentUpcoming, AppointmentCompleted, AppointmentCancelled}
	RecordStatuses      = []RecordStatus{RecordNew, RecordProcessed, RecordArchived}
	MedicationStatuses  = []MedicationStatus{MedicationActive, MedicationCompleted, MedicationDiscontinued}
)

func (s AppointmentStatus) Valid() bool { return contains(AppointmentStatuses, s) }
func (s RecordStatus) Valid() bool      { return contains(RecordStatuses, s) }
func (s MedicationStatus) Valid() bool  { return contains(MedicationStatuses, s) }

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Validate reports the first entry whose status is outside its enum.
// Seed files are checked with it before they are served.
func Validate(appts []Appointment, recs []MedicalRecord, meds []Medication) error {
	for _, a := range appts {
		if !a.Status.Valid() {
			return fmt.Errorf("appointment %s: unknown status %q", a.ID, a.Status)
		}
	}
	for _, r := range recs {
		if !r.Status.Valid() {
			return fmt.Errorf("record %s: unknown status %q", r.ID, r.Status)
		}
	}
	for _, m := range meds {
		if !m.Status.Valid() {
			return fmt.Errorf("medication %s: unknown status %q", m.ID, m.Status)
		}
	}
	return nil
}
