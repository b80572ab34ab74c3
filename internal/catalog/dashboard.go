package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

// DashboardUpcoming is how many upcoming appointments the dashboard lists.
const DashboardUpcoming = 2

// DashboardRecent is how many medical records the dashboard lists.
const DashboardRecent = 3

type MedicationSummary struct {
	Active     int `json:"active"`
	Completed  int `json:"completed"`
	RefillsDue int `json:"refills_due"`
}

func SummarizeMedications(meds []model.Medication, now time.Time) MedicationSummary {
	var s MedicationSummary
	for _, m := range meds {
		switch m.Status {
		case model.MedicationActive:
			s.Active++
			if m.RefillDueSoon(now) {
				s.RefillsDue++
			}
		case model.MedicationCompleted:
			s.Completed++
		}
	}
	return s
}

// Upcoming returns the appointments with status upcoming, earliest first.
// limit <= 0 returns all of them.
func Upcoming(appts []model.Appointment, limit int) []model.Appointment {
	var out []model.Appointment
	for _, a := range appts {
		if a.Status == model.AppointmentUpcoming {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func Active(meds []model.Medication) []model.Medication {
	var out []model.Medication
	for _, m := range meds {
		if m.Status == model.MedicationActive {
			out = append(out, m)
		}
	}
	return out
}

// RecentRecords returns records newest first. limit <= 0 returns all of them.
func RecentRecords(recs []model.MedicalRecord, limit int) []model.MedicalRecord {
	out := append([]model.MedicalRecord(nil), recs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type Dashboard struct {
	User        model.User            `json:"user"`
	Today       time.Time             `json:"today"`
	Upcoming    []model.Appointment   `json:"upcoming"`
	Medications []model.Medication    `json:"medications"`
	Metrics     []model.HealthMetric  `json:"metrics"`
	Recent      []model.MedicalRecord `json:"recent"`
	Summary     MedicationSummary     `json:"summary"`
}

func BuildDashboard(ctx context.Context, src Source, u model.User, now time.Time) (Dashboard, error) {
	appts, err := src.Appointments(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard appointments: %w", err)
	}
	meds, err := src.Medications(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard medications: %w", err)
	}
	metrics, err := src.Metrics(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard metrics: %w", err)
	}
	recs, err := src.Records(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard records: %w", err)
	}
	return Dashboard{
		User:        u,
		Today:       now,
		Upcoming:    Upcoming(appts, DashboardUpcoming),
		Medications: Active(meds),
		Metrics:     metrics,
		Recent:      RecentRecords(recs, DashboardRecent),
		Summary:     SummarizeMedications(meds, now),
	}, nil
}
