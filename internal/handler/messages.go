package handler

import (
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

// JSON shapes carried inside the Struct messages.

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// ListRequest filters a list; both fields are optional.
type ListRequest struct {
	Search string `json:"search,omitempty"`
	Status string `json:"status,omitempty"`
}

type AppointmentList struct {
	Appointments []model.Appointment `json:"appointments"`
}

type RecordList struct {
	Records []model.MedicalRecord `json:"records"`
}

type MedicationList struct {
	Medications []model.Medication `json:"medications"`
}

// CalendarRequest picks a month; Month is zero-based. Missing fields
// default to the current month.
type CalendarRequest struct {
	Year  *int `json:"year,omitempty"`
	Month *int `json:"month,omitempty"`
}
