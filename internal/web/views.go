package web

import (
	"net/http"
	"strings"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/calendar"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/catalog"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/filter"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/middleware"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/route"
)

// query reads ?search= and ?status= and checks the status against kind.
func query(r *http.Request, kind string) (filter.Query, error) {
	q := filter.Query{
		Term:   strings.TrimSpace(r.URL.Query().Get("search")),
		Status: r.URL.Query().Get("status"),
	}
	if q.Status == "" {
		q.Status = model.StatusAll
	}
	return q, filter.Check(kind, q)
}

func strs[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())
	d, err := catalog.BuildDashboard(r.Context(), s.src, u, s.now())
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", d)
}

func (s *Server) records(w http.ResponseWriter, r *http.Request) {
	q, err := query(r, "records")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	all, err := s.src.Records(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.render(w, r, http.StatusOK, "records.html", map[string]any{
		"Query":    q,
		"Statuses": strs(model.RecordStatuses),
		"Records":  filter.Records(all, q),
		"Total":    len(all),
	})
}

func (s *Server) appointments(w http.ResponseWriter, r *http.Request) {
	q, err := query(r, "appointments")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	showCalendar := r.URL.Query().Get("view") != "list"
	month, err := calendar.Parse(r.URL.Query().Get("year"), r.URL.Query().Get("month"), calendar.FromTime(s.now()))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	all, err := s.src.Appointments(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	data := map[string]any{
		"Query":        q,
		"Statuses":     strs(model.AppointmentStatuses),
		"ShowCalendar": showCalendar,
		"Appointments": filter.Appointments(all, q),
	}
	if showCalendar {
		data["Calendar"] = calendar.NewView(month, all)
	}
	s.render(w, r, http.StatusOK, "appointments.html", data)
}

func (s *Server) medications(w http.ResponseWriter, r *http.Request) {
	q, err := query(r, "medications")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	all, err := s.src.Medications(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.render(w, r, http.StatusOK, "medications.html", map[string]any{
		"Query":       q,
		"Statuses":    strs(model.MedicationStatuses),
		"Medications": filter.Medications(all, q),
		"Summary":     catalog.SummarizeMedications(all, s.now()),
		"Slots":       catalog.ScheduleSlots,
		"Schedule":    catalog.Schedule(all),
	})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())
	p, err := s.src.Profile(r.Context(), u)
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.render(w, r, http.StatusOK, "profile.html", map[string]any{
		"Profile": p,
		"Saved":   r.URL.Query().Get("saved") == "1",
	})
}

func (s *Server) saveProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badRequest(w, "form error")
		return
	}
	u, _ := middleware.UserFromContext(r.Context())
	f := r.PostFormValue
	p := model.Profile{
		UserID: u.ID,
		Personal: model.PersonalInfo{
			Name:             strings.TrimSpace(f("name")),
			Email:            strings.TrimSpace(f("email")),
			Phone:            strings.TrimSpace(f("phone")),
			DateOfBirth:      f("date_of_birth"),
			Address:          strings.TrimSpace(f("address")),
			EmergencyContact: strings.TrimSpace(f("emergency_contact")),
		},
		Medical: model.MedicalInfo{
			BloodType:    strings.TrimSpace(f("blood_type")),
			Allergies:    strings.TrimSpace(f("allergies")),
			Conditions:   strings.TrimSpace(f("conditions")),
			PrimaryCare:  strings.TrimSpace(f("primary_care")),
			LastPhysical: f("last_physical"),
			Insurance:    strings.TrimSpace(f("insurance")),
		},
	}
	if err := s.src.SaveProfile(r.Context(), u, p); err != nil {
		s.internalError(w, err)
		return
	}
	http.Redirect(w, r, route.Profile+"?saved=1", http.StatusSeeOther)
}
