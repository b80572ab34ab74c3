package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

// Static serves a Dataset from memory. The lists never change; saved
// profiles live until the process exits.
type Static struct {
	data *Dataset

	mu       sync.RWMutex
	profiles map[string]model.Profile
}

func NewStatic(d *Dataset) *Static {
	if d == nil {
		d = Default()
	}
	return &Static{data: d, profiles: make(map[string]model.Profile)}
}

func (s *Static) Appointments(context.Context) ([]model.Appointment, error) {
	return slices.Clone(s.data.Appointments), nil
}

func (s *Static) Records(context.Context) ([]model.MedicalRecord, error) {
	return slices.Clone(s.data.Records), nil
}

func (s *Static) Medications(context.Context) ([]model.Medication, error) {
	return slices.Clone(s.data.Medications), nil
}

func (s *Static) Metrics(context.Context) ([]model.HealthMetric, error) {
	return slices.Clone(s.data.Metrics), nil
}

func (s *Static) Profile(_ context.Context, u model.User) (model.Profile, error) {
	if err := checkUser(u); err != nil {
		return model.Profile{}, err
	}
	s.mu.RLock()
	p, ok := s.profiles[u.ID]
	s.mu.RUnlock()
	if ok {
		return p, nil
	}
	return PersonalizeProfile(s.data.Profile, u), nil
}

func (s *Static) SaveProfile(_ context.Context, u model.User, p model.Profile) error {
	if err := checkUser(u); err != nil {
		return err
	}
	p.UserID = u.ID
	s.mu.Lock()
	s.profiles[u.ID] = p
	s.mu.Unlock()
	return nil
}
