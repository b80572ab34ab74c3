// Package catalog supplies the read-mostly health data the views render:
// appointments, records, medications, metrics, and per-user profiles.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

var ErrNotFound = errors.New("not found")

// Source is where views get their data. Lists are returned in display order
// and callers may modify the returned slices.
type Source interface {
	Appointments(ctx context.Context) ([]model.Appointment, error)
	Records(ctx context.Context) ([]model.MedicalRecord, error)
	Medications(ctx context.Context) ([]model.Medication, error)
	Metrics(ctx context.Context) ([]model.HealthMetric, error)
	// Profile never fails with ErrNotFound for a valid user: a user without
	// a saved profile gets the template with their own name and email.
	Profile(ctx context.Context, u model.User) (model.Profile, error)
	SaveProfile(ctx context.Context, u model.User, p model.Profile) error
}

//go:embed seed.yaml
var seedYAML []byte

type Dataset struct {
	Appointments []model.Appointment   `yaml:"appointments"`
	Records      []model.MedicalRecord `yaml:"records"`
	Medications  []model.Medication    `yaml:"medications"`
	Metrics      []model.HealthMetric  `yaml:"metrics"`
	Profile      model.Profile         `yaml:"profile"`
}

func Parse(b []byte) (*Dataset, error) {
	var d Dataset
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if err := model.Validate(d.Appointments, d.Records, d.Medications); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return &d, nil
}

func LoadFile(path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

var defaultDataset = sync.OnceValue(func() *Dataset {
	d, err := Parse(seedYAML)
	if err != nil {
		panic(err)
	}
	return d
})

// Default returns a fresh copy of the embedded demo dataset.
func Default() *Dataset {
	d := *defaultDataset()
	d.Appointments = slices.Clone(d.Appointments)
	d.Records = slices.Clone(d.Records)
	d.Medications = slices.Clone(d.Medications)
	d.Metrics = slices.Clone(d.Metrics)
	return &d
}

// PersonalizeProfile fills the template profile with the session user's
// name and email, keeping the template values for anything the user lacks.
func PersonalizeProfile(tmpl model.Profile, u model.User) model.Profile {
	p := tmpl
	p.UserID = u.ID
	if u.Name != "" {
		p.Personal.Name = u.Name
	}
	if u.Email != "" {
		p.Personal.Email = u.Email
	}
	return p
}

func checkUser(u model.User) error {
	if u.ID == "" {
		return fmt.Errorf("profile: %w: empty user id", ErrNotFound)
	}
	return nil
}
