// Package store is the PostgreSQL catalog source. It implements
// catalog.Source on a pgx pool.
package store

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/catalog"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

//go:embed migrations/001_init.sql
var initSQL string

type Store struct {
	pool *pgxpool.Pool
	tmpl model.Profile
}

var _ catalog.Source = (*Store)(nil)

// New uses the embedded demo profile as the template for users who have not
// saved one.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, tmpl: catalog.Default().Profile}
}

func (s *Store) WithProfileTemplate(p model.Profile) *Store {
	s.tmpl = p
	return s
}

// Migrate creates the tables if they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, initSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Seed inserts the dataset's rows, leaving rows that already exist alone.
func (s *Store) Seed(ctx context.Context, d *catalog.Dataset) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, a := range d.Appointments {
		_, err = tx.Exec(ctx,
			`INSERT INTO appointments (id,position,doctor,specialty,date,time,location,status)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8) ON CONFLICT (id) DO NOTHING`,
			a.ID, i, a.Doctor, a.Specialty, a.Date, a.Time, a.Location, a.Status,
		)
		if err != nil {
			return fmt.Errorf("seed appointment %s: %w", a.ID, err)
		}
	}
	for i, r := range d.Records {
		_, err = tx.Exec(ctx,
			`INSERT INTO medical_records (id,position,type,date,provider,description,notes,status)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8) ON CONFLICT (id) DO NOTHING`,
			r.ID, i, r.Type, r.Date, r.Provider, r.Description, r.Notes, r.Status,
		)
		if err != nil {
			return fmt.Errorf("seed record %s: %w", r.ID, err)
		}
	}
	for i, m := range d.Medications {
		_, err = tx.Exec(ctx,
			`INSERT INTO medications (id,position,name,dosage,frequency,time,start_date,end_date,instructions,status,refill_date)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) ON CONFLICT (id) DO NOTHING`,
			m.ID, i, m.Name, m.Dosage, m.Frequency, m.Time, m.StartDate, m.EndDate, m.Instructions, m.Status, m.RefillDate,
		)
		if err != nil {
			return fmt.Errorf("seed medication %s: %w", m.ID, err)
		}
	}
	for i, h := range d.Metrics {
		_, err = tx.Exec(ctx,
			`INSERT INTO health_metrics (id,position,name,value,status)
			 VALUES ($1,$2,$3,$4,$5) ON CONFLICT (id) DO NOTHING`,
			h.ID, i, h.Name, h.Value, h.Status,
		)
		if err != nil {
			return fmt.Errorf("seed metric %s: %w", h.ID, err)
		}
	}

	return tx.Commit(ctx)
}
