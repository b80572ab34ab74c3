package store

import (
	"context"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

func (s *Store) Appointments(ctx context.Context) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, doctor, specialty, date, time, location, status
		 FROM appointments
		 ORDER BY position, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(
			&a.ID, &a.Doctor, &a.Specialty, &a.Date, &a.Time, &a.Location, &a.Status,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AppointmentsBetween returns appointments dated in [from, to], both
// YYYY-MM-DD. The calendar asks for one month at a time.
func (s *Store) AppointmentsBetween(ctx context.Context, from, to string) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, doctor, specialty, date, time, location, status
		 FROM appointments
		 WHERE date >= $1 AND date <= $2
		 ORDER BY date, position`, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(
			&a.ID, &a.Doctor, &a.Specialty, &a.Date, &a.Time, &a.Location, &a.Status,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Records(ctx context.Context) ([]model.MedicalRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, type, date, provider, description, notes, status
		 FROM medical_records
		 ORDER BY position, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MedicalRecord
	for rows.Next() {
		var r model.MedicalRecord
		if err := rows.Scan(
			&r.ID, &r.Type, &r.Date, &r.Provider, &r.Description, &r.Notes, &r.Status,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Medications(ctx context.Context) ([]model.Medication, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, dosage, frequency, time, start_date, end_date,
		        instructions, status, refill_date
		 FROM medications
		 ORDER BY position, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Medication
	for rows.Next() {
		var m model.Medication
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Dosage, &m.Frequency, &m.Time, &m.StartDate, &m.EndDate,
			&m.Instructions, &m.Status, &m.RefillDate,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) Metrics(ctx context.Context) ([]model.HealthMetric, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, value, status FROM health_metrics ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.HealthMetric
	for rows.Next() {
		var h model.HealthMetric
		if err := rows.Scan(&h.ID, &h.Name, &h.Value, &h.Status); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
