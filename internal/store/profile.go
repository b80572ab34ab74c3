package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/catalog"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

func (s *Store) Profile(ctx context.Context, u model.User) (model.Profile, error) {
	if u.ID == "" {
		return model.Profile{}, fmt.Errorf("profile: %w: empty user id", catalog.ErrNotFound)
	}
	p := model.Profile{UserID: u.ID}
	err := s.pool.QueryRow(ctx,
		`SELECT personal, medical FROM profiles WHERE user_id = $1`, u.ID,
	).Scan(&p.Personal, &p.Medical)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.PersonalizeProfile(s.tmpl, u), nil
	}
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

func (s *Store) SaveProfile(ctx context.Context, u model.User, p model.Profile) error {
	if u.ID == "" {
		return fmt.Errorf("profile: %w: empty user id", catalog.ErrNotFound)
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (user_id, personal, medical) VALUES ($1,$2,$3)
		 ON CONFLICT (user_id) DO UPDATE
		 SET personal = EXCLUDED.personal, medical = EXCLUDED.medical, updated_at = NOW()`,
		u.ID, p.Personal, p.Medical,
	)
	return err
}
