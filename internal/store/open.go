package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/catalog"
)

// Connect opens a pool, checks it, creates missing tables and seeds d.
func Connect(ctx context.Context, dsn string, d *catalog.Dataset) (*Store, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}
	st := New(pool).WithProfileTemplate(d.Profile)
	if err := st.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := st.Seed(ctx, d); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("seed: %w", err)
	}
	return st, pool.Close, nil
}

// OpenSource picks the catalog source: PostgreSQL when dsn is set, the
// in-memory dataset otherwise. seedFile replaces the embedded dataset.
func OpenSource(ctx context.Context, dsn, seedFile string, log *slog.Logger) (catalog.Source, func(), error) {
	d := catalog.Default()
	if seedFile != "" {
		var err error
		if d, err = catalog.LoadFile(seedFile); err != nil {
			return nil, nil, fmt.Errorf("seed file: %w", err)
		}
	}
	if dsn == "" {
		log.Info("using in-memory catalog", "appointments", len(d.Appointments), "records", len(d.Records))
		return catalog.NewStatic(d), func() {}, nil
	}
	st, closeFn, err := Connect(ctx, dsn, d)
	if err != nil {
		return nil, nil, err
	}
	log.Info("connected to postgres")
	return st, closeFn, nil
}
