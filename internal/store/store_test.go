package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/catalog"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/store"
)

func setup(t *testing.T) *store.Store {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(pool.Close)

	st := store.New(pool)
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := st.Seed(context.Background(), catalog.Default()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return st
}

func TestSeedIsIdempotent(t *testing.T) {
	st := setup(t)
	if err := st.Seed(context.Background(), catalog.Default()); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	appts, err := st.Appointments(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]int{}
	for _, a := range appts {
		seen[a.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("appointment %s listed %d times", id, n)
		}
	}
}

func TestListsKeepSeedOrder(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	want := catalog.Default()

	appts, err := st.Appointments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(appts) < len(want.Appointments) {
		t.Fatalf("appointments = %d, want at least %d", len(appts), len(want.Appointments))
	}
	if appts[0] != want.Appointments[0] {
		t.Errorf("first appointment = %+v, want %+v", appts[0], want.Appointments[0])
	}

	recs, err := st.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if recs[0].ID != want.Records[0].ID || recs[0].Notes != want.Records[0].Notes {
		t.Errorf("first record = %+v", recs[0])
	}

	meds, err := st.Medications(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if meds[0] != want.Medications[0] {
		t.Errorf("first medication = %+v", meds[0])
	}

	metrics, err := st.Metrics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(metrics) < len(want.Metrics) {
		t.Errorf("metrics = %d", len(metrics))
	}
}

func TestAppointmentsBetween(t *testing.T) {
	st := setup(t)
	got, err := st.AppointmentsBetween(context.Background(), "2025-06-01", "2025-06-30")
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range got {
		if a.Date < "2025-06-01" || a.Date > "2025-06-30" {
			t.Errorf("out of range: %+v", a)
		}
	}
	if len(got) < 2 {
		t.Errorf("expected the two June appointments, got %d", len(got))
	}
}

func TestProfile(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	u := model.User{ID: uuid.New().String(), Name: "Jane Roe", Email: "jane@example.com"}

	p, err := st.Profile(ctx, u)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Personal.Name != u.Name || p.Personal.Email != u.Email || p.UserID != u.ID {
		t.Errorf("template not personalized: %+v", p.Personal)
	}

	p.Personal.Phone = "(555) 000-1111"
	p.Medical.Allergies = "None"
	if err := st.SaveProfile(ctx, u, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Profile(ctx, u)
	if err != nil {
		t.Fatal(err)
	}
	if got.Personal.Phone != "(555) 000-1111" || got.Medical.Allergies != "None" {
		t.Errorf("saved profile = %+v", got)
	}

	if _, err := st.Profile(ctx, model.User{}); err == nil {
		t.Error("expected error for empty user id")
	}
}
