package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

func newManager(t *testing.T, s Store, delay time.Duration) *Manager {
	t.Helper()
	m := NewManager(s, WithDelay(delay))
	m.Hydrate(context.Background())
	return m
}

// waitLoading polls until the manager reports loading, failing after a second.
func waitLoading(t *testing.T, m *Manager) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !m.Status().Loading {
		if time.Now().After(deadline) {
			t.Fatal("manager never entered loading")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHydrate(t *testing.T) {
	saved := NewMemoryStore()
	saved.Save(context.Background(), jane)

	corrupt := NewMemoryStore()
	corrupt.Put([]byte("{garbage"))

	broken := NewMemoryStore()
	broken.Fail(errors.New("disk on fire"))

	tests := []struct {
		name      string
		store     *MemoryStore
		wantState State
	}{
		{"empty store", NewMemoryStore(), Anonymous},
		{"saved user", saved, Authenticated},
		{"corrupt record", corrupt, Anonymous},
		{"unavailable store", broken, Anonymous},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.store)
			if st := m.Status(); !st.Loading || st.Authenticated() {
				t.Fatalf("before hydrate: %+v", st)
			}
			m.Hydrate(context.Background())
			st := m.Status()
			if st.Loading {
				t.Error("still loading after hydrate")
			}
			if st.State != tt.wantState {
				t.Errorf("state = %v, want %v", st.State, tt.wantState)
			}
			if tt.wantState == Authenticated && st.User != jane {
				t.Errorf("user = %+v, want %+v", st.User, jane)
			}
		})
	}
}

func TestHydrateClearsCorruptRecord(t *testing.T) {
	s := NewMemoryStore()
	s.Put([]byte(`{"name":"no id"}`))
	newManager(t, s, 0)
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Errorf("corrupt record should be removed, load = %v", err)
	}
}

func TestHydrateRunsOnce(t *testing.T) {
	s := NewMemoryStore()
	m := newManager(t, s, 0)

	s.Save(context.Background(), jane)
	m.Hydrate(context.Background())
	if m.Status().Authenticated() {
		t.Error("second Hydrate must not re-read the store")
	}
}

func TestLogin(t *testing.T) {
	s := NewMemoryStore()
	m := newManager(t, s, 0)

	for _, email := range []string{"a@example.com", "john.doe@example.org"} {
		u, err := m.Login(context.Background(), email, "ignored")
		if err != nil {
			t.Fatalf("login %s: %v", email, err)
		}
		if u.Email != email || u.ID != PlaceholderID || u.Name != PlaceholderName {
			t.Errorf("login returned %+v", u)
		}
		st := m.Status()
		if !st.Authenticated() || st.User.Email != email {
			t.Errorf("status after login = %+v", st)
		}
		stored, err := s.Load(context.Background())
		if err != nil || stored != u {
			t.Errorf("stored = %+v, %v", stored, err)
		}
	}
}

func TestLoginIgnoresPassword(t *testing.T) {
	m := newManager(t, NewMemoryStore(), 0)
	if _, err := m.Login(context.Background(), "a@example.com", ""); err != nil {
		t.Fatalf("empty password should be accepted: %v", err)
	}
}

func TestLoginValidation(t *testing.T) {
	m := newManager(t, NewMemoryStore(), 0)

	for _, email := range []string{"", "   ", "not-an-email", "John <john@example.com>", " a@example.com", "a@example.com\t", "\na@example.com "} {
		t.Run(fmt.Sprintf("%q", email), func(t *testing.T) {
			_, err := m.Login(context.Background(), email, "pw")
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != "email" {
				t.Errorf("field = %q", verr.Field)
			}
			if st := m.Status(); st.Authenticated() || st.Loading {
				t.Errorf("status after rejected login = %+v", st)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	m := newManager(t, NewMemoryStore(), 0)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		u, err := m.Register(context.Background(), "Jane Roe", "jane@example.com", "pw")
		if err != nil {
			t.Fatalf("register: %v", err)
		}
		if u.Name != "Jane Roe" || u.Email != "jane@example.com" {
			t.Errorf("register returned %+v", u)
		}
		if u.ID == "" || seen[u.ID] {
			t.Fatalf("id %q is empty or repeated", u.ID)
		}
		seen[u.ID] = true
	}
	if st := m.Status(); !st.Authenticated() || st.User.Name != "Jane Roe" {
		t.Errorf("status after register = %+v", st)
	}
}

func TestRegisterValidation(t *testing.T) {
	m := newManager(t, NewMemoryStore(), 0)

	tests := []struct {
		name, user, email, field string
	}{
		{"empty name", "", "a@example.com", "name"},
		{"blank name", "  ", "a@example.com", "name"},
		{"bad email", "Jane", "jane", "email"},
		{"padded email", "Jane", " jane@example.com ", "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Register(context.Background(), tt.user, tt.email, "pw")
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("expected ValidationError on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestRegisterUsesIDGenerator(t *testing.T) {
	m := NewManager(NewMemoryStore(), WithDelay(0), WithIDGenerator(func() string { return "fixed" }))
	m.Hydrate(context.Background())
	u, err := m.Register(context.Background(), "Jane", "jane@example.com", "")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "fixed" {
		t.Errorf("id = %q", u.ID)
	}
}

func TestLogout(t *testing.T) {
	s := NewMemoryStore()
	m := newManager(t, s, 0)
	m.Login(context.Background(), "a@example.com", "")

	if err := m.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if st := m.Status(); st.Authenticated() || st.Loading {
		t.Errorf("status after logout = %+v", st)
	}
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Errorf("store not cleared: %v", err)
	}
}

func TestLogoutStoreFailureStillAnonymous(t *testing.T) {
	s := NewMemoryStore()
	m := newManager(t, s, 0)
	m.Login(context.Background(), "a@example.com", "")

	s.Fail(errors.New("read-only"))
	if err := m.Logout(context.Background()); err == nil {
		t.Error("expected clear error to be reported")
	}
	if m.Status().Authenticated() {
		t.Error("logout must leave the manager anonymous")
	}
}

func TestLoginSaveFailure(t *testing.T) {
	s := NewMemoryStore()
	m := newManager(t, s, 0)
	boom := errors.New("quota exceeded")
	s.Fail(boom)

	_, err := m.Login(context.Background(), "a@example.com", "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if st := m.Status(); st.Authenticated() || st.Loading {
		t.Errorf("status after failed save = %+v", st)
	}
}

func TestLoadingDuringLogin(t *testing.T) {
	m := newManager(t, NewMemoryStore(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := m.Login(ctx, "a@example.com", "")
		done <- err
	}()

	waitLoading(t, m)
	if m.Status().Authenticated() {
		t.Error("must not be authenticated while loading")
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if st := m.Status(); st.Loading || st.Authenticated() {
		t.Errorf("status after cancel = %+v", st)
	}
}

func TestLatestLoginWins(t *testing.T) {
	s := NewMemoryStore()
	m := newManager(t, s, 30*time.Millisecond)

	first := make(chan error, 1)
	go func() {
		_, err := m.Login(context.Background(), "first@example.com", "")
		first <- err
	}()
	waitLoading(t, m)

	u, err := m.Login(context.Background(), "second@example.com", "")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if err := <-first; !errors.Is(err, ErrSuperseded) {
		t.Errorf("first login: expected ErrSuperseded, got %v", err)
	}

	st := m.Status()
	if st.User != u || st.User.Email != "second@example.com" || st.Loading {
		t.Errorf("status = %+v", st)
	}
	if stored, _ := s.Load(context.Background()); stored.Email != "second@example.com" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestLogoutDiscardsInflightLogin(t *testing.T) {
	s := NewMemoryStore()
	m := newManager(t, s, 30*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := m.Login(context.Background(), "a@example.com", "")
		done <- err
	}()
	waitLoading(t, m)

	if err := m.Logout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if m.Status().Loading {
		t.Error("logout should end the loading state")
	}
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Errorf("expected ErrSuperseded, got %v", err)
	}
	if m.Status().Authenticated() {
		t.Error("stale login resurrected the session")
	}
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Errorf("stale login wrote the store: %v", err)
	}
}

func TestStateString(t *testing.T) {
	if Anonymous.String() != "anonymous" || Authenticated.String() != "authenticated" {
		t.Error("unexpected state names")
	}
}

type stubAuth struct {
	user model.User
	err  error
	got  []string
}

func (a *stubAuth) Login(_ context.Context, email, password string) (model.User, error) {
	a.got = append(a.got, "login "+email+" "+password)
	return a.user, a.err
}

func (a *stubAuth) Register(_ context.Context, name, email, password string) (model.User, error) {
	a.got = append(a.got, "register "+name+" "+email+" "+password)
	return a.user, a.err
}

func TestCustomAuthenticator(t *testing.T) {
	s := NewMemoryStore()
	a := &stubAuth{user: jane}
	m := NewManager(s, WithDelay(0), WithAuthenticator(a))
	m.Hydrate(context.Background())

	u, err := m.Login(context.Background(), " jane@example.com ", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u != jane {
		t.Errorf("user = %+v", u)
	}
	if len(a.got) != 1 || a.got[0] != "login jane@example.com hunter2" {
		t.Errorf("authenticator saw %q", a.got)
	}
	if stored, err := s.Load(context.Background()); err != nil || stored != jane {
		t.Errorf("stored = %+v, %v", stored, err)
	}

	// invalid input never reaches the authenticator
	if _, err := m.Register(context.Background(), "", "jane@example.com", ""); err == nil {
		t.Error("expected validation error")
	}
	if len(a.got) != 1 {
		t.Errorf("authenticator called for invalid input: %q", a.got)
	}
}

func TestAuthenticatorFailure(t *testing.T) {
	s := NewMemoryStore()
	denied := errors.New("denied")
	m := NewManager(s, WithDelay(0), WithAuthenticator(&stubAuth{err: denied}))
	m.Hydrate(context.Background())

	if _, err := m.Register(context.Background(), "Jane", "jane@example.com", "x"); !errors.Is(err, denied) {
		t.Fatalf("expected denied, got %v", err)
	}
	if st := m.Status(); st.Authenticated() || st.Loading {
		t.Errorf("status = %+v", st)
	}
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Errorf("store written after failure: %v", err)
	}
}
