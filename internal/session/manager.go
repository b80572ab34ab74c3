package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

// Identity handed out by Login. Login never looks anyone up.
const (
	PlaceholderID   = "1"
	PlaceholderName = "John Doe"
)

// DefaultDelay is the simulated login/register latency.
const DefaultDelay = time.Second

// ErrSuperseded is returned by a Login or Register that was overtaken by a
// later Login, Register, or Logout before it finished.
var ErrSuperseded = errors.New("superseded by a newer session change")

// ValidationError is a recoverable input problem, meant to be shown next to
// the offending form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Status is a point-in-time view of a Manager.
type Status struct {
	State   State
	User    model.User
	Loading bool
}

func (s Status) Authenticated() bool { return s.State == Authenticated }

type Option func(*Manager)

func WithDelay(d time.Duration) Option {
	return func(m *Manager) { m.delay = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// Authenticator turns validated credentials into a user. The default one
// hands out the placeholder identity on Login and a fresh id on Register.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (model.User, error)
	Register(ctx context.Context, name, email, password string) (model.User, error)
}

// WithAuthenticator replaces the local placeholder authenticator, e.g. with
// a remote server client. The simulated delay still applies.
func WithAuthenticator(a Authenticator) Option {
	return func(m *Manager) {
		if a != nil {
			m.auth = a
		}
	}
}

// WithIDGenerator replaces the uuid generator used by Register.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// Manager is the session state machine: Anonymous or Authenticated, plus a
// loading flag that is set until Hydrate has run and while the latest
// Login/Register is in flight. It is the only writer of its Store.
//
// Concurrent Login/Register calls are serialized by sequence number: the
// most recently started call wins and earlier ones return ErrSuperseded
// without touching the Store. Logout also bumps the sequence.
type Manager struct {
	store Store
	delay time.Duration
	newID func() string
	auth  Authenticator
	log   *slog.Logger

	once     sync.Once
	mu       sync.Mutex
	user     *model.User
	hydrated bool
	busy     bool
	seq      uint64
}

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		delay: DefaultDelay,
		newID: func() string { return uuid.New().String() },
		log:   slog.Default(),
	}
	m.auth = local{m}
	for _, o := range opts {
		o(m)
	}
	return m
}

type local struct{ m *Manager }

func (l local) Login(_ context.Context, email, _ string) (model.User, error) {
	return model.User{ID: PlaceholderID, Name: PlaceholderName, Email: email}, nil
}

func (l local) Register(_ context.Context, name, email, _ string) (model.User, error) {
	return model.User{ID: l.m.newID(), Name: name, Email: email}, nil
}

// Hydrate reads the Store once. Later calls do nothing. Any failure leaves
// the manager Anonymous; a corrupt record is also removed from the Store.
func (m *Manager) Hydrate(ctx context.Context) {
	m.once.Do(func() {
		u, err := m.store.Load(ctx)

		m.mu.Lock()
		defer m.mu.Unlock()
		m.hydrated = true

		switch {
		case err == nil:
			// a login that finished first wins over the stored record
			if m.seq == 0 {
				m.user = &u
			}
		case errors.Is(err, ErrNoSession):
		case errors.Is(err, ErrCorrupt):
			m.log.Warn("discarding stored session", "error", err)
			if cerr := m.store.Clear(ctx); cerr != nil {
				m.log.Warn("clear corrupt session", "error", cerr)
			}
		default:
			m.log.Warn("session storage unavailable, continuing logged out", "error", err)
		}
	})
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Status{Loading: !m.hydrated || m.busy}
	if m.user != nil {
		st.State = Authenticated
		st.User = *m.user
	}
	return st
}

// Login checks the email and asks the Authenticator for the user. With the
// default authenticator anyone with a well-formed email gets in and the
// password is ignored. The email is used as given: surrounding spaces are a
// ValidationError, not trimmed.
func (m *Manager) Login(ctx context.Context, email, password string) (model.User, error) {
	if err := validateEmail(email); err != nil {
		return model.User{}, err
	}
	return m.authenticate(ctx, func(ctx context.Context) (model.User, error) {
		return m.auth.Login(ctx, email, password)
	})
}

func (m *Manager) Register(ctx context.Context, name, email, password string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, &ValidationError{Field: "name", Message: "name is required"}
	}
	if err := validateEmail(email); err != nil {
		return model.User{}, err
	}
	return m.authenticate(ctx, func(ctx context.Context) (model.User, error) {
		return m.auth.Register(ctx, name, email, password)
	})
}

// Logout clears the Store and returns to Anonymous at once. The in-memory
// state is Anonymous even when clearing the Store fails.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.busy = false
	m.user = nil
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn("clear session", "error", err)
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (m *Manager) authenticate(ctx context.Context, build func(context.Context) (model.User, error)) (model.User, error) {
	m.mu.Lock()
	m.seq++
	my := m.seq
	m.busy = true
	m.mu.Unlock()

	u, err := func() (model.User, error) {
		if err := sleep(ctx, m.delay); err != nil {
			return model.User{}, err
		}
		return build(ctx)
	}()
	if err != nil {
		m.mu.Lock()
		if my == m.seq {
			m.busy = false
		}
		m.mu.Unlock()
		return model.User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if my != m.seq {
		return model.User{}, ErrSuperseded
	}
	m.busy = false
	if err := m.store.Save(ctx, u); err != nil {
		return model.User{}, fmt.Errorf("save session: %w", err)
	}
	m.user = &u
	m.log.Info("session started", "user_id", u.ID)
	return u, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func validateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &ValidationError{Field: "email", Message: "invalid email address"}
	}
	return nil
}
