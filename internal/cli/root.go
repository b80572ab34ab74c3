// Package cli is the healthsync terminal client. It keeps the session in a
// LevelDB database under the data directory and reads the catalog either
// locally or from a HealthService over gRPC (--server).
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/catalog"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/config"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/handler"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/logging"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/route"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/session"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/store"
)

// ErrNotLoggedIn is returned by commands that need a session.
var ErrNotLoggedIn = errors.New(`not logged in (run "healthsync login")`)

type Options struct {
	// Viper holds defaults and env bindings; config.New() when nil.
	Viper *viper.Viper
	Now   func() time.Time
	// Dial connects to a remote server; handler.Dial when nil.
	Dial func(addr string) (*handler.Client, error)
	// Source, when set, replaces the local catalog.
	Source catalog.Source
}

type app struct {
	opts Options
	v    *viper.Viper

	cfg    *config.Config
	log    *slog.Logger
	out    io.Writer
	level  *session.LevelStore
	mgr    *session.Manager
	src    catalog.Source
	client *handler.Client
	closer []func()
}

// New builds the root command. Each command opens the session database on
// start and closes it before returning.
func New(opts Options) *cobra.Command {
	if opts.Viper == nil {
		opts.Viper = config.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Dial == nil {
		opts.Dial = handler.Dial
	}
	a := &app{opts: opts, v: opts.Viper}

	root := &cobra.Command{
		Use:   "healthsync",
		Short: "Medical records and appointment tracker",
		Long: `healthsync shows your appointments, medical records and medications
from the terminal. Log in once; the session is kept under --data-dir.`,
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "YAML config file")
	pf.String("data-dir", "", "session database directory (default $HOME/.healthsync)")
	pf.String("server", "", "HealthService address, e.g. localhost:50051")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.Duration("login-delay", 0, "simulated login latency")
	_ = a.v.BindPFlag("config", pf.Lookup("config"))
	_ = a.v.BindPFlag("data_dir", pf.Lookup("data-dir"))
	_ = a.v.BindPFlag("server", pf.Lookup("server"))
	_ = a.v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("login_delay", pf.Lookup("login-delay"))

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.dashboardCmd(),
		a.appointmentsCmd(),
		a.calendarCmd(),
		a.recordsCmd(),
		a.medicationsCmd(),
		a.profileCmd(),
	)
	return root
}

// run wraps a command body with setup and teardown.
func (a *app) run(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := a.setup(ctx, cmd); err != nil {
			return err
		}
		defer a.teardown()
		return remoteError(fn(ctx, cmd, args))
	}
}

func (a *app) setup(ctx context.Context, cmd *cobra.Command) error {
	if err := config.ReadFile(a.v, a.v.GetString("config")); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.cfg, a.log, a.out = cfg, log, cmd.OutOrStdout()

	var st session.Store = session.NewMemoryStore()
	if lvl, err := a.openLevel(); err != nil {
		log.Warn("session will not be kept", "error", err)
	} else {
		a.level, st = lvl, lvl
		a.closer = append(a.closer, func() { lvl.Close() })
	}

	mopts := []session.Option{session.WithDelay(cfg.LoginDelay), session.WithLogger(log)}
	switch {
	case cfg.Server != "":
		c, err := a.opts.Dial(cfg.Server)
		if err != nil {
			a.teardown()
			return err
		}
		a.closer = append(a.closer, func() { c.Close() })
		if a.level != nil {
			if tok, err := a.level.Token(ctx); err == nil {
				c.SetToken(tok)
			}
		}
		a.client, a.src = c, c
		mopts = append(mopts, session.WithAuthenticator(c))
	case a.opts.Source != nil:
		a.src = a.opts.Source
	default:
		src, closeFn, err := store.OpenSource(ctx, cfg.DatabaseURL, cfg.SeedFile, log)
		if err != nil {
			a.teardown()
			return err
		}
		a.closer = append(a.closer, closeFn)
		a.src = src
	}

	if a.client == nil && cfg.DatabaseURL == "" && a.level != nil {
		a.src = levelProfiles{Source: a.src, level: a.level}
	}

	a.mgr = session.NewManager(st, mopts...)
	a.mgr.Hydrate(ctx)
	return nil
}

func (a *app) openLevel() (*session.LevelStore, error) {
	dir := a.cfg.DataDir
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrUnavailable, err)
	}
	return session.OpenLevelStore(filepath.Join(dir, "session"))
}

func (a *app) teardown() {
	for i := len(a.closer) - 1; i >= 0; i-- {
		a.closer[i]()
	}
	a.closer = nil
	a.level, a.client = nil, nil
}

// user runs the route guard for path and returns the session user.
func (a *app) user(path string) (model.User, error) {
	st := a.mgr.Status()
	switch out := route.Guard(st, path); out.Decision {
	case route.Allow:
		return st.User, nil
	case route.Redirect:
		return model.User{}, ErrNotLoggedIn
	case route.Pending:
		return model.User{}, errors.New("session is still loading")
	default:
		return model.User{}, fmt.Errorf("no view at %s", path)
	}
}

func remoteError(err error) error {
	if status.Code(err) == codes.Unauthenticated {
		return fmt.Errorf("server rejected the session, log in again: %w", err)
	}
	return err
}

// levelProfiles keeps profile edits in the session database when the
// catalog itself lives in memory and would forget them on exit.
type levelProfiles struct {
	catalog.Source
	level *session.LevelStore
}

func (s levelProfiles) Profile(ctx context.Context, u model.User) (model.Profile, error) {
	p, ok, err := s.level.Profile(ctx, u.ID)
	if err != nil {
		return model.Profile{}, err
	}
	if !ok {
		return s.Source.Profile(ctx, u)
	}
	return p, nil
}

func (s levelProfiles) SaveProfile(ctx context.Context, u model.User, p model.Profile) error {
	if u.ID == "" {
		return fmt.Errorf("profile: %w: empty user id", catalog.ErrNotFound)
	}
	p.UserID = u.ID
	return s.level.SaveProfile(ctx, p)
}
