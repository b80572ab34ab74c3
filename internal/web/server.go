// Package web serves the HTML views: the landing page, login and
// registration forms, and the five signed-in views behind the route guard.
package web

import (
	"context"
	"crypto/sha256"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/csrf"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/catalog"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/handler"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/middleware"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/route"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/session"
)

type Options struct {
	Source        catalog.Source
	Secret        string
	SecureCookies bool
	TokenTTL      time.Duration
	LoginDelay    time.Duration
	Logger        *slog.Logger
	// Limiter, when set, limits POST requests per client.
	Limiter *middleware.RateLimiter
	// API, when set, is mounted at the HealthService path (the gRPC-Web bridge).
	API http.Handler
	Now func() time.Time
}

type Server struct {
	src     catalog.Source
	cookies session.CookieOptions
	delay   time.Duration
	log     *slog.Logger
	now     func() time.Time
	limiter *middleware.RateLimiter
	api     http.Handler
	csrfKey []byte
	pages   map[string]*template.Template
}

func New(o Options) (*Server, error) {
	if o.Source == nil {
		return nil, errors.New("web: nil source")
	}
	if o.Secret == "" {
		return nil, errors.New("web: empty secret")
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	key := sha256.Sum256([]byte("csrf:" + o.Secret))
	return &Server{
		src:     o.Source,
		cookies: session.CookieOptions{Secret: o.Secret, TTL: o.TokenTTL, Secure: o.SecureCookies},
		delay:   o.LoginDelay,
		log:     o.Logger,
		now:     o.Now,
		limiter: o.Limiter,
		api:     o.API,
		csrfKey: key[:],
		pages:   pages,
	}, nil
}

// manager builds the session manager for one request, backed by the
// request's cookie.
func (s *Server) manager(w http.ResponseWriter, r *http.Request) *session.Manager {
	m := session.NewManager(session.NewCookieStore(w, r, s.cookies),
		session.WithDelay(s.delay),
		session.WithLogger(s.log),
	)
	m.Hydrate(r.Context())
	return m
}

type managerKey struct{}

// withSession hydrates the request's session once and shares the manager
// with the guard and the view handlers.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := s.manager(w, r)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), managerKey{}, m)))
	})
}

func (s *Server) sessionOf(w http.ResponseWriter, r *http.Request) *session.Manager {
	if m, ok := r.Context().Value(managerKey{}).(*session.Manager); ok {
		return m
	}
	return s.manager(w, r)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) session.Status {
	return s.sessionOf(w, r).Status()
}

// Handler returns the full HTTP surface: guarded views with CSRF checks,
// plus the API bridge when configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+route.Landing+"{$}", s.landing)
	mux.HandleFunc("GET "+route.Login, s.loginForm)
	mux.HandleFunc("POST "+route.Login, s.login)
	mux.HandleFunc("GET "+route.Register, s.registerForm)
	mux.HandleFunc("POST "+route.Register, s.register)
	mux.HandleFunc("POST "+route.Logout, s.logout)
	mux.HandleFunc("GET "+route.Dashboard, s.dashboard)
	mux.HandleFunc("GET "+route.Records, s.records)
	mux.HandleFunc("GET "+route.Appointments, s.appointments)
	mux.HandleFunc("GET "+route.Medications, s.medications)
	mux.HandleFunc("GET "+route.Profile, s.profile)
	mux.HandleFunc("POST "+route.Profile, s.saveProfile)

	var h http.Handler = middleware.Guard(s.status, mux)
	if s.limiter != nil {
		h = middleware.LimitPosts(s.limiter, h)
	}
	h = s.withSession(h)
	protect := csrf.Protect(s.csrfKey,
		csrf.Secure(s.cookies.Secure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(s.csrfFailed)),
	)
	h = protect(h)
	h = s.plaintext(h)

	root := http.NewServeMux()
	if s.api != nil {
		root.Handle("/"+handler.ServiceName+"/", s.api)
	}
	root.Handle("/", h)
	return s.logRequests(root)
}

// plaintext tells the CSRF check that a request came over plain HTTP, so
// it does not demand an https Referer. Only used when cookies are not
// marked Secure.
func (s *Server) plaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.cookies.Secure && r.TLS == nil {
			r = csrf.PlaintextHTTPRequest(r)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) csrfFailed(w http.ResponseWriter, r *http.Request) {
	s.log.Warn("csrf check failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
	http.Error(w, "forbidden", http.StatusForbidden)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.code,
			"duration", time.Since(start),
		)
	})
}
