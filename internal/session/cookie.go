package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/auth"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

// CookieOptions configures the browser slot.
type CookieOptions struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// CookieStore is the browser slot for one request: the user record travels
// as a signed token in a cookie named Key. It is not safe for concurrent use
// and must not outlive its request.
type CookieStore struct {
	w    http.ResponseWriter
	r    *http.Request
	opts CookieOptions

	// writes made during this request shadow the incoming cookie
	written bool
	current *model.User
}

func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStore {
	if opts.TTL <= 0 {
		opts.TTL = auth.DefaultTTL
	}
	return &CookieStore{w: w, r: r, opts: opts}
}

func (s *CookieStore) Save(_ context.Context, u model.User) error {
	tok, err := auth.MakeToken(u, s.opts.Secret, s.opts.TTL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     Key,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(s.opts.TTL / time.Second),
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.written = true
	s.current = &u
	return nil
}

func (s *CookieStore) Load(_ context.Context) (model.User, error) {
	if s.written {
		if s.current == nil {
			return model.User{}, ErrNoSession
		}
		return *s.current, nil
	}
	c, err := s.r.Cookie(Key)
	if errors.Is(err, http.ErrNoCookie) || (err == nil && c.Value == "") {
		return model.User{}, ErrNoSession
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	claims, err := auth.ParseToken(c.Value, s.opts.Secret)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return claims.User(), nil
}

func (s *CookieStore) Clear(_ context.Context) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     Key,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.written = true
	s.current = nil
	return nil
}
