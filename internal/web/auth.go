package web

import (
	"errors"
	"net/http"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/route"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/session"
)

type authForm struct {
	Name   string
	Email  string
	Errors map[string]string
}

func (s *Server) landing(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "landing.html", nil)
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	if s.status(w, r).Authenticated() {
		http.Redirect(w, r, route.Dashboard, http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", authForm{})
}

func (s *Server) registerForm(w http.ResponseWriter, r *http.Request) {
	if s.status(w, r).Authenticated() {
		http.Redirect(w, r, route.Dashboard, http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "register.html", authForm{})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badRequest(w, "form error")
		return
	}
	form := authForm{Email: r.PostFormValue("email")}
	_, err := s.sessionOf(w, r).Login(r.Context(), form.Email, r.PostFormValue("password"))
	if s.formFailed(w, r, "login.html", &form, err) {
		return
	}
	http.Redirect(w, r, route.Dashboard, http.StatusSeeOther)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badRequest(w, "form error")
		return
	}
	form := authForm{Name: r.PostFormValue("name"), Email: r.PostFormValue("email")}
	_, err := s.sessionOf(w, r).Register(r.Context(), form.Name, form.Email, r.PostFormValue("password"))
	if s.formFailed(w, r, "register.html", &form, err) {
		return
	}
	http.Redirect(w, r, route.Dashboard, http.StatusSeeOther)
}

// formFailed re-renders page with the error next to its field. It reports
// whether err was non-nil.
func (s *Server) formFailed(w http.ResponseWriter, r *http.Request, page string, form *authForm, err error) bool {
	if err == nil {
		return false
	}
	var verr *session.ValidationError
	if errors.As(err, &verr) {
		form.Errors = map[string]string{verr.Field: verr.Message}
		s.render(w, r, http.StatusUnprocessableEntity, page, form)
		return true
	}
	s.log.Warn("authentication failed", "error", err)
	form.Errors = map[string]string{"form": "Something went wrong. Please try again."}
	s.render(w, r, http.StatusInternalServerError, page, form)
	return true
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessionOf(w, r).Logout(r.Context()); err != nil {
		s.log.Warn("logout", "error", err)
	}
	http.Redirect(w, r, route.Login, http.StatusSeeOther)
}
