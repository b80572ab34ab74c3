package middleware

import (
	"net/http"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/route"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/session"
)

// StatusFunc reports the session state for a request. It may write headers
// (a cookie store clears a corrupt cookie while hydrating).
type StatusFunc func(w http.ResponseWriter, r *http.Request) session.Status

// Guard runs route.Guard on every request and turns the outcome into an
// HTTP response. Allowed requests reach next with the session user, if
// any, in the context.
func Guard(status StatusFunc, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := status(w, r)
		out := route.Guard(st, r.URL.Path)
		switch out.Decision {
		case route.Allow:
			if st.Authenticated() {
				r = r.WithContext(WithUser(r.Context(), st.User))
			}
			next.ServeHTTP(w, r)
		case route.Redirect:
			http.Redirect(w, r, out.Target, http.StatusSeeOther)
		case route.Pending:
			w.Header().Set("Retry-After", "1")
			http.Error(w, "loading", http.StatusServiceUnavailable)
		default:
			http.NotFound(w, r)
		}
	})
}
