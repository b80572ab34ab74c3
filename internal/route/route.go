// Package route names the navigable paths and decides, per navigation,
// whether a path may be shown for a given session.
package route

import (
	"strings"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/session"
)

const (
	Landing      = "/"
	Login        = "/login"
	Register     = "/register"
	Logout       = "/logout"
	App          = "/app"
	Dashboard    = "/app/dashboard"
	Records      = "/app/records"
	Appointments = "/app/appointments"
	Medications  = "/app/medications"
	Profile      = "/app/profile"
)

// Nav is a sidebar entry.
type Nav struct {
	Path  string
	Label string
}

// AppNav lists the protected views in sidebar order.
var AppNav = []Nav{
	{Dashboard, "Dashboard"},
	{Records, "Medical Records"},
	{Appointments, "Appointments"},
	{Medications, "Medications"},
	{Profile, "Profile"},
}

var public = map[string]bool{
	Landing:  true,
	Login:    true,
	Register: true,
	Logout:   true,
}

var protected = map[string]bool{
	App:          true,
	Dashboard:    true,
	Records:      true,
	Appointments: true,
	Medications:  true,
	Profile:      true,
}

type Decision int

const (
	Allow Decision = iota
	Redirect
	// Pending means the session is still loading; show a loading state and
	// do not assume either outcome.
	Pending
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Pending:
		return "pending"
	default:
		return "not-found"
	}
}

type Outcome struct {
	Decision Decision
	Target   string // set for Redirect
}

// IsProtected reports whether path needs an authenticated session.
func IsProtected(path string) bool {
	return path == App || strings.HasPrefix(path, App+"/")
}

// Normalize drops a trailing slash so "/app/records/" and "/app/records"
// are the same navigation.
func Normalize(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = Landing
		}
	}
	return path
}

// Guard is evaluated fresh on every navigation. Public paths are always
// allowed. Protected paths are Pending while the session loads, redirect to
// Login when anonymous, and are allowed when authenticated; the bare /app
// group redirects to the dashboard.
func Guard(st session.Status, path string) Outcome {
	path = Normalize(path)
	if public[path] {
		return Outcome{Decision: Allow}
	}
	if !IsProtected(path) {
		return Outcome{Decision: NotFound}
	}
	if st.Loading {
		return Outcome{Decision: Pending}
	}
	if !st.Authenticated() {
		return Outcome{Decision: Redirect, Target: Login}
	}
	if !protected[path] {
		return Outcome{Decision: NotFound}
	}
	if path == App {
		return Outcome{Decision: Redirect, Target: Dashboard}
	}
	return Outcome{Decision: Allow}
}
