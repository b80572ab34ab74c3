package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/middleware"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/route"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"landing.html",
	"login.html",
	"register.html",
	"dashboard.html",
	"records.html",
	"appointments.html",
	"medications.html",
	"profile.html",
}

// Raw HTML in notes is escaped: WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// baseFuncs are replaced per request in render; these stand-ins only let
// the templates parse.
func baseFuncs() template.FuncMap {
	return template.FuncMap{
		"csrfToken":      func() string { return "" },
		"isLoggedIn":     func() bool { return false },
		"currentUser":    func() model.User { return model.User{} },
		"isActive":       func(string) bool { return false },
		"navItems":       func() []route.Nav { return route.AppNav },
		"renderMarkdown": renderMarkdown,
		"longDate":       func(t time.Time) string { return t.Format("Monday, January 2, 2006") },
	}
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := template.New("layout.html").Funcs(baseFuncs()).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = tpl
	}
	return pages, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, code int, page string, data any) {
	base, ok := s.pages[page]
	if !ok {
		s.internalError(w, fmt.Errorf("unknown page %q", page))
		return
	}
	tpl, err := base.Clone()
	if err != nil {
		s.internalError(w, err)
		return
	}
	user, loggedIn := middleware.UserFromContext(r.Context())
	path := route.Normalize(r.URL.Path)
	tpl.Funcs(template.FuncMap{
		"csrfToken":   func() string { return csrf.Token(r) },
		"isLoggedIn":  func() bool { return loggedIn },
		"currentUser": func() model.User { return user },
		"isActive":    func(p string) bool { return p == path },
	})

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	buf.WriteTo(w)
}

// internalError logs the real error and sends the client a generic one.
func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func badRequest(w http.ResponseWriter, msg string) {
	http.Error(w, strings.TrimSpace(msg), http.StatusBadRequest)
}
