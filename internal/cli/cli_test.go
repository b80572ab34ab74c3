package cli

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/catalog"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/config"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/handler"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/middleware"
)

var today = time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

// testOptions shares one catalog and data directory across commands, the
// way repeated invocations share $HOME/.healthsync.
func testOptions(t *testing.T) Options {
	t.Helper()
	v := config.New()
	v.Set("data_dir", t.TempDir())
	v.Set("login_delay", "0s")
	v.Set("log_level", "error")
	v.Set("database_url", "")
	return Options{
		Viper:  v,
		Now:    func() time.Time { return today },
		Source: catalog.NewStatic(nil),
	}
}

func execute(t *testing.T, opts Options, args ...string) (string, error) {
	t.Helper()
	root := New(opts)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func mustExecute(t *testing.T, opts Options, args ...string) string {
	t.Helper()
	out, err := execute(t, opts, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestCommands(t *testing.T) {
	root := New(Options{})
	want := []string{"login", "register", "logout", "whoami", "dashboard", "appointments", "calendar", "records", "medications", "profile"}
	have := map[string]bool{}
	for _, c := range root.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing command %q", name)
		}
	}
}

func TestWhoamiAnonymous(t *testing.T) {
	out := mustExecute(t, testOptions(t), "whoami")
	if !strings.Contains(out, "Not logged in") {
		t.Errorf("whoami = %q", out)
	}
}

func TestProtectedCommandsNeedLogin(t *testing.T) {
	opts := testOptions(t)
	for _, cmd := range []string{"dashboard", "appointments", "calendar", "records", "medications", "profile"} {
		if _, err := execute(t, opts, cmd); !errors.Is(err, ErrNotLoggedIn) {
			t.Errorf("%s: err = %v, want ErrNotLoggedIn", cmd, err)
		}
	}
}

func TestLoginPersistsAcrossRuns(t *testing.T) {
	opts := testOptions(t)
	out := mustExecute(t, opts, "login", "--email", "john@example.com", "--password", "x")
	if !strings.Contains(out, "Logged in as John Doe (john@example.com)") {
		t.Errorf("login = %q", out)
	}

	out = mustExecute(t, opts, "whoami")
	if !strings.Contains(out, "John Doe <john@example.com> (id 1)") {
		t.Errorf("whoami = %q", out)
	}

	mustExecute(t, opts, "logout")
	out = mustExecute(t, opts, "whoami")
	if !strings.Contains(out, "Not logged in") {
		t.Errorf("after logout = %q", out)
	}
}

func TestLoginValidation(t *testing.T) {
	opts := testOptions(t)
	_, err := execute(t, opts, "login", "--email", "nope")
	if err == nil || !strings.Contains(err.Error(), "invalid email address") {
		t.Fatalf("err = %v", err)
	}
	out := mustExecute(t, opts, "whoami")
	if !strings.Contains(out, "Not logged in") {
		t.Errorf("failed login left a session: %q", out)
	}
}

func TestRegister(t *testing.T) {
	opts := testOptions(t)
	if _, err := execute(t, opts, "register", "--email", "jane@example.com"); err == nil {
		t.Fatal("register without a name succeeded")
	}
	mustExecute(t, opts, "register", "--name", "Jane Roe", "--email", "jane@example.com")
	out := mustExecute(t, opts, "whoami")
	if !strings.Contains(out, "Jane Roe <jane@example.com>") {
		t.Errorf("whoami = %q", out)
	}
}

func TestDashboard(t *testing.T) {
	opts := testOptions(t)
	mustExecute(t, opts, "login", "-e", "john@example.com")
	out := mustExecute(t, opts, "dashboard")
	for _, want := range []string{"Welcome back, John Doe", "Tuesday, June 10, 2025", "2 upcoming appointments", "Dr. Sarah Johnson", "Lisinopril", "Blood Glucose",
		"Recent Medical Records", "Quest Diagnostics", "2025-03-22"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "2025-02-05") {
		t.Errorf("dashboard lists more than the recent records:\n%s", out)
	}
}

func TestAppointmentsFilter(t *testing.T) {
	opts := testOptions(t)
	mustExecute(t, opts, "login", "-e", "john@example.com")

	out := mustExecute(t, opts, "appointments", "--search", "SARAH")
	if !strings.Contains(out, "Dr. Sarah Johnson") || strings.Contains(out, "Dr. Michael Chen") {
		t.Errorf("search not applied:\n%s", out)
	}
	out = mustExecute(t, opts, "appointments", "--status", "cancelled")
	if !strings.Contains(out, "Dr. Jennifer Lee") || !strings.Contains(out, "1 appointments") {
		t.Errorf("status not applied:\n%s", out)
	}
	if _, err := execute(t, opts, "appointments", "--status", "bogus"); err == nil {
		t.Error("unknown status accepted")
	}
}

func TestCalendar(t *testing.T) {
	opts := testOptions(t)
	mustExecute(t, opts, "login", "-e", "john@example.com")

	out := mustExecute(t, opts, "calendar")
	if !strings.Contains(out, "June 2025") {
		t.Fatalf("default month:\n%s", out)
	}
	for _, want := range []string{"15*", "22*", "2025-06-15"} {
		if !strings.Contains(out, want) {
			t.Errorf("calendar missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "16*") {
		t.Errorf("June 16 flagged:\n%s", out)
	}

	out = mustExecute(t, opts, "calendar", "--year", "2025", "--month", "6", "--next")
	if !strings.Contains(out, "July 2025") {
		t.Errorf("--next:\n%s", out)
	}
	out = mustExecute(t, opts, "calendar", "--month", "1", "--prev")
	if !strings.Contains(out, "December 2024") {
		t.Errorf("--prev across the year:\n%s", out)
	}
	if _, err := execute(t, opts, "calendar", "--month", "13"); err == nil {
		t.Error("month 13 accepted")
	}
}

func TestCalendarRangeEnds(t *testing.T) {
	opts := testOptions(t)
	mustExecute(t, opts, "login", "-e", "john@example.com")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--year", "9999", "--month", "12", "--next"}, "December 9999"},
		{[]string{"--year", "1", "--month", "1", "--prev"}, "January 0001"},
	}
	for _, tt := range tests {
		out := mustExecute(t, opts, append([]string{"calendar"}, tt.args...)...)
		if !strings.Contains(out, tt.want) {
			t.Errorf("%v: want %q:\n%s", tt.args, tt.want, out)
		}
	}
}

func TestRecordsAndMedications(t *testing.T) {
	opts := testOptions(t)
	mustExecute(t, opts, "login", "-e", "john@example.com")

	out := mustExecute(t, opts, "records", "--status", "archived")
	if !strings.Contains(out, "3 records") || !strings.Contains(out, "Lipid Panel") || strings.Contains(out, "Chest X-Ray") {
		t.Errorf("records:\n%s", out)
	}

	out = mustExecute(t, opts, "medications", "-s", "metformin")
	if !strings.Contains(out, "Metformin") || strings.Contains(out, "Lisinopril") {
		t.Errorf("medications:\n%s", out)
	}
	if !strings.Contains(out, "3 active, 1 completed") {
		t.Errorf("summary:\n%s", out)
	}
}

func TestMedicationSchedule(t *testing.T) {
	opts := testOptions(t)
	mustExecute(t, opts, "login", "-e", "john@example.com")

	out := mustExecute(t, opts, "medications")
	i := strings.Index(out, "Today's Schedule")
	if i < 0 {
		t.Fatalf("schedule missing:\n%s", out)
	}
	lines := strings.Split(out[i:], "\n")
	tests := []struct {
		slot    string
		want    []string
		notWant []string
	}{
		{"Morning", []string{"Lisinopril", "Metformin"}, []string{"Prednisone", "Atorvastatin"}},
		{"Afternoon", []string{"No medications scheduled"}, []string{"Amoxicillin"}},
		{"Evening", []string{"Metformin", "Atorvastatin"}, []string{"Lisinopril"}},
	}
	for _, tt := range tests {
		var line string
		for _, l := range lines {
			if strings.Contains(l, tt.slot) {
				line = l
				break
			}
		}
		if line == "" {
			t.Errorf("%s slot missing:\n%s", tt.slot, out)
			continue
		}
		for _, w := range tt.want {
			if !strings.Contains(line, w) {
				t.Errorf("%s line %q missing %q", tt.slot, line, w)
			}
		}
		for _, w := range tt.notWant {
			if strings.Contains(line, w) {
				t.Errorf("%s line %q has %q", tt.slot, line, w)
			}
		}
	}
}

func TestProfileEdit(t *testing.T) {
	opts := testOptions(t)
	mustExecute(t, opts, "login", "-e", "john@example.com")

	if _, err := execute(t, opts, "profile", "edit"); err == nil {
		t.Error("edit with no flags succeeded")
	}
	mustExecute(t, opts, "profile", "edit", "--phone", "(555) 000-1111", "--allergies", "Penicillin")
	out := mustExecute(t, opts, "profile")
	for _, want := range []string{"john@example.com", "(555) 000-1111", "Penicillin"} {
		if !strings.Contains(out, want) {
			t.Errorf("profile missing %q:\n%s", want, out)
		}
	}
}

func TestProfileEditSurvivesRestart(t *testing.T) {
	opts := testOptions(t)
	opts.Source = nil // each run builds its own in-memory catalog
	mustExecute(t, opts, "login", "-e", "john@example.com")
	mustExecute(t, opts, "profile", "edit", "--phone", "(555) 000-1111")

	out := mustExecute(t, opts, "profile")
	if !strings.Contains(out, "(555) 000-1111") {
		t.Fatalf("next run lost the saved phone:\n%s", out)
	}
	if !strings.Contains(out, "O+") {
		t.Errorf("untouched fields dropped:\n%s", out)
	}

	mustExecute(t, opts, "logout")
	mustExecute(t, opts, "register", "--name", "Jane Roe", "-e", "jane@example.com")
	out = mustExecute(t, opts, "profile")
	if strings.Contains(out, "(555) 000-1111") {
		t.Errorf("another user sees the saved profile:\n%s", out)
	}
}

// remote serves a HealthService over bufconn and points the CLI at it.
func remote(t *testing.T) Options {
	t.Helper()
	secret := strings.Repeat("c", 32)
	h := handler.New(catalog.NewStatic(nil), secret,
		handler.WithLoginDelay(0),
		handler.WithClock(func() time.Time { return today }),
	)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(middleware.Auth(secret, handler.PublicMethods...)))
	handler.RegisterHealthServiceServer(srv, h)
	lis := bufconn.Listen(1 << 20)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	opts := testOptions(t)
	opts.Source = nil
	opts.Viper.Set("server", "bufnet")
	opts.Dial = func(string) (*handler.Client, error) { return handler.NewClient(conn), nil }
	return opts
}

func TestRemoteSession(t *testing.T) {
	opts := remote(t)
	mustExecute(t, opts, "login", "-e", "john@example.com")

	// a fresh run restores the token from the session database
	out := mustExecute(t, opts, "appointments", "--search", "chen")
	if !strings.Contains(out, "Dr. Michael Chen") || strings.Contains(out, "Dr. Sarah Johnson") {
		t.Errorf("remote appointments:\n%s", out)
	}
	out = mustExecute(t, opts, "calendar", "--year", "2025", "--month", "6")
	if !strings.Contains(out, "15*") {
		t.Errorf("remote calendar:\n%s", out)
	}
	out = mustExecute(t, opts, "dashboard")
	if !strings.Contains(out, "Welcome back, John Doe") {
		t.Errorf("remote dashboard:\n%s", out)
	}

	mustExecute(t, opts, "profile", "edit", "--insurance", "Acme Health")
	out = mustExecute(t, opts, "profile")
	if !strings.Contains(out, "Acme Health") {
		t.Errorf("remote profile:\n%s", out)
	}

	mustExecute(t, opts, "logout")
	if _, err := execute(t, opts, "records"); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("after logout: %v", err)
	}
}

func TestRemoteRejectsForgedSession(t *testing.T) {
	opts := remote(t)
	// a session record without a token: the server refuses the calls
	local := testOptions(t)
	local.Viper = opts.Viper
	local.Viper.Set("server", "")
	mustExecute(t, local, "login", "-e", "john@example.com")

	opts.Viper.Set("server", "bufnet")
	_, err := execute(t, opts, "records")
	if err == nil || !strings.Contains(err.Error(), "log in again") {
		t.Errorf("err = %v", err)
	}
}
