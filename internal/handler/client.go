package handler

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/calendar"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/catalog"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/filter"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/session"
)

// Client talks to a HealthService. It authenticates sessions and serves as
// a catalog source for the terminal client.
type Client struct {
	conn  *grpc.ClientConn
	owned bool

	mu    sync.Mutex
	token string
}

var (
	_ catalog.Source        = (*Client)(nil)
	_ session.Authenticator = (*Client)(nil)
)

// Dial connects to addr (e.g. "localhost:50051") without TLS.
func Dial(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn, owned: true}, nil
}

// NewClient uses conn; Close leaves it open.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

func (c *Client) Close() error {
	if !c.owned {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) SetToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

func (c *Client) call(ctx context.Context, method string, req, resp any) error {
	in, err := Encode(req)
	if err != nil {
		return err
	}
	if tok := c.Token(); tok != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+tok)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(method), in, out); err != nil {
		return err
	}
	return Decode(out, resp)
}

func (c *Client) Login(ctx context.Context, email, password string) (model.User, error) {
	var resp AuthResponse
	if err := c.call(ctx, "Login", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return model.User{}, err
	}
	c.SetToken(resp.Token)
	return resp.User, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (model.User, error) {
	var resp AuthResponse
	if err := c.call(ctx, "Register", RegisterRequest{Name: name, Email: email, Password: password}, &resp); err != nil {
		return model.User{}, err
	}
	c.SetToken(resp.Token)
	return resp.User, nil
}

// ListAppointments filters on the server.
func (c *Client) ListAppointments(ctx context.Context, q filter.Query) ([]model.Appointment, error) {
	var resp AppointmentList
	err := c.call(ctx, "ListAppointments", ListRequest{Search: q.Term, Status: q.Status}, &resp)
	return resp.Appointments, err
}

func (c *Client) ListRecords(ctx context.Context, q filter.Query) ([]model.MedicalRecord, error) {
	var resp RecordList
	err := c.call(ctx, "ListRecords", ListRequest{Search: q.Term, Status: q.Status}, &resp)
	return resp.Records, err
}

func (c *Client) ListMedications(ctx context.Context, q filter.Query) ([]model.Medication, error) {
	var resp MedicationList
	err := c.call(ctx, "ListMedications", ListRequest{Search: q.Term, Status: q.Status}, &resp)
	return resp.Medications, err
}

func (c *Client) Calendar(ctx context.Context, m calendar.Month) (calendar.View, error) {
	var v calendar.View
	err := c.call(ctx, "GetCalendar", CalendarRequest{Year: &m.Year, Month: &m.Month}, &v)
	return v, err
}

func (c *Client) Dashboard(ctx context.Context) (catalog.Dashboard, error) {
	var d catalog.Dashboard
	err := c.call(ctx, "GetDashboard", struct{}{}, &d)
	return d, err
}

func (c *Client) Appointments(ctx context.Context) ([]model.Appointment, error) {
	return c.ListAppointments(ctx, filter.Query{})
}

func (c *Client) Records(ctx context.Context) ([]model.MedicalRecord, error) {
	return c.ListRecords(ctx, filter.Query{})
}

func (c *Client) Medications(ctx context.Context) ([]model.Medication, error) {
	return c.ListMedications(ctx, filter.Query{})
}

// Metrics come with the dashboard; there is no separate method.
func (c *Client) Metrics(ctx context.Context) ([]model.HealthMetric, error) {
	d, err := c.Dashboard(ctx)
	return d.Metrics, err
}

// Profile returns the token holder's profile; u is not sent.
func (c *Client) Profile(ctx context.Context, _ model.User) (model.Profile, error) {
	var p model.Profile
	err := c.call(ctx, "GetProfile", struct{}{}, &p)
	return p, err
}

func (c *Client) SaveProfile(ctx context.Context, _ model.User, p model.Profile) error {
	var saved model.Profile
	return c.call(ctx, "UpdateProfile", p, &saved)
}
