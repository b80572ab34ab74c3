package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/calendar"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/catalog"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/filter"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/middleware"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

// rangeSource is implemented by sources that can list one month without
// loading every appointment.
type rangeSource interface {
	AppointmentsBetween(ctx context.Context, from, to string) ([]model.Appointment, error)
}

func (h *Handler) user(ctx context.Context) (model.User, error) {
	u, ok := middleware.UserFromContext(ctx)
	if !ok {
		return model.User{}, status.Error(codes.Unauthenticated, "not signed in")
	}
	return u, nil
}

func (h *Handler) listQuery(ctx context.Context, in *structpb.Struct, kind string) (filter.Query, error) {
	if _, err := h.user(ctx); err != nil {
		return filter.Query{}, err
	}
	var req ListRequest
	if err := h.decode(in, &req); err != nil {
		return filter.Query{}, err
	}
	q := filter.Query{Term: req.Search, Status: req.Status}
	if err := filter.Check(kind, q); err != nil {
		return filter.Query{}, h.toStatus(ctx, err)
	}
	return q, nil
}

func (h *Handler) ListAppointments(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	q, err := h.listQuery(ctx, in, "appointments")
	if err != nil {
		return nil, err
	}
	appts, err := h.src.Appointments(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return h.reply(AppointmentList{Appointments: filter.Appointments(appts, q)})
}

func (h *Handler) ListRecords(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	q, err := h.listQuery(ctx, in, "records")
	if err != nil {
		return nil, err
	}
	recs, err := h.src.Records(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return h.reply(RecordList{Records: filter.Records(recs, q)})
}

func (h *Handler) ListMedications(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	q, err := h.listQuery(ctx, in, "medications")
	if err != nil {
		return nil, err
	}
	meds, err := h.src.Medications(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return h.reply(MedicationList{Medications: filter.Medications(meds, q)})
}

func (h *Handler) GetCalendar(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := h.user(ctx); err != nil {
		return nil, err
	}
	var req CalendarRequest
	if err := h.decode(in, &req); err != nil {
		return nil, err
	}
	m := calendar.FromTime(h.now())
	if req.Year != nil {
		m.Year = *req.Year
	}
	if req.Month != nil {
		m.Month = *req.Month
	}
	if !m.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "invalid month %d/%d", m.Year, m.Month)
	}

	var appts []model.Appointment
	var err error
	if rs, ok := h.src.(rangeSource); ok {
		appts, err = rs.AppointmentsBetween(ctx, m.Date(1), m.Date(m.Days()))
	} else {
		appts, err = h.src.Appointments(ctx)
	}
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return h.reply(calendar.NewView(m, appts))
}

func (h *Handler) GetDashboard(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	u, err := h.user(ctx)
	if err != nil {
		return nil, err
	}
	d, err := catalog.BuildDashboard(ctx, h.src, u, h.now())
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return h.reply(d)
}

func (h *Handler) GetProfile(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	u, err := h.user(ctx)
	if err != nil {
		return nil, err
	}
	p, err := h.src.Profile(ctx, u)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return h.reply(p)
}

// UpdateProfile replaces both profile sections and returns what was saved.
func (h *Handler) UpdateProfile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	u, err := h.user(ctx)
	if err != nil {
		return nil, err
	}
	var p model.Profile
	if err := h.decode(in, &p); err != nil {
		return nil, err
	}
	p.UserID = u.ID
	if err := h.src.SaveProfile(ctx, u, p); err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return h.reply(p)
}
