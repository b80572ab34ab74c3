package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/auth"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/session"
)

// Login and Register run the same session rules as the web and terminal
// clients, on a throwaway manager, and hand back a signed token.

func (h *Handler) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req LoginRequest
	if err := h.decode(in, &req); err != nil {
		return nil, err
	}
	u, err := h.manager(ctx).Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return h.issue(u)
}

func (h *Handler) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req RegisterRequest
	if err := h.decode(in, &req); err != nil {
		return nil, err
	}
	u, err := h.manager(ctx).Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return h.issue(u)
}

func (h *Handler) manager(ctx context.Context) *session.Manager {
	m := session.NewManager(session.NewMemoryStore(),
		session.WithDelay(h.delay),
		session.WithLogger(h.log),
	)
	m.Hydrate(ctx)
	return m
}

func (h *Handler) issue(u model.User) (*structpb.Struct, error) {
	tok, err := auth.MakeToken(u, h.secret, h.ttl)
	if err != nil {
		h.log.Error("sign token", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return h.reply(AuthResponse{Token: tok, User: u})
}
