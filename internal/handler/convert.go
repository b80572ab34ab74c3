package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/catalog"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/filter"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/session"
)

// Encode turns a JSON-object shaped value into a Struct message.
func Encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return out, nil
}

// Decode fills v from a Struct message. A nil message leaves v untouched.
func Decode(s *structpb.Struct, v any) error {
	if s == nil {
		return nil
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func (h *Handler) decode(in *structpb.Struct, v any) error {
	if err := Decode(in, v); err != nil {
		return status.Error(codes.InvalidArgument, "malformed request")
	}
	return nil
}

func (h *Handler) reply(v any) (*structpb.Struct, error) {
	out, err := Encode(v)
	if err != nil {
		h.log.Error("encode response", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// toStatus maps package errors onto gRPC codes. Unexpected errors are
// logged and hidden from the caller.
func (h *Handler) toStatus(ctx context.Context, err error) error {
	var verr *session.ValidationError
	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Error())
	case errors.Is(err, filter.ErrUnknownStatus):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	h.log.LogAttrs(ctx, slog.LevelError, "request failed", slog.Any("error", err))
	return status.Error(codes.Internal, "internal error")
}
