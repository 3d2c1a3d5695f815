package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
)

// toStatus maps domain errors to gRPC status codes. Validation and lookup
// messages are passed through; everything else gets a fixed message.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errs.ErrInvalid):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, errs.ErrInsufficientFunds):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, errs.ErrLocked):
		return status.Error(codes.FailedPrecondition, "note is locked")
	case errors.Is(err, errs.ErrConfirmationRequired):
		return status.Error(codes.FailedPrecondition, "confirmation required")
	case errors.Is(err, errs.ErrInvalidPassword):
		return status.Error(codes.PermissionDenied, "invalid password")
	case errors.Is(err, errs.ErrForbidden):
		return status.Error(codes.PermissionDenied, "developer mode required")
	case errors.Is(err, errs.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, "rate limited")
	case errors.Is(err, errs.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, errs.ErrConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, errs.ErrAIUnavailable):
		return status.Error(codes.Unavailable, "text processor unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	default:
		return status.Error(codes.Internal, "internal")
	}
}
