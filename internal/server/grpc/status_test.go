package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
)

func TestToStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("validation: x: %w", errs.ErrInvalid), codes.InvalidArgument},
		{fmt.Errorf("note n1: %w", errs.ErrNotFound), codes.NotFound},
		{errs.ErrInsufficientFunds, codes.FailedPrecondition},
		{errs.ErrLocked, codes.FailedPrecondition},
		{errs.ErrConfirmationRequired, codes.FailedPrecondition},
		{errs.ErrInvalidPassword, codes.PermissionDenied},
		{errs.ErrForbidden, codes.PermissionDenied},
		{errs.ErrRateLimited, codes.ResourceExhausted},
		{fmt.Errorf("note n1: %w", errs.ErrConflict), codes.Aborted},
		{errs.ErrUnauthorized, codes.Unauthenticated},
		{fmt.Errorf("%w: timeout", errs.ErrAIUnavailable), codes.Unavailable},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{context.Canceled, codes.Canceled},
		{errs.ErrPersistence, codes.Internal},
		{errors.New("whatever"), codes.Internal},
	}
	for _, c := range cases {
		if got := status.Code(toStatus(c.err)); got != c.want {
			t.Fatalf("%v: got %v want %v", c.err, got, c.want)
		}
	}
	if toStatus(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestResult_PersistenceIsUnsaved(t *testing.T) {
	t.Parallel()

	res, err := result(nil, fmt.Errorf("%w: disk", errs.ErrPersistence))
	if err != nil || !res.Unsaved {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	if _, err := result(nil, errs.ErrLocked); status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("err=%v", err)
	}
	res, err = result(nil, nil)
	if err != nil || res.Unsaved {
		t.Fatalf("res=%+v err=%v", res, err)
	}
}
