package api

import (
	"context"
	"errors"

	"github.com/solatis/policystore/internal/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps store and request errors to gRPC status codes.
// Validation errors map to INVALID_ARGUMENT, duplicates to ALREADY_EXISTS,
// missing rows to NOT_FOUND and everything else to UNAVAILABLE.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, errMalformed),
		errors.Is(err, types.ErrInvalidIdentifier),
		errors.Is(err, types.ErrTooManyFields),
		errors.Is(err, types.ErrInvalidFieldIndex),
		errors.Is(err, types.ErrInvalidFilter):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, types.ErrConstraintViolation):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, types.ErrRowNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Unavailable, err.Error())
	}
}
