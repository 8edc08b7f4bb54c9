package handler

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"employee-directory/backend/internal/identity/service"
	"employee-directory/backend/internal/logging"
	"employee-directory/backend/internal/security"
)

// toStatus maps service and cipher errors to gRPC status errors. The trace id of a
// BusinessError is sent back in the "trace-id" trailer.
func toStatus(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	var (
		be *service.BusinessError
		fe *security.FormatError
		ce *security.CryptoError
	)
	switch {
	case errors.As(err, &fe), errors.As(err, &ce):
		return status.Error(codes.InvalidArgument, "invalid encrypted payload")
	case errors.As(err, &be):
		if be.TraceID != "" {
			_ = grpc.SetTrailer(ctx, metadata.Pairs("trace-id", be.TraceID))
		}
		return status.Error(businessCode(be), be.Error())
	default:
		logging.FromContext(ctx, nil).WithFields(logrus.Fields{"error": err.Error()}).Error("unhandled account error")
		return status.Error(codes.Internal, "internal error")
	}
}

func businessCode(be *service.BusinessError) codes.Code {
	var ve *service.ValidationError
	switch {
	case errors.As(be.Err, &ve):
		return codes.InvalidArgument
	case errors.Is(be, service.ErrNotFound):
		return codes.NotFound
	case errors.Is(be, service.ErrUserExists):
		return codes.AlreadyExists
	case errors.Is(be, service.ErrPermissionDenied), errors.Is(be, service.ErrUserLocked):
		return codes.PermissionDenied
	case errors.Is(be, service.ErrInvalidRole), errors.Is(be, service.ErrWeakPassword):
		return codes.InvalidArgument
	case errors.Is(be, service.ErrInvalidPassword), errors.Is(be, service.ErrInvalidRefreshToken),
		errors.Is(be, service.ErrUnauthenticated):
		return codes.Unauthenticated
	default:
		return codes.FailedPrecondition
	}
}
