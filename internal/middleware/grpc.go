package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor logs each call and turns domain errors into
// gRPC status errors. Unknown failures become Internal without detail.
func UnaryServerInterceptor(logger *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		st := StatusFromError(err)
		entry := logger.WithFields(logrus.Fields{
			"method":     info.FullMethod,
			"code":       st.Code().String(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		switch st.Code() {
		case codes.OK:
			entry.Info("gRPC call completed")
		case codes.Internal, codes.Unknown:
			entry.WithError(err).Error("gRPC call failed")
		default:
			entry.Warn("gRPC call rejected")
		}

		if err != nil {
			return nil, st.Err()
		}
		return resp, nil
	}
}

func StatusFromError(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	if st, ok := status.FromError(err); ok {
		return st
	}

	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		return status.New(codes.InvalidArgument, validation.Error())
	case errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrFlightNotFound),
		errors.Is(err, domain.ErrScheduleNotFound):
		return status.New(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientInventory),
		errors.Is(err, domain.ErrAlreadyCancelled):
		return status.New(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.New(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.New(codes.DeadlineExceeded, err.Error())
	default:
		return status.New(codes.Internal, "internal error")
	}
}
