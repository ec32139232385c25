package server

import (
	"context"
	"time"

	"github.com/solatis/policystore/internal/core/metrics"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// UnaryInterceptor returns gRPC interceptor that bounds each call by timeout
// and records its outcome in logs and metrics.
func UnaryInterceptor(timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		m.ObserveGRPC(info.FullMethod, code.String())
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			logger.Warn("request failed", append(fields, zap.Error(err))...)
		} else {
			logger.Debug("request served", fields...)
		}
		return resp, err
	}
}
