package middleware

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GRPCLogger logs every unary call with its method, code and duration.
func GRPCLogger(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	code := status.Code(err)

	var event *zerolog.Event
	switch code {
	case codes.OK, codes.NotFound, codes.InvalidArgument:
		event = log.Info()
	default:
		event = log.Error().Err(err)
	}

	event.
		Str("method", info.FullMethod).
		Str("code", code.String()).
		Dur("duration", time.Since(start)).
		Msg("gRPC request processed")

	return resp, err
}
