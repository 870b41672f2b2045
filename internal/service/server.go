package service

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer собирает gRPC-сервер с сервисом записи и цепочкой интерсепторов.
// limiter == nil отключает ограничение частоты.
func NewGRPCServer(svc BookingServer, limiter *LimiterStore, opts ...grpc.ServerOption) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{LoggingInterceptor()}
	if limiter != nil {
		interceptors = append(interceptors, RateLimitInterceptor(limiter))
	}

	opts = append(opts, grpc.ChainUnaryInterceptor(interceptors...))
	srv := grpc.NewServer(opts...)
	RegisterBookingServer(srv, svc)
	reflection.Register(srv)
	return srv
}
