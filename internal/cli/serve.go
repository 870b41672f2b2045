package cli

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/Leganyst/interview-slots/internal/logger"
	"github.com/Leganyst/interview-slots/internal/service"
)

type ServeCmd struct {
	Addr string `help:"gRPC listen address (overrides GRPC_ADDR)."`
}

func (cmd *ServeCmd) Run(ctx *Context) error {
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// при первом запуске каталог пуст
	n, err := ctx.Engine.Seed(runCtx, ctx.Seeder())
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if n > 0 {
		logger.Info("catalog seeded on startup", "slots", n)
	}

	limiter := service.NewLimiterStore(ctx.Config.RateLimitRPS, ctx.Config.RateLimitBurst)
	limiter.StartJanitor(runCtx)

	grpcServer := service.NewGRPCServer(service.NewBookingService(ctx.Engine, ctx.Config.Location), limiter)

	addr := cmd.Addr
	if addr == "" {
		addr = ctx.Config.GRPCAddr
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	logger.Info("gRPC server listening", "addr", lis.Addr().String(), "storage", ctx.Config.Storage)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("grpc serve: %w", err)
	case <-runCtx.Done():
	}

	logger.Info("shutting down gRPC server")
	grpcServer.GracefulStop()
	return nil
}
