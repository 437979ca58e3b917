package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const checkInterval = 10 * time.Second

// GRPCServer serves the standard gRPC health checking protocol for
// orchestrators that probe over gRPC. The status follows the database ping.
type GRPCServer struct {
	port        string
	serviceName string
	srv         *grpc.Server
	health      *health.Server
	pinger      domain.Pinger
	logger      *logger.Logger
}

func NewGRPCServer(port, serviceName string, pinger domain.Pinger, log *logger.Logger) *GRPCServer {
	srv := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)

	return &GRPCServer{
		port:        port,
		serviceName: serviceName,
		srv:         srv,
		health:      hs,
		pinger:      pinger,
		logger:      log.Named("GRPCHealth"),
	}
}

// Start blocks serving until Stop is called.
func (s *GRPCServer) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", ":"+s.port)
	if err != nil {
		return fmt.Errorf("listen for grpc health on %s: %w", s.port, err)
	}
	s.check(ctx)
	go s.watch(ctx)

	s.logger.Info("Starting gRPC health server", zap.String("port", s.port))
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *GRPCServer) watch(ctx context.Context) {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *GRPCServer) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(pingCtx); err != nil {
		s.logger.Warn("Database ping failed, reporting NOT_SERVING", zap.Error(err))
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(s.serviceName, status)
}

func (s *GRPCServer) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
	s.logger.Info("gRPC health server stopped")
}
