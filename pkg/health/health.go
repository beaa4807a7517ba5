// Package health serves the standard gRPC health protocol, reporting
// SERVING only while every registered dependency answers its ping.
package health

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type Checker interface {
	Ping(ctx context.Context) error
}

type Server struct {
	service  string
	checks   map[string]Checker
	interval time.Duration
	health   *grpchealth.Server
	grpc     *grpc.Server
	logger   *zap.Logger

	mu     sync.RWMutex
	failed map[string]error
	stop   chan struct{}
	once   sync.Once
}

// NewServer registers checks under service. The first check runs on Start.
func NewServer(service string, checks map[string]Checker, interval time.Duration, logger *zap.Logger) *Server {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	hs := grpchealth.NewServer()
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &Server{
		service:  service,
		checks:   checks,
		interval: interval,
		health:   hs,
		grpc:     srv,
		logger:   logger,
		failed:   make(map[string]error),
		stop:     make(chan struct{}),
	}
}

// Check pings every dependency once and publishes the result.
func (s *Server) Check(ctx context.Context) map[string]error {
	failed := make(map[string]error)
	for name, c := range s.checks {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := c.Ping(pingCtx); err != nil {
			failed[name] = err
		}
		cancel()
	}

	status := healthpb.HealthCheckResponse_SERVING
	if len(failed) > 0 {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		for name, err := range failed {
			s.logger.Warn("Dependency unhealthy", zap.String("dependency", name), zap.Error(err))
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(s.service, status)

	s.mu.Lock()
	s.failed = failed
	s.mu.Unlock()
	return failed
}

// Failures returns the result of the most recent Check.
func (s *Server) Failures() map[string]error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]error, len(s.failed))
	for k, v := range s.failed {
		out[k] = v
	}
	return out
}

// HealthServer exposes the underlying health service for in-process callers.
func (s *Server) HealthServer() healthpb.HealthServer {
	return s.health
}

// Start runs the periodic checks and, when port is positive, serves gRPC
// on host:port. It returns once the listener is bound.
func (s *Server) Start(host string, port int) error {
	s.Check(context.Background())
	go s.loop()

	if port <= 0 {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", host, port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	go func() {
		if err := s.grpc.Serve(lis); err != nil {
			s.logger.Error("gRPC health server stopped", zap.Error(err))
		}
	}()
	s.logger.Info("gRPC health server started", zap.String("address", addr))
	return nil
}

func (s *Server) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Check(context.Background())
		}
	}
}

func (s *Server) Stop() {
	s.once.Do(func() {
		close(s.stop)
		s.health.Shutdown()
		s.grpc.GracefulStop()
	})
}
