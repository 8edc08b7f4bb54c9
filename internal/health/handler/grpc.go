package handler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger reports whether a backing store is reachable (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Server serves grpc.health.v1.Health. The overall status ("") and every named service
// are SERVING only while all dependencies answer a ping.
type Server struct {
	*health.Server
	deps     map[string]Pinger
	services []string
	log      logrus.FieldLogger
}

// NewServer returns a health server for the given dependencies, keyed by a name used in logs.
// services are the gRPC service names whose status follows the dependencies.
func NewServer(deps map[string]Pinger, services []string, log logrus.FieldLogger) *Server {
	return &Server{Server: health.NewServer(), deps: deps, services: services, log: log}
}

// Register adds the health service to s.
func (s *Server) Register(r grpc.ServiceRegistrar) {
	healthpb.RegisterHealthServer(r, s.Server)
}

// Update pings every dependency once and publishes the result. It returns true when serving.
func (s *Server) Update(ctx context.Context) bool {
	serving := true
	for name, p := range s.deps {
		if p == nil {
			continue
		}
		if err := p.PingContext(ctx); err != nil {
			serving = false
			if s.log != nil {
				s.log.WithError(err).WithField("dependency", name).Warn("health check failed")
			}
		}
	}
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.SetServingStatus("", st)
	for _, svc := range s.services {
		s.SetServingStatus(svc, st)
	}
	return serving
}

// Watch calls Update every interval until ctx is done, then marks everything NOT_SERVING.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Shutdown()
			return
		case <-t.C:
			pingCtx, cancel := context.WithTimeout(ctx, interval)
			s.Update(pingCtx)
			cancel()
		}
	}
}
