package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	registryv1 "github.com/Douglas360/smart-contracts/api/registry/v1"
	"github.com/Douglas360/smart-contracts/internal/platform/telemetry/metrics"
	"github.com/Douglas360/smart-contracts/internal/platform/timeouts"
	"github.com/Douglas360/smart-contracts/internal/services/registry/api/grpc/interceptors"
	grpcmeta "github.com/Douglas360/smart-contracts/internal/services/registry/api/grpc/metadata"
	"github.com/Douglas360/smart-contracts/internal/services/registry/api/grpc/tokens"
	httpapi "github.com/Douglas360/smart-contracts/internal/services/registry/api/http"
	"github.com/Douglas360/smart-contracts/internal/services/registry/callerauth"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/registry"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
	"github.com/Douglas360/smart-contracts/internal/services/registry/feed"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/integrity"
)

// Config holds everything the registry process needs after parsing.
type Config struct {
	// GRPCAddr is the gRPC listen address, e.g. ":8095" or "127.0.0.1:0".
	GRPCAddr string
	// HTTPAddr is the HTTP listen address; empty disables HTTP.
	HTTPAddr  string
	Authority token.Address
	// Backend is owned by the server once New succeeds.
	Backend storage.Backend
	Keyring *integrity.Keyring
	// Grants verifies caller grants; nil accepts none.
	Grants          *callerauth.Config
	InsecureCallers bool
	AllowedOrigins  []string
	// Metrics defaults to a fresh registry when nil.
	Metrics *metrics.Metrics
}

// Server hosts the registry service.
type Server struct {
	listener     net.Listener
	grpcServer   *grpc.Server
	health       *health.Server
	backend      storage.Backend
	registry     *registry.Registry
	hub          *feed.Hub
	httpListener net.Listener
	httpServer   *http.Server
}

// New opens the registry over cfg.Backend and binds its listeners.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.Backend == nil {
		return nil, errors.New("storage backend is required")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}

	hub := feed.NewHub(feed.WithObserver(cfg.Metrics))
	reg, err := registry.Open(ctx, cfg.Backend, cfg.Authority,
		registry.WithPublisher(hub),
		registry.WithRecorder(cfg.Metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	listener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}

	var httpListener net.Listener
	var httpServer *http.Server
	if strings.TrimSpace(cfg.HTTPAddr) != "" {
		httpListener, err = net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			_ = listener.Close()
			return nil, fmt.Errorf("listen on http addr %s: %w", cfg.HTTPAddr, err)
		}
		httpServer = &http.Server{
			Handler: httpapi.NewHandler(httpapi.Config{
				Registry:       reg,
				Journal:        cfg.Backend,
				Hub:            hub,
				Metrics:        cfg.Metrics.Handler(),
				AllowedOrigins: cfg.AllowedOrigins,
			}),
			ReadHeaderTimeout: timeouts.ReadHeader,
		}
	}

	auth := interceptors.Authenticator{
		Grants:   cfg.Grants,
		Insecure: cfg.InsecureCallers,
		Public:   publicMethods(),
	}
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.MetricsUnaryInterceptor(cfg.Metrics),
			grpcmeta.UnaryServerInterceptor(nil),
			interceptors.ErrorUnaryInterceptor(),
			interceptors.AuthUnaryInterceptor(auth),
		),
		grpc.ChainStreamInterceptor(
			interceptors.MetricsStreamInterceptor(cfg.Metrics),
			grpcmeta.StreamServerInterceptor(nil),
			interceptors.ErrorStreamInterceptor(),
			interceptors.AuthStreamInterceptor(auth),
		),
	)
	registryv1.RegisterTokenRegistryServer(grpcServer, tokens.NewService(reg, cfg.Backend, cfg.Keyring, hub))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(registryv1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:     listener,
		grpcServer:   grpcServer,
		health:       healthServer,
		backend:      cfg.Backend,
		registry:     reg,
		hub:          hub,
		httpListener: httpListener,
		httpServer:   httpServer,
	}, nil
}

// Addr returns the gRPC listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// HTTPAddr returns the HTTP listener address, empty when HTTP is disabled.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// Registry returns the registry core served by s.
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// Run creates and serves a registry server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	srv, err := New(ctx, cfg)
	if err != nil {
		if cfg.Backend != nil {
			_ = cfg.Backend.Close()
		}
		return err
	}
	return srv.Serve(ctx)
}

// Serve starts both listeners and blocks until they stop or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeBackend()

	info := s.registry.Info()
	log.Printf("registry authority %s, %d tokens, journal head %d", info.Authority, info.TokenCount, info.LastSeq)
	log.Printf("registry gRPC server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	httpErr := make(chan error, 1)
	if s.httpServer != nil && s.httpListener != nil {
		log.Printf("registry HTTP server listening at %v", s.httpListener.Addr())
		go func() {
			httpErr <- s.httpServer.Serve(s.httpListener)
		}()
	}

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}

	shutdownGRPC := func() {
		s.health.Shutdown()
		s.hub.Close()
		s.grpcServer.GracefulStop()
	}
	shutdownHTTP := func() {
		if s.httpServer == nil {
			return
		}
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown HTTP server: %v", err)
		}
	}

	select {
	case <-ctx.Done():
		shutdownGRPC()
		shutdownHTTP()
		return handleErr(<-serveErr)
	case err := <-serveErr:
		shutdownHTTP()
		return handleErr(err)
	case err := <-httpErr:
		shutdownGRPC()
		grpcErr := <-serveErr
		if handled := handleErr(grpcErr); handled != nil {
			return handled
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

func (s *Server) closeBackend() {
	if s == nil || s.backend == nil {
		return
	}
	if err := s.backend.Close(); err != nil {
		log.Printf("close registry store: %v", err)
	}
}

// publicMethods lists methods served to anonymous callers: registry reads and
// the health service clients query before they present credentials.
func publicMethods() map[string]bool {
	public := registryv1.ReadMethods()
	public[grpc_health_v1.Health_Check_FullMethodName] = true
	public[grpc_health_v1.Health_Watch_FullMethodName] = true
	return public
}
