package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/folio/internal/assets"
	"github.com/nfrund/folio/internal/auth"
	"github.com/nfrund/folio/internal/config"
	"github.com/nfrund/folio/internal/database"
	"github.com/nfrund/folio/internal/domain"
	"github.com/nfrund/folio/internal/handlers"
	"github.com/nfrund/folio/internal/middleware"
	"github.com/nfrund/folio/internal/portfolio"
	"github.com/nfrund/folio/internal/pubsub"
	"github.com/nfrund/folio/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Dependencies are the backends a Server runs on. New opens them from
// configuration; tests pass in-memory versions to NewWithDependencies.
type Dependencies struct {
	Portfolios domain.PortfolioRepository
	Admins     domain.AdminRepository
	Assets     storage.Store
	// Tracer traces asset release events. Nil disables tracing.
	Tracer trace.Tracer
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E   *echo.Echo
	Cfg config.Provider

	bridge  *pubsub.WatermillBridge
	worker  *assets.ReleaseWorker
	closers []func(context.Context) error

	authSvc          *auth.Service
	portfolioSvc     *portfolio.Service
	authHandler      *handlers.AuthHandler
	portfolioHandler *handlers.PortfolioHandler
	localAssets      *storage.AferoStore
	metrics          *prometheus.Registry
}

// New opens the configured database, asset store and tracer and builds a
// Server on top of them.
func New(ctx context.Context, cfg config.Provider) (*Server, error) {
	var closers []func(context.Context) error
	fail := func(err error) (*Server, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i](ctx)
		}
		return nil, err
	}

	var deps Dependencies

	switch cfg.GetStoreBackend() {
	case config.StoreBackendMemory:
		slog.Warn("Using in-memory document store; data is lost on restart", "event", "store_backend_memory")
		deps.Portfolios = database.NewMemoryPortfolioStore()
		deps.Admins = database.NewMemoryAdminStore()
	default:
		conn := database.NewConnection(cfg)
		if err := conn.Connect(ctx); err != nil {
			return fail(fmt.Errorf("connect to database: %w", err))
		}
		conn.StartMonitoring()
		closers = append(closers, conn.Close)
		deps.Portfolios = database.NewSurrealPortfolioStore(conn)
		deps.Admins = database.NewSurrealAdminStore(conn)
	}

	switch cfg.GetAssetBackend() {
	case config.AssetBackendGCS:
		gcs, err := storage.NewGCSStore(ctx, storage.GCSConfig{
			Bucket:       cfg.GetGCSBucket(),
			CDNDomain:    cfg.GetGCSCDNDomain(),
			EmulatorHost: cfg.GetStorageEmulatorHost(),
		})
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func(context.Context) error { return gcs.Close() })
		deps.Assets = gcs
	default:
		local, err := storage.NewLocalStore(cfg.GetAssetLocalDir(), cfg.GetAssetPublicBaseURL())
		if err != nil {
			return fail(err)
		}
		deps.Assets = local
	}

	tracer, shutdownTracing, err := pubsub.SetupOTel(ctx, pubsub.LoadTracingConfigFromEnv())
	if err != nil {
		return fail(fmt.Errorf("setup tracing: %w", err))
	}
	closers = append(closers, func(context.Context) error {
		shutdownTracing()
		return nil
	})
	deps.Tracer = tracer

	s := NewWithDependencies(cfg, deps)
	s.closers = closers
	return s, nil
}

// NewWithDependencies wires services, handlers and middleware around deps.
// Routes are registered separately by RegisterRoutes.
func NewWithDependencies(cfg config.Provider, deps Dependencies) *Server {
	tracer := deps.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("folio")
	}

	bridge := pubsub.NewWatermillBridgeWithTracer(tracer)
	releaser := assets.NewReleaser(bridge, deps.Assets)
	worker := assets.NewReleaseWorker(bridge, deps.Assets, tracer)

	authSvc := auth.NewService(deps.Admins, cfg.GetJWTSecret(), cfg.GetJWTTTL())
	portfolioSvc := portfolio.NewService(deps.Portfolios, releaser)
	uploader := assets.NewUploader(deps.Assets)

	s := &Server{
		E:                echo.New(),
		Cfg:              cfg,
		bridge:           bridge,
		worker:           worker,
		authSvc:          authSvc,
		portfolioSvc:     portfolioSvc,
		authHandler:      handlers.NewAuthHandler(authSvc),
		portfolioHandler: handlers.NewPortfolioHandler(portfolioSvc, uploader, cfg.GetMaxUploadBytes()),
		metrics:          prometheus.NewRegistry(),
	}
	if local, ok := deps.Assets.(*storage.AferoStore); ok {
		s.localAssets = local
	}

	s.setupMiddleware()
	setupErrorHandling(s.E, cfg.GetMaxUploadBytes())
	return s
}

func (s *Server) setupMiddleware() {
	e := s.E
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()

	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			middleware.FromContext(c.Request().Context()).Error("Recovered from panic",
				"event", "panic_recovered",
				"error", err,
				"stack_trace", string(stack))
			return err
		},
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     s.Cfg.GetCORSOrigins(),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "folio",
		Registerer: s.metrics,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	if limit := s.Cfg.GetMaxUploadBytes(); limit > 0 {
		// Room for the multipart envelope around a file of exactly limit bytes.
		e.Use(echomw.BodyLimit(strconv.FormatInt(limit+limit/10, 10)))
	}
}

// Gatherer exposes the request metrics together with the process-wide
// default registry, where the upload counters live.
func (s *Server) Gatherer() prometheus.Gatherer {
	return prometheus.Gatherers{s.metrics, prometheus.DefaultGatherer}
}

// Portfolio returns the document service, useful for tests.
func (s *Server) Portfolio() *portfolio.Service {
	return s.portfolioSvc
}

// Shutdown stops the HTTP server, the release worker and every backend
// opened by New.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.E.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := s.bridge.Close(); err != nil {
		errs = append(errs, fmt.Errorf("pubsub close: %w", err))
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
