package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/ldc-construction/internal"
	"github.com/frahmantamala/ldc-construction/internal/audit"
	auditPostgres "github.com/frahmantamala/ldc-construction/internal/audit/postgres"
	"github.com/frahmantamala/ldc-construction/internal/auth"
	authPostgres "github.com/frahmantamala/ldc-construction/internal/auth/postgres"
	"github.com/frahmantamala/ldc-construction/internal/hierarchy"
	hierarchyPostgres "github.com/frahmantamala/ldc-construction/internal/hierarchy/postgres"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
	tenancyPostgres "github.com/frahmantamala/ldc-construction/internal/tenancy/postgres"
	"github.com/frahmantamala/ldc-construction/internal/transport"
	"github.com/frahmantamala/ldc-construction/internal/transport/middleware"
	"github.com/frahmantamala/ldc-construction/internal/transport/rest"
	"github.com/frahmantamala/ldc-construction/internal/user"
	userPostgres "github.com/frahmantamala/ldc-construction/internal/user/postgres"
	"github.com/frahmantamala/ldc-construction/internal/volunteer"
	volunteerPostgres "github.com/frahmantamala/ldc-construction/internal/volunteer/postgres"
	"github.com/frahmantamala/ldc-construction/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config       *internal.Config
	DB           *sqlx.DB
	Gorm         *gorm.DB
	Router       *chi.Mux
	Logger       *slog.Logger
	Registry     *prometheus.Registry
	LoginLimiter *middleware.RateLimiter
	Dispatcher   *audit.Dispatcher
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr, "env", deps.Config.Server.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		deps.shutdown(ctx)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

// shutdown drains background work before the pool closes.
func (d *Dependencies) shutdown(ctx context.Context) {
	d.LoginLimiter.Stop()
	if d.Dispatcher != nil {
		d.Dispatcher.Shutdown(ctx)
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	auditRepo := auditPostgres.NewAuditRepository(deps.Gorm)
	var sink audit.Sink
	if cfg.Audit.Async {
		deps.Dispatcher = audit.NewDispatcher(auditRepo, audit.DispatcherConfig{
			Workers:   cfg.Audit.Workers,
			QueueSize: cfg.Audit.QueueSize,
		}, lg)
		sink = deps.Dispatcher
	} else {
		sink = audit.NewSyncSink(auditRepo, lg)
	}
	recorder := audit.NewRecorder(sink, lg)

	scopes := tenancyPostgres.NewScopeRepository(deps.Gorm)
	policy := tenancy.NewPolicy(scopes)
	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)

	handlers := rest.Handlers{
		Auth:    auth.NewHandler(base, auth.NewService(authPostgres.NewRepository(deps.Gorm), tokens, recorder, lg)),
		Tenancy: tenancy.NewMiddleware(base, tenancy.NewResolver(scopes, lg)),
		Hierarchy: hierarchy.NewHandler(base, hierarchy.NewService(
			hierarchyPostgres.NewHierarchyRepository(deps.Gorm),
			hierarchyPostgres.NewDependencyCounter(deps.DB),
			policy, recorder, lg,
		), cfg.Cookie.Secure),
		Volunteer: volunteer.NewHandler(base, volunteer.NewService(volunteerPostgres.NewVolunteerRepository(deps.Gorm), policy, recorder, lg)),
		User:      user.NewHandler(base, user.NewService(userPostgres.NewUserRepository(deps.Gorm), policy, recorder, lg)),
		Audit:     audit.NewHandler(base, audit.NewService(auditRepo, recorder, lg)),
	}

	opts := rest.Options{
		AllowedOrigins: cfg.Server.Origins(),
		LoginLimiter:   deps.LoginLimiter,

		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
	}
	if deps.Dispatcher != nil {
		opts.HealthChecks = append(opts.HealthChecks, rest.HealthCheck{Name: "audit_dispatcher", Check: deps.Dispatcher.Check})
	}
	if cfg.Observability.Metrics.Enabled {
		opts.Metrics = middleware.NewHTTPMetrics(deps.Registry)
		opts.MetricsPath = cfg.Observability.Metrics.Path
		opts.MetricsHandler = promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry})
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB, handlers, opts, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := setup()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, "postgres"),
	)
	audit.RegisterMetrics(reg)

	return &Dependencies{
		Config:       config,
		Logger:       logger.LoggerWrapper(),
		DB:           db,
		Gorm:         gdb,
		Router:       chi.NewRouter(),
		Registry:     reg,
		LoginLimiter: middleware.NewRateLimiter(config.RateLimit.LoginPerSecond, config.RateLimit.LoginBurst),
	}, nil
}
