package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/tally/internal/adapters/http/api"
	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/adapters/sheets"
	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/config"
	"github.com/okian/tally/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func main() {
	// Local development convenience; absence of a .env file is normal.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store := buildStore(ctx, cfg, log)
	svc, err := service.New(
		service.WithStore(store),
		service.WithLogger(log.Named("service")),
	)
	if err != nil {
		os.Stderr.WriteString("failed to build service: " + err.Error() + "\n")
		return
	}
	if err := svc.Init(ctx); err != nil {
		// The failover store absorbs backend failures; anything that
		// still escapes Init is fatal misconfiguration.
		os.Stderr.WriteString("failed to initialize store: " + err.Error() + "\n")
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	apiServer := api.NewServer(svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// buildStore composes the store chain: spreadsheet-backed primary when
// credentials resolve, local fallback always, failover on top.
func buildStore(ctx context.Context, cfg *config.Config, log logger.Logger) repository.Store {
	var memOpts []repository.MemOption
	memOpts = append(memOpts, repository.WithMemLogger(log.Named("memstore")))
	if cfg.FallbackPath != "" {
		memOpts = append(memOpts, repository.WithFile(cfg.FallbackPath))
	}
	fallback := repository.NewMemStore(memOpts...)

	var primary repository.Store
	creds, err := cfg.Credentials(ctx)
	switch {
	case errors.Is(err, config.ErrNoCredentials):
		log.Warn(ctx, "no backend credentials; running on local store only")
	case err != nil:
		log.Warn(ctx, "credential resolution failed; running on local store only", logger.Error(err))
	default:
		retryer := sheets.NewRetryer(
			sheets.WithMaxRetries(cfg.MaxRetries),
			sheets.WithBaseDelay(time.Duration(cfg.RetryBaseDelayMS)*time.Millisecond),
		)
		connector := sheets.NewConnector(creds, cfg.WorkbookLocator(),
			sheets.WithRetryer(retryer),
			sheets.WithLogger(log.Named("sheets")),
		)
		primary = repository.NewSheetStore(connector,
			repository.WithSheetLogger(log.Named("sheetstore")),
			repository.WithProvisioner(sheets.NewProvisioner(
				sheets.WithProvisionerLogger(log.Named("provisioner")),
			)),
		)
	}

	return repository.NewFailover(primary, fallback,
		repository.WithFailoverLogger(log.Named("store")),
	)
}
