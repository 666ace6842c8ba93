package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wolfeidau/orgchart/internal/api"
	httpmiddleware "github.com/wolfeidau/orgchart/internal/http"
	"github.com/wolfeidau/orgchart/internal/logger"
	"github.com/wolfeidau/orgchart/internal/orgtree"
	"github.com/wolfeidau/orgchart/internal/service"
	"github.com/wolfeidau/orgchart/internal/telemetry"
)

type ServerCmd struct {
	// Server configuration
	Listen          string        `help:"HTTP server listen address" default:"0.0.0.0:3000" env:"ORGCHART_LISTEN"`
	ShutdownTimeout time.Duration `help:"how long to wait for in-flight requests on shutdown" default:"15s" env:"ORGCHART_SHUTDOWN_TIMEOUT"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins" default:"*" env:"ORGCHART_CORS_ORIGINS"`

	// Observability
	Telemetry   bool    `help:"export traces and metrics over OTLP" default:"false" env:"ORGCHART_TELEMETRY"`
	SampleRatio float64 `help:"fraction of traces to sample" default:"1.0" env:"ORGCHART_TRACE_SAMPLE_RATIO"`

	StoreFlags `embed:""`
	CacheFlags `embed:""`
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if c.Telemetry {
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
			ServiceName: "orgchart",
			Version:     globals.Version,
			SampleRatio: c.SampleRatio,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	b, err := openBackends(ctx, c.StoreFlags, c.CacheFlags)
	if err != nil {
		return err
	}
	defer b.Close()

	view := orgtree.NewView(b.groups, b.people, b.cache)
	handler := api.NewHandler(
		service.NewGroupService(b.groups, b.people, view),
		service.NewPersonService(b.people, b.groups, view),
		view,
	)

	gzip, err := httpmiddleware.Gzip()
	if err != nil {
		return fmt.Errorf("failed to create gzip middleware: %w", err)
	}

	var root http.Handler = httpmiddleware.Chain(handler.Router(),
		httpmiddleware.RequestID(),
		httpmiddleware.ClientIP(),
		logger.NewRequests(log, httpmiddleware.LogFields).Handler,
		gzip,
		withCORS(c.CORSOrigins),
	)
	if c.Telemetry {
		root = otelhttp.NewHandler(root, "orgchart")
	}

	srv := configureHTTPServer(c.Listen, root)
	// requests keep the logger but are not cancelled by the shutdown signal
	srv.BaseContext = func(_ net.Listener) context.Context { return context.WithoutCancel(ctx) }

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Msg("Starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}

	return nil
}

func withCORS(allowedOrigins []string) httpmiddleware.Middleware {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", httpmiddleware.RequestIDHeader},
		ExposedHeaders: []string{httpmiddleware.RequestIDHeader},
	}).Handler
}
