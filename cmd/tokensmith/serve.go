package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/vitwit/tokensmith"
	"github.com/vitwit/tokensmith/logger"
	"github.com/vitwit/tokensmith/metrics"
)

const shutdownTimeout = 10 * time.Second

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the generation gateway",
		Long: `Run the HTTP gateway serving POST /api/generate-token and GET /api/get-prices.

The model API key is read from TOKENSMITH_API_KEY or API_KEY. Without it the
gateway still starts and answers generation requests with a configuration error.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadedConfig

	log, err := newLogger()
	if err != nil {
		return err
	}
	if z, ok := log.(*logger.ZapLogger); ok {
		defer func() { _ = z.Sync() }()
	}

	opts := []tokensmith.Option{tokensmith.WithLogger(log)}
	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder, err := metrics.NewPrometheusRecorder(reg)
		if err != nil {
			return err
		}
		opts = append(opts, tokensmith.WithMetrics(recorder))
	}

	ts, err := tokensmith.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer ts.Close()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := ts.Router()
	if reg != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	if err := ts.Service().Ready(); err != nil {
		log.Warn("model API key is not set; generation requests will fail", nil)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info("server started", map[string]any{
		"addr":           srv.Addr,
		"fee_network":    cfg.Payment.DefaultNetwork,
		"verify_payment": cfg.Payment.Verify,
		"model":          cfg.Model.Name,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	log.Info("shutting down server", nil)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	log.Info("server exiting", nil)
	return nil
}
