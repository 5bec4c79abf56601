package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/compozy/modhost/engine/host"
	"github.com/compozy/modhost/engine/infra/monitoring"
	"github.com/compozy/modhost/pkg/config"
	"github.com/compozy/modhost/pkg/logger"
	"github.com/compozy/modhost/pkg/version"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	healthPath      = "/healthz"
	healthStatusOK  = "healthy"
	healthStatusBad = "not_ready"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the host with health and metrics endpoints",
		Long: `Bootstrap the configured modules and keep them running behind an HTTP
listener exposing /healthz and, when monitoring is enabled, the metrics path.`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().Duration("check-timeout", 5*time.Second, "Timeout for the connection checks of /healthz")
	cmd.Flags().Duration("shutdown-timeout", 5*time.Second, "Grace period for in-flight requests on shutdown")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("failed to get addr flag: %w", err)
	}
	checkTimeout, err := cmd.Flags().GetDuration("check-timeout")
	if err != nil {
		return fmt.Errorf("failed to get check-timeout flag: %w", err)
	}
	shutdownTimeout, err := cmd.Flags().GetDuration("shutdown-timeout")
	if err != nil {
		return fmt.Errorf("failed to get shutdown-timeout flag: %w", err)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.FromContext(ctx)
	cfg := config.FromContext(ctx)
	svc := monitoring.NewOrNoop(ctx, monitoring.FromAppConfig(cfg))
	svc.SetAsGlobal()
	defer func() {
		if err := svc.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Error("Failed to shutdown monitoring", "error", err)
		}
	}()
	h, err := host.New(ctx, cfg, host.WithMonitoring(svc))
	if err != nil {
		return err
	}
	defer h.Close()
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(ctx, h, svc, checkTimeout),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Debug("Received shutdown signal, initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("Server shutdown completed")
	return nil
}

func newRouter(ctx context.Context, h *host.Host, svc *monitoring.Service, checkTimeout time.Duration) *gin.Engine {
	log := logger.FromContext(ctx)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestMiddleware(log, svc.Meter()))
	r.GET(healthPath, healthHandler(h, svc, checkTimeout))
	if svc.Enabled() {
		r.GET(svc.Path(), gin.WrapH(svc.ExporterHandler()))
	}
	return r
}

// requestMiddleware logs every request and counts it by route and status.
func requestMiddleware(log logger.Logger, meter metric.Meter) gin.HandlerFunc {
	requests, err := meter.Int64Counter(
		"modhost_http_requests_total",
		metric.WithDescription("HTTP requests served by the host"),
	)
	if err != nil {
		log.Error("Failed to create request counter", "error", err)
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if requests != nil {
			requests.Add(c.Request.Context(), 1, metric.WithAttributes(
				attribute.String("route", route),
				attribute.Int("status_code", status),
			))
		}
		log.Info("Request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// healthHandler reports the host as ready when every data context answers.
// Skipped modules are listed but do not affect readiness.
func healthHandler(h *host.Host, svc *monitoring.Service, checkTimeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		defer cancel()
		rows := checkRows(h.Check(ctx), h.Skipped())
		ready := true
		for _, r := range rows {
			if r.Status == statusUnreachable {
				ready = false
			}
		}
		status := healthStatusOK
		if !ready {
			status = healthStatusBad
		}
		mon := gin.H{"initialized": svc.Enabled()}
		if err := svc.Err(); err != nil {
			mon["error"] = err.Error()
		}
		c.JSON(healthStatusCode(ready), gin.H{
			"data": gin.H{
				"status":      status,
				"ready":       ready,
				"version":     version.Get().Version,
				"connections": rows,
				"monitoring":  mon,
			},
			"message": "Success",
		})
	}
}

func healthStatusCode(ready bool) int {
	if !ready {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
