package monitoring

import (
	"context"
	"time"

	"github.com/compozy/modhost/pkg/logger"
	"github.com/compozy/modhost/pkg/version"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// systemMetrics reports build information and uptime.
type systemMetrics struct {
	start        time.Time
	registration metric.Registration
}

func newSystemMetrics(ctx context.Context, meter metric.Meter) *systemMetrics {
	log := logger.FromContext(ctx)
	s := &systemMetrics{start: time.Now()}
	buildInfo, err := meter.Int64ObservableGauge(
		"modhost_build_info",
		metric.WithDescription("Build information (value=1)"),
	)
	if err != nil {
		log.Error("Failed to create build info gauge", "error", err)
		return s
	}
	uptime, err := meter.Float64ObservableGauge(
		"modhost_uptime_seconds",
		metric.WithDescription("Host uptime in seconds"),
	)
	if err != nil {
		log.Error("Failed to create uptime gauge", "error", err)
		return s
	}
	build := version.Get()
	attrs := metric.WithAttributes(
		attribute.String("version", build.Version),
		attribute.String("commit_hash", build.CommitHash),
		attribute.String("go_version", build.GoVersion),
	)
	s.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(buildInfo, 1, attrs)
		o.ObserveFloat64(uptime, time.Since(s.start).Seconds())
		return nil
	}, buildInfo, uptime)
	if err != nil {
		log.Error("Failed to register system metrics callback", "error", err)
	}
	return s
}

func (s *systemMetrics) close() error {
	if s.registration == nil {
		return nil
	}
	return s.registration.Unregister()
}
