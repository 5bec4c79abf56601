// Package monitoring exposes host metrics through an OpenTelemetry meter
// backed by a Prometheus exporter on a private registry.
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/compozy/modhost/pkg/logger"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "modhost"

// Service owns the meter provider and the instruments built on it. A
// Service without a provider is a no-op: instruments record nothing and
// the exporter answers 503.
type Service struct {
	cfg      *Config
	meter    metric.Meter
	provider *sdkmetric.MeterProvider
	registry *prom.Registry
	data     *DataMetrics
	system   *systemMetrics
	err      error
}

func noopService(cfg *Config, err error) *Service {
	meter := noop.NewMeterProvider().Meter(meterName)
	dm, _ := NewDataMetrics(meter)
	return &Service{cfg: cfg, meter: meter, data: dm, err: err}
}

// New builds the service described by cfg (DefaultConfig when nil). A
// disabled config yields a no-op service.
func New(ctx context.Context, cfg *Config) (*Service, error) {
	log := logger.FromContext(ctx)
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		log.Debug("Monitoring disabled")
		return noopService(cfg, nil), nil
	}
	registry := prom.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(meterName)
	dm, err := NewDataMetrics(meter)
	if err != nil {
		return nil, errors.Join(err, provider.Shutdown(ctx))
	}
	log.Info("Monitoring enabled", "path", cfg.Path)
	return &Service{
		cfg:      cfg,
		meter:    meter,
		provider: provider,
		registry: registry,
		data:     dm,
		system:   newSystemMetrics(ctx, meter),
	}, nil
}

// NewOrNoop is New that degrades to a no-op service on error. The error
// stays available through Err.
func NewOrNoop(ctx context.Context, cfg *Config) *Service {
	svc, err := New(ctx, cfg)
	if err == nil {
		return svc
	}
	logger.FromContext(ctx).Error("Monitoring unavailable, metrics are discarded", "error", err)
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return noopService(cfg, err)
}

func (s *Service) Meter() metric.Meter { return s.meter }

// Data returns the data-layer instruments; Data().Decorate plugs into the
// context factory.
func (s *Service) Data() *DataMetrics { return s.data }

func (s *Service) Path() string { return s.cfg.Path }

// Enabled reports whether metrics are exported.
func (s *Service) Enabled() bool { return s.provider != nil }

// Err is the error that turned the service into a no-op, if any.
func (s *Service) Err() error { return s.err }

// SetAsGlobal installs the provider as the global OpenTelemetry one.
func (s *Service) SetAsGlobal() {
	if s.provider != nil {
		otel.SetMeterProvider(s.provider)
	}
}

func (s *Service) ExporterHandler() http.Handler {
	if s.registry == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "monitoring disabled", http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

func (s *Service) Shutdown(ctx context.Context) error {
	var errs []error
	if s.data != nil {
		errs = append(errs, s.data.Close())
	}
	if s.system != nil {
		errs = append(errs, s.system.close())
	}
	if s.provider != nil {
		errs = append(errs, s.provider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
