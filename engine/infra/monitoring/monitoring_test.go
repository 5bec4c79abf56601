package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/compozy/modhost/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, s *Service) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.ExporterHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, s.Path(), http.NoBody))
	return w
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	t.Run("Should build a disabled service from the defaults", func(t *testing.T) {
		svc, err := New(ctx, nil)
		require.NoError(t, err)
		assert.False(t, svc.Enabled())
		assert.Equal(t, "/metrics", svc.Path())
		assert.NotNil(t, svc.Data())
		assert.NotNil(t, svc.Meter())
		assert.NoError(t, svc.Err())
	})
	t.Run("Should reject an invalid path", func(t *testing.T) {
		svc, err := New(ctx, &Config{Enabled: true, Path: ""})
		require.Error(t, err)
		assert.Nil(t, svc)
		assert.Contains(t, err.Error(), "monitoring path cannot be empty")
	})
	t.Run("Should export through a private registry when enabled", func(t *testing.T) {
		svc, err := New(ctx, &Config{Enabled: true, Path: "/metrics"})
		require.NoError(t, err)
		t.Cleanup(func() { _ = svc.Shutdown(ctx) })
		assert.True(t, svc.Enabled())
		assert.NotNil(t, svc.registry)
		assert.NoError(t, svc.Err())
	})
}

func TestConfig(t *testing.T) {
	t.Run("Should reject relative paths", func(t *testing.T) {
		assert.Error(t, (&Config{Path: "metrics"}).Validate())
	})
	t.Run("Should reject query parameters", func(t *testing.T) {
		assert.Error(t, (&Config{Path: "/metrics?x=1"}).Validate())
	})
	t.Run("Should read the host configuration", func(t *testing.T) {
		app := config.Default()
		app.Monitoring.Enabled = true
		app.Monitoring.Path = "/internal/metrics"
		cfg := FromAppConfig(app)
		assert.True(t, cfg.Enabled)
		assert.Equal(t, "/internal/metrics", cfg.Path)
		assert.Equal(t, DefaultConfig(), FromAppConfig(nil))
	})
}

func TestService_ExporterHandler(t *testing.T) {
	ctx := context.Background()
	t.Run("Should answer 503 when disabled", func(t *testing.T) {
		svc, err := New(ctx, &Config{Enabled: false, Path: "/metrics"})
		require.NoError(t, err)
		w := scrape(t, svc)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "monitoring disabled")
	})
	t.Run("Should expose build info and uptime when enabled", func(t *testing.T) {
		svc, err := New(ctx, &Config{Enabled: true, Path: "/metrics"})
		require.NoError(t, err)
		t.Cleanup(func() { _ = svc.Shutdown(ctx) })
		w := scrape(t, svc)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		assert.Contains(t, w.Body.String(), "modhost_uptime_seconds")
		assert.Contains(t, w.Body.String(), "modhost_build_info")
	})
}

func TestService_Shutdown(t *testing.T) {
	ctx := context.Background()
	t.Run("Should shutdown an enabled service", func(t *testing.T) {
		svc, err := New(ctx, &Config{Enabled: true, Path: "/metrics"})
		require.NoError(t, err)
		assert.NoError(t, svc.Shutdown(ctx))
	})
	t.Run("Should shutdown a disabled service", func(t *testing.T) {
		svc, err := New(ctx, &Config{Enabled: false, Path: "/metrics"})
		require.NoError(t, err)
		assert.NoError(t, svc.Shutdown(ctx))
	})
}

func TestNewOrNoop(t *testing.T) {
	ctx := context.Background()
	t.Run("Should degrade to a no-op service on invalid config", func(t *testing.T) {
		svc := NewOrNoop(ctx, &Config{Enabled: true, Path: "invalid-path"})
		assert.False(t, svc.Enabled())
		assert.Error(t, svc.Err())
		assert.NotNil(t, svc.Meter())
		assert.NoError(t, svc.Shutdown(ctx))
	})
}
