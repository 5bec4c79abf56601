package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/engine/data/driver"
	"github.com/compozy/modhost/engine/infra/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func openSQLite(t *testing.T) driver.Conn {
	t.Helper()
	conn, err := sqlite.Dialect{}.Open(context.Background(), filepath.Join(t.TempDir(), "m.db"), driver.PoolSettings{})
	require.NoError(t, err)
	return conn
}

// histogramCounts sums data points of the duration histogram by operation
// and outcome.
func histogramCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]uint64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]uint64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "modhost_data_query_duration_seconds" {
				continue
			}
			hist, ok := m.Data.(metricdata.Histogram[float64])
			require.True(t, ok)
			for _, dp := range hist.DataPoints {
				op, _ := dp.Attributes.Value(attribute.Key("operation"))
				res, _ := dp.Attributes.Value(attribute.Key("outcome"))
				conn, _ := dp.Attributes.Value(attribute.Key("connection"))
				out[conn.AsString()+"/"+op.AsString()+"/"+res.AsString()] += dp.Count
			}
		}
	}
	return out
}

func TestDataMetrics_Decorate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should record statements by operation and outcome", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		dm, err := NewDataMetrics(provider.Meter("test"))
		require.NoError(t, err)
		conn := dm.Decorate(data.Connection{Name: "blog"}, openSQLite(t))
		t.Cleanup(func() { _ = conn.Close() })

		_, err = conn.Exec(ctx, `CREATE TABLE tag (id INTEGER PRIMARY KEY, name TEXT)`)
		require.NoError(t, err)
		_, err = conn.Exec(ctx, `INSERT INTO missing VALUES (1)`)
		require.Error(t, err)
		var names []string
		require.NoError(t, conn.Select(ctx, &names, `SELECT name FROM tag`))
		tx, err := conn.Begin(ctx)
		require.NoError(t, err)
		_, err = tx.Exec(ctx, `INSERT INTO tag (name) VALUES ('go')`)
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		counts := histogramCounts(t, reader)
		assert.Equal(t, uint64(2), counts["blog/exec/success"])
		assert.Equal(t, uint64(1), counts["blog/exec/error"])
		assert.Equal(t, uint64(1), counts["blog/select/success"])
		assert.Equal(t, uint64(1), counts["blog/begin/success"])
		assert.Equal(t, uint64(1), counts["blog/commit/success"])
	})

	t.Run("Should keep pool capabilities of the wrapped connection", func(t *testing.T) {
		service, err := New(ctx, nil)
		require.NoError(t, err)
		conn := service.Data().Decorate(data.Connection{Name: "blog"}, openSQLite(t))
		t.Cleanup(func() { _ = conn.Close() })
		_, ok := conn.(driver.StatsProvider)
		assert.True(t, ok)
		provider, ok := conn.(driver.SQLDBProvider)
		require.True(t, ok)
		db, release, err := provider.SQLDB()
		require.NoError(t, err)
		assert.NoError(t, db.PingContext(ctx))
		assert.NoError(t, release())
	})

	t.Run("Should export pool gauges through the Prometheus handler", func(t *testing.T) {
		service, err := New(ctx, &Config{Enabled: true, Path: "/metrics"})
		require.NoError(t, err)
		t.Cleanup(func() { _ = service.Shutdown(ctx) })
		conn := service.Data().Decorate(data.Connection{Name: "admin"}, openSQLite(t))
		t.Cleanup(func() { _ = conn.Close() })
		require.NoError(t, conn.Ping(ctx))

		w := httptest.NewRecorder()
		service.ExporterHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "modhost_data_pool_connections")
		assert.Contains(t, body, `connection="admin"`)
		assert.Contains(t, body, "modhost_data_query_duration_seconds")
	})
}
