package host

import (
	"context"
	"strings"
	"time"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/driver"
)

// ConnectionStatus is the reachability of one registered connection.
type ConnectionStatus struct {
	Module    string
	Dialect   string
	Bound     int
	Unbound   int
	Latency   time.Duration
	Err       error
	Reachable bool
}

// Check pings every registered connection. Unreachable stores are reported
// with a DataStoreUnavailable error; Check itself never fails.
func (h *Host) Check(ctx context.Context) []ConnectionStatus {
	bound := map[string]int{}
	unbound := map[string]int{}
	for _, r := range h.reports {
		key := strings.ToLower(r.Module)
		bound[key] = len(r.Bound)
		unbound[key] = len(r.Unbound)
	}
	out := make([]ConnectionStatus, 0, len(h.data.Connections()))
	for _, name := range h.data.Connections() {
		opts, _ := h.data.Options(name)
		st := ConnectionStatus{
			Module:  name,
			Dialect: opts.Dialect().Name(),
			Bound:   bound[strings.ToLower(name)],
			Unbound: unbound[strings.ToLower(name)],
		}
		start := time.Now()
		err := opts.Pool().Ping(ctx)
		st.Latency = time.Since(start)
		if err != nil {
			st.Err = driver.Classify(opts.Dialect(), err)
			if core.CodeOf(st.Err) == "" {
				st.Err = core.NewError(err, core.CodeDataStoreUnavailable, map[string]any{"connection": name})
			}
		}
		st.Reachable = err == nil
		out = append(out, st)
	}
	return out
}
