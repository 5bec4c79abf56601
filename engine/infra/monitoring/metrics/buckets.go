package metrics

// QueryDurationBuckets defines latency buckets for data-layer statement metrics.
var QueryDurationBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

const (
	// OutcomeSuccess labels operations that returned no error.
	OutcomeSuccess = "success"
	// OutcomeError labels failed operations.
	OutcomeError = "error"
	// OutcomeNotFound labels lookups that matched no row.
	OutcomeNotFound = "not_found"
)
