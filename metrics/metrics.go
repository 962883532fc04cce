package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecomputeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: "bytecv", Name: "recompute_duration_seconds", Help: "Duration of render-measure-fit passes.", Buckets: prometheus.ExponentialBuckets(0.001, 2, 12)},
	)
	RecomputeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "bytecv", Name: "recompute_failures_total", Help: "Number of abandoned passes due to measurement failure."},
	)
	Truncated = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "bytecv", Name: "preview_truncated", Help: "1 when the published preview drops content, 0 otherwise."},
	)
	IncludedBlocks = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "bytecv", Name: "preview_included_blocks", Help: "Number of blocks on the published page."},
	)
	Saves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bytecv", Name: "saves_total", Help: "Number of persistence attempts by result."},
		[]string{"result"},
	)
	Exports = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bytecv", Name: "exports_total", Help: "Number of PDF exports by kind and result."},
		[]string{"kind", "result"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bytecv", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bytecv", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RecomputeDuration)
	reg.MustRegister(RecomputeFailures)
	reg.MustRegister(Truncated)
	reg.MustRegister(IncludedBlocks)
	reg.MustRegister(Saves)
	reg.MustRegister(Exports)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}

// Result 把错误转换为 result 标签值。
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
