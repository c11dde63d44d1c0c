package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	Dispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "campusnotify_dispatch_total", Help: "Dispatch runs"},
		[]string{"result"},
	)
	ProviderSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "campusnotify_provider_send_total", Help: "Provider send outcomes"},
		[]string{"provider", "channel", "result"},
	)
	SendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "campusnotify_provider_send_latency_seconds", Help: "Provider send latency"},
		[]string{"provider"},
	)
	Fallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "campusnotify_fallback_total", Help: "Fallback chain activations"},
		[]string{"channel", "from", "to"},
	)
	QuotaExhausted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "campusnotify_quota_exhausted_total", Help: "Daily quota exhaustion events"},
		[]string{"provider"},
	)
	DispatchCost = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "campusnotify_dispatch_cost_total", Help: "Accumulated send cost"},
		[]string{"provider", "channel"},
	)
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "campusnotify_api_requests_total", Help: "API requests"},
		[]string{"endpoint", "status"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(Dispatches, ProviderSends, SendLatency, Fallbacks, QuotaExhausted, DispatchCost, APIRequests)
}
