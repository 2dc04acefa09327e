package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/theirongolddev/runway/internal/model"
)

var statuses = []model.Status{model.StatusHealthy, model.StatusWarning, model.StatusCritical}

// Metrics holds the runway Prometheus metrics.
type Metrics struct {
	// Registry owns these metrics and backs the /metrics endpoint.
	Registry *prometheus.Registry

	balance      prometheus.Gauge
	threshold    prometheus.Gauge
	runwayDays   prometheus.Gauge
	status       *prometheus.GaugeVec
	transactions *prometheus.GaugeVec
	polls        *prometheus.CounterVec
	pollDuration prometheus.Histogram
	subscribers  prometheus.Gauge
}

// NewMetrics creates a dedicated registry and registers all metrics in it.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		balance: factory.NewGauge(prometheus.GaugeOpts{
			Name: "runway_balance_kes",
			Help: "Current balance (income minus expenses) in shillings.",
		}),
		threshold: factory.NewGauge(prometheus.GaugeOpts{
			Name: "runway_low_balance_threshold_kes",
			Help: "Configured low-balance threshold in shillings.",
		}),
		runwayDays: factory.NewGauge(prometheus.GaugeOpts{
			Name: "runway_days_until_threshold",
			Help: "Projected days until the balance reaches the threshold (999 = unbounded).",
		}),
		status: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "runway_status",
			Help: "1 for the current runway status, 0 otherwise.",
		}, []string{"status"}),
		transactions: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "runway_transactions",
			Help: "Loaded transactions by kind.",
		}, []string{"kind"}),
		polls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "runway_polls_total",
			Help: "Daemon poll cycles by result.",
		}, []string{"result"}),
		pollDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "runway_poll_duration_seconds",
			Help:    "Duration of daemon poll cycles.",
			Buckets: prometheus.DefBuckets,
		}),
		subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "runway_stream_subscribers",
			Help: "Connected SSE and websocket subscribers.",
		}),
	}
}

// ObserveProjection records balance, threshold and runway state.
func (m *Metrics) ObserveProjection(balance, threshold int64, r model.ProjectionResult) {
	m.balance.Set(float64(balance))
	m.threshold.Set(float64(threshold))
	m.runwayDays.Set(float64(r.DaysUntilThreshold))
	for _, s := range statuses {
		v := 0.0
		if s == r.Status {
			v = 1
		}
		m.status.WithLabelValues(string(s)).Set(v)
	}
}

// ObserveCounts records how many transactions of each kind are loaded.
func (m *Metrics) ObserveCounts(income, expense int) {
	m.transactions.WithLabelValues(string(model.KindIncome)).Set(float64(income))
	m.transactions.WithLabelValues(string(model.KindExpense)).Set(float64(expense))
}

// ObservePoll records one poll cycle.
func (m *Metrics) ObservePoll(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.polls.WithLabelValues(result).Inc()
	m.pollDuration.Observe(d.Seconds())
}

// SetSubscribers records the live subscriber count.
func (m *Metrics) SetSubscribers(n int) {
	m.subscribers.Set(float64(n))
}
