package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "modelwatch"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	runDuration   prom.Histogram
	runOutcomes   *prom.CounterVec
	fetchDuration *prom.HistogramVec
	newItems      *prom.CounterVec
	trackedItems  *prom.GaugeVec
	persistErrors *prom.CounterVec
	notifications *prom.CounterVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates the collectors and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of complete detection runs",
			Buckets:   prom.DefBuckets,
		}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Detection runs by outcome",
		}, []string{"outcome"}),
		fetchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of catalog listing per region",
			Buckets:   prom.DefBuckets,
		}, []string{"region", "result"}),
		newItems: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "new_models_total",
			Help:      "Newly detected models per region",
		}, []string{"region"}),
		trackedItems: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_models",
			Help:      "Models in the persisted snapshot per region",
		}, []string{"region"}),
		persistErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "state_errors_total",
			Help:      "State store failures by region and operation",
		}, []string{"region", "op"}),
		notifications: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification attempts by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.runDuration, pr.runOutcomes, pr.fetchDuration, pr.newItems,
		pr.trackedItems, pr.persistErrors, pr.notifications)
	return pr
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome string) {
	if p == nil {
		return
	}
	p.runOutcomes.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveFetchDuration(region string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := OutcomeFailed
	if success {
		res = OutcomeSuccess
	}
	p.fetchDuration.WithLabelValues(region, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddNewItems(region string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.newItems.WithLabelValues(region).Add(float64(n))
}

func (p *PrometheusRecorder) SetTrackedItems(region string, n int) {
	if p == nil {
		return
	}
	p.trackedItems.WithLabelValues(region).Set(float64(n))
}

func (p *PrometheusRecorder) IncPersistenceError(region, op string) {
	if p == nil {
		return
	}
	p.persistErrors.WithLabelValues(region, op).Inc()
}

func (p *PrometheusRecorder) IncNotification(outcome string) {
	if p == nil {
		return
	}
	p.notifications.WithLabelValues(outcome).Inc()
}

// HTTPHandler serves the metrics gathered by g.
func HTTPHandler(g prom.Gatherer) http.Handler {
	if g == nil {
		g = prom.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
