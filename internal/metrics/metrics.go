// Package metrics exposes Prometheus collectors for playlist generation runs.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "livegen"

// Stage names used for the channels gauge.
const (
	StageFetched = "fetched"
	StageUnique  = "unique"
	StageMatched = "matched"
	StageAlive   = "alive"
	StageOutput  = "output"
)

// Recorder owns a private registry and the collectors registered on it.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	sourceFetches *prometheus.CounterVec
	channels      *prometheus.GaugeVec
	liveToday     prometheus.Gauge
	events        prometheus.Gauge
	runDuration   prometheus.Histogram
	lastSuccess   prometheus.Gauge

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates a recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetches_total",
			Help:      "Playlist source fetches by result.",
		}, []string{"result"}),
		channels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "channels",
			Help:      "Channels counted at each pipeline stage in the last run.",
		}, []string{"stage"}),
		liveToday: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_today_channels",
			Help:      "Channels correlated with a match on the reference day.",
		}),
		events: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schedule_events",
			Help:      "Scheduled events collected in the last run.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of generation runs.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Serve-mode requests by route template and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Serve-mode request latency by route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	r.registry.MustRegister(
		r.sourceFetches, r.channels, r.liveToday, r.events, r.runDuration, r.lastSuccess,
		r.requests, r.requestDuration,
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// SourceFetched counts one source fetch.
func (r *Recorder) SourceFetched(ok bool) {
	if r == nil {
		return
	}
	result := "empty"
	if ok {
		result = "ok"
	}
	r.sourceFetches.WithLabelValues(result).Inc()
}

// Channels sets the channel count of a stage.
func (r *Recorder) Channels(stage string, n int) {
	if r == nil {
		return
	}
	r.channels.WithLabelValues(stage).Set(float64(n))
}

// Events sets the number of collected schedule events.
func (r *Recorder) Events(n int) {
	if r == nil {
		return
	}
	r.events.Set(float64(n))
}

// LiveToday sets the live-today channel count.
func (r *Recorder) LiveToday(n int) {
	if r == nil {
		return
	}
	r.liveToday.Set(float64(n))
}

// RunCompleted records a finished run.
func (r *Recorder) RunCompleted(d time.Duration, at time.Time) {
	if r == nil {
		return
	}
	r.runDuration.Observe(d.Seconds())
	r.lastSuccess.Set(float64(at.Unix()))
}

// Request records one served HTTP request.
func (r *Recorder) Request(route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// WriteTextfile exports the registry for the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
