package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metric struct {
	mu       sync.Mutex
	registry *prometheus.Registry

	procTimeHistogram prometheus.Histogram
	procTime          prometheus.Gauge
	rttTimeHistogram  *prometheus.HistogramVec
	rttTimes          *prometheus.GaugeVec
	frameCount        *prometheus.CounterVec
	trackerUpdates    *prometheus.CounterVec
	activeTrackers    prometheus.Gauge
	published         *prometheus.CounterVec
}

// NewMetric creates the metric set on its own registry. Nil buckets fall back
// to the prometheus defaults.
func NewMetric(procTimeBuckets, rttTimeBuckets []float64) *Metric {

	if procTimeBuckets == nil {
		procTimeBuckets = prometheus.DefBuckets
	}
	if rttTimeBuckets == nil {
		rttTimeBuckets = prometheus.DefBuckets
	}

	m := &Metric{
		registry: prometheus.NewRegistry(),
		procTimeHistogram: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "processing_time_ms_histogram",
				Help:    "Histogram of per-frame processing times.",
				Buckets: procTimeBuckets,
			},
		),
		procTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "processing_time_ms",
				Help: "Gauge of per-frame processing times.",
			},
		),
		rttTimeHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rtt_times_ms_histogram",
				Help:    "Histogram of round-trip times.",
				Buckets: rttTimeBuckets,
			},
			[]string{"service"},
		),
		rttTimes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rtt_times_ms",
				Help: "Gauge of round-trip times for different services.",
			},
			[]string{"service"},
		),
		frameCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frames_total",
				Help: "Number of frames by status.",
			},
			[]string{"status"},
		),
		trackerUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_updates_total",
				Help: "Number of tracker updates by result.",
			},
			[]string{"result"},
		),
		activeTrackers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "active_trackers",
				Help: "Number of trackers in the active set.",
			},
		),
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "published_frames_total",
				Help: "Number of frame results published downstream by result.",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.procTimeHistogram,
		m.procTime,
		m.rttTimeHistogram,
		m.rttTimes,
		m.frameCount,
		m.trackerUpdates,
		m.activeTrackers,
		m.published,
	)
	return m
}

func (m *Metric) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metric) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metric) AddProcessingTime(time float64) {
	m.lock()
	defer m.unlock()
	m.procTimeHistogram.Observe(time)
	m.procTime.Set(time)
}

func (m *Metric) AddRttTime(s string, time float64) {
	m.lock()
	defer m.unlock()
	m.rttTimeHistogram.WithLabelValues(s).Observe(time)
	m.rttTimes.WithLabelValues(s).Set(time)
}

func (m *Metric) AddFrameCount(status string, n float64) {
	m.lock()
	defer m.unlock()
	m.frameCount.WithLabelValues(status).Add(n)
}

func (m *Metric) AddTrackerUpdate(ok bool) {
	m.lock()
	defer m.unlock()
	m.trackerUpdates.WithLabelValues(result(ok)).Inc()
}

func (m *Metric) SetActiveTrackers(n int) {
	m.lock()
	defer m.unlock()
	m.activeTrackers.Set(float64(n))
}

func (m *Metric) AddPublished(ok bool) {
	m.lock()
	defer m.unlock()
	m.published.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (m *Metric) lock() {
	m.mu.Lock()
}

func (m *Metric) unlock() {
	m.mu.Unlock()
}
