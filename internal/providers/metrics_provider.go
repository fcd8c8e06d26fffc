package providers

import (
	"github.com/RobinLinde/MapComplete-MQTT/internal/models"
	"github.com/RobinLinde/MapComplete-MQTT/internal/structures"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"time"
)

const (
	ColorOutcomeCached       = "cached"
	ColorOutcomeStatic       = "static"
	ColorOutcomeSampled      = "sampled"
	ColorOutcomeDark         = "dark"
	ColorOutcomeUnresolvable = "unresolvable"
	ColorOutcomeFailed       = "failed"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	ObserveCycleDuration(duration time.Duration)
	AddFetchedChangesets(count int)
	IncFetchErrors()
	IncPublished()
	IncPublishErrors()
	IncColorResolution(outcome string)
	SetChangesetsTotal(count int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	cycleDuration       prometheus.Histogram
	fetchedChangesets   prometheus.Counter
	fetchErrors         prometheus.Counter
	published           prometheus.Counter
	publishErrors       prometheus.Counter
	colorResolutions    *prometheus.CounterVec
	changesetsTotal     prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) ObserveCycleDuration(duration time.Duration) {
	m.cycleDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) AddFetchedChangesets(count int) {
	m.fetchedChangesets.Add(float64(count))
}

func (m *MetricsProvider) IncFetchErrors() {
	m.fetchErrors.Inc()
}

func (m *MetricsProvider) IncPublished() {
	m.published.Inc()
}

func (m *MetricsProvider) IncPublishErrors() {
	m.publishErrors.Inc()
}

func (m *MetricsProvider) IncColorResolution(outcome string) {
	m.colorResolutions.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) SetChangesetsTotal(count int) {
	m.changesetsTotal.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, state *models.DailyState) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mcmqtt_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mcmqtt_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mcmqtt_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mcmqtt_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mcmqtt_persistence_duration_seconds",
			Help:    "Duration of theme cache snapshot writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		cycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mcmqtt_cycle_duration_seconds",
			Help:    "Duration of one update cycle in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),

		fetchedChangesets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mcmqtt_fetched_changesets_total",
			Help: "Total number of changesets returned by the upstream API",
		}),

		fetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mcmqtt_fetch_errors_total",
			Help: "Total number of failed upstream fetches",
		}),

		published: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mcmqtt_published_total",
			Help: "Total number of retained messages published",
		}),

		publishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mcmqtt_publish_errors_total",
			Help: "Total number of failed publishes",
		}),

		colorResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mcmqtt_color_resolutions_total",
			Help: "Theme color resolutions by outcome",
		}, []string{"outcome"}),

		changesetsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mcmqtt_changesets_today",
			Help: "Number of changesets aggregated for the current day",
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "mcmqtt_themes_cached",
		Help: "Number of themes in the theme cache",
	}, func() float64 {
		return float64(state.ThemeCache.Len())
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) ObserveCycleDuration(_ time.Duration)             {}
func (n *noopMetrics) AddFetchedChangesets(_ int)                       {}
func (n *noopMetrics) IncFetchErrors()                                  {}
func (n *noopMetrics) IncPublished()                                    {}
func (n *noopMetrics) IncPublishErrors()                                {}
func (n *noopMetrics) IncColorResolution(_ string)                      {}
func (n *noopMetrics) SetChangesetsTotal(_ int)                         {}
