package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	intentDuration   *prometheus.HistogramVec
	intentsTotal     *prometheus.CounterVec
	snapshotSaves    *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	accessoryUnlocks prometheus.Counter
}

// Intent outcome labels.
const (
	OutcomeApplied = "applied"
	OutcomeNoop    = "noop"
)

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids
// "duplicate collector" panics when NewMetrics is called more than
// once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		intentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "meowbank_intent_duration_seconds",
				Help:    "Duration of state transitions by intent.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"intent"},
		),
		intentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meowbank_intents_total",
				Help: "Total intents dispatched, by intent and outcome.",
			},
			[]string{"intent", "outcome"},
		),
		snapshotSaves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meowbank_snapshot_saves_total",
				Help: "Snapshot save attempts by result.",
			},
			[]string{"result"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meowbank_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meowbank_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		accessoryUnlocks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "meowbank_accessory_unlocks_total",
				Help: "Total accessories unlocked.",
			},
		),
	}
}

// RecordIntentDuration records how long a transition took.
func (m *Metrics) RecordIntentDuration(intent string, d time.Duration) {
	m.intentDuration.WithLabelValues(intent).Observe(d.Seconds())
}

// IncrIntent counts a dispatched intent with its outcome.
func (m *Metrics) IncrIntent(intent, outcome string) {
	m.intentsTotal.WithLabelValues(intent, outcome).Inc()
}

// IncrSnapshotSave counts a snapshot save attempt ("ok" or "error").
func (m *Metrics) IncrSnapshotSave(result string) {
	m.snapshotSaves.WithLabelValues(result).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// AddAccessoryUnlocks counts newly unlocked accessories.
func (m *Metrics) AddAccessoryUnlocks(n int) {
	if n > 0 {
		m.accessoryUnlocks.Add(float64(n))
	}
}

// IntentCount reads back the current value of the intent counter for a
// label pair. Used by the JSON metrics endpoint.
func (m *Metrics) IntentCount(intent, outcome string) float64 {
	return getCounterValue(m.intentsTotal, intent, outcome)
}

// IntentSnapshot is one row of the JSON metrics endpoint.
type IntentSnapshot struct {
	Intent  string  `json:"intent"`
	Applied float64 `json:"applied"`
	Noop    float64 `json:"noop"`
}

// GetIntentSnapshot reads back the dispatch counts for the given
// intents.
func (m *Metrics) GetIntentSnapshot(intents []string) []IntentSnapshot {
	rows := make([]IntentSnapshot, 0, len(intents))
	for _, intent := range intents {
		rows = append(rows, IntentSnapshot{
			Intent:  intent,
			Applied: m.IntentCount(intent, OutcomeApplied),
			Noop:    m.IntentCount(intent, OutcomeNoop),
		})
	}
	return rows
}

// getCounterValue extracts the current float64 value from a CounterVec
// for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	metric := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(metric); err != nil {
		return 0
	}
	if metric.Counter != nil && metric.Counter.Value != nil {
		return *metric.Counter.Value
	}
	return 0
}
