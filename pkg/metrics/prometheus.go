package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements the analysis Metrics interface using Prometheus.
type Recorder struct {
	analyses   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	cache      *prometheus.CounterVec
	sourceRows *prometheus.HistogramVec
}

// New registers the recorder on reg. A nil reg uses the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "distro_analyses_total",
				Help: "Analyses run, by kind and result",
			},
			[]string{"kind", "result"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distro_analysis_duration_seconds",
				Help:    "Duration of analyses in seconds",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind"},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "distro_cache_lookups_total",
				Help: "Result cache lookups by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		sourceRows: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distro_source_rows",
				Help:    "Rows returned per data source read",
				Buckets: prometheus.ExponentialBuckets(10, 4, 10),
			},
			[]string{"source"},
		),
	}
}

func (r *Recorder) RecordAnalysis(kind string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.analyses.WithLabelValues(kind, result).Inc()
	r.latency.WithLabelValues(kind).Observe(d.Seconds())
}

func (r *Recorder) RecordCache(kind string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	r.cache.WithLabelValues(kind, outcome).Inc()
}

func (r *Recorder) RecordSourceRows(source string, rows int) {
	r.sourceRows.WithLabelValues(source).Observe(float64(rows))
}

// Nop discards everything. Used by the CLI.
type Nop struct{}

func (Nop) RecordAnalysis(string, time.Duration, error) {}
func (Nop) RecordCache(string, bool)                    {}
func (Nop) RecordSourceRows(string, int)                {}
