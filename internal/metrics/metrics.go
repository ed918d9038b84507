package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vidhost"

var (
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Upload attempts by outcome and error code.",
	}, []string{"outcome", "code"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upload_stage_duration_seconds",
		Help:      "Time spent in each ingestion stage.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300, 900},
	}, []string{"stage"})

	TranscodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "transcode_duration_seconds",
		Help:      "Wall time of transcoder runs.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})

	TranscodesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "transcodes_in_flight",
		Help:      "Transcoder processes currently running.",
	})

	CleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cleanup_failures_total",
		Help:      "Artifacts that could not be removed after a failed upload.",
	})

	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_errors_total",
		Help:      "Result cache operations that failed.",
	}, []string{"op"})

	StagingSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "staging_swept_files_total",
		Help:      "Stale staged files removed by the sweeper.",
	})
)
