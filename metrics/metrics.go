// Package metrics exposes Prometheus counters for job and artifact
// activity, served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobsStarted counts jobs created, by mode.
	JobsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubescribe_jobs_started_total",
		Help: "Number of jobs created.",
	}, []string{"mode"})

	// JobsCompleted counts jobs that reached the done state.
	JobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubescribe_jobs_completed_total",
		Help: "Number of jobs that completed.",
	}, []string{"mode"})

	// JobsFailed counts jobs that ended with a terminal error.
	JobsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubescribe_jobs_failed_total",
		Help: "Number of jobs that failed.",
	}, []string{"mode"})

	// ItemsExtracted counts items that produced output.
	ItemsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubescribe_items_extracted_total",
		Help: "Number of playlist items successfully extracted.",
	})

	// ItemsSkipped counts items skipped, by classified reason kind.
	ItemsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubescribe_items_skipped_total",
		Help: "Number of playlist items skipped.",
	}, []string{"kind"})

	// ArtifactBytes counts bytes written into the artifact stores.
	ArtifactBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubescribe_artifact_bytes_total",
		Help: "Bytes written to the artifact stores.",
	})
)
