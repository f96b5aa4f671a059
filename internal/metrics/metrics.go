// Package metrics provides Prometheus metrics for the document lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the lifecycle counters and timings.
type Metrics struct {
	VersionsUploaded    prometheus.Counter
	VersionsApproved    prometheus.Counter
	VersionsRejected    prometheus.Counter
	DocumentsCreated    prometheus.Counter
	ComparisonFallbacks *prometheus.CounterVec
	SummaryFallbacks    prometheus.Counter
	IndexFailures       prometheus.Counter
	PublishConflicts    prometheus.Counter
	StagedSwept         prometheus.Counter
	DigestsBuilt        *prometheus.CounterVec
	DiffDuration        prometheus.Histogram
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		VersionsUploaded: f.NewCounter(prometheus.CounterOpts{
			Name: "policytrack_versions_uploaded_total",
			Help: "Versions submitted for review.",
		}),
		VersionsApproved: f.NewCounter(prometheus.CounterOpts{
			Name: "policytrack_versions_approved_total",
			Help: "Pending versions approved and published.",
		}),
		VersionsRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "policytrack_versions_rejected_total",
			Help: "Pending versions rejected and discarded.",
		}),
		DocumentsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "policytrack_documents_created_total",
			Help: "Documents created with a first published version.",
		}),
		ComparisonFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "policytrack_comparison_fallbacks_total",
			Help: "Comparisons that fell back to uploader notes because text was unavailable.",
		}, []string{"reason"}),
		SummaryFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "policytrack_summary_fallbacks_total",
			Help: "Change summaries that used the templated fallback.",
		}),
		IndexFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "policytrack_index_failures_total",
			Help: "Published versions whose retrieval index update failed.",
		}),
		PublishConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "policytrack_publish_conflicts_total",
			Help: "Approvals that lost the current-version compare-and-swap.",
		}),
		StagedSwept: f.NewCounter(prometheus.CounterOpts{
			Name: "policytrack_staged_swept_total",
			Help: "Staged uploads deleted after expiring unclaimed.",
		}),
		DigestsBuilt: f.NewCounterVec(prometheus.CounterOpts{
			Name: "policytrack_digests_built_total",
			Help: "Period digests built, by period type.",
		}, []string{"type"}),
		DiffDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "policytrack_diff_duration_seconds",
			Help:    "Time spent computing a text diff.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
	}
}
