package observability

import (
	"fmt"
	"io"
	"strings"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// MetricPrefix starts the name of every gosln metric.
const MetricPrefix = "gosln_"

var (
	// RulesDistilledTotal counts configuration rules emitted by distillation by scope
	RulesDistilledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gosln_rules_distilled_total",
			Help: "Total number of configuration rules emitted by distillation by scope",
		},
		[]string{"scope"}, // global, platform, buildtype, cell
	)

	// ConfigLinesTotal counts legacy project configuration lines by outcome
	ConfigLinesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gosln_config_lines_total",
			Help: "Total number of legacy project configuration lines by result",
		},
		[]string{"result"}, // applied, ignored
	)

	// ConfigSplitCacheTotal counts lookups in the solution configuration split cache
	ConfigSplitCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gosln_config_split_cache_total",
			Help: "Total number of solution configuration split cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	// ProjectTypesRejectedTotal counts project type definitions dropped from a table
	ProjectTypesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gosln_project_types_rejected_total",
			Help: "Total number of project type definitions rejected by reason",
		},
		[]string{"reason"},
	)

	// SolutionOperationDuration tracks solution load and save duration in seconds
	SolutionOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gosln_solution_operation_duration_seconds",
			Help:    "Solution operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to 4s
		},
		[]string{"operation", "format"},
	)
)

// WriteMetrics writes the gosln metric families from the default registry
// in the Prometheus text exposition format. Go runtime and process metrics
// are left out.
func WriteMetrics(w io.Writer) error {
	return writeMetrics(w, prometheus.DefaultGatherer)
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), MetricPrefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// GetCounterValue retrieves the current value of a counter metric with the given labels
// This is primarily intended for testing
func GetCounterValue(counter *prometheus.CounterVec, labels ...string) (float64, error) {
	metric, err := counter.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0, err
	}

	var pb dto.Metric
	if err := metric.Write(&pb); err != nil {
		return 0, err
	}

	if pb.Counter != nil {
		return pb.Counter.GetValue(), nil
	}

	return 0, nil
}
