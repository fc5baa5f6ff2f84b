package metrics

import (
	"time"

	"git.home.luguber.info/inful/sitegen/internal/pipeline"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration    *prom.HistogramVec
	stageResults     *prom.CounterVec
	pipelineDuration prom.Histogram
	pipelineOutcome  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers pipeline metrics on the
// given registry. A nil registry gets its own private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitegen",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		pipelineDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitegen",
			Name:      "pipeline_duration_seconds",
			Help:      "Total generation run duration",
			Buckets:   prom.DefBuckets,
		}),
		pipelineOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "pipeline_outcomes_total",
			Help:      "Generation run outcomes by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.pipelineDuration, pr.pipelineOutcome)
	return pr
}

func (pr *PrometheusRecorder) StageResult(stage pipeline.Stage, result string) {
	pr.stageResults.WithLabelValues(string(stage), result).Inc()
}

func (pr *PrometheusRecorder) StageDuration(stage pipeline.Stage, d time.Duration) {
	pr.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) PipelineOutcome(status pipeline.RunStatus) {
	pr.pipelineOutcome.WithLabelValues(string(status)).Inc()
}

func (pr *PrometheusRecorder) PipelineDuration(d time.Duration) {
	pr.pipelineDuration.Observe(d.Seconds())
}

var _ Recorder = (*PrometheusRecorder)(nil)
