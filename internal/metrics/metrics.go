// Package metrics exposes evaluation runs as Prometheus gauges.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/giantswarm/triage-eval/internal/regression"
	"github.com/giantswarm/triage-eval/internal/runner"
)

// Namespace prefixes every metric name.
const Namespace = "triage_eval"

// ErrRegistrationFailed indicates a collector could not be registered.
var ErrRegistrationFailed = errors.New("metric registration failed")

// Recorder publishes the latest run's results.
type Recorder struct {
	runInfo          *prometheus.GaugeVec
	passRate         prometheus.Gauge
	hardFails        prometheus.Gauge
	casesTotal       prometheus.Gauge
	avgLatency       prometheus.Gauge
	caseLatency      prometheus.Histogram
	tokens           *prometheus.GaugeVec
	cost             *prometheus.GaugeVec
	categoryPassRate *prometheus.GaugeVec
	checkPassed      *prometheus.GaugeVec
	regressions      *prometheus.GaugeVec
}

// NewRecorder creates a Recorder and registers its collectors on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		runInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "run_info",
			Help:      "Identifies the most recent evaluation run.",
		}, []string{"run_id", "model"}),
		passRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "pass_rate",
			Help:      "Fraction of cases passing every check.",
		}),
		hardFails: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "hard_fails",
			Help:      "Cases with a forbidden phrase in the agent output.",
		}),
		casesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "cases_total",
			Help:      "Cases evaluated in the run.",
		}),
		avgLatency: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "avg_latency_ms",
			Help:      "Average agent latency per case in milliseconds.",
		}),
		caseLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "case_latency_seconds",
			Help:      "Agent latency per case.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}),
		tokens: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "tokens",
			Help:      "Tokens consumed by the run.",
		}, []string{"direction"}),
		cost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "cost_usd",
			Help:      "Run cost in USD.",
		}, []string{"kind"}),
		categoryPassRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "category_pass_rate",
			Help:      "Pass fraction per case category.",
		}, []string{"category"}),
		checkPassed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "check_passed",
			Help:      "Cases passing each individual check.",
		}, []string{"check"}),
		regressions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "regressions",
			Help:      "1 when the metric regressed against the baseline.",
		}, []string{"kind"}),
	}

	for _, c := range r.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
		}
	}
	return r, nil
}

func (r *Recorder) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		r.runInfo, r.passRate, r.hardFails, r.casesTotal, r.avgLatency, r.caseLatency,
		r.tokens, r.cost, r.categoryPassRate, r.checkPassed, r.regressions,
	}
}

// Record publishes result, replacing the previous run's values.
func (r *Recorder) Record(result *runner.Result) {
	s := result.Summary

	r.runInfo.Reset()
	r.runInfo.WithLabelValues(s.RunID, s.Model).Set(1)

	r.passRate.Set(s.PassRate)
	r.hardFails.Set(float64(s.HardFails))
	r.casesTotal.Set(float64(s.Total))
	r.avgLatency.Set(float64(s.AvgLatencyMs))

	for _, row := range result.Rows {
		r.caseLatency.Observe(float64(row.Metrics.LatencyMs) / 1000)
	}

	r.tokens.WithLabelValues("input").Set(float64(s.Tokens.Input))
	r.tokens.WithLabelValues("output").Set(float64(s.Tokens.Output))

	r.cost.WithLabelValues("input").Set(s.CostUSD.Input)
	r.cost.WithLabelValues("output").Set(s.CostUSD.Output)
	r.cost.WithLabelValues("total").Set(s.CostUSD.Total)
	r.cost.WithLabelValues("per_case").Set(s.CostUSD.PerCase)

	r.categoryPassRate.Reset()
	for cat, st := range s.CategoryBreakdown {
		r.categoryPassRate.WithLabelValues(cat).Set(st.PassRate)
	}

	r.checkPassed.WithLabelValues("request_type").Set(float64(s.CheckStats.RequestTypeOK))
	r.checkPassed.WithLabelValues("route_team").Set(float64(s.CheckStats.RouteTeamOK))
	r.checkPassed.WithLabelValues("autosend").Set(float64(s.CheckStats.AutosendOK))
	r.checkPassed.WithLabelValues("must_not").Set(float64(s.CheckStats.MustNotOK))
}

// RecordComparison publishes regression flags. A nil comparison clears them.
func (r *Recorder) RecordComparison(c *regression.Comparison) {
	r.regressions.Reset()
	if c == nil {
		return
	}
	for _, k := range regression.Kinds {
		r.regressions.WithLabelValues(k.String()).Set(0)
	}
	for _, reg := range c.Regressions {
		r.regressions.WithLabelValues(reg.Kind.String()).Set(1)
	}
}

// WriteTextfile writes the run in the node exporter textfile format.
func WriteTextfile(path string, result *runner.Result, c *regression.Comparison) error {
	registry := prometheus.NewRegistry()
	rec, err := NewRecorder(registry)
	if err != nil {
		return err
	}
	rec.Record(result)
	rec.RecordComparison(c)

	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
