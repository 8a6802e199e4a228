// Package pricing converts token counts into USD cost per model.
package pricing

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
)

// Price is the USD cost of one million tokens in each direction.
type Price struct {
	InputPerMillion  float64 `yaml:"input_per_million" json:"input_per_million"`
	OutputPerMillion float64 `yaml:"output_per_million" json:"output_per_million"`
}

// Table maps model identifiers to prices.
type Table map[string]Price

// Default returns the built-in price table.
func Default() Table {
	return Table{
		"gpt-4.1-mini": {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	}
}

// Merge returns a copy of t with entries from override replacing or
// extending it.
func (t Table) Merge(override Table) Table {
	out := make(Table, len(t)+len(override))
	maps.Copy(out, t)
	maps.Copy(out, override)
	return out
}

// Validate rejects negative prices.
func (t Table) Validate() error {
	for model, p := range t {
		if p.InputPerMillion < 0 || p.OutputPerMillion < 0 {
			return fmt.Errorf("pricing for model %q must not be negative", model)
		}
	}
	return nil
}

// Cost is the rounded USD cost of a run.
type Cost struct {
	Input   float64 `json:"input"`
	Output  float64 `json:"output"`
	Total   float64 `json:"total"`
	PerCase float64 `json:"perCase"`
}

// Compute prices the token totals of a run of cases for model. A model
// without a price entry costs zero. Amounts are rounded to six decimal
// places; PerCase is derived from the unrounded total.
func (t Table) Compute(model string, inputTokens, outputTokens, cases int) Cost {
	p, ok := t[model]
	if !ok {
		slog.Debug("no price entry for model, cost is zero", "model", model)
		return Cost{}
	}

	input := float64(inputTokens) * p.InputPerMillion / 1e6
	output := float64(outputTokens) * p.OutputPerMillion / 1e6
	total := input + output

	var perCase float64
	if cases > 0 {
		perCase = total / float64(cases)
	}

	return Cost{
		Input:   Round6(input),
		Output:  Round6(output),
		Total:   Round6(total),
		PerCase: Round6(perCase),
	}
}

// Round6 rounds v to six decimal places.
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
