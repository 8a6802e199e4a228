package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeKnownModel(t *testing.T) {
	cost := Default().Compute("gpt-4.1-mini", 10_000, 2_000, 4)

	assert.Equal(t, 0.0015, cost.Input)
	assert.Equal(t, 0.0012, cost.Output)
	assert.Equal(t, 0.0027, cost.Total)
	assert.Equal(t, 0.000675, cost.PerCase)
}

func TestComputeUnknownModel(t *testing.T) {
	cost := Default().Compute("some-local-model", 10_000, 2_000, 4)
	assert.Equal(t, Cost{}, cost)
}

func TestComputeZeroCases(t *testing.T) {
	cost := Default().Compute("gpt-4.1-mini", 0, 0, 0)
	assert.Equal(t, Cost{}, cost)
}

func TestComputeInvariants(t *testing.T) {
	table := Table{"m": {InputPerMillion: 0.37, OutputPerMillion: 1.13}}

	tests := []struct {
		in, out, cases int
	}{
		{1, 1, 1},
		{12_345, 6_789, 7},
		{999_999, 333_333, 3},
		{17, 0, 13},
	}
	for _, tt := range tests {
		cost := table.Compute("m", tt.in, tt.out, tt.cases)
		assert.InDelta(t, cost.Input+cost.Output, cost.Total, 2e-6)
		assert.InDelta(t, cost.Total/float64(tt.cases), cost.PerCase, 1e-6)
	}
}

func TestRound6(t *testing.T) {
	assert.Equal(t, 0.123457, Round6(0.1234567))
	assert.Equal(t, 0.0, Round6(0.0000004))
	assert.Equal(t, 0.000001, Round6(0.0000006))
	assert.Equal(t, 2.5, Round6(2.5))
}

func TestMerge(t *testing.T) {
	base := Default()
	merged := base.Merge(Table{
		"gpt-4.1-mini": {InputPerMillion: 0.2, OutputPerMillion: 0.8},
		"gpt-4.1":      {InputPerMillion: 2, OutputPerMillion: 8},
	})

	assert.Equal(t, 0.2, merged["gpt-4.1-mini"].InputPerMillion)
	assert.Equal(t, 8.0, merged["gpt-4.1"].OutputPerMillion)
	assert.Equal(t, 0.15, base["gpt-4.1-mini"].InputPerMillion, "merge must not mutate the receiver")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())
	assert.Error(t, Table{"bad": {InputPerMillion: -1}}.Validate())
}
