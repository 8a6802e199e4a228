package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessorsOnEmptyOutput(t *testing.T) {
	var out AgentOutput

	_, ok := out.RequestType()
	assert.False(t, ok)
	_, ok = out.RouteTeam()
	assert.False(t, ok)
	_, ok = out.Autosend()
	assert.False(t, ok)
	assert.True(t, out.IsEmpty())
}

func TestAccessorsOnPartialOutput(t *testing.T) {
	out := AgentOutput{TriageJSON: &TriageJSON{RouteTeam: String("AP")}}

	_, ok := out.RequestType()
	assert.False(t, ok)

	team, ok := out.RouteTeam()
	assert.True(t, ok)
	assert.Equal(t, "AP", team)
	assert.False(t, out.IsEmpty())
}

func TestAutosendFalseIsPresent(t *testing.T) {
	out := AgentOutput{TriageJSON: &TriageJSON{Autosend: Bool(false)}}

	v, ok := out.Autosend()
	assert.True(t, ok)
	assert.False(t, v)
}

func TestCategoryOrDefault(t *testing.T) {
	assert.Equal(t, "uncategorized", TestCase{}.CategoryOrDefault())
	assert.Equal(t, "payment", TestCase{Category: "payment"}.CategoryOrDefault())
}

func TestEnumMembership(t *testing.T) {
	assert.True(t, IsRequestType("payment_status"))
	assert.False(t, IsRequestType("Payment_Status"))
	assert.True(t, IsRouteTeam("SupplierOnboarding"))
	assert.False(t, IsRouteTeam("Finance"))
}

func TestExpectedWantAutosend(t *testing.T) {
	assert.False(t, Expected{}.WantAutosend())
	assert.False(t, Expected{Autosend: Bool(false)}.WantAutosend())
	assert.True(t, Expected{Autosend: Bool(true)}.WantAutosend())
}
