package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSystemType_Known(t *testing.T) {
	for _, known := range AllSystemTypes {
		st, ok := ParseSystemType(string(known))
		assert.True(t, ok)
		assert.Equal(t, known, st)
	}
}

func TestParseSystemType_Normalizes(t *testing.T) {
	st, ok := ParseSystemType("  HVAC ")
	assert.True(t, ok)
	assert.Equal(t, SystemHVAC, st)
}

func TestParseSystemType_Unknown(t *testing.T) {
	st, ok := ParseSystemType("pool_pump")
	assert.False(t, ok)
	assert.Equal(t, SystemType(""), st)
}

func TestParseAdvisorState(t *testing.T) {
	state, ok := ParseAdvisorState("execution")
	assert.True(t, ok)
	assert.Equal(t, StateExecution, state)

	_, ok = ParseAdvisorState("dreaming")
	assert.False(t, ok)
}

func TestDateAuthority_Ordering(t *testing.T) {
	// Lower values are more authoritative.
	assert.Less(t, int(DateFinalized), int(DateIssued))
	assert.Less(t, int(DateIssued), int(DateApproved))
}

func TestCapitalExposure_At(t *testing.T) {
	exp := CapitalExposure{Horizons: []HorizonExposure{
		{HorizonYears: 3, Exposure: CostRange{Low: 100, High: 200}},
		{HorizonYears: 5, Exposure: CostRange{Low: 300, High: 600}},
	}}

	assert.Equal(t, CostRange{Low: 300, High: 600}, exp.At(5))
	assert.Equal(t, CostRange{}, exp.At(10))
}
