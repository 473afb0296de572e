package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

func TestBucket_Boundaries(t *testing.T) {
	assert.Equal(t, BucketLow, Bucket(0.0))
	assert.Equal(t, BucketLow, Bucket(0.49))
	assert.Equal(t, BucketMedium, Bucket(0.5))
	assert.Equal(t, BucketMedium, Bucket(0.79))
	assert.Equal(t, BucketHigh, Bucket(0.8))
	assert.Equal(t, BucketHigh, Bucket(1.0))
}

func TestGovern_GatedStates(t *testing.T) {
	// Intake and suspended never produce a profile, regardless of confidence
	// or risk.
	for _, state := range []model.AdvisorState{model.StateIntake, model.StateSuspended} {
		assert.Nil(t, Govern(state, 0.95, model.RiskHigh), string(state))
		assert.Nil(t, Govern(state, 0.1, model.RiskLow), string(state))
	}
}

func TestGovern_TableCoversActiveStates(t *testing.T) {
	states := []model.AdvisorState{model.StateObserving, model.StatePlanning, model.StateExecution}
	confidences := []float64{0.2, 0.6, 0.9}
	for _, state := range states {
		for _, c := range confidences {
			profile := Govern(state, c, model.RiskModerate)
			require.NotNil(t, profile, "%s/%.1f", state, c)
			assert.True(t, profile.Acts.Inform)
		}
	}
}

func TestGovern_InitiateExecutionOnlyInExecution(t *testing.T) {
	for _, state := range []model.AdvisorState{model.StateObserving, model.StatePlanning} {
		for _, c := range []float64{0.2, 0.6, 0.9} {
			profile := Govern(state, c, model.RiskModerate)
			require.NotNil(t, profile)
			assert.False(t, profile.Acts.InitiateExecution, string(state))
		}
	}

	// Execution allows it at medium and high confidence, never at low.
	low := Govern(model.StateExecution, 0.3, model.RiskModerate)
	require.NotNil(t, low)
	assert.False(t, low.Acts.InitiateExecution)

	medium := Govern(model.StateExecution, 0.6, model.RiskModerate)
	require.NotNil(t, medium)
	assert.True(t, medium.Acts.InitiateExecution)

	high := Govern(model.StateExecution, 0.9, model.RiskModerate)
	require.NotNil(t, high)
	assert.True(t, high.Acts.InitiateExecution)
}

func TestGovern_HighRiskRaisesUrgencyOnly(t *testing.T) {
	baseline := Govern(model.StateObserving, 0.6, model.RiskModerate)
	require.NotNil(t, baseline)
	assert.Equal(t, model.UrgencyNone, baseline.Urgency)

	raised := Govern(model.StateObserving, 0.6, model.RiskHigh)
	require.NotNil(t, raised)
	assert.Equal(t, model.UrgencySoft, raised.Urgency)

	// Everything except urgency is untouched by the overlay.
	assert.Equal(t, baseline.Verbosity, raised.Verbosity)
	assert.Equal(t, baseline.Specificity, raised.Specificity)
	assert.Equal(t, baseline.CostDisclosure, raised.CostDisclosure)
	assert.Equal(t, baseline.Tone, raised.Tone)
	assert.Equal(t, baseline.Acts, raised.Acts)
}

func TestGovern_HighRiskNeverLowersFirmUrgency(t *testing.T) {
	profile := Govern(model.StateExecution, 0.9, model.RiskHigh)
	require.NotNil(t, profile)
	assert.Equal(t, model.UrgencyFirm, profile.Urgency)
}

func TestGovern_LowRiskForcesUrgencyNone(t *testing.T) {
	// Planning/high carries soft urgency in the table; low risk clears it.
	profile := Govern(model.StatePlanning, 0.9, model.RiskLow)
	require.NotNil(t, profile)
	assert.Equal(t, model.UrgencyNone, profile.Urgency)
}

func TestGovern_CostDisclosureNeedsConfidence(t *testing.T) {
	low := Govern(model.StateObserving, 0.3, model.RiskModerate)
	require.NotNil(t, low)
	assert.Equal(t, model.CostDisclosureNone, low.CostDisclosure)

	high := Govern(model.StateObserving, 0.9, model.RiskModerate)
	require.NotNil(t, high)
	assert.Equal(t, model.CostDisclosureRange, high.CostDisclosure)
}
