package hazard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/baseline"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

var testNow = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

func newCalc() *Calculator {
	return New(baseline.Default()).WithNow(testNow)
}

func intPtr(v int) *int { return &v }

func ownerInstall(st model.SystemType, year int) model.ResolvedInstall {
	return model.ResolvedInstall{
		SystemType: st,
		Year:       intPtr(year),
		Source:     model.SourceOwnerReported,
		Confidence: 0.55,
	}
}

func TestWindow_OverdueHVAC(t *testing.T) {
	// 2008 HVAC evaluated in 2024: sixteen years on a ~13-year service life.
	// The system is past its effective median, so the median remaining life is
	// zero but failure within a year is probable, not certain.
	calc := newCalc()

	window, err := calc.Window(ownerInstall(model.SystemHVAC, 2008), "", PropertyContext{ConstructionYear: 2001}, RegionContext{})
	require.NoError(t, err)

	assert.Equal(t, 0.0, window.MonthsRemaining.P50)
	// Floored hazard: 1 - exp(-12/6)
	assert.InDelta(t, 0.8647, window.FailureProb12Mo, 0.001)
	assert.Greater(t, window.FailureProb12Mo, 0.5)
	assert.Equal(t, model.RiskHigh, window.Risk)

	// The window cannot open in the past.
	assert.Equal(t, testNow.Year(), window.EarlyYear)
	assert.Equal(t, testNow.Year(), window.LikelyYear)
	assert.Greater(t, window.LateYear, window.LikelyYear)
	assert.Equal(t, 0, window.MonthsToPlanning)
}

func TestWindow_RecentPermitVerifiedInstall(t *testing.T) {
	calc := newCalc()

	install := model.ResolvedInstall{
		SystemType: model.SystemHVAC,
		Year:       intPtr(2021),
		Source:     model.SourcePermitVerified,
		Confidence: 0.95,
	}
	prop := PropertyContext{
		ConstructionYear:   2015,
		Occupants:          3,
		HasUsageData:       true,
		MaintenanceScore:   1.0,
		HasMaintenanceData: true,
	}
	region := RegionContext{ClimateZone: "hot_humid"}

	window, err := calc.Window(install, "", prop, region)
	require.NoError(t, err)

	assert.Equal(t, model.RiskLow, window.Risk)
	assert.Equal(t, model.UncertaintyNarrow, window.Uncertainty)
	assert.GreaterOrEqual(t, window.Confidence, 0.7)
	assert.Greater(t, window.MonthsToPlanning, 0)

	// Climate stress shows up as a named driver.
	var found bool
	for _, d := range window.Drivers {
		if d.Factor == "climate_stress" {
			found = true
			assert.Equal(t, "shortens", d.Direction)
		}
	}
	assert.True(t, found)
}

func TestWindow_Invariants(t *testing.T) {
	calc := newCalc()

	installs := []model.ResolvedInstall{
		ownerInstall(model.SystemRoof, 2005),
		ownerInstall(model.SystemWaterHeater, 2019),
		{SystemType: model.SystemPlumbing, Year: intPtr(1995), Source: model.SourceHeuristic, Confidence: 0.3},
		{SystemType: model.SystemWindows, Year: nil, Source: model.SourceHeuristic, Confidence: 0.1},
	}
	for _, install := range installs {
		window, err := calc.Window(install, "", PropertyContext{ConstructionYear: 1990}, RegionContext{ClimateZone: "cold", FreezeThaw: true})
		require.NoError(t, err)

		assert.LessOrEqual(t, window.EarlyYear, window.LikelyYear, string(install.SystemType))
		assert.LessOrEqual(t, window.LikelyYear, window.LateYear, string(install.SystemType))
		assert.LessOrEqual(t, window.FailureProb12Mo, window.FailureProb24Mo, string(install.SystemType))
		assert.LessOrEqual(t, window.FailureProb24Mo, window.FailureProb36Mo, string(install.SystemType))
		assert.LessOrEqual(t, window.MonthsRemaining.P10, window.MonthsRemaining.P50, string(install.SystemType))
		assert.LessOrEqual(t, window.MonthsRemaining.P50, window.MonthsRemaining.P90, string(install.SystemType))
		assert.GreaterOrEqual(t, window.FailureProb12Mo, 0.0)
		assert.LessOrEqual(t, window.FailureProb36Mo, 1.0)
	}
}

func TestWindow_Deterministic(t *testing.T) {
	calc := newCalc()
	install := ownerInstall(model.SystemRoof, 2010)
	prop := PropertyContext{ConstructionYear: 2010, Occupants: 4, HasUsageData: true}
	region := RegionContext{ClimateZone: "hot_humid", Coastal: true}

	first, err := calc.Window(install, "asphalt", prop, region)
	require.NoError(t, err)
	second, err := calc.Window(install, "asphalt", prop, region)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWindow_MaterialVariant(t *testing.T) {
	calc := newCalc()
	prop := PropertyContext{ConstructionYear: 2010}

	asphalt, err := calc.Window(ownerInstall(model.SystemRoof, 2010), "asphalt", prop, RegionContext{})
	require.NoError(t, err)
	metal, err := calc.Window(ownerInstall(model.SystemRoof, 2010), "metal", prop, RegionContext{})
	require.NoError(t, err)

	// A metal roof outlasts asphalt from the same install year.
	assert.Greater(t, metal.LikelyYear, asphalt.LikelyYear)
}

func TestWindow_NoYearFallsBackToConstruction(t *testing.T) {
	calc := newCalc()
	install := model.ResolvedInstall{
		SystemType: model.SystemWindows,
		Year:       nil,
		Source:     model.SourceHeuristic,
		Confidence: 0.1,
	}

	window, err := calc.Window(install, "", PropertyContext{ConstructionYear: 2000}, RegionContext{})
	require.NoError(t, err)
	assert.Equal(t, model.UncertaintyWide, window.Uncertainty)

	_, err = calc.Window(install, "", PropertyContext{}, RegionContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no install year")
}

func TestWindow_UncertaintyNarrowsWithBetterSource(t *testing.T) {
	calc := newCalc()
	prop := PropertyContext{ConstructionYear: 2012, Occupants: 3, HasUsageData: true, MaintenanceScore: 0.8, HasMaintenanceData: true}
	region := RegionContext{ClimateZone: "temperate"}

	permit := model.ResolvedInstall{SystemType: model.SystemHVAC, Year: intPtr(2020), Source: model.SourcePermitVerified, Confidence: 0.95}
	heuristic := model.ResolvedInstall{SystemType: model.SystemHVAC, Year: intPtr(2020), Source: model.SourceHeuristic, Confidence: 0.3}

	pw, err := calc.Window(permit, "", prop, region)
	require.NoError(t, err)
	hw, err := calc.Window(heuristic, "", prop, region)
	require.NoError(t, err)

	assert.Greater(t, pw.Confidence, hw.Confidence)
	assert.LessOrEqual(t, widthRank(pw.Uncertainty), widthRank(hw.Uncertainty))
}

func widthRank(u model.UncertaintyClass) int {
	switch u {
	case model.UncertaintyNarrow:
		return 0
	case model.UncertaintyMedium:
		return 1
	default:
		return 2
	}
}

func TestWindow_UnknownSystemType(t *testing.T) {
	calc := newCalc()
	_, err := calc.Window(model.ResolvedInstall{SystemType: "pool_pump", Year: intPtr(2020)}, "", PropertyContext{}, RegionContext{})
	require.Error(t, err)
}
