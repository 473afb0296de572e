// Package hazard converts a resolved install date plus property and region
// context into a probabilistic replacement window. The math is a fixed,
// explainable exponential-decay approximation with bounded multiplicative
// adjustments, chosen for auditability over statistical sophistication.
package hazard

import (
	"math"
	"time"

	"github.com/rotisserie/eris"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/baseline"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

// PropertyContext carries the per-home signals the calculator may use.
// Everything is passed in; the calculator performs no lookups.
type PropertyContext struct {
	ConstructionYear   int
	Occupants          int
	HasUsageData       bool
	MaintenanceScore   float64 // 0-1, normalized service cadence for this system
	HasMaintenanceData bool
}

// RegionContext carries regional stressors.
type RegionContext struct {
	ClimateZone string
	Coastal     bool
	FreezeThaw  bool
}

// Model is the hazard interface. The constant-hazard exponential curve in
// Calculator is a deliberate simplification pending real failure-data
// calibration; swapping in a Weibull or empirical model means implementing
// this interface, not touching callers.
type Model interface {
	Window(install model.ResolvedInstall, material string, prop PropertyContext, region RegionContext) (model.LifecycleWindow, error)
}

// Calculator is the exponential-decay implementation of Model. It is a pure
// function of its inputs plus the fixed evaluation time.
type Calculator struct {
	table *baseline.Table
	now   time.Time
}

// New creates a Calculator over the given baseline table.
func New(table *baseline.Table) *Calculator {
	return &Calculator{table: table, now: time.Now().UTC()}
}

// WithNow fixes the evaluation time, for deterministic evaluation and tests.
func (c *Calculator) WithNow(t time.Time) *Calculator {
	return &Calculator{table: c.table, now: t}
}

// Bounds on the combined lifespan multiplier and the percentile band.
const (
	combinedMultiplierMin = 0.6
	combinedMultiplierMax = 1.3

	zBand80      = 1.28 // two-sided 80% coverage
	bandMinYears = 1.5  // half-band; full band 3-30 years
	bandMaxYears = 15.0

	// Floor on adjusted months remaining for the failure curve. A system at
	// or past its effective life still fails probabilistically, not instantly.
	minHazardMonths = 6.0
)

// Window computes the lifecycle window for one system.
func (c *Calculator) Window(install model.ResolvedInstall, material string, prop PropertyContext, region RegionContext) (model.LifecycleWindow, error) {
	variant, err := c.table.Variant(install.SystemType, material)
	if err != nil {
		return model.LifecycleWindow{}, err
	}

	installYear, err := effectiveInstallYear(install, prop)
	if err != nil {
		return model.LifecycleWindow{}, err
	}

	completeness := dataCompleteness(install, prop, region)

	factors := adjustmentFactors(install, material, prop, region, completeness, c.table)
	combined := 1.0
	for _, f := range factors {
		combined *= f.value
	}
	combined = clamp(combined, combinedMultiplierMin, combinedMultiplierMax)

	effMedian := variant.Lifespan.MedianYears * combined
	currentYear := c.now.Year()
	age := float64(currentYear - installYear)
	if age < 0 {
		age = 0
	}
	remaining := effMedian - age
	if remaining < 0 {
		remaining = 0
	}

	adjMonths := math.Max(remaining*12, minHazardMonths)
	p12 := failureProb(12, adjMonths)
	p24 := failureProb(24, adjMonths)
	p36 := failureProb(36, adjMonths)

	// Band widens inversely with completeness: every unknown doubles toward 2x sigma.
	sigmaAdj := variant.Lifespan.StdDevYears * (2 - completeness)
	halfBand := clamp(zBand80*sigmaAdj, bandMinYears, bandMaxYears)

	likely := installYear + int(math.Round(effMedian))
	if likely < currentYear {
		likely = currentYear
	}
	early := likely - int(math.Round(halfBand))
	if early < currentYear {
		early = currentYear
	}
	late := likely + int(math.Round(halfBand))

	confidence := windowConfidence(install, prop, completeness)

	window := model.LifecycleWindow{
		SystemType:      install.SystemType,
		EarlyYear:       early,
		LikelyYear:      likely,
		LateYear:        late,
		Uncertainty:     uncertaintyClass(confidence),
		FailureProb12Mo: p12,
		FailureProb24Mo: p24,
		FailureProb36Mo: p36,
		MonthsRemaining: model.RemainingPercentiles{
			P10: round2(math.Max(0, (remaining-halfBand)*12)),
			P50: round2(remaining * 12),
			P90: round2((remaining + halfBand) * 12),
		},
		Confidence:       confidence,
		Risk:             riskLevel(p12, p36, remaining),
		MonthsToPlanning: (early - currentYear) * 12,
		Drivers:          drivers(factors),
	}
	return window, nil
}

// effectiveInstallYear falls back to the construction year when the resolver
// could not place an install, never to "no data".
func effectiveInstallYear(install model.ResolvedInstall, prop PropertyContext) (int, error) {
	if install.Year != nil {
		return *install.Year, nil
	}
	if prop.ConstructionYear > 0 {
		return prop.ConstructionYear, nil
	}
	return 0, eris.Errorf("hazard: no install year and no construction year for %s", install.SystemType)
}

// failureProb is the constant-hazard survival curve: P(fail by h months).
func failureProb(horizonMonths, adjMonthsRemaining float64) float64 {
	p := 1 - math.Exp(-horizonMonths/adjMonthsRemaining)
	return math.Round(clamp(p, 0, 1)*10000) / 10000
}

type factor struct {
	name  string
	value float64
}

// adjustmentFactors builds the independent, bounded multiplicative
// adjustments. Each stays close to 1.0 on its own; the combined product is
// clamped by the caller.
func adjustmentFactors(install model.ResolvedInstall, material string, prop PropertyContext, region RegionContext, completeness float64, table *baseline.Table) []factor {
	climate := table.ClimateFactor(region.ClimateZone, install.SystemType)

	maintenance := 1.0
	if prop.HasMaintenanceData {
		maintenance = 0.92 + 0.16*clamp(prop.MaintenanceScore, 0, 1)
	}

	verification := 1.0
	switch install.Source {
	case model.SourcePermitVerified:
		verification = 1.04
	case model.SourceInspection:
		verification = 1.01
	case model.SourceHeuristic:
		verification = 0.96
	}

	usage := 1.0
	if prop.HasUsageData {
		switch {
		case prop.Occupants <= 2:
			usage = 1.05
		case prop.Occupants <= 4:
			usage = 1.0
		default:
			usage = 0.93
		}
	}

	environment := 1.0
	if region.Coastal {
		environment *= 0.92
	}
	if region.FreezeThaw && exposedToFreezeThaw(install.SystemType) {
		environment *= 0.95
	}
	environment = clamp(environment, 0.85, 1.0)

	// Sparse data shades slightly pessimistic rather than optimistic.
	completenessAdj := 0.96 + 0.04*completeness

	return []factor{
		{"climate_stress", climate},
		{"maintenance_quality", maintenance},
		{"install_verification", verification},
		{"usage_intensity", usage},
		{"environmental_exposure", environment},
		{"data_completeness", completenessAdj},
	}
}

func exposedToFreezeThaw(st model.SystemType) bool {
	switch st {
	case model.SystemRoof, model.SystemPlumbing, model.SystemWindows:
		return true
	}
	return false
}

// dataCompleteness scores how much of the input surface is actually known.
func dataCompleteness(install model.ResolvedInstall, prop PropertyContext, region RegionContext) float64 {
	score := 0.0
	if install.Year != nil && install.Source != model.SourceHeuristic {
		score += 0.35
	} else if install.Year != nil {
		score += 0.15
	}
	if prop.HasMaintenanceData {
		score += 0.25
	}
	if prop.HasUsageData {
		score += 0.20
	}
	if region.ClimateZone != "" {
		score += 0.20
	}
	return clamp(score, 0, 1)
}

// windowConfidence is the window's own confidence, distinct from the install
// confidence: a weighted sum of verification, maintenance signal, data
// completeness, and usage-signal presence.
func windowConfidence(install model.ResolvedInstall, prop PropertyContext, completeness float64) float64 {
	verification := 0.2
	switch install.Source {
	case model.SourcePermitVerified:
		verification = 1.0
	case model.SourceInspection:
		verification = 0.7
	case model.SourceOwnerReported:
		verification = 0.5
	}

	maintenance := 0.0
	if prop.HasMaintenanceData {
		maintenance = clamp(prop.MaintenanceScore, 0, 1)
	}
	usage := 0.0
	if prop.HasUsageData {
		usage = 1.0
	}

	c := 0.35*verification + 0.25*maintenance + 0.25*completeness + 0.15*usage
	return clamp(c, 0, 1)
}

// uncertaintyClass is a monotone function of confidence: higher confidence
// never yields a wider class.
func uncertaintyClass(confidence float64) model.UncertaintyClass {
	switch {
	case confidence >= 0.7:
		return model.UncertaintyNarrow
	case confidence >= 0.4:
		return model.UncertaintyMedium
	default:
		return model.UncertaintyWide
	}
}

func riskLevel(p12, p36, remainingYears float64) model.RiskLevel {
	switch {
	case p12 >= 0.5 || remainingYears <= 1:
		return model.RiskHigh
	case p36 >= 0.5 || remainingYears <= 3:
		return model.RiskModerate
	default:
		return model.RiskLow
	}
}

// drivers names the factors that materially moved the lifespan estimate.
func drivers(factors []factor) []model.RiskDriver {
	var out []model.RiskDriver
	for _, f := range factors {
		delta := f.value - 1.0
		if math.Abs(delta) < 0.02 {
			continue
		}
		direction := "extends"
		if delta < 0 {
			direction = "shortens"
		}
		severity := "mild"
		switch {
		case math.Abs(delta) >= 0.08:
			severity = "strong"
		case math.Abs(delta) >= 0.04:
			severity = "moderate"
		}
		out = append(out, model.RiskDriver{Factor: f.name, Direction: direction, Severity: severity})
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
