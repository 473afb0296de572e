// Package exposure aggregates per-system lifecycle windows into
// probability-weighted monetary exposure at fixed forward horizons.
package exposure

import (
	"math"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

// Horizons are the fixed forward-looking windows, in years.
var Horizons = []int{3, 5, 10}

// Partial weights for "possible but not probable": only the early edge of the
// window falls inside the horizon. Weighting stays on these discrete tiers so
// the number reads back in plain language ("possible", "probable"); no
// continuous interpolation.
const (
	partialLowWeight  = 0.3
	partialHighWeight = 0.5
)

// Item pairs a system's window with its replacement cost range.
type Item struct {
	Window model.LifecycleWindow
	Cost   model.CostRange
}

// AtHorizon computes the low/high exposure for the systems within a single
// horizon cutoff year.
//
// Weighting rule, three discrete tiers:
//   - early year beyond the cutoff: zero exposure
//   - likely year within the cutoff: full cost range
//   - only the early year within the cutoff: partial (0.3x low, 0.5x high)
func AtHorizon(items []Item, cutoffYear int) model.CostRange {
	var total model.CostRange
	for _, it := range items {
		switch {
		case it.Window.EarlyYear > cutoffYear:
			// Nothing: the window has not opened inside this horizon.
		case it.Window.LikelyYear <= cutoffYear:
			total.Low += it.Cost.Low
			total.High += it.Cost.High
		default:
			total.Low += partialLowWeight * it.Cost.Low
			total.High += partialHighWeight * it.Cost.High
		}
	}
	total.Low = math.Round(total.Low)
	total.High = math.Round(total.High)
	return total
}

// Aggregate computes exposure at every fixed horizon relative to the given
// current year. Recomputed per request; never cached.
func Aggregate(items []Item, currentYear int) model.CapitalExposure {
	out := model.CapitalExposure{Horizons: make([]model.HorizonExposure, 0, len(Horizons))}
	for _, h := range Horizons {
		out.Horizons = append(out.Horizons, model.HorizonExposure{
			HorizonYears: h,
			Exposure:     AtHorizon(items, currentYear+h),
		})
	}
	return out
}
