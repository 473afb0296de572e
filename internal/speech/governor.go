// Package speech maps (advisor state, confidence, risk) to a bounded copy
// style policy. The policy is a static state-by-bucket lookup table plus one
// risk override rule, so a human reviewer can audit the whole surface by
// reading this file.
package speech

import (
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

// ConfidenceBucket coarsens a confidence score for table lookup.
type ConfidenceBucket string

const (
	BucketLow    ConfidenceBucket = "low"    // < 0.5
	BucketMedium ConfidenceBucket = "medium" // < 0.8
	BucketHigh   ConfidenceBucket = "high"
)

// Bucket converts a confidence score to its bucket.
func Bucket(confidence float64) ConfidenceBucket {
	switch {
	case confidence < 0.5:
		return BucketLow
	case confidence < 0.8:
		return BucketMedium
	default:
		return BucketHigh
	}
}

type profileKey struct {
	state  model.AdvisorState
	bucket ConfidenceBucket
}

// profileTable is the full governance table. Constructed once at process
// start and never mutated; no synchronization is needed.
//
// Intake and suspended states are absent on purpose: they are hard-gated and
// produce no profile at all.
var profileTable = map[profileKey]model.CopyStyleProfile{
	{model.StateObserving, BucketLow}: {
		Verbosity:      model.VerbosityMinimal,
		Specificity:    model.SpecificityGeneral,
		CostDisclosure: model.CostDisclosureNone,
		Tone:           model.ToneReassuring,
		Urgency:        model.UrgencyNone,
		Acts:           model.AllowedActs{Inform: true, AskClarifying: true},
	},
	{model.StateObserving, BucketMedium}: {
		Verbosity:      model.VerbosityStandard,
		Specificity:    model.SpecificityGeneral,
		CostDisclosure: model.CostDisclosureNone,
		Tone:           model.ToneNeutral,
		Urgency:        model.UrgencyNone,
		Acts:           model.AllowedActs{Inform: true, AskClarifying: true},
	},
	{model.StateObserving, BucketHigh}: {
		Verbosity:      model.VerbosityStandard,
		Specificity:    model.SpecificityRanged,
		CostDisclosure: model.CostDisclosureRange,
		Tone:           model.ToneNeutral,
		Urgency:        model.UrgencyNone,
		Acts:           model.AllowedActs{Inform: true, AskClarifying: true, Recommend: true},
	},
	{model.StatePlanning, BucketLow}: {
		Verbosity:      model.VerbosityStandard,
		Specificity:    model.SpecificityGeneral,
		CostDisclosure: model.CostDisclosureNone,
		Tone:           model.ToneNeutral,
		Urgency:        model.UrgencyNone,
		Acts:           model.AllowedActs{Inform: true, AskClarifying: true},
	},
	{model.StatePlanning, BucketMedium}: {
		Verbosity:      model.VerbosityStandard,
		Specificity:    model.SpecificityRanged,
		CostDisclosure: model.CostDisclosureRange,
		Tone:           model.ToneAdvisory,
		Urgency:        model.UrgencyNone,
		Acts:           model.AllowedActs{Inform: true, AskClarifying: true, Recommend: true},
	},
	{model.StatePlanning, BucketHigh}: {
		Verbosity:      model.VerbosityDetailed,
		Specificity:    model.SpecificityRanged,
		CostDisclosure: model.CostDisclosureEstimate,
		Tone:           model.ToneAdvisory,
		Urgency:        model.UrgencySoft,
		Acts:           model.AllowedActs{Inform: true, AskClarifying: true, Recommend: true},
	},
	{model.StateExecution, BucketLow}: {
		Verbosity:      model.VerbosityStandard,
		Specificity:    model.SpecificityRanged,
		CostDisclosure: model.CostDisclosureRange,
		Tone:           model.ToneAdvisory,
		Urgency:        model.UrgencyNone,
		Acts:           model.AllowedActs{Inform: true, AskClarifying: true, Recommend: true},
	},
	{model.StateExecution, BucketMedium}: {
		Verbosity:      model.VerbosityDetailed,
		Specificity:    model.SpecificityRanged,
		CostDisclosure: model.CostDisclosureEstimate,
		Tone:           model.ToneAdvisory,
		Urgency:        model.UrgencySoft,
		Acts:           model.AllowedActs{Inform: true, AskClarifying: true, Recommend: true, InitiateExecution: true},
	},
	{model.StateExecution, BucketHigh}: {
		Verbosity:      model.VerbosityDetailed,
		Specificity:    model.SpecificityExact,
		CostDisclosure: model.CostDisclosureEstimate,
		Tone:           model.ToneAdvisory,
		Urgency:        model.UrgencyFirm,
		Acts:           model.AllowedActs{Inform: true, AskClarifying: true, Recommend: true, InitiateExecution: true},
	},
}

// Govern returns the copy style profile for the given state, confidence, and
// risk, or nil while the state is gated. The risk overlay may only loosen
// urgency from none to soft under high risk, or force it to none under low
// risk; it never touches tone, cost disclosure, or allowed acts.
func Govern(state model.AdvisorState, confidence float64, risk model.RiskLevel) *model.CopyStyleProfile {
	if state == model.StateIntake || state == model.StateSuspended {
		return nil
	}

	profile, ok := profileTable[profileKey{state, Bucket(confidence)}]
	if !ok {
		return nil
	}

	switch risk {
	case model.RiskHigh:
		if profile.Urgency == model.UrgencyNone {
			profile.Urgency = model.UrgencySoft
		}
	case model.RiskLow:
		profile.Urgency = model.UrgencyNone
	}

	return &profile
}
