// Package narrative arbitrates many systems' signals into exactly one
// dominant narrative. The arbiter is a pure function over the current signal
// set; its "states" are priority levels, not persisted state.
package narrative

import (
	"go.uber.org/zap"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

// PlanningWindowMonths is the threshold below which a system enters the
// planning conversation.
const PlanningWindowMonths = 36

// ConfidenceDeltaThreshold is the minimum confidence improvement since the
// last observation that counts as progress worth narrating.
const ConfidenceDeltaThreshold = 0.15

// Signal is the per-system input to arbitration, in stable input order.
type Signal struct {
	SystemType         model.SystemType
	Risk               model.RiskLevel
	MonthsToPlanning   int
	ConfidenceDelta    float64 // resolved confidence minus last stored confidence
	MaintenanceOverdue bool
}

// Arbitrate selects exactly one dominant narrative. It never returns more
// than one dominant result and never zero: default stability is the
// guaranteed terminal fallback, including for an empty signal list.
//
// When several systems qualify at the same level, the earliest input position
// wins. That is a documented tie-break, not a ranking algorithm.
func Arbitrate(signals []Signal) model.NarrativeResult {
	var result model.NarrativeResult

	switch {
	case firstMatch(signals, isHighRisk, &result):
		result.Tag = model.PriorityUrgency
		result.RecommendedAction = "get_replacement_quotes"
	case firstMatch(signals, inPlanningWindow, &result):
		result.Tag = model.PriorityPlanning
		result.RecommendedAction = "start_budgeting"
	case firstMatch(signals, confidenceImproved, &result):
		result.Tag = model.PriorityProgress
	case firstMatch(signals, maintenanceOverdue, &result):
		result.Tag = model.PriorityStability
		result.RecommendedAction = "schedule_maintenance"
	default:
		result.Tag = model.PriorityStability
	}

	result.Secondary = collectSecondary(signals, result.DominantSystem)

	zap.L().Debug("narrative: arbitrated",
		zap.String("tag", string(result.Tag)),
		zap.String("dominant", string(result.DominantSystem)),
		zap.Int("secondary", len(result.Secondary)),
	)
	return result
}

func firstMatch(signals []Signal, pred func(Signal) bool, result *model.NarrativeResult) bool {
	for _, s := range signals {
		if pred(s) {
			result.DominantSystem = s.SystemType
			return true
		}
	}
	return false
}

func isHighRisk(s Signal) bool { return s.Risk == model.RiskHigh }

func inPlanningWindow(s Signal) bool { return s.MonthsToPlanning < PlanningWindowMonths }

func confidenceImproved(s Signal) bool { return s.ConfidenceDelta > ConfidenceDeltaThreshold }

func maintenanceOverdue(s Signal) bool { return s.MaintenanceOverdue }

// collectSecondary gathers the non-dominant flags: every other system's
// high-risk or planning-window signal plus maintenance-overdue flags. The
// dominant system is always excluded to avoid duplication. Signals are
// collected, not arbitrated.
func collectSecondary(signals []Signal, dominant model.SystemType) []model.SecondarySignal {
	var out []model.SecondarySignal
	for _, s := range signals {
		if s.SystemType == dominant {
			continue
		}
		switch {
		case s.Risk == model.RiskHigh:
			out = append(out, model.SecondarySignal{Kind: model.SignalHighRisk, SystemType: s.SystemType})
		case s.MonthsToPlanning < PlanningWindowMonths:
			out = append(out, model.SecondarySignal{Kind: model.SignalPlanningWindow, SystemType: s.SystemType})
		}
		if s.MaintenanceOverdue {
			out = append(out, model.SecondarySignal{Kind: model.SignalMaintenanceOverdue, SystemType: s.SystemType})
		}
	}
	return out
}
