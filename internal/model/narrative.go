package model

// PriorityTag is the dominant narrative state selected by the arbiter.
type PriorityTag string

const (
	PriorityUrgency   PriorityTag = "URGENCY"
	PriorityPlanning  PriorityTag = "PLANNING"
	PriorityProgress  PriorityTag = "PROGRESS"
	PriorityStability PriorityTag = "STABILITY"
)

// SignalKind tags a secondary signal collected alongside the dominant narrative.
type SignalKind string

const (
	SignalHighRisk           SignalKind = "high_risk"
	SignalPlanningWindow     SignalKind = "planning_window"
	SignalMaintenanceOverdue SignalKind = "maintenance_overdue"
)

// SecondarySignal is a non-dominant flag surfaced for supporting context.
type SecondarySignal struct {
	Kind       SignalKind `json:"kind"`
	SystemType SystemType `json:"system_type,omitempty"`
}

// NarrativeResult is the arbiter's single output per evaluation: exactly one
// dominant tag, the system that triggered it (empty for default stability),
// and the collected secondary signals.
type NarrativeResult struct {
	Tag               PriorityTag       `json:"tag"`
	DominantSystem    SystemType        `json:"dominant_system,omitempty"`
	Secondary         []SecondarySignal `json:"secondary,omitempty"`
	RecommendedAction string            `json:"recommended_action,omitempty"`
}

// AdvisorState is the conversational state of the hosting advisor, supplied
// by the caller. Two states (intake, suspended) hard-gate all text generation.
type AdvisorState string

const (
	StateIntake    AdvisorState = "intake"
	StateObserving AdvisorState = "observing"
	StatePlanning  AdvisorState = "planning"
	StateExecution AdvisorState = "execution"
	StateSuspended AdvisorState = "suspended"
)

// ParseAdvisorState validates a caller-supplied state string. Callers must
// treat a false return as a bad-request error.
func ParseAdvisorState(s string) (AdvisorState, bool) {
	switch AdvisorState(s) {
	case StateIntake, StateObserving, StatePlanning, StateExecution, StateSuspended:
		return AdvisorState(s), true
	}
	return "", false
}

// Verbosity controls how much a generated reply may say.
type Verbosity string

const (
	VerbosityMinimal  Verbosity = "minimal"
	VerbosityStandard Verbosity = "standard"
	VerbosityDetailed Verbosity = "detailed"
)

// Specificity controls how precise generated claims may be.
type Specificity string

const (
	SpecificityGeneral Specificity = "general"
	SpecificityRanged  Specificity = "ranged"
	SpecificityExact   Specificity = "exact"
)

// CostDisclosure controls whether dollar figures may appear in copy.
type CostDisclosure string

const (
	CostDisclosureNone     CostDisclosure = "none"
	CostDisclosureRange    CostDisclosure = "range"
	CostDisclosureEstimate CostDisclosure = "estimate"
)

// Tone is the emotional register of generated copy.
type Tone string

const (
	ToneReassuring Tone = "reassuring"
	ToneNeutral    Tone = "neutral"
	ToneAdvisory   Tone = "advisory"
)

// Urgency is how insistently copy may press for action.
type Urgency string

const (
	UrgencyNone Urgency = "none"
	UrgencySoft Urgency = "soft"
	UrgencyFirm Urgency = "firm"
)

// AllowedActs is the set of speech acts the text layer may perform.
type AllowedActs struct {
	Inform            bool `json:"inform"`
	AskClarifying     bool `json:"ask_clarifying"`
	Recommend         bool `json:"recommend"`
	InitiateExecution bool `json:"initiate_execution"`
}

// CopyStyleProfile bounds what any downstream text generator may produce.
// Derived and stateless; recomputed on every call.
type CopyStyleProfile struct {
	Verbosity      Verbosity      `json:"verbosity"`
	Specificity    Specificity    `json:"specificity"`
	CostDisclosure CostDisclosure `json:"cost_disclosure"`
	Tone           Tone           `json:"tone"`
	Urgency        Urgency        `json:"urgency"`
	Acts           AllowedActs    `json:"allowed_acts"`
}
