package model

// InstallSource tags which authority produced a resolved install date.
type InstallSource string

const (
	SourcePermitVerified InstallSource = "permit_verified"
	SourceOwnerReported  InstallSource = "owner_reported"
	SourceInspection     InstallSource = "inspection"
	SourceHeuristic      InstallSource = "heuristic"
)

// ReplacementStatus records whether a system is believed original to the home.
type ReplacementStatus string

const (
	StatusOriginal ReplacementStatus = "original"
	StatusReplaced ReplacementStatus = "replaced"
	StatusUnknown  ReplacementStatus = "unknown"
)

// ResolvedInstall is the single authoritative answer for when a system was
// installed. It is recomputed fresh on every evaluation and never persisted
// as a mutable record.
type ResolvedInstall struct {
	SystemType SystemType        `json:"system_type"`
	Year       *int              `json:"year"` // nil when no source could place it
	Source     InstallSource     `json:"source"`
	Confidence float64           `json:"confidence"` // 0-1, monotonic with source authority
	Status     ReplacementStatus `json:"replacement_status"`
	Rationale  string            `json:"rationale"`
}

// UncertaintyClass buckets how wide a lifecycle window is.
type UncertaintyClass string

const (
	UncertaintyNarrow UncertaintyClass = "narrow"
	UncertaintyMedium UncertaintyClass = "medium"
	UncertaintyWide   UncertaintyClass = "wide"
)

// RiskLevel is the coarse per-system risk classification consumed by the
// narrative arbiter and the copy governor.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// RiskDriver names one factor that moved a system's effective lifespan.
type RiskDriver struct {
	Factor    string `json:"factor"`
	Direction string `json:"direction"` // "shortens" or "extends"
	Severity  string `json:"severity"`  // "mild", "moderate", "strong"
}

// RemainingPercentiles is the monthly-remaining life band (p10/p50/p90),
// in months.
type RemainingPercentiles struct {
	P10 float64 `json:"p10"`
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
}

// LifecycleWindow is the hazard calculator's output for one system.
// Invariants: EarlyYear <= LikelyYear <= LateYear; failure probabilities are
// non-decreasing with horizon; the uncertainty class narrows (never widens)
// as confidence rises.
type LifecycleWindow struct {
	SystemType       SystemType           `json:"system_type"`
	EarlyYear        int                  `json:"early_year"`
	LikelyYear       int                  `json:"likely_year"`
	LateYear         int                  `json:"late_year"`
	Uncertainty      UncertaintyClass     `json:"uncertainty"`
	FailureProb12Mo  float64              `json:"failure_prob_12mo"`
	FailureProb24Mo  float64              `json:"failure_prob_24mo"`
	FailureProb36Mo  float64              `json:"failure_prob_36mo"`
	MonthsRemaining  RemainingPercentiles `json:"months_remaining"`
	Confidence       float64              `json:"confidence"` // window confidence, distinct from install confidence
	Risk             RiskLevel            `json:"risk"`
	MonthsToPlanning int                  `json:"months_to_planning"` // months until the early edge of the window
	Drivers          []RiskDriver         `json:"drivers,omitempty"`
}

// CostRange is a low/high dollar estimate for replacing a system.
type CostRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// HorizonExposure is the probability-weighted replacement exposure inside one
// forward horizon.
type HorizonExposure struct {
	HorizonYears int       `json:"horizon_years"`
	Exposure     CostRange `json:"exposure"`
}

// CapitalExposure aggregates horizon exposure across all of a home's systems.
// Recomputed per request, never cached across system-set changes.
type CapitalExposure struct {
	Horizons []HorizonExposure `json:"horizons"`
}

// At returns the exposure for the given horizon, or a zero range if the
// horizon was not computed.
func (c CapitalExposure) At(years int) CostRange {
	for _, h := range c.Horizons {
		if h.HorizonYears == years {
			return h.Exposure
		}
	}
	return CostRange{}
}
