package model

import "time"

// Home is the property record the engine evaluates against.
type Home struct {
	ID               string    `json:"id"`
	Address          string    `json:"address"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	ConstructionYear int       `json:"construction_year"`
	ClimateZone      string    `json:"climate_zone"`
	Coastal          bool      `json:"coastal"`
	FreezeThaw       bool      `json:"freeze_thaw"`
	Occupants        int       `json:"occupants"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HomeSystem is the stored per-system record for a home. RecordedYear and
// StoredConfidence reflect the previous evaluation's resolution and exist only
// so the arbiter can detect confidence improvement; they are never inputs to
// the hazard math.
type HomeSystem struct {
	ID               string     `json:"id"`
	HomeID           string     `json:"home_id"`
	SystemType       SystemType `json:"system_type"`
	Material         string     `json:"material,omitempty"` // e.g. roof "asphalt", water heater "tank"
	RecordedYear     *int       `json:"recorded_year,omitempty"`
	RecordedSource   string     `json:"recorded_source,omitempty"`
	StoredConfidence float64    `json:"stored_confidence"`
	OwnerStatement   string     `json:"owner_statement,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PermitRow is a raw permit record as it arrives from a county export or the
// record store. Loosely shaped on purpose: the evidence normalizer is the only
// component allowed to branch on it.
type PermitRow struct {
	ID             string     `json:"id"`
	HomeID         string     `json:"home_id"`
	Description    string     `json:"description"`
	Classification string     `json:"classification,omitempty"` // free-form source tag
	Status         string     `json:"status,omitempty"`
	IssueDate      *time.Time `json:"issue_date,omitempty"`
	FinalizeDate   *time.Time `json:"finalize_date,omitempty"`
	ApprovalDate   *time.Time `json:"approval_date,omitempty"`
	Valuation      float64    `json:"valuation,omitempty"`
}

// MaintenanceEvent is one timestamped service record for a system.
type MaintenanceEvent struct {
	ID          string     `json:"id"`
	HomeID      string     `json:"home_id"`
	SystemType  SystemType `json:"system_type"`
	ServicedAt  time.Time  `json:"serviced_at"`
	Description string     `json:"description,omitempty"`
}

// SystemEvaluation bundles the derived outputs for one system.
type SystemEvaluation struct {
	SystemType SystemType      `json:"system_type"`
	Install    ResolvedInstall `json:"install"`
	Window     LifecycleWindow `json:"window"`
	Cost       CostRange       `json:"cost"`
}

// EvaluationResult is the full engine output for one home, persisted as an
// immutable snapshot. Derived values are always recomputed on the next
// request, never read back as inputs.
type EvaluationResult struct {
	ID          string             `json:"id"`
	HomeID      string             `json:"home_id"`
	EvaluatedAt time.Time          `json:"evaluated_at"`
	Systems     []SystemEvaluation `json:"systems"`
	Exposure    CapitalExposure    `json:"exposure"`
	Narrative   NarrativeResult    `json:"narrative"`
	Profile     *CopyStyleProfile  `json:"profile,omitempty"` // nil when the advisor state is gated
}
