// Package model defines the domain types shared across the lifecycle engine.
package model

import (
	"strings"
	"time"
)

// SystemType identifies a major home system tracked by the engine.
type SystemType string

const (
	SystemHVAC        SystemType = "hvac"
	SystemRoof        SystemType = "roof"
	SystemWaterHeater SystemType = "water_heater"
	SystemElectrical  SystemType = "electrical_panel"
	SystemPlumbing    SystemType = "plumbing"
	SystemWindows     SystemType = "windows"
)

// AllSystemTypes lists every supported system type in stable order.
var AllSystemTypes = []SystemType{
	SystemHVAC,
	SystemRoof,
	SystemWaterHeater,
	SystemElectrical,
	SystemPlumbing,
	SystemWindows,
}

// ParseSystemType converts a raw string to a SystemType.
// Returns ("", false) for unknown types; callers must treat that as a
// validation error, never default it.
func ParseSystemType(s string) (SystemType, bool) {
	st := SystemType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllSystemTypes {
		if st == known {
			return known, true
		}
	}
	return "", false
}

// EvidenceClassification describes what an evidence record says happened.
type EvidenceClassification string

const (
	ClassificationInstall      EvidenceClassification = "install"
	ClassificationReplacement  EvidenceClassification = "replacement"
	ClassificationMaintenance  EvidenceClassification = "maintenance"
	ClassificationUnclassified EvidenceClassification = "unclassified"
)

// Provenance tags where an evidence record came from.
type Provenance string

const (
	ProvenancePermit         Provenance = "permit"
	ProvenanceOwnerStatement Provenance = "owner_statement"
	ProvenanceInspection     Provenance = "inspection"
)

// DateAuthority ranks which permit date field an evidence record carries.
// Lower values are more authoritative.
type DateAuthority int

const (
	DateFinalized DateAuthority = iota
	DateIssued
	DateApproved
)

func (d DateAuthority) String() string {
	switch d {
	case DateFinalized:
		return "finalized"
	case DateIssued:
		return "issued"
	default:
		return "approved"
	}
}

// EvidenceRecord is one normalized fact about a system's installation or
// servicing. Records are created once by the evidence normalizers and never
// mutated afterward.
type EvidenceRecord struct {
	SystemType     SystemType             `json:"system_type"`
	Classification EvidenceClassification `json:"classification"`
	EffectiveDate  time.Time              `json:"effective_date"`
	DateAuthority  DateAuthority          `json:"date_authority"`
	Description    string                 `json:"description"`
	Provenance     Provenance             `json:"provenance"`
	Finalized      bool                   `json:"finalized"`
	Valuation      float64                `json:"valuation,omitempty"`
}
