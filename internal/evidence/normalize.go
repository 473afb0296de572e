// Package evidence normalizes raw permit, inspection, and owner-statement
// rows into immutable EvidenceRecords at the boundary. No downstream
// component branches on raw-source shape.
package evidence

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

// ErrVagueStatement is returned when an owner statement carries no specific
// year. The caller must re-prompt; a vague statement never produces a
// resolution update.
var ErrVagueStatement = eris.New("evidence: statement has no specific year")

// systemKeywords maps description keywords to system types. First match wins,
// checked in the order of model.AllSystemTypes for stability.
var systemKeywords = map[model.SystemType][]string{
	model.SystemHVAC: {
		"hvac", "air condition", "a/c", "ac unit", "furnace", "heat pump",
		"condenser", "air handler", "mini split", "mini-split", "heating system",
	},
	model.SystemRoof: {
		"roof", "re-roof", "reroof", "shingle", "tear off", "tear-off",
	},
	model.SystemWaterHeater: {
		"water heater", "hot water", "tankless",
	},
	model.SystemElectrical: {
		"electrical panel", "service panel", "breaker panel", "panel upgrade",
		"200 amp", "100 amp", "rewire",
	},
	model.SystemPlumbing: {
		"repipe", "re-pipe", "plumbing", "sewer line", "water line", "water main",
	},
	model.SystemWindows: {
		"window replacement", "window install", "windows", "glazing",
	},
}

// replacementKeywords indicate an existing system was swapped out.
var replacementKeywords = []string{
	"replace", "replacement", "change out", "changeout", "change-out",
	"swap", "upgrade", "re-roof", "reroof", "repipe", "re-pipe", "tear off",
}

// installKeywords indicate a new installation.
var installKeywords = []string{
	"install", "installation", "new ", "add ", "addition of",
}

// maintenanceKeywords indicate servicing rather than install/replace.
var maintenanceKeywords = []string{
	"repair", "service", "tune up", "tune-up", "maintenance", "patch",
	"recharge", "clean", "inspect",
}

// ClassifySystem matches a free-text description to a system type.
// Returns ("", false) when no keyword matches.
func ClassifySystem(description string) (model.SystemType, bool) {
	lower := strings.ToLower(description)
	for _, st := range model.AllSystemTypes {
		for _, kw := range systemKeywords[st] {
			if strings.Contains(lower, kw) {
				return st, true
			}
		}
	}
	return "", false
}

// classifyWork determines what the described work was. Maintenance keywords
// are checked first so "repair roof shingles" does not read as a replacement.
func classifyWork(description string) model.EvidenceClassification {
	lower := strings.ToLower(description)
	for _, kw := range maintenanceKeywords {
		if strings.Contains(lower, kw) {
			return model.ClassificationMaintenance
		}
	}
	for _, kw := range replacementKeywords {
		if strings.Contains(lower, kw) {
			return model.ClassificationReplacement
		}
	}
	for _, kw := range installKeywords {
		if strings.Contains(lower, kw) {
			return model.ClassificationInstall
		}
	}
	return model.ClassificationUnclassified
}

// permitDate selects the most authoritative date on a permit row:
// finalization over issuance over approval.
func permitDate(row model.PermitRow) (time.Time, model.DateAuthority, bool) {
	if row.FinalizeDate != nil && !row.FinalizeDate.IsZero() {
		return *row.FinalizeDate, model.DateFinalized, true
	}
	if row.IssueDate != nil && !row.IssueDate.IsZero() {
		return *row.IssueDate, model.DateIssued, true
	}
	if row.ApprovalDate != nil && !row.ApprovalDate.IsZero() {
		return *row.ApprovalDate, model.DateApproved, true
	}
	return time.Time{}, 0, false
}

// finalizedStatuses are permit status values that count as finalized.
var finalizedStatuses = map[string]bool{
	"final": true, "finaled": true, "finalized": true,
	"complete": true, "completed": true, "closed": true,
}

// NormalizePermit converts a raw permit row into an EvidenceRecord.
// Rows that match no known system type are skipped (ok=false): not every
// permit on a parcel concerns a tracked system. A matched permit with no
// usable date is an input-validation error, never silently guessed.
func NormalizePermit(row model.PermitRow) (model.EvidenceRecord, bool, error) {
	st, ok := ClassifySystem(row.Description)
	if !ok {
		// Source classification tags are a fallback for terse descriptions.
		if tagged, tagOK := model.ParseSystemType(row.Classification); tagOK {
			st = tagged
		} else {
			return model.EvidenceRecord{}, false, nil
		}
	}

	date, authority, hasDate := permitDate(row)
	if !hasDate {
		return model.EvidenceRecord{}, false, eris.Errorf(
			"evidence: permit %s matched system %s but has no usable date", row.ID, st)
	}

	rec := model.EvidenceRecord{
		SystemType:     st,
		Classification: classifyWork(row.Description),
		EffectiveDate:  date,
		DateAuthority:  authority,
		Description:    row.Description,
		Provenance:     model.ProvenancePermit,
		Finalized:      finalizedStatuses[strings.ToLower(strings.TrimSpace(row.Status))] || authority == model.DateFinalized,
		Valuation:      row.Valuation,
	}
	zap.L().Debug("evidence: normalized permit",
		zap.String("permit_id", row.ID),
		zap.String("system", string(st)),
		zap.String("classification", string(rec.Classification)),
		zap.String("date_authority", authority.String()),
	)
	return rec, true, nil
}

// NormalizePermits normalizes a batch of permit rows, collecting records and
// surfacing the first validation error.
func NormalizePermits(rows []model.PermitRow) ([]model.EvidenceRecord, error) {
	var records []model.EvidenceRecord
	for _, row := range rows {
		rec, ok, err := NormalizePermit(row)
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

var yearPattern = regexp.MustCompile(`\b(19[5-9]\d|20[0-4]\d)\b`)

// ExtractYear pulls a four-digit year out of free text.
func ExtractYear(text string) (int, bool) {
	match := yearPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return year, true
}

// NormalizeStatement converts an owner or inspection statement about a system
// into an EvidenceRecord. Statements without a specific year fail with
// ErrVagueStatement. This is a hard input-validation rule, not a fallback.
func NormalizeStatement(st model.SystemType, text string, prov model.Provenance) (model.EvidenceRecord, error) {
	if prov != model.ProvenanceOwnerStatement && prov != model.ProvenanceInspection {
		return model.EvidenceRecord{}, eris.Errorf("evidence: provenance %q is not a statement source", prov)
	}
	year, ok := ExtractYear(text)
	if !ok {
		return model.EvidenceRecord{}, ErrVagueStatement
	}

	return model.EvidenceRecord{
		SystemType:     st,
		Classification: classifyWork(text),
		EffectiveDate:  time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC),
		Description:    text,
		Provenance:     prov,
	}, nil
}
