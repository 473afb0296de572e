// Package authority resolves a system's install date from competing evidence
// sources. Resolution runs an ordered chain of strategies (permits, then
// explicit statements, then a construction-year heuristic) and the first
// strategy with an opinion wins. Conflicting dates are never blended.
package authority

import (
	"fmt"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

// Input carries everything a resolution needs. Evidence may mix provenances;
// each strategy filters for its own.
type Input struct {
	SystemType          model.SystemType
	Evidence            []model.EvidenceRecord
	ConstructionYear    int
	BaselineMedianYears float64
	Now                 time.Time
}

// Permit confidence: additive boosts over a shared baseline, by how clearly
// the permit describes the work.
const (
	permitBaseConfidence   = 0.65
	boostClassifiedInstall = 0.30
	boostClassifiedReplace = 0.25
	boostUnclassifiedMatch = 0.15

	inspectionConfidence = 0.60
	ownerConfidence      = 0.55

	heuristicConfidence         = 0.30
	heuristicCycledConfidence   = 0.20
	heuristicNoAnchorConfidence = 0.10
)

type strategy func(in Input) (*model.ResolvedInstall, bool)

// Resolve produces exactly one ResolvedInstall for the given system type.
// It is recomputed fresh on every call; nothing here persists.
func Resolve(in Input) (model.ResolvedInstall, error) {
	if _, ok := model.ParseSystemType(string(in.SystemType)); !ok {
		return model.ResolvedInstall{}, eris.Errorf("authority: unknown system type %q", in.SystemType)
	}
	if in.Now.IsZero() {
		in.Now = time.Now().UTC()
	}

	chain := []strategy{resolveFromPermits, resolveFromStatements, resolveFromHeuristic}
	for _, s := range chain {
		if resolved, ok := s(in); ok {
			zap.L().Debug("authority: resolved install",
				zap.String("system", string(in.SystemType)),
				zap.String("source", string(resolved.Source)),
				zap.Float64("confidence", resolved.Confidence),
			)
			return *resolved, nil
		}
	}

	// The heuristic never declines, so this is unreachable; kept for the
	// compiler and for safety if the chain is ever reordered.
	return model.ResolvedInstall{}, eris.Errorf("authority: no strategy produced a resolution for %s", in.SystemType)
}

// resolveFromPermits picks the most authoritative finalized permit that
// matches the system type. Maintenance permits never set an install date.
func resolveFromPermits(in Input) (*model.ResolvedInstall, bool) {
	var candidates []model.EvidenceRecord
	for _, rec := range in.Evidence {
		if rec.Provenance != model.ProvenancePermit || rec.SystemType != in.SystemType {
			continue
		}
		if !rec.Finalized {
			continue
		}
		if rec.Classification == model.ClassificationMaintenance {
			continue
		}
		candidates = append(candidates, rec)
	}
	if len(candidates) == 0 {
		return nil, false
	}

	// Most authoritative date field first; ties broken by most recent date.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].DateAuthority != candidates[j].DateAuthority {
			return candidates[i].DateAuthority < candidates[j].DateAuthority
		}
		return candidates[i].EffectiveDate.After(candidates[j].EffectiveDate)
	})
	winner := candidates[0]

	confidence := permitBaseConfidence
	switch winner.Classification {
	case model.ClassificationInstall:
		confidence += boostClassifiedInstall
	case model.ClassificationReplacement:
		confidence += boostClassifiedReplace
	default:
		confidence += boostUnclassifiedMatch
	}

	year := winner.EffectiveDate.Year()
	status := permitStatus(winner.Classification, year, in.ConstructionYear)

	return &model.ResolvedInstall{
		SystemType: in.SystemType,
		Year:       &year,
		Source:     model.SourcePermitVerified,
		Confidence: confidence,
		Status:     status,
		Rationale: fmt.Sprintf("finalized permit (%s, %s date %d): %s",
			winner.Classification, winner.DateAuthority, year, truncate(winner.Description, 80)),
	}, true
}

func permitStatus(class model.EvidenceClassification, year, constructionYear int) model.ReplacementStatus {
	switch class {
	case model.ClassificationReplacement:
		return model.StatusReplaced
	case model.ClassificationInstall:
		if constructionYear > 0 && year > constructionYear+2 {
			return model.StatusReplaced
		}
		if constructionYear > 0 {
			return model.StatusOriginal
		}
		return model.StatusUnknown
	default:
		return model.StatusUnknown
	}
}

// resolveFromStatements uses explicit owner/inspection statements that carry
// a specific year. Inspection reports outrank owner recollection; within a
// provenance the most recent stated year wins.
func resolveFromStatements(in Input) (*model.ResolvedInstall, bool) {
	pick := func(prov model.Provenance) *model.EvidenceRecord {
		var best *model.EvidenceRecord
		for i := range in.Evidence {
			rec := &in.Evidence[i]
			if rec.Provenance != prov || rec.SystemType != in.SystemType {
				continue
			}
			if rec.EffectiveDate.IsZero() {
				continue // vague statements are rejected upstream; belt and suspenders
			}
			if best == nil || rec.EffectiveDate.After(best.EffectiveDate) {
				best = rec
			}
		}
		return best
	}

	if rec := pick(model.ProvenanceInspection); rec != nil {
		return statementResolution(in, rec, model.SourceInspection, inspectionConfidence), true
	}
	if rec := pick(model.ProvenanceOwnerStatement); rec != nil {
		return statementResolution(in, rec, model.SourceOwnerReported, ownerConfidence), true
	}
	return nil, false
}

func statementResolution(in Input, rec *model.EvidenceRecord, src model.InstallSource, confidence float64) *model.ResolvedInstall {
	year := rec.EffectiveDate.Year()
	status := model.StatusUnknown
	if in.ConstructionYear > 0 {
		if year > in.ConstructionYear+2 {
			status = model.StatusReplaced
		} else {
			status = model.StatusOriginal
		}
	}
	return &model.ResolvedInstall{
		SystemType: in.SystemType,
		Year:       &year,
		Source:     src,
		Confidence: confidence,
		Status:     status,
		Rationale:  fmt.Sprintf("%s statement names %d: %s", src, year, truncate(rec.Description, 80)),
	}
}

// resolveFromHeuristic estimates from the construction year and the system's
// baseline service life. If the home is older than one full service life, the
// system has most likely been replaced at least once; the estimate advances
// by whole replacement cycles and the confidence drops.
func resolveFromHeuristic(in Input) (*model.ResolvedInstall, bool) {
	if in.ConstructionYear <= 0 {
		return &model.ResolvedInstall{
			SystemType: in.SystemType,
			Year:       nil,
			Source:     model.SourceHeuristic,
			Confidence: heuristicNoAnchorConfidence,
			Status:     model.StatusUnknown,
			Rationale:  "no evidence and no construction year; install date unknown",
		}, true
	}

	age := in.Now.Year() - in.ConstructionYear
	median := in.BaselineMedianYears
	if median <= 0 || float64(age) <= median {
		year := in.ConstructionYear
		return &model.ResolvedInstall{
			SystemType: in.SystemType,
			Year:       &year,
			Source:     model.SourceHeuristic,
			Confidence: heuristicConfidence,
			Status:     model.StatusOriginal,
			Rationale:  fmt.Sprintf("assumed original to %d construction", in.ConstructionYear),
		}, true
	}

	cycles := int(float64(age) / median)
	year := in.ConstructionYear + cycles*int(median)
	if year > in.Now.Year() {
		year = in.Now.Year()
	}
	return &model.ResolvedInstall{
		SystemType: in.SystemType,
		Year:       &year,
		Source:     model.SourceHeuristic,
		Confidence: heuristicCycledConfidence,
		Status:     model.StatusUnknown,
		Rationale: fmt.Sprintf("home age %dy exceeds %0.f-year service life; assuming replacement around %d",
			age, median, year),
	}, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
