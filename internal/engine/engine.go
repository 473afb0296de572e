// Package engine orchestrates one full lifecycle evaluation for a home:
// gather inputs in parallel, then run the pure pipeline left to right:
// normalize, resolve, hazard, exposure, arbitrate, govern. No stage re-enters
// an earlier one.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/authority"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/baseline"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/evidence"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/exposure"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/hazard"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/narrative"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/speech"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/store"
)

// maintenanceCadenceMonths is how often each system type expects service.
// Zero means the system has no routine service cadence.
var maintenanceCadenceMonths = map[model.SystemType]int{
	model.SystemHVAC:        12,
	model.SystemWaterHeater: 24,
	model.SystemRoof:        0,
	model.SystemElectrical:  0,
	model.SystemPlumbing:    0,
	model.SystemWindows:     0,
}

// Engine wires the store and baseline tables to the pure core.
type Engine struct {
	store store.Store
	table *baseline.Table
	model hazard.Model
	now   time.Time
}

// New creates an Engine over the given store and baseline table.
func New(st store.Store, table *baseline.Table) *Engine {
	now := time.Now().UTC()
	return &Engine{
		store: st,
		table: table,
		model: hazard.New(table).WithNow(now),
		now:   now,
	}
}

// WithNow fixes the evaluation time, for tests.
func (e *Engine) WithNow(t time.Time) *Engine {
	return &Engine{
		store: e.store,
		table: e.table,
		model: hazard.New(e.table).WithNow(t),
		now:   t,
	}
}

// Options tunes a single evaluation.
type Options struct {
	// AdvisorState gates the copy profile. Defaults to observing.
	AdvisorState model.AdvisorState
	// Persist controls whether the snapshot and resolution write-back happen.
	Persist bool
}

// Evaluate runs the full pipeline for one home. All reads happen up front in
// parallel; a failed fetch aborts before the core runs. There is no
// partial-result path.
func (e *Engine) Evaluate(ctx context.Context, homeID string, opts Options) (*model.EvaluationResult, error) {
	if opts.AdvisorState == "" {
		opts.AdvisorState = model.StateObserving
	}

	var (
		home        *model.Home
		systems     []model.HomeSystem
		permits     []model.PermitRow
		maintenance []model.MaintenanceEvent
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := e.store.GetHome(gCtx, homeID)
		if err != nil {
			return eris.Wrap(err, "engine: fetch home")
		}
		home = h
		return nil
	})
	g.Go(func() error {
		s, err := e.store.ListSystems(gCtx, homeID)
		if err != nil {
			return eris.Wrap(err, "engine: fetch systems")
		}
		systems = s
		return nil
	})
	g.Go(func() error {
		p, err := e.store.ListPermits(gCtx, homeID)
		if err != nil {
			return eris.Wrap(err, "engine: fetch permits")
		}
		permits = p
		return nil
	})
	g.Go(func() error {
		m, err := e.store.ListMaintenanceEvents(gCtx, homeID)
		if err != nil {
			return eris.Wrap(err, "engine: fetch maintenance")
		}
		maintenance = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result, err := e.evaluate(home, systems, permits, maintenance, opts.AdvisorState)
	if err != nil {
		return nil, err
	}

	if opts.Persist {
		if err := e.store.SaveEvaluation(ctx, result); err != nil {
			return nil, eris.Wrap(err, "engine: save evaluation")
		}
		for i, sys := range systems {
			res := result.Systems[i].Install
			if err := e.store.UpdateSystemResolution(ctx, sys.ID, res.Year, string(res.Source), res.Confidence); err != nil {
				zap.L().Warn("engine: resolution write-back failed",
					zap.String("system_id", sys.ID),
					zap.Error(err),
				)
			}
		}
	}

	return result, nil
}

// evaluate is the pure assembly over already-fetched inputs.
func (e *Engine) evaluate(home *model.Home, systems []model.HomeSystem, permits []model.PermitRow, maintenance []model.MaintenanceEvent, state model.AdvisorState) (*model.EvaluationResult, error) {
	log := zap.L().With(zap.String("home_id", home.ID))

	permitEvidence, err := evidence.NormalizePermits(permits)
	if err != nil {
		return nil, err
	}

	region := hazard.RegionContext{
		ClimateZone: home.ClimateZone,
		Coastal:     home.Coastal,
		FreezeThaw:  home.FreezeThaw,
	}

	result := &model.EvaluationResult{
		ID:          uuid.New().String(),
		HomeID:      home.ID,
		EvaluatedAt: e.now,
	}

	var items []exposure.Item
	var signals []narrative.Signal
	var worstRisk = model.RiskLow
	var minConfidence = 1.0

	for _, sys := range systems {
		evaluated, err := e.evaluateSystem(home, sys, permitEvidence, maintenance, region)
		if err != nil {
			return nil, err
		}
		result.Systems = append(result.Systems, *evaluated)

		items = append(items, exposure.Item{Window: evaluated.Window, Cost: evaluated.Cost})
		signals = append(signals, narrative.Signal{
			SystemType:         sys.SystemType,
			Risk:               evaluated.Window.Risk,
			MonthsToPlanning:   evaluated.Window.MonthsToPlanning,
			ConfidenceDelta:    evaluated.Install.Confidence - sys.StoredConfidence,
			MaintenanceOverdue: maintenanceOverdue(sys.SystemType, maintenance, e.now),
		})

		if riskRank(evaluated.Window.Risk) > riskRank(worstRisk) {
			worstRisk = evaluated.Window.Risk
		}
		if evaluated.Window.Confidence < minConfidence {
			minConfidence = evaluated.Window.Confidence
		}
	}

	result.Exposure = exposure.Aggregate(items, e.now.Year())
	result.Narrative = narrative.Arbitrate(signals)
	result.Profile = speech.Govern(state, minConfidence, worstRisk)

	log.Info("engine: evaluation complete",
		zap.Int("systems", len(result.Systems)),
		zap.String("narrative", string(result.Narrative.Tag)),
		zap.String("dominant", string(result.Narrative.DominantSystem)),
		zap.Bool("profile_gated", result.Profile == nil),
	)
	return result, nil
}

// evaluateSystem resolves one system's install and computes its window.
func (e *Engine) evaluateSystem(home *model.Home, sys model.HomeSystem, permitEvidence []model.EvidenceRecord, maintenance []model.MaintenanceEvent, region hazard.RegionContext) (*model.SystemEvaluation, error) {
	variant, err := e.table.Variant(sys.SystemType, sys.Material)
	if err != nil {
		return nil, err
	}

	records := make([]model.EvidenceRecord, 0, len(permitEvidence)+1)
	for _, rec := range permitEvidence {
		if rec.SystemType == sys.SystemType {
			records = append(records, rec)
		}
	}
	if sys.OwnerStatement != "" {
		rec, err := evidence.NormalizeStatement(sys.SystemType, sys.OwnerStatement, model.ProvenanceOwnerStatement)
		if err == nil {
			records = append(records, rec)
		} else if !eris.Is(err, evidence.ErrVagueStatement) {
			return nil, err
		}
		// Vague stored statements are skipped: resolution falls through to the
		// next authority and the UI re-prompts for a specific year.
	}

	install, err := authority.Resolve(authority.Input{
		SystemType:          sys.SystemType,
		Evidence:            records,
		ConstructionYear:    home.ConstructionYear,
		BaselineMedianYears: variant.Lifespan.MedianYears,
		Now:                 e.now,
	})
	if err != nil {
		return nil, err
	}

	score, hasData := maintenanceScore(sys.SystemType, maintenance, e.now)
	prop := hazard.PropertyContext{
		ConstructionYear:   home.ConstructionYear,
		Occupants:          home.Occupants,
		HasUsageData:       home.Occupants > 0,
		MaintenanceScore:   score,
		HasMaintenanceData: hasData,
	}

	window, err := e.model.Window(install, sys.Material, prop, region)
	if err != nil {
		return nil, err
	}

	return &model.SystemEvaluation{
		SystemType: sys.SystemType,
		Install:    install,
		Window:     window,
		Cost:       model.CostRange{Low: variant.Cost.Low, High: variant.Cost.High},
	}, nil
}

// maintenanceScore normalizes service cadence for a system: 1.0 when the last
// service is within one cadence period, decaying to 0 at three periods.
func maintenanceScore(st model.SystemType, events []model.MaintenanceEvent, now time.Time) (float64, bool) {
	cadence := maintenanceCadenceMonths[st]
	if cadence == 0 {
		return 0, false
	}

	var last time.Time
	for _, ev := range events {
		if ev.SystemType == st && ev.ServicedAt.After(last) {
			last = ev.ServicedAt
		}
	}
	if last.IsZero() {
		return 0, false
	}

	monthsSince := now.Sub(last).Hours() / (24 * 30.44)
	score := 1 - (monthsSince-float64(cadence))/(2*float64(cadence))
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score, true
}

// maintenanceOverdue reports whether a system with a service cadence has gone
// more than 1.5 cadence periods without a recorded service.
func maintenanceOverdue(st model.SystemType, events []model.MaintenanceEvent, now time.Time) bool {
	cadence := maintenanceCadenceMonths[st]
	if cadence == 0 {
		return false
	}
	var last time.Time
	for _, ev := range events {
		if ev.SystemType == st && ev.ServicedAt.After(last) {
			last = ev.ServicedAt
		}
	}
	if last.IsZero() {
		return true
	}
	monthsSince := now.Sub(last).Hours() / (24 * 30.44)
	return monthsSince > 1.5*float64(cadence)
}

func riskRank(r model.RiskLevel) int {
	switch r {
	case model.RiskHigh:
		return 2
	case model.RiskModerate:
		return 1
	default:
		return 0
	}
}
