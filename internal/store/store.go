// Package store persists homes, systems, permits, maintenance events, and
// evaluation snapshots. Two backends implement the same interface: SQLite for
// local CLI use and Postgres for hosted deployments.
package store

import (
	"context"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

// Store is the persistence interface for the lifecycle engine. All derived
// values (resolutions, windows, exposure) are recomputed per request; the
// store only holds source rows and immutable evaluation snapshots.
type Store interface {
	// Homes
	CreateHome(ctx context.Context, home model.Home) (*model.Home, error)
	GetHome(ctx context.Context, id string) (*model.Home, error)
	ListHomes(ctx context.Context) ([]model.Home, error)

	// Systems
	UpsertSystem(ctx context.Context, system model.HomeSystem) (*model.HomeSystem, error)
	ListSystems(ctx context.Context, homeID string) ([]model.HomeSystem, error)
	// UpdateSystemResolution records the latest resolution's year, source,
	// and confidence on the system row so the next evaluation can detect
	// confidence improvement. It never feeds back into the hazard math.
	UpdateSystemResolution(ctx context.Context, systemID string, year *int, source string, confidence float64) error

	// Permits
	InsertPermits(ctx context.Context, permits []model.PermitRow) (int, error)
	ListPermits(ctx context.Context, homeID string) ([]model.PermitRow, error)

	// Maintenance
	AddMaintenanceEvent(ctx context.Context, event model.MaintenanceEvent) (*model.MaintenanceEvent, error)
	ListMaintenanceEvents(ctx context.Context, homeID string) ([]model.MaintenanceEvent, error)

	// Evaluations
	SaveEvaluation(ctx context.Context, result *model.EvaluationResult) error
	GetLatestEvaluation(ctx context.Context, homeID string) (*model.EvaluationResult, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
