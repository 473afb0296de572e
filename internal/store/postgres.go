package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/db"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS homes (
	id                TEXT PRIMARY KEY,
	address           TEXT NOT NULL,
	city              TEXT NOT NULL DEFAULT '',
	state             TEXT NOT NULL DEFAULT '',
	construction_year INTEGER NOT NULL DEFAULT 0,
	climate_zone      TEXT NOT NULL DEFAULT '',
	coastal           BOOLEAN NOT NULL DEFAULT FALSE,
	freeze_thaw       BOOLEAN NOT NULL DEFAULT FALSE,
	occupants         INTEGER NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS home_systems (
	id                TEXT PRIMARY KEY,
	home_id           TEXT NOT NULL REFERENCES homes(id),
	system_type       TEXT NOT NULL,
	material          TEXT NOT NULL DEFAULT '',
	recorded_year     INTEGER,
	recorded_source   TEXT NOT NULL DEFAULT '',
	stored_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	owner_statement   TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE(home_id, system_type)
);

CREATE TABLE IF NOT EXISTS permits (
	id             TEXT PRIMARY KEY,
	home_id        TEXT NOT NULL REFERENCES homes(id),
	description    TEXT NOT NULL,
	classification TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT '',
	issue_date     TIMESTAMPTZ,
	finalize_date  TIMESTAMPTZ,
	approval_date  TIMESTAMPTZ,
	valuation      DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS maintenance_events (
	id          TEXT PRIMARY KEY,
	home_id     TEXT NOT NULL REFERENCES homes(id),
	system_type TEXT NOT NULL,
	serviced_at TIMESTAMPTZ NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS evaluations (
	id           TEXT PRIMARY KEY,
	home_id      TEXT NOT NULL REFERENCES homes(id),
	evaluated_at TIMESTAMPTZ NOT NULL,
	result       JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_systems_home ON home_systems(home_id);
CREATE INDEX IF NOT EXISTS idx_permits_home ON permits(home_id);
CREATE INDEX IF NOT EXISTS idx_maintenance_home ON maintenance_events(home_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_home ON evaluations(home_id, evaluated_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func (s *PostgresStore) CreateHome(ctx context.Context, home model.Home) (*model.Home, error) {
	if home.ID == "" {
		home.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	home.CreatedAt = now
	home.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO homes (id, address, city, state, construction_year, climate_zone, coastal, freeze_thaw, occupants, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		home.ID, home.Address, home.City, home.State, home.ConstructionYear,
		home.ClimateZone, home.Coastal, home.FreezeThaw, home.Occupants, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert home")
	}
	return &home, nil
}

func (s *PostgresStore) GetHome(ctx context.Context, id string) (*model.Home, error) {
	var h model.Home
	err := s.pool.QueryRow(ctx,
		`SELECT id, address, city, state, construction_year, climate_zone, coastal, freeze_thaw, occupants, created_at, updated_at
		 FROM homes WHERE id = $1`, id,
	).Scan(&h.ID, &h.Address, &h.City, &h.State, &h.ConstructionYear,
		&h.ClimateZone, &h.Coastal, &h.FreezeThaw, &h.Occupants, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: home %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get home %s", id)
	}
	return &h, nil
}

func (s *PostgresStore) ListHomes(ctx context.Context) ([]model.Home, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, address, city, state, construction_year, climate_zone, coastal, freeze_thaw, occupants, created_at, updated_at
		 FROM homes ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list homes")
	}
	defer rows.Close()

	var homes []model.Home
	for rows.Next() {
		var h model.Home
		if err := rows.Scan(&h.ID, &h.Address, &h.City, &h.State, &h.ConstructionYear,
			&h.ClimateZone, &h.Coastal, &h.FreezeThaw, &h.Occupants, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan home")
		}
		homes = append(homes, h)
	}
	return homes, rows.Err()
}

func (s *PostgresStore) UpsertSystem(ctx context.Context, system model.HomeSystem) (*model.HomeSystem, error) {
	if system.ID == "" {
		system.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	system.UpdatedAt = now
	if system.CreatedAt.IsZero() {
		system.CreatedAt = now
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO home_systems (id, home_id, system_type, material, recorded_year, recorded_source, stored_confidence, owner_statement, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (home_id, system_type) DO UPDATE SET
			material = EXCLUDED.material,
			recorded_year = EXCLUDED.recorded_year,
			recorded_source = EXCLUDED.recorded_source,
			stored_confidence = EXCLUDED.stored_confidence,
			owner_statement = EXCLUDED.owner_statement,
			updated_at = EXCLUDED.updated_at`,
		system.ID, system.HomeID, string(system.SystemType), system.Material,
		system.RecordedYear, system.RecordedSource, system.StoredConfidence,
		system.OwnerStatement, system.CreatedAt, system.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: upsert system")
	}
	return &system, nil
}

func (s *PostgresStore) ListSystems(ctx context.Context, homeID string) ([]model.HomeSystem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, home_id, system_type, material, recorded_year, recorded_source, stored_confidence, owner_statement, created_at, updated_at
		 FROM home_systems WHERE home_id = $1 ORDER BY created_at`, homeID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list systems for %s", homeID)
	}
	defer rows.Close()

	var systems []model.HomeSystem
	for rows.Next() {
		var hs model.HomeSystem
		var st string
		if err := rows.Scan(&hs.ID, &hs.HomeID, &st, &hs.Material, &hs.RecordedYear,
			&hs.RecordedSource, &hs.StoredConfidence, &hs.OwnerStatement,
			&hs.CreatedAt, &hs.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan system")
		}
		hs.SystemType = model.SystemType(st)
		systems = append(systems, hs)
	}
	return systems, rows.Err()
}

func (s *PostgresStore) UpdateSystemResolution(ctx context.Context, systemID string, year *int, source string, confidence float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE home_systems SET recorded_year = $1, recorded_source = $2, stored_confidence = $3, updated_at = $4 WHERE id = $5`,
		year, source, confidence, time.Now().UTC(), systemID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update resolution %s", systemID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: system %s not found", systemID)
	}
	return nil
}

func (s *PostgresStore) InsertPermits(ctx context.Context, permits []model.PermitRow) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, p := range permits {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO permits (id, home_id, description, classification, status, issue_date, finalize_date, approval_date, valuation)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.ID, p.HomeID, p.Description, p.Classification, p.Status,
			p.IssueDate, p.FinalizeDate, p.ApprovalDate, p.Valuation,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: insert permit %s", p.ID)
		}
		inserted++
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit permits")
	}
	return inserted, nil
}

func (s *PostgresStore) ListPermits(ctx context.Context, homeID string) ([]model.PermitRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, home_id, description, classification, status, issue_date, finalize_date, approval_date, valuation
		 FROM permits WHERE home_id = $1 ORDER BY id`, homeID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list permits for %s", homeID)
	}
	defer rows.Close()

	var permits []model.PermitRow
	for rows.Next() {
		var p model.PermitRow
		if err := rows.Scan(&p.ID, &p.HomeID, &p.Description, &p.Classification,
			&p.Status, &p.IssueDate, &p.FinalizeDate, &p.ApprovalDate, &p.Valuation); err != nil {
			return nil, eris.Wrap(err, "postgres: scan permit")
		}
		permits = append(permits, p)
	}
	return permits, rows.Err()
}

func (s *PostgresStore) AddMaintenanceEvent(ctx context.Context, event model.MaintenanceEvent) (*model.MaintenanceEvent, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO maintenance_events (id, home_id, system_type, serviced_at, description) VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.HomeID, string(event.SystemType), event.ServicedAt.UTC(), event.Description,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert maintenance event")
	}
	return &event, nil
}

func (s *PostgresStore) ListMaintenanceEvents(ctx context.Context, homeID string) ([]model.MaintenanceEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, home_id, system_type, serviced_at, description
		 FROM maintenance_events WHERE home_id = $1 ORDER BY serviced_at`, homeID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list maintenance for %s", homeID)
	}
	defer rows.Close()

	var events []model.MaintenanceEvent
	for rows.Next() {
		var e model.MaintenanceEvent
		var st string
		if err := rows.Scan(&e.ID, &e.HomeID, &st, &e.ServicedAt, &e.Description); err != nil {
			return nil, eris.Wrap(err, "postgres: scan maintenance event")
		}
		e.SystemType = model.SystemType(st)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *PostgresStore) SaveEvaluation(ctx context.Context, result *model.EvaluationResult) error {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	data, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal evaluation")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO evaluations (id, home_id, evaluated_at, result) VALUES ($1, $2, $3, $4)`,
		result.ID, result.HomeID, result.EvaluatedAt.UTC(), data,
	)
	return eris.Wrap(err, "postgres: insert evaluation")
}

func (s *PostgresStore) GetLatestEvaluation(ctx context.Context, homeID string) (*model.EvaluationResult, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT result FROM evaluations WHERE home_id = $1 ORDER BY evaluated_at DESC LIMIT 1`, homeID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: latest evaluation for %s", homeID)
	}
	var result model.EvaluationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal evaluation")
	}
	return &result, nil
}
