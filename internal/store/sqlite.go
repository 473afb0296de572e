package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS homes (
	id                TEXT PRIMARY KEY,
	address           TEXT NOT NULL,
	city              TEXT NOT NULL DEFAULT '',
	state             TEXT NOT NULL DEFAULT '',
	construction_year INTEGER NOT NULL DEFAULT 0,
	climate_zone      TEXT NOT NULL DEFAULT '',
	coastal           INTEGER NOT NULL DEFAULT 0,
	freeze_thaw       INTEGER NOT NULL DEFAULT 0,
	occupants         INTEGER NOT NULL DEFAULT 0,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS home_systems (
	id                TEXT PRIMARY KEY,
	home_id           TEXT NOT NULL REFERENCES homes(id),
	system_type       TEXT NOT NULL,
	material          TEXT NOT NULL DEFAULT '',
	recorded_year     INTEGER,
	recorded_source   TEXT NOT NULL DEFAULT '',
	stored_confidence REAL NOT NULL DEFAULT 0,
	owner_statement   TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(home_id, system_type)
);

CREATE TABLE IF NOT EXISTS permits (
	id             TEXT PRIMARY KEY,
	home_id        TEXT NOT NULL REFERENCES homes(id),
	description    TEXT NOT NULL,
	classification TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT '',
	issue_date     DATETIME,
	finalize_date  DATETIME,
	approval_date  DATETIME,
	valuation      REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS maintenance_events (
	id          TEXT PRIMARY KEY,
	home_id     TEXT NOT NULL REFERENCES homes(id),
	system_type TEXT NOT NULL,
	serviced_at DATETIME NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS evaluations (
	id           TEXT PRIMARY KEY,
	home_id      TEXT NOT NULL REFERENCES homes(id),
	evaluated_at DATETIME NOT NULL,
	result       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_systems_home ON home_systems(home_id);
CREATE INDEX IF NOT EXISTS idx_permits_home ON permits(home_id);
CREATE INDEX IF NOT EXISTS idx_maintenance_home ON maintenance_events(home_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_home ON evaluations(home_id, evaluated_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateHome(ctx context.Context, home model.Home) (*model.Home, error) {
	if home.ID == "" {
		home.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	home.CreatedAt = now
	home.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO homes (id, address, city, state, construction_year, climate_zone, coastal, freeze_thaw, occupants, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		home.ID, home.Address, home.City, home.State, home.ConstructionYear,
		home.ClimateZone, boolToInt(home.Coastal), boolToInt(home.FreezeThaw), home.Occupants, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert home")
	}
	return &home, nil
}

func (s *SQLiteStore) GetHome(ctx context.Context, id string) (*model.Home, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, address, city, state, construction_year, climate_zone, coastal, freeze_thaw, occupants, created_at, updated_at
		 FROM homes WHERE id = ?`, id)
	var h model.Home
	var coastal, freezeThaw int
	err := row.Scan(&h.ID, &h.Address, &h.City, &h.State, &h.ConstructionYear,
		&h.ClimateZone, &coastal, &freezeThaw, &h.Occupants, &h.CreatedAt, &h.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: home %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get home %s", id)
	}
	h.Coastal = coastal != 0
	h.FreezeThaw = freezeThaw != 0
	return &h, nil
}

func (s *SQLiteStore) ListHomes(ctx context.Context) ([]model.Home, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, address, city, state, construction_year, climate_zone, coastal, freeze_thaw, occupants, created_at, updated_at
		 FROM homes ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list homes")
	}
	defer rows.Close()

	var homes []model.Home
	for rows.Next() {
		var h model.Home
		var coastal, freezeThaw int
		if err := rows.Scan(&h.ID, &h.Address, &h.City, &h.State, &h.ConstructionYear,
			&h.ClimateZone, &coastal, &freezeThaw, &h.Occupants, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan home")
		}
		h.Coastal = coastal != 0
		h.FreezeThaw = freezeThaw != 0
		homes = append(homes, h)
	}
	return homes, rows.Err()
}

func (s *SQLiteStore) UpsertSystem(ctx context.Context, system model.HomeSystem) (*model.HomeSystem, error) {
	if system.ID == "" {
		system.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	system.UpdatedAt = now
	if system.CreatedAt.IsZero() {
		system.CreatedAt = now
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO home_systems (id, home_id, system_type, material, recorded_year, recorded_source, stored_confidence, owner_statement, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(home_id, system_type) DO UPDATE SET
			material = excluded.material,
			recorded_year = excluded.recorded_year,
			recorded_source = excluded.recorded_source,
			stored_confidence = excluded.stored_confidence,
			owner_statement = excluded.owner_statement,
			updated_at = excluded.updated_at`,
		system.ID, system.HomeID, string(system.SystemType), system.Material,
		system.RecordedYear, system.RecordedSource, system.StoredConfidence,
		system.OwnerStatement, system.CreatedAt, system.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: upsert system")
	}
	return &system, nil
}

func (s *SQLiteStore) ListSystems(ctx context.Context, homeID string) ([]model.HomeSystem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, home_id, system_type, material, recorded_year, recorded_source, stored_confidence, owner_statement, created_at, updated_at
		 FROM home_systems WHERE home_id = ? ORDER BY created_at`, homeID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list systems for %s", homeID)
	}
	defer rows.Close()

	var systems []model.HomeSystem
	for rows.Next() {
		var hs model.HomeSystem
		var st string
		var year sql.NullInt64
		if err := rows.Scan(&hs.ID, &hs.HomeID, &st, &hs.Material, &year,
			&hs.RecordedSource, &hs.StoredConfidence, &hs.OwnerStatement,
			&hs.CreatedAt, &hs.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan system")
		}
		hs.SystemType = model.SystemType(st)
		if year.Valid {
			y := int(year.Int64)
			hs.RecordedYear = &y
		}
		systems = append(systems, hs)
	}
	return systems, rows.Err()
}

func (s *SQLiteStore) UpdateSystemResolution(ctx context.Context, systemID string, year *int, source string, confidence float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE home_systems SET recorded_year = ?, recorded_source = ?, stored_confidence = ?, updated_at = ? WHERE id = ?`,
		year, source, confidence, time.Now().UTC(), systemID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update resolution %s", systemID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: system %s not found", systemID)
	}
	return nil
}

func (s *SQLiteStore) InsertPermits(ctx context.Context, permits []model.PermitRow) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	inserted := 0
	for _, p := range permits {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO permits (id, home_id, description, classification, status, issue_date, finalize_date, approval_date, valuation)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.HomeID, p.Description, p.Classification, p.Status,
			p.IssueDate, p.FinalizeDate, p.ApprovalDate, p.Valuation,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert permit %s", p.ID)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit permits")
	}
	return inserted, nil
}

func (s *SQLiteStore) ListPermits(ctx context.Context, homeID string) ([]model.PermitRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, home_id, description, classification, status, issue_date, finalize_date, approval_date, valuation
		 FROM permits WHERE home_id = ? ORDER BY id`, homeID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list permits for %s", homeID)
	}
	defer rows.Close()

	var permits []model.PermitRow
	for rows.Next() {
		var p model.PermitRow
		var issue, finalize, approval sql.NullTime
		if err := rows.Scan(&p.ID, &p.HomeID, &p.Description, &p.Classification,
			&p.Status, &issue, &finalize, &approval, &p.Valuation); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan permit")
		}
		if issue.Valid {
			t := issue.Time
			p.IssueDate = &t
		}
		if finalize.Valid {
			t := finalize.Time
			p.FinalizeDate = &t
		}
		if approval.Valid {
			t := approval.Time
			p.ApprovalDate = &t
		}
		permits = append(permits, p)
	}
	return permits, rows.Err()
}

func (s *SQLiteStore) AddMaintenanceEvent(ctx context.Context, event model.MaintenanceEvent) (*model.MaintenanceEvent, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO maintenance_events (id, home_id, system_type, serviced_at, description) VALUES (?, ?, ?, ?, ?)`,
		event.ID, event.HomeID, string(event.SystemType), event.ServicedAt.UTC(), event.Description,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert maintenance event")
	}
	return &event, nil
}

func (s *SQLiteStore) ListMaintenanceEvents(ctx context.Context, homeID string) ([]model.MaintenanceEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, home_id, system_type, serviced_at, description
		 FROM maintenance_events WHERE home_id = ? ORDER BY serviced_at`, homeID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list maintenance for %s", homeID)
	}
	defer rows.Close()

	var events []model.MaintenanceEvent
	for rows.Next() {
		var e model.MaintenanceEvent
		var st string
		if err := rows.Scan(&e.ID, &e.HomeID, &st, &e.ServicedAt, &e.Description); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan maintenance event")
		}
		e.SystemType = model.SystemType(st)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *SQLiteStore) SaveEvaluation(ctx context.Context, result *model.EvaluationResult) error {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	data, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal evaluation")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO evaluations (id, home_id, evaluated_at, result) VALUES (?, ?, ?, ?)`,
		result.ID, result.HomeID, result.EvaluatedAt.UTC(), string(data),
	)
	return eris.Wrap(err, "sqlite: insert evaluation")
}

func (s *SQLiteStore) GetLatestEvaluation(ctx context.Context, homeID string) (*model.EvaluationResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT result FROM evaluations WHERE home_id = ? ORDER BY evaluated_at DESC LIMIT 1`, homeID)
	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: latest evaluation for %s", homeID)
	}
	var result model.EvaluationResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal evaluation")
	}
	return &result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
