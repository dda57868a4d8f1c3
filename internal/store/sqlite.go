package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"option-pricer/internal/errors"
	"option-pricer/internal/models"
)

// SQLiteStore implements ScenarioStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the scenario database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Named pricing inputs. Computed prices are never stored.
	CREATE TABLE IF NOT EXISTS scenarios (
		name TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		spot REAL NOT NULL,
		strike REAL NOT NULL,
		maturity REAL NOT NULL,
		rate REAL NOT NULL,
		volatility REAL NOT NULL,
		kind TEXT NOT NULL,
		style TEXT NOT NULL,
		engine_params TEXT NOT NULL,
		notes TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scenarios_model ON scenarios(model);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// engineParams is the JSON column holding model-specific inputs.
type engineParams struct {
	Lattice    models.LatticeParams    `json:"lattice"`
	Simulation models.SimulationParams `json:"simulation"`
}

// SaveScenario inserts or replaces a scenario. The contract is validated first.
func (s *SQLiteStore) SaveScenario(ctx context.Context, sc *models.Scenario) error {
	name := strings.TrimSpace(sc.Name)
	if name == "" {
		return errors.NewValidationError("name", sc.Name, "must not be empty")
	}
	model, err := models.ParseModel(string(sc.Model))
	if err != nil {
		return err
	}
	sc.Model = model
	if err := sc.Contract.Validate(); err != nil {
		return err
	}

	params, err := json.Marshal(engineParams{Lattice: sc.Lattice, Simulation: sc.Simulation})
	if err != nil {
		return fmt.Errorf("encoding engine params: %w", err)
	}

	now := time.Now().UTC()
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = now
	}
	sc.UpdatedAt = now
	sc.Name = name

	c := sc.Contract
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scenarios (name, model, spot, strike, maturity, rate, volatility, kind, style, engine_params, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			model = excluded.model,
			spot = excluded.spot,
			strike = excluded.strike,
			maturity = excluded.maturity,
			rate = excluded.rate,
			volatility = excluded.volatility,
			kind = excluded.kind,
			style = excluded.style,
			engine_params = excluded.engine_params,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		sc.Name, string(sc.Model), c.Spot, c.Strike, c.Maturity, c.Rate, c.Volatility,
		string(c.Kind), string(c.Style), string(params), sc.Notes, sc.CreatedAt, sc.UpdatedAt,
	)
	if err != nil {
		return errors.Wrapf(errors.ErrDatabaseError, "saving scenario %s: %v", sc.Name, err)
	}
	return nil
}

const scenarioColumns = `name, model, spot, strike, maturity, rate, volatility, kind, style, engine_params, notes, created_at, updated_at`

// GetScenario loads a scenario by name.
func (s *SQLiteStore) GetScenario(ctx context.Context, name string) (*models.Scenario, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+scenarioColumns+` FROM scenarios WHERE name = ?`, strings.TrimSpace(name))
	sc, err := scanScenario(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrScenarioNotFound, "%q", name)
	}
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabaseError, "loading scenario %s: %v", name, err)
	}
	return sc, nil
}

// ListScenarios returns scenarios ordered by name.
func (s *SQLiteStore) ListScenarios(ctx context.Context, filter ScenarioFilter) ([]models.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE 1=1`
	var args []interface{}

	if filter.Model != "" {
		query += " AND model = ?"
		args = append(args, string(filter.Model))
	}

	query += " ORDER BY name"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabaseError, "listing scenarios: %v", err)
	}
	defer rows.Close()

	var out []models.Scenario
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrDatabaseError, "scanning scenario: %v", err)
		}
		out = append(out, *sc)
	}
	return out, rows.Err()
}

// DeleteScenario removes a scenario by name.
func (s *SQLiteStore) DeleteScenario(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return errors.Wrapf(errors.ErrDatabaseError, "deleting scenario %s: %v", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(errors.ErrDatabaseError, "deleting scenario %s: %v", name, err)
	}
	if n == 0 {
		return errors.Wrapf(errors.ErrScenarioNotFound, "%q", name)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScenario(row rowScanner) (*models.Scenario, error) {
	var (
		sc          models.Scenario
		model       string
		kind, style string
		paramsJSON  string
		notes       sql.NullString
	)
	err := row.Scan(
		&sc.Name, &model,
		&sc.Contract.Spot, &sc.Contract.Strike, &sc.Contract.Maturity,
		&sc.Contract.Rate, &sc.Contract.Volatility,
		&kind, &style, &paramsJSON, &notes,
		&sc.CreatedAt, &sc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sc.Model = models.Model(model)
	sc.Contract.Kind = models.OptionKind(kind)
	sc.Contract.Style = models.ExerciseStyle(style)
	sc.Notes = notes.String

	var params engineParams
	if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
		return nil, fmt.Errorf("decoding engine params: %w", err)
	}
	sc.Lattice = params.Lattice
	sc.Simulation = params.Simulation

	return &sc, nil
}
