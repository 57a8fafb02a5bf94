package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"nifty-butterfly/internal/errors"
	"nifty-butterfly/internal/models"
)

// SQLiteStore implements ScanStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dbPath and initializes the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Scan journal: one row per ranking pass
	CREATE TABLE IF NOT EXISTS scans (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		spot_price REAL NOT NULL,
		max_value_percent REAL NOT NULL,
		stale INTEGER DEFAULT 0,
		strategies TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	-- Alerts raised during scans
	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		type TEXT NOT NULL,
		strategy_type TEXT NOT NULL,
		strike_combo TEXT NOT NULL,
		value_percent REAL NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY(scan_id) REFERENCES scans(id)
	);

	CREATE INDEX IF NOT EXISTS idx_scans_symbol_time ON scans(symbol, created_at);
	CREATE INDEX IF NOT EXISTS idx_alerts_scan ON alerts(scan_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveScan implements ScanStore.
func (s *SQLiteStore) SaveScan(ctx context.Context, record *models.ScanRecord) error {
	if record == nil {
		return errors.NewValidationError("record", nil, "scan record is required")
	}
	if record.ID == "" {
		record.ID = fmt.Sprintf("scan_%d", time.Now().UnixNano())
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(record.Strategies)
	if err != nil {
		return fmt.Errorf("encoding strategies: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scans (id, symbol, spot_price, max_value_percent, stale, strategies, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Symbol, record.SpotPrice, record.MaxValuePercent,
		boolToInt(record.Stale), string(payload), record.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "inserting scan")
	}

	for _, strat := range record.Strategies {
		if strat.AlertType == models.AlertNone || strat.AlertType == "" {
			continue
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO alerts (scan_id, symbol, type, strategy_type, strike_combo, value_percent, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			record.ID, record.Symbol, string(strat.AlertType), strat.Type,
			strat.StrikeCombo, strat.ValuePercent, record.CreatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "inserting alert")
		}
	}

	return tx.Commit()
}

// GetScans implements ScanStore.
func (s *SQLiteStore) GetScans(ctx context.Context, filter ScanFilter) ([]models.ScanRecord, error) {
	query := `SELECT id, symbol, spot_price, max_value_percent, stale, strategies, created_at FROM scans`
	where, args := filterClauses(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying scans")
	}
	defer rows.Close()

	var records []models.ScanRecord
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// GetScan implements ScanStore.
func (s *SQLiteStore) GetScan(ctx context.Context, id string) (*models.ScanRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symbol, spot_price, max_value_percent, stale, strategies, created_at
		FROM scans WHERE id = ?`, id)
	if err != nil {
		return nil, errors.Wrap(err, "querying scan")
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, errors.ErrDataNotFound
	}
	return scanRow(rows)
}

// GetAlerts implements ScanStore.
func (s *SQLiteStore) GetAlerts(ctx context.Context, filter ScanFilter) ([]AlertRecord, error) {
	query := `SELECT id, scan_id, symbol, type, strategy_type, strike_combo, value_percent, created_at FROM alerts`
	where, args := filterClauses(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying alerts")
	}
	defer rows.Close()

	var alerts []AlertRecord
	for rows.Next() {
		var a AlertRecord
		var alertType string
		if err := rows.Scan(&a.ID, &a.ScanID, &a.Symbol, &alertType, &a.StrategyType,
			&a.StrikeCombo, &a.ValuePercent, &a.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning alert row")
		}
		a.Type = models.AlertType(alertType)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// Close implements ScanStore.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func filterClauses(filter ScanFilter) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	if filter.Symbol != "" {
		where = append(where, "symbol = ?")
		args = append(args, filter.Symbol)
	}
	if !filter.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, filter.To)
	}
	return where, args
}

func scanRow(rows *sql.Rows) (*models.ScanRecord, error) {
	var record models.ScanRecord
	var stale int
	var payload string
	if err := rows.Scan(&record.ID, &record.Symbol, &record.SpotPrice,
		&record.MaxValuePercent, &stale, &payload, &record.CreatedAt); err != nil {
		return nil, errors.Wrap(err, "scanning scan row")
	}
	record.Stale = stale != 0
	if err := json.Unmarshal([]byte(payload), &record.Strategies); err != nil {
		return nil, errors.Wrap(err, "decoding strategies")
	}
	return &record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ScanStore = (*SQLiteStore)(nil)
