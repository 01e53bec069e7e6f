package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"uirunner/internal/domain"
)

var historySchema = []string{
	`CREATE TABLE IF NOT EXISTS ui_runs (
		run_id VARCHAR(36) NOT NULL PRIMARY KEY,
		url TEXT NOT NULL,
		driver VARCHAR(32) NOT NULL,
		total_cases INT NOT NULL,
		passed_cases INT NOT NULL,
		failed_cases INT NOT NULL,
		duration_seconds DOUBLE NOT NULL,
		started_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ui_results (
		run_id VARCHAR(36) NOT NULL,
		position INT NOT NULL,
		test_case_id VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		element_selector TEXT NOT NULL,
		action VARCHAR(64) NOT NULL,
		input_data TEXT NOT NULL,
		expected_result TEXT NOT NULL,
		actual_result TEXT NOT NULL,
		status VARCHAR(8) NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
}

// HistoryStore records every run in MySQL
type HistoryStore struct {
	db *sql.DB
}

// NormalizeDSN validates a MySQL DSN and enables time parsing
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid history dsn: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("invalid history dsn: no database name")
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// OpenHistory connects to MySQL and creates the history tables if needed
func OpenHistory(ctx context.Context, dsn string) (*HistoryStore, error) {
	normalized, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	if err := ensureDatabase(ctx, normalized); err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}

	h := &HistoryStore{db: db}
	if err := h.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

// ensureDatabase creates the database named in dsn if the server lacks it
func ensureDatabase(ctx context.Context, dsn string) error {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("invalid history dsn: %w", err)
	}
	name := cfg.DBName
	if !isValidDatabaseName(name) {
		return fmt.Errorf("invalid database name: %s", name)
	}

	server := cfg.Clone()
	server.DBName = ""
	db, err := sql.Open("mysql", server.FormatDSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer db.Close()

	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	if err := db.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check database %s: %w", name, err)
	}
	if exists {
		return nil
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

// isValidDatabaseName allows unquoted MySQL identifiers only
func isValidDatabaseName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '$':
		default:
			return false
		}
	}
	return true
}

func (h *HistoryStore) ensureSchema(ctx context.Context) error {
	for _, stmt := range historySchema {
		if _, err := h.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create history tables: %w", err)
		}
	}
	return nil
}

// Record stores a run and its results in one transaction
func (h *HistoryStore) Record(ctx context.Context, output *domain.RunOutput) error {
	startedAt, err := time.Parse(time.RFC3339, output.Meta.Timestamp)
	if err != nil {
		startedAt = time.Now()
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	meta := output.Meta
	_, err = tx.ExecContext(ctx,
		`INSERT INTO ui_runs (run_id, url, driver, total_cases, passed_cases, failed_cases, duration_seconds, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.RunID, meta.URL, meta.Driver, meta.TotalCases, meta.PassedCases, meta.FailedCases, meta.DurationSeconds, startedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ui_results (run_id, position, test_case_id, description, element_selector, action, input_data, expected_result, actual_result, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare results: %w", err)
	}
	defer stmt.Close()

	for i, r := range output.Results {
		_, err := stmt.ExecContext(ctx, meta.RunID, i+1,
			r.ID, r.Description, r.Selector, r.Action, r.InputData, r.ExpectedResult, r.ActualResult, string(r.Status))
		if err != nil {
			return fmt.Errorf("insert result %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// Recent returns the newest runs first
func (h *HistoryStore) Recent(ctx context.Context, limit int) ([]domain.RunMeta, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT run_id, url, driver, total_cases, passed_cases, failed_cases, duration_seconds, started_at
		 FROM ui_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunMeta
	for rows.Next() {
		var m domain.RunMeta
		var startedAt time.Time
		if err := rows.Scan(&m.RunID, &m.URL, &m.Driver, &m.TotalCases, &m.PassedCases, &m.FailedCases, &m.DurationSeconds, &startedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		m.Duration = time.Duration(m.DurationSeconds * float64(time.Second)).Round(time.Millisecond).String()
		m.Timestamp = startedAt.Format(time.RFC3339)
		runs = append(runs, m)
	}
	return runs, rows.Err()
}

// Close closes the database connection
func (h *HistoryStore) Close() error {
	return h.db.Close()
}
