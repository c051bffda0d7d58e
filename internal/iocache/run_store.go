package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for run tracking.
const (
	runsTable            = "calheat_runs"
	dailyAggregatesTable = "calheat_daily_aggregates"
)

// runTables lists every table owned by the run store.
var runTables = []string{runsTable, dailyAggregatesTable}

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
	connStr    string
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// openDatabase opens a connection for the backend without touching the schema.
func openDatabase(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetRunsDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, "sqlite", nil

	case schema.MySQLBackend:
		dsn, err := normalizeMySQLDSN(connStr)
		if err != nil {
			return nil, "", err
		}
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		return db, "mysql", nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=", err)
		}
		return db, "pgx", nil

	default:
		return nil, "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, driverName, err := openDatabase(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
		connStr:    connStr,
	}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{dailyAggregatesTable, getCreateDailyAggregatesQuery(backend)},
	}

	for _, table := range tables {
		if err := validateTableName(table.name); err != nil {
			return err
		}
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for calheat_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				aggregation VARCHAR(16) NOT NULL,
				hue VARCHAR(16) NOT NULL,
				dark_mode BOOLEAN NOT NULL DEFAULT FALSE,
				total_days INT NOT NULL DEFAULT 0,
				max_count DOUBLE NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				aggregation TEXT NOT NULL,
				hue TEXT NOT NULL,
				dark_mode BOOLEAN NOT NULL DEFAULT FALSE,
				total_days INT NOT NULL DEFAULT 0,
				max_count DOUBLE PRECISION NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				aggregation TEXT NOT NULL,
				hue TEXT NOT NULL,
				dark_mode INTEGER NOT NULL DEFAULT 0,
				total_days INTEGER NOT NULL DEFAULT 0,
				max_count REAL NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateDailyAggregatesQuery returns the CREATE TABLE query for calheat_daily_aggregates.
func getCreateDailyAggregatesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(dailyAggregatesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				day_key VARCHAR(10) NOT NULL,
				agg_value DOUBLE NOT NULL,
				threshold INT NOT NULL,
				color VARCHAR(64) NOT NULL,
				PRIMARY KEY (run_id, day_key)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				day_key TEXT NOT NULL,
				agg_value DOUBLE PRECISION NOT NULL,
				threshold INT NOT NULL,
				color TEXT NOT NULL,
				PRIMARY KEY (run_id, day_key)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				day_key TEXT NOT NULL,
				agg_value REAL NOT NULL,
				threshold INTEGER NOT NULL,
				color TEXT NOT NULL,
				PRIMARY KEY (run_id, day_key)
			);
		`, quotedTableName)
	}
}

// disabled reports whether the store is a no-op.
func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// boolArg encodes a flag for the backend. SQLite stores it as an integer.
func (rs *RunStoreImpl) boolArg(b bool) any {
	if rs.backend != schema.SQLiteBackend {
		return b
	}
	if b {
		return 1
	}
	return 0
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, params schema.RunParams) (int64, error) {
	if rs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(params.ConfigParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	ph := strings.Join(placeholders(rs.backend, 5), ", ")
	args := []any{
		formatTime(startTime, rs.backend),
		string(params.Aggregation),
		string(params.Hue),
		rs.boolArg(params.DarkMode),
		string(configJSON),
	}

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, aggregation, hue, dark_mode, config_params) VALUES (%s) RETURNING run_id`, quotedTableName, ph)
		err = rs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, aggregation, hue, dark_mode, config_params) VALUES (%s)`, quotedTableName, ph)
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordDays stores the enriched daily aggregates of a run in one transaction.
func (rs *RunStoreImpl) RecordDays(runID int64, days []schema.EnrichedDay) error {
	if rs.disabled() || len(days) == 0 {
		return nil
	}

	quotedTableName := quoteTableName(dailyAggregatesTable, rs.backend)
	query := fmt.Sprintf(`INSERT INTO %s (run_id, day_key, agg_value, threshold, color) VALUES (%s)`,
		quotedTableName, strings.Join(placeholders(rs.backend, 5), ", "))

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare daily insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, day := range days {
		if _, err := stmt.Exec(runID, day.Date, day.Count, day.Bucket, day.Color); err != nil {
			return fmt.Errorf("failed to insert day %s: %w", day.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit daily aggregates: %w", err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalDays int, maxCount float64) error {
	if rs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholders(rs.backend, 1)[0])
	startTime, err := rs.scanTimeRow(rs.db.QueryRow(query, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	ph := placeholders(rs.backend, 5)
	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_days = %s, max_count = %s WHERE run_id = %s`,
		quotedTableName, ph[0], ph[1], ph[2], ph[3], ph[4])
	if _, err := rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, totalDays, maxCount, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.disabled() {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		lastRun := rs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
		lastRunTime, err := rs.scanTimeRow(lastRun, &status.LastRunID)
		if err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = lastRunTime

		oldestRun := rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns))
		oldestRunTime, err := rs.scanTimeRow(oldestRun)
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime

		daysRow := rs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_days), 0) FROM %s", quotedRuns))
		if err := daysRow.Scan(&status.TotalDays); err != nil {
			return status, fmt.Errorf("failed to get total days: %w", err)
		}
	}

	for _, table := range runTables {
		row = rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend)))
		var count int64
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	status.StorageBytes = rs.storageBytes()
	return status, nil
}

// storageBytes estimates the on-disk size of the run tables. Failures yield 0.
func (rs *RunStoreImpl) storageBytes() int64 {
	var size int64
	switch rs.backend {
	case schema.SQLiteBackend:
		row := rs.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return 0
		}
	case schema.MySQLBackend:
		dbName := mysqlDatabaseName(rs.connStr)
		if dbName == "" {
			return 0
		}
		row := rs.db.QueryRow(
			"SELECT COALESCE(SUM(data_length + index_length), 0) FROM information_schema.tables WHERE table_schema = ? AND table_name IN (?, ?)",
			dbName, runsTable, dailyAggregatesTable)
		if err := row.Scan(&size); err != nil {
			return 0
		}
	case schema.PostgreSQLBackend:
		row := rs.db.QueryRow("SELECT pg_total_relation_size($1) + pg_total_relation_size($2)", runsTable, dailyAggregatesTable)
		if err := row.Scan(&size); err != nil {
			return 0
		}
	}
	return size
}

// scanTimeRow scans dest followed by a trailing time column, handling the
// text encoding used by SQLite.
func (rs *RunStoreImpl) scanTimeRow(row *sql.Row, dest ...any) (time.Time, error) {
	if rs.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(append(dest, &s)...); err != nil {
			return time.Time{}, err
		}
		return parseStoredTime(s)
	}
	var t time.Time
	if err := row.Scan(append(dest, &t)...); err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, aggregation, hue,
		dark_mode, total_days, max_count, config_params FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs, &record.Aggregation,
				&record.Hue, &record.DarkMode, &record.TotalDays, &record.MaxCount, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			startTime, err := parseStoredTime(startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := parseStoredTime(*endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &record.Aggregation,
				&record.Hue, &record.DarkMode, &record.TotalDays, &record.MaxCount, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllDailyRecords retrieves all daily aggregates from the store.
func (rs *RunStoreImpl) GetAllDailyRecords() ([]schema.DailyRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, day_key, agg_value, threshold, color FROM %s ORDER BY run_id, day_key`,
		quoteTableName(dailyAggregatesTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily aggregates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.DailyRecord
	for rows.Next() {
		var record schema.DailyRecord
		if err := rows.Scan(&record.RunID, &record.Day, &record.Count, &record.Threshold, &record.Color); err != nil {
			return nil, fmt.Errorf("failed to scan daily aggregate: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily aggregates: %w", err)
	}
	return results, nil
}
