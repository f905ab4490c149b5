package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/quentinrf/engine-monitor/internal/domain"
)

// ReadingRepository implements domain.ReadingRepository with SQLite.
// The table layout is derived from the domain column list; the version
// token is a counter bumped on every save.
type ReadingRepository struct {
	mu     sync.Mutex
	db     *sql.DB
	dbPath string

	columns    []domain.Column
	selectStmt string
	insertStmt string
}

// NewReadingRepository creates a SQLite-backed repository
func NewReadingRepository(dbPath string) (*ReadingRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	r := &ReadingRepository{db: db, dbPath: dbPath, columns: domain.Columns()}

	names := make([]string, len(r.columns))
	defs := make([]string, len(r.columns))
	marks := make([]string, len(r.columns))
	for i, c := range r.columns {
		names[i] = quote(c.Name)
		defs[i] = quote(c.Name) + " " + sqlType(c.Kind) + " NOT NULL"
		marks[i] = "?"
	}

	// Create tables if not exists
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS engine_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		%s
	);
	CREATE TABLE IF NOT EXISTS store_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		version INTEGER NOT NULL
	);
	INSERT OR IGNORE INTO store_meta (id, version) VALUES (1, 0);
	`, strings.Join(defs, ",\n\t\t"))

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	r.selectStmt = fmt.Sprintf(`SELECT %s FROM engine_readings ORDER BY id ASC`, strings.Join(names, ", "))
	r.insertStmt = fmt.Sprintf(`INSERT INTO engine_readings (%s) VALUES (%s)`,
		strings.Join(names, ", "), strings.Join(marks, ", "))

	return r, nil
}

// Load returns every reading in insertion order
func (r *ReadingRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin read: %w", err)
	}
	defer tx.Rollback()

	version, err := currentVersion(ctx, tx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, r.selectStmt)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	batch := domain.TabularBatch{Header: domain.ColumnNames()}
	for rows.Next() {
		cells := make([]string, len(r.columns))
		dest := make([]any, len(cells))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		batch.Rows = append(batch.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readings: %w", err)
	}

	readings, err := domain.ValidateSchema(batch)
	if err != nil {
		return nil, &domain.StorageError{Op: "validate", Path: r.dbPath, Err: err}
	}

	return &domain.Snapshot{Readings: readings, Version: formatVersion(version)}, nil
}

// Save replaces every reading in a single transaction
func (r *ReadingRepository) Save(ctx context.Context, readings []domain.EngineReading, expectedVersion string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin write: %w", err)
	}
	defer tx.Rollback()

	version, err := currentVersion(ctx, tx)
	if err != nil {
		return "", err
	}
	if formatVersion(version) != expectedVersion {
		return "", domain.ErrConflict
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM engine_readings`); err != nil {
		return "", fmt.Errorf("failed to clear readings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, r.insertStmt)
	if err != nil {
		return "", fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(r.columns))
	for i := range readings {
		for j, c := range r.columns {
			args[j] = sqlValue(c, &readings[i])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return "", fmt.Errorf("failed to insert reading: %w", err)
		}
	}

	version++
	if _, err := tx.ExecContext(ctx, `UPDATE store_meta SET version = ? WHERE id = 1`, version); err != nil {
		return "", fmt.Errorf("failed to bump version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit readings: %w", err)
	}
	return formatVersion(version), nil
}

// Close closes the database connection
func (r *ReadingRepository) Close() error {
	return r.db.Close()
}

func currentVersion(ctx context.Context, tx *sql.Tx) (int64, error) {
	var version int64
	if err := tx.QueryRowContext(ctx, `SELECT version FROM store_meta WHERE id = 1`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read store version: %w", err)
	}
	return version, nil
}

// formatVersion maps a never-saved store to the empty version
func formatVersion(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func sqlValue(c domain.Column, r *domain.EngineReading) any {
	if c.Kind == domain.KindDate {
		return c.Format(r)
	}
	return c.Value(r)
}

func sqlType(k domain.Kind) string {
	switch k {
	case domain.KindFloat:
		return "REAL"
	case domain.KindInt:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
