package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/hazardos-ai/wa-law-scraper/internal/model"
)

// dbFileName is the SQLite database file created under the data directory.
const dbFileName = "walaw.db"

// ContentDB provides SQLite-based storage for content provenance records.
// It manages connection pooling and provides append and query operations.
//
// Design decision: We use a single database file per data directory rather
// than one per corpus. This keeps cross-corpus statistics a single query
// and simplifies backup/restore operations.
type ContentDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ContentDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ContentDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ContentDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &ContentDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *ContentDB) Close() error {
	return cdb.db.Close()
}

// Path returns the path to the database file.
func (cdb *ContentDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *ContentDB) createTables() error {
	schema := `
	-- Content records store one row per successful content fetch.
	-- The table is append-only: re-fetching a path inserts a new row.
	CREATE TABLE IF NOT EXISTS content_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code_type TEXT NOT NULL,
		kind TEXT NOT NULL,
		title_number TEXT NOT NULL,
		chapter_number TEXT,
		section_number TEXT,
		url TEXT NOT NULL,
		local_path TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		size INTEGER NOT NULL,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_content_code_type ON content_records(code_type);
	CREATE INDEX IF NOT EXISTS idx_content_kind ON content_records(kind);
	CREATE INDEX IF NOT EXISTS idx_content_local_path ON content_records(local_path);
	CREATE INDEX IF NOT EXISTS idx_content_fetched_at ON content_records(fetched_at);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveContentRecord appends a provenance record and returns its row ID.
// Existing rows for the same path are never updated; history is the point.
func (cdb *ContentDB) SaveContentRecord(ctx context.Context, record *model.ContentRecord) (int64, error) {
	fetchedAt := record.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	query := `
	INSERT INTO content_records (code_type, kind, title_number, chapter_number, section_number, url, local_path, content_hash, size, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := cdb.db.ExecContext(ctx, query,
		string(record.CodeType),
		string(record.Kind),
		record.TitleNumber,
		record.ChapterNumber,
		record.SectionNumber,
		record.URL,
		record.LocalPath,
		record.ContentHash,
		record.Size,
		fetchedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert content record: %w", err)
	}

	return result.LastInsertId()
}

// LatestRecord retrieves the most recent record for a corpus and local
// path. Returns (nil, nil) when the path has never been recorded.
func (cdb *ContentDB) LatestRecord(ctx context.Context, codeType model.CodeType, localPath string) (*model.ContentRecord, error) {
	query := `
	SELECT id, code_type, kind, title_number, chapter_number, section_number, url, local_path, content_hash, size, fetched_at
	FROM content_records
	WHERE code_type = ? AND local_path = ?
	ORDER BY fetched_at DESC, id DESC
	LIMIT 1
	`

	record, err := scanRecord(cdb.db.QueryRowContext(ctx, query, string(codeType), localPath))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content record: %w", err)
	}
	return record, nil
}

// ListRecords returns the records for a corpus (or all corpora when
// codeType is empty), newest first.
func (cdb *ContentDB) ListRecords(ctx context.Context, codeType model.CodeType) ([]model.ContentRecord, error) {
	query := `
	SELECT id, code_type, kind, title_number, chapter_number, section_number, url, local_path, content_hash, size, fetched_at
	FROM content_records
	WHERE 1=1
	`
	args := make([]interface{}, 0)

	if codeType != "" {
		query += " AND code_type = ?"
		args = append(args, string(codeType))
	}

	query += " ORDER BY fetched_at DESC, id DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content records: %w", err)
	}
	defer rows.Close()

	var results []model.ContentRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content record: %w", err)
		}
		results = append(results, *record)
	}

	return results, rows.Err()
}

// KindStats summarizes the stored rows for one target kind.
type KindStats struct {
	// Records is the total number of provenance rows, including re-fetches.
	Records int

	// DistinctPaths is the number of unique files the rows cover.
	DistinctPaths int

	// Bytes is the total stored size across rows.
	Bytes int64
}

// Stats returns per-kind row counts for a corpus (or all corpora when
// codeType is empty).
func (cdb *ContentDB) Stats(ctx context.Context, codeType model.CodeType) (map[model.TargetKind]KindStats, error) {
	query := `
	SELECT kind, COUNT(*), COUNT(DISTINCT local_path), COALESCE(SUM(size), 0)
	FROM content_records
	WHERE 1=1
	`
	args := make([]interface{}, 0)

	if codeType != "" {
		query += " AND code_type = ?"
		args = append(args, string(codeType))
	}

	query += " GROUP BY kind"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[model.TargetKind]KindStats)
	for rows.Next() {
		var kind string
		var s KindStats
		if err := rows.Scan(&kind, &s.Records, &s.DistinctPaths, &s.Bytes); err != nil {
			return nil, fmt.Errorf("failed to scan content stats: %w", err)
		}
		stats[model.TargetKind(kind)] = s
	}

	return stats, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for record scanning.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord reads one content record row.
func scanRecord(row scanner) (*model.ContentRecord, error) {
	var record model.ContentRecord
	var codeType, kind, timestamp string
	var chapterNumber, sectionNumber sql.NullString

	err := row.Scan(
		&record.ID,
		&codeType,
		&kind,
		&record.TitleNumber,
		&chapterNumber,
		&sectionNumber,
		&record.URL,
		&record.LocalPath,
		&record.ContentHash,
		&record.Size,
		&timestamp,
	)
	if err != nil {
		return nil, err
	}

	record.CodeType = model.CodeType(codeType)
	record.Kind = model.TargetKind(kind)
	record.ChapterNumber = chapterNumber.String
	record.SectionNumber = sectionNumber.String
	record.FetchedAt = parseTimestamp(timestamp)

	return &record, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
