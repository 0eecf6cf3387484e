package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hyiltiz/timetra.diary/internal/config"
	"github.com/hyiltiz/timetra.diary/internal/errors"
	"github.com/hyiltiz/timetra.diary/internal/fact"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// SQLite is the default Store backed by a local sqlite database.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// Open initializes the sqlite database at baseDir/timetra.db. The baseDir
// parameter allows tests to use t.TempDir() instead of ~/.timetra.
func Open(baseDir string) (*SQLite, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, errors.NewStorageUnavailable(fmt.Sprintf("failed to create base directory: %v", err))
	}
	// Explicit chmod (best-effort, may not work on all platforms)
	_ = os.Chmod(baseDir, 0700)

	// Open database with pragmas in connection string (applies to all connections)
	dbPath := filepath.Join(baseDir, "timetra.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.NewStorageUnavailable(fmt.Sprintf("failed to open database: %v", err))
	}

	// Verify WAL mode is active
	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	// Run migrations (this creates the file if it doesn't exist)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ConfigurePool applies connection pool settings from config. Only sets
// limits if explicitly configured (non-zero values).
func (s *SQLite) ConfigurePool(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		s.db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		s.db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := getUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS facts (
		  id          TEXT PRIMARY KEY,
		  activity    TEXT NOT NULL,
		  category    TEXT,
		  tags_json   TEXT,
		  description TEXT NOT NULL DEFAULT '',
		  start_time  INTEGER NOT NULL,
		  end_time    INTEGER,
		  created_at  INTEGER NOT NULL,
		  updated_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_facts_start_time
		ON facts(start_time);

		CREATE INDEX IF NOT EXISTS idx_facts_open
		ON facts(start_time)
		WHERE end_time IS NULL;
		`
		if _, err := db.Exec(schema); err != nil {
			return errors.NewStorageUnavailable(fmt.Sprintf("migration 1 failed: %v", err))
		}
		if err := setUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return errors.NewStorageUnavailable(fmt.Sprintf("failed to verify journal mode: %v", err))
	}
	if journalMode != "wal" {
		return errors.NewStorageUnavailable(fmt.Sprintf("expected WAL mode, got %s", journalMode))
	}
	return nil
}

// getUserVersion returns the current schema version (user_version pragma).
func getUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, errors.NewStorageUnavailable(fmt.Sprintf("failed to get user_version: %v", err))
	}
	return version, nil
}

// setUserVersion sets the schema version (user_version pragma).
func setUserVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version)); err != nil {
		return errors.NewStorageUnavailable(fmt.Sprintf("failed to set user_version: %v", err))
	}
	return nil
}

const factColumns = `id, activity, category, tags_json, description, start_time, end_time, created_at, updated_at`

// FactsForDay implements Store.
func (s *SQLite) FactsForDay(date time.Time, endDate *time.Time, searchTerms string) ([]*fact.Fact, error) {
	from := dayStart(date)
	to := dayStart(date).AddDate(0, 0, 1)
	if endDate != nil {
		to = dayStart(*endDate).AddDate(0, 0, 1)
	}

	query := `
		SELECT ` + factColumns + `
		FROM facts
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time ASC
	`
	rows, err := s.db.Query(query, from.Unix(), to.Unix())
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var facts []*fact.Fact
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if matchesSearch(f, searchTerms) {
			facts = append(facts, f)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return facts, nil
}

// Latest implements Store.
func (s *SQLite) Latest(maxAgeDays int) (*fact.Fact, error) {
	if maxAgeDays < 1 {
		maxAgeDays = 1
	}
	now := time.Now()
	facts, err := s.FactsForDay(now, nil, "")
	if err != nil {
		return nil, err
	}
	if len(facts) == 0 && maxAgeDays > 1 {
		start := now.AddDate(0, 0, -(maxAgeDays - 1))
		facts, err = s.FactsForDay(start, &now, "")
		if err != nil {
			return nil, err
		}
	}
	if len(facts) == 0 {
		return nil, nil
	}
	return facts[len(facts)-1], nil
}

// GetByID implements Store.
func (s *SQLite) GetByID(id string) (*fact.Fact, error) {
	row := s.db.QueryRow(`SELECT `+factColumns+` FROM facts WHERE id = ?`, id)
	f, err := scanFact(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return f, nil
}

// Add implements Store.
func (s *SQLite) Add(f *fact.Fact) error {
	tagsJSON, err := tagsToJSON(f.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO facts (` + factColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query,
		f.ID, f.Activity, toNullString(f.Category), tagsJSON, f.Description,
		f.StartTime.Unix(), toNullTime(f.EndTime), f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Update implements Store. Sets updated_at to the current timestamp.
func (s *SQLite) Update(f *fact.Fact) error {
	tagsJSON, err := tagsToJSON(f.Tags)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	query := `
		UPDATE facts
		SET activity = ?, category = ?, tags_json = ?, description = ?,
			start_time = ?, end_time = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.Exec(query,
		f.Activity, toNullString(f.Category), tagsJSON, f.Description,
		f.StartTime.Unix(), toNullTime(f.EndTime), now,
		f.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(f.ID)
	}

	f.UpdatedAt = now
	return nil
}

// dayStart returns local midnight of the given instant's calendar day.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// matchesSearch applies the "," = OR, " " = AND query syntax against the
// fact's activity, category, tags, and description.
func matchesSearch(f *fact.Fact, searchTerms string) bool {
	searchTerms = strings.TrimSpace(searchTerms)
	if searchTerms == "" {
		return true
	}

	haystack := strings.ToLower(f.Activity + " " + f.Description + " " + strings.Join(f.Tags, " "))
	if f.Category != nil {
		haystack += " " + strings.ToLower(*f.Category)
	}

	for _, alternative := range strings.Split(searchTerms, ",") {
		matched := true
		for _, term := range strings.Fields(strings.ToLower(alternative)) {
			if !strings.Contains(haystack, term) {
				matched = false
				break
			}
		}
		if matched && strings.TrimSpace(alternative) != "" {
			return true
		}
	}
	return false
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanFact scans a single row into a Fact struct.
func scanFact(row scanner) (*fact.Fact, error) {
	var (
		f         fact.Fact
		category  sql.NullString
		tagsJSON  sql.NullString
		startUnix int64
		endUnix   sql.NullInt64
	)

	err := row.Scan(
		&f.ID, &f.Activity, &category, &tagsJSON, &f.Description,
		&startUnix, &endUnix, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if category.Valid {
		f.Category = &category.String
	}
	f.StartTime = time.Unix(startUnix, 0)
	if endUnix.Valid {
		end := time.Unix(endUnix.Int64, 0)
		f.EndTime = &end
	}

	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &f.Tags); err != nil {
			return nil, err
		}
	}

	return &f, nil
}

// tagsToJSON converts a tag list to its stored form.
func tagsToJSON(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, errors.NewInternal(err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// toNullTime converts an optional time to its stored Unix form.
func toNullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
