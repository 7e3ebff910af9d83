package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/knowbeforeyouvote/kbyv/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "kbyv.db"

// Store is a unified SQLite-based storage that provides access to
// all persistence interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.kbyv/data/kbyv.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".kbyv", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// VerdictCache returns a VerdictCache backed by this store. Entries older
// than ttl are treated as absent; a zero ttl keeps them indefinitely.
func (s *Store) VerdictCache(ttl time.Duration) driven.VerdictCache {
	return &verdictCache{store: s, ttl: ttl}
}

// FaultStore returns a FaultStore backed by this store.
func (s *Store) FaultStore() driven.FaultStore {
	return &faultStore{store: s}
}

// AuditStore returns an AuditStore backed by this store.
func (s *Store) AuditStore() driven.AuditStore {
	return &auditStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Verdict Cache ====================

// verdictCache implements driven.VerdictCache.
type verdictCache struct {
	store *Store
	ttl   time.Duration
}

var _ driven.VerdictCache = (*verdictCache)(nil)

// Get returns a cached verdict if present and not expired.
func (c *verdictCache) Get(ctx context.Context, key string) (domain.Verdict, bool, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT verdict, cached_at FROM verdict_cache WHERE cache_key = ?
	`, key)

	var verdict string
	var cachedAt time.Time
	if err := row.Scan(&verdict, &cachedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("scanning verdict: %w", err)
	}

	if c.ttl > 0 && c.store.now().Sub(cachedAt) > c.ttl {
		return "", false, nil
	}

	v := domain.Verdict(verdict)
	if !v.IsValid() {
		return "", false, nil
	}
	return v, true, nil
}

// Put stores or replaces a verdict.
func (c *verdictCache) Put(ctx context.Context, key string, verdict domain.Verdict) error {
	if !verdict.IsValid() {
		return fmt.Errorf("%w: verdict %q", domain.ErrInvalidInput, verdict)
	}

	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO verdict_cache (cache_key, verdict, cached_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			verdict = excluded.verdict,
			cached_at = excluded.cached_at
	`, key, string(verdict), c.store.now().UTC())
	if err != nil {
		return fmt.Errorf("saving verdict: %w", err)
	}
	return nil
}

// ==================== Fault Store ====================

// faultStore implements driven.FaultStore.
type faultStore struct {
	store *Store
}

var _ driven.FaultStore = (*faultStore)(nil)

// Record stores a fault, replacing any fault with the same key.
func (s *faultStore) Record(ctx context.Context, fault domain.Fault) error {
	at := fault.At
	if at.IsZero() {
		at = s.store.now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO faults (fault_key, run_id, kind, stage, candidate_id, source_id, subject, reason, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fault_key) DO UPDATE SET
			run_id = excluded.run_id,
			kind = excluded.kind,
			reason = excluded.reason,
			recorded_at = excluded.recorded_at
	`, fault.Key(), fault.RunID, string(fault.Kind), string(fault.Stage),
		fault.CandidateID, string(fault.SourceID), fault.Subject, fault.Reason, at.UTC())
	if err != nil {
		return fmt.Errorf("saving fault: %w", err)
	}
	return nil
}

// Resolve removes a fault. Unknown keys are not an error.
func (s *faultStore) Resolve(ctx context.Context, key string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM faults WHERE fault_key = ?", key); err != nil {
		return fmt.Errorf("deleting fault: %w", err)
	}
	return nil
}

// List returns outstanding faults ordered by key.
func (s *faultStore) List(ctx context.Context) ([]domain.Fault, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, kind, stage, candidate_id, source_id, subject, reason, recorded_at
		FROM faults ORDER BY fault_key
	`)
	if err != nil {
		return nil, fmt.Errorf("querying faults: %w", err)
	}
	defer rows.Close()

	var faults []domain.Fault //nolint:prealloc // size unknown from query
	for rows.Next() {
		var f domain.Fault
		var kind, stage, source string
		if err := rows.Scan(&f.RunID, &kind, &stage, &f.CandidateID, &source,
			&f.Subject, &f.Reason, &f.At); err != nil {
			return nil, fmt.Errorf("scanning fault: %w", err)
		}
		f.Kind = domain.FaultKind(kind)
		f.Stage = domain.RunStage(stage)
		f.SourceID = domain.SourceID(source)
		faults = append(faults, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating faults: %w", err)
	}

	return faults, nil
}
