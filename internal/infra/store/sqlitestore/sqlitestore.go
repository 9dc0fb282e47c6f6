// Package sqlitestore persists the AppState snapshot in a single-row
// SQLite table. Useful where a plain file is too fragile (shared
// volumes, backup tooling that understands databases).
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meowbank/meow-bank-go/internal/domain"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var tracer = otel.Tracer("store/sqlite")

// snapshotKey is the single key the session's state lives under.
const snapshotKey = "meow-bank"

// Store keeps the snapshot in a SQLite database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens (or creates) the database at dbPath and runs migrations.
func New(dbPath string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads the snapshot row. A missing row or an undecodable payload
// yields a fresh default state; errors are never propagated.
func (s *Store) Load(ctx context.Context) *domain.AppState {
	ctx, span := tracer.Start(ctx, "SQLiteStore.Load")
	defer span.End()

	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE key = ?`, snapshotKey,
	).Scan(&payload)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("sqlitestore: unreadable snapshot, starting fresh", zap.Error(err))
		}
		return domain.DefaultState(time.Now())
	}

	var state domain.AppState
	if err := json.Unmarshal(payload, &state); err != nil {
		s.logger.Warn("sqlitestore: corrupt snapshot, starting fresh", zap.Error(err))
		return domain.DefaultState(time.Now())
	}
	return &state
}

// Save upserts the snapshot row.
func (s *Store) Save(ctx context.Context, state *domain.AppState) error {
	ctx, span := tracer.Start(ctx, "SQLiteStore.Save")
	defer span.End()

	payload, err := json.Marshal(state)
	if err != nil {
		return &domain.ErrSnapshotStore{Backend: "sqlite", Err: fmt.Errorf("encode snapshot: %w", err)}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		snapshotKey, payload, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &domain.ErrSnapshotStore{Backend: "sqlite", Err: fmt.Errorf("upsert snapshot: %w", err)}
	}

	s.logger.Debug("sqlitestore: snapshot saved", zap.Int("bytes", len(payload)))
	return nil
}
