// Package filestore persists the AppState snapshot as a single JSON
// file on local disk. This is the default backend.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/meowbank/meow-bank-go/internal/domain"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("store/file")

// Store reads and writes the snapshot at a fixed path.
type Store struct {
	path   string
	logger *zap.Logger
}

// New creates a file-backed snapshot store.
func New(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the snapshot. Missing or corrupt data yields a fresh
// default state; parse and IO errors are never propagated.
func (s *Store) Load(ctx context.Context) *domain.AppState {
	_, span := tracer.Start(ctx, "FileStore.Load")
	defer span.End()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("filestore: unreadable snapshot, starting fresh",
				zap.String("path", s.path),
				zap.Error(err),
			)
		}
		return domain.DefaultState(time.Now())
	}

	var state domain.AppState
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logger.Warn("filestore: corrupt snapshot, starting fresh",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return domain.DefaultState(time.Now())
	}

	return &state
}

// Save writes the snapshot atomically (temp file + rename).
func (s *Store) Save(ctx context.Context, state *domain.AppState) error {
	_, span := tracer.Start(ctx, "FileStore.Save")
	defer span.End()

	raw, err := json.Marshal(state)
	if err != nil {
		return &domain.ErrSnapshotStore{Backend: "file", Err: fmt.Errorf("encode snapshot: %w", err)}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &domain.ErrSnapshotStore{Backend: "file", Err: fmt.Errorf("create snapshot dir: %w", err)}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return &domain.ErrSnapshotStore{Backend: "file", Err: fmt.Errorf("write snapshot: %w", err)}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &domain.ErrSnapshotStore{Backend: "file", Err: fmt.Errorf("replace snapshot: %w", err)}
	}

	s.logger.Debug("filestore: snapshot saved",
		zap.String("path", s.path),
		zap.Int("bytes", len(raw)),
	)
	return nil
}
