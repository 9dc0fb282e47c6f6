// Package port defines the interfaces (ports) for external
// dependencies. Following hexagonal architecture, these ports decouple
// the engine/service layer from concrete implementations.
package port

import (
	"context"

	"github.com/meowbank/meow-bank-go/internal/domain"
)

// SnapshotStore persists the AppState aggregate as a single snapshot.
//
// Load never fails: on missing or corrupt data implementations return
// a freshly-defaulted state. Save is best-effort; the session logs and
// counts failures but never surfaces them to the caller.
type SnapshotStore interface {
	Load(ctx context.Context) *domain.AppState
	Save(ctx context.Context, state *domain.AppState) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
