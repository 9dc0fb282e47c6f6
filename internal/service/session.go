// Package service provides the business logic layer. Session owns the
// single current AppState and threads every intent through the pure
// engine, persisting the result after each applied transition.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/meowbank/meow-bank-go/internal/domain"
	"github.com/meowbank/meow-bank-go/internal/engine"
	"github.com/meowbank/meow-bank-go/internal/infra/observability"
	"github.com/meowbank/meow-bank-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var sessionTracer = otel.Tracer("service/session")

const statsCacheKey = "stats"

// Session serializes intents against one AppState value. A mutex makes
// it single-writer: each transition runs to completion before the next
// is accepted, so no caller ever observes a partially-updated state.
type Session struct {
	mu    sync.Mutex
	state *domain.AppState

	eng        *engine.Engine
	store      port.SnapshotStore
	statsCache port.Cache[domain.Stats]
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewSession creates a session around an already-loaded state.
func NewSession(initial *domain.AppState, eng *engine.Engine, store port.SnapshotStore, statsCache port.Cache[domain.Stats], metrics *observability.Metrics, logger *zap.Logger) *Session {
	return &Session{
		state:      initial,
		eng:        eng,
		store:      store,
		statsCache: statsCache,
		metrics:    metrics,
		logger:     logger,
	}
}

// State returns the current AppState.
func (s *Session) State() *domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Balance returns the current balance, derived from the log.
func (s *Session) Balance() int64 {
	return engine.Balance(s.State().Transactions)
}

// TotalSaved returns the lifetime income total, derived from the log.
func (s *Session) TotalSaved() int64 {
	return engine.TotalSaved(s.State().Transactions)
}

// apply runs one transition under the session lock, records metrics,
// and persists the new state when the intent was not a no-op. The
// engine's pointer-equality contract is what distinguishes the two.
func (s *Session) apply(ctx context.Context, intent string, fn func(*domain.AppState) *domain.AppState) (*domain.AppState, bool) {
	ctx, span := sessionTracer.Start(ctx, "Session."+intent)
	defer span.End()
	start := time.Now()

	s.mu.Lock()
	prev := s.state
	next := fn(prev)
	applied := next != prev
	if applied {
		s.state = next
	}
	s.mu.Unlock()

	outcome := observability.OutcomeNoop
	if applied {
		outcome = observability.OutcomeApplied
	}
	span.SetAttributes(attribute.String("intent.outcome", outcome))
	s.metrics.IncrIntent(intent, outcome)
	s.metrics.RecordIntentDuration(intent, time.Since(start))

	if applied {
		s.statsCache.Delete(statsCacheKey)
		s.persist(ctx, next)
	}
	return next, applied
}

// persist saves best-effort: failures are logged and counted, never
// surfaced to the intent caller.
func (s *Session) persist(ctx context.Context, state *domain.AppState) {
	if err := s.store.Save(ctx, state); err != nil {
		s.logger.Error("snapshot save failed", zap.Error(err))
		s.metrics.IncrSnapshotSave("error")
		return
	}
	s.metrics.IncrSnapshotSave("ok")
}

// AddTransaction records a new income or expense transaction.
func (s *Session) AddTransaction(ctx context.Context, in engine.TransactionInput) (*domain.AppState, bool) {
	var unlockedBefore int
	next, applied := s.apply(ctx, "addTransaction", func(state *domain.AppState) *domain.AppState {
		unlockedBefore = len(state.Profile.UnlockedAccessories)
		return s.eng.AddTransaction(state, in)
	})
	if applied {
		newUnlocks := len(next.Profile.UnlockedAccessories) - unlockedBefore
		s.metrics.AddAccessoryUnlocks(newUnlocks)
		s.logger.Info("transaction recorded",
			zap.String("kind", string(in.Kind)),
			zap.String("category", in.Category.ID),
			zap.Int64("amount", in.Amount),
			zap.Int("streak", next.Profile.Streak),
			zap.Int("new_unlocks", newUnlocks),
		)
	}
	return next, applied
}

// RefreshHunger applies hunger decay for elapsed calendar days.
func (s *Session) RefreshHunger(ctx context.Context) (*domain.AppState, bool) {
	return s.apply(ctx, "updateHunger", s.eng.UpdateHunger)
}

// AddWish creates a new savings goal.
func (s *Session) AddWish(ctx context.Context, in engine.WishInput) (*domain.AppState, bool) {
	return s.apply(ctx, "addWish", func(state *domain.AppState) *domain.AppState {
		return s.eng.AddWish(state, in)
	})
}

// WaterWish moves part of the balance into a wish.
func (s *Session) WaterWish(ctx context.Context, wishID string, amount int64) (*domain.AppState, bool) {
	return s.apply(ctx, "waterWish", func(state *domain.AppState) *domain.AppState {
		return s.eng.WaterWish(state, wishID, amount)
	})
}

// DeleteWish removes a wish.
func (s *Session) DeleteWish(ctx context.Context, wishID string) (*domain.AppState, bool) {
	return s.apply(ctx, "deleteWish", func(state *domain.AppState) *domain.AppState {
		return s.eng.DeleteWish(state, wishID)
	})
}

// ToggleAccessory equips or unequips an unlocked accessory.
func (s *Session) ToggleAccessory(ctx context.Context, accessoryID string) (*domain.AppState, bool) {
	return s.apply(ctx, "toggleAccessory", func(state *domain.AppState) *domain.AppState {
		return s.eng.ToggleAccessory(state, accessoryID)
	})
}

// ApproveTransaction marks a transaction as parent-approved.
func (s *Session) ApproveTransaction(ctx context.Context, txID string) (*domain.AppState, bool) {
	return s.apply(ctx, "approveTransaction", func(state *domain.AppState) *domain.AppState {
		return s.eng.ApproveTransaction(state, txID)
	})
}

// SendHeart marks a transaction with a parent heart.
func (s *Session) SendHeart(ctx context.Context, txID string) (*domain.AppState, bool) {
	return s.apply(ctx, "sendHeart", func(state *domain.AppState) *domain.AppState {
		return s.eng.SendHeart(state, txID)
	})
}

// UpdateParentConfig merges parent-tunable interest settings.
func (s *Session) UpdateParentConfig(ctx context.Context, patch domain.ParentConfigPatch) (*domain.AppState, bool) {
	return s.apply(ctx, "updateParentConfig", func(state *domain.AppState) *domain.AppState {
		return s.eng.UpdateParentConfig(state, patch)
	})
}

// ApplyInterest appends the synthetic interest transaction.
func (s *Session) ApplyInterest(ctx context.Context) (*domain.AppState, bool) {
	next, applied := s.apply(ctx, "applyInterest", s.eng.ApplyInterest)
	if applied {
		tx := next.Transactions[len(next.Transactions)-1]
		s.logger.Info("interest applied",
			zap.Int64("amount", tx.Amount),
			zap.String("period", string(next.ParentConfig.InterestPeriod)),
		)
	}
	return next, applied
}
