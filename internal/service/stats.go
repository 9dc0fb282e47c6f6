package service

import (
	"context"

	"github.com/meowbank/meow-bank-go/internal/catalog"
	"github.com/meowbank/meow-bank-go/internal/domain"
	"github.com/meowbank/meow-bank-go/internal/engine"
)

// Stats computes the derived stats projection. The result is memoized
// in the TTL cache and invalidated by every applied transition, so a
// burst of reads between transitions hits the cache.
func (s *Session) Stats(ctx context.Context) domain.Stats {
	_, span := sessionTracer.Start(ctx, "Session.Stats")
	defer span.End()

	if cached, ok := s.statsCache.Get(statsCacheKey); ok {
		s.metrics.IncrCacheHit(statsCacheKey)
		return cached
	}
	s.metrics.IncrCacheMiss(statsCacheKey)

	state := s.State()
	stats := domain.Stats{
		Balance:          engine.Balance(state.Transactions),
		TotalSaved:       engine.TotalSaved(state.Transactions),
		TransactionCount: len(state.Transactions),
		Streak:           state.Profile.Streak,
		CatHunger:        state.Profile.CatHunger,
		BuildingLevel:    state.Profile.BuildingLevel,
		BuildingName:     catalog.BuildingNames[state.Profile.BuildingLevel],
		WishesTotal:      len(state.Wishes),
	}

	for _, tx := range state.Transactions {
		if tx.Kind == domain.KindExpense {
			stats.TotalSpent += tx.Amount
		}
	}
	for _, w := range state.Wishes {
		if w.CompletedAt != nil {
			stats.WishesCompleted++
		}
	}

	totals := make(map[string]*domain.CategoryStat)
	for _, tx := range state.Transactions {
		cs, ok := totals[tx.Category.ID]
		if !ok {
			cs = &domain.CategoryStat{Category: tx.Category}
			totals[tx.Category.ID] = cs
		}
		cs.Total += tx.Amount
		cs.Count++
	}
	// Catalog order keeps the breakdown stable across calls.
	for _, cat := range catalog.Categories {
		if cs, ok := totals[cat.ID]; ok {
			stats.ByCategory = append(stats.ByCategory, *cs)
		}
	}

	s.statsCache.Set(statsCacheKey, stats)
	return stats
}
