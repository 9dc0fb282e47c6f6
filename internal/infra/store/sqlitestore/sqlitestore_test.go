package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/meowbank/meow-bank-go/internal/domain"
	"github.com/meowbank/meow-bank-go/internal/infra/store/sqlitestore"

	"go.uber.org/zap"
)

func newStore(t *testing.T) *sqlitestore.Store {
	t.Helper()
	store, err := sqlitestore.New(filepath.Join(t.TempDir(), "meowbank.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoad_EmptyDatabase(t *testing.T) {
	store := newStore(t)

	state := store.Load(context.Background())
	if state == nil || state.Profile.CatHunger != 100 {
		t.Error("expected freshly-defaulted state from empty database")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := newStore(t)

	now := time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC)
	state := domain.DefaultState(now)
	state.Transactions = []domain.Transaction{
		{
			ID:        "tx-1",
			Amount:    250,
			Category:  domain.Category{ID: "gift", Name: "禮物", Emoji: "🎁", Kind: domain.KindIncome},
			Kind:      domain.KindIncome,
			CreatedAt: now,
		},
	}
	state.Profile.Streak = 2
	state.Profile.LastRecordDate = "2025-03-12"

	if err := store.Save(context.Background(), state); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := store.Load(context.Background())
	if len(got.Transactions) != 1 || got.Transactions[0].ID != "tx-1" {
		t.Fatalf("expected saved transaction back, got %+v", got.Transactions)
	}
	if got.Profile.Streak != 2 || got.Profile.LastRecordDate != "2025-03-12" {
		t.Errorf("profile did not round-trip: %+v", got.Profile)
	}
}

func TestSave_Overwrites(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first := domain.DefaultState(time.Now())
	first.Profile.Streak = 1
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := domain.DefaultState(time.Now())
	second.Profile.Streak = 9
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := store.Load(ctx)
	if got.Profile.Streak != 9 {
		t.Errorf("streak = %d, want latest snapshot (9)", got.Profile.Streak)
	}
}
