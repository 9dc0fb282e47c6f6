package engine_test

import (
	"testing"
	"time"

	"github.com/meowbank/meow-bank-go/internal/catalog"
	"github.com/meowbank/meow-bank-go/internal/domain"
	"github.com/meowbank/meow-bank-go/internal/engine"
)

var day0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// newTestEngine returns an engine with a pinned, advanceable clock.
func newTestEngine(start time.Time) (*engine.Engine, *time.Time) {
	now := start
	e := engine.New(func() time.Time { return now }, nil)
	return e, &now
}

func freshState() *domain.AppState {
	return domain.DefaultState(day0)
}

func income(amount int64) engine.TransactionInput {
	return engine.TransactionInput{
		Amount:   amount,
		Category: *catalog.CategoryByID("allowance"),
		Kind:     domain.KindIncome,
	}
}

func expense(amount int64) engine.TransactionInput {
	return engine.TransactionInput{
		Amount:   amount,
		Category: *catalog.CategoryByID("food"),
		Kind:     domain.KindExpense,
	}
}

func TestDerive_EmptyLog(t *testing.T) {
	if got := engine.Balance(nil); got != 0 {
		t.Errorf("Balance(nil) = %d, want 0", got)
	}
	if got := engine.TotalSaved(nil); got != 0 {
		t.Errorf("TotalSaved(nil) = %d, want 0", got)
	}
}

func TestDerive_IncomeMinusExpense(t *testing.T) {
	e, _ := newTestEngine(day0)
	s := freshState()
	s = e.AddTransaction(s, income(100))
	s = e.AddTransaction(s, expense(30))

	if got := engine.Balance(s.Transactions); got != 70 {
		t.Errorf("Balance = %d, want 70", got)
	}
	if got := engine.TotalSaved(s.Transactions); got != 100 {
		t.Errorf("TotalSaved = %d, want 100", got)
	}
}

func TestAddTransaction_FirstRecord(t *testing.T) {
	e, _ := newTestEngine(day0)
	s := freshState()

	next := e.AddTransaction(s, income(100))
	if next == s {
		t.Fatal("expected a new state, got no-op")
	}
	if next.Profile.Streak != 1 {
		t.Errorf("streak = %d, want 1", next.Profile.Streak)
	}
	if want := day0.Format(domain.DateLayout); next.Profile.LastRecordDate != want {
		t.Errorf("lastRecordDate = %q, want %q", next.Profile.LastRecordDate, want)
	}
	if len(next.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(next.Transactions))
	}
	tx := next.Transactions[0]
	if tx.ID == "" {
		t.Error("expected generated transaction id")
	}
	if tx.Approved || tx.ParentHeart {
		t.Error("new transaction must start unapproved and unhearted")
	}
}

func TestAddTransaction_DoesNotMutateInput(t *testing.T) {
	e, _ := newTestEngine(day0)
	s := freshState()

	_ = e.AddTransaction(s, income(100))

	if len(s.Transactions) != 0 {
		t.Error("input state transaction log was mutated")
	}
	if s.Profile.Streak != 0 || s.Profile.LastRecordDate != "" {
		t.Error("input state profile was mutated")
	}
}

func TestAddTransaction_StreakProgression(t *testing.T) {
	e, now := newTestEngine(day0)
	s := freshState()

	s = e.AddTransaction(s, income(10))
	s = e.AddTransaction(s, income(10)) // same day
	if s.Profile.Streak != 1 {
		t.Errorf("same-day streak = %d, want 1", s.Profile.Streak)
	}

	*now = now.Add(24 * time.Hour)
	s = e.AddTransaction(s, income(10))
	if s.Profile.Streak != 2 {
		t.Errorf("next-day streak = %d, want 2", s.Profile.Streak)
	}

	*now = now.Add(3 * 24 * time.Hour)
	s = e.AddTransaction(s, income(10))
	if s.Profile.Streak != 1 {
		t.Errorf("after 3-day gap streak = %d, want 1", s.Profile.Streak)
	}
}

func TestAddTransaction_FeedsCat(t *testing.T) {
	e, _ := newTestEngine(day0)
	s := freshState()
	s.Profile.CatHunger = 50

	s = e.AddTransaction(s, income(10))
	if s.Profile.CatHunger != 80 {
		t.Errorf("catHunger = %d, want 80", s.Profile.CatHunger)
	}

	s = e.AddTransaction(s, income(10))
	if s.Profile.CatHunger != 100 {
		t.Errorf("catHunger = %d, want clamp at 100", s.Profile.CatHunger)
	}
}

func TestAddTransaction_BuildingLevels(t *testing.T) {
	e, _ := newTestEngine(day0)

	s := e.AddTransaction(freshState(), income(600))
	if s.Profile.BuildingLevel != domain.BuildingHouse {
		t.Errorf("level after 600 income = %d, want 1", s.Profile.BuildingLevel)
	}

	s = e.AddTransaction(freshState(), income(2000))
	if s.Profile.BuildingLevel != domain.BuildingCastle {
		t.Errorf("level after 2000 income = %d, want 2", s.Profile.BuildingLevel)
	}

	// Spending never lowers the level: lifetime income is cumulative.
	s = e.AddTransaction(s, expense(1990))
	if s.Profile.BuildingLevel != domain.BuildingCastle {
		t.Errorf("level after spending = %d, want 2", s.Profile.BuildingLevel)
	}
}

func TestAddTransaction_SavingsUnlocks(t *testing.T) {
	e, _ := newTestEngine(day0)
	s := e.AddTransaction(freshState(), income(250))

	if !containsID(s.Profile.UnlockedAccessories, "cat-bed") {
		t.Error("expected cat-bed (threshold 200) to unlock at total 250")
	}
	if containsID(s.Profile.UnlockedAccessories, "fish-toy") {
		t.Error("fish-toy (threshold 500) must not unlock at total 250")
	}
}

func TestAddTransaction_StreakUnlocks(t *testing.T) {
	e, now := newTestEngine(day0)
	s := freshState()

	for i := 0; i < 3; i++ {
		s = e.AddTransaction(s, income(1))
		*now = now.Add(24 * time.Hour)
	}

	if !containsID(s.Profile.UnlockedAccessories, "red-bell") {
		t.Error("expected red-bell to unlock at a 3-day streak")
	}
	if containsID(s.Profile.UnlockedAccessories, "blue-scarf") {
		t.Error("blue-scarf requires a 7-day streak")
	}
}

func TestUpdateHunger_DecayAndStreakReset(t *testing.T) {
	e, now := newTestEngine(day0)
	s := e.AddTransaction(freshState(), income(10))
	s.Profile.CatHunger = 100
	s.Profile.Streak = 5

	*now = now.Add(3 * 24 * time.Hour)
	next := e.UpdateHunger(s)
	if next == s {
		t.Fatal("expected a decayed state, got no-op")
	}
	if next.Profile.CatHunger != 55 {
		t.Errorf("catHunger = %d, want 55 (3 days x 15)", next.Profile.CatHunger)
	}
	if next.Profile.Streak != 0 {
		t.Errorf("streak = %d, want reset to 0 after missed days", next.Profile.Streak)
	}
}

func TestUpdateHunger_FloorsAtZero(t *testing.T) {
	e, now := newTestEngine(day0)
	s := e.AddTransaction(freshState(), income(10))
	s.Profile.CatHunger = 20

	*now = now.Add(10 * 24 * time.Hour)
	next := e.UpdateHunger(s)
	if next.Profile.CatHunger != 0 {
		t.Errorf("catHunger = %d, want floor at 0", next.Profile.CatHunger)
	}
}

func TestUpdateHunger_NoOps(t *testing.T) {
	e, _ := newTestEngine(day0)

	s := freshState()
	if next := e.UpdateHunger(s); next != s {
		t.Error("expected no-op when nothing was ever recorded")
	}

	s = e.AddTransaction(s, income(10))
	if next := e.UpdateHunger(s); next != s {
		t.Error("expected no-op on the same day as the last record")
	}
}

func TestUpdateHunger_SingleDayKeepsStreak(t *testing.T) {
	e, now := newTestEngine(day0)
	s := e.AddTransaction(freshState(), income(10))

	*now = now.Add(24 * time.Hour)
	next := e.UpdateHunger(s)
	if next.Profile.Streak != s.Profile.Streak {
		t.Errorf("streak = %d, want unchanged after exactly one day", next.Profile.Streak)
	}
	if next.Profile.CatHunger != s.Profile.CatHunger-15 {
		t.Errorf("catHunger = %d, want one day of decay", next.Profile.CatHunger)
	}
}

func TestWaterWish_FillAndComplete(t *testing.T) {
	e, _ := newTestEngine(day0)
	s := e.AddTransaction(freshState(), income(500))
	s = e.AddWish(s, engine.WishInput{Name: "腳踏車", Emoji: "🚲", TargetAmount: 300})
	wishID := s.Wishes[0].ID

	s = e.WaterWish(s, wishID, 100)
	if s.Wishes[0].SavedAmount != 100 {
		t.Errorf("savedAmount = %d, want 100", s.Wishes[0].SavedAmount)
	}
	if s.Wishes[0].CompletedAt != nil {
		t.Error("wish must not be complete yet")
	}

	// Overshoot clamps at the target and completes exactly once.
	s = e.WaterWish(s, wishID, 250)
	if s.Wishes[0].SavedAmount != 300 {
		t.Errorf("savedAmount = %d, want clamp at 300", s.Wishes[0].SavedAmount)
	}
	if s.Wishes[0].CompletedAt == nil {
		t.Fatal("expected completedAt to be set on reaching the target")
	}
	completed := *s.Wishes[0].CompletedAt

	next := e.WaterWish(s, wishID, 50)
	if next != s {
		t.Error("expected no-op when watering a completed wish")
	}
	if *s.Wishes[0].CompletedAt != completed {
		t.Error("completedAt must never change once set")
	}
}

func TestWaterWish_RejectsOverBalance(t *testing.T) {
	e, _ := newTestEngine(day0)
	s := e.AddTransaction(freshState(), income(100))
	s = e.AddWish(s, engine.WishInput{Name: "玩具", Emoji: "🧸", TargetAmount: 500})

	next := e.WaterWish(s, s.Wishes[0].ID, 101)
	if next != s {
		t.Error("expected no-op when amount exceeds current balance")
	}
}

func TestWaterWish_UnknownWish(t *testing.T) {
	e, _ := newTestEngine(day0)
	s := e.AddTransaction(freshState(), income(100))

	if next := e.WaterWish(s, "nope", 10); next != s {
		t.Error("expected no-op for unknown wish id")
	}
}

func TestDeleteWish(t *testing.T) {
	e, _ := newTestEngine(day0)
	s := e.AddWish(freshState(), engine.WishInput{Name: "玩具", Emoji: "🧸", TargetAmount: 500})
	wishID := s.Wishes[0].ID

	s = e.DeleteWish(s, wishID)
	if len(s.Wishes) != 0 {
		t.Fatalf("expected empty wish list, got %d", len(s.Wishes))
	}

	// Every later reference to the deleted id is a no-op.
	if next := e.WaterWish(s, wishID, 10); next != s {
		t.Error("expected watering a deleted wish to no-op")
	}
	if next := e.DeleteWish(s, wishID); next != s {
		t.Error("expected deleting a deleted wish to no-op")
	}
}

func TestToggleAccessory(t *testing.T) {
	e, _ := newTestEngine(day0)
	s := freshState()
	s.Profile.UnlockedAccessories = []string{"red-bell"}

	s1 := e.ToggleAccessory(s, "red-bell")
	if !containsID(s1.Profile.EquippedAccessories, "red-bell") {
		t.Error("expected red-bell equipped after first toggle")
	}

	s2 := e.ToggleAccessory(s1, "red-bell")
	if containsID(s2.Profile.EquippedAccessories, "red-bell") {
		t.Error("expected red-bell unequipped after second toggle")
	}

	if next := e.ToggleAccessory(s, "gold-crown"); next != s {
		t.Error("expected no-op for a locked accessory")
	}
}

func TestApproveAndHeart(t *testing.T) {
	e, _ := newTestEngine(day0)
	s := e.AddTransaction(freshState(), income(100))
	txID := s.Transactions[0].ID

	s = e.ApproveTransaction(s, txID)
	if !s.Transactions[0].Approved {
		t.Error("expected transaction approved")
	}
	if next := e.ApproveTransaction(s, txID); next != s {
		t.Error("expected re-approval to no-op")
	}

	s = e.SendHeart(s, txID)
	if !s.Transactions[0].ParentHeart {
		t.Error("expected parent heart set")
	}

	if next := e.ApproveTransaction(s, "nope"); next != s {
		t.Error("expected no-op for unknown transaction id")
	}
}

func TestUpdateParentConfig(t *testing.T) {
	e, _ := newTestEngine(day0)
	s := freshState()

	rate := 5.0
	period := domain.PeriodMonthly
	s = e.UpdateParentConfig(s, domain.ParentConfigPatch{InterestRate: &rate, InterestPeriod: &period})
	if s.ParentConfig.InterestRate != 5 {
		t.Errorf("interestRate = %v, want 5", s.ParentConfig.InterestRate)
	}
	if s.ParentConfig.InterestPeriod != domain.PeriodMonthly {
		t.Errorf("interestPeriod = %q, want monthly", s.ParentConfig.InterestPeriod)
	}

	bad := -1.0
	if next := e.UpdateParentConfig(s, domain.ParentConfigPatch{InterestRate: &bad}); next != s {
		t.Error("expected no-op for a non-positive rate")
	}
}

func TestApplyInterest(t *testing.T) {
	e, _ := newTestEngine(day0)
	s := e.AddTransaction(freshState(), income(1000))
	rate := 10.0
	s = e.UpdateParentConfig(s, domain.ParentConfigPatch{InterestRate: &rate})

	next := e.ApplyInterest(s)
	if next == s {
		t.Fatal("expected interest transaction, got no-op")
	}
	if got := len(next.Transactions); got != 2 {
		t.Fatalf("expected exactly 2 transactions, got %d", got)
	}
	tx := next.Transactions[1]
	if tx.Amount != 100 {
		t.Errorf("interest amount = %d, want 100", tx.Amount)
	}
	if tx.Category.ID != catalog.InterestCategoryID {
		t.Errorf("interest category = %q, want %q", tx.Category.ID, catalog.InterestCategoryID)
	}
	if !tx.Approved {
		t.Error("interest transaction must be pre-approved")
	}
	if want := day0.Format(domain.DateLayout); next.ParentConfig.LastInterestDate != want {
		t.Errorf("lastInterestDate = %q, want %q", next.ParentConfig.LastInterestDate, want)
	}
}

func TestApplyInterest_NoOps(t *testing.T) {
	e, _ := newTestEngine(day0)

	s := freshState()
	if next := e.ApplyInterest(s); next != s {
		t.Error("expected no-op with zero balance")
	}

	s = e.AddTransaction(s, income(100))
	s = e.AddTransaction(s, expense(150))
	if next := e.ApplyInterest(s); next != s {
		t.Error("expected no-op with negative balance")
	}

	// 1% of 10 rounds to 0.1 -> 0: treated as a no-op, not an error.
	s2 := e.AddTransaction(freshState(), income(10))
	rate := 1.0
	s2 = e.UpdateParentConfig(s2, domain.ParentConfigPatch{InterestRate: &rate})
	if next := e.ApplyInterest(s2); next != s2 {
		t.Error("expected no-op when interest rounds to zero")
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
