package engine

import "github.com/meowbank/meow-bank-go/internal/domain"

// Derived values are recomputed from the full transaction log on every
// call and never stored in AppState, so retroactive flag flips can
// never leave a cached figure stale.

// Balance is total income minus total expenses.
func Balance(transactions []domain.Transaction) int64 {
	var sum int64
	for _, tx := range transactions {
		if tx.Kind == domain.KindIncome {
			sum += tx.Amount
		} else {
			sum -= tx.Amount
		}
	}
	return sum
}

// TotalSaved is the lifetime income total: the sum of all income
// transactions ever recorded, independent of spending. It drives the
// building level and savings-based accessory unlocks and is
// monotonically non-decreasing over time.
func TotalSaved(transactions []domain.Transaction) int64 {
	var sum int64
	for _, tx := range transactions {
		if tx.Kind == domain.KindIncome {
			sum += tx.Amount
		}
	}
	return sum
}
