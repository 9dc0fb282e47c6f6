// Package engine implements the state-transition core: pure total
// functions from AppState and an intent to the next AppState.
//
// Every transition returns a brand-new state value on success and the
// unchanged input state when the intent is invalid or has no effect.
// Callers detect rejection by pointer equality; nothing here ever
// returns an error or mutates its input.
package engine

import (
	"math"
	"time"

	"github.com/meowbank/meow-bank-go/internal/catalog"
	"github.com/meowbank/meow-bank-go/internal/domain"

	"github.com/google/uuid"
)

// Clock supplies the current time. Injectable so tests can pin dates.
type Clock func() time.Time

// IDFunc generates opaque unique identifiers.
type IDFunc func() string

// Engine evaluates intents against an AppState. It holds no state of
// its own and is safe to share.
type Engine struct {
	now   Clock
	newID IDFunc
}

// New creates an engine. A nil clock defaults to time.Now and a nil
// id generator to uuid.NewString.
func New(now Clock, newID IDFunc) *Engine {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Engine{now: now, newID: newID}
}

// TransactionInput carries the arguments of an addTransaction intent.
type TransactionInput struct {
	Amount   int64
	Category domain.Category
	Kind     domain.TransactionKind
	Note     string
}

// WishInput carries the arguments of an addWish intent.
type WishInput struct {
	Name         string
	Emoji        string
	TargetAmount int64
}

// daysBetween returns the whole calendar days between two DateLayout
// dates, always non-negative.
func daysBetween(a, b string) int {
	d1, err1 := time.Parse(domain.DateLayout, a)
	d2, err2 := time.Parse(domain.DateLayout, b)
	if err1 != nil || err2 != nil {
		return 0
	}
	days := int(d2.Sub(d1).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

func (e *Engine) today() string {
	return e.now().Format(domain.DateLayout)
}

// AddTransaction appends a new transaction and recomputes the derived
// gamification state: streak, cat hunger, building level and any
// newly-eligible accessory unlocks.
func (e *Engine) AddTransaction(state *domain.AppState, in TransactionInput) *domain.AppState {
	if in.Amount <= 0 {
		return state
	}

	tx := domain.Transaction{
		ID:          e.newID(),
		Amount:      in.Amount,
		Category:    in.Category,
		Kind:        in.Kind,
		Note:        in.Note,
		CreatedAt:   e.now(),
		Approved:    false,
		ParentHeart: false,
	}

	today := e.today()
	prev := state.Profile.LastRecordDate
	streak := state.Profile.Streak

	switch {
	case prev == "":
		streak = 1
	case prev == today:
		// same-day repeat record, streak unchanged
	case daysBetween(prev, today) == 1:
		streak++
	default:
		streak = 1
	}

	hunger := state.Profile.CatHunger + catalog.HungerFeedAmount
	if hunger > catalog.MaxHunger {
		hunger = catalog.MaxHunger
	}

	transactions := append(append([]domain.Transaction{}, state.Transactions...), tx)
	totalSaved := TotalSaved(transactions)

	next := *state
	next.Transactions = transactions
	next.Profile.LastRecordDate = today
	next.Profile.Streak = streak
	next.Profile.CatHunger = hunger
	next.Profile.BuildingLevel = catalog.BuildingLevelFor(totalSaved)
	next.Profile.UnlockedAccessories = unlockAccessories(state.Profile.UnlockedAccessories, streak, totalSaved)
	return &next
}

// unlockAccessories scans the catalog in order and appends every
// not-yet-unlocked accessory whose requirement is now met. Unlocks are
// monotonic: nothing is ever removed.
func unlockAccessories(unlocked []string, streak int, totalSaved int64) []string {
	out := append([]string{}, unlocked...)
	for _, acc := range catalog.Accessories {
		if contains(out, acc.ID) {
			continue
		}
		switch acc.Requirement.Kind {
		case domain.RequireStreak:
			if streak >= acc.Requirement.Days {
				out = append(out, acc.ID)
			}
		case domain.RequireSavings:
			if totalSaved >= acc.Requirement.Amount {
				out = append(out, acc.ID)
			}
		}
	}
	return out
}

// UpdateHunger decays the cat's hunger by the elapsed whole days since
// the last recorded transaction and zeroes the streak after a missed
// day. No-op when nothing was ever recorded or no day has elapsed.
func (e *Engine) UpdateHunger(state *domain.AppState) *domain.AppState {
	last := state.Profile.LastRecordDate
	if last == "" {
		return state
	}

	days := daysBetween(last, e.today())
	if days <= 0 {
		return state
	}

	hunger := state.Profile.CatHunger - days*catalog.HungerDecayPerDay
	if hunger < 0 {
		hunger = 0
	}
	streak := state.Profile.Streak
	if days > 1 {
		streak = 0
	}

	next := *state
	next.Profile.CatHunger = hunger
	next.Profile.Streak = streak
	return &next
}

// AddWish appends a new savings goal with nothing saved yet.
func (e *Engine) AddWish(state *domain.AppState, in WishInput) *domain.AppState {
	if in.TargetAmount <= 0 {
		return state
	}

	wish := domain.Wish{
		ID:           e.newID(),
		Name:         in.Name,
		Emoji:        in.Emoji,
		TargetAmount: in.TargetAmount,
		SavedAmount:  0,
		CreatedAt:    e.now(),
		CompletedAt:  nil,
	}

	next := *state
	next.Wishes = append(append([]domain.Wish{}, state.Wishes...), wish)
	return &next
}

// WaterWish moves amount into a wish, clamped at its target. The
// amount is checked against the current balance at call time only;
// watering is presentational earmarking, not a transfer, so the
// balance itself is not decremented.
func (e *Engine) WaterWish(state *domain.AppState, wishID string, amount int64) *domain.AppState {
	if amount <= 0 || amount > Balance(state.Transactions) {
		return state
	}

	idx := -1
	for i := range state.Wishes {
		if state.Wishes[i].ID == wishID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return state
	}

	wish := state.Wishes[idx]
	saved := wish.SavedAmount + amount
	if saved > wish.TargetAmount {
		saved = wish.TargetAmount
	}
	if saved == wish.SavedAmount {
		return state
	}

	wish.SavedAmount = saved
	if saved == wish.TargetAmount && wish.CompletedAt == nil {
		done := e.now()
		wish.CompletedAt = &done
	}

	wishes := append([]domain.Wish{}, state.Wishes...)
	wishes[idx] = wish

	next := *state
	next.Wishes = wishes
	return &next
}

// DeleteWish removes a wish regardless of its completion state.
func (e *Engine) DeleteWish(state *domain.AppState, wishID string) *domain.AppState {
	idx := -1
	for i := range state.Wishes {
		if state.Wishes[i].ID == wishID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return state
	}

	wishes := append([]domain.Wish{}, state.Wishes[:idx]...)
	wishes = append(wishes, state.Wishes[idx+1:]...)

	next := *state
	next.Wishes = wishes
	return &next
}

// ToggleAccessory flips whether an unlocked accessory is equipped.
// Accessories that are not unlocked cannot be equipped.
func (e *Engine) ToggleAccessory(state *domain.AppState, accessoryID string) *domain.AppState {
	if !contains(state.Profile.UnlockedAccessories, accessoryID) {
		return state
	}

	var equipped []string
	if contains(state.Profile.EquippedAccessories, accessoryID) {
		equipped = make([]string, 0, len(state.Profile.EquippedAccessories))
		for _, id := range state.Profile.EquippedAccessories {
			if id != accessoryID {
				equipped = append(equipped, id)
			}
		}
	} else {
		equipped = append(append([]string{}, state.Profile.EquippedAccessories...), accessoryID)
	}

	next := *state
	next.Profile.EquippedAccessories = equipped
	return &next
}

// ApproveTransaction marks a transaction as parent-approved.
func (e *Engine) ApproveTransaction(state *domain.AppState, txID string) *domain.AppState {
	return e.flagTransaction(state, txID, func(tx *domain.Transaction) bool {
		if tx.Approved {
			return false
		}
		tx.Approved = true
		return true
	})
}

// SendHeart marks a transaction with a parent heart.
func (e *Engine) SendHeart(state *domain.AppState, txID string) *domain.AppState {
	return e.flagTransaction(state, txID, func(tx *domain.Transaction) bool {
		if tx.ParentHeart {
			return false
		}
		tx.ParentHeart = true
		return true
	})
}

// flagTransaction applies a flag flip to the matching transaction.
// No-op when the id is unknown or the flag is already set.
func (e *Engine) flagTransaction(state *domain.AppState, txID string, flip func(*domain.Transaction) bool) *domain.AppState {
	idx := -1
	for i := range state.Transactions {
		if state.Transactions[i].ID == txID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return state
	}

	tx := state.Transactions[idx]
	if !flip(&tx) {
		return state
	}

	transactions := append([]domain.Transaction{}, state.Transactions...)
	transactions[idx] = tx

	next := *state
	next.Transactions = transactions
	return &next
}

// UpdateParentConfig merges the provided fields into the parent
// config. Non-positive interest rates are ignored.
func (e *Engine) UpdateParentConfig(state *domain.AppState, patch domain.ParentConfigPatch) *domain.AppState {
	cfg := state.ParentConfig
	if patch.InterestRate != nil && *patch.InterestRate > 0 {
		cfg.InterestRate = *patch.InterestRate
	}
	if patch.InterestPeriod != nil {
		switch *patch.InterestPeriod {
		case domain.PeriodWeekly, domain.PeriodMonthly:
			cfg.InterestPeriod = *patch.InterestPeriod
		}
	}
	if cfg == state.ParentConfig {
		return state
	}

	next := *state
	next.ParentConfig = cfg
	return &next
}

// ApplyInterest appends a synthetic pre-approved income transaction of
// round(balance × rate/100) in the interest category. No-op when the
// balance is non-positive or the interest rounds to zero.
func (e *Engine) ApplyInterest(state *domain.AppState) *domain.AppState {
	balance := Balance(state.Transactions)
	if balance <= 0 {
		return state
	}

	interest := int64(math.Round(float64(balance) * state.ParentConfig.InterestRate / 100))
	if interest <= 0 {
		return state
	}

	note := "月利息"
	if state.ParentConfig.InterestPeriod == domain.PeriodWeekly {
		note = "週利息"
	}

	tx := domain.Transaction{
		ID:        e.newID(),
		Amount:    interest,
		Category:  catalog.InterestCategory(),
		Kind:      domain.KindIncome,
		Note:      note,
		CreatedAt: e.now(),
		Approved:  true,
	}

	next := *state
	next.Transactions = append(append([]domain.Transaction{}, state.Transactions...), tx)
	next.ParentConfig.LastInterestDate = e.today()
	return &next
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
