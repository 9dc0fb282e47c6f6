// Package domain defines the entities of the meow-bank state model.
// AppState is the aggregate root: one instance per session, persisted
// as a single JSON snapshot after every transition.
package domain

import "time"

// TransactionKind distinguishes money coming in from money going out.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// DateLayout is the calendar-date format used for streak and interest
// bookkeeping (no time component on purpose).
const DateLayout = "2006-01-02"

// Category is a static catalog entry a transaction is filed under.
type Category struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Emoji string          `json:"emoji"`
	Kind  TransactionKind `json:"kind"`
}

// Transaction is an immutable economic event. Once created only the
// Approved and ParentHeart flags may flip (parent-only transitions).
// Insertion order is chronological order; transactions are never
// reordered or deleted.
type Transaction struct {
	ID          string          `json:"id"`
	Amount      int64           `json:"amount"`
	Category    Category        `json:"category"`
	Kind        TransactionKind `json:"kind"`
	Note        string          `json:"note"`
	CreatedAt   time.Time       `json:"createdAt"`
	Approved    bool            `json:"approved"`
	ParentHeart bool            `json:"parentHeart"`
}

// Wish is a savings goal filled by "watering". CompletedAt is set
// exactly once, the instant SavedAmount first reaches TargetAmount,
// and is never unset.
type Wish struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Emoji        string     `json:"emoji"`
	TargetAmount int64      `json:"targetAmount"`
	SavedAmount  int64      `json:"savedAmount"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt"`
}

// BuildingLevel grows with lifetime income total and never decreases.
type BuildingLevel int

const (
	BuildingHut    BuildingLevel = 0
	BuildingHouse  BuildingLevel = 1
	BuildingCastle BuildingLevel = 2
)

// Profile is the child's singleton gamification record.
// LastRecordDate is a calendar date (DateLayout); empty means no
// transaction has ever been recorded.
type Profile struct {
	Name                string        `json:"name"`
	LastRecordDate      string        `json:"lastRecordDate"`
	Streak              int           `json:"streak"`
	CatHunger           int           `json:"catHunger"`
	BuildingLevel       BuildingLevel `json:"buildingLevel"`
	UnlockedAccessories []string      `json:"unlockedAccessories"`
	EquippedAccessories []string      `json:"equippedAccessories"`
}

// InterestPeriod is how often the parent-configured interest is meant
// to be applied.
type InterestPeriod string

const (
	PeriodWeekly  InterestPeriod = "weekly"
	PeriodMonthly InterestPeriod = "monthly"
)

// ParentConfig holds the parent-tunable interest settings.
// LastInterestDate is a calendar date (DateLayout).
type ParentConfig struct {
	InterestRate     float64        `json:"interestRate"`
	InterestPeriod   InterestPeriod `json:"interestPeriod"`
	LastInterestDate string         `json:"lastInterestDate"`
}

// ParentConfigPatch carries the fields of an updateParentConfig intent.
// Nil fields are left untouched.
type ParentConfigPatch struct {
	InterestRate   *float64        `json:"interestRate,omitempty"`
	InterestPeriod *InterestPeriod `json:"interestPeriod,omitempty"`
}

// AppState is the unit of persistence: the full transaction log plus
// all gamification state. Balance and lifetime income are never stored
// here; they are recomputed from Transactions on demand.
type AppState struct {
	Transactions []Transaction `json:"transactions"`
	Wishes       []Wish        `json:"wishes"`
	Profile      Profile       `json:"profile"`
	ParentConfig ParentConfig  `json:"parentConfig"`
}

// DefaultState returns the freshly-initialized state used when no
// persisted snapshot exists (or the snapshot is unreadable).
func DefaultState(now time.Time) *AppState {
	return &AppState{
		Transactions: []Transaction{},
		Wishes:       []Wish{},
		Profile: Profile{
			Name:                "小朋友",
			LastRecordDate:      "",
			Streak:              0,
			CatHunger:           100,
			BuildingLevel:       BuildingHut,
			UnlockedAccessories: []string{},
			EquippedAccessories: []string{},
		},
		ParentConfig: ParentConfig{
			InterestRate:     1,
			InterestPeriod:   PeriodWeekly,
			LastInterestDate: now.Format(DateLayout),
		},
	}
}

// RequirementKind tags the accessory unlock requirement variant.
type RequirementKind string

const (
	RequireStreak  RequirementKind = "streak"
	RequireSavings RequirementKind = "savings"
)

// AccessoryRequirement is a closed tagged union: either a streak of N
// consecutive recording days or a lifetime income total of N.
type AccessoryRequirement struct {
	Kind   RequirementKind `json:"kind"`
	Days   int             `json:"days,omitempty"`
	Amount int64           `json:"amount,omitempty"`
}

// Accessory is a cosmetic catalog entry the cat can wear.
type Accessory struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Emoji       string               `json:"emoji"`
	Description string               `json:"description"`
	Requirement AccessoryRequirement `json:"requirement"`
}
