// Package catalog holds the static configuration tables consumed by
// the state engine: categories, accessories, building thresholds and
// the gamification tunables. The engine treats all of this as
// immutable input data.
package catalog

import "github.com/meowbank/meow-bank-go/internal/domain"

// Gamification tunables.
const (
	MaxHunger         = 100
	HungerDecayPerDay = 15
	HungerFeedAmount  = 30
)

// InterestCategoryID is the category synthetic interest transactions
// are filed under.
const InterestCategoryID = "interest"

// BuildingThresholds maps building level to the minimum lifetime
// income total that reaches it.
var BuildingThresholds = map[domain.BuildingLevel]int64{
	domain.BuildingHut:    0,
	domain.BuildingHouse:  500,
	domain.BuildingCastle: 2000,
}

// BuildingNames gives each level its display name.
var BuildingNames = map[domain.BuildingLevel]string{
	domain.BuildingHut:    "木造小屋",
	domain.BuildingHouse:  "精緻砂屋",
	domain.BuildingCastle: "豪華城堡",
}

// Categories is the fixed category list.
var Categories = []domain.Category{
	{ID: "food", Name: "飲食", Emoji: "🐟", Kind: domain.KindExpense},
	{ID: "fun", Name: "娛樂", Emoji: "🧶", Kind: domain.KindExpense},
	{ID: "transport", Name: "交通", Emoji: "🚌", Kind: domain.KindExpense},
	{ID: "shopping", Name: "購物", Emoji: "🛍️", Kind: domain.KindExpense},
	{ID: "income", Name: "收入", Emoji: "🪙", Kind: domain.KindIncome},
	{ID: "gift", Name: "禮物", Emoji: "🎁", Kind: domain.KindIncome},
	{ID: "allowance", Name: "零用錢", Emoji: "💰", Kind: domain.KindIncome},
	{ID: InterestCategoryID, Name: "利息", Emoji: "🏦", Kind: domain.KindIncome},
}

// Accessories is the fixed accessory list. Unlock scans iterate it in
// this order, so catalog order breaks requirement ties.
var Accessories = []domain.Accessory{
	{
		ID:          "red-bell",
		Name:        "紅色鈴鐺",
		Emoji:       "🔔",
		Description: "連續記帳 3 天解鎖",
		Requirement: domain.AccessoryRequirement{Kind: domain.RequireStreak, Days: 3},
	},
	{
		ID:          "blue-scarf",
		Name:        "藍色圍兜",
		Emoji:       "🧣",
		Description: "連續記帳 7 天解鎖",
		Requirement: domain.AccessoryRequirement{Kind: domain.RequireStreak, Days: 7},
	},
	{
		ID:          "gold-crown",
		Name:        "金色皇冠",
		Emoji:       "👑",
		Description: "連續記帳 14 天解鎖",
		Requirement: domain.AccessoryRequirement{Kind: domain.RequireStreak, Days: 14},
	},
	{
		ID:          "star-glasses",
		Name:        "星星眼鏡",
		Emoji:       "🕶️",
		Description: "連續記帳 30 天解鎖",
		Requirement: domain.AccessoryRequirement{Kind: domain.RequireStreak, Days: 30},
	},
	{
		ID:          "cat-bed",
		Name:        "貓咪小窩",
		Emoji:       "🛏️",
		Description: "存款達 200 元解鎖",
		Requirement: domain.AccessoryRequirement{Kind: domain.RequireSavings, Amount: 200},
	},
	{
		ID:          "fish-toy",
		Name:        "小魚玩具",
		Emoji:       "🐠",
		Description: "存款達 500 元解鎖",
		Requirement: domain.AccessoryRequirement{Kind: domain.RequireSavings, Amount: 500},
	},
	{
		ID:          "cat-tower",
		Name:        "豪華貓塔",
		Emoji:       "🗼",
		Description: "存款達 1000 元解鎖",
		Requirement: domain.AccessoryRequirement{Kind: domain.RequireSavings, Amount: 1000},
	},
	{
		ID:          "magic-wand",
		Name:        "魔法棒",
		Emoji:       "✨",
		Description: "存款達 3000 元解鎖",
		Requirement: domain.AccessoryRequirement{Kind: domain.RequireSavings, Amount: 3000},
	},
}

// CategoryByID looks up a category. Returns nil if the id is unknown.
func CategoryByID(id string) *domain.Category {
	for i := range Categories {
		if Categories[i].ID == id {
			return &Categories[i]
		}
	}
	return nil
}

// AccessoryByID looks up an accessory. Returns nil if the id is unknown.
func AccessoryByID(id string) *domain.Accessory {
	for i := range Accessories {
		if Accessories[i].ID == id {
			return &Accessories[i]
		}
	}
	return nil
}

// InterestCategory returns the category used for synthetic interest
// transactions.
func InterestCategory() domain.Category {
	return *CategoryByID(InterestCategoryID)
}

// BuildingLevelFor returns the building level reached by the given
// lifetime income total.
func BuildingLevelFor(totalSaved int64) domain.BuildingLevel {
	switch {
	case totalSaved >= BuildingThresholds[domain.BuildingCastle]:
		return domain.BuildingCastle
	case totalSaved >= BuildingThresholds[domain.BuildingHouse]:
		return domain.BuildingHouse
	default:
		return domain.BuildingHut
	}
}
