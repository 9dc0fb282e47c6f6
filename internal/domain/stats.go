package domain

// Stats is the derived projection served to the stats page. It is
// always recomputed from the transaction log (optionally memoized for
// a short TTL) and never persisted.
type Stats struct {
	Balance          int64          `json:"balance"`
	TotalSaved       int64          `json:"totalSaved"`
	TotalSpent       int64          `json:"totalSpent"`
	TransactionCount int            `json:"transactionCount"`
	ByCategory       []CategoryStat `json:"byCategory"`
	Streak           int            `json:"streak"`
	CatHunger        int            `json:"catHunger"`
	BuildingLevel    BuildingLevel  `json:"buildingLevel"`
	BuildingName     string         `json:"buildingName"`
	WishesTotal      int            `json:"wishesTotal"`
	WishesCompleted  int            `json:"wishesCompleted"`
}

// CategoryStat totals the transactions filed under one category.
type CategoryStat struct {
	Category Category `json:"category"`
	Total    int64    `json:"total"`
	Count    int      `json:"count"`
}
