package core

// Summary aggregates every record currently in a store. Total and Average
// are zero when the store is empty; the date bounds are absent.
type Summary struct {
	Count        int64 `json:"count"`
	Total        Money `json:"total"`
	Average      Money `json:"average"`
	EarliestDate *Date `json:"earliest_date,omitempty"`
	LatestDate   *Date `json:"latest_date,omitempty"`
}

// CategoryStat is one row of the per-category breakdown. Categories with no
// records do not appear.
type CategoryStat struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
	Total    Money  `json:"total"`
	Average  Money  `json:"average"`
}

// MonthlyPoint is one calendar month of the trend, keyed as YYYY-MM.
type MonthlyPoint struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
	Total Money  `json:"total"`
}

// Report bundles the three aggregate views the summary endpoint returns.
type Report struct {
	Summary      Summary        `json:"summary"`
	Categories   []CategoryStat `json:"categories"`
	MonthlyTrend []MonthlyPoint `json:"monthly_trends"`
}
