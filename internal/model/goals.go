package model

// GoalStats holds progress against the configured monthly targets.
type GoalStats struct {
	MonthlyRevenueTarget *float64
	MaxCAC               *float64
	AvgMonthlyRevenue    float64
	RevenueProgress      float64 // avg monthly revenue / target, 0..n
	MonthsOnTarget       int
	CACWithinLimit       bool
}
