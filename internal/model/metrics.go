package model

// SummaryStats holds the top-level aggregate across the filtered rows.
type SummaryStats struct {
	Months    int
	Revenue   float64
	AvgTicket float64 // mean revenue per row
	Customers float64

	Investment float64
	ROAS       float64
	CAC        float64
	Profit     float64
	Margin     float64 // profit / revenue, 0 when revenue is 0

	RevenuePerCustomer float64
}

// MonthStats holds metrics for a single spreadsheet month.
type MonthStats struct {
	Month      string
	MonthID    int
	Revenue    float64
	Customers  float64
	Investment float64
	ROAS       float64
	CAC        float64
	Profit     float64
}

// ChannelStats holds aggregated spend for a single marketing channel.
type ChannelStats struct {
	Channel           string
	Investment        float64
	SharePercent      float64
	AttributedRevenue float64 // revenue split by the channel's share of each row's spend
	ROAS              float64
	TrendDirection    int // -1, 0, +1 first half vs second half of the range
}

// Distribution summarises monthly revenue.
type Distribution struct {
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	StdDev float64
}

// Simulation is a what-if projection from historical ROAS.
type Simulation struct {
	AvgROAS          float64
	Investment       float64
	ProjectedRevenue float64
	ProjectedProfit  float64
}

// Forecast is a linear-trend projection of next month's revenue.
type Forecast struct {
	NextMonthID int
	Revenue     float64
	Slope       float64 // revenue change per month
	RSquared    float64
	Valid       bool // false when fewer than two months are available
}

// PeriodComparison holds current and previous period data for delta computation.
type PeriodComparison struct {
	Current     SummaryStats
	Previous    SummaryStats
	HasPrevious bool
}
