package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/theirongolddev/salesdash/internal/config"
	"github.com/theirongolddev/salesdash/internal/model"
)

// AverageROAS is the historical return on spend of the filtered rows:
// total revenue over total selected investment, 0 when nothing was spent.
func AverageROAS(rows []model.Row, channels []string) float64 {
	var revenue, investment float64
	for _, r := range rows {
		revenue += r.Revenue
		investment += r.Investment(channels)
	}
	return model.ROAS(revenue, investment)
}

// Simulate projects revenue for a hypothetical investment at avgROAS.
func Simulate(avgROAS, investment float64) float64 {
	return avgROAS * investment
}

// CheckInvestment rejects amounts the simulator cannot project: negative,
// NaN or infinite.
func CheckInvestment(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return fmt.Errorf("invalid investment %v: want a finite, non-negative number", f)
	}
	return nil
}

// ParseInvestment parses a plain number such as "5000" or "1250.5" and
// validates it with CheckInvestment.
func ParseInvestment(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid investment %q: want a non-negative number", raw)
	}
	if err := CheckInvestment(f); err != nil {
		return 0, err
	}
	return f, nil
}

// Project runs the what-if simulation for the filtered rows.
func Project(rows []model.Row, channels []string, investment float64) model.Simulation {
	roas := AverageROAS(rows, channels)
	projected := Simulate(roas, investment)
	return model.Simulation{
		AvgROAS:          roas,
		Investment:       investment,
		ProjectedRevenue: projected,
		ProjectedProfit:  projected - investment,
	}
}

// Forecast fits a least-squares line through monthly revenue and projects
// the month after the last one. Months with unknown ordinals are ignored.
func Forecast(months []model.MonthStats) model.Forecast {
	var xs, ys []float64
	last := 0
	for _, m := range months {
		if m.MonthID == 0 {
			continue
		}
		xs = append(xs, float64(m.MonthID))
		ys = append(ys, m.Revenue)
		if m.MonthID > last {
			last = m.MonthID
		}
	}
	if len(xs) < 2 || xs[0] == xs[len(xs)-1] {
		return model.Forecast{}
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	next := float64(last + 1)
	f := model.Forecast{
		NextMonthID: last%12 + 1,
		Revenue:     alpha + beta*next,
		Slope:       beta,
		RSquared:    stat.RSquared(xs, ys, nil, alpha, beta),
		Valid:       true,
	}
	if f.Revenue < 0 {
		f.Revenue = 0
	}
	return f
}

// Goals measures monthly results against the configured targets.
func Goals(months []model.MonthStats, summary model.SummaryStats, goals config.GoalsConfig) model.GoalStats {
	g := model.GoalStats{
		MonthlyRevenueTarget: goals.MonthlyRevenue,
		MaxCAC:               goals.MaxCAC,
		CACWithinLimit:       true,
	}
	if len(months) > 0 {
		g.AvgMonthlyRevenue = summary.Revenue / float64(len(months))
	}
	if t := goals.MonthlyRevenue; t != nil && *t > 0 {
		g.RevenueProgress = g.AvgMonthlyRevenue / *t
		for _, m := range months {
			if m.Revenue >= *t {
				g.MonthsOnTarget++
			}
		}
	}
	if c := goals.MaxCAC; c != nil && *c > 0 && summary.CAC > *c {
		g.CACWithinLimit = false
	}
	return g
}
