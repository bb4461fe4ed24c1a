package reports

import (
	"math"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"github.com/fahimtalukderraj-lang/salesapp/internal/modules/entries"
)

// DefaultMovingAvgWindow is the trailing SMA window applied to the daily
// net-profit series when the caller does not pick one.
const DefaultMovingAvgWindow = 7

// BuildInsights computes descriptive statistics over the net-profit series
// of records in [start, end]. The series runs chronologically ascending
// (storage order is date-descending). The moving average is only produced
// when the series is at least window long.
func BuildInsights(records []entries.StoredRecord, start, end string, window int) *Insights {
	if window < 1 {
		window = DefaultMovingAvgWindow
	}

	filtered := FilterByRange(records, start, end)

	insights := &Insights{
		StartDate:       start,
		EndDate:         end,
		Count:           len(filtered),
		MovingAvgWindow: window,
	}
	if len(filtered) == 0 {
		return insights
	}

	// Oldest first
	points := make([]DayPoint, 0, len(filtered))
	for i := len(filtered) - 1; i >= 0; i-- {
		points = append(points, DayPoint{
			Date:      filtered[i].EntryDate,
			NetProfit: filtered[i].Payload.Results.NetProfit,
		})
	}

	series := make([]float64, len(points))
	best, worst := points[0], points[0]
	for i, p := range points {
		series[i] = p.NetProfit
		if p.NetProfit > best.NetProfit {
			best = p
		}
		if p.NetProfit < worst.NetProfit {
			worst = p
		}
	}

	insights.AvgNetProfit = stat.Mean(series, nil)
	if len(series) >= 2 {
		insights.StdDevNetProfit = stat.StdDev(series, nil)

		xs := make([]float64, len(series))
		for i := range xs {
			xs[i] = float64(i)
		}
		_, slope := stat.LinearRegression(xs, series, nil, false)
		insights.TrendPerDay = slope
	}
	insights.BestDay = &best
	insights.WorstDay = &worst

	if len(series) >= window {
		sma := talib.Sma(series, window)
		for i := window - 1; i < len(sma); i++ {
			if math.IsNaN(sma[i]) {
				continue
			}
			insights.MovingAvg = append(insights.MovingAvg, DayPoint{
				Date:      points[i].Date,
				NetProfit: sma[i],
			})
		}
	}

	return insights
}
