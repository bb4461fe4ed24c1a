package reports

import "github.com/fahimtalukderraj-lang/salesapp/internal/modules/entries"

// RangeTotals holds the elementwise sums over a filtered record set.
// Per-entry values are already rounded to two decimals, so sums carry the
// same cumulative rounding the per-day figures do.
type RangeTotals struct {
	TotalSalesStore   float64 `json:"total_sales_store"`
	TotalOverallSales float64 `json:"total_overall_sales"`
	StoreProfit       float64 `json:"store_profit"`
	GasProfit         float64 `json:"gas_profit"`
	NetProfit         float64 `json:"net_profit"`
	PaymentTotal      float64 `json:"payment_total"`
}

// MonthlyRow is one calendar month's aggregate, keyed "YYYY-MM".
type MonthlyRow struct {
	Month           string  `json:"month"`
	TotalSalesStore float64 `json:"total_sales_store"`
	StoreProfit     float64 `json:"store_profit"`
	GasProfit       float64 `json:"gas_profit"`
	NetProfit       float64 `json:"net_profit"`
}

// AnnualRow is one calendar year's aggregate.
type AnnualRow struct {
	Year            int     `json:"year"`
	TotalSalesStore float64 `json:"total_sales_store"`
	StoreProfit     float64 `json:"store_profit"`
	GasProfit       float64 `json:"gas_profit"`
	NetProfit       float64 `json:"net_profit"`
}

// Report bundles everything for one date interval. Count == 0 is the
// explicit no-entries-in-range signal, distinct from a storage error.
type Report struct {
	StartDate string                 `json:"start_date"`
	EndDate   string                 `json:"end_date"`
	Count     int                    `json:"count"`
	Totals    RangeTotals            `json:"totals"`
	Monthly   []MonthlyRow           `json:"monthly"`
	Annual    []AnnualRow            `json:"annual"`
	Records   []entries.StoredRecord `json:"records"`
}

// DayPoint tags one day's net profit for insight series.
type DayPoint struct {
	Date      string  `json:"date"`
	NetProfit float64 `json:"net_profit"`
}

// Insights holds descriptive statistics over a range's net-profit series.
type Insights struct {
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	Count           int        `json:"count"`
	AvgNetProfit    float64    `json:"avg_net_profit"`
	StdDevNetProfit float64    `json:"std_dev_net_profit"`
	BestDay         *DayPoint  `json:"best_day,omitempty"`
	WorstDay        *DayPoint  `json:"worst_day,omitempty"`
	TrendPerDay     float64    `json:"trend_per_day"`
	MovingAvgWindow int        `json:"moving_avg_window"`
	MovingAvg       []DayPoint `json:"moving_avg,omitempty"`
}
