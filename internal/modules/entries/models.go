package entries

import "github.com/fahimtalukderraj-lang/salesapp/pkg/numeric"

// Category is one in-store sales category line on a daily entry.
// TotalSales is the gross sales amount for the category; ProfitPct is the
// profit fraction applied to it (0.15 means 15%).
type Category struct {
	Name       string         `json:"name"`
	TotalSales numeric.Amount `json:"total_sales"`
	ProfitPct  numeric.Amount `json:"profit_pct"`
	// Derived, filled in by Compute.
	Profit numeric.Amount `json:"profit"`
}

// GasGrade is one fuel grade line on a daily entry. Prices are per gallon,
// SaleGal is the volume sold in gallons.
type GasGrade struct {
	Grade       string         `json:"grade"`
	CostPerGal  numeric.Amount `json:"cost_per_gal"`
	SalesPerGal numeric.Amount `json:"sales_per_gal"`
	SaleGal     numeric.Amount `json:"sale_gal"`
	// Derived per grade, filled in by Compute.
	ProfitPerGal numeric.Amount `json:"profit_per_gal"`
	Profit       numeric.Amount `json:"profit"`
}

// Payments holds the payment-method breakdown for a day. Unknown keys in
// incoming JSON are dropped at decode time; missing keys default to zero.
type Payments struct {
	Cash      numeric.Amount `json:"cash"`
	Credit    numeric.Amount `json:"credit"`
	Debit     numeric.Amount `json:"debit"`
	EBT       numeric.Amount `json:"ebt"`
	LotteryPO numeric.Amount `json:"lottery_p_o"` // lottery payouts
	CashPaid  numeric.Amount `json:"cash_paid"`   // cash paid out (expenses)
}

// DailyEntry is the full input for one business day.
type DailyEntry struct {
	EntryDate  string         `json:"entry_date"` // YYYY-MM-DD
	Categories []Category     `json:"categories"`
	GasGrades  []GasGrade     `json:"gas_grades"`
	Payments   Payments       `json:"payments"`
	Taxes      numeric.Amount `json:"taxes"`
}

// SummaryResult holds the derived figures for one day. Every field is
// rounded to two decimal places exactly once, when computed.
type SummaryResult struct {
	TotalSalesStore     float64 `json:"total_sales_store"`
	StoreSubtotalProfit float64 `json:"store_subtotal_profit"`
	GasTotalProfit      float64 `json:"gas_total_profit"`
	NetProfit           float64 `json:"net_profit"`
	TotalOverallSales   float64 `json:"total_overall_sales"`
	PaymentTotal        float64 `json:"payment_total"`
}

// EntryPayload pairs the raw entry with its computed results. This is what
// gets persisted as the record payload and returned to clients.
type EntryPayload struct {
	Data    DailyEntry    `json:"data"`
	Results SummaryResult `json:"results"`
}

// StoredRecord is a persisted daily entry row.
type StoredRecord struct {
	ID        int64        `json:"id"`
	EntryDate string       `json:"entry_date"`
	Payload   EntryPayload `json:"payload"`
	SavedAt   string       `json:"saved_at"` // RFC3339
}
