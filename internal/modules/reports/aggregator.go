package reports

import (
	"sort"
	"strconv"

	"github.com/fahimtalukderraj-lang/salesapp/internal/modules/entries"
)

// FilterByRange keeps records whose entry_date falls in [start, end], both
// ends inclusive, preserving the input's relative order. ISO dates compare
// lexically in date order, so plain string comparison is enough. An inverted
// interval (start > end) matches nothing and is not an error.
func FilterByRange(records []entries.StoredRecord, start, end string) []entries.StoredRecord {
	filtered := []entries.StoredRecord{}
	for _, rec := range records {
		if rec.EntryDate >= start && rec.EntryDate <= end {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// Totals sums the six summary fields over the filtered set. An empty set
// yields all zeros.
func Totals(records []entries.StoredRecord) RangeTotals {
	var totals RangeTotals
	for _, rec := range records {
		res := rec.Payload.Results
		totals.TotalSalesStore += res.TotalSalesStore
		totals.TotalOverallSales += res.TotalOverallSales
		totals.StoreProfit += res.StoreSubtotalProfit
		totals.GasProfit += res.GasTotalProfit
		totals.NetProfit += res.NetProfit
		totals.PaymentTotal += res.PaymentTotal
	}
	return totals
}

// Monthly groups records by "YYYY-MM" and sums the four headline fields per
// group. Rows come back sorted ascending by month key so output is stable.
func Monthly(records []entries.StoredRecord) []MonthlyRow {
	groups := make(map[string]*MonthlyRow)
	for _, rec := range records {
		if len(rec.EntryDate) < 7 {
			continue
		}
		key := rec.EntryDate[:7]

		row, ok := groups[key]
		if !ok {
			row = &MonthlyRow{Month: key}
			groups[key] = row
		}

		res := rec.Payload.Results
		row.TotalSalesStore += res.TotalSalesStore
		row.StoreProfit += res.StoreSubtotalProfit
		row.GasProfit += res.GasTotalProfit
		row.NetProfit += res.NetProfit
	}

	rows := make([]MonthlyRow, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month < rows[j].Month })
	return rows
}

// Annual groups records by calendar year and sums the four headline fields
// per group, rows sorted ascending by year.
func Annual(records []entries.StoredRecord) []AnnualRow {
	groups := make(map[int]*AnnualRow)
	for _, rec := range records {
		if len(rec.EntryDate) < 4 {
			continue
		}
		year, err := strconv.Atoi(rec.EntryDate[:4])
		if err != nil {
			continue
		}

		row, ok := groups[year]
		if !ok {
			row = &AnnualRow{Year: year}
			groups[year] = row
		}

		res := rec.Payload.Results
		row.TotalSalesStore += res.TotalSalesStore
		row.StoreProfit += res.StoreSubtotalProfit
		row.GasProfit += res.GasTotalProfit
		row.NetProfit += res.NetProfit
	}

	rows := make([]AnnualRow, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows
}

// BuildReport filters the record set to [start, end] and assembles range
// totals plus monthly and annual aggregates.
func BuildReport(records []entries.StoredRecord, start, end string) *Report {
	filtered := FilterByRange(records, start, end)
	return &Report{
		StartDate: start,
		EndDate:   end,
		Count:     len(filtered),
		Totals:    Totals(filtered),
		Monthly:   Monthly(filtered),
		Annual:    Annual(filtered),
		Records:   filtered,
	}
}
