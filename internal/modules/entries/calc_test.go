package entries

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeCategoryProfit(t *testing.T) {
	entry := &DailyEntry{
		EntryDate: "2024-01-15",
		Categories: []Category{
			{Name: "GROCERY", TotalSales: 1000, ProfitPct: 0.15},
		},
	}

	results := Compute(entry)

	assert.InDelta(t, 150.0, entry.Categories[0].Profit.Float64(), 1e-9)
	assert.InDelta(t, 150.0, results.StoreSubtotalProfit, 1e-9)
	assert.InDelta(t, 1000.0, results.TotalSalesStore, 1e-9)
}

func TestComputeGasProfit(t *testing.T) {
	entry := &DailyEntry{
		EntryDate: "2024-01-15",
		GasGrades: []GasGrade{
			{Grade: "REGULAR", CostPerGal: 3.00, SalesPerGal: 3.50, SaleGal: 200},
		},
	}

	results := Compute(entry)

	g := entry.GasGrades[0]
	assert.InDelta(t, 0.50, g.ProfitPerGal.Float64(), 1e-9)
	assert.InDelta(t, 100.0, g.Profit.Float64(), 1e-9)
	assert.InDelta(t, 100.0, results.GasTotalProfit, 1e-9)
	assert.InDelta(t, 700.0, results.TotalOverallSales, 1e-9)
}

func TestComputeNetProfit(t *testing.T) {
	entry := &DailyEntry{
		EntryDate: "2024-01-15",
		Categories: []Category{
			{Name: "GROCERY", TotalSales: 1000, ProfitPct: 0.15},
		},
		GasGrades: []GasGrade{
			{Grade: "REGULAR", CostPerGal: 3.00, SalesPerGal: 3.50, SaleGal: 200},
		},
		Payments: Payments{
			CashPaid:  20,
			LotteryPO: 30,
		},
		Taxes: 10,
	}

	results := Compute(entry)

	// 150 + 100 - 20 - 30 - 10
	assert.InDelta(t, 190.0, results.NetProfit, 1e-9)
	assert.InDelta(t, 50.0, results.PaymentTotal, 1e-9)
}

func TestComputeEmptyEntry(t *testing.T) {
	entry := &DailyEntry{EntryDate: "2024-01-15"}

	results := Compute(entry)

	assert.Zero(t, results.TotalSalesStore)
	assert.Zero(t, results.StoreSubtotalProfit)
	assert.Zero(t, results.GasTotalProfit)
	assert.Zero(t, results.NetProfit)
	assert.Zero(t, results.TotalOverallSales)
	assert.Zero(t, results.PaymentTotal)
}

func TestComputePaymentTotal(t *testing.T) {
	entry := &DailyEntry{
		EntryDate: "2024-01-15",
		Payments: Payments{
			Cash:      100.50,
			Credit:    250.25,
			Debit:     75.00,
			EBT:       40.10,
			LotteryPO: 12.00,
			CashPaid:  33.15,
		},
	}

	results := Compute(entry)

	assert.InDelta(t, 511.00, results.PaymentTotal, 1e-9)
}

func TestComputeRounding(t *testing.T) {
	entry := &DailyEntry{
		EntryDate: "2024-01-15",
		Categories: []Category{
			// 100 * 0.33333333 = 33.333333
			{Name: "GROCERY", TotalSales: 100, ProfitPct: 0.33333333},
		},
	}

	results := Compute(entry)

	assert.Equal(t, 33.33, results.StoreSubtotalProfit)
}

func TestComputeMultipleLines(t *testing.T) {
	entry := &DailyEntry{
		EntryDate: "2024-01-15",
		Categories: []Category{
			{Name: "CIGARETTE", TotalSales: 500, ProfitPct: 0.10},
			{Name: "BEER", TotalSales: 300, ProfitPct: 0.20},
			{Name: "LOTTERY", TotalSales: 200, ProfitPct: 0.05},
		},
		GasGrades: []GasGrade{
			{Grade: "REGULAR", CostPerGal: 3.00, SalesPerGal: 3.40, SaleGal: 500},
			{Grade: "PREMIUM", CostPerGal: 3.60, SalesPerGal: 4.10, SaleGal: 100},
		},
	}

	results := Compute(entry)

	assert.InDelta(t, 1000.0, results.TotalSalesStore, 1e-9)
	// 50 + 60 + 10
	assert.InDelta(t, 120.0, results.StoreSubtotalProfit, 1e-9)
	// 0.40*500 + 0.50*100
	assert.InDelta(t, 250.0, results.GasTotalProfit, 1e-9)
	// 1000 + 1700 + 410
	assert.InDelta(t, 3110.0, results.TotalOverallSales, 1e-9)
	assert.InDelta(t, 370.0, results.NetProfit, 1e-9)
}

func TestComputeNegativeGasMargin(t *testing.T) {
	entry := &DailyEntry{
		EntryDate: "2024-01-15",
		GasGrades: []GasGrade{
			{Grade: "DIESEL", CostPerGal: 4.00, SalesPerGal: 3.80, SaleGal: 50},
		},
	}

	results := Compute(entry)

	assert.InDelta(t, -0.20, entry.GasGrades[0].ProfitPerGal.Float64(), 1e-9)
	assert.InDelta(t, -10.0, results.GasTotalProfit, 1e-9)
	assert.InDelta(t, -10.0, results.NetProfit, 1e-9)
}

func TestComputeIsDeterministic(t *testing.T) {
	build := func() *DailyEntry {
		return &DailyEntry{
			EntryDate: "2024-01-15",
			Categories: []Category{
				{Name: "GROCERY", TotalSales: 123.45, ProfitPct: 0.17},
			},
			GasGrades: []GasGrade{
				{Grade: "REGULAR", CostPerGal: 2.95, SalesPerGal: 3.25, SaleGal: 311.7},
			},
			Payments: Payments{Cash: 200, CashPaid: 15.55},
			Taxes:    7.25,
		}
	}

	a := build()
	b := build()
	assert.Equal(t, Compute(a), Compute(b))
	assert.Equal(t, a.Categories[0].Profit, b.Categories[0].Profit)
}
