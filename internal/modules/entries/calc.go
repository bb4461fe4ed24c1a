package entries

import "github.com/fahimtalukderraj-lang/salesapp/pkg/numeric"

// Compute derives the six summary figures for one daily entry. It never
// fails: numeric fields have already been coerced to finite values at the
// decode boundary, and empty category/gas slices simply contribute zero.
//
// Besides returning the summary, Compute enriches the entry in place:
// each category gets its profit and each gas grade gets profit_per_gal
// and profit, so line items can be re-displayed without recomputation.
// Each result field is rounded to two decimals exactly once, at the end.
func Compute(entry *DailyEntry) SummaryResult {
	var totalSalesStore, storeSubtotalProfit float64
	for i := range entry.Categories {
		c := &entry.Categories[i]
		profit := c.TotalSales.Float64() * c.ProfitPct.Float64()
		c.Profit = numeric.Amount(profit)
		totalSalesStore += c.TotalSales.Float64()
		storeSubtotalProfit += profit
	}

	var gasTotalProfit, gasSalesRevenue float64
	for i := range entry.GasGrades {
		g := &entry.GasGrades[i]
		profitPerGal := g.SalesPerGal.Float64() - g.CostPerGal.Float64()
		profit := profitPerGal * g.SaleGal.Float64()
		g.ProfitPerGal = numeric.Amount(profitPerGal)
		g.Profit = numeric.Amount(profit)
		gasTotalProfit += profit
		gasSalesRevenue += g.SalesPerGal.Float64() * g.SaleGal.Float64()
	}

	p := entry.Payments
	paymentTotal := p.Cash.Float64() + p.Credit.Float64() + p.Debit.Float64() +
		p.EBT.Float64() + p.LotteryPO.Float64() + p.CashPaid.Float64()

	netProfit := storeSubtotalProfit + gasTotalProfit -
		p.CashPaid.Float64() - p.LotteryPO.Float64() - entry.Taxes.Float64()

	return SummaryResult{
		TotalSalesStore:     numeric.Round2(totalSalesStore),
		StoreSubtotalProfit: numeric.Round2(storeSubtotalProfit),
		GasTotalProfit:      numeric.Round2(gasTotalProfit),
		NetProfit:           numeric.Round2(netProfit),
		TotalOverallSales:   numeric.Round2(totalSalesStore + gasSalesRevenue),
		PaymentTotal:        numeric.Round2(paymentTotal),
	}
}
