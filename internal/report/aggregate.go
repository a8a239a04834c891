package report

import (
	"github.com/shopspring/decimal"

	"github.com/wb-finances/wb-finances-mcp-server/internal/wb"
)

// UnknownBrand replaces an empty brand name.
const UnknownBrand = "Unknown"

// CommissionTotals is the marketplace commission plus VAT on it for a row set.
type CommissionTotals struct {
	Commission decimal.Decimal `json:"totalCommission"`
	VAT        decimal.Decimal `json:"totalNds"`
	Total      decimal.Decimal `json:"total"`
}

// MetricsSummary holds the headline numbers of a row set.
type MetricsSummary struct {
	TotalQuantity     decimal.Decimal `json:"totalQuantity"`
	TotalRetailAmount decimal.Decimal `json:"totalRetailAmount"`
	TotalForPay       decimal.Decimal `json:"totalForPay"`
	TotalCommission   decimal.Decimal `json:"totalCommission"`
	TotalPenalty      decimal.Decimal `json:"totalPenalty"`
	TotalStorageFee   decimal.Decimal `json:"totalStorageFee"`
	UniqueArticles    int             `json:"uniqueArticles"`
	TotalOrders       int             `json:"totalOrders"`
}

// BrandAggregate sums quantity, sales and commission for one brand.
type BrandAggregate struct {
	Brand        string          `json:"brand"`
	Quantity     decimal.Decimal `json:"quantity"`
	RetailAmount decimal.Decimal `json:"retailAmount"`
	Commission   decimal.Decimal `json:"commission"`
}

// Totals sums commission and VAT. Total is always Commission + VAT.
func Totals(rows []wb.ReportRow) CommissionTotals {
	commission, vat := decimal.Zero, decimal.Zero
	for _, r := range rows {
		commission = commission.Add(decimal.NewFromFloat(r.PpvzSalesCommission))
		vat = vat.Add(decimal.NewFromFloat(r.PpvzVwNds))
	}
	return CommissionTotals{
		Commission: commission,
		VAT:        vat,
		Total:      commission.Add(vat),
	}
}

// Metrics computes quantity and money totals, distinct articles and row count.
func Metrics(rows []wb.ReportRow) MetricsSummary {
	m := MetricsSummary{
		TotalQuantity:     decimal.Zero,
		TotalRetailAmount: decimal.Zero,
		TotalForPay:       decimal.Zero,
		TotalCommission:   decimal.Zero,
		TotalPenalty:      decimal.Zero,
		TotalStorageFee:   decimal.Zero,
		TotalOrders:       len(rows),
	}
	articles := make(map[int64]struct{})
	for _, r := range rows {
		m.TotalQuantity = m.TotalQuantity.Add(decimal.NewFromFloat(r.Quantity))
		m.TotalRetailAmount = m.TotalRetailAmount.Add(decimal.NewFromFloat(r.RetailAmount))
		m.TotalForPay = m.TotalForPay.Add(decimal.NewFromFloat(r.PpvzForPay))
		m.TotalCommission = m.TotalCommission.Add(decimal.NewFromFloat(r.PpvzSalesCommission))
		m.TotalPenalty = m.TotalPenalty.Add(decimal.NewFromFloat(r.Penalty))
		m.TotalStorageFee = m.TotalStorageFee.Add(optional(r.StorageFee))
		articles[r.NmID] = struct{}{}
	}
	m.UniqueArticles = len(articles)
	return m
}

// ByBrand groups rows by brand in order of first appearance.
func ByBrand(rows []wb.ReportRow) []BrandAggregate {
	groups := []BrandAggregate{}
	index := make(map[string]int)
	for _, r := range rows {
		brand := r.BrandName
		if brand == "" {
			brand = UnknownBrand
		}
		i, ok := index[brand]
		if !ok {
			i = len(groups)
			index[brand] = i
			groups = append(groups, BrandAggregate{
				Brand:        brand,
				Quantity:     decimal.Zero,
				RetailAmount: decimal.Zero,
				Commission:   decimal.Zero,
			})
		}
		g := &groups[i]
		g.Quantity = g.Quantity.Add(decimal.NewFromFloat(r.Quantity))
		g.RetailAmount = g.RetailAmount.Add(decimal.NewFromFloat(r.RetailAmount))
		g.Commission = g.Commission.Add(decimal.NewFromFloat(r.PpvzSalesCommission))
	}
	return groups
}

// GroupByArticle buckets rows by nm_id.
func GroupByArticle(rows []wb.ReportRow) map[int64][]wb.ReportRow {
	out := make(map[int64][]wb.ReportRow)
	for _, r := range rows {
		out[r.NmID] = append(out[r.NmID], r)
	}
	return out
}

func optional(v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}
