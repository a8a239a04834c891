package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wb-finances/wb-finances-mcp-server/internal/wb"
)

const (
	barWidth       = 40
	brandNameWidth = 20
	barGlyph       = "█"
	defaultUnit    = "RUB"
)

// WeeklyReport is the rendered sales and commission document.
type WeeklyReport struct {
	Markdown string `json:"markdown"`
}

// FormatCurrency renders v with two decimals, or "-" when v is nil.
func FormatCurrency(v *decimal.Decimal) string {
	if v == nil {
		return "-"
	}
	return v.StringFixed(2)
}

// RenderWeekly builds the markdown document for q from rows. The brand table
// and the bar chart share one grouping, so they list brands in the same order.
func RenderWeekly(q wb.ReportQuery, rows []wb.ReportRow) WeeklyReport {
	totals := Totals(rows)
	brands := ByBrand(rows)
	unit := currencyOf(rows)

	var b strings.Builder
	b.WriteString("# Weekly sales and commission report\n\n")
	fmt.Fprintf(&b, "Period: **%s** - **%s**\n\n", q.DateFrom, q.DateTo)

	b.WriteString("## Totals\n\n")
	fmt.Fprintf(&b, "- Total commission: **%s** %s\n", FormatCurrency(&totals.Commission), unit)
	fmt.Fprintf(&b, "- Total VAT: **%s** %s\n", FormatCurrency(&totals.VAT), unit)
	fmt.Fprintf(&b, "- Total payable: **%s** %s\n\n", FormatCurrency(&totals.Total), unit)

	b.WriteString("## Sales by brand\n\n")
	writeBrandTable(&b, brands)

	b.WriteString("\n## Sales by brand chart (quantity)\n\n")
	writeBrandChart(&b, brands)

	return WeeklyReport{Markdown: b.String()}
}

func writeBrandTable(b *strings.Builder, brands []BrandAggregate) {
	b.WriteString("| Brand | Quantity | Sales amount | Commission |\n")
	b.WriteString("|-------|----------|--------------|------------|\n")
	for _, g := range brands {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			strings.ReplaceAll(g.Brand, "|", `\|`),
			g.Quantity.String(),
			FormatCurrency(&g.RetailAmount),
			FormatCurrency(&g.Commission))
	}
}

func writeBrandChart(b *strings.Builder, brands []BrandAggregate) {
	peak := decimal.NewFromInt(1)
	for _, g := range brands {
		if g.Quantity.GreaterThan(peak) {
			peak = g.Quantity
		}
	}
	for _, g := range brands {
		fmt.Fprintf(b, "%-*s | %s %s\n", brandNameWidth, g.Brand, bar(g.Quantity, peak), g.Quantity.String())
	}
}

// bar scales qty against peak onto barWidth glyphs. Negative quantities (net returns) draw nothing.
func bar(qty, peak decimal.Decimal) string {
	n := qty.Div(peak).Mul(decimal.NewFromInt(barWidth)).Round(0).IntPart()
	if n <= 0 {
		return ""
	}
	return strings.Repeat(barGlyph, int(n))
}

func currencyOf(rows []wb.ReportRow) string {
	for _, r := range rows {
		if r.CurrencyName != "" {
			return r.CurrencyName
		}
	}
	return defaultUnit
}
