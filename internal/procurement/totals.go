package procurement

import "github.com/shopspring/decimal"

// ComputeTotals derives subtotal, flat-rate tax and grand total from costed
// lines. An empty list yields all-zero totals. Accumulation stays in decimal;
// rounding happens only at presentation boundaries.
func (g *Generator) ComputeTotals(items []CostedLineItem) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.TotalCost)
	}
	tax := subtotal.Mul(g.policy.TaxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
