package procurement

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DeriveCost estimates the procurement unit cost from a sell unit price by
// applying the configured markdown factor. Zero is a valid price; negative
// prices are rejected because procurement costs cannot be negative.
func (g *Generator) DeriveCost(sellUnitPrice decimal.Decimal) (decimal.Decimal, error) {
	if sellUnitPrice.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: sell price %s is negative", ErrInvalidInput, sellUnitPrice)
	}
	return sellUnitPrice.Mul(g.policy.MarkdownFactor), nil
}
