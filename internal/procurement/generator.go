package procurement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitrine-erp/vitrine/internal/catalog"
)

// Policy holds the monetary rules applied during generation.
type Policy struct {
	MarkdownFactor    decimal.Decimal
	TaxRate           decimal.Decimal
	ApprovalThreshold decimal.Decimal
	NumberPrefix      string
}

// DefaultPolicy mirrors the trading desk's standing assumptions: cost is 70%
// of sell, 10% flat tax, manager approval above 2000.
func DefaultPolicy() Policy {
	return Policy{
		MarkdownFactor:    decimal.NewFromFloat(0.7),
		TaxRate:           decimal.NewFromFloat(0.10),
		ApprovalThreshold: decimal.NewFromInt(2000),
		NumberPrefix:      "PO",
	}
}

// Generator is the pure purchase-order generation core. It performs no I/O;
// routing rules and policy are loaded by the caller.
type Generator struct {
	policy Policy
	rules  catalog.RuleSet
}

// NewGenerator constructs a generator over a loaded rule set.
func NewGenerator(policy Policy, rules catalog.RuleSet) *Generator {
	return &Generator{policy: policy, rules: rules}
}

// NumberFunc supplies the next candidate purchase order number.
type NumberFunc func() (string, error)

// FromOrder runs the full generation pipeline over flattened order lines:
// group by supplier, then synthesize one purchase order per group. An order
// with zero lines yields an empty slice, not an error.
func (g *Generator) FromOrder(items []OrderLineItem, origin Origin, now time.Time, nextNumber NumberFunc) ([]GeneratedPurchaseOrder, error) {
	groups, err := g.GroupBySupplier(items)
	if err != nil {
		return nil, err
	}
	pos := make([]GeneratedPurchaseOrder, 0, len(groups))
	for _, group := range groups {
		number, err := nextNumber()
		if err != nil {
			return nil, err
		}
		pos = append(pos, g.Synthesize(group, origin, number, now))
	}
	return pos, nil
}

// Origin carries provenance and delivery metadata from the customer order.
type Origin struct {
	OrderRef     string
	DeliveryAddr string
	DeliveryDate time.Time
}
