package procurement

import "fmt"

// GroupBySupplier partitions order lines into one group per supplier in a
// single pass. Groups are emitted in first-appearance order of their supplier
// so output is deterministic for a given input ordering. Empty input yields
// an empty result.
func (g *Generator) GroupBySupplier(items []OrderLineItem) ([]SupplierGroup, error) {
	groups := make([]SupplierGroup, 0, len(items))
	index := make(map[int64]int)

	for _, item := range items {
		if item.Qty.IsNegative() {
			return nil, fmt.Errorf("%w: quantity %s for product %s is negative", ErrInvalidInput, item.Qty, item.Product.Code)
		}
		unitCost, err := g.DeriveCost(item.SellUnitPrice)
		if err != nil {
			return nil, err
		}
		costed := CostedLineItem{
			OrderLineItem: item,
			UnitCost:      unitCost,
			TotalCost:     unitCost.Mul(item.Qty),
		}

		supplier := g.ResolveSupplier(item.Product)
		idx, ok := index[supplier.ID]
		if !ok {
			groups = append(groups, SupplierGroup{Supplier: supplier})
			idx = len(groups) - 1
			index[supplier.ID] = idx
		}
		groups[idx].Items = append(groups[idx].Items, costed)
		groups[idx].TotalCost = groups[idx].TotalCost.Add(costed.TotalCost)
	}
	return groups, nil
}
