package procurement

import (
	"strings"

	"github.com/vitrine-erp/vitrine/internal/catalog"
)

// ResolveSupplier maps a product to its preferred supplier. Routing rules are
// evaluated in priority order and the first match wins: a rule matches when
// the product category equals one of the rule categories, or the product code
// contains one of the rule substrings. Products no rule claims go to the
// default supplier, so every product resolves.
func (g *Generator) ResolveSupplier(product ProductRef) catalog.Supplier {
	for _, rule := range g.rules.Rules {
		if !ruleMatches(rule, product) {
			continue
		}
		if supplier, ok := g.rules.Suppliers[rule.SupplierID]; ok {
			return supplier
		}
	}
	return g.rules.DefaultSupplier
}

func ruleMatches(rule catalog.RoutingRule, product ProductRef) bool {
	for _, category := range rule.Categories {
		if strings.EqualFold(category, product.Category) {
			return true
		}
	}
	code := strings.ToUpper(product.Code)
	for _, sub := range rule.CodeSubstrings {
		if sub != "" && strings.Contains(code, strings.ToUpper(sub)) {
			return true
		}
	}
	return false
}
