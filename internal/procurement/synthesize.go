package procurement

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// numberDigits is the width of the random part of a purchase order number.
// Eight digits keeps the collision probability negligible for realistic
// volumes; the persistence layer still rejects duplicates.
const numberDigits = 100_000_000

// NewNumber produces a candidate purchase order number: fixed prefix plus
// zero-padded random digits. Uniqueness is enforced at persistence time via
// bounded retries, not assumed here.
func NewNumber(prefix string) string {
	return fmt.Sprintf("%s-%08d", prefix, rand.IntN(numberDigits))
}

// Synthesize constructs a purchase order from a supplier group. Totals come
// from ComputeTotals, the approval flag from a strict comparison against the
// threshold, and provenance marks the order as auto-generated. Groups are
// only created when at least one item was added, so this cannot fail.
func (g *Generator) Synthesize(group SupplierGroup, origin Origin, number string, now time.Time) GeneratedPurchaseOrder {
	totals := g.ComputeTotals(group.Items)
	approvalRequired := totals.Total.GreaterThan(g.policy.ApprovalThreshold)
	status := POStatusApproved
	if approvalRequired {
		status = POStatusPendingApproval
	}
	return GeneratedPurchaseOrder{
		Number:           number,
		Supplier:         group.Supplier,
		Items:            group.Items,
		Totals:           totals,
		ApprovalRequired: approvalRequired,
		Status:           status,
		OriginOrderRef:   origin.OrderRef,
		GeneratedAt:      now,
		AutoGenerated:    true,
		DeliveryAddr:     origin.DeliveryAddr,
		DeliveryDate:     origin.DeliveryDate,
	}
}
