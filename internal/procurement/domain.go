// Package procurement generates purchase orders from completed customer
// orders: line items are routed to suppliers, costed from their sell price
// and grouped into one purchase order per supplier.
package procurement

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitrine-erp/vitrine/internal/catalog"
)

// Purchase order lifecycle statuses.
type POStatus string

const (
	POStatusPendingApproval POStatus = "PENDING_APPROVAL"
	POStatusApproved        POStatus = "APPROVED"
	POStatusCancelled       POStatus = "CANCELLED"
)

// ProductRef identifies the product on an order line.
type ProductRef struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// OrderLineItem is the input to generation: a product sold at a quantity and
// sell price. Never mutated by the generator.
type OrderLineItem struct {
	Product       ProductRef      `json:"product"`
	Qty           decimal.Decimal `json:"qty"`
	SellUnitPrice decimal.Decimal `json:"sell_unit_price"`
}

// CostedLineItem decorates an order line with the derived procurement cost.
type CostedLineItem struct {
	OrderLineItem
	UnitCost  decimal.Decimal `json:"unit_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// SupplierGroup accumulates the costed lines routed to one supplier.
// TotalCost always equals the sum of the contained items' total costs.
type SupplierGroup struct {
	Supplier  catalog.Supplier `json:"supplier"`
	Items     []CostedLineItem `json:"items"`
	TotalCost decimal.Decimal  `json:"total_cost"`
}

// Totals holds the derived purchase order amounts. Recomputed on demand,
// never persisted apart from its parent order.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// GeneratedPurchaseOrder is the synthesized output, immutable after creation
// except for the downstream approval transition.
type GeneratedPurchaseOrder struct {
	ID               int64            `json:"id"`
	Number           string           `json:"number"`
	Supplier         catalog.Supplier `json:"supplier"`
	Items            []CostedLineItem `json:"items"`
	Totals           Totals           `json:"totals"`
	ApprovalRequired bool             `json:"approval_required"`
	Status           POStatus         `json:"status"`

	// Provenance.
	OriginOrderRef string    `json:"origin_order_ref"`
	GeneratedAt    time.Time `json:"generated_at"`
	AutoGenerated  bool      `json:"auto_generated"`

	// Delivery metadata carried from the origin order for the document renderer.
	DeliveryAddr string    `json:"delivery_addr"`
	DeliveryDate time.Time `json:"delivery_date"`

	ApprovedBy int64      `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
}

var (
	// ErrInvalidInput occurs on negative quantities or prices.
	ErrInvalidInput = errors.New("procurement: invalid input")
	// ErrInvalidState occurs when action violates status workflow.
	ErrInvalidState = errors.New("procurement: invalid state transition")
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("procurement: not found")
	// ErrNumberExhausted occurs when PO number generation keeps colliding.
	ErrNumberExhausted = errors.New("procurement: purchase order number space exhausted")
)
