// Package catalog holds the trading masterdata: products, suppliers and the
// supplier routing rules that decide which supplier sources a product.
package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable item.
type Product struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"`
	SellUnitPrice decimal.Decimal `json:"sell_unit_price"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Supplier represents a supplier entity.
type Supplier struct {
	ID               int64     `json:"id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	ContactPerson    string    `json:"contact_person"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Address          string    `json:"address"`
	PaymentTermsDays int       `json:"payment_terms_days"`
	Approved         bool      `json:"approved"`
	Rating           int       `json:"rating"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RoutingRule routes products to a supplier. Rules are evaluated in priority
// order; a product matches when its category equals one of Categories or its
// code contains one of CodeSubstrings.
type RoutingRule struct {
	ID             int64     `json:"id"`
	Priority       int       `json:"priority"`
	Categories     []string  `json:"categories"`
	CodeSubstrings []string  `json:"code_substrings"`
	SupplierID     int64     `json:"supplier_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RuleSet is the loaded routing configuration handed to the purchase-order
// generator: ordered rules, the suppliers they reference and the fallback
// supplier used when no rule matches.
type RuleSet struct {
	Rules           []RoutingRule      `json:"rules"`
	Suppliers       map[int64]Supplier `json:"suppliers"`
	DefaultSupplier Supplier           `json:"default_supplier"`
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("catalog: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("catalog: invalid input")
	// ErrNoDefaultSupplier indicates routing config without a fallback supplier.
	ErrNoDefaultSupplier = errors.New("catalog: no default supplier configured")
)
