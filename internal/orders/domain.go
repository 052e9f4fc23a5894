// Package orders exposes completed customer orders as the input to
// purchase-order generation. Orders are written by the sales channel and are
// read-only here.
package orders

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the customer order lifecycle status.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// SalesOrder is a customer order header with nested job sections.
type SalesOrder struct {
	ID           int64
	Reference    string
	CustomerName string
	Status       Status
	DeliveryAddr string
	DeliveryDate time.Time
	Sections     []JobSection
	CreatedAt    time.Time
}

// JobSection groups the line items of one job within an order.
type JobSection struct {
	ID    int64
	Name  string
	Lines []Line
}

// Line is a single product+quantity+price entry within a job section.
// It is never mutated by downstream processing.
type Line struct {
	ID                 int64
	ProductID          int64
	ProductCode        string
	ProductName        string
	ProductDescription string
	Category           string
	Qty                decimal.Decimal
	SellUnitPrice      decimal.Decimal
}

// Flatten returns all line items across job sections in document order.
func (o SalesOrder) Flatten() []Line {
	var lines []Line
	for _, section := range o.Sections {
		lines = append(lines, section.Lines...)
	}
	return lines
}

var (
	// ErrNotFound indicates the order does not exist.
	ErrNotFound = errors.New("orders: not found")
	// ErrNotCompleted indicates the order is not in a state that allows
	// purchase-order generation.
	ErrNotCompleted = errors.New("orders: order not completed")
)
