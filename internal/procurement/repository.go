package procurement

import (
	"context"
	"time"
)

// ListFilters narrows purchase order listings.
type ListFilters struct {
	Status     string
	SupplierID int64
	OriginRef  string
}

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetPO(ctx context.Context, id int64) (GeneratedPurchaseOrder, error)
	ListPOs(ctx context.Context, limit, offset int, filters ListFilters) ([]GeneratedPurchaseOrder, int, error)
	NumberExists(ctx context.Context, number string) (bool, error)
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	InsertPO(ctx context.Context, po GeneratedPurchaseOrder) (int64, error)
	InsertPOLine(ctx context.Context, poID int64, line CostedLineItem) error
	UpdatePOStatus(ctx context.Context, id int64, status POStatus) error
	SetPOApproval(ctx context.Context, id int64, approvedBy int64, approvedAt time.Time) error
}
