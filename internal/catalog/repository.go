package catalog

import "context"

// ListFilters narrows list queries.
type ListFilters struct {
	Search   string
	Category string
	Limit    int
	Offset   int
}

// RepositoryPort describes the persistence operations used by Service.
type RepositoryPort interface {
	GetProduct(ctx context.Context, id int64) (Product, error)
	GetProductByCode(ctx context.Context, code string) (Product, error)
	ListProducts(ctx context.Context, filters ListFilters) ([]Product, int, error)
	CreateProduct(ctx context.Context, product Product) (Product, error)
	UpdateProduct(ctx context.Context, id int64, product Product) error

	GetSupplier(ctx context.Context, id int64) (Supplier, error)
	ListSuppliers(ctx context.Context, filters ListFilters) ([]Supplier, int, error)
	CreateSupplier(ctx context.Context, supplier Supplier) (Supplier, error)
	UpdateSupplier(ctx context.Context, id int64, supplier Supplier) error

	ListRoutingRules(ctx context.Context) ([]RoutingRule, error)
	CreateRoutingRule(ctx context.Context, rule RoutingRule) (RoutingRule, error)
	DeleteRoutingRule(ctx context.Context, id int64) error
	GetDefaultSupplier(ctx context.Context) (Supplier, error)
	SetDefaultSupplier(ctx context.Context, supplierID int64) error
}
