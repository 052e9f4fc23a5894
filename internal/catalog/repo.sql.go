package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, code, name, COALESCE(description,''), category, unit, sell_unit_price, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.Category, &p.Unit, &p.SellUnitPrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetProduct fetches a product by ID.
func (r *Repository) GetProduct(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// GetProductByCode fetches a product by its unique code.
func (r *Repository) GetProductByCode(ctx context.Context, code string) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE code=$1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// ListProducts returns products matching filters plus the total count.
func (r *Repository) ListProducts(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	search := "%" + filters.Search + "%"
	category := filters.Category
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products
WHERE ($1='%%' OR name ILIKE $1 OR code ILIKE $1) AND ($2='' OR category=$2)
ORDER BY code LIMIT $3 OFFSET $4`, search, category, limit, filters.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	var total int
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products
WHERE ($1='%%' OR name ILIKE $1 OR code ILIKE $1) AND ($2='' OR category=$2)`, search, category).Scan(&total)
	return products, total, err
}

// CreateProduct inserts a product.
func (r *Repository) CreateProduct(ctx context.Context, product Product) (Product, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO products (code, name, description, category, unit, sell_unit_price, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		product.Code, product.Name, product.Description, product.Category, product.Unit, product.SellUnitPrice, product.IsActive).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	return product, err
}

// UpdateProduct updates mutable product fields.
func (r *Repository) UpdateProduct(ctx context.Context, id int64, product Product) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET name=$1, description=$2, category=$3, unit=$4, sell_unit_price=$5, is_active=$6, updated_at=NOW() WHERE id=$7`,
		product.Name, product.Description, product.Category, product.Unit, product.SellUnitPrice, product.IsActive, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const supplierColumns = `id, code, name, COALESCE(contact_person,''), COALESCE(email,''), COALESCE(phone,''), COALESCE(address,''), payment_terms_days, approved, rating, created_at, updated_at`

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.ContactPerson, &s.Email, &s.Phone, &s.Address, &s.PaymentTermsDays, &s.Approved, &s.Rating, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetSupplier fetches a supplier by ID.
func (r *Repository) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	s, err := scanSupplier(r.pool.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, ErrNotFound
	}
	return s, err
}

// ListSuppliers returns suppliers matching filters plus the total count.
func (r *Repository) ListSuppliers(ctx context.Context, filters ListFilters) ([]Supplier, int, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	search := "%" + filters.Search + "%"
	rows, err := r.pool.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers
WHERE ($1='%%' OR name ILIKE $1 OR code ILIKE $1)
ORDER BY code LIMIT $2 OFFSET $3`, search, limit, filters.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var suppliers []Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, err
		}
		suppliers = append(suppliers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	var total int
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers WHERE ($1='%%' OR name ILIKE $1 OR code ILIKE $1)`, search).Scan(&total)
	return suppliers, total, err
}

// CreateSupplier inserts a supplier.
func (r *Repository) CreateSupplier(ctx context.Context, supplier Supplier) (Supplier, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO suppliers (code, name, contact_person, email, phone, address, payment_terms_days, approved, rating, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		supplier.Code, supplier.Name, supplier.ContactPerson, supplier.Email, supplier.Phone, supplier.Address, supplier.PaymentTermsDays, supplier.Approved, supplier.Rating).
		Scan(&supplier.ID, &supplier.CreatedAt, &supplier.UpdatedAt)
	return supplier, err
}

// UpdateSupplier updates mutable supplier fields.
func (r *Repository) UpdateSupplier(ctx context.Context, id int64, supplier Supplier) error {
	tag, err := r.pool.Exec(ctx, `UPDATE suppliers SET name=$1, contact_person=$2, email=$3, phone=$4, address=$5, payment_terms_days=$6, approved=$7, rating=$8, updated_at=NOW() WHERE id=$9`,
		supplier.Name, supplier.ContactPerson, supplier.Email, supplier.Phone, supplier.Address, supplier.PaymentTermsDays, supplier.Approved, supplier.Rating, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRoutingRules returns routing rules ordered by priority.
func (r *Repository) ListRoutingRules(ctx context.Context) ([]RoutingRule, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, priority, categories, code_substrings, supplier_id, created_at, updated_at
FROM routing_rules ORDER BY priority, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var rules []RoutingRule
	for rows.Next() {
		var rule RoutingRule
		if err := rows.Scan(&rule.ID, &rule.Priority, &rule.Categories, &rule.CodeSubstrings, &rule.SupplierID, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// CreateRoutingRule inserts a routing rule.
func (r *Repository) CreateRoutingRule(ctx context.Context, rule RoutingRule) (RoutingRule, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO routing_rules (priority, categories, code_substrings, supplier_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		rule.Priority, rule.Categories, rule.CodeSubstrings, rule.SupplierID).
		Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	return rule, err
}

// DeleteRoutingRule removes a routing rule.
func (r *Repository) DeleteRoutingRule(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM routing_rules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDefaultSupplier returns the fallback supplier used when no rule matches.
func (r *Repository) GetDefaultSupplier(ctx context.Context) (Supplier, error) {
	s, err := scanSupplier(r.pool.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE is_default LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, ErrNoDefaultSupplier
	}
	return s, err
}

// SetDefaultSupplier marks a single supplier as the routing fallback.
func (r *Repository) SetDefaultSupplier(ctx context.Context, supplierID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `UPDATE suppliers SET is_default=false WHERE is_default`); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE suppliers SET is_default=true WHERE id=$1`, supplierID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: supplier %d", ErrNotFound, supplierID)
	}
	return tx.Commit(ctx)
}
