package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed reads of sales orders.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByReference loads an order header with all job sections and lines.
func (r *Repository) GetByReference(ctx context.Context, reference string) (SalesOrder, error) {
	var order SalesOrder
	err := r.pool.QueryRow(ctx, `SELECT id, reference, customer_name, status, COALESCE(delivery_addr,''), COALESCE(delivery_date, CURRENT_DATE), created_at
FROM sales_orders WHERE reference=$1`, reference).
		Scan(&order.ID, &order.Reference, &order.CustomerName, &order.Status, &order.DeliveryAddr, &order.DeliveryDate, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SalesOrder{}, ErrNotFound
		}
		return SalesOrder{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT s.id, s.name,
l.id, l.product_id, p.code, p.name, COALESCE(p.description,''), p.category, l.qty, l.sell_unit_price
FROM order_sections s
JOIN order_lines l ON l.section_id = s.id
JOIN products p ON p.id = l.product_id
WHERE s.order_id=$1 ORDER BY s.id, l.id`, order.ID)
	if err != nil {
		return SalesOrder{}, err
	}
	defer rows.Close()

	sectionIdx := make(map[int64]int)
	for rows.Next() {
		var sectionID int64
		var sectionName string
		var line Line
		if err := rows.Scan(&sectionID, &sectionName, &line.ID, &line.ProductID, &line.ProductCode, &line.ProductName, &line.ProductDescription, &line.Category, &line.Qty, &line.SellUnitPrice); err != nil {
			return SalesOrder{}, err
		}
		idx, ok := sectionIdx[sectionID]
		if !ok {
			order.Sections = append(order.Sections, JobSection{ID: sectionID, Name: sectionName})
			idx = len(order.Sections) - 1
			sectionIdx[sectionID] = idx
		}
		order.Sections[idx].Lines = append(order.Sections[idx].Lines, line)
	}
	if err := rows.Err(); err != nil {
		return SalesOrder{}, err
	}
	return order, nil
}
