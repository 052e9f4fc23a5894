package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

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

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepo{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const poColumns = `po.id, po.number, po.subtotal, po.tax, po.total, po.approval_required, po.status,
po.origin_order_ref, po.generated_at, po.auto_generated, COALESCE(po.delivery_addr,''), COALESCE(po.delivery_date, CURRENT_DATE),
COALESCE(po.approved_by,0), po.approved_at,
s.id, s.code, s.name, COALESCE(s.contact_person,''), COALESCE(s.email,''), COALESCE(s.phone,''), COALESCE(s.address,''), s.payment_terms_days, s.approved, s.rating`

func scanPO(row pgx.Row) (GeneratedPurchaseOrder, error) {
	var po GeneratedPurchaseOrder
	err := row.Scan(&po.ID, &po.Number, &po.Totals.Subtotal, &po.Totals.Tax, &po.Totals.Total, &po.ApprovalRequired, &po.Status,
		&po.OriginOrderRef, &po.GeneratedAt, &po.AutoGenerated, &po.DeliveryAddr, &po.DeliveryDate,
		&po.ApprovedBy, &po.ApprovedAt,
		&po.Supplier.ID, &po.Supplier.Code, &po.Supplier.Name, &po.Supplier.ContactPerson, &po.Supplier.Email, &po.Supplier.Phone,
		&po.Supplier.Address, &po.Supplier.PaymentTermsDays, &po.Supplier.Approved, &po.Supplier.Rating)
	return po, err
}

// GetPO returns a purchase order with supplier and lines.
func (r *Repository) GetPO(ctx context.Context, id int64) (GeneratedPurchaseOrder, error) {
	po, err := scanPO(r.pool.QueryRow(ctx, `SELECT `+poColumns+`
FROM purchase_orders po JOIN suppliers s ON s.id = po.supplier_id WHERE po.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return GeneratedPurchaseOrder{}, ErrNotFound
		}
		return GeneratedPurchaseOrder{}, err
	}
	lines, err := r.poLines(ctx, id)
	if err != nil {
		return GeneratedPurchaseOrder{}, err
	}
	po.Items = lines
	return po, nil
}

func (r *Repository) poLines(ctx context.Context, poID int64) ([]CostedLineItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT product_id, product_code, product_name, COALESCE(product_description,''), category, qty, sell_unit_price, unit_cost, total_cost
FROM purchase_order_lines WHERE po_id=$1 ORDER BY id`, poID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []CostedLineItem
	for rows.Next() {
		var line CostedLineItem
		if err := rows.Scan(&line.Product.ID, &line.Product.Code, &line.Product.Name, &line.Product.Description, &line.Product.Category,
			&line.Qty, &line.SellUnitPrice, &line.UnitCost, &line.TotalCost); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// ListPOs returns purchase orders matching filters plus the total count.
// Lines are not loaded for listings.
func (r *Repository) ListPOs(ctx context.Context, limit, offset int, filters ListFilters) ([]GeneratedPurchaseOrder, int, error) {
	if limit <= 0 {
		limit = 20
	}
	const where = ` WHERE ($1='' OR po.status=$1) AND ($2=0 OR po.supplier_id=$2) AND ($3='' OR po.origin_order_ref=$3)`
	rows, err := r.pool.Query(ctx, `SELECT `+poColumns+`
FROM purchase_orders po JOIN suppliers s ON s.id = po.supplier_id`+where+`
ORDER BY po.generated_at DESC, po.id DESC LIMIT $4 OFFSET $5`,
		filters.Status, filters.SupplierID, filters.OriginRef, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var pos []GeneratedPurchaseOrder
	for rows.Next() {
		po, err := scanPO(rows)
		if err != nil {
			return nil, 0, err
		}
		pos = append(pos, po)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	var total int
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders po`+where,
		filters.Status, filters.SupplierID, filters.OriginRef).Scan(&total)
	return pos, total, err
}

// NumberExists reports whether a purchase order number is already taken.
func (r *Repository) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM purchase_orders WHERE number=$1)`, number).Scan(&exists)
	return exists, err
}

func (tx *txRepo) InsertPO(ctx context.Context, po GeneratedPurchaseOrder) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO purchase_orders
(number, supplier_id, subtotal, tax, total, approval_required, status, origin_order_ref, generated_at, auto_generated, delivery_addr, delivery_date, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW()) RETURNING id`,
		po.Number, po.Supplier.ID, po.Totals.Subtotal, po.Totals.Tax, po.Totals.Total, po.ApprovalRequired, po.Status,
		po.OriginOrderRef, po.GeneratedAt, po.AutoGenerated, po.DeliveryAddr, nullDate(po.DeliveryDate)).Scan(&id)
	return id, err
}

func (tx *txRepo) InsertPOLine(ctx context.Context, poID int64, line CostedLineItem) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO purchase_order_lines
(po_id, product_id, product_code, product_name, product_description, category, qty, sell_unit_price, unit_cost, total_cost)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		poID, line.Product.ID, line.Product.Code, line.Product.Name, line.Product.Description, line.Product.Category,
		line.Qty, line.SellUnitPrice, line.UnitCost, line.TotalCost)
	return err
}

func (tx *txRepo) UpdatePOStatus(ctx context.Context, id int64, status POStatus) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE purchase_orders SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: purchase order %d", ErrNotFound, id)
	}
	return nil
}

func (tx *txRepo) SetPOApproval(ctx context.Context, id int64, approvedBy int64, approvedAt time.Time) error {
	_, err := tx.tx.Exec(ctx, `UPDATE purchase_orders SET approved_by=$1, approved_at=$2 WHERE id=$3`, nullInt(approvedBy), approvedAt, id)
	return err
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
