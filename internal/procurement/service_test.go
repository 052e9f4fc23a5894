package procurement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-erp/vitrine/internal/catalog"
	"github.com/vitrine-erp/vitrine/internal/orders"
	"github.com/vitrine-erp/vitrine/internal/shared"
)

type memoryPORepo struct {
	pos      map[int64]GeneratedPurchaseOrder
	nextID   int64
	taken    map[string]bool
	allTaken bool
	txErr    error
}

func newMemoryPORepo() *memoryPORepo {
	return &memoryPORepo{pos: make(map[int64]GeneratedPurchaseOrder), taken: make(map[string]bool)}
}

func (m *memoryPORepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if m.txErr != nil {
		return m.txErr
	}
	return fn(ctx, m)
}

func (m *memoryPORepo) GetPO(_ context.Context, id int64) (GeneratedPurchaseOrder, error) {
	po, ok := m.pos[id]
	if !ok {
		return GeneratedPurchaseOrder{}, ErrNotFound
	}
	return po, nil
}

func (m *memoryPORepo) ListPOs(_ context.Context, _, _ int, filters ListFilters) ([]GeneratedPurchaseOrder, int, error) {
	var out []GeneratedPurchaseOrder
	for _, po := range m.pos {
		if filters.Status != "" && string(po.Status) != filters.Status {
			continue
		}
		out = append(out, po)
	}
	return out, len(out), nil
}

func (m *memoryPORepo) NumberExists(_ context.Context, number string) (bool, error) {
	if m.allTaken {
		return true, nil
	}
	return m.taken[number], nil
}

func (m *memoryPORepo) InsertPO(_ context.Context, po GeneratedPurchaseOrder) (int64, error) {
	m.nextID++
	po.ID = m.nextID
	m.pos[po.ID] = po
	m.taken[po.Number] = true
	return po.ID, nil
}

func (m *memoryPORepo) InsertPOLine(_ context.Context, _ int64, _ CostedLineItem) error {
	return nil
}

func (m *memoryPORepo) UpdatePOStatus(_ context.Context, id int64, status POStatus) error {
	po, ok := m.pos[id]
	if !ok {
		return ErrNotFound
	}
	po.Status = status
	m.pos[id] = po
	return nil
}

func (m *memoryPORepo) SetPOApproval(_ context.Context, id int64, approvedBy int64, approvedAt time.Time) error {
	po, ok := m.pos[id]
	if !ok {
		return ErrNotFound
	}
	po.ApprovedBy = approvedBy
	po.ApprovedAt = &approvedAt
	m.pos[id] = po
	return nil
}

type fakeOrders struct {
	orders map[string]orders.SalesOrder
}

func (f *fakeOrders) GetByReference(_ context.Context, ref string) (orders.SalesOrder, error) {
	order, ok := f.orders[ref]
	if !ok {
		return orders.SalesOrder{}, orders.ErrNotFound
	}
	return order, nil
}

type fakeRules struct{}

func (fakeRules) LoadRuleSet(context.Context) (catalog.RuleSet, error) {
	return testRuleSet(), nil
}

type fakeApprovals struct {
	submits []string
	records []shared.ApprovalLog
}

func (f *fakeApprovals) EnsureSubmit(_ context.Context, module string, ref uuid.UUID, _ int64, _ string) error {
	f.submits = append(f.submits, fmt.Sprintf("%s:%s", module, ref))
	return nil
}

func (f *fakeApprovals) Record(_ context.Context, log shared.ApprovalLog) error {
	f.records = append(f.records, log)
	return nil
}

type fakeAudit struct {
	logs []shared.AuditLog
}

func (f *fakeAudit) Record(_ context.Context, log shared.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

type fakeIdem struct {
	seen map[string]bool
}

func (f *fakeIdem) CheckAndInsert(_ context.Context, key, _ string) error {
	if f.seen[key] {
		return shared.ErrIdempotencyConflict
	}
	f.seen[key] = true
	return nil
}

func (f *fakeIdem) Delete(_ context.Context, key string) error {
	delete(f.seen, key)
	return nil
}

type fakeHooks struct {
	generated []POGeneratedEvent
	approved  []POApprovedEvent
}

func (f *fakeHooks) HandlePOGenerated(_ context.Context, evt POGeneratedEvent) error {
	f.generated = append(f.generated, evt)
	return nil
}

func (f *fakeHooks) HandlePOApproved(_ context.Context, evt POApprovedEvent) error {
	f.approved = append(f.approved, evt)
	return nil
}

type fakeMetrics struct {
	counts map[string]int
}

func (f *fakeMetrics) CountGeneratedPO(status string) {
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[status]++
}

type serviceFixture struct {
	service   *Service
	repo      *memoryPORepo
	orders    *fakeOrders
	approvals *fakeApprovals
	audit     *fakeAudit
	idem      *fakeIdem
	hooks     *fakeHooks
	metrics   *fakeMetrics
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		repo:      newMemoryPORepo(),
		orders:    &fakeOrders{orders: make(map[string]orders.SalesOrder)},
		approvals: &fakeApprovals{},
		audit:     &fakeAudit{},
		idem:      &fakeIdem{seen: make(map[string]bool)},
		hooks:     &fakeHooks{},
		metrics:   &fakeMetrics{},
	}
	f.service = NewService(DefaultPolicy(), f.repo, f.orders, fakeRules{}, f.approvals, f.audit, f.idem, f.hooks, f.metrics, slog.Default())
	return f
}

func completedOrder(ref string, lines ...orders.Line) orders.SalesOrder {
	return orders.SalesOrder{
		ID:           1,
		Reference:    ref,
		CustomerName: "Harbourview Builders",
		Status:       orders.StatusCompleted,
		DeliveryAddr: "12 Harbour Rd",
		Sections:     []orders.JobSection{{ID: 1, Name: "Facade", Lines: lines}},
	}
}

func orderLine(productID int64, code, category string, qty, sellPrice int64) orders.Line {
	return orders.Line{
		ProductID:     productID,
		ProductCode:   code,
		ProductName:   code,
		Category:      category,
		Qty:           decimal.NewFromInt(qty),
		SellUnitPrice: decimal.NewFromInt(sellPrice),
	}
}

func TestGenerateForOrder(t *testing.T) {
	f := newServiceFixture(t)
	f.orders.orders["SO-100"] = completedOrder("SO-100",
		orderLine(10, "GLS-PANEL-6MM", "Glass", 5, 100),
		orderLine(20, "STL-BOLT-M8", "Hardware", 10, 5),
	)

	pos, err := f.service.GenerateForOrder(context.Background(), "SO-100", 7)
	require.NoError(t, err)
	require.Len(t, pos, 2)
	require.NotZero(t, pos[0].ID)
	require.NotZero(t, pos[1].ID)
	require.Len(t, f.repo.pos, 2)

	require.Len(t, f.audit.logs, 1)
	require.Equal(t, "AUTOPO_GENERATE", f.audit.logs[0].Action)
	require.Len(t, f.hooks.generated, 1)
	require.Len(t, f.hooks.generated[0].PONumbers, 2)
	require.Equal(t, 0, f.hooks.generated[0].PendingCount)
	require.Equal(t, 2, f.metrics.counts[string(POStatusApproved)])
	require.Empty(t, f.approvals.submits)
}

func TestGenerateForOrderPendingApproval(t *testing.T) {
	f := newServiceFixture(t)
	// 100 * 100 * 0.7 * 1.1 = 7700, above the 2000 threshold.
	f.orders.orders["SO-101"] = completedOrder("SO-101", orderLine(10, "GLS-PANEL-6MM", "Glass", 100, 100))

	pos, err := f.service.GenerateForOrder(context.Background(), "SO-101", 7)
	require.NoError(t, err)
	require.Len(t, pos, 1)
	require.Equal(t, POStatusPendingApproval, pos[0].Status)
	require.True(t, pos[0].ApprovalRequired)
	require.Len(t, f.approvals.submits, 1)
	require.Equal(t, 1, f.hooks.generated[0].PendingCount)
	require.Equal(t, 1, f.metrics.counts[string(POStatusPendingApproval)])
}

func TestGenerateForOrderNotCompleted(t *testing.T) {
	f := newServiceFixture(t)
	order := completedOrder("SO-102", orderLine(10, "GLS-PANEL-6MM", "Glass", 1, 100))
	order.Status = orders.StatusDraft
	f.orders.orders["SO-102"] = order

	_, err := f.service.GenerateForOrder(context.Background(), "SO-102", 7)
	require.ErrorIs(t, err, ErrInvalidState)
	require.Empty(t, f.repo.pos)
}

func TestGenerateForOrderUnknownRef(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.GenerateForOrder(context.Background(), "SO-MISSING", 7)
	require.ErrorIs(t, err, orders.ErrNotFound)
}

func TestGenerateForOrderIdempotent(t *testing.T) {
	f := newServiceFixture(t)
	f.orders.orders["SO-103"] = completedOrder("SO-103", orderLine(10, "GLS-PANEL-6MM", "Glass", 1, 100))

	_, err := f.service.GenerateForOrder(context.Background(), "SO-103", 7)
	require.NoError(t, err)

	_, err = f.service.GenerateForOrder(context.Background(), "SO-103", 7)
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
	require.Len(t, f.repo.pos, 1)
}

func TestGenerateForOrderRollsBackIdempotencyKey(t *testing.T) {
	f := newServiceFixture(t)
	f.orders.orders["SO-104"] = completedOrder("SO-104", orderLine(10, "GLS-PANEL-6MM", "Glass", 1, 100))
	f.repo.txErr = errors.New("connection reset")

	_, err := f.service.GenerateForOrder(context.Background(), "SO-104", 7)
	require.Error(t, err)
	require.Empty(t, f.idem.seen, "failed run must release the key for retry")

	// Retry succeeds once persistence recovers.
	f.repo.txErr = nil
	pos, err := f.service.GenerateForOrder(context.Background(), "SO-104", 7)
	require.NoError(t, err)
	require.Len(t, pos, 1)
}

func TestGenerateForOrderEmptyOrder(t *testing.T) {
	f := newServiceFixture(t)
	f.orders.orders["SO-105"] = completedOrder("SO-105")

	pos, err := f.service.GenerateForOrder(context.Background(), "SO-105", 7)
	require.NoError(t, err)
	require.Empty(t, pos)
	require.Empty(t, f.repo.pos)
	// An empty batch must not consume the idempotency key.
	require.Empty(t, f.idem.seen)
}

func TestGenerateForOrderNumberExhausted(t *testing.T) {
	f := newServiceFixture(t)
	f.orders.orders["SO-106"] = completedOrder("SO-106", orderLine(10, "GLS-PANEL-6MM", "Glass", 1, 100))
	f.repo.allTaken = true

	_, err := f.service.GenerateForOrder(context.Background(), "SO-106", 7)
	require.ErrorIs(t, err, ErrNumberExhausted)
}

func TestApprovePurchaseOrder(t *testing.T) {
	f := newServiceFixture(t)
	f.orders.orders["SO-107"] = completedOrder("SO-107", orderLine(10, "GLS-PANEL-6MM", "Glass", 100, 100))

	pos, err := f.service.GenerateForOrder(context.Background(), "SO-107", 7)
	require.NoError(t, err)
	require.Equal(t, POStatusPendingApproval, pos[0].Status)

	require.NoError(t, f.service.ApprovePurchaseOrder(context.Background(), pos[0].ID, 42))

	po, err := f.service.GetPurchaseOrder(context.Background(), pos[0].ID)
	require.NoError(t, err)
	require.Equal(t, POStatusApproved, po.Status)
	require.Equal(t, int64(42), po.ApprovedBy)
	require.NotNil(t, po.ApprovedAt)
	require.Len(t, f.approvals.records, 1)
	require.Equal(t, shared.ApprovalApprove, f.approvals.records[0].Action)
	require.Len(t, f.hooks.approved, 1)

	// Approving twice violates the workflow.
	require.ErrorIs(t, f.service.ApprovePurchaseOrder(context.Background(), pos[0].ID, 42), ErrInvalidState)
}

func TestApprovePurchaseOrderNotFound(t *testing.T) {
	f := newServiceFixture(t)
	require.ErrorIs(t, f.service.ApprovePurchaseOrder(context.Background(), 999, 42), ErrNotFound)
}
