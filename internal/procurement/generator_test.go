package procurement

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-erp/vitrine/internal/catalog"
)

var (
	glassSupplier    = catalog.Supplier{ID: 1, Code: "SUP-GLASS", Name: "Crystal Clear Glassworks"}
	hardwareSupplier = catalog.Supplier{ID: 2, Code: "SUP-HW", Name: "Ironside Hardware Co"}
	defaultSupplier  = catalog.Supplier{ID: 3, Code: "SUP-GEN", Name: "General Trading House"}
)

func testRuleSet() catalog.RuleSet {
	return catalog.RuleSet{
		Rules: []catalog.RoutingRule{
			{ID: 1, Priority: 1, Categories: []string{"Glass"}, CodeSubstrings: []string{"GLS"}, SupplierID: glassSupplier.ID},
			{ID: 2, Priority: 2, Categories: []string{"Hardware"}, CodeSubstrings: []string{"STL", "ALU"}, SupplierID: hardwareSupplier.ID},
		},
		Suppliers: map[int64]catalog.Supplier{
			glassSupplier.ID:    glassSupplier,
			hardwareSupplier.ID: hardwareSupplier,
		},
		DefaultSupplier: defaultSupplier,
	}
}

func testGenerator() *Generator {
	return NewGenerator(DefaultPolicy(), testRuleSet())
}

func glassPanel(qty, sellPrice int64) OrderLineItem {
	return OrderLineItem{
		Product:       ProductRef{ID: 10, Code: "GLS-PANEL-6MM", Name: "Tempered Glass Panel 6mm", Category: "Glass"},
		Qty:           decimal.NewFromInt(qty),
		SellUnitPrice: decimal.NewFromInt(sellPrice),
	}
}

func steelBolt(qty, sellPrice int64) OrderLineItem {
	return OrderLineItem{
		Product:       ProductRef{ID: 20, Code: "STL-BOLT-M8", Name: "Steel Bolt M8", Category: "Hardware"},
		Qty:           decimal.NewFromInt(qty),
		SellUnitPrice: decimal.NewFromInt(sellPrice),
	}
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)), "want %s got %s", want, got)
}

func TestDeriveCost(t *testing.T) {
	g := testGenerator()

	cost, err := g.DeriveCost(decimal.NewFromInt(100))
	require.NoError(t, err)
	requireDecimal(t, "70", cost)

	cost, err = g.DeriveCost(decimal.Zero)
	require.NoError(t, err)
	requireDecimal(t, "0", cost)

	_, err = g.DeriveCost(decimal.NewFromInt(-5))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestResolveSupplier(t *testing.T) {
	g := testGenerator()

	require.Equal(t, glassSupplier.ID, g.ResolveSupplier(ProductRef{Code: "X-1", Category: "glass"}).ID)
	require.Equal(t, glassSupplier.ID, g.ResolveSupplier(ProductRef{Code: "gls-door", Category: "Doors"}).ID)
	require.Equal(t, hardwareSupplier.ID, g.ResolveSupplier(ProductRef{Code: "ALU-FRAME", Category: "Frames"}).ID)
	require.Equal(t, defaultSupplier.ID, g.ResolveSupplier(ProductRef{Code: "MISC-01", Category: "Misc"}).ID)
}

func TestGroupBySupplier(t *testing.T) {
	g := testGenerator()
	items := []OrderLineItem{
		steelBolt(10, 5),
		glassPanel(5, 100),
		steelBolt(2, 8),
	}

	groups, err := g.GroupBySupplier(items)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// First-appearance ordering: hardware seen before glass.
	require.Equal(t, hardwareSupplier.ID, groups[0].Supplier.ID)
	require.Equal(t, glassSupplier.ID, groups[1].Supplier.ID)
	require.Len(t, groups[0].Items, 2)
	require.Len(t, groups[1].Items, 1)

	// Every input line lands in exactly one group.
	total := 0
	for _, group := range groups {
		total += len(group.Items)
		sum := decimal.Zero
		for _, item := range group.Items {
			sum = sum.Add(item.TotalCost)
		}
		require.True(t, group.TotalCost.Equal(sum))
	}
	require.Equal(t, len(items), total)
}

func TestGroupBySupplierSameSupplier(t *testing.T) {
	g := testGenerator()
	groups, err := g.GroupBySupplier([]OrderLineItem{glassPanel(1, 50), glassPanel(3, 80)})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Items, 2)
}

func TestGroupBySupplierNegativeQty(t *testing.T) {
	g := testGenerator()
	bad := glassPanel(1, 50)
	bad.Qty = decimal.NewFromInt(-1)
	_, err := g.GroupBySupplier([]OrderLineItem{bad})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestComputeTotals(t *testing.T) {
	g := testGenerator()

	totals := g.ComputeTotals([]CostedLineItem{{TotalCost: decimal.NewFromInt(100)}})
	requireDecimal(t, "100", totals.Subtotal)
	requireDecimal(t, "10", totals.Tax)
	requireDecimal(t, "110", totals.Total)

	empty := g.ComputeTotals(nil)
	requireDecimal(t, "0", empty.Subtotal)
	requireDecimal(t, "0", empty.Tax)
	requireDecimal(t, "0", empty.Total)
}

func TestSynthesizeApprovalThreshold(t *testing.T) {
	policy := DefaultPolicy()
	policy.TaxRate = decimal.Zero
	g := NewGenerator(policy, testRuleSet())
	now := time.Now()

	atThreshold := SupplierGroup{
		Supplier: glassSupplier,
		Items:    []CostedLineItem{{TotalCost: decimal.RequireFromString("2000.00")}},
	}
	// Strict comparison: a total of exactly 2000.00 stays auto-approved.
	po := g.Synthesize(atThreshold, Origin{OrderRef: "SO-1"}, "PO-00000001", now)
	require.False(t, po.ApprovalRequired)
	require.Equal(t, POStatusApproved, po.Status)

	above := SupplierGroup{
		Supplier: glassSupplier,
		Items:    []CostedLineItem{{TotalCost: decimal.RequireFromString("2000.01")}},
	}
	po = g.Synthesize(above, Origin{OrderRef: "SO-1"}, "PO-00000002", now)
	require.True(t, po.ApprovalRequired)
	require.Equal(t, POStatusPendingApproval, po.Status)
	require.True(t, po.AutoGenerated)
	require.Equal(t, "SO-1", po.OriginOrderRef)
}

func TestFromOrder(t *testing.T) {
	g := testGenerator()
	now := time.Now()
	origin := Origin{OrderRef: "SO-2024-001", DeliveryAddr: "12 Harbour Rd"}

	seq := 0
	next := func() (string, error) {
		seq++
		return NewNumber("PO"), nil
	}

	pos, err := g.FromOrder([]OrderLineItem{glassPanel(5, 100), steelBolt(10, 5)}, origin, now, next)
	require.NoError(t, err)
	require.Len(t, pos, 2)
	require.Equal(t, 2, seq)

	glass := pos[0]
	require.Equal(t, glassSupplier.ID, glass.Supplier.ID)
	requireDecimal(t, "350", glass.Totals.Subtotal)
	requireDecimal(t, "35", glass.Totals.Tax)
	requireDecimal(t, "385", glass.Totals.Total)
	require.False(t, glass.ApprovalRequired)

	hardware := pos[1]
	require.Equal(t, hardwareSupplier.ID, hardware.Supplier.ID)
	requireDecimal(t, "35", hardware.Totals.Subtotal)
	requireDecimal(t, "3.5", hardware.Totals.Tax)
	requireDecimal(t, "38.5", hardware.Totals.Total)

	for _, po := range pos {
		require.Equal(t, "SO-2024-001", po.OriginOrderRef)
		require.Equal(t, "12 Harbour Rd", po.DeliveryAddr)
		require.True(t, po.AutoGenerated)
		require.Regexp(t, `^PO-\d{8}$`, po.Number)
	}
}

func TestFromOrderEmpty(t *testing.T) {
	g := testGenerator()
	pos, err := g.FromOrder(nil, Origin{OrderRef: "SO-EMPTY"}, time.Now(), func() (string, error) {
		return "", errors.New("should not be called")
	})
	require.NoError(t, err)
	require.Empty(t, pos)
}

func TestBuildDocument(t *testing.T) {
	g := testGenerator()
	groups, err := g.GroupBySupplier([]OrderLineItem{glassPanel(5, 100)})
	require.NoError(t, err)
	po := g.Synthesize(groups[0], Origin{OrderRef: "SO-7"}, "PO-00000007", time.Now())

	doc := BuildDocument(po)
	require.Equal(t, "PO-00000007", doc.Number)
	require.Equal(t, "SO-7", doc.OriginOrder)
	require.Len(t, doc.Lines, 1)
	require.Equal(t, "70.00", doc.Lines[0].UnitCost)
	require.Equal(t, "350.00", doc.Lines[0].TotalCost)
	require.Equal(t, "350.00", doc.Subtotal)
	require.Equal(t, "35.00", doc.Tax)
	require.Equal(t, "385.00", doc.Total)
}
