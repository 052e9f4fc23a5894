package catalog

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryCatalogRepo struct {
	products      map[int64]Product
	suppliers     map[int64]Supplier
	rules         []RoutingRule
	defaultID     int64
	nextID        int64
	ruleListCalls int
}

func newMemoryCatalogRepo() *memoryCatalogRepo {
	return &memoryCatalogRepo{
		products:  make(map[int64]Product),
		suppliers: make(map[int64]Supplier),
	}
}

func (r *memoryCatalogRepo) nextIDVal() int64 {
	r.nextID++
	return r.nextID
}

func (r *memoryCatalogRepo) GetProduct(ctx context.Context, id int64) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryCatalogRepo) GetProductByCode(ctx context.Context, code string) (Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *memoryCatalogRepo) ListProducts(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *memoryCatalogRepo) CreateProduct(ctx context.Context, product Product) (Product, error) {
	product.ID = r.nextIDVal()
	r.products[product.ID] = product
	return product, nil
}

func (r *memoryCatalogRepo) UpdateProduct(ctx context.Context, id int64, product Product) error {
	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	product.ID = id
	r.products[id] = product
	return nil
}

func (r *memoryCatalogRepo) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return Supplier{}, ErrNotFound
	}
	return s, nil
}

func (r *memoryCatalogRepo) ListSuppliers(ctx context.Context, filters ListFilters) ([]Supplier, int, error) {
	var out []Supplier
	for _, s := range r.suppliers {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (r *memoryCatalogRepo) CreateSupplier(ctx context.Context, supplier Supplier) (Supplier, error) {
	supplier.ID = r.nextIDVal()
	r.suppliers[supplier.ID] = supplier
	return supplier, nil
}

func (r *memoryCatalogRepo) UpdateSupplier(ctx context.Context, id int64, supplier Supplier) error {
	if _, ok := r.suppliers[id]; !ok {
		return ErrNotFound
	}
	supplier.ID = id
	r.suppliers[id] = supplier
	return nil
}

func (r *memoryCatalogRepo) ListRoutingRules(ctx context.Context) ([]RoutingRule, error) {
	r.ruleListCalls++
	return append([]RoutingRule(nil), r.rules...), nil
}

func (r *memoryCatalogRepo) CreateRoutingRule(ctx context.Context, rule RoutingRule) (RoutingRule, error) {
	rule.ID = r.nextIDVal()
	r.rules = append(r.rules, rule)
	return rule, nil
}

func (r *memoryCatalogRepo) DeleteRoutingRule(ctx context.Context, id int64) error {
	for i, rule := range r.rules {
		if rule.ID == id {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryCatalogRepo) GetDefaultSupplier(ctx context.Context) (Supplier, error) {
	s, ok := r.suppliers[r.defaultID]
	if !ok {
		return Supplier{}, ErrNoDefaultSupplier
	}
	return s, nil
}

func (r *memoryCatalogRepo) SetDefaultSupplier(ctx context.Context, supplierID int64) error {
	if _, ok := r.suppliers[supplierID]; !ok {
		return ErrNotFound
	}
	r.defaultID = supplierID
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryCatalogRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := newMemoryCatalogRepo()
	return NewService(repo, NewCache(client, time.Minute), nil), repo
}

func seedRouting(t *testing.T, svc *Service, repo *memoryCatalogRepo) (glass, hardware, general Supplier) {
	t.Helper()
	ctx := context.Background()
	var err error
	glass, err = svc.CreateSupplier(ctx, Supplier{Code: "SUP-GLASS", Name: "Premium Glass Co"})
	require.NoError(t, err)
	hardware, err = svc.CreateSupplier(ctx, Supplier{Code: "SUP-HW", Name: "Steel Supply House"})
	require.NoError(t, err)
	general, err = svc.CreateSupplier(ctx, Supplier{Code: "SUP-GEN", Name: "General Trading"})
	require.NoError(t, err)
	require.NoError(t, svc.SetDefaultSupplier(ctx, general.ID))

	_, err = svc.CreateRoutingRule(ctx, RoutingRule{Priority: 1, Categories: []string{"Glass", "Glass Panels"}, CodeSubstrings: []string{"GLS"}, SupplierID: glass.ID})
	require.NoError(t, err)
	_, err = svc.CreateRoutingRule(ctx, RoutingRule{Priority: 2, Categories: []string{"Hardware"}, CodeSubstrings: []string{"STL", "ALU"}, SupplierID: hardware.ID})
	require.NoError(t, err)
	return glass, hardware, general
}

func TestLoadRuleSetCachesResult(t *testing.T) {
	svc, repo := newTestService(t)
	seedRouting(t, svc, repo)
	ctx := context.Background()

	set, err := svc.LoadRuleSet(ctx)
	require.NoError(t, err)
	require.Len(t, set.Rules, 2)
	require.Len(t, set.Suppliers, 3)
	require.Equal(t, "SUP-GEN", set.DefaultSupplier.Code)
	calls := repo.ruleListCalls

	again, err := svc.LoadRuleSet(ctx)
	require.NoError(t, err)
	require.Equal(t, set.Rules, again.Rules)
	require.Equal(t, calls, repo.ruleListCalls, "second load should hit cache")
}

func TestRoutingMutationInvalidatesCache(t *testing.T) {
	svc, repo := newTestService(t)
	glass, _, _ := seedRouting(t, svc, repo)
	ctx := context.Background()

	_, err := svc.LoadRuleSet(ctx)
	require.NoError(t, err)

	_, err = svc.CreateRoutingRule(ctx, RoutingRule{Priority: 3, Categories: []string{"Mirrors"}, SupplierID: glass.ID})
	require.NoError(t, err)

	set, err := svc.LoadRuleSet(ctx)
	require.NoError(t, err)
	require.Len(t, set.Rules, 3)
}

func TestLoadRuleSetRequiresDefaultSupplier(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.LoadRuleSet(context.Background())
	require.ErrorIs(t, err, ErrNoDefaultSupplier)
}

func TestCreateRoutingRuleValidation(t *testing.T) {
	svc, repo := newTestService(t)
	glass, _, _ := seedRouting(t, svc, repo)

	_, err := svc.CreateRoutingRule(context.Background(), RoutingRule{Priority: 1, SupplierID: glass.ID})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateRoutingRule(context.Background(), RoutingRule{Priority: 1, Categories: []string{"Glass"}, SupplierID: 999})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, Product{Name: "No code"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateProduct(ctx, Product{Code: "GLS-001", Name: "Panel", SellUnitPrice: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, ErrValidation)

	created, err := svc.CreateProduct(ctx, Product{Code: "GLS-001", Name: "Panel", Category: "Glass", SellUnitPrice: decimal.NewFromInt(100)})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
}
