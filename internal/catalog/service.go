package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// Service orchestrates masterdata reads and writes.
type Service struct {
	repo      RepositoryPort
	cache     *Cache
	logger    *slog.Logger
	loadGroup singleflight.Group
}

// NewService constructs catalog service.
func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// GetProduct returns a product by ID.
func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: product id", ErrValidation)
	}
	return s.repo.GetProduct(ctx, id)
}

// GetProductByCode returns a product by code.
func (s *Service) GetProductByCode(ctx context.Context, code string) (Product, error) {
	if code == "" {
		return Product{}, fmt.Errorf("%w: product code", ErrValidation)
	}
	return s.repo.GetProductByCode(ctx, code)
}

// ListProducts lists products.
func (s *Service) ListProducts(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	return s.repo.ListProducts(ctx, filters)
}

// CreateProduct validates and persists a product.
func (s *Service) CreateProduct(ctx context.Context, product Product) (Product, error) {
	if err := validateProduct(product); err != nil {
		return Product{}, err
	}
	return s.repo.CreateProduct(ctx, product)
}

// UpdateProduct validates and updates a product.
func (s *Service) UpdateProduct(ctx context.Context, id int64, product Product) error {
	if id <= 0 {
		return fmt.Errorf("%w: product id", ErrValidation)
	}
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.repo.UpdateProduct(ctx, id, product)
}

// GetSupplier returns a supplier by ID.
func (s *Service) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, fmt.Errorf("%w: supplier id", ErrValidation)
	}
	return s.repo.GetSupplier(ctx, id)
}

// ListSuppliers lists suppliers.
func (s *Service) ListSuppliers(ctx context.Context, filters ListFilters) ([]Supplier, int, error) {
	return s.repo.ListSuppliers(ctx, filters)
}

// CreateSupplier validates and persists a supplier.
func (s *Service) CreateSupplier(ctx context.Context, supplier Supplier) (Supplier, error) {
	if err := validateSupplier(supplier); err != nil {
		return Supplier{}, err
	}
	return s.repo.CreateSupplier(ctx, supplier)
}

// UpdateSupplier validates and updates a supplier.
func (s *Service) UpdateSupplier(ctx context.Context, id int64, supplier Supplier) error {
	if id <= 0 {
		return fmt.Errorf("%w: supplier id", ErrValidation)
	}
	if err := validateSupplier(supplier); err != nil {
		return err
	}
	return s.repo.UpdateSupplier(ctx, id, supplier)
}

// CreateRoutingRule persists a rule and invalidates the cached rule set.
func (s *Service) CreateRoutingRule(ctx context.Context, rule RoutingRule) (RoutingRule, error) {
	if rule.SupplierID <= 0 {
		return RoutingRule{}, fmt.Errorf("%w: routing rule supplier", ErrValidation)
	}
	if len(rule.Categories) == 0 && len(rule.CodeSubstrings) == 0 {
		return RoutingRule{}, fmt.Errorf("%w: routing rule needs a category or code match", ErrValidation)
	}
	if _, err := s.repo.GetSupplier(ctx, rule.SupplierID); err != nil {
		return RoutingRule{}, err
	}
	created, err := s.repo.CreateRoutingRule(ctx, rule)
	if err != nil {
		return RoutingRule{}, err
	}
	s.invalidateRules(ctx)
	return created, nil
}

// DeleteRoutingRule removes a rule and invalidates the cached rule set.
func (s *Service) DeleteRoutingRule(ctx context.Context, id int64) error {
	if err := s.repo.DeleteRoutingRule(ctx, id); err != nil {
		return err
	}
	s.invalidateRules(ctx)
	return nil
}

// SetDefaultSupplier updates the routing fallback supplier.
func (s *Service) SetDefaultSupplier(ctx context.Context, supplierID int64) error {
	if supplierID <= 0 {
		return fmt.Errorf("%w: supplier id", ErrValidation)
	}
	if err := s.repo.SetDefaultSupplier(ctx, supplierID); err != nil {
		return err
	}
	s.invalidateRules(ctx)
	return nil
}

// LoadRuleSet returns the routing rule set, from cache when warm. Concurrent
// cold loads are collapsed through singleflight.
func (s *Service) LoadRuleSet(ctx context.Context) (RuleSet, error) {
	if set, err := s.cache.GetRuleSet(ctx); err == nil {
		return set, nil
	} else if !errors.Is(err, ErrCacheMiss) && s.logger != nil {
		s.logger.Warn("rule set cache read", slog.Any("error", err))
	}

	result, err, _ := s.loadGroup.Do(ruleSetCacheKey, func() (any, error) {
		set, err := s.buildRuleSet(ctx)
		if err != nil {
			return RuleSet{}, err
		}
		if err := s.cache.SetRuleSet(ctx, set); err != nil && s.logger != nil {
			s.logger.Warn("rule set cache write", slog.Any("error", err))
		}
		return set, nil
	})
	if err != nil {
		return RuleSet{}, err
	}
	return result.(RuleSet), nil
}

func (s *Service) buildRuleSet(ctx context.Context) (RuleSet, error) {
	rules, err := s.repo.ListRoutingRules(ctx)
	if err != nil {
		return RuleSet{}, err
	}
	fallback, err := s.repo.GetDefaultSupplier(ctx)
	if err != nil {
		return RuleSet{}, err
	}
	suppliers := map[int64]Supplier{fallback.ID: fallback}
	for _, rule := range rules {
		if _, ok := suppliers[rule.SupplierID]; ok {
			continue
		}
		sup, err := s.repo.GetSupplier(ctx, rule.SupplierID)
		if err != nil {
			return RuleSet{}, fmt.Errorf("routing rule %d: %w", rule.ID, err)
		}
		suppliers[rule.SupplierID] = sup
	}
	return RuleSet{Rules: rules, Suppliers: suppliers, DefaultSupplier: fallback}, nil
}

func (s *Service) invalidateRules(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil && s.logger != nil {
		s.logger.Warn("rule set cache invalidate", slog.Any("error", err))
	}
}
