package procurement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vitrine-erp/vitrine/internal/catalog"
	"github.com/vitrine-erp/vitrine/internal/orders"
	"github.com/vitrine-erp/vitrine/internal/shared"
)

// numberAttempts bounds collision retries during number allocation.
const numberAttempts = 5

// OrdersPort exposes the sales order lookup generation starts from.
type OrdersPort interface {
	GetByReference(ctx context.Context, reference string) (orders.SalesOrder, error)
}

// RulesPort loads the routing configuration.
type RulesPort interface {
	LoadRuleSet(ctx context.Context) (catalog.RuleSet, error)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ApprovalsPort records approval workflow entries.
type ApprovalsPort interface {
	EnsureSubmit(ctx context.Context, module string, ref uuid.UUID, actorID int64, note string) error
	Record(ctx context.Context, log shared.ApprovalLog) error
}

// IdempotencyPort guards against duplicate generation runs.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// MetricsPort counts generated purchase orders.
type MetricsPort interface {
	CountGeneratedPO(status string)
}

// Service orchestrates purchase order generation and approval.
type Service struct {
	policy      Policy
	repo        RepositoryPort
	orders      OrdersPort
	rules       RulesPort
	approvals   ApprovalsPort
	audit       AuditPort
	idempotency IdempotencyPort
	hooks       IntegrationHandler
	metrics     MetricsPort
	logger      *slog.Logger
}

// NewService constructs procurement service.
func NewService(policy Policy, repo RepositoryPort, ordersPort OrdersPort, rules RulesPort, approvals ApprovalsPort, audit AuditPort, idem IdempotencyPort, hooks IntegrationHandler, metrics MetricsPort, logger *slog.Logger) *Service {
	return &Service{
		policy:      policy,
		repo:        repo,
		orders:      ordersPort,
		rules:       rules,
		approvals:   approvals,
		audit:       audit,
		idempotency: idem,
		hooks:       hooks,
		metrics:     metrics,
		logger:      logger,
	}
}

// GenerateForOrder creates purchase orders for a completed customer order and
// persists them as one batch. Re-running the same order is rejected through
// the idempotency store rather than silently duplicating orders. An order
// with zero line items yields an empty batch, which is a valid outcome.
func (s *Service) GenerateForOrder(ctx context.Context, orderRef string, actorID int64) ([]GeneratedPurchaseOrder, error) {
	order, err := s.orders.GetByReference(ctx, orderRef)
	if err != nil {
		return nil, err
	}
	if order.Status != orders.StatusCompleted {
		return nil, fmt.Errorf("%w: order %s is %s", ErrInvalidState, orderRef, order.Status)
	}

	ruleSet, err := s.rules.LoadRuleSet(ctx)
	if err != nil {
		return nil, err
	}
	generator := NewGenerator(s.policy, ruleSet)

	items := toLineItems(order.Flatten())
	origin := Origin{OrderRef: order.Reference, DeliveryAddr: order.DeliveryAddr, DeliveryDate: order.DeliveryDate}
	generated, err := generator.FromOrder(items, origin, time.Now().UTC(), s.allocateNumber(ctx))
	if err != nil {
		return nil, err
	}
	if len(generated) == 0 {
		return []GeneratedPurchaseOrder{}, nil
	}

	key := fmt.Sprintf("AUTOPO:%s", order.Reference)
	inserted := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "procurement.autopo"); err != nil {
			return nil, err
		}
		inserted = true
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for i := range generated {
			id, err := tx.InsertPO(ctx, generated[i])
			if err != nil {
				return err
			}
			generated[i].ID = id
			for _, line := range generated[i].Items {
				if err := tx.InsertPOLine(ctx, id, line); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if inserted {
			_ = s.idempotency.Delete(ctx, key)
		}
		return nil, err
	}

	pending := 0
	numbers := make([]string, 0, len(generated))
	for _, po := range generated {
		numbers = append(numbers, po.Number)
		if s.metrics != nil {
			s.metrics.CountGeneratedPO(string(po.Status))
		}
		if po.Status == POStatusPendingApproval {
			pending++
			if s.approvals != nil {
				refID := uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("AUTOPO:%d", po.ID)))
				_ = s.approvals.EnsureSubmit(ctx, "AUTOPO", refID, actorID, fmt.Sprintf("PO %s awaiting approval", po.Number))
			}
		}
	}
	s.recordAudit(ctx, actorID, "AUTOPO_GENERATE", order.Reference, map[string]any{"po_numbers": numbers, "pending": pending})

	if s.hooks != nil {
		evt := POGeneratedEvent{
			EventID:        uuid.New(),
			OriginOrderRef: order.Reference,
			PONumbers:      numbers,
			PendingCount:   pending,
			GeneratedAt:    time.Now().UTC(),
		}
		if err := s.hooks.HandlePOGenerated(ctx, evt); err != nil && s.logger != nil {
			s.logger.Warn("po generated hook", slog.Any("error", err))
		}
	}
	return generated, nil
}

// allocateNumber returns a NumberFunc that retries on persisted collisions.
func (s *Service) allocateNumber(ctx context.Context) NumberFunc {
	return func() (string, error) {
		for attempt := 0; attempt < numberAttempts; attempt++ {
			number := NewNumber(s.policy.NumberPrefix)
			exists, err := s.repo.NumberExists(ctx, number)
			if err != nil {
				return "", err
			}
			if !exists {
				return number, nil
			}
		}
		return "", ErrNumberExhausted
	}
}

// GetPurchaseOrder fetches a generated purchase order by ID.
func (s *Service) GetPurchaseOrder(ctx context.Context, id int64) (GeneratedPurchaseOrder, error) {
	return s.repo.GetPO(ctx, id)
}

// ListPurchaseOrders lists generated purchase orders.
func (s *Service) ListPurchaseOrders(ctx context.Context, limit, offset int, filters ListFilters) ([]GeneratedPurchaseOrder, int, error) {
	return s.repo.ListPOs(ctx, limit, offset, filters)
}

// ApprovePurchaseOrder transitions a pending purchase order to approved and
// logs the approval.
func (s *Service) ApprovePurchaseOrder(ctx context.Context, poID int64, actorID int64) error {
	po, err := s.repo.GetPO(ctx, poID)
	if err != nil {
		return err
	}
	if po.Status != POStatusPendingApproval {
		return ErrInvalidState
	}
	now := time.Now().UTC()
	refID := uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("AUTOPO:%d", poID)))
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdatePOStatus(ctx, poID, POStatusApproved); err != nil {
			return err
		}
		return tx.SetPOApproval(ctx, poID, actorID, now)
	})
	if err != nil {
		return err
	}
	if s.approvals != nil {
		_ = s.approvals.Record(ctx, shared.ApprovalLog{Module: "AUTOPO", RefID: refID, ActorID: actorID, Action: shared.ApprovalApprove, Note: fmt.Sprintf("PO %s approved", po.Number)})
	}
	s.recordAudit(ctx, actorID, "AUTOPO_APPROVE", po.Number, map[string]any{"po_id": poID})
	if s.hooks != nil {
		evt := POApprovedEvent{EventID: uuid.New(), POID: poID, Number: po.Number, ApprovedBy: actorID, ApprovedAt: now}
		if err := s.hooks.HandlePOApproved(ctx, evt); err != nil && s.logger != nil {
			s.logger.Warn("po approved hook", slog.Any("error", err))
		}
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: actorID, Action: action, Entity: "procurement.autopo", EntityID: entityID, Meta: meta})
}

func toLineItems(lines []orders.Line) []OrderLineItem {
	items := make([]OrderLineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, OrderLineItem{
			Product: ProductRef{
				ID:          line.ProductID,
				Code:        line.ProductCode,
				Name:        line.ProductName,
				Description: line.ProductDescription,
				Category:    line.Category,
			},
			Qty:           line.Qty,
			SellUnitPrice: line.SellUnitPrice,
		})
	}
	return items
}
