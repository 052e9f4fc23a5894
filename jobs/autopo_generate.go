package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/vitrine-erp/vitrine/internal/orders"
	"github.com/vitrine-erp/vitrine/internal/procurement"
	"github.com/vitrine-erp/vitrine/internal/shared"
)

// NewAutoPOGenerateHandler binds TaskAutoPOGenerate to the procurement
// service. A duplicate run is a success from the queue's point of view, and
// workflow violations are not retried.
func NewAutoPOGenerateHandler(service *procurement.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AutoPOGeneratePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		generated, err := service.GenerateForOrder(ctx, payload.OrderRef, payload.ActorID)
		switch {
		case err == nil:
			logger.Info("autopo generated",
				slog.String("order_ref", payload.OrderRef),
				slog.Int("count", len(generated)))
			return nil
		case errors.Is(err, shared.ErrIdempotencyConflict):
			logger.Info("autopo already generated", slog.String("order_ref", payload.OrderRef))
			return nil
		case errors.Is(err, procurement.ErrInvalidState),
			errors.Is(err, procurement.ErrInvalidInput),
			errors.Is(err, orders.ErrNotFound):
			logger.Warn("autopo rejected",
				slog.String("order_ref", payload.OrderRef),
				slog.Any("error", err))
			return asynq.SkipRetry
		default:
			return err
		}
	}
}
