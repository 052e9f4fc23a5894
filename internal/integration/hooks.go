// Package integration fans procurement domain events out to downstream
// consumers over a Redis stream.
package integration

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/vitrine-erp/vitrine/internal/procurement"
)

// streamKey is the Redis stream downstream consumers read from.
const streamKey = "vitrine:procurement:events"

// streamMaxLen caps the stream so an idle consumer cannot grow it unbounded.
const streamMaxLen = 10_000

// Hooks publishes procurement events. Satisfies procurement.IntegrationHandler.
type Hooks struct {
	client *redis.Client
	logger *slog.Logger
}

// NewHooks constructs integration hooks.
func NewHooks(client *redis.Client, logger *slog.Logger) *Hooks {
	return &Hooks{client: client, logger: logger}
}

func (h *Hooks) publish(ctx context.Context, eventType string, payload any) error {
	if h == nil || h.client == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	err = h.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{"type": eventType, "payload": body},
	}).Err()
	if err != nil {
		h.logger.Warn("publish event", slog.String("type", eventType), slog.Any("error", err))
		return err
	}
	return nil
}

// HandlePOGenerated publishes a generation batch event.
func (h *Hooks) HandlePOGenerated(ctx context.Context, evt procurement.POGeneratedEvent) error {
	if evt.OriginOrderRef == "" {
		return errors.New("integration: origin order ref required")
	}
	return h.publish(ctx, "po.generated", evt)
}

// HandlePOApproved publishes an approval event.
func (h *Hooks) HandlePOApproved(ctx context.Context, evt procurement.POApprovedEvent) error {
	if evt.POID == 0 {
		return errors.New("integration: po id required")
	}
	return h.publish(ctx, "po.approved", evt)
}
