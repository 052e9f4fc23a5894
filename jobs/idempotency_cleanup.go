package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vitrine-erp/vitrine/internal/shared"
)

// defaultRetentionHours applies when the cleanup payload carries no retention.
const defaultRetentionHours = 72

// NewIdempotencyCleanupHandler prunes stale idempotency keys on schedule.
func NewIdempotencyCleanupHandler(store *shared.IdempotencyStore, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload IdempotencyCleanupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		retention := payload.RetentionHours
		if retention <= 0 {
			retention = defaultRetentionHours
		}
		if err := store.Cleanup(ctx, time.Duration(retention)*time.Hour); err != nil {
			return err
		}
		logger.Info("idempotency keys pruned", slog.Int("retention_hours", retention))
		return nil
	}
}
