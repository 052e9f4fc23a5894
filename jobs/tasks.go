// Package jobs contains the background task definitions and the Asynq
// worker plumbing around them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAutoPOGenerate generates purchase orders for a completed order.
	TaskAutoPOGenerate = "autopo:generate"
	// TaskIdempotencyCleanup prunes expired idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
)

// AutoPOGeneratePayload identifies the order to generate purchase orders for.
type AutoPOGeneratePayload struct {
	OrderRef string `json:"order_ref"`
	ActorID  int64  `json:"actor_id"`
}

// NewAutoPOGenerateTask constructs an Asynq task for purchase order generation.
func NewAutoPOGenerateTask(payload AutoPOGeneratePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAutoPOGenerate, data, asynq.Queue(QueueDefault)), nil
}

// IdempotencyCleanupPayload configures idempotency key retention.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewIdempotencyCleanupTask builds the periodic cleanup task.
func NewIdempotencyCleanupTask(retentionHours int) (*asynq.Task, error) {
	body, err := json.Marshal(IdempotencyCleanupPayload{RetentionHours: retentionHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, body, asynq.Queue(QueueDefault)), nil
}
