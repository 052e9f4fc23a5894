package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// POGeneratedEvent is emitted after a generation batch has been persisted.
type POGeneratedEvent struct {
	EventID        uuid.UUID
	OriginOrderRef string
	PONumbers      []string
	PendingCount   int
	GeneratedAt    time.Time
}

// POApprovedEvent is emitted after a pending purchase order is approved.
type POApprovedEvent struct {
	EventID    uuid.UUID
	POID       int64
	Number     string
	ApprovedBy int64
	ApprovedAt time.Time
}

// IntegrationHandler receives procurement domain events. Delivery is
// best-effort; failures are logged, never propagated to the caller.
type IntegrationHandler interface {
	HandlePOGenerated(ctx context.Context, evt POGeneratedEvent) error
	HandlePOApproved(ctx context.Context, evt POApprovedEvent) error
}
