package integration

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-erp/vitrine/internal/procurement"
)

func testHooks(t *testing.T) (*Hooks, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewHooks(client, slog.Default()), client
}

func TestHandlePOGenerated(t *testing.T) {
	hooks, client := testHooks(t)

	evt := procurement.POGeneratedEvent{
		EventID:        uuid.New(),
		OriginOrderRef: "SO-100",
		PONumbers:      []string{"PO-00000001", "PO-00000002"},
		PendingCount:   1,
		GeneratedAt:    time.Now().UTC(),
	}
	require.NoError(t, hooks.HandlePOGenerated(context.Background(), evt))

	entries, err := client.XRange(context.Background(), streamKey, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "po.generated", entries[0].Values["type"])
	require.Contains(t, entries[0].Values["payload"], "SO-100")
}

func TestHandlePOGeneratedMissingRef(t *testing.T) {
	hooks, _ := testHooks(t)
	err := hooks.HandlePOGenerated(context.Background(), procurement.POGeneratedEvent{})
	require.Error(t, err)
}

func TestHandlePOApproved(t *testing.T) {
	hooks, client := testHooks(t)

	evt := procurement.POApprovedEvent{
		EventID:    uuid.New(),
		POID:       7,
		Number:     "PO-00000007",
		ApprovedBy: 42,
		ApprovedAt: time.Now().UTC(),
	}
	require.NoError(t, hooks.HandlePOApproved(context.Background(), evt))

	entries, err := client.XRange(context.Background(), streamKey, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "po.approved", entries[0].Values["type"])
}

func TestNilHooksAreSafe(t *testing.T) {
	var hooks *Hooks
	require.NoError(t, hooks.HandlePOGenerated(context.Background(), procurement.POGeneratedEvent{OriginOrderRef: "SO-1"}))
}
