package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	ctx := context.Background()
	bus := NewMemoryBus()

	ch, cancel, err := bus.Subscribe(ctx, OrdersTopic("t1"))
	require.NoError(t, err)

	e, err := New(OrderPlaced, "t1", map[string]string{"order_id": "o1"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, OrdersTopic("t1"), e))
	require.NoError(t, bus.Publish(ctx, OrdersTopic("t2"), e))

	select {
	case got := <-ch:
		require.Equal(t, OrderPlaced, got.Type)
		require.JSONEq(t, `{"order_id":"o1"}`, string(got.Payload))
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	cancel()
	_, open := <-ch
	require.False(t, open)
	require.NoError(t, bus.Publish(ctx, OrdersTopic("t1"), e))
}
