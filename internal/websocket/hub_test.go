// internal/websocket/hub_test.go
package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, time.Second, 5*time.Millisecond, msg)
}

func TestHubKeepsServingWhenClientQueueOverflows(t *testing.T) {
	hub := NewHub(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	stalled := NewClient(hub, nil, &ClientAuth{SpaID: 7, SessionID: "stalled"})
	hub.Register <- stalled
	waitFor(t, func() bool { return hub.ConnectedClients(7) == 1 }, "stalled client registered")

	// Nothing drains this client's queue; push well past its capacity.
	for i := 0; i < cap(stalled.send)+10; i++ {
		hub.NotifySpa(7, "payment.accepted", map[string]any{"seq": i})
	}
	waitFor(t, func() bool { return len(stalled.send) == cap(stalled.send) }, "queue filled to capacity")

	// The hub must still accept registrations after the overflow.
	next := NewClient(hub, nil, &ClientAuth{SpaID: 8, SessionID: "next"})
	select {
	case hub.Register <- next:
	case <-time.After(2 * time.Second):
		t.Fatal("hub stopped accepting registrations after a client queue overflowed")
	}
	waitFor(t, func() bool { return hub.ConnectedClients(8) == 1 }, "second client registered")

	// The stalled client stays registered until its pumps evict it, and
	// unregistering it later must not panic on an already-closed queue.
	assert.Equal(t, 1, hub.ConnectedClients(7))
	hub.unregister <- stalled
	waitFor(t, func() bool { return hub.ConnectedClients(7) == 0 }, "stalled client unregistered")
}

func TestNotifySpaWithoutConnectionsIsNoOp(t *testing.T) {
	hub := NewHub(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	hub.NotifySpa(99, "offboarding.approved", nil)
	assert.Equal(t, 0, hub.ConnectedClients(99))
}
