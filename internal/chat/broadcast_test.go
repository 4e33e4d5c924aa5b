package chat

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBroadcastSkipsUnregisteredParticipants(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, zerolog.Nop())

	online := NewClient(nil)
	registry.Register("u1", online)

	delivered := broadcaster.Broadcast([]string{"u1", "u2"}, []byte("hello"))

	req.Equal(1, delivered)
	req.Len(online.send, 1)
}

func TestBroadcastIncludesSender(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, zerolog.Nop())

	sender := NewClient(nil)
	recipient := NewClient(nil)
	registry.Register("u1", sender)
	registry.Register("u2", recipient)

	delivered := broadcaster.Broadcast([]string{"u1", "u2"}, []byte("hello"))

	req.Equal(2, delivered)
	req.Len(sender.send, 1)
	req.Len(recipient.send, 1)
}

func TestBroadcastDropsOnFullBuffer(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, zerolog.Nop())

	slow := NewClient(nil)
	registry.Register("u1", slow)
	for i := 0; i < sendBufferSize; i++ {
		req.True(slow.TrySend([]byte("backlog")))
	}

	// A slow peer must not stall the fan-out; the payload is dropped.
	delivered := broadcaster.Broadcast([]string{"u1"}, []byte("hello"))

	req.Zero(delivered)
	req.Len(slow.send, sendBufferSize)
}

func TestBroadcastSkipsClosedClient(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, zerolog.Nop())

	closed := NewClient(nil)
	registry.Register("u1", closed)
	closed.shutdown()

	req.Zero(broadcaster.Broadcast([]string{"u1"}, []byte("hello")))
}
