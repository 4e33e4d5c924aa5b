package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	client := NewClient(nil)

	_, ok := registry.Lookup("u1")
	req.False(ok)

	registry.Register("u1", client)

	got, ok := registry.Lookup("u1")
	req.True(ok)
	req.Same(client, got)
	req.Equal(1, registry.Count())
}

func TestRegistryRegisterReplacesExisting(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	old := NewClient(nil)
	newer := NewClient(nil)

	registry.Register("u1", old)
	registry.Register("u1", newer)

	got, ok := registry.Lookup("u1")
	req.True(ok)
	req.Same(newer, got)
	req.Equal(1, registry.Count())
}

func TestRegistryUnregisterRemovesOwnEntry(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	client := NewClient(nil)

	registry.Register("u1", client)
	req.True(registry.Unregister("u1", client))

	_, ok := registry.Lookup("u1")
	req.False(ok)
}

func TestRegistryUnregisterIgnoresStaleHandle(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	old := NewClient(nil)
	newer := NewClient(nil)

	registry.Register("u1", old)
	registry.Register("u1", newer)

	// The superseded connection closing late must not evict the
	// replacement's registration.
	req.False(registry.Unregister("u1", old))

	got, ok := registry.Lookup("u1")
	req.True(ok)
	req.Same(newer, got)
}

func TestRegistryUnregisterAbsentIsNoop(t *testing.T) {
	registry := NewRegistry()
	require.False(t, registry.Unregister("ghost", NewClient(nil)))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			identity := fmt.Sprintf("u%d", n%10)
			client := NewClient(nil)
			registry.Register(identity, client)
			registry.Lookup(identity)
			registry.Unregister(identity, client)
		}(i)
	}
	wg.Wait()
}
