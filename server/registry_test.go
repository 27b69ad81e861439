package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	ws := &WebSocket{id: "st-1"}
	previous := registry.Register(ws)
	assert.Nil(t, previous)

	found, ok := registry.Get("st-1")
	require.True(t, ok)
	assert.Same(t, ws, found)
	assert.Equal(t, 1, registry.Count())
}

func TestRegistrySupersedes(t *testing.T) {
	registry := NewRegistry()
	first := &WebSocket{id: "st-1"}
	second := &WebSocket{id: "st-1"}

	require.Nil(t, registry.Register(first))
	previous := registry.Register(second)
	assert.Same(t, first, previous)

	found, ok := registry.Get("st-1")
	require.True(t, ok)
	assert.Same(t, second, found)
	assert.Equal(t, 1, registry.Count())
}

func TestRegistryStaleUnregisterKeepsReplacement(t *testing.T) {
	registry := NewRegistry()
	first := &WebSocket{id: "st-1"}
	second := &WebSocket{id: "st-1"}
	registry.Register(first)
	registry.Register(second)

	// the superseded reader shutting down must not evict the new connection
	assert.False(t, registry.Unregister(first))
	found, ok := registry.Get("st-1")
	require.True(t, ok)
	assert.Same(t, second, found)

	assert.True(t, registry.Unregister(second))
	_, ok = registry.Get("st-1")
	assert.False(t, ok)
}
