package server

import (
	"sync"

	"evgate/utility"
)

var ErrStationOffline = utility.Err("station is not connected")

// Registry tracks the single live connection per station id. A station
// reconnecting before its old socket died supersedes the previous entry;
// the superseded socket is closed and its reader drains out.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]*WebSocket
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]*WebSocket),
	}
}

// Register installs the connection as the station's current one and returns
// the superseded connection, if any. Closing the old socket is left to the
// caller so it can log the supersession.
func (r *Registry) Register(ws *WebSocket) *WebSocket {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous := r.connections[ws.ID()]
	r.connections[ws.ID()] = ws
	return previous
}

// Unregister removes the connection only if it is still the current one for
// its station. A reader shutting down after being superseded must not evict
// its replacement.
func (r *Registry) Unregister(ws *WebSocket) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.connections[ws.ID()]; ok && current == ws {
		delete(r.connections, ws.ID())
		return true
	}
	return false
}

func (r *Registry) Get(stationId string) (*WebSocket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ws, ok := r.connections[stationId]
	return ws, ok
}

func (r *Registry) All() []*WebSocket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connections := make([]*WebSocket, 0, len(r.connections))
	for _, ws := range r.connections {
		connections = append(connections, ws)
	}
	return connections
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}
