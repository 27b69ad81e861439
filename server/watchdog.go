package server

import (
	"fmt"
	"time"

	"evgate/internal"
)

// Watchdog marks a station offline when no inbound traffic arrives within
// a grace multiple of the heartbeat interval. Any message counts as a sign
// of life, not only heartbeats.
type Watchdog struct {
	server   *Server
	handler  *SystemHandler
	logger   internal.LogHandler
	interval time.Duration
	grace    time.Duration
	done     chan struct{}
}

func NewWatchdog(server *Server, handler *SystemHandler, logger internal.LogHandler, heartbeatInterval, graceFactor int) *Watchdog {
	interval := time.Duration(heartbeatInterval) * time.Second
	return &Watchdog{
		server:   server,
		handler:  handler,
		logger:   logger,
		interval: interval,
		grace:    interval * time.Duration(graceFactor),
		done:     make(chan struct{}),
	}
}

func (w *Watchdog) Start() {
	go w.run()
}

func (w *Watchdog) Stop() {
	close(w.done)
}

func (w *Watchdog) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.check()
		case <-w.done:
			return
		}
	}
}

func (w *Watchdog) check() {
	deadline := time.Now().Add(-w.grace)
	for _, ws := range w.server.Registry().All() {
		if ws.LastSeen().Before(deadline) {
			w.logger.Warn(fmt.Sprintf("station %s silent beyond grace period", ws.ID()))
			w.handler.MarkOffline(ws.ID())
			_ = ws.Close()
		}
	}
}
