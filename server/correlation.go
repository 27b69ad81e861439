package server

import (
	"sync"
	"time"

	"evgate/utility"
)

var ErrCommandTimeout = utility.Err("command timed out")

// CallOutcome is the resolution of an outbound call: the confirmation
// payload, or the error that ended the wait.
type CallOutcome struct {
	Payload interface{}
	Err     error
}

type pendingCall struct {
	stationId string
	outcome   chan CallOutcome
	deadline  time.Time
}

// Correlations matches station confirmations to outbound calls by message
// id. Every entry carries a deadline; a background sweep resolves expired
// entries with a timeout so no waiter blocks forever and no entry leaks.
type Correlations struct {
	mu      sync.Mutex
	pending map[string]*pendingCall
	ttl     time.Duration
	done    chan struct{}
}

func NewCorrelations(ttl time.Duration) *Correlations {
	c := &Correlations{
		pending: make(map[string]*pendingCall),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Issue registers a fresh message id and returns it with the channel the
// outcome will arrive on. The channel is buffered; resolution never blocks.
func (c *Correlations) Issue(stationId string) (string, <-chan CallOutcome) {
	id := utility.NewUUID()
	call := &pendingCall{
		stationId: stationId,
		outcome:   make(chan CallOutcome, 1),
		deadline:  time.Now().Add(c.ttl),
	}
	c.mu.Lock()
	c.pending[id] = call
	c.mu.Unlock()
	return id, call.outcome
}

// Resolve delivers the outcome for a message id. Returns false when the id
// is unknown, already resolved or swept.
func (c *Correlations) Resolve(id string, outcome CallOutcome) bool {
	c.mu.Lock()
	call, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if !ok {
		return false
	}
	call.outcome <- outcome
	return true
}

// FailStation resolves every pending call addressed to the station with the
// given error. Used when its connection drops.
func (c *Correlations) FailStation(stationId string, err error) {
	c.mu.Lock()
	var failed []*pendingCall
	for id, call := range c.pending {
		if call.stationId == stationId {
			failed = append(failed, call)
			delete(c.pending, id)
		}
	}
	c.mu.Unlock()
	for _, call := range failed {
		call.outcome <- CallOutcome{Err: err}
	}
}

func (c *Correlations) sweep() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			var expired []*pendingCall
			for id, call := range c.pending {
				if now.After(call.deadline) {
					expired = append(expired, call)
					delete(c.pending, id)
				}
			}
			c.mu.Unlock()
			for _, call := range expired {
				call.outcome <- CallOutcome{Err: ErrCommandTimeout}
			}
		case <-c.done:
			return
		}
	}
}

func (c *Correlations) Close() {
	close(c.done)
}

func (c *Correlations) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
