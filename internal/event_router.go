package internal

// EventRouter fans one event out to every registered listener. Listeners
// are fire-and-forget; a slow notification sink must not stall the
// message loop.
type EventRouter struct {
	listeners []EventHandler
}

func NewEventRouter() *EventRouter {
	return &EventRouter{}
}

func (r *EventRouter) AddListener(listener EventHandler) {
	r.listeners = append(r.listeners, listener)
}

func (r *EventRouter) OnStatusNotification(event *EventMessage) {
	for _, listener := range r.listeners {
		go listener.OnStatusNotification(event)
	}
}

func (r *EventRouter) OnTransactionStart(event *EventMessage) {
	for _, listener := range r.listeners {
		go listener.OnTransactionStart(event)
	}
}

func (r *EventRouter) OnTransactionStop(event *EventMessage) {
	for _, listener := range r.listeners {
		go listener.OnTransactionStop(event)
	}
}

func (r *EventRouter) OnAuthorize(event *EventMessage) {
	for _, listener := range r.listeners {
		go listener.OnAuthorize(event)
	}
}

func (r *EventRouter) OnStationOffline(event *EventMessage) {
	for _, listener := range r.listeners {
		go listener.OnStationOffline(event)
	}
}

func (r *EventRouter) OnStationOnline(event *EventMessage) {
	for _, listener := range r.listeners {
		go listener.OnStationOnline(event)
	}
}
