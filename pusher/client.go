package pusher

import (
	"github.com/pusher/pusher-http-go/v5"

	"evgate/internal"
	"evgate/internal/config"
	"evgate/utility"
)

// MessagePusher mirrors log traffic and station events to the operator UI
// over pusher channels. It serves both as the logger's message sink and as
// an event listener.
type MessagePusher struct {
	client pusher.Client
}

func NewPusher(conf *config.Config) (*MessagePusher, error) {
	if !conf.Pusher.Enabled {
		return nil, nil
	}
	if conf.Pusher.AppID == "" {
		return nil, utility.Err("missed AppID parameter in Pusher configuration")
	}
	if conf.Pusher.Key == "" {
		return nil, utility.Err("missed Key parameter in Pusher configuration")
	}
	if conf.Pusher.Secret == "" {
		return nil, utility.Err("missed Secret parameter in Pusher configuration")
	}
	client := pusher.Client{
		AppID:   conf.Pusher.AppID,
		Key:     conf.Pusher.Key,
		Secret:  conf.Pusher.Secret,
		Cluster: conf.Pusher.Cluster,
		Secure:  true,
	}
	return &MessagePusher{client: client}, nil
}

func (p *MessagePusher) Send(msg internal.Message) error {
	switch msg.MessageType() {
	case internal.FeatureLogMessageType:
		return p.client.Trigger(string(SystemLog), string(Call), msg)
	}
	return nil
}

func (p *MessagePusher) trigger(event Event, message *internal.EventMessage) {
	_ = p.client.Trigger(string(Stations), string(event), message)
}

func (p *MessagePusher) OnStatusNotification(event *internal.EventMessage) {
	p.trigger(StationEvent, event)
}

func (p *MessagePusher) OnTransactionStart(event *internal.EventMessage) {
	p.trigger(TransactionLive, event)
}

func (p *MessagePusher) OnTransactionStop(event *internal.EventMessage) {
	p.trigger(TransactionLive, event)
}

func (p *MessagePusher) OnAuthorize(event *internal.EventMessage) {
	p.trigger(StationEvent, event)
}

func (p *MessagePusher) OnStationOffline(event *internal.EventMessage) {
	p.trigger(StationEvent, event)
}

func (p *MessagePusher) OnStationOnline(event *internal.EventMessage) {
	p.trigger(StationEvent, event)
}
