package matchmaker

import (
	"QueueBot/internal/websocket"
	"context"
)

type HubBroadcaster interface {
	Broadcast(msg websocket.OutgoingMessage)
}

type hubPublisher struct {
	hub HubBroadcaster
}

// NewHubPublisher 把事件推给看板的 WebSocket 订阅者
func NewHubPublisher(hub HubBroadcaster) Publisher {
	return &hubPublisher{hub: hub}
}

func (p *hubPublisher) Publish(ctx context.Context, ev Event) error {
	p.hub.Broadcast(websocket.OutgoingMessage{
		Event: string(ev.Type),
		Data:  ev,
	})
	return nil
}
