package websocket

import (
	"QueueBot/internal/utils"
	"sync"
)

// Hub 看板订阅者集合；所有订阅者收到同样的事件流
type Hub struct {
	clients    map[string]*Client // subscriber id -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan OutgoingMessage
	quit       chan struct{}
	closeOnce  sync.Once
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan OutgoingMessage, 64),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	utils.Log.Info("hub started")

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.ID] = c
			n := len(h.clients)
			h.mu.Unlock()
			utils.Log.Debug("hub register", "client", c.ID, "clients", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.ID]; ok {
				delete(h.clients, c.ID)
				close(c.Send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			utils.Log.Debug("hub unregister", "client", c.ID, "clients", n)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, c := range h.clients {
				select {
				case c.Send <- msg:
				default:
					// 慢订阅者直接丢弃该条
					utils.Log.Warn("hub drop message", "client", c.ID, "event", msg.Event)
				}
			}
			h.mu.RUnlock()

		case <-h.quit:
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Broadcast 推送给所有订阅者；Hub 已关闭时直接丢弃
func (h *Hub) Broadcast(msg OutgoingMessage) {
	select {
	case h.broadcast <- msg:
	case <-h.quit:
	}
}

// Count 当前订阅者数量
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
}
