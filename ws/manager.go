package ws

import (
	"context"
	"sync"

	"gigwork_backend/internal/dispatch"
	"gigwork_backend/internal/logger"
)

// Manager owns the set of live websocket clients. One connection per user:
// a new connection for the same user replaces the old one, which is closed.
type Manager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	dispatcher *dispatch.Dispatcher
}

func NewManager(dispatcher *dispatch.Dispatcher) *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		dispatcher: dispatcher,
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.handleRegister(client)

		case client := <-m.unregister:
			m.handleUnregister(client)
		}
	}
}

func (m *Manager) handleRegister(client *Client) {
	m.mu.Lock()
	if old, ok := m.clients[client.UserID]; ok {
		m.dispatcher.Unsubscribe(old.UserID, old)
		old.close()
		old.Conn.Close()
	}
	m.clients[client.UserID] = client
	total := len(m.clients)
	m.mu.Unlock()

	logger.Info("Client registered", "user_id", client.UserID, "total", total)

	// Attach the live sink, then flush everything queued while offline.
	// Subscribe before drain so nothing published in between is missed.
	m.dispatcher.Subscribe(client.UserID, client)
	m.flushQueued(client)
}

func (m *Manager) handleUnregister(client *Client) {
	m.mu.Lock()
	if current, ok := m.clients[client.UserID]; ok && current == client {
		delete(m.clients, client.UserID)
	}
	total := len(m.clients)
	m.mu.Unlock()

	m.dispatcher.Unsubscribe(client.UserID, client)
	client.close()
	logger.Info("Client unregistered", "user_id", client.UserID, "total", total)
}

// flushQueued pushes the offline backlog down the fresh connection in
// creation order.
func (m *Manager) flushQueued(client *Client) {
	queued, err := m.dispatcher.Drain(context.Background(), client.UserID)
	if err != nil {
		logger.Error("Failed to drain queued notifications", "user_id", client.UserID, "error", err.Error())
		return
	}
	for i := range queued {
		if err := client.Push(&queued[i]); err != nil {
			logger.Warn("Failed to push queued notification", "user_id", client.UserID, "error", err.Error())
			return
		}
	}
}

func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

func (m *Manager) IsConnected(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.clients[userID]
	return exists
}
