package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/models"
)

// Event is the wire envelope for a pushed notification.
type Event struct {
	Event string               `json:"event"`
	Data  *models.Notification `json:"data"`
}

var ErrSendBufferFull = errors.New("client send buffer full")

// eventName maps notification kinds to the socket event names frontends
// listen for. Accept and decline share one decision event; the payload
// carries which it was.
func eventName(kind models.NotificationKind) string {
	switch kind {
	case models.NotificationInterestAccepted, models.NotificationInterestDeclined:
		return "interest_decision"
	case models.NotificationInterestReceived:
		return "job_interest_sent"
	default:
		return string(kind)
	}
}

// Client is one websocket connection. It implements dispatch.Sink, so the
// dispatcher can push straight into the Send channel.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan *Event

	manager *Manager

	mu     sync.Mutex
	closed bool
}

// Push hands a notification to the write pump without blocking. A full
// buffer counts as a failed push; the dispatcher keeps the event queued.
func (c *Client) Push(n *models.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("client connection closed")
	}

	select {
	case c.Send <- &Event{Event: eventName(n.Kind), Data: n}:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// readPump exists only to observe the connection closing; clients do not
// send commands over this socket.
func (c *Client) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket read error", "user_id", c.UserID, "error", err.Error())
			}
			break
		}
	}
}

func (c *Client) writePump() {
	for event := range c.Send {
		if err := c.Conn.WriteJSON(event); err != nil {
			logger.Warn("WebSocket write error", "user_id", c.UserID, "error", err.Error())
			break
		}
	}
	c.Conn.Close()
}
