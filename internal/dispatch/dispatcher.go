// Package dispatch routes notification events to their recipients. Each
// event is persisted first, then pushed to the recipient's live sink when
// one is attached; otherwise it stays queued until the recipient drains.
package dispatch

import (
	"context"
	"sync"
	"time"

	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/models"
	"gigwork_backend/internal/repositories"
)

// Sink is a live delivery channel for one recipient, typically a websocket
// connection. Push must not block indefinitely.
type Sink interface {
	Push(n *models.Notification) error
}

// recipientState serializes all delivery activity for one recipient. The
// mutex is what gives per-recipient ordering: publishes, drains and sink
// swaps for the same user never interleave.
type recipientState struct {
	mu   sync.Mutex
	sink Sink
}

type Dispatcher struct {
	repo repositories.NotificationRepository

	mu         sync.Mutex
	recipients map[string]*recipientState
}

func NewDispatcher(repo repositories.NotificationRepository) *Dispatcher {
	return &Dispatcher{
		repo:       repo,
		recipients: make(map[string]*recipientState),
	}
}

func (d *Dispatcher) recipient(userID string) *recipientState {
	d.mu.Lock()
	defer d.mu.Unlock()

	st, ok := d.recipients[userID]
	if !ok {
		st = &recipientState{}
		d.recipients[userID] = st
	}
	return st
}

// Publish persists the event and attempts live delivery. The event is
// durable before any push attempt, so a sink failure can never lose it; it
// just stays queued for the next drain.
func (d *Dispatcher) Publish(ctx context.Context, n *models.Notification) error {
	st := d.recipient(n.UserID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := d.repo.Create(ctx, n); err != nil {
		return err
	}

	if st.sink == nil {
		return nil
	}

	if err := d.pushWithRetry(st.sink, n); err != nil {
		logger.CtxWarn(ctx, "live push failed, event stays queued",
			"user_id", n.UserID, "notification_id", n.ID, "error", err.Error())
		return nil
	}

	if err := d.repo.MarkDelivered(ctx, []string{n.ID}, time.Now()); err != nil {
		return err
	}
	n.Delivered = true
	return nil
}

// pushWithRetry retries a failed push exactly once. Transient sink hiccups
// are common around reconnects; anything persistent falls back to the queue.
func (d *Dispatcher) pushWithRetry(sink Sink, n *models.Notification) error {
	if err := sink.Push(n); err == nil {
		return nil
	}
	return sink.Push(n)
}

// Subscribe attaches a live sink for the recipient, replacing any previous
// one. At most one sink is active per recipient; the newest connection wins.
func (d *Dispatcher) Subscribe(userID string, sink Sink) {
	st := d.recipient(userID)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sink = sink
}

// Unsubscribe detaches the sink, but only if it is still the active one. A
// stale connection closing after a replacement must not detach its successor.
func (d *Dispatcher) Unsubscribe(userID string, sink Sink) {
	st := d.recipient(userID)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.sink == sink {
		st.sink = nil
	}
}

// Drain returns the recipient's queued events in creation order and marks
// them delivered in the same critical section, so two concurrent drains (or
// a drain racing a publish) can never hand out the same event twice.
func (d *Dispatcher) Drain(ctx context.Context, userID string) ([]models.Notification, error) {
	st := d.recipient(userID)
	st.mu.Lock()
	defer st.mu.Unlock()

	queued, err := d.repo.ListUndelivered(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(queued) == 0 {
		return nil, nil
	}

	ids := make([]string, len(queued))
	now := time.Now()
	for i := range queued {
		ids[i] = queued[i].ID
		queued[i].Delivered = true
		queued[i].DeliveredAt = &now
	}
	if err := d.repo.MarkDelivered(ctx, ids, now); err != nil {
		return nil, err
	}
	return queued, nil
}
