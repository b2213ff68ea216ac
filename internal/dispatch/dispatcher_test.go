package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigwork_backend/internal/models"
	"gigwork_backend/internal/repositories/memory"
)

// recordingSink captures pushes and can be told to fail the first n of them.
type recordingSink struct {
	mu       sync.Mutex
	pushed   []string
	failNext int
}

func (s *recordingSink) Push(n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext > 0 {
		s.failNext--
		return errors.New("transient sink failure")
	}
	s.pushed = append(s.pushed, n.ID)
	return nil
}

func (s *recordingSink) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pushed...)
}

func newNote(userID string) *models.Notification {
	return &models.Notification{
		UserID: userID,
		Kind:   models.NotificationInterestReceived,
		Title:  "t",
	}
}

func TestDispatcher_PublishWithoutSinkQueues(t *testing.T) {
	t.Parallel()
	store := memory.NewNotificationStore()
	d := NewDispatcher(store)
	ctx := context.Background()

	n := newNote("u1")
	require.NoError(t, d.Publish(ctx, n))
	assert.False(t, n.Delivered)

	queued, err := store.ListUndelivered(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, n.ID, queued[0].ID)
}

func TestDispatcher_PublishLivePush(t *testing.T) {
	t.Parallel()
	store := memory.NewNotificationStore()
	d := NewDispatcher(store)
	ctx := context.Background()

	sink := &recordingSink{}
	d.Subscribe("u1", sink)

	first := newNote("u1")
	second := newNote("u1")
	require.NoError(t, d.Publish(ctx, first))
	require.NoError(t, d.Publish(ctx, second))

	assert.Equal(t, []string{first.ID, second.ID}, sink.ids(), "per-recipient order")
	assert.True(t, first.Delivered)
	assert.True(t, second.Delivered)

	queued, err := store.ListUndelivered(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, queued)
}

func TestDispatcher_RetryOnceThenQueue(t *testing.T) {
	t.Parallel()
	store := memory.NewNotificationStore()
	d := NewDispatcher(store)
	ctx := context.Background()

	// One transient failure: the retry lands it.
	sink := &recordingSink{failNext: 1}
	d.Subscribe("u1", sink)

	n := newNote("u1")
	require.NoError(t, d.Publish(ctx, n))
	assert.Equal(t, []string{n.ID}, sink.ids())
	assert.True(t, n.Delivered)

	// Two failures: exactly one retry, then the event stays queued.
	broken := &recordingSink{failNext: 2}
	d.Subscribe("u2", broken)

	lost := newNote("u2")
	require.NoError(t, d.Publish(ctx, lost))
	assert.Empty(t, broken.ids())
	assert.False(t, lost.Delivered)

	queued, err := store.ListUndelivered(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, lost.ID, queued[0].ID)
	assert.Equal(t, 0, broken.failNext, "no third attempt")
}

func TestDispatcher_DrainExactlyOnce(t *testing.T) {
	t.Parallel()
	store := memory.NewNotificationStore()
	d := NewDispatcher(store)
	ctx := context.Background()

	first := newNote("u1")
	second := newNote("u1")
	require.NoError(t, d.Publish(ctx, first))
	require.NoError(t, d.Publish(ctx, second))

	drained, err := d.Drain(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, drained, 2)
	assert.Equal(t, first.ID, drained[0].ID, "creation order")
	assert.Equal(t, second.ID, drained[1].ID)
	assert.True(t, drained[0].Delivered)

	again, err := d.Drain(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, again, "a drained event is never handed out twice")
}

func TestDispatcher_ConcurrentDrains(t *testing.T) {
	t.Parallel()
	store := memory.NewNotificationStore()
	d := NewDispatcher(store)
	ctx := context.Background()

	const events = 20
	for i := 0; i < events; i++ {
		require.NoError(t, d.Publish(ctx, newNote("u1")))
	}

	var mu sync.Mutex
	var total int
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			drained, err := d.Drain(ctx, "u1")
			require.NoError(t, err)
			mu.Lock()
			total += len(drained)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, events, total, "each event drained by exactly one caller")
}

func TestDispatcher_SinkReplacement(t *testing.T) {
	t.Parallel()
	store := memory.NewNotificationStore()
	d := NewDispatcher(store)
	ctx := context.Background()

	old := &recordingSink{}
	d.Subscribe("u1", old)

	replacement := &recordingSink{}
	d.Subscribe("u1", replacement)

	n := newNote("u1")
	require.NoError(t, d.Publish(ctx, n))
	assert.Empty(t, old.ids(), "replaced sink receives nothing")
	assert.Equal(t, []string{n.ID}, replacement.ids())

	// A stale unsubscribe must not detach the replacement.
	d.Unsubscribe("u1", old)
	second := newNote("u1")
	require.NoError(t, d.Publish(ctx, second))
	assert.Equal(t, []string{n.ID, second.ID}, replacement.ids())

	// The real unsubscribe does detach.
	d.Unsubscribe("u1", replacement)
	third := newNote("u1")
	require.NoError(t, d.Publish(ctx, third))
	assert.Len(t, replacement.ids(), 2)
	assert.False(t, third.Delivered)
}

func TestDispatcher_RecipientsIndependent(t *testing.T) {
	t.Parallel()
	store := memory.NewNotificationStore()
	d := NewDispatcher(store)
	ctx := context.Background()

	sink := &recordingSink{}
	d.Subscribe("u1", sink)

	// u2 has no sink; publishing to them must not affect u1's delivery.
	require.NoError(t, d.Publish(ctx, newNote("u2")))

	n := newNote("u1")
	require.NoError(t, d.Publish(ctx, n))
	assert.Equal(t, []string{n.ID}, sink.ids())

	queued, err := store.ListUndelivered(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, queued, 1)
}
