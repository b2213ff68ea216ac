package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigwork_backend/internal/models"
	"gigwork_backend/internal/repositories"
)

func note(userID string, kind models.NotificationKind) *models.Notification {
	return &models.Notification{
		UserID: userID,
		Kind:   kind,
		Title:  "t",
	}
}

func TestNotificationStore_UndeliveredOrdering(t *testing.T) {
	t.Parallel()
	store := NewNotificationStore()
	ctx := context.Background()

	first := note("u1", models.NotificationInterestReceived)
	second := note("u1", models.NotificationInterestAccepted)
	other := note("u2", models.NotificationInterestReceived)
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))
	require.NoError(t, store.Create(ctx, other))

	queued, err := store.ListUndelivered(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, queued, 2)
	assert.Equal(t, first.ID, queued[0].ID, "creation order preserved")
	assert.Equal(t, second.ID, queued[1].ID)

	require.NoError(t, store.MarkDelivered(ctx, []string{first.ID, second.ID}, time.Now()))

	queued, err = store.ListUndelivered(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, queued)

	// The other recipient's queue is independent.
	queued, err = store.ListUndelivered(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, queued, 1)
}

func TestNotificationStore_ReadTracking(t *testing.T) {
	t.Parallel()
	store := NewNotificationStore()
	ctx := context.Background()

	n := note("u1", models.NotificationInterestDeclined)
	require.NoError(t, store.Create(ctx, n))

	count, err := store.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, store.MarkRead(ctx, "u1", n.ID))

	count, err = store.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Another user cannot mark it read.
	assert.ErrorIs(t, store.MarkRead(ctx, "u2", n.ID), repositories.ErrNotFound)
	assert.ErrorIs(t, store.MarkRead(ctx, "u1", "missing"), repositories.ErrNotFound)
}

func TestNotificationStore_DeleteOlderThan(t *testing.T) {
	t.Parallel()
	store := NewNotificationStore()
	ctx := context.Background()

	old := note("u1", models.NotificationGigClosed)
	require.NoError(t, store.Create(ctx, old))

	// Age the record past the cutoff.
	store.mu.Lock()
	store.notifications[old.ID].CreatedAt = time.Now().Add(-48 * time.Hour)
	store.mu.Unlock()

	fresh := note("u1", models.NotificationGigClosed)
	require.NoError(t, store.Create(ctx, fresh))

	deleted, err := store.DeleteOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := store.ListByUser(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, fresh.ID, remaining[0].ID)
}
