package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigwork_backend/internal/models"
	"gigwork_backend/internal/repositories"
)

func newGig(institutionID string) *models.Gig {
	return &models.Gig{
		InstitutionID: institutionID,
		Title:         "Night shift nurse",
		PayAmount:     150,
		Status:        models.GigStatusOpen,
	}
}

func TestGigStore_CreateAndGet(t *testing.T) {
	t.Parallel()
	store := NewGigStore()
	ctx := context.Background()

	g := newGig("inst-1")
	require.NoError(t, store.Create(ctx, g))
	require.NotEmpty(t, g.ID)

	got, err := store.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Title, got.Title)

	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGigStore_UpdateStatusCAS(t *testing.T) {
	t.Parallel()
	store := NewGigStore()
	ctx := context.Background()

	g := newGig("inst-1")
	require.NoError(t, store.Create(ctx, g))

	profID := "prof-1"
	updated, err := store.UpdateStatus(ctx, g.ID, models.GigStatusOpen, models.GigStatusAssigned, &profID)
	require.NoError(t, err)
	assert.Equal(t, models.GigStatusAssigned, updated.Status)
	require.NotNil(t, updated.AssignedProfessionalID)
	assert.Equal(t, profID, *updated.AssignedProfessionalID)
	assert.True(t, updated.IsAssignmentConsistent())

	// Second writer expecting open loses.
	_, err = store.UpdateStatus(ctx, g.ID, models.GigStatusOpen, models.GigStatusClosed, nil)
	assert.ErrorIs(t, err, repositories.ErrStatusConflict)

	_, err = store.UpdateStatus(ctx, "missing", models.GigStatusOpen, models.GigStatusClosed, nil)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGigStore_UpdateStatusConcurrent(t *testing.T) {
	t.Parallel()
	store := NewGigStore()
	ctx := context.Background()

	g := newGig("inst-1")
	require.NoError(t, store.Create(ctx, g))

	profID := "prof-1"
	const writers = 16
	var wins int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.UpdateStatus(ctx, g.ID, models.GigStatusOpen, models.GigStatusAssigned, &profID)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins, "exactly one writer wins the compare-and-set")
}

func TestGigStore_ListOpen(t *testing.T) {
	t.Parallel()
	store := NewGigStore()
	ctx := context.Background()

	open := newGig("inst-1")
	require.NoError(t, store.Create(ctx, open))

	urgent := newGig("inst-1")
	urgent.IsUrgent = true
	require.NoError(t, store.Create(ctx, urgent))

	closed := newGig("inst-1")
	closed.Status = models.GigStatusClosed
	require.NoError(t, store.Create(ctx, closed))

	all, err := store.ListOpen(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	urgentOnly, err := store.ListOpen(ctx, true)
	require.NoError(t, err)
	require.Len(t, urgentOnly, 1)
	assert.Equal(t, urgent.ID, urgentOnly[0].ID)
}

func TestGigStore_CloseExpired(t *testing.T) {
	t.Parallel()
	store := NewGigStore()
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	expired := newGig("inst-1")
	expired.ExpiryDate = &past
	require.NoError(t, store.Create(ctx, expired))

	live := newGig("inst-1")
	live.ExpiryDate = &future
	require.NoError(t, store.Create(ctx, live))

	closed, err := store.CloseExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)

	got, err := store.GetByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GigStatusClosed, got.Status)

	got, err = store.GetByID(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GigStatusOpen, got.Status)
}
