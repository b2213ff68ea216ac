package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigwork_backend/internal/models"
	"gigwork_backend/internal/repositories"
)

func pending(gigID, profID string) *models.JobInterest {
	return &models.JobInterest{
		GigID:          gigID,
		ProfessionalID: profID,
		Status:         models.InterestStatusPending,
	}
}

func seedOpenGig(t *testing.T, gigs *GigStore, id string) {
	t.Helper()
	require.NoError(t, gigs.Create(context.Background(), &models.Gig{
		ID:            id,
		InstitutionID: "inst-1",
		Title:         "Night shift",
		PayAmount:     150,
		Status:        models.GigStatusOpen,
	}))
}

func newStores(t *testing.T, gigIDs ...string) (*GigStore, *InterestStore) {
	t.Helper()
	gigs := NewGigStore()
	for _, id := range gigIDs {
		seedOpenGig(t, gigs, id)
	}
	return gigs, NewInterestStore(gigs)
}

func TestInterestStore_DuplicatePair(t *testing.T) {
	t.Parallel()
	_, store := newStores(t, "gig-1", "gig-2")
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, pending("gig-1", "prof-1")))

	err := store.Create(ctx, pending("gig-1", "prof-1"))
	assert.ErrorIs(t, err, repositories.ErrInterestExists)

	// Same professional on a different gig is fine.
	assert.NoError(t, store.Create(ctx, pending("gig-2", "prof-1")))
}

func TestInterestStore_DecideAcceptAutoDeclines(t *testing.T) {
	t.Parallel()
	_, store := newStores(t, "gig-1", "gig-2")
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, pending("gig-1", "prof-a")))
	require.NoError(t, store.Create(ctx, pending("gig-1", "prof-b")))
	require.NoError(t, store.Create(ctx, pending("gig-1", "prof-c")))
	require.NoError(t, store.Create(ctx, pending("gig-2", "prof-d")))

	result, err := store.Decide(ctx, "gig-1", "prof-a", models.InterestStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.InterestStatusAccepted, result.Decided.Status)
	assert.Len(t, result.AutoDeclined, 2)
	for _, in := range result.AutoDeclined {
		assert.Equal(t, models.InterestStatusDeclined, in.Status)
	}

	// Another gig's expression is untouched.
	other, err := store.Get(ctx, "gig-2", "prof-d")
	require.NoError(t, err)
	assert.Equal(t, models.InterestStatusPending, other.Status)

	// A second accept on the same gig fails: the ledger already has a winner.
	_, err = store.Decide(ctx, "gig-1", "prof-b", models.InterestStatusAccepted)
	assert.ErrorIs(t, err, repositories.ErrGigAlreadyAssigned)
}

func TestInterestStore_AcceptAssignsGig(t *testing.T) {
	t.Parallel()
	gigs, store := newStores(t, "gig-1")
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, pending("gig-1", "prof-a")))
	require.NoError(t, store.Create(ctx, pending("gig-1", "prof-b")))

	result, err := store.Decide(ctx, "gig-1", "prof-a", models.InterestStatusAccepted)
	require.NoError(t, err)
	require.NotNil(t, result.Gig)
	assert.Equal(t, models.GigStatusAssigned, result.Gig.Status)
	require.NotNil(t, result.Gig.AssignedProfessionalID)
	assert.Equal(t, "prof-a", *result.Gig.AssignedProfessionalID)

	// The gig store agrees: the accept and the assignment are one unit.
	gig, err := gigs.GetByID(ctx, "gig-1")
	require.NoError(t, err)
	assert.Equal(t, models.GigStatusAssigned, gig.Status)
	require.NotNil(t, gig.AssignedProfessionalID)
	assert.Equal(t, "prof-a", *gig.AssignedProfessionalID)
	assert.True(t, gig.IsAssignmentConsistent())
}

func TestInterestStore_DecideRejectedOnClosedGig(t *testing.T) {
	t.Parallel()
	gigs, store := newStores(t, "gig-1")
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, pending("gig-1", "prof-a")))
	require.NoError(t, store.Create(ctx, pending("gig-1", "prof-b")))

	_, err := gigs.UpdateStatus(ctx, "gig-1", models.GigStatusOpen, models.GigStatusClosed, nil)
	require.NoError(t, err)

	_, err = store.Decide(ctx, "gig-1", "prof-a", models.InterestStatusAccepted)
	assert.ErrorIs(t, err, repositories.ErrStatusConflict)

	// Nothing moved: the ledger holds no accepted or declined expression
	// and the gig stays closed and unassigned.
	for _, prof := range []string{"prof-a", "prof-b"} {
		in, err := store.Get(ctx, "gig-1", prof)
		require.NoError(t, err)
		assert.Equal(t, models.InterestStatusPending, in.Status)
	}
	gig, err := gigs.GetByID(ctx, "gig-1")
	require.NoError(t, err)
	assert.Equal(t, models.GigStatusClosed, gig.Status)
	assert.Nil(t, gig.AssignedProfessionalID)
}

func TestInterestStore_DecideNotPending(t *testing.T) {
	t.Parallel()
	_, store := newStores(t, "gig-1")
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, pending("gig-1", "prof-a")))
	_, err := store.Decide(ctx, "gig-1", "prof-a", models.InterestStatusDeclined)
	require.NoError(t, err)

	// Deciding the same expression twice is rejected.
	_, err = store.Decide(ctx, "gig-1", "prof-a", models.InterestStatusDeclined)
	assert.ErrorIs(t, err, repositories.ErrInterestNotPending)

	_, err = store.Decide(ctx, "gig-1", "missing", models.InterestStatusAccepted)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = store.Decide(ctx, "gig-missing", "prof-a", models.InterestStatusAccepted)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestInterestStore_ConcurrentAcceptsOneWinner(t *testing.T) {
	t.Parallel()
	gigs, store := newStores(t, "gig-1")
	ctx := context.Background()

	professionals := []string{"prof-a", "prof-b", "prof-c", "prof-d"}
	for _, p := range professionals {
		require.NoError(t, store.Create(ctx, pending("gig-1", p)))
	}

	var wins int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, p := range professionals {
		wg.Add(1)
		go func(prof string) {
			defer wg.Done()
			if _, err := store.Decide(ctx, "gig-1", prof, models.InterestStatusAccepted); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one accept may win")

	accepted, err := store.HasAccepted(ctx, "gig-1")
	require.NoError(t, err)
	assert.True(t, accepted)

	// Everyone else ended up declined, atomically with the accept.
	list, err := store.ListByGig(ctx, "gig-1")
	require.NoError(t, err)
	var acceptedCount, declinedCount int
	for _, in := range list {
		switch in.Status {
		case models.InterestStatusAccepted:
			acceptedCount++
		case models.InterestStatusDeclined:
			declinedCount++
		}
	}
	assert.Equal(t, 1, acceptedCount)
	assert.Equal(t, len(professionals)-1, declinedCount)

	// The winner also owns the gig.
	gig, err := gigs.GetByID(ctx, "gig-1")
	require.NoError(t, err)
	assert.Equal(t, models.GigStatusAssigned, gig.Status)
	require.NotNil(t, gig.AssignedProfessionalID)
}

func TestInterestStore_Listings(t *testing.T) {
	t.Parallel()
	_, store := newStores(t, "gig-1", "gig-2")
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, pending("gig-1", "prof-a")))
	require.NoError(t, store.Create(ctx, pending("gig-1", "prof-b")))
	require.NoError(t, store.Create(ctx, pending("gig-2", "prof-a")))

	byGig, err := store.ListByGig(ctx, "gig-1")
	require.NoError(t, err)
	assert.Len(t, byGig, 2)

	byProf, err := store.ListByProfessional(ctx, "prof-a")
	require.NoError(t, err)
	assert.Len(t, byProf, 2)

	count, err := store.CountByGig(ctx, "gig-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
