package service

import (
	"context"
	"testing"

	"cinerate/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteUser_RemovesUserAndExactlyItsRatings(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.mustRegister(t, "alice", "a@x.com")
	bob := f.mustRegister(t, "bob", "b@x.com")

	f.mustSubmit(t, alice.UserID, "7")
	f.mustSubmit(t, alice.UserID, "8")
	f.mustSubmit(t, alice.UserID, "7")
	bobs := f.mustSubmit(t, bob.UserID, "7")

	result, err := f.cascade.DeleteUser(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.DeletedRatingCount)
	assert.Equal(t, alice.UserID, result.DeletedUser.UserID)
	assert.Equal(t, "alice", result.DeletedUser.Username)

	_, err = f.store.Users().FindByID(ctx, alice.UserID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	for _, media := range []string{"7", "8"} {
		listed, err := f.ratings.ListByMedia(ctx, media)
		require.NoError(t, err)
		for _, r := range listed {
			assert.NotEqual(t, alice.UserID, r.UserID)
		}
	}

	remaining, err := f.ratings.ListByMedia(ctx, "7")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, bobs.RatingID, remaining[0].RatingID)
}

func TestDeleteUser_NotFoundWritesNothing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.mustRegister(t, "alice", "a@x.com")
	f.mustSubmit(t, alice.UserID, "7")

	_, err := f.cascade.DeleteUser(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	users, err := f.store.Users().Count(ctx)
	require.NoError(t, err)
	ratings, err := f.store.Ratings().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), ratings)
}

func TestDeleteUser_SecondCallReportsNotFound(t *testing.T) {
	f := newFixture(t, nil)
	alice := f.mustRegister(t, "alice", "a@x.com")

	_, err := f.cascade.DeleteUser(context.Background(), alice.UserID)
	require.NoError(t, err)

	_, err = f.cascade.DeleteUser(context.Background(), alice.UserID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser_RetriesTransientFailures(t *testing.T) {
	mem := repository.NewMemoryStore()
	ratings := &flakyRatings{RatingRepository: mem.Ratings(), failures: 2}
	users := &flakyUsers{UserRepository: mem.Users(), failures: 1}
	f := newFixture(t, &faultyStore{Store: mem, ratings: ratings, users: users})

	alice := f.mustRegister(t, "alice", "a@x.com")
	f.mustSubmit(t, alice.UserID, "7")
	f.mustSubmit(t, alice.UserID, "7")

	result, err := f.cascade.DeleteUser(context.Background(), alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.DeletedRatingCount)
	assert.Equal(t, 2, users.calls)

	count, err := mem.Ratings().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteUser_PersistentFailureIsRetryable(t *testing.T) {
	mem := repository.NewMemoryStore()
	users := &flakyUsers{UserRepository: mem.Users(), failures: 3}
	f := newFixture(t, &faultyStore{Store: mem, users: users})
	ctx := context.Background()

	alice := f.mustRegister(t, "alice", "a@x.com")
	f.mustSubmit(t, alice.UserID, "7")

	_, err := f.cascade.DeleteUser(ctx, alice.UserID)
	assert.ErrorIs(t, err, ErrUnavailable)

	// Ratings went first, so the interrupted run left an owner without ratings.
	_, err = mem.Users().FindByID(ctx, alice.UserID)
	require.NoError(t, err)
	count, err := mem.Ratings().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	result, err := f.cascade.DeleteUser(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Zero(t, result.DeletedRatingCount)

	_, err = mem.Users().FindByID(ctx, alice.UserID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteUser_InvalidatesCachedMedia(t *testing.T) {
	store := repository.NewMemoryStore()
	cache := newRecordingCache()
	f := newFixture(t, store)
	f.cascade = NewCascadeCoordinator(store, cache, fastRetry(), quietLogger())

	alice := f.mustRegister(t, "alice", "a@x.com")
	f.mustSubmit(t, alice.UserID, "7")
	f.mustSubmit(t, alice.UserID, "9")
	f.mustSubmit(t, alice.UserID, "7")

	_, err := f.cascade.DeleteUser(context.Background(), alice.UserID)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"7", "9"}, cache.invalidated)
}

func TestScenario_SignupRateDelete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	alice, err := f.auth.Register(ctx, "alice", "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.UserID)

	bob, err := f.auth.Register(ctx, "bob", "b@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(2), bob.UserID)

	_, err = f.auth.Authenticate(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	id, err := f.auth.Authenticate(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.UserID)

	rating := f.mustSubmit(t, 1, "7")
	assert.Equal(t, int64(101), rating.RatingID)

	listed, err := f.ratings.ListByMedia(ctx, "7")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(101), listed[0].RatingID)

	result, err := f.admin.DeleteUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.DeletedRatingCount)

	listed, err = f.ratings.ListByMedia(ctx, "7")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestAdmin_GetUser(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.mustRegister(t, "alice", "a@x.com")
	first := f.mustSubmit(t, alice.UserID, "7")
	second := f.mustSubmit(t, alice.UserID, "8")

	detail, err := f.admin.GetUser(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice", detail.User.Username)
	require.Len(t, detail.Ratings, 2)
	assert.Equal(t, first.RatingID, detail.Ratings[0].RatingID)
	assert.Equal(t, second.RatingID, detail.Ratings[1].RatingID)

	_, err = f.admin.GetUser(ctx, 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser_SubmitRacingCascadeLeavesNoRating(t *testing.T) {
	mem := repository.NewMemoryStore()
	gate := newGatedCounters(mem.Counters())
	f := newFixture(t, &faultyStore{Store: mem, counters: gate})
	ctx := context.Background()
	alice := f.mustRegister(t, "alice", "a@x.com")

	submitErr := make(chan error, 1)
	go func() {
		_, err := f.ratings.Submit(ctx, SubmitRatingInput{
			UserID:    alice.UserID,
			Rating:    7,
			Moviename: "X",
			MediaType: "movie",
			MediaID:   "7",
		})
		submitErr <- err
	}()

	// Submit has seen the user and is waiting for its rating id.
	<-gate.reached
	result, err := f.cascade.DeleteUser(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Zero(t, result.DeletedRatingCount)

	close(gate.release)
	err = <-submitErr
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "userId", verr.Field)

	owned, err := mem.Ratings().ListByUser(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Empty(t, owned)

	listed, err := f.ratings.ListByMedia(ctx, "7")
	require.NoError(t, err)
	assert.Empty(t, listed)
}
