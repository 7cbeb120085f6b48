package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"cinerate/internal/config"
	"cinerate/internal/microservices/http-api/models"
	"cinerate/internal/microservices/http-api/repository"
	"cinerate/internal/reliability/retry"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var errStoreDown = errors.New("connection refused")

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:  "test-secret-with-at-least-32-characters",
		JWTExpiry:  24 * time.Hour,
		JWTIssuer:  "cinerate-test",
		BcryptCost: bcrypt.MinCost,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastRetry() *retry.Config {
	return &retry.Config{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, BackoffMultiplier: 2}
}

type fixture struct {
	store   repository.Store
	auth    AuthService
	ratings RatingService
	cascade *CascadeCoordinator
	admin   AdminService
}

func newFixture(t *testing.T, store repository.Store) *fixture {
	t.Helper()
	if store == nil {
		store = repository.NewMemoryStore()
	}
	log := quietLogger()
	ids := NewIDAllocator(log)
	ratings := NewRatingService(store, ids, nil, log)
	cascade := NewCascadeCoordinator(store, nil, fastRetry(), log)
	return &fixture{
		store:   store,
		auth:    NewAuthService(store, ids, testConfig(), log),
		ratings: ratings,
		cascade: cascade,
		admin:   NewAdminService(store, ratings, cascade),
	}
}

func (f *fixture) mustRegister(t *testing.T, username, email string) *models.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), username, email, "pw")
	require.NoError(t, err)
	return user
}

func (f *fixture) mustSubmit(t *testing.T, userID int64, mediaID string) *models.Rating {
	t.Helper()
	rating, err := f.ratings.Submit(context.Background(), SubmitRatingInput{
		UserID:    userID,
		Rating:    7,
		Moviename: "X",
		MediaType: "movie",
		MediaID:   mediaID,
	})
	require.NoError(t, err)
	return rating
}

// MockCounterRepository mocks the CounterRepository interface
type MockCounterRepository struct {
	mock.Mock
}

func (m *MockCounterRepository) Increment(ctx context.Context, kind string) (int64, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(int64), args.Error(1)
}

// faultyStore swaps individual repositories of a working store.
type faultyStore struct {
	repository.Store
	users    repository.UserRepository
	ratings  repository.RatingRepository
	counters repository.CounterRepository
}

func (f *faultyStore) Users() repository.UserRepository {
	if f.users != nil {
		return f.users
	}
	return f.Store.Users()
}

func (f *faultyStore) Ratings() repository.RatingRepository {
	if f.ratings != nil {
		return f.ratings
	}
	return f.Store.Ratings()
}

func (f *faultyStore) Counters() repository.CounterRepository {
	if f.counters != nil {
		return f.counters
	}
	return f.Store.Counters()
}

func (f *faultyStore) Atomic(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(f)
}

// flakyRatings fails DeleteByUser a fixed number of times before delegating.
type flakyRatings struct {
	repository.RatingRepository
	mu       sync.Mutex
	failures int
	calls    int
}

func (r *flakyRatings) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	r.calls++
	fail := r.calls <= r.failures
	r.mu.Unlock()
	if fail {
		return 0, errStoreDown
	}
	return r.RatingRepository.DeleteByUser(ctx, userID)
}

// flakyUsers fails Delete a fixed number of times before delegating.
type flakyUsers struct {
	repository.UserRepository
	failures int
	calls    int
}

func (r *flakyUsers) Delete(ctx context.Context, userID int64) (*models.User, error) {
	r.calls++
	if r.calls <= r.failures {
		return nil, errStoreDown
	}
	return r.UserRepository.Delete(ctx, userID)
}

// recordingCache is an in-memory RatingCache that remembers invalidations.
// Like the Redis cache, an entry is only served under the generation it was
// written for.
type recordingCache struct {
	mu          sync.Mutex
	entries     map[string][]models.Rating
	written     map[string]int64
	generations map[string]int64
	invalidated []string
	gets        int
	failReads   bool
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		entries:     map[string][]models.Rating{},
		written:     map[string]int64{},
		generations: map[string]int64{},
	}
}

func (c *recordingCache) GetMediaRatings(ctx context.Context, mediaID string) ([]models.Rating, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failReads {
		return nil, 0, false, errors.New("redis: connection pool timeout")
	}
	gen := c.generations[mediaID]
	r, ok := c.entries[mediaID]
	if !ok || c.written[mediaID] != gen {
		return nil, gen, false, nil
	}
	return r, gen, true, nil
}

func (c *recordingCache) SetMediaRatings(ctx context.Context, mediaID string, generation int64, ratings []models.Rating) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[mediaID] = ratings
	c.written[mediaID] = generation
	return nil
}

func (c *recordingCache) InvalidateMedia(ctx context.Context, mediaIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range mediaIDs {
		c.generations[id]++
		delete(c.entries, id)
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

// gatedCounters blocks rating id allocation until release is closed.
type gatedCounters struct {
	repository.CounterRepository
	reached chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedCounters(inner repository.CounterRepository) *gatedCounters {
	return &gatedCounters{CounterRepository: inner, reached: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedCounters) Increment(ctx context.Context, kind string) (int64, error) {
	if kind == KindRating {
		g.once.Do(func() { close(g.reached) })
		<-g.release
	}
	return g.CounterRepository.Increment(ctx, kind)
}

// hookedRatings runs afterList once, between reading a media list from the
// store and returning it.
type hookedRatings struct {
	repository.RatingRepository
	once      sync.Once
	afterList func()
}

func (r *hookedRatings) ListByMedia(ctx context.Context, mediaID string) ([]models.Rating, error) {
	ratings, err := r.RatingRepository.ListByMedia(ctx, mediaID)
	if r.afterList != nil {
		r.once.Do(r.afterList)
	}
	return ratings, err
}
