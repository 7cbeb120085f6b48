package repository

import (
	"context"
	"sort"
	"sync"

	"cinerate/internal/microservices/http-api/models"
)

// MemoryStore is a single-process Store for local development and tests.
// All three collections share one mutex.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[int64]models.User
	emails   map[string]int64
	ratings  map[int64]models.Rating
	counters map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]models.User),
		emails:   make(map[string]int64),
		ratings:  make(map[int64]models.Rating),
		counters: make(map[string]int64),
	}
}

func (s *MemoryStore) Users() UserRepository       { return memoryUsers{s} }
func (s *MemoryStore) Ratings() RatingRepository   { return memoryRatings{s} }
func (s *MemoryStore) Counters() CounterRepository { return memoryCounters{s} }

func (s *MemoryStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	return fn(s)
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.UserID]; ok {
		return ErrDuplicate
	}
	if _, ok := r.s.emails[user.Email]; ok {
		return ErrDuplicate
	}
	r.s.users[user.UserID] = *user
	r.s.emails[user.Email] = user.UserID
	return nil
}

func (r memoryUsers) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r memoryUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	user := r.s.users[id]
	return &user, nil
}

func (r memoryUsers) List(ctx context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users, nil
}

func (r memoryUsers) Delete(ctx context.Context, userID int64) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.s.users, userID)
	delete(r.s.emails, user.Email)
	return &user, nil
}

func (r memoryUsers) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

type memoryRatings struct{ s *MemoryStore }

func (r memoryRatings) Create(ctx context.Context, rating *models.Rating) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.ratings[rating.RatingID]; ok {
		return ErrDuplicate
	}
	r.s.ratings[rating.RatingID] = *rating
	return nil
}

func (r memoryRatings) FindByID(ctx context.Context, ratingID int64) (*models.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rating, ok := r.s.ratings[ratingID]
	if !ok {
		return nil, ErrNotFound
	}
	return &rating, nil
}

func (r memoryRatings) ListByMedia(ctx context.Context, mediaID string) ([]models.Rating, error) {
	return r.filter(func(rt models.Rating) bool { return rt.MediaID == mediaID }), nil
}

func (r memoryRatings) ListByUser(ctx context.Context, userID int64) ([]models.Rating, error) {
	return r.filter(func(rt models.Rating) bool { return rt.UserID == userID }), nil
}

func (r memoryRatings) filter(keep func(models.Rating) bool) []models.Rating {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []models.Rating{}
	for _, rt := range r.s.ratings {
		if keep(rt) {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RatingID < out[j].RatingID })
	return out
}

func (r memoryRatings) Delete(ctx context.Context, ratingID int64) (*models.Rating, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rating, ok := r.s.ratings[ratingID]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.s.ratings, ratingID)
	return &rating, nil
}

func (r memoryRatings) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, rt := range r.s.ratings {
		if rt.UserID == userID {
			delete(r.s.ratings, id)
			n++
		}
	}
	return n, nil
}

func (r memoryRatings) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.ratings)), nil
}

type memoryCounters struct{ s *MemoryStore }

func (r memoryCounters) Increment(ctx context.Context, kind string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.counters[kind]++
	return r.s.counters[kind], nil
}
