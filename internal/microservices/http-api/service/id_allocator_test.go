package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"cinerate/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestIDAllocator_Bases(t *testing.T) {
	ids := NewIDAllocator(quietLogger())
	counters := repository.NewMemoryStore().Counters()
	ctx := context.Background()

	u1, err := ids.NextID(ctx, counters, KindUser)
	require.NoError(t, err)
	u2, err := ids.NextID(ctx, counters, KindUser)
	require.NoError(t, err)
	r1, err := ids.NextID(ctx, counters, KindRating)
	require.NoError(t, err)

	assert.Equal(t, int64(1), u1)
	assert.Equal(t, int64(2), u2)
	assert.Equal(t, int64(101), r1)
}

func TestIDAllocator_ConcurrentCallersGetConsecutiveIDs(t *testing.T) {
	ids := NewIDAllocator(quietLogger())
	counters := repository.NewMemoryStore().Counters()

	const n = 100
	got := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := ids.NextID(context.Background(), counters, KindRating)
			assert.NoError(t, err)
			got[i] = id
		}(i)
	}
	wg.Wait()

	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, id := range got {
		assert.Equal(t, int64(101+i), id)
	}
}

func TestIDAllocator_StoreFailureIsUnavailable(t *testing.T) {
	counters := new(MockCounterRepository)
	counters.On("Increment", mock.Anything, KindUser).Return(int64(0), errStoreDown)

	_, err := NewIDAllocator(quietLogger()).NextID(context.Background(), counters, KindUser)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, errStoreDown)
	counters.AssertExpectations(t)
}

func TestIDAllocator_UsesCounterValue(t *testing.T) {
	counters := new(MockCounterRepository)
	counters.On("Increment", mock.Anything, KindRating).Return(int64(5), nil).Once()

	id, err := NewIDAllocator(quietLogger()).NextID(context.Background(), counters, KindRating)

	require.NoError(t, err)
	assert.Equal(t, int64(105), id)
	counters.AssertExpectations(t)
}
