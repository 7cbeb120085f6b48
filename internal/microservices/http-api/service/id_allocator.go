package service

import (
	"context"
	"log/slog"

	"cinerate/internal/microservices/http-api/repository"
	"cinerate/internal/observability/metrics"
)

// Counter kinds, one persisted counter record each.
const (
	KindUser   = "users"
	KindRating = "ratings"
)

var defaultIDBases = map[string]int64{
	KindUser:   1,
	KindRating: 101,
}

// IDAllocator hands out sequential ids backed by the store's atomic counters.
// It keeps no in-process state, so any number of service instances can share
// one store.
type IDAllocator struct {
	bases  map[string]int64
	logger *slog.Logger
}

func NewIDAllocator(logger *slog.Logger) *IDAllocator {
	return &IDAllocator{bases: defaultIDBases, logger: logger}
}

// NextID reserves the next id for kind. The counter holds how many ids were
// ever reserved, so id = base + count - 1. A reservation whose caller fails
// afterwards is burned, never reissued.
func (a *IDAllocator) NextID(ctx context.Context, counters repository.CounterRepository, kind string) (int64, error) {
	count, err := counters.Increment(ctx, kind)
	if err != nil {
		metrics.RecordIDAllocation(kind, "error")
		a.logger.Error("id allocation failed", slog.String("kind", kind), slog.String("error", err.Error()))
		return 0, unavailable("allocate "+kind+" id", err)
	}
	metrics.RecordIDAllocation(kind, "ok")

	base, ok := a.bases[kind]
	if !ok {
		base = 1
	}
	return base + count - 1, nil
}
