package database

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"cinerate/internal/config"
	"cinerate/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenStore_Memory(t *testing.T) {
	store, closer, err := OpenStore(context.Background(), &config.Config{StoreDriver: "memory"}, quietLogger())
	require.NoError(t, err)

	assert.IsType(t, &repository.MemoryStore{}, store)
	assert.NoError(t, store.Ping(context.Background()))
	assert.NoError(t, closer(context.Background()))
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, _, err := OpenStore(context.Background(), &config.Config{StoreDriver: "sqlite"}, quietLogger())
	assert.ErrorContains(t, err, `unknown store driver "sqlite"`)
}

func TestOpenRedis_Disabled(t *testing.T) {
	_, err := OpenRedis(context.Background(), "", "", quietLogger())
	assert.ErrorIs(t, err, ErrRedisDisabled)
}

func TestOpenRedis_InvalidURL(t *testing.T) {
	_, err := OpenRedis(context.Background(), "http://not-redis", "", quietLogger())
	assert.ErrorContains(t, err, "invalid redis url")
}
