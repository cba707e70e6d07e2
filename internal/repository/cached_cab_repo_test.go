package repository

import (
	"context"
	"testing"
	"time"

	"cab_booking/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedCabRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	ctx := context.Background()
	store := NewMemoryStore()
	cabs := NewCachedCabRepository(store.Cabs, client, time.Minute, zerolog.Nop())
	store.Cabs = cabs

	cab := seedCab(t, store, "KA-1")

	t.Run("ReadThrough", func(t *testing.T) {
		list, err := cabs.FindAvailable(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.True(t, s.Exists(cabsAvailableKey))
	})

	t.Run("ServesFromCache", func(t *testing.T) {
		// Bypass the decorator so only the backing store changes.
		require.NoError(t, cabs.CabRepository.SetAvailability(ctx, cab.ID, false))

		list, err := cabs.FindAvailable(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("ClaimInvalidates", func(t *testing.T) {
		require.NoError(t, cabs.SetAvailability(ctx, cab.ID, true))
		assert.False(t, s.Exists(cabsAvailableKey))

		_, err := cabs.FindAll(ctx)
		require.NoError(t, err)
		assert.True(t, s.Exists(cabsAllKey))

		claimed, err := cabs.Claim(ctx, cab.ID)
		require.NoError(t, err)
		require.NotNil(t, claimed)
		assert.False(t, s.Exists(cabsAllKey))

		list, err := cabs.FindAvailable(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("RedisDown", func(t *testing.T) {
		s.SetError("server down")
		defer s.SetError("")

		list, err := cabs.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, PingRedis(ctx, client))
	})
}

// invalidatingCabs runs a write while a listing is being loaded
type invalidatingCabs struct {
	CabRepository
	duringLoad func()
}

func (r *invalidatingCabs) FindAvailable(ctx context.Context) ([]model.Cab, error) {
	list, err := r.CabRepository.FindAvailable(ctx)
	if r.duringLoad != nil {
		r.duringLoad()
	}
	return list, err
}

func TestCachedCabRepositorySkipsStaleFill(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	store := NewMemoryStore()
	cab := seedCab(t, store, "KA-1")

	backing := &invalidatingCabs{CabRepository: store.Cabs}
	cabs := NewCachedCabRepository(backing, client, time.Minute, zerolog.Nop())
	backing.duringLoad = func() {
		claimed, err := cabs.Claim(ctx, cab.ID)
		require.NoError(t, err)
		require.NotNil(t, claimed)
	}

	list, err := cabs.FindAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "the caller still gets what it loaded")
	assert.False(t, s.Exists(cabsAvailableKey), "a fill that raced an invalidation must not be stored")

	backing.duringLoad = nil
	list, err = cabs.FindAvailable(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.True(t, s.Exists(cabsAvailableKey))
}
