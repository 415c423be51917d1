package cache_test

import (
	"errors"
	"testing"
	"time"

	"github.com/relaymesh/switchboard/internal/cache"
	"github.com/relaymesh/switchboard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathCache_MissThenHit(t *testing.T) {
	c := cache.New()
	calls := 0
	compute := func(payload string) (models.RoutingDecision, error) {
		calls++
		return models.NewRoutingDecision("billing-service", 0.9, "computed"), nil
	}

	_, err := c.Decide("route me", compute)
	require.NoError(t, err)
	_, err = c.Decide("route me", compute)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

func TestPathCache_ExpiresAfterTTL(t *testing.T) {
	c := cache.New(cache.WithTTL(5 * time.Millisecond))
	calls := 0
	compute := func(payload string) (models.RoutingDecision, error) {
		calls++
		return models.NewRoutingDecision("billing-service", 0.9, "computed"), nil
	}

	_, err := c.Decide("route me", compute)
	require.NoError(t, err)
	time.Sleep(15 * time.Millisecond)
	_, err = c.Decide("route me", compute)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestPathCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := cache.New(cache.WithMaxSize(2))
	compute := func(service string) cache.Decide {
		return func(payload string) (models.RoutingDecision, error) {
			return models.NewRoutingDecision(service, 0.9, "computed"), nil
		}
	}

	_, _ = c.Decide("a", compute("svc-a"))
	_, _ = c.Decide("b", compute("svc-b"))
	_, _ = c.Decide("a", compute("svc-a")) // touch "a", making "b" the LRU entry
	_, _ = c.Decide("c", compute("svc-c")) // evicts "b"

	assert.Equal(t, 2, c.Stats().Size)

	calls := 0
	trackingCompute := func(payload string) (models.RoutingDecision, error) {
		calls++
		return models.NewRoutingDecision("svc-b", 0.9, "recomputed"), nil
	}
	_, _ = c.Decide("b", trackingCompute)
	assert.Equal(t, 1, calls, "expected 'b' to have been evicted and recomputed")
}

func TestPathCache_ErrorIsNotCached(t *testing.T) {
	c := cache.New()
	wantErr := errors.New("boom")
	calls := 0
	compute := func(payload string) (models.RoutingDecision, error) {
		calls++
		return models.RoutingDecision{}, wantErr
	}

	_, err := c.Decide("route me", compute)
	require.ErrorIs(t, err, wantErr)
	_, err = c.Decide("route me", compute)
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 2, calls)
}

func TestPathCache_StatsSnapshotWithNoActivity(t *testing.T) {
	c := cache.New()
	stats := c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, 0.0, stats.HitRate)
}
