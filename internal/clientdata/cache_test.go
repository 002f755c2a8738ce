package clientdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stocktrader/internal/events"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := New()
	c.now = clock.Now
	return c, clock
}

func TestCache_GetSetExpiry(t *testing.T) {
	c, clock := newTestCache()

	c.Set(KeyPortfolio, "v1", TTLPortfolio)
	v, ok := c.Get(KeyPortfolio)
	require.True(t, ok)
	assert.Equal(t, "v1", v)

	clock.now = clock.now.Add(TTLPortfolio - time.Second)
	_, ok = c.Get(KeyPortfolio)
	assert.True(t, ok)

	clock.now = clock.now.Add(time.Second)
	_, ok = c.Get(KeyPortfolio)
	assert.False(t, ok, "expires exactly at TTL")
}

func TestCache_InvalidatePrefix(t *testing.T) {
	c, _ := newTestCache()
	c.Set(KeyPortfolio, 1, time.Minute)
	c.Set(KeySummary, 2, time.Minute)
	c.Set(KeyTransactions, 3, time.Minute)
	c.Set(KeyWatchlist, 4, time.Minute)

	assert.Equal(t, 3, c.InvalidatePrefix(KeyPortfolio))

	_, ok := c.Get(KeyWatchlist)
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Prune(t *testing.T) {
	c, clock := newTestCache()
	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)

	clock.now = clock.now.Add(time.Minute)
	assert.Equal(t, 1, c.Prune())
	assert.Equal(t, 1, c.Len())
}

func TestFetch(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]int, error) {
		calls++
		return []int{1, 2}, nil
	}

	v, err := Fetch(ctx, c, KeyPortfolio, time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, v)

	_, err = Fetch(ctx, c, KeyPortfolio, time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second read served from cache")

	c.Invalidate(KeyPortfolio)
	_, err = Fetch(ctx, c, KeyPortfolio, time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	_, err := Fetch(ctx, c, KeyWatchlist, time.Minute, func(context.Context) (string, error) {
		return "", errors.New("down")
	})
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestFetch_InvalidatedWhileLoading(t *testing.T) {
	tests := []struct {
		name       string
		invalidate func(c *Cache)
		stored     bool
	}{
		{"key", func(c *Cache) { c.Invalidate(KeySummary) }, false},
		{"prefix", func(c *Cache) { c.InvalidatePrefix(KeyPortfolio) }, false},
		{"clear", func(c *Cache) { c.Clear() }, false},
		{"other key", func(c *Cache) { c.Invalidate(KeyWatchlist) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCache()
			ctx := context.Background()

			v, err := Fetch(ctx, c, KeySummary, time.Minute, func(context.Context) (string, error) {
				tt.invalidate(c)
				return "before trade", nil
			})
			require.NoError(t, err)
			assert.Equal(t, "before trade", v, "caller still gets what it loaded")

			_, ok := c.Get(KeySummary)
			assert.Equal(t, tt.stored, ok)

			v, err = Fetch(ctx, c, KeySummary, time.Minute, func(context.Context) (string, error) {
				return "after trade", nil
			})
			require.NoError(t, err)
			if tt.stored {
				assert.Equal(t, "before trade", v)
			} else {
				assert.Equal(t, "after trade", v)
			}
		})
	}
}

func TestFetch_InvalidationBetweenLoadsOnlyBlocksTheOlderOne(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Fetch(ctx, c, KeyPortfolio, time.Minute, func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()
	<-started

	c.InvalidatePrefix(KeyPortfolio)
	_, err := Fetch(ctx, c, KeyPortfolio, time.Minute, func(context.Context) (int, error) { return 6, nil })
	require.NoError(t, err)

	close(release)
	<-done

	v, ok := c.Get(KeyPortfolio)
	require.True(t, ok)
	assert.Equal(t, 6, v)
}

func TestFetch_NilCache(t *testing.T) {
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := Fetch(context.Background(), nil, KeyWatchlist, time.Minute, func(context.Context) (int, error) {
			calls++
			return 1, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestInvalidator(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	m := events.NewManager(bus, zerolog.Nop())
	c, _ := newTestCache()
	NewInvalidator(c, zerolog.Nop()).Register(bus)

	fill := func() {
		c.Set(KeyPortfolio, 1, time.Minute)
		c.Set(KeySummary, 1, time.Minute)
		c.Set(KeyTransactions, 1, time.Minute)
		c.Set(KeyWatchlist, 1, time.Minute)
	}

	t.Run("trade drops portfolio resources", func(t *testing.T) {
		fill()
		m.Emit("trading", &events.TradeExecutedData{Symbol: "AAPL"})
		_, ok := c.Get(KeySummary)
		assert.False(t, ok)
		_, ok = c.Get(KeyWatchlist)
		assert.True(t, ok)
	})

	t.Run("funds drop portfolio resources", func(t *testing.T) {
		fill()
		m.Emit("account", &events.FundsChangedData{Amount: 10})
		_, ok := c.Get(KeyPortfolio)
		assert.False(t, ok)
	})

	t.Run("watchlist change drops watchlist only", func(t *testing.T) {
		fill()
		m.Emit("watchlist", &events.WatchlistChangedData{Action: "add", Symbol: "TSLA"})
		_, ok := c.Get(KeyWatchlist)
		assert.False(t, ok)
		_, ok = c.Get(KeyPortfolio)
		assert.True(t, ok)
	})

	t.Run("refresh keeps data, login clears", func(t *testing.T) {
		fill()
		m.Emit("session", &events.SessionChangedData{Reason: "refresh"})
		assert.Equal(t, 4, c.Len())
		m.Emit("session", &events.SessionChangedData{Reason: "login"})
		assert.Equal(t, 0, c.Len())
	})

	t.Run("logout clears everything", func(t *testing.T) {
		fill()
		m.Emit("session", &events.LoggedOutData{Username: "alice"})
		assert.Equal(t, 0, c.Len())
	})
}

func TestCleanupJob(t *testing.T) {
	c, clock := newTestCache()
	c.Set("a", 1, time.Second)
	c.Set("b", 1, time.Hour)
	clock.now = clock.now.Add(time.Minute)

	job := NewCleanupJob(c, zerolog.Nop())
	assert.Equal(t, "client_data_cleanup", job.Name())
	require.NoError(t, job.Run())
	assert.Equal(t, 1, c.Len())
}
