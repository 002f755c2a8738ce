package watchlist

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stocktrader/internal/api"
	"github.com/aristath/stocktrader/internal/clientdata"
	"github.com/aristath/stocktrader/internal/domain"
	"github.com/aristath/stocktrader/internal/events"
	testutil "github.com/aristath/stocktrader/internal/testing"
)

type creds struct{}

func (creds) Credentials() (string, string, bool) { return "watcher", "pw", true }

func setup(t *testing.T) (*Service, *testutil.Backend, *clientdata.Cache, *[]events.Event) {
	t.Helper()

	backend := testutil.NewBackend(t)
	backend.AddUser("watcher", "w@example.com", "pw", 0)

	var emitted []events.Event
	bus := events.NewBus(zerolog.Nop())
	bus.Subscribe(events.WatchlistChanged, func(e events.Event) { emitted = append(emitted, e) })

	cache := clientdata.New()
	client := api.NewClient(backend.URL(), creds{}, zerolog.Nop())
	return NewService(client, cache, events.NewManager(bus, zerolog.Nop()), zerolog.Nop()), backend, cache, &emitted
}

func symbols(items []domain.WatchlistItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Symbol
	}
	return out
}

func TestAdd_NormalizesAndRefetches(t *testing.T) {
	svc, backend, _, emitted := setup(t)

	res := svc.Add(context.Background(), "  tsla ")
	require.Empty(t, res.Error)
	assert.True(t, res.Changed)
	assert.Equal(t, []string{"TSLA"}, symbols(res.Items))
	assert.Equal(t, 1, backend.CallCount(http.MethodGet, "/api/watchlist"))

	require.Len(t, *emitted, 1)
	assert.Equal(t, "add", (*emitted)[0].Data.(*events.WatchlistChangedData).Action)
}

func TestAdd_BlankIsNoop(t *testing.T) {
	svc, backend, _, _ := setup(t)

	res := svc.Add(context.Background(), "   ")
	assert.False(t, res.Changed)
	assert.Empty(t, backend.Calls())
}

func TestAdd_DuplicateIsIdempotent(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	svc.Add(ctx, "AAPL")
	res := svc.Add(ctx, "aapl")
	require.Empty(t, res.Error)
	assert.Equal(t, []string{"AAPL"}, symbols(res.Items))
}

func TestAdd_ErrorMessages(t *testing.T) {
	svc, backend, _, emitted := setup(t)
	ctx := context.Background()

	res := svc.Add(ctx, "NOPE")
	assert.Equal(t, "Invalid stock symbol: NOPE", res.Error)
	assert.False(t, res.Changed)

	backend.Fail("POST /api/watchlist", http.StatusInternalServerError, "")
	assert.Equal(t, "Failed to add to watchlist", svc.Add(ctx, "AAPL").Error)
	assert.Empty(t, *emitted)
}

func TestRemove(t *testing.T) {
	svc, backend, _, _ := setup(t)
	ctx := context.Background()
	svc.Add(ctx, "AAPL")
	svc.Add(ctx, "MSFT")

	res := svc.Remove(ctx, "aapl")
	assert.True(t, res.Changed)
	assert.Equal(t, []string{"MSFT"}, symbols(res.Items))

	t.Run("failure is logged only", func(t *testing.T) {
		backend.ResetCalls()
		res := svc.Remove(ctx, "GOOGL")
		assert.False(t, res.Changed)
		assert.Empty(t, res.Error)
		assert.Equal(t, 0, backend.CallCount(http.MethodGet, "/api/watchlist"))
	})
}

func TestClearAll_RequiresConfirmation(t *testing.T) {
	svc, backend, _, _ := setup(t)
	ctx := context.Background()
	svc.Add(ctx, "AAPL")
	backend.ResetCalls()

	asked := false
	res := svc.ClearAll(ctx, func() bool { asked = true; return false })
	assert.True(t, asked)
	assert.False(t, res.Changed)
	assert.Equal(t, 0, backend.CallCount(http.MethodDelete, "/api/watchlist"))

	res = svc.ClearAll(ctx, nil)
	assert.False(t, res.Changed)
	assert.Equal(t, 0, backend.CallCount(http.MethodDelete, "/api/watchlist"))

	res = svc.ClearAll(ctx, Confirmed)
	assert.True(t, res.Changed)
	assert.Empty(t, res.Items)
	assert.Equal(t, 1, backend.CallCount(http.MethodDelete, "/api/watchlist"))
}

func TestList_UsesCacheUntilMutation(t *testing.T) {
	svc, backend, cache, _ := setup(t)
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)
	_, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.CallCount(http.MethodGet, "/api/watchlist"))

	svc.Add(ctx, "AMZN")
	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AMZN"}, symbols(items), "mutation refreshed the cached list")

	cache.Clear()
	_, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, backend.CallCount(http.MethodGet, "/api/watchlist"))
}

func TestIsWatchedAndToggle(t *testing.T) {
	svc, backend, _, _ := setup(t)
	ctx := context.Background()

	assert.False(t, svc.IsWatched(ctx, "TSLA"))

	svc.Toggle(ctx, "TSLA", false)
	assert.True(t, svc.IsWatched(ctx, "TSLA"))

	svc.Toggle(ctx, "TSLA", true)
	assert.False(t, svc.IsWatched(ctx, "TSLA"))

	backend.Fail("GET /api/watchlist/check/TSLA", http.StatusInternalServerError, "boom")
	assert.False(t, svc.IsWatched(ctx, "TSLA"))
}

func TestComputeStats(t *testing.T) {
	up, down, flat := 1.5, -0.25, 0.0
	items := []domain.WatchlistItem{
		{Symbol: "A", Change: &up},
		{Symbol: "B", Change: &down},
		{Symbol: "C", Change: &flat},
		{Symbol: "D"},
	}

	st := ComputeStats(items)
	assert.Equal(t, Stats{Total: 4, Gainers: 1, Losers: 1}, st)

	assert.True(t, IsPositive(items[0]))
	assert.False(t, IsPositive(items[1]))
	assert.True(t, IsPositive(items[2]))
	assert.True(t, IsPositive(items[3]))
}

func TestComputeStats_Fixtures(t *testing.T) {
	items := testutil.NewWatchlistFixtures()
	assert.Equal(t, Stats{Total: 3, Gainers: 1, Losers: 1}, ComputeStats(items))
	assert.False(t, items[2].HasQuote())
}
