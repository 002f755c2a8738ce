package portfolio

import (
	"context"
	"errors"
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

type staticCreds struct{ username, password string }

func (c staticCreds) Credentials() (string, string, bool) { return c.username, c.password, true }

func setup(t *testing.T) (*Service, *api.Client, *testutil.Backend, *clientdata.Cache) {
	t.Helper()
	backend := testutil.NewBackend(t)
	backend.AddUser("investor", "i@example.com", "pw", 10000)
	client := api.NewClient(backend.URL(), staticCreds{"investor", "pw"}, zerolog.Nop())
	cache := clientdata.New()
	return NewService(client, cache, zerolog.Nop()), client, backend, cache
}

func TestHoldings_CachedUntilInvalidated(t *testing.T) {
	svc, client, backend, _ := setup(t)
	ctx := context.Background()

	_, err := client.BuyStock(ctx, domain.TradeRequest{Symbol: "AAPL", Quantity: 2})
	require.NoError(t, err)

	h, err := svc.Holdings(ctx)
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, 300.0, h[0].TotalValue)

	_, err = svc.Holdings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.CallCount(http.MethodGet, "/api/portfolio"))

	svc.Invalidate()
	_, err = svc.Holdings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.CallCount(http.MethodGet, "/api/portfolio"))
}

func TestSummary(t *testing.T) {
	svc, client, _, _ := setup(t)
	ctx := context.Background()

	_, err := client.BuyStock(ctx, domain.TradeRequest{Symbol: "MSFT", Quantity: 1})
	require.NoError(t, err)

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 10000-380, sum.CashBalance, 0.01)
	assert.InDelta(t, 380, sum.PortfolioValue, 0.01)
	assert.InDelta(t, 10000, sum.TotalValue, 0.01)
}

func TestErrorsAreNotCached(t *testing.T) {
	svc, _, backend, cache := setup(t)
	ctx := context.Background()

	backend.Fail("GET /api/portfolio/summary", http.StatusInternalServerError, "")
	_, err := svc.Summary(ctx)
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch portfolio summary", api.ErrorMessage(err, "Failed to fetch portfolio summary"))
	assert.Equal(t, 0, cache.Len())

	backend.ClearFailures()
	_, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
}

func TestTransactions(t *testing.T) {
	svc, client, _, _ := setup(t)
	ctx := context.Background()

	_, err := client.BuyStock(ctx, domain.TradeRequest{Symbol: "AAPL", Quantity: 3})
	require.NoError(t, err)
	_, err = client.BuyStock(ctx, domain.TradeRequest{Symbol: "TSLA", Quantity: 1})
	require.NoError(t, err)
	_, err = client.SellStock(ctx, domain.TradeRequest{Symbol: "AAPL", Quantity: 1})
	require.NoError(t, err)

	all, err := svc.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	aapl, err := svc.TransactionsBySymbol(ctx, "aapl")
	require.NoError(t, err)
	require.Len(t, aapl, 2)
	for _, tx := range aapl {
		assert.Equal(t, "AAPL", tx.Symbol)
	}
}

func TestNilCacheAlwaysFetches(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.AddUser("investor", "i@example.com", "pw", 10000)
	client := api.NewClient(backend.URL(), staticCreds{"investor", "pw"}, zerolog.Nop())
	svc := NewService(client, nil, zerolog.Nop())

	for i := 0; i < 2; i++ {
		_, err := svc.Holdings(context.Background())
		require.NoError(t, err)
	}
	svc.Invalidate()
	assert.Equal(t, 2, backend.CallCount(http.MethodGet, "/api/portfolio"))
}

func TestService_WithMockClient(t *testing.T) {
	mock := testutil.NewMockPortfolioClient(testutil.NewHoldingFixtures(), testutil.NewTransactionFixtures())
	svc := NewService(mock, clientdata.New(), zerolog.Nop())
	ctx := context.Background()

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1500+1140+500, sum.PortfolioValue, 0.01)

	txs, err := svc.TransactionsBySymbol(ctx, " tsla ")
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	rows := TransactionRows(txs)
	assert.Equal(t, domain.SideSell, rows[0].Type, "newest first")

	mock.SetError(errors.New("boom"))
	_, err = svc.Summary(ctx)
	assert.NoError(t, err, "served from cache")
	svc.Invalidate()
	_, err = svc.Summary(ctx)
	assert.Error(t, err)
	assert.Equal(t, 2, mock.Calls("PortfolioSummary"))
}

type gatedClient struct {
	*testutil.MockPortfolioClient
	entered chan struct{}
	release chan struct{}
}

func (g *gatedClient) Portfolio(ctx context.Context) ([]domain.Holding, error) {
	holdings, err := g.MockPortfolioClient.Portfolio(ctx)
	close(g.entered)
	<-g.release
	return holdings, err
}

func TestHoldings_TradeDuringLoadIsNotCached(t *testing.T) {
	ctx := context.Background()
	mock := testutil.NewMockPortfolioClient([]domain.Holding{testutil.NewHoldingFixture("AAPL", 1, 100, 150)}, nil)
	gated := &gatedClient{MockPortfolioClient: mock, entered: make(chan struct{}), release: make(chan struct{})}

	cache := clientdata.New()
	bus := events.NewBus(zerolog.Nop())
	clientdata.NewInvalidator(cache, zerolog.Nop()).Register(bus)
	manager := events.NewManager(bus, zerolog.Nop())

	svc := NewService(gated, cache, zerolog.Nop())

	done := make(chan []domain.Holding, 1)
	go func() {
		h, _ := svc.Holdings(ctx)
		done <- h
	}()
	<-gated.entered

	mock.SetHoldings([]domain.Holding{testutil.NewHoldingFixture("AAPL", 6, 100, 150)})
	manager.Emit("trading", &events.TradeExecutedData{Symbol: "AAPL", Side: "BUY", Quantity: 5})
	close(gated.release)

	stale := <-done
	require.Len(t, stale, 1)
	assert.Equal(t, 1, stale[0].Quantity)

	fresh, err := NewService(mock, cache, zerolog.Nop()).Holdings(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, 6, fresh[0].Quantity)
}
