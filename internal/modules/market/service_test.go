package market

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stocktrader/internal/api"
	"github.com/aristath/stocktrader/internal/domain"
	testutil "github.com/aristath/stocktrader/internal/testing"
)

func setup(t *testing.T) (*Service, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend(t)
	return NewService(api.NewClient(backend.URL(), nil, zerolog.Nop()), zerolog.Nop()), backend
}

func TestSearch(t *testing.T) {
	svc, _ := setup(t)

	q, err := svc.Search(context.Background(), " aapl ")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, 150.0, q.CurrentPrice)
	assert.Equal(t, 1.0, q.Change)
	assert.InDelta(t, 1.0/149.0*100, q.ChangePercent, 1e-9)
	assert.True(t, q.IsPositive())
}

func TestSearch_EmptyMakesNoCall(t *testing.T) {
	svc, backend := setup(t)

	_, err := svc.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptySymbol)
	assert.Empty(t, backend.Calls())
}

func TestSearch_Errors(t *testing.T) {
	svc, backend := setup(t)
	ctx := context.Background()

	_, err := svc.Search(ctx, "nope")
	var se *SearchError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "NOPE", se.Symbol)
	assert.Equal(t, "Invalid stock symbol: NOPE", se.Message)

	backend.Fail("GET /api/stocks/quote/AAPL", http.StatusBadGateway, "")
	_, err = svc.Search(ctx, "AAPL")
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Stock not found", se.Message)
	assert.False(t, api.IsUnauthorized(err))
}

func TestValidate(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	ok, err := svc.Validate(ctx, "msft")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Validate(ctx, "ZZZZ")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Validate(ctx, "")
	assert.ErrorIs(t, err, ErrEmptySymbol)
}

func TestQuotes(t *testing.T) {
	svc, backend := setup(t)
	ctx := context.Background()

	quotes, err := svc.Quotes(ctx, []string{"aapl", " ", "TSLA", "NOPE"})
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
	assert.Equal(t, 1.0, quotes["TSLA"].Change)

	backend.ResetCalls()
	quotes, err = svc.Quotes(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, quotes)
	assert.Empty(t, backend.Calls())
}

func TestQuoteResolvesMissingChange(t *testing.T) {
	q := resolve(domain.StockQuote{Symbol: "X", CurrentPrice: 90, PreviousClose: 100})
	assert.Equal(t, -10.0, q.Change)
	assert.Equal(t, -10.0, q.ChangePercent)
	assert.False(t, q.IsPositive())

	q = resolve(domain.StockQuote{Symbol: "Y", CurrentPrice: 90})
	assert.Equal(t, 0.0, q.Change)
	assert.True(t, q.IsPositive())
}

func TestPopularSymbols(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "TSLA", "GOOGL", "MSFT", "AMZN", "META", "NVDA"}, PopularSymbols)
}
