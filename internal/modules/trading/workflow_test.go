package trading

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stocktrader/internal/api"
	"github.com/aristath/stocktrader/internal/domain"
	"github.com/aristath/stocktrader/internal/events"
	"github.com/aristath/stocktrader/internal/session"
	testutil "github.com/aristath/stocktrader/internal/testing"
)

type fixture struct {
	backend *testutil.Backend
	client  *api.Client
	store   *session.Store
	events  *events.Manager
	trades  []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := testutil.NewBackend(t)
	db, cleanup := testutil.NewTestDB(t, "state")
	t.Cleanup(cleanup)

	f := &fixture{backend: backend}
	bus := events.NewBus(zerolog.Nop())
	bus.Subscribe(events.TradeExecuted, func(e events.Event) { f.trades = append(f.trades, e) })
	f.events = events.NewManager(bus, zerolog.Nop())

	f.client = api.NewClient(backend.URL(), nil, zerolog.Nop())
	f.store = session.NewStore(f.client, session.NewRepository(db.Conn()), f.events, zerolog.Nop())
	f.client.SetCredentialSource(f.store)

	backend.AddUser("trader", "t@example.com", "pw", 1000)
	require.True(t, f.store.Login(context.Background(), "trader", "pw").Success)
	return f
}

func (f *fixture) workflow(delay time.Duration) *Workflow {
	return NewWorkflow(f.client, f.store, f.events, delay, zerolog.Nop())
}

func (f *fixture) tradeCalls() int {
	return f.backend.CallCount(http.MethodPost, "/api/trades/buy") +
		f.backend.CallCount(http.MethodPost, "/api/trades/sell")
}

func TestOpen_Defaults(t *testing.T) {
	f := newFixture(t)
	w := f.workflow(0)

	assert.Equal(t, StateClosed, w.Snapshot().State)

	w.Open(domain.SideBuy, "aapl", 150, nil)
	snap := w.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, "AAPL", snap.Symbol)
	assert.Equal(t, "1", snap.Quantity)
	assert.Equal(t, 150.0, snap.Total)
	assert.Empty(t, snap.Error)
	assert.Empty(t, snap.Message)
}

func TestTotal_IsExactProduct(t *testing.T) {
	f := newFixture(t)
	w := f.workflow(0)
	w.Open(domain.SideBuy, "AAPL", 19.99, nil)

	w.SetQuantity("3")
	assert.Equal(t, 19.99*3, w.Total())

	w.SetQuantity("abc")
	assert.Equal(t, 0.0, w.Total())
}

func TestSubmit_InvalidQuantityNeverCallsBackend(t *testing.T) {
	f := newFixture(t)
	w := f.workflow(0)

	for _, q := range []string{"0", "-3", "", "abc"} {
		t.Run(q, func(t *testing.T) {
			w.Open(domain.SideBuy, "AAPL", 150, nil)
			w.SetQuantity(q)

			err := w.Submit(context.Background())
			assert.ErrorIs(t, err, ErrInvalidQuantity)
			snap := w.Snapshot()
			assert.Equal(t, StateFailed, snap.State)
			assert.Equal(t, "Quantity must be greater than 0", snap.Error)
		})
	}
	assert.Equal(t, 0, f.tradeCalls())
}

func TestSubmit_BuyReconcilesBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.SetPrice("AAPL", 20)

	_, err := f.client.AddFunds(ctx, 100)
	require.NoError(t, err)
	require.NoError(t, f.store.Refresh(ctx))
	before, _ := f.store.Current()

	var closed atomic.Bool
	w := f.workflow(10 * time.Millisecond)
	w.Open(domain.SideBuy, "AAPL", 20, func() { closed.Store(true) })
	w.SetQuantity("5")
	require.NoError(t, w.Submit(ctx))

	snap := w.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	assert.Equal(t, "Successfully bought 5 shares of AAPL", snap.Message)
	assert.Empty(t, snap.Warning)

	after, _ := f.store.Current()
	assert.InDelta(t, before.Balance-100, after.Balance, 0.01)
	assert.InDelta(t, 1000.0, after.Balance, 0.01, "1000 + 100 deposit - 5 × 20")

	require.Len(t, f.trades, 1)
	data := f.trades[0].Data.(*events.TradeExecutedData)
	assert.Equal(t, "AAPL", data.Symbol)
	assert.Equal(t, 5, data.Quantity)

	require.Eventually(t, closed.Load, time.Second, 5*time.Millisecond)
	assert.Equal(t, StateClosed, w.Snapshot().State)
}

func TestSubmit_Sell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.client.BuyStock(ctx, domain.TradeRequest{Symbol: "MSFT", Quantity: 2})
	require.NoError(t, err)

	w := f.workflow(time.Hour)
	w.Open(domain.SideSell, "MSFT", 380, nil)
	w.SetQuantity("2")
	require.NoError(t, w.Submit(ctx))
	assert.Equal(t, "Successfully sold 2 shares of MSFT", w.Snapshot().Message)
	w.Cancel()
}

func TestSubmit_BackendFailureKeepsFormOpen(t *testing.T) {
	f := newFixture(t)
	w := f.workflow(0)
	w.Open(domain.SideSell, "TSLA", 250, nil)

	err := w.Submit(context.Background())
	require.Error(t, err)

	snap := w.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, "Insufficient shares", snap.Error)
	assert.Equal(t, "1", snap.Quantity)

	w.SetQuantity("2")
	snap = w.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Error)
}

func TestSubmit_FallbackMessage(t *testing.T) {
	f := newFixture(t)
	f.backend.Fail("POST /api/trades/buy", http.StatusInternalServerError, "")
	w := f.workflow(0)
	w.Open(domain.SideBuy, "AAPL", 150, nil)

	require.Error(t, w.Submit(context.Background()))
	assert.Equal(t, "Trade failed", w.Snapshot().Error)
}

func TestSubmit_RefreshFailureIsAWarning(t *testing.T) {
	f := newFixture(t)
	f.backend.Fail("GET /api/auth/me", http.StatusServiceUnavailable, "down")
	w := f.workflow(time.Hour)
	w.Open(domain.SideBuy, "AAPL", 150, nil)

	require.NoError(t, w.Submit(context.Background()))
	snap := w.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	assert.Equal(t, "Balance may be out of date", snap.Warning)
	_, stale := f.store.Stale()
	assert.True(t, stale)
	w.Cancel()
}

func TestCancel_StopsDeferredClose(t *testing.T) {
	f := newFixture(t)
	var closed atomic.Bool
	w := f.workflow(20 * time.Millisecond)
	w.Open(domain.SideBuy, "AAPL", 150, func() { closed.Store(true) })

	require.NoError(t, w.Submit(context.Background()))
	w.Cancel()

	time.Sleep(60 * time.Millisecond)
	assert.False(t, closed.Load())
	snap := w.Snapshot()
	assert.Equal(t, StateClosed, snap.State)
	assert.Empty(t, snap.Quantity)
	assert.Empty(t, snap.Message)
}

func TestSubmit_NotOpen(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.workflow(0).Submit(context.Background()), ErrNotOpen)
}

type blockingClient struct {
	release chan struct{}
	entered chan struct{}
}

func (b *blockingClient) PlaceOrder(ctx context.Context, side domain.TradeSide, req domain.TradeRequest) (domain.TradeResponse, error) {
	close(b.entered)
	<-b.release
	return domain.TradeResponse{Transaction: domain.Transaction{Symbol: req.Symbol, Quantity: req.Quantity}}, nil
}

func TestSubmit_WhileSubmittingIsRejected(t *testing.T) {
	client := &blockingClient{release: make(chan struct{}), entered: make(chan struct{})}
	m := events.NewManager(events.NewBus(zerolog.Nop()), zerolog.Nop())
	sess := testutil.NewMockSessionProvider(testutil.NewUserFixture())
	w := NewWorkflow(client, sess, m, time.Hour, zerolog.Nop())
	w.Open(domain.SideBuy, "AAPL", 150, nil)

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.Background()) }()
	<-client.entered

	assert.Equal(t, StateSubmitting, w.Snapshot().State)
	assert.ErrorIs(t, w.Submit(context.Background()), ErrBusy)

	close(client.release)
	require.NoError(t, <-done)
	assert.Equal(t, StateSucceeded, w.Snapshot().State)
	assert.Equal(t, 1, sess.Refreshes())
	w.Cancel()
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"5", 5, true},
		{" 7 ", 7, true},
		{"2.5", 2, true},
		{"12abc", 12, true},
		{"-4", -4, true},
		{"+3", 3, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{"99999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseQuantity(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
