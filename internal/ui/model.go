// Package ui is the terminal shell: it gates pages behind the session, renders
// the active page and drives the workflows from key presses.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/aristath/stocktrader/internal/domain"
	"github.com/aristath/stocktrader/internal/modules/account"
	"github.com/aristath/stocktrader/internal/modules/market"
	"github.com/aristath/stocktrader/internal/modules/portfolio"
	"github.com/aristath/stocktrader/internal/modules/trading"
	"github.com/aristath/stocktrader/internal/modules/watchlist"
	"github.com/aristath/stocktrader/internal/session"
)

// Services are the workflows the shell drives. All are required.
type Services struct {
	Session   *session.Store
	Portfolio *portfolio.Service
	Market    *market.Service
	Watchlist *watchlist.Service
	Account   *account.Service
	Trade     *trading.Workflow
}

type Model struct {
	svc        Services
	ctx        context.Context
	closeDelay time.Duration
	log        zerolog.Logger
	initCmd    tea.Cmd

	page   Page
	width  int
	height int
	status string
	epoch  uint64 // bumped on logout; results of older fetches are dropped

	auth      authForm
	portfolio portfolioState
	trading   tradingState
	watch     watchlistState
	funds     fundsDialog

	tradeOpen  bool
	tradeInput textinput.Model
	tradeDone  chan struct{}
	tradeStop  context.CancelFunc
}

type authForm struct {
	register bool
	inputs   []textinput.Model // username, [email,] password
	focus    int
	busy     bool
	err      string
}

type portfolioState struct {
	summary     *domain.PortfolioSummary
	holdings    []domain.Holding
	txs         []domain.Transaction
	summaryErr  string
	holdingsErr string
	txErr       string
	loading     int // outstanding fetches
	cursor      int

	// history is the selected holding's transactions, shown instead of the recent list
	historySymbol string
	history       []domain.Transaction
	historyErr    string
}

type tradingState struct {
	search    textinput.Model
	searching bool
	loading   bool
	quote     *market.Quote
	err       string
	watched   bool
	watchBusy bool
	popular   map[string]market.Quote
}

type watchlistState struct {
	items      []domain.WatchlistItem
	loaded     bool
	loading    bool
	busy       bool
	err        string
	cursor     int
	input      textinput.Model
	adding     bool
	confirming bool
}

type fundsDialog struct {
	open     bool
	withdraw bool
	input    textinput.Model
	busy     bool
	result   account.Result
	gen      int // only the dialog that scheduled a close is closed by it
}

// Messages

type authMsg struct {
	res session.Result
}

type refreshedMsg struct {
	err error
}

type summaryMsg struct {
	epoch   uint64
	summary domain.PortfolioSummary
	err     error
}

type holdingsMsg struct {
	epoch    uint64
	holdings []domain.Holding
	err      error
}

type transactionsMsg struct {
	epoch uint64
	txs   []domain.Transaction
	err   error
}

type historyMsg struct {
	epoch  uint64
	symbol string
	txs    []domain.Transaction
	err    error
}

type popularMsg struct {
	epoch  uint64
	quotes map[string]market.Quote
	err    error
}

type quoteMsg struct {
	quote market.Quote
	err   error
}

type watchedMsg struct {
	symbol  string
	watched bool
	err     string
}

type watchlistMsg struct {
	items []domain.WatchlistItem
	err   error
}

type watchMutationMsg struct {
	res watchlist.Result
}

type tradeSubmittedMsg struct {
	err error
}

type tradeClosedMsg struct{}

type fundsMsg struct {
	res account.Result
}

type fundsClosedMsg struct {
	gen int
}

// Options tune the shell. Zero values fall back to defaults.
type Options struct {
	// FundsCloseDelay keeps a successful transfer message on screen before the dialog closes
	FundsCloseDelay time.Duration
	Log             zerolog.Logger
}

// NewModel builds the shell. The starting page is the default route resolved
// against the current session, so Bootstrap must run first.
func NewModel(ctx context.Context, svc Services, opts Options) Model {
	if opts.FundsCloseDelay <= 0 {
		opts.FundsCloseDelay = trading.DefaultCloseDelay
	}
	m := Model{
		svc:        svc,
		ctx:        ctx,
		closeDelay: opts.FundsCloseDelay,
		log:        opts.Log.With().Str("component", "ui").Logger(),
	}
	m.trading.search = newInput("e.g., AAPL, TSLA, GOOGL", 10)
	m.watch.input = newInput("Enter stock symbol (e.g., AAPL)", 10)
	m, cmd := m.navigate(PageDashboard)
	m.initCmd = cmd
	return m
}

func (m Model) Init() tea.Cmd {
	return m.initCmd
}

// Page returns the active page
func (m Model) Page() Page {
	return m.page
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 30
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newAuthForm(register bool) authForm {
	username := newInput("Username", 64)
	password := newInput("Password", 128)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	f := authForm{register: register, inputs: []textinput.Model{username}}
	if register {
		f.inputs = append(f.inputs, newInput("Email", 128))
	}
	f.inputs = append(f.inputs, password)
	f.inputs[0].Focus()
	return f
}

func (f *authForm) move(delta int) {
	f.inputs[f.focus].Blur()
	n := len(f.inputs)
	f.focus = ((f.focus+delta)%n + n) % n
	f.inputs[f.focus].Focus()
}

func (f authForm) values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = in.Value()
	}
	return out
}

// Commands

func loginCmd(ctx context.Context, store *session.Store, username, password string) tea.Cmd {
	return func() tea.Msg {
		return authMsg{store.Login(ctx, username, password)}
	}
}

func registerCmd(ctx context.Context, store *session.Store, username, email, password string) tea.Cmd {
	return func() tea.Msg {
		return authMsg{store.Register(ctx, username, email, password)}
	}
}

func refreshSessionCmd(ctx context.Context, store *session.Store) tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg{store.Refresh(ctx)}
	}
}

func fetchSummary(ctx context.Context, svc *portfolio.Service, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		s, err := svc.Summary(ctx)
		return summaryMsg{epoch, s, err}
	}
}

func fetchHoldings(ctx context.Context, svc *portfolio.Service, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		h, err := svc.Holdings(ctx)
		return holdingsMsg{epoch, h, err}
	}
}

func fetchTransactions(ctx context.Context, svc *portfolio.Service, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		txs, err := svc.Transactions(ctx)
		return transactionsMsg{epoch, txs, err}
	}
}

func fetchHistory(ctx context.Context, svc *portfolio.Service, epoch uint64, symbol string) tea.Cmd {
	return func() tea.Msg {
		txs, err := svc.TransactionsBySymbol(ctx, symbol)
		return historyMsg{epoch, symbol, txs, err}
	}
}

func fetchPopular(ctx context.Context, svc *market.Service, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		quotes, err := svc.Quotes(ctx, market.PopularSymbols)
		return popularMsg{epoch, quotes, err}
	}
}

func fetchQuote(ctx context.Context, svc *market.Service, symbol string) tea.Cmd {
	return func() tea.Msg {
		q, err := svc.Search(ctx, symbol)
		return quoteMsg{q, err}
	}
}

func checkWatched(ctx context.Context, svc *watchlist.Service, symbol string) tea.Cmd {
	return func() tea.Msg {
		return watchedMsg{symbol: symbol, watched: svc.IsWatched(ctx, symbol)}
	}
}

func toggleWatched(ctx context.Context, svc *watchlist.Service, symbol string, watched bool) tea.Cmd {
	return func() tea.Msg {
		res := svc.Toggle(ctx, symbol, watched)
		if !res.Changed {
			return watchedMsg{symbol: symbol, watched: watched, err: res.Error}
		}
		return watchedMsg{symbol: symbol, watched: !watched}
	}
}

func fetchWatchlist(ctx context.Context, svc *watchlist.Service, reload bool) tea.Cmd {
	return func() tea.Msg {
		if reload {
			items, err := svc.Reload(ctx)
			return watchlistMsg{items, err}
		}
		items, err := svc.List(ctx)
		return watchlistMsg{items, err}
	}
}

func mutateWatchlist(fn func() watchlist.Result) tea.Cmd {
	return func() tea.Msg {
		return watchMutationMsg{fn()}
	}
}

// addToWatchlist checks the symbol before adding it. If the check itself
// fails the add goes ahead and the backend has the final say.
func addToWatchlist(ctx context.Context, mkt *market.Service, svc *watchlist.Service, symbol string) tea.Cmd {
	return mutateWatchlist(func() watchlist.Result {
		if valid, err := mkt.Validate(ctx, symbol); err == nil && !valid {
			return watchlist.Result{Error: "Invalid stock symbol: " + domain.NormalizeSymbol(symbol)}
		}
		return svc.Add(ctx, symbol)
	})
}

func submitTrade(ctx context.Context, w *trading.Workflow) tea.Cmd {
	return func() tea.Msg {
		return tradeSubmittedMsg{w.Submit(ctx)}
	}
}

// waitTradeClose resolves when the workflow's deferred close fires, or
// yields nothing once the dialog was cancelled.
func waitTradeClose(ctx context.Context, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-done:
			return tradeClosedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func transferFunds(ctx context.Context, svc *account.Service, withdraw bool, amount string) tea.Cmd {
	return func() tea.Msg {
		if withdraw {
			return fundsMsg{svc.Withdraw(ctx, amount)}
		}
		return fundsMsg{svc.AddFunds(ctx, amount)}
	}
}

func closeFundsAfter(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return fundsClosedMsg{gen}
	})
}
