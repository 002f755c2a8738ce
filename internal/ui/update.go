package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aristath/stocktrader/internal/api"
	"github.com/aristath/stocktrader/internal/domain"
	"github.com/aristath/stocktrader/internal/events"
	"github.com/aristath/stocktrader/internal/modules/account"
	"github.com/aristath/stocktrader/internal/modules/market"
	"github.com/aristath/stocktrader/internal/modules/trading"
	"github.com/aristath/stocktrader/internal/modules/watchlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if key.Matches(msg, keys.ForceQuit) {
			return m, tea.Quit
		}
		m, cmd = m.handleKey(msg)
	default:
		m, cmd = m.handleMsg(msg)
	}

	// The session can change underneath any page (logout, background refresh).
	if target := Resolve(m.page, m.svc.Session.IsAuthenticated()); target != m.page {
		var navCmd tea.Cmd
		m, navCmd = m.navigate(target)
		cmd = tea.Batch(cmd, navCmd)
	}
	return m, cmd
}

// navigate switches to p after gating and starts the page's fetch-on-mount
func (m Model) navigate(p Page) (Model, tea.Cmd) {
	p = Resolve(p, m.svc.Session.IsAuthenticated())
	prev := m.page
	m.page = p

	switch p {
	case PageLogin, PageRegister:
		if prev != p || m.auth.inputs == nil {
			m.auth = newAuthForm(p == PageRegister)
		}
		return m, nil
	case PageDashboard:
		cmd := m.loadPortfolio(true)
		return m, cmd
	case PageAnalytics:
		cmd := m.loadPortfolio(false)
		return m, cmd
	case PageTrading:
		return m, fetchPopular(m.ctx, m.svc.Market, m.epoch)
	case PageWatchlist:
		m.watch.loading = true
		return m, fetchWatchlist(m.ctx, m.svc.Watchlist, false)
	}
	return m, nil
}

func (m *Model) loadPortfolio(dashboard bool) tea.Cmd {
	cmds := []tea.Cmd{fetchHoldings(m.ctx, m.svc.Portfolio, m.epoch)}
	if dashboard {
		cmds = append(cmds, fetchSummary(m.ctx, m.svc.Portfolio, m.epoch), fetchTransactions(m.ctx, m.svc.Portfolio, m.epoch))
		if sym := m.portfolio.historySymbol; sym != "" {
			cmds = append(cmds, fetchHistory(m.ctx, m.svc.Portfolio, m.epoch, sym))
		}
	}
	m.portfolio.loading += len(cmds)
	return tea.Batch(cmds...)
}

// refresh is the manual refresh control: it reconciles the session and
// re-fetches the page's data past the cache.
func (m Model) refresh() (Model, tea.Cmd) {
	m.status = ""
	cmds := []tea.Cmd{refreshSessionCmd(m.ctx, m.svc.Session)}

	switch m.page {
	case PageDashboard, PageAnalytics:
		m.svc.Portfolio.Invalidate()
		cmds = append(cmds, m.loadPortfolio(m.page == PageDashboard))
	case PageWatchlist:
		m.watch.loading = true
		cmds = append(cmds, fetchWatchlist(m.ctx, m.svc.Watchlist, true))
	case PageTrading:
		if q := m.trading.quote; q != nil {
			m.trading.loading = true
			cmds = append(cmds, fetchQuote(m.ctx, m.svc.Market, q.Symbol))
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) logout() (Model, tea.Cmd) {
	m.closeTrade()
	m.funds = fundsDialog{}
	m.watch = watchlistState{input: m.watch.input}
	m.epoch++
	m.portfolio = portfolioState{}
	m.trading.quote = nil
	m.trading.err = ""
	m.trading.popular = nil
	m.svc.Session.Logout()
	m.status = "Logged out"
	return m.navigate(PageLogin)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case authMsg:
		m.auth.busy = false
		if !msg.res.Success {
			m.auth.err = msg.res.Error
		}

	case refreshedMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.log.Debug().Err(msg.err).Msg("Manual session refresh failed")
		}

	case summaryMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		m.portfolio.loading--
		m.portfolio.summaryErr = ""
		if msg.err != nil {
			m.portfolio.summaryErr = api.ErrorMessage(msg.err, "Failed to fetch portfolio summary")
		} else {
			m.portfolio.summary = &msg.summary
		}

	case holdingsMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		m.portfolio.loading--
		m.portfolio.holdingsErr = ""
		if msg.err != nil {
			m.portfolio.holdingsErr = api.ErrorMessage(msg.err, "Failed to fetch portfolio")
		} else {
			m.portfolio.holdings = msg.holdings
			m.clampHoldingCursor()
		}

	case transactionsMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		m.portfolio.loading--
		m.portfolio.txErr = ""
		if msg.err != nil {
			m.portfolio.txErr = api.ErrorMessage(msg.err, "Failed to fetch transactions")
		} else {
			m.portfolio.txs = msg.txs
		}

	case historyMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		m.portfolio.loading--
		// The selection may have moved on while this was loading.
		if msg.symbol != m.portfolio.historySymbol {
			return m, nil
		}
		m.portfolio.historyErr = ""
		if msg.err != nil {
			m.portfolio.historyErr = api.ErrorMessage(msg.err, "Failed to fetch transactions")
		} else {
			m.portfolio.history = msg.txs
		}

	case popularMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Msg("Popular quotes unavailable")
			return m, nil
		}
		m.trading.popular = msg.quotes

	case quoteMsg:
		m.trading.loading = false
		if msg.err != nil {
			m.trading.quote = nil
			m.trading.err = searchError(msg.err)
			return m, nil
		}
		m.trading.err = ""
		m.trading.quote = &msg.quote
		return m, checkWatched(m.ctx, m.svc.Watchlist, msg.quote.Symbol)

	case watchedMsg:
		if q := m.trading.quote; q != nil && q.Symbol == msg.symbol {
			m.trading.watchBusy = false
			m.trading.watched = msg.watched
			if msg.err != "" {
				m.trading.err = msg.err
			}
		}

	case watchlistMsg:
		m.watch.loading = false
		m.watch.loaded = true
		m.watch.err = ""
		if msg.err != nil {
			m.watch.err = api.ErrorMessage(msg.err, "Failed to fetch watchlist")
		} else {
			m.watch.items = msg.items
			m.clampCursor()
		}

	case watchMutationMsg:
		m.watch.busy = false
		m.watch.err = msg.res.Error
		if msg.res.Items != nil {
			m.watch.items = msg.res.Items
			m.clampCursor()
		} else if msg.res.Changed {
			m.watch.loading = true
			return m, fetchWatchlist(m.ctx, m.svc.Watchlist, true)
		}

	case tradeSubmittedMsg:
		if msg.err == nil && m.tradeOpen {
			ctx, stop := context.WithCancel(m.ctx)
			m.stopTradeWait()
			m.tradeStop = stop
			return m, waitTradeClose(ctx, m.tradeDone)
		}

	case tradeClosedMsg:
		m.tradeOpen = false
		m.stopTradeWait()
		// The traded quote is stale now; search again for a fresh one.
		m.trading.quote = nil
		if m.page == PageDashboard {
			cmd := m.loadPortfolio(true)
			return m, cmd
		}

	case fundsMsg:
		m.funds.busy = false
		m.funds.result = msg.res
		if msg.res.Success {
			m.funds.gen++
			m.funds.input.Reset()
			return m, closeFundsAfter(m.closeDelay, m.funds.gen)
		}

	case fundsClosedMsg:
		if m.funds.open && m.funds.gen == msg.gen {
			m.funds = fundsDialog{}
		}

	case EventMsg:
		return m.handleEvent(msg.Event)
	}
	return m, nil
}

func (m Model) handleEvent(e events.Event) (Model, tea.Cmd) {
	switch e.Type {
	case events.TradeExecuted, events.FundsChanged:
		if m.page == PageDashboard || m.page == PageAnalytics {
			cmd := m.loadPortfolio(m.page == PageDashboard)
			return m, cmd
		}
	case events.LoggedOut:
		m.closeTrade()
		m.funds = fundsDialog{}
		// Arriving after a new login, the event is old news.
		if !m.svc.Session.IsAuthenticated() {
			m.epoch++
			m.portfolio = portfolioState{}
			m.trading.popular = nil
		}
	}
	return m, nil
}

func (m *Model) clampHoldingCursor() {
	if m.portfolio.cursor >= len(m.portfolio.holdings) {
		m.portfolio.cursor = len(m.portfolio.holdings) - 1
	}
	if m.portfolio.cursor < 0 {
		m.portfolio.cursor = 0
	}
}

func (m *Model) clampCursor() {
	if m.watch.cursor >= len(m.watch.items) {
		m.watch.cursor = len(m.watch.items) - 1
	}
	if m.watch.cursor < 0 {
		m.watch.cursor = 0
	}
}

func searchError(err error) string {
	var se *market.SearchError
	if errors.As(err, &se) {
		return se.Message
	}
	if errors.Is(err, market.ErrEmptySymbol) {
		return "Please enter a stock symbol"
	}
	return api.ErrorMessage(err, "Stock not found")
}

// Keys

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case m.funds.open:
		return m.updateFunds(msg)
	case m.tradeOpen:
		return m.updateTrade(msg)
	case m.watch.confirming:
		return m.updateConfirm(msg)
	}

	switch m.page {
	case PageLogin, PageRegister:
		return m.updateAuth(msg)
	case PageTrading:
		if m.trading.searching {
			return m.updateSearch(msg)
		}
	case PageWatchlist:
		if m.watch.adding {
			return m.updateWatchAdd(msg)
		}
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Logout):
		return m.logout()
	case key.Matches(msg, keys.NextPage):
		return m.navigate(cyclePage(m.page, 1))
	case key.Matches(msg, keys.PrevPage):
		return m.navigate(cyclePage(m.page, -1))
	case key.Matches(msg, keys.Refresh):
		return m.refresh()
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && int(s[0]-'0') <= len(navPages) {
		return m.navigate(navPages[s[0]-'1'])
	}

	switch m.page {
	case PageDashboard:
		return m.updateDashboard(msg)
	case PageTrading:
		return m.updateTrading(msg)
	case PageWatchlist:
		return m.updateWatchlist(msg)
	case PageAccount:
		return m.updateAccount(msg)
	}
	return m, nil
}

func (m Model) updateAuth(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.auth.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.SwapAuth):
		if m.page == PageLogin {
			return m.navigate(PageRegister)
		}
		return m.navigate(PageLogin)
	case key.Matches(msg, keys.NextField):
		m.auth.move(1)
		return m, nil
	case key.Matches(msg, keys.PrevField):
		m.auth.move(-1)
		return m, nil
	case key.Matches(msg, keys.Submit):
		return m.submitAuth()
	}

	var cmd tea.Cmd
	m.auth.inputs[m.auth.focus], cmd = m.auth.inputs[m.auth.focus].Update(msg)
	return m, cmd
}

func (m Model) submitAuth() (Model, tea.Cmd) {
	v := m.auth.values()
	for _, field := range v {
		if strings.TrimSpace(field) == "" {
			m.auth.err = "Please fill in all fields"
			return m, nil
		}
	}

	m.auth.err = ""
	m.auth.busy = true
	if m.auth.register {
		return m, registerCmd(m.ctx, m.svc.Session, strings.TrimSpace(v[0]), strings.TrimSpace(v[1]), v[2])
	}
	return m, loginCmd(m.ctx, m.svc.Session, strings.TrimSpace(v[0]), v[1])
}

func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.trading.searching = false
		m.trading.search.Blur()
		return m, nil
	case key.Matches(msg, keys.Submit):
		m.trading.searching = false
		m.trading.search.Blur()
		return m.search(m.trading.search.Value())
	}

	var cmd tea.Cmd
	m.trading.search, cmd = m.trading.search.Update(msg)
	return m, cmd
}

func (m Model) search(symbol string) (Model, tea.Cmd) {
	m.trading.err = ""
	m.trading.loading = true
	m.trading.watched = false
	return m, fetchQuote(m.ctx, m.svc.Market, symbol)
}

func (m Model) updateTrading(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, keys.Search) {
		m.trading.searching = true
		m.trading.search.Focus()
		return m, nil
	}

	q := m.trading.quote
	if q == nil || m.trading.loading {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Buy):
		return m.openTrade(domain.SideBuy, *q)
	case key.Matches(msg, keys.Sell):
		return m.openTrade(domain.SideSell, *q)
	case key.Matches(msg, keys.Watch):
		if m.trading.watchBusy {
			return m, nil
		}
		m.trading.watchBusy = true
		return m, toggleWatched(m.ctx, m.svc.Watchlist, q.Symbol, m.trading.watched)
	}
	return m, nil
}

// updateDashboard trades straight from the holdings table and toggles the
// selected holding's own transaction history.
func (m Model) updateDashboard(msg tea.KeyMsg) (Model, tea.Cmd) {
	ps := &m.portfolio
	switch {
	case key.Matches(msg, keys.Up):
		if ps.cursor > 0 {
			ps.cursor--
		}
	case key.Matches(msg, keys.Down):
		if ps.cursor < len(ps.holdings)-1 {
			ps.cursor++
		}
	case key.Matches(msg, keys.Back):
		ps.historySymbol = ""
		ps.history = nil
		ps.historyErr = ""
	}

	h, ok := m.selectedHolding()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Buy):
		return m.openTrade(domain.SideBuy, holdingQuote(h))
	case key.Matches(msg, keys.Sell):
		return m.openTrade(domain.SideSell, holdingQuote(h))
	case key.Matches(msg, keys.Submit):
		ps.historySymbol = h.Symbol
		ps.history = nil
		ps.historyErr = ""
		ps.loading++
		return m, fetchHistory(m.ctx, m.svc.Portfolio, m.epoch, h.Symbol)
	}
	return m, nil
}

func (m Model) selectedHolding() (domain.Holding, bool) {
	ps := m.portfolio
	if ps.cursor < 0 || ps.cursor >= len(ps.holdings) {
		return domain.Holding{}, false
	}
	return ps.holdings[ps.cursor], true
}

// holdingQuote prices a trade from a holdings row at the row's current price
func holdingQuote(h domain.Holding) market.Quote {
	return market.Quote{StockQuote: domain.StockQuote{Symbol: h.Symbol, CurrentPrice: h.CurrentPrice}}
}

func (m Model) openTrade(side domain.TradeSide, q market.Quote) (Model, tea.Cmd) {
	done := make(chan struct{})
	m.stopTradeWait()
	m.tradeDone = done
	m.svc.Trade.Open(side, q.Symbol, q.CurrentPrice, func() { close(done) })

	m.tradeInput = newInput("Quantity", 9)
	m.tradeInput.SetValue(m.svc.Trade.Snapshot().Quantity)
	m.tradeInput.Focus()
	m.tradeOpen = true
	return m, nil
}

func (m Model) updateTrade(msg tea.KeyMsg) (Model, tea.Cmd) {
	snap := m.svc.Trade.Snapshot()

	switch {
	case key.Matches(msg, keys.Back):
		m.closeTrade()
		return m, nil
	case key.Matches(msg, keys.Submit):
		if snap.State == trading.StateSubmitting || snap.State == trading.StateSucceeded {
			return m, nil
		}
		return m, submitTrade(m.ctx, m.svc.Trade)
	}

	if snap.State == trading.StateSubmitting || snap.State == trading.StateSucceeded {
		return m, nil
	}
	var cmd tea.Cmd
	m.tradeInput, cmd = m.tradeInput.Update(msg)
	m.svc.Trade.SetQuantity(m.tradeInput.Value())
	return m, cmd
}

func (m *Model) closeTrade() {
	if m.tradeOpen {
		m.svc.Trade.Cancel()
	}
	m.tradeOpen = false
	m.stopTradeWait()
}

func (m *Model) stopTradeWait() {
	if m.tradeStop != nil {
		m.tradeStop()
		m.tradeStop = nil
	}
}

func (m Model) updateWatchlist(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.watch.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Up):
		if m.watch.cursor > 0 {
			m.watch.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.watch.cursor < len(m.watch.items)-1 {
			m.watch.cursor++
		}
	case key.Matches(msg, keys.Add):
		m.watch.adding = true
		m.watch.input.Reset()
		m.watch.input.Focus()
	case key.Matches(msg, keys.Remove):
		if item, ok := m.selected(); ok {
			m.watch.busy = true
			return m, mutateWatchlist(func() watchlist.Result {
				return m.svc.Watchlist.Remove(m.ctx, item.Symbol)
			})
		}
	case key.Matches(msg, keys.Clear):
		if len(m.watch.items) > 0 {
			m.watch.confirming = true
		}
	case key.Matches(msg, keys.Trade):
		if item, ok := m.selected(); ok {
			m, _ = m.navigate(PageTrading)
			m.trading.search.SetValue(item.Symbol)
			return m.search(item.Symbol)
		}
	}
	return m, nil
}

func (m Model) selected() (domain.WatchlistItem, bool) {
	if m.watch.cursor < 0 || m.watch.cursor >= len(m.watch.items) {
		return domain.WatchlistItem{}, false
	}
	return m.watch.items[m.watch.cursor], true
}

func (m Model) updateWatchAdd(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.watch.adding = false
		m.watch.input.Blur()
		return m, nil
	case key.Matches(msg, keys.Submit):
		symbol := m.watch.input.Value()
		m.watch.adding = false
		m.watch.input.Blur()
		m.watch.input.Reset()
		if strings.TrimSpace(symbol) == "" {
			return m, nil
		}
		m.watch.busy = true
		return m, addToWatchlist(m.ctx, m.svc.Market, m.svc.Watchlist, symbol)
	}

	var cmd tea.Cmd
	m.watch.input, cmd = m.watch.input.Update(msg)
	return m, cmd
}

// updateConfirm is the clear-all gate: only an explicit yes reaches the backend
func (m Model) updateConfirm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Yes):
		m.watch.confirming = false
		m.watch.busy = true
		return m, mutateWatchlist(func() watchlist.Result {
			return m.svc.Watchlist.ClearAll(m.ctx, watchlist.Confirmed)
		})
	case key.Matches(msg, keys.No):
		m.watch.confirming = false
		m.status = "Watchlist unchanged"
	}
	return m, nil
}

func (m Model) updateAccount(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Deposit):
		m.openFunds(false)
	case key.Matches(msg, keys.Withdraw):
		m.openFunds(true)
	}
	return m, nil
}

func (m *Model) openFunds(withdraw bool) {
	m.funds = fundsDialog{
		open:     true,
		withdraw: withdraw,
		input:    newInput("0.00", 16),
		gen:      m.funds.gen + 1,
	}
	m.funds.input.Focus()
}

func (m Model) updateFunds(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.funds = fundsDialog{gen: m.funds.gen}
		return m, nil
	case key.Matches(msg, keys.Submit):
		if m.funds.busy {
			return m, nil
		}
		m.funds.busy = true
		m.funds.result = account.Result{}
		return m, transferFunds(m.ctx, m.svc.Account, m.funds.withdraw, m.funds.input.Value())
	}

	if m.funds.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.funds.input, cmd = m.funds.input.Update(msg)
	return m, cmd
}
