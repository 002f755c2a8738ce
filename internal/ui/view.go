package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/aristath/stocktrader/internal/domain"
	"github.com/aristath/stocktrader/internal/modules/market"
	"github.com/aristath/stocktrader/internal/modules/portfolio"
	"github.com/aristath/stocktrader/internal/modules/trading"
	"github.com/aristath/stocktrader/internal/modules/watchlist"
	"github.com/aristath/stocktrader/internal/theme"
)

// recentTransactions is how many rows the dashboard history shows
const recentTransactions = 10

var (
	th = theme.Default

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(th.Text)
	mutedStyle  = lipgloss.NewStyle().Foreground(th.Muted)
	errorStyle  = lipgloss.NewStyle().Foreground(th.Error)
	warnStyle   = lipgloss.NewStyle().Foreground(th.Warning)
	okStyle     = lipgloss.NewStyle().Foreground(th.Gain)
	activeTab   = lipgloss.NewStyle().Bold(true).Foreground(th.Text).Background(th.Primary).Padding(0, 1)
	inactiveTab = lipgloss.NewStyle().Foreground(th.Muted).Padding(0, 1)
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(th.Border).Padding(0, 1)
	dialogStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(th.Accent).Padding(1, 2)
)

func signed(v float64, text string) string {
	return lipgloss.NewStyle().Foreground(th.Signed(v)).Render(text)
}

func (m Model) View() string {
	var parts []string
	if m.page.Protected() {
		parts = append(parts, m.viewNavbar(), "")
	}

	switch m.page {
	case PageLogin, PageRegister:
		parts = append(parts, m.viewAuth())
	case PageDashboard:
		parts = append(parts, m.viewDashboard())
	case PageTrading:
		parts = append(parts, m.viewTrading())
	case PageWatchlist:
		parts = append(parts, m.viewWatchlist())
	case PageAnalytics:
		parts = append(parts, m.viewAnalytics())
	case PageAccount:
		parts = append(parts, m.viewAccount())
	}

	if d := m.viewDialog(); d != "" {
		parts = append(parts, "", d)
	}
	parts = append(parts, "", m.viewFooter())

	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(parts, "\n"))
}

func (m Model) viewNavbar() string {
	logo := theme.GradientText("$ TradeHub", th.Primary, th.Accent)

	tabs := make([]string, 0, len(navPages))
	for i, p := range navPages {
		label := fmt.Sprintf("%d %s", i+1, p)
		if p == m.page {
			tabs = append(tabs, activeTab.Render(label))
		} else {
			tabs = append(tabs, inactiveTab.Render(label))
		}
	}

	var user string
	if s, ok := m.svc.Session.Current(); ok {
		user = fmt.Sprintf("%s  %s  %s",
			okStyle.Bold(true).Render("Balance "+money(s.Balance)),
			titleStyle.Render(s.Username),
			mutedStyle.Render(s.Email),
		)
	}
	if _, stale := m.svc.Session.Stale(); stale {
		user += "  " + warnStyle.Render("balance may be out of date (r to retry)")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, logo, "   ", strings.Join(tabs, " ")),
		user,
	)
}

func (m Model) viewAuth() string {
	title := "Sign in to TradeHub"
	if m.auth.register {
		title = "Create your account"
	}

	lines := []string{theme.GradientText(title, th.Primary, th.Accent), ""}
	for _, in := range m.auth.inputs {
		lines = append(lines, in.View())
	}
	lines = append(lines, "")
	switch {
	case m.auth.busy && m.auth.register:
		lines = append(lines, mutedStyle.Render("Creating account..."))
	case m.auth.busy:
		lines = append(lines, mutedStyle.Render("Signing in..."))
	case m.auth.err != "":
		lines = append(lines, errorStyle.Render(m.auth.err))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewDashboard() string {
	ps := m.portfolio
	var sections []string

	switch {
	case ps.summaryErr != "":
		sections = append(sections, errorStyle.Render(ps.summaryErr))
	case ps.summary != nil:
		sections = append(sections, viewCards(portfolio.SummaryCards(*ps.summary)))
	default:
		sections = append(sections, mutedStyle.Render("Loading portfolio..."))
	}

	sections = append(sections, "", titleStyle.Render("Holdings"))
	if ps.holdingsErr != "" {
		sections = append(sections, errorStyle.Render(ps.holdingsErr))
	} else {
		sections = append(sections, viewHoldings(ps.holdings, ps.loading > 0, ps.cursor))
	}

	if ps.historySymbol != "" {
		sections = append(sections, "", titleStyle.Render(ps.historySymbol+" Transactions"))
		switch {
		case ps.historyErr != "":
			sections = append(sections, errorStyle.Render(ps.historyErr))
		case ps.history == nil:
			sections = append(sections, mutedStyle.Render("Loading transactions..."))
		default:
			sections = append(sections, viewTransactions(ps.history))
		}
		return strings.Join(sections, "\n")
	}

	sections = append(sections, "", titleStyle.Render("Recent Transactions"))
	if ps.txErr != "" {
		sections = append(sections, errorStyle.Render(ps.txErr))
	} else {
		sections = append(sections, viewTransactions(ps.txs))
	}
	return strings.Join(sections, "\n")
}

func viewCards(cards []portfolio.Card) string {
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		value := titleStyle.Render(money(c.Value))
		if c.Title == "Total P/L" {
			value = signed(c.Value, c.Sign.Prefix()+money(c.Value))
		}
		rendered = append(rendered, cardStyle.Width(22).Render(mutedStyle.Render(c.Title)+"\n"+value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// viewHoldings renders the table with a marker on the row at cursor
func viewHoldings(holdings []domain.Holding, loading bool, cursor int) string {
	if len(holdings) == 0 {
		if loading {
			return mutedStyle.Render("Loading holdings...")
		}
		return mutedStyle.Render("No holdings yet. Start trading to build your portfolio!")
	}

	rows := portfolio.HoldingRows(holdings)
	data := make([][]string, 0, len(rows))
	for i, r := range rows {
		marker := "  "
		if i == cursor {
			marker = "> "
		}
		data = append(data, []string{
			marker + r.Symbol,
			fmt.Sprintf("%d", r.Quantity),
			money(r.AveragePrice),
			money(r.CurrentPrice),
			money(r.TotalValue),
			r.Sign.Prefix() + money(r.ProfitLoss),
			r.Sign.Prefix() + fmt.Sprintf("%.2f%%", r.ProfitLossPercent),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(th.Border)).
		Headers("Symbol", "Qty", "Avg Price", "Current", "Total Value", "P/L", "P/L %").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(th.Muted)
			}
			if col >= 5 && row >= 0 && row < len(rows) {
				return s.Foreground(th.Signed(rows[row].ProfitLoss))
			}
			return s
		}).
		String()
}

func viewTransactions(txs []domain.Transaction) string {
	if len(txs) == 0 {
		return mutedStyle.Render("No transactions yet")
	}

	rows := portfolio.TransactionRows(txs)
	if len(rows) > recentTransactions {
		rows = rows[:recentTransactions]
	}
	data := make([][]string, 0, len(rows))
	for _, tx := range rows {
		date := tx.TransactionDate
		if d := tx.Date(); !d.IsZero() {
			date = d.Format("2006-01-02 15:04")
		}
		data = append(data, []string{date, string(tx.Type), tx.Symbol, fmt.Sprintf("%d", tx.Quantity), money(tx.Price), money(tx.TotalAmount)})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(th.Border)).
		Headers("Date", "Type", "Symbol", "Qty", "Price", "Total").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(th.Muted)
			}
			if col == 1 && row >= 0 && row < len(rows) {
				if rows[row].Type == domain.SideBuy {
					return s.Foreground(th.Gain)
				}
				return s.Foreground(th.Loss)
			}
			return s
		}).
		String()
}

func (m Model) viewTrading() string {
	ts := m.trading
	lines := []string{
		titleStyle.Render("Search Stock"),
		ts.search.View(),
		mutedStyle.Render("Popular: " + viewPopular(ts.popular)),
		"",
	}

	switch {
	case ts.loading:
		lines = append(lines, mutedStyle.Render("Searching..."))
	case ts.err != "":
		lines = append(lines, errorStyle.Render(ts.err))
	}
	if ts.quote != nil {
		lines = append(lines, viewQuote(*ts.quote, ts.watched))
	}
	return strings.Join(lines, "\n")
}

// viewPopular lists the popular symbols, priced once their quotes arrive
func viewPopular(quotes map[string]market.Quote) string {
	parts := make([]string, 0, len(market.PopularSymbols))
	for _, sym := range market.PopularSymbols {
		if q, ok := quotes[sym]; ok {
			parts = append(parts, sym+" "+money(q.CurrentPrice))
			continue
		}
		parts = append(parts, sym)
	}
	return strings.Join(parts, "  ")
}

func viewQuote(q market.Quote, watched bool) string {
	star := "☆ not watched"
	if watched {
		star = warnStyle.Render("★ watching")
	}

	header := fmt.Sprintf("%s  %s  %s", titleStyle.Render(q.Symbol), titleStyle.Render(money(q.CurrentPrice)), star)
	change := signed(q.Change, fmt.Sprintf("%s (%s)", signedMoney(q.Change), signedPercent(q.ChangePercent)))
	stats := fmt.Sprintf("Open %s   High %s   Low %s   Prev Close %s",
		money(q.OpenPrice), money(q.HighPrice), money(q.LowPrice), money(q.PreviousClose))

	return cardStyle.Render(strings.Join([]string{header, change, mutedStyle.Render(stats)}, "\n"))
}

func (m Model) viewWatchlist() string {
	ws := m.watch
	stats := watchlist.ComputeStats(ws.items)
	lines := []string{
		fmt.Sprintf("%s   %s   %s",
			titleStyle.Render(fmt.Sprintf("Total Stocks %d", stats.Total)),
			okStyle.Render(fmt.Sprintf("Gainers %d", stats.Gainers)),
			lipgloss.NewStyle().Foreground(th.Loss).Render(fmt.Sprintf("Losers %d", stats.Losers)),
		),
		"",
	}

	if ws.adding {
		lines = append(lines, "Add: "+ws.input.View(), "")
	}
	if ws.err != "" {
		lines = append(lines, errorStyle.Render(ws.err), "")
	}

	switch {
	case ws.loading && !ws.loaded:
		lines = append(lines, mutedStyle.Render("Loading watchlist..."))
	case len(ws.items) == 0:
		lines = append(lines, mutedStyle.Render("Your Watchlist is Empty"))
	default:
		for i, item := range ws.items {
			cursor := "  "
			if i == ws.cursor {
				cursor = "> "
			}
			lines = append(lines, cursor+viewWatchItem(item))
		}
	}
	return strings.Join(lines, "\n")
}

func viewWatchItem(item domain.WatchlistItem) string {
	symbol := lipgloss.NewStyle().Width(8).Bold(true).Render(item.Symbol)
	if !item.HasQuote() {
		return symbol + mutedStyle.Render("price unavailable")
	}

	change := item.ChangeValue()
	var pct float64
	if item.ChangePercent != nil {
		pct = *item.ChangePercent
	}
	arrow := "▲"
	if !watchlist.IsPositive(item) {
		arrow = "▼"
	}
	return fmt.Sprintf("%s%-12s %s", symbol, money(*item.CurrentPrice),
		signed(change, fmt.Sprintf("%s %s (%s)", arrow, signedMoney(change), signedPercent(pct))))
}

func (m Model) viewAnalytics() string {
	ps := m.portfolio
	if ps.holdingsErr != "" {
		return errorStyle.Render(ps.holdingsErr)
	}
	if len(ps.holdings) == 0 {
		if ps.loading > 0 {
			return mutedStyle.Render("Loading analytics...")
		}
		return mutedStyle.Render("No holdings to analyze")
	}

	st := portfolio.Analytics(ps.holdings)
	lines := []string{
		titleStyle.Render("Portfolio Statistics"),
		fmt.Sprintf("Positions %d   Value %s   Cost %s   P/L %s   Return %s",
			st.Positions, money(st.TotalValue), money(st.TotalCost),
			signed(st.TotalProfitLoss, signedMoney(st.TotalProfitLoss)),
			signed(st.TotalReturn, signedPercent(st.TotalReturn))),
		fmt.Sprintf("Weighted return %s   Return dispersion %.2f%%   Concentration %.3f",
			signedPercent(st.WeightedReturn), st.ReturnStdDev, st.Concentration),
	}
	if st.Largest != nil {
		lines = append(lines, fmt.Sprintf("Largest position %s (%.1f%%)", st.Largest.Symbol, st.LargestShare))
	}
	lines = append(lines,
		fmt.Sprintf("Best %s %s   Worst %s %s",
			st.Best.Symbol, signed(st.Best.ProfitLossPercent, signedPercent(st.Best.ProfitLossPercent)),
			st.Worst.Symbol, signed(st.Worst.ProfitLossPercent, signedPercent(st.Worst.ProfitLossPercent))),
		"",
		titleStyle.Render("Allocation"),
	)

	const barWidth = 40
	for _, s := range portfolio.Allocation(ps.holdings) {
		n := int(s.Percent / 100 * barWidth)
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat("█", n))
		lines = append(lines, fmt.Sprintf("%-18s %s", s.Label(), bar))
	}

	lines = append(lines, "", titleStyle.Render("Holdings Value"))
	series := portfolio.ValueSeries(ps.holdings)
	top := series[0].Value
	for _, b := range series {
		n := 0
		if top > 0 {
			n = int(b.Value / top * barWidth)
		}
		lines = append(lines, fmt.Sprintf("%-6s %s %s", b.Symbol,
			lipgloss.NewStyle().Foreground(th.Primary).Render(strings.Repeat("█", n)), money(b.Value)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewAccount() string {
	s, _ := m.svc.Session.Current()
	profile := strings.Join([]string{
		titleStyle.Render("Profile Information"),
		fmt.Sprintf("Username  %s", s.Username),
		fmt.Sprintf("Email     %s", s.Email),
		fmt.Sprintf("User ID   %d", s.UserID),
		fmt.Sprintf("Balance   %s", okStyle.Render(money(s.Balance))),
	}, "\n")

	actions := strings.Join([]string{
		titleStyle.Render("Account Management"),
		"a  Add Funds",
		"w  Withdraw Funds",
	}, "\n")
	return lipgloss.JoinHorizontal(lipgloss.Top, cardStyle.Render(profile), " ", cardStyle.Render(actions))
}

func (m Model) viewDialog() string {
	switch {
	case m.funds.open:
		return m.viewFunds()
	case m.tradeOpen:
		return m.viewTrade()
	case m.watch.confirming:
		return dialogStyle.Render("Are you sure you want to clear your entire watchlist?\n\n" +
			mutedStyle.Render("y yes   n no"))
	}
	return ""
}

func (m Model) viewTrade() string {
	snap := m.svc.Trade.Snapshot()
	if snap.State == trading.StateClosed {
		return ""
	}

	verb := "Buy"
	if snap.Side == domain.SideSell {
		verb = "Sell"
	}
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s %s", verb, snap.Symbol)),
		fmt.Sprintf("Current Price  %s", money(snap.Price)),
		"Quantity       " + m.tradeInput.View(),
		fmt.Sprintf("Total          %s", titleStyle.Render(money(snap.Total))),
		"",
	}

	switch snap.State {
	case trading.StateSubmitting:
		lines = append(lines, mutedStyle.Render("Processing..."))
	case trading.StateSucceeded:
		lines = append(lines, okStyle.Render(snap.Message))
		if snap.Warning != "" {
			lines = append(lines, warnStyle.Render(snap.Warning))
		}
	case trading.StateFailed:
		lines = append(lines, errorStyle.Render(snap.Error))
	default:
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("enter %s   esc cancel", strings.ToLower(verb))))
	}
	return dialogStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewFunds() string {
	f := m.funds
	title := "Add Funds"
	if f.withdraw {
		title = "Withdraw Funds"
	}
	lines := []string{titleStyle.Render(title), "Amount ($)  " + f.input.View(), ""}

	switch {
	case f.busy:
		lines = append(lines, mutedStyle.Render("Processing..."))
	case f.result.Error != "":
		lines = append(lines, errorStyle.Render(f.result.Error))
	case f.result.Success:
		lines = append(lines, okStyle.Render(f.result.Message))
		if f.result.Warning != "" {
			lines = append(lines, warnStyle.Render(f.result.Warning))
		}
	default:
		lines = append(lines, mutedStyle.Render("enter confirm   esc cancel"))
	}
	return dialogStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewFooter() string {
	var help string
	switch m.page {
	case PageLogin:
		help = "tab next field • enter sign in • ctrl+n register • ctrl+c quit"
	case PageRegister:
		help = "tab next field • enter create account • ctrl+n sign in • ctrl+c quit"
	case PageDashboard:
		help = "j/k move • b buy more • s sell • enter history • esc recent • 1-5 pages • r refresh • L logout • q quit"
	case PageTrading:
		help = "/ search • b buy • s sell • w watch • r refresh • L logout • q quit"
	case PageWatchlist:
		help = "j/k move • a add • d remove • C clear all • t trade • r refresh • L logout • q quit"
	case PageAccount:
		help = "a add funds • w withdraw • r refresh • L logout • q quit"
	default:
		help = "1-5 pages • tab next • r refresh • L logout • q quit"
	}

	footer := mutedStyle.Render(help)
	if m.status != "" {
		footer = okStyle.Render(m.status) + "\n" + footer
	}
	return footer
}
