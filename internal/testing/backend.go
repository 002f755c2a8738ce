// Package testing provides testing utilities and helpers for the stocktrader project.
package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aristath/stocktrader/internal/domain"
)

// Call is one request received by the fake backend
type Call struct {
	Method     string
	Path       string
	Authorized bool // carried a Basic-Auth header
}

type fakeUser struct {
	user     domain.User
	password string
}

type forcedFailure struct {
	status  int
	message string
}

// Backend is an in-memory stand-in for the brokerage REST API, served over
// httptest. Prices are fixed per symbol; previous close is price - 1.
type Backend struct {
	Server *httptest.Server

	mu           sync.Mutex
	users        map[string]*fakeUser
	nextID       int64
	prices       map[string]float64
	holdings     map[string]map[string]*domain.Holding
	transactions map[string][]domain.Transaction
	watchlists   map[string][]domain.WatchlistItem
	failures     map[string]forcedFailure
	calls        []Call
}

// NewBackend starts a fake backend that is closed when the test ends.
// The API root is Backend.URL().
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		users:        make(map[string]*fakeUser),
		prices:       map[string]float64{"AAPL": 150, "MSFT": 380, "TSLA": 250, "GOOGL": 140, "AMZN": 180},
		holdings:     make(map[string]map[string]*domain.Holding),
		transactions: make(map[string][]domain.Transaction),
		watchlists:   make(map[string][]domain.WatchlistItem),
		failures:     make(map[string]forcedFailure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", b.handleRegister)
	mux.HandleFunc("POST /api/auth/login", b.handleLogin)
	mux.HandleFunc("GET /api/auth/me", b.authed(b.handleMe))
	mux.HandleFunc("POST /api/auth/add-funds", b.authed(b.handleAddFunds))
	mux.HandleFunc("POST /api/auth/withdraw-funds", b.authed(b.handleWithdrawFunds))
	mux.HandleFunc("POST /api/trades/buy", b.authed(b.handleBuy))
	mux.HandleFunc("POST /api/trades/sell", b.authed(b.handleSell))
	mux.HandleFunc("GET /api/portfolio", b.authed(b.handlePortfolio))
	mux.HandleFunc("GET /api/portfolio/summary", b.authed(b.handleSummary))
	mux.HandleFunc("GET /api/portfolio/transactions", b.authed(b.handleTransactions))
	mux.HandleFunc("GET /api/portfolio/transactions/{symbol}", b.authed(b.handleTransactions))
	mux.HandleFunc("GET /api/portfolio/value", b.authed(b.handleValue))
	mux.HandleFunc("GET /api/portfolio/profit-loss", b.authed(b.handleProfitLoss))
	mux.HandleFunc("GET /api/stocks/quote/{symbol}", b.handleQuote)
	mux.HandleFunc("GET /api/stocks/price/{symbol}", b.handlePrice)
	mux.HandleFunc("GET /api/stocks/validate/{symbol}", b.handleValidate)
	mux.HandleFunc("POST /api/stocks/quotes", b.handleQuotes)
	mux.HandleFunc("GET /api/watchlist", b.authed(b.handleWatchlist))
	mux.HandleFunc("POST /api/watchlist", b.authed(b.handleWatchlistAdd))
	mux.HandleFunc("DELETE /api/watchlist", b.authed(b.handleWatchlistClear))
	mux.HandleFunc("DELETE /api/watchlist/{symbol}", b.authed(b.handleWatchlistRemove))
	mux.HandleFunc("GET /api/watchlist/check/{symbol}", b.authed(b.handleWatchlistCheck))

	b.Server = httptest.NewServer(b.record(mux))
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the API root, e.g. http://127.0.0.1:1234/api
func (b *Backend) URL() string {
	return b.Server.URL + "/api"
}

// AddUser seeds an account directly
func (b *Backend) AddUser(username, email, password string, balance float64) domain.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(username, email, password, balance)
}

// SetPrice changes (or adds) the price of a symbol
func (b *Backend) SetPrice(symbol string, price float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prices[strings.ToUpper(symbol)] = price
}

// Balance returns a user's current cash balance
func (b *Backend) Balance(username string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u, ok := b.users[username]; ok {
		return u.user.Balance
	}
	return 0
}

// Fail makes every request matching "METHOD /api/path" fail with status and message
// until ClearFailures is called.
func (b *Backend) Fail(route string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = forcedFailure{status: status, message: message}
}

// ClearFailures removes all forced failures
func (b *Backend) ClearFailures() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = make(map[string]forcedFailure)
}

// Calls returns a copy of every request received so far
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// CallCount counts requests matching method and path
func (b *Backend) CallCount(method, path string) int {
	n := 0
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// ResetCalls forgets recorded requests
func (b *Backend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

func (b *Backend) addUserLocked(username, email, password string, balance float64) domain.User {
	b.nextID++
	u := &fakeUser{
		user:     domain.User{ID: b.nextID, Username: username, Email: email, Balance: balance},
		password: password,
	}
	b.users[username] = u
	b.holdings[username] = make(map[string]*domain.Holding)
	return u.user
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, authorized := r.BasicAuth()

		b.mu.Lock()
		b.calls = append(b.calls, Call{Method: r.Method, Path: r.URL.Path, Authorized: authorized})
		failure, forced := b.failures[r.Method+" "+r.URL.Path]
		b.mu.Unlock()

		if forced {
			writeError(w, failure.status, failure.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authed resolves the Basic-Auth user; handlers run with b.mu held.
func (b *Backend) authed(h func(http.ResponseWriter, *http.Request, *fakeUser)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()

		b.mu.Lock()
		defer b.mu.Unlock()

		u, exists := b.users[username]
		if !ok || !exists || u.password != password {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		h(w, r, u)
	}
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.users[req.Username]; exists {
		writeError(w, http.StatusBadRequest, "Username already exists")
		return
	}
	u := b.addUserLocked(req.Username, req.Email, req.Password, 10000)
	writeJSON(w, http.StatusCreated, domain.AuthResponse{Message: "User registered successfully", User: u})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[req.Username]
	if !ok || u.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	writeJSON(w, http.StatusOK, domain.AuthResponse{Message: "Login successful", User: u.user})
}

func (b *Backend) handleMe(w http.ResponseWriter, _ *http.Request, u *fakeUser) {
	writeJSON(w, http.StatusOK, u.user)
}

func (b *Backend) handleAddFunds(w http.ResponseWriter, r *http.Request, u *fakeUser) {
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil || amount <= 0 {
		writeError(w, http.StatusBadRequest, "Amount must be positive")
		return
	}
	u.user.Balance = domain.Round2(u.user.Balance + amount)
	writeJSON(w, http.StatusOK, domain.AuthResponse{Message: "Funds added successfully", User: u.user})
}

func (b *Backend) handleWithdrawFunds(w http.ResponseWriter, r *http.Request, u *fakeUser) {
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil || amount <= 0 {
		writeError(w, http.StatusBadRequest, "Amount must be positive")
		return
	}
	if amount > u.user.Balance {
		writeError(w, http.StatusBadRequest, "Insufficient balance")
		return
	}
	u.user.Balance = domain.Round2(u.user.Balance - amount)
	writeJSON(w, http.StatusOK, domain.AuthResponse{Message: "Funds withdrawn successfully", User: u.user})
}

func (b *Backend) handleBuy(w http.ResponseWriter, r *http.Request, u *fakeUser) {
	req, price, ok := b.decodeTrade(w, r)
	if !ok {
		return
	}
	total := price * float64(req.Quantity)
	if total > u.user.Balance {
		writeError(w, http.StatusBadRequest, "Insufficient balance")
		return
	}
	u.user.Balance = domain.Round2(u.user.Balance - total)

	h, exists := b.holdings[u.user.Username][req.Symbol]
	if !exists {
		b.nextID++
		h = &domain.Holding{ID: b.nextID, Symbol: req.Symbol}
		b.holdings[u.user.Username][req.Symbol] = h
	}
	h.AveragePrice = (h.CostBasis() + total) / float64(h.Quantity+req.Quantity)
	h.Quantity += req.Quantity

	tx := b.appendTransaction(u, req, domain.SideBuy, price)
	writeJSON(w, http.StatusCreated, domain.TradeResponse{Message: "Stock purchased successfully", Transaction: tx})
}

func (b *Backend) handleSell(w http.ResponseWriter, r *http.Request, u *fakeUser) {
	req, price, ok := b.decodeTrade(w, r)
	if !ok {
		return
	}
	h, exists := b.holdings[u.user.Username][req.Symbol]
	if !exists || h.Quantity < req.Quantity {
		writeError(w, http.StatusBadRequest, "Insufficient shares")
		return
	}
	h.Quantity -= req.Quantity
	if h.Quantity == 0 {
		delete(b.holdings[u.user.Username], req.Symbol)
	}
	u.user.Balance = domain.Round2(u.user.Balance + price*float64(req.Quantity))

	tx := b.appendTransaction(u, req, domain.SideSell, price)
	writeJSON(w, http.StatusOK, domain.TradeResponse{Message: "Stock sold successfully", Transaction: tx})
}

func (b *Backend) decodeTrade(w http.ResponseWriter, r *http.Request) (domain.TradeRequest, float64, bool) {
	var req domain.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return req, 0, false
	}
	req.Symbol = strings.ToUpper(req.Symbol)
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "Quantity must be positive")
		return req, 0, false
	}
	price, ok := b.prices[req.Symbol]
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid stock symbol: "+req.Symbol)
		return req, 0, false
	}
	return req, price, true
}

func (b *Backend) appendTransaction(u *fakeUser, req domain.TradeRequest, side domain.TradeSide, price float64) domain.Transaction {
	b.nextID++
	tx := domain.Transaction{
		ID:              b.nextID,
		Symbol:          req.Symbol,
		Type:            side,
		Quantity:        req.Quantity,
		Price:           price,
		TotalAmount:     price * float64(req.Quantity),
		TransactionDate: time.Now().UTC().Format("2006-01-02T15:04:05"),
	}
	b.transactions[u.user.Username] = append(b.transactions[u.user.Username], tx)
	return tx
}

// holdingsLocked revalues holdings at current prices, sorted by symbol
func (b *Backend) holdingsLocked(username string) []domain.Holding {
	out := make([]domain.Holding, 0, len(b.holdings[username]))
	for symbol, h := range b.holdings[username] {
		current := b.prices[symbol]
		row := *h
		row.CurrentPrice = current
		row.TotalValue = domain.Round2(float64(h.Quantity) * current)
		row.ProfitLoss = domain.Round2(row.TotalValue - h.CostBasis())
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (b *Backend) handlePortfolio(w http.ResponseWriter, _ *http.Request, u *fakeUser) {
	writeJSON(w, http.StatusOK, b.holdingsLocked(u.user.Username))
}

func (b *Backend) handleSummary(w http.ResponseWriter, _ *http.Request, u *fakeUser) {
	holdings := b.holdingsLocked(u.user.Username)
	var value, pl float64
	for _, h := range holdings {
		value += h.TotalValue
		pl += h.ProfitLoss
	}
	user := u.user
	writeJSON(w, http.StatusOK, domain.PortfolioSummary{
		User:            &user,
		CashBalance:     u.user.Balance,
		PortfolioValue:  value,
		TotalValue:      u.user.Balance + value,
		TotalProfitLoss: pl,
		Holdings:        holdings,
	})
}

func (b *Backend) handleTransactions(w http.ResponseWriter, r *http.Request, u *fakeUser) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	out := []domain.Transaction{}
	for _, tx := range b.transactions[u.user.Username] {
		if symbol == "" || tx.Symbol == symbol {
			out = append(out, tx)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleValue(w http.ResponseWriter, _ *http.Request, u *fakeUser) {
	var value float64
	for _, h := range b.holdingsLocked(u.user.Username) {
		value += h.TotalValue
	}
	writeJSON(w, http.StatusOK, domain.PortfolioValue{PortfolioValue: value})
}

func (b *Backend) handleProfitLoss(w http.ResponseWriter, _ *http.Request, u *fakeUser) {
	var pl float64
	for _, h := range b.holdingsLocked(u.user.Username) {
		pl += h.ProfitLoss
	}
	writeJSON(w, http.StatusOK, domain.ProfitLoss{TotalProfitLoss: pl})
}

func (b *Backend) quoteLocked(symbol string) (domain.StockQuote, bool) {
	price, ok := b.prices[symbol]
	if !ok {
		return domain.StockQuote{}, false
	}
	change := 1.0
	changePercent := change / (price - 1) * 100
	return domain.StockQuote{
		Symbol:        symbol,
		CurrentPrice:  price,
		HighPrice:     price + 2,
		LowPrice:      price - 2,
		OpenPrice:     price - 0.5,
		PreviousClose: price - 1,
		Timestamp:     time.Now().Unix(),
		Change:        &change,
		ChangePercent: &changePercent,
	}, true
}

func (b *Backend) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	b.mu.Lock()
	q, ok := b.quoteLocked(symbol)
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid stock symbol: "+symbol)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (b *Backend) handlePrice(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	b.mu.Lock()
	price, ok := b.prices[symbol]
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid stock symbol: "+symbol)
		return
	}
	writeJSON(w, http.StatusOK, domain.PriceResponse{Symbol: symbol, CurrentPrice: price})
}

func (b *Backend) handleValidate(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	b.mu.Lock()
	price, ok := b.prices[symbol]
	b.mu.Unlock()
	resp := domain.SymbolValidation{Symbol: symbol, Valid: ok}
	if ok {
		resp.CurrentPrice = &price
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) handleQuotes(w http.ResponseWriter, r *http.Request) {
	var req domain.QuotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]domain.StockQuote)
	for _, s := range req.Symbols {
		if q, ok := b.quoteLocked(strings.ToUpper(s)); ok {
			out[q.Symbol] = q
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleWatchlist(w http.ResponseWriter, _ *http.Request, u *fakeUser) {
	items := make([]domain.WatchlistItem, 0, len(b.watchlists[u.user.Username]))
	for _, item := range b.watchlists[u.user.Username] {
		if q, ok := b.quoteLocked(item.Symbol); ok {
			item.CurrentPrice = &q.CurrentPrice
			item.Change = q.Change
			item.ChangePercent = q.ChangePercent
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

func (b *Backend) handleWatchlistAdd(w http.ResponseWriter, r *http.Request, u *fakeUser) {
	var req domain.WatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Symbol) == "" {
		writeError(w, http.StatusBadRequest, "Symbol is required")
		return
	}
	symbol := strings.ToUpper(req.Symbol)
	if _, ok := b.prices[symbol]; !ok {
		writeError(w, http.StatusBadRequest, "Invalid stock symbol: "+symbol)
		return
	}

	// Duplicate adds succeed without creating a second entry.
	for _, item := range b.watchlists[u.user.Username] {
		if item.Symbol == symbol {
			writeJSON(w, http.StatusCreated, domain.WatchlistAddResponse{Message: "Stock added to watchlist", Watchlist: item})
			return
		}
	}

	b.nextID++
	item := domain.WatchlistItem{ID: b.nextID, Symbol: symbol, AddedAt: time.Now().UTC().Format("2006-01-02T15:04:05")}
	b.watchlists[u.user.Username] = append(b.watchlists[u.user.Username], item)
	writeJSON(w, http.StatusCreated, domain.WatchlistAddResponse{Message: "Stock added to watchlist", Watchlist: item})
}

func (b *Backend) handleWatchlistRemove(w http.ResponseWriter, r *http.Request, u *fakeUser) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	items := b.watchlists[u.user.Username]
	for i, item := range items {
		if item.Symbol == symbol {
			b.watchlists[u.user.Username] = append(items[:i:i], items[i+1:]...)
			writeJSON(w, http.StatusOK, domain.MessageResponse{Message: "Stock removed from watchlist"})
			return
		}
	}
	writeError(w, http.StatusBadRequest, fmt.Sprintf("%s is not in your watchlist", symbol))
}

func (b *Backend) handleWatchlistCheck(w http.ResponseWriter, r *http.Request, u *fakeUser) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	in := false
	for _, item := range b.watchlists[u.user.Username] {
		if item.Symbol == symbol {
			in = true
			break
		}
	}
	writeJSON(w, http.StatusOK, domain.WatchlistCheck{Symbol: symbol, InWatchlist: in})
}

func (b *Backend) handleWatchlistClear(w http.ResponseWriter, _ *http.Request, u *fakeUser) {
	b.watchlists[u.user.Username] = nil
	writeJSON(w, http.StatusOK, domain.MessageResponse{Message: "Watchlist cleared successfully"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
