package testing

import (
	"context"
	"sync"

	"github.com/aristath/stocktrader/internal/domain"
)

// MockSessionProvider is a mock implementation of domain.SessionProvider for testing
type MockSessionProvider struct {
	mu        sync.RWMutex
	session   domain.Session
	loggedIn  bool
	err       error
	refreshes int
}

// NewMockSessionProvider creates a logged-in mock session for the given user
func NewMockSessionProvider(user domain.User) *MockSessionProvider {
	return &MockSessionProvider{
		session:  domain.NewSession(user, user.Username, "secret"),
		loggedIn: true,
	}
}

// SetError sets the error Refresh returns
func (m *MockSessionProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetBalance changes the cached balance
func (m *MockSessionProvider) SetBalance(balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Balance = balance
}

// LogOut drops the session
func (m *MockSessionProvider) LogOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loggedIn = false
}

// Current returns the session
func (m *MockSessionProvider) Current() (domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.loggedIn {
		return domain.Session{}, false
	}
	return m.session, true
}

// Refresh counts the call and returns the configured error
func (m *MockSessionProvider) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes++
	return m.err
}

// Refreshes returns how many times Refresh was called
func (m *MockSessionProvider) Refreshes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshes
}

// MockPortfolioClient is a mock implementation of domain.PortfolioClient for testing
type MockPortfolioClient struct {
	mu       sync.RWMutex
	holdings []domain.Holding
	summary  domain.PortfolioSummary
	txs      []domain.Transaction
	err      error
	calls    map[string]int
}

// NewMockPortfolioClient creates a mock serving the given holdings and history
func NewMockPortfolioClient(holdings []domain.Holding, txs []domain.Transaction) *MockPortfolioClient {
	return &MockPortfolioClient{
		holdings: holdings,
		summary:  NewSummaryFixture(0, holdings),
		txs:      txs,
		calls:    make(map[string]int),
	}
}

// SetHoldings sets the holdings to return
func (m *MockPortfolioClient) SetHoldings(holdings []domain.Holding) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holdings = holdings
}

// SetError sets the error to return
func (m *MockPortfolioClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times method was called
func (m *MockPortfolioClient) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[method]
}

// Portfolio returns the holdings
func (m *MockPortfolioClient) Portfolio(ctx context.Context) ([]domain.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["Portfolio"]++
	if m.err != nil {
		return nil, m.err
	}
	return m.holdings, nil
}

// PortfolioSummary returns the summary
func (m *MockPortfolioClient) PortfolioSummary(ctx context.Context) (domain.PortfolioSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["PortfolioSummary"]++
	if m.err != nil {
		return domain.PortfolioSummary{}, m.err
	}
	return m.summary, nil
}

// Transactions returns the full history
func (m *MockPortfolioClient) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["Transactions"]++
	if m.err != nil {
		return nil, m.err
	}
	return m.txs, nil
}

// TransactionsBySymbol returns the history for one symbol
func (m *MockPortfolioClient) TransactionsBySymbol(ctx context.Context, symbol string) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["TransactionsBySymbol"]++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Transaction, 0)
	for _, tx := range m.txs {
		if tx.Symbol == symbol {
			out = append(out, tx)
		}
	}
	return out, nil
}
