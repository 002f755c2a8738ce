// Package trading implements the buy/sell order form: quantity entry, total
// computation, submission and reconciliation of the session balance.
package trading

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/stocktrader/internal/api"
	"github.com/aristath/stocktrader/internal/domain"
	"github.com/aristath/stocktrader/internal/events"
)

// DefaultCloseDelay is how long a successful form stays visible
const DefaultCloseDelay = 1500 * time.Millisecond

var (
	// ErrBusy is returned when Submit is called while a submission is in flight
	ErrBusy = errors.New("trade submission already in progress")
	// ErrInvalidQuantity is returned for quantities that are not positive integers
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrNotOpen is returned when no form is open
	ErrNotOpen = errors.New("trade form is not open")
)

// State is the form lifecycle
type State int

const (
	StateClosed State = iota
	StateIdle
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "closed"
	}
}

// Snapshot is a consistent copy of the form for rendering
type Snapshot struct {
	State    State
	Side     domain.TradeSide
	Symbol   string
	Price    float64
	Quantity string
	Total    float64
	Message  string // success text
	Error    string // validation or backend failure text
	Warning  string // non-blocking problem after a successful trade
}

// Workflow is one trade form. It is safe for concurrent use.
type Workflow struct {
	client     domain.TradingClient
	session    domain.SessionProvider
	events     events.Emitter
	closeDelay time.Duration
	log        zerolog.Logger

	mu       sync.Mutex
	state    State
	side     domain.TradeSide
	symbol   string
	price    float64
	quantity string
	message  string
	errText  string
	warning  string
	timer    *time.Timer
	gen      uint64 // bumped on open/cancel so stale results and timers are ignored
	onClose  func()
}

// NewWorkflow creates a closed trade form. closeDelay <= 0 uses DefaultCloseDelay.
func NewWorkflow(client domain.TradingClient, session domain.SessionProvider, emitter events.Emitter, closeDelay time.Duration, log zerolog.Logger) *Workflow {
	if closeDelay <= 0 {
		closeDelay = DefaultCloseDelay
	}
	return &Workflow{
		client:     client,
		session:    session,
		events:     emitter,
		closeDelay: closeDelay,
		log:        log.With().Str("component", "trade-workflow").Logger(),
	}
}

// Open resets the form for a new order. onClose, if set, runs after the
// deferred close that follows a successful submission.
func (w *Workflow) Open(side domain.TradeSide, symbol string, price float64, onClose func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopTimerLocked()
	w.gen++
	w.state = StateIdle
	w.side = side
	w.symbol = domain.NormalizeSymbol(symbol)
	w.price = price
	w.quantity = "1"
	w.message = ""
	w.errText = ""
	w.warning = ""
	w.onClose = onClose
}

// SetQuantity stores the raw input. Editing after a failure returns the form to idle.
func (w *Workflow) SetQuantity(quantity string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.quantity = quantity
	if w.state == StateFailed {
		w.state = StateIdle
		w.errText = ""
	}
}

// Total is price × quantity, 0 when the quantity does not parse. Not rounded.
func (w *Workflow) Total() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totalLocked()
}

func (w *Workflow) totalLocked() float64 {
	q, ok := ParseQuantity(w.quantity)
	if !ok {
		return 0
	}
	return w.price * float64(q)
}

// Snapshot returns a copy of the form
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		State:    w.state,
		Side:     w.side,
		Symbol:   w.symbol,
		Price:    w.price,
		Quantity: w.quantity,
		Total:    w.totalLocked(),
		Message:  w.message,
		Error:    w.errText,
		Warning:  w.warning,
	}
}

// Submit validates the quantity locally and places the order.
// Invalid quantities never reach the network. On success the session is
// refreshed and the form closes itself after the close delay.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	switch w.state {
	case StateClosed:
		w.mu.Unlock()
		return ErrNotOpen
	case StateSubmitting:
		w.mu.Unlock()
		return ErrBusy
	case StateSucceeded:
		// Already placed; waiting for the deferred close.
		w.mu.Unlock()
		return ErrBusy
	}

	qty, ok := ParseQuantity(w.quantity)
	if !ok || qty <= 0 {
		w.state = StateFailed
		w.errText = "Quantity must be greater than 0"
		w.mu.Unlock()
		return ErrInvalidQuantity
	}

	w.state = StateSubmitting
	w.errText = ""
	w.message = ""
	w.warning = ""
	gen := w.gen
	side := w.side
	req := domain.TradeRequest{Symbol: w.symbol, Quantity: qty}
	w.mu.Unlock()

	w.log.Info().
		Str("symbol", req.Symbol).
		Str("side", string(side)).
		Int("quantity", qty).
		Msg("Submitting trade")

	resp, err := w.client.PlaceOrder(ctx, side, req)
	if err != nil {
		w.log.Warn().Err(err).Str("symbol", req.Symbol).Msg("Trade failed")
		w.mu.Lock()
		if w.gen == gen {
			w.state = StateFailed
			w.errText = api.ErrorMessage(err, "Trade failed")
		}
		w.mu.Unlock()
		return err
	}

	// The order executed; reconcile the balance even if the form was cancelled meanwhile.
	refreshErr := w.session.Refresh(ctx)
	if refreshErr != nil {
		w.log.Warn().Err(refreshErr).Msg("Balance refresh after trade failed")
	}

	w.events.Emit("trading", &events.TradeExecutedData{
		Symbol:      resp.Transaction.Symbol,
		Side:        string(side),
		Quantity:    resp.Transaction.Quantity,
		Price:       resp.Transaction.Price,
		TotalAmount: resp.Transaction.TotalAmount,
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen {
		return nil
	}
	w.state = StateSucceeded
	w.message = successMessage(side, qty, req.Symbol)
	if refreshErr != nil {
		w.warning = "Balance may be out of date"
	}
	w.timer = time.AfterFunc(w.closeDelay, func() { w.autoClose(gen) })
	return nil
}

// Cancel discards all transient form state and any pending deferred close
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopTimerLocked()
	w.gen++
	w.resetLocked()
}

func (w *Workflow) autoClose(gen uint64) {
	w.mu.Lock()
	if w.gen != gen || w.state != StateSucceeded {
		w.mu.Unlock()
		return
	}
	onClose := w.onClose
	w.timer = nil
	w.gen++
	w.resetLocked()
	w.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}

func (w *Workflow) resetLocked() {
	w.state = StateClosed
	w.quantity = ""
	w.message = ""
	w.errText = ""
	w.warning = ""
	w.onClose = nil
}

func (w *Workflow) stopTimerLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func successMessage(side domain.TradeSide, qty int, symbol string) string {
	verb := "bought"
	if side == domain.SideSell {
		verb = "sold"
	}
	return fmt.Sprintf("Successfully %s %d shares of %s", verb, qty, symbol)
}

// ParseQuantity reads a leading base-10 integer the way a numeric form field
// does: surrounding space is ignored and trailing non-digits are dropped
// ("5", " 7 ", "2.5" → 2). ok is false when there are no leading digits.
func ParseQuantity(s string) (n int, ok bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	digits := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if n > (1<<31-1)/10 {
			return 0, false
		}
		n = n*10 + int(r-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
