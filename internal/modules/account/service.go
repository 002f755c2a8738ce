// Package account moves cash in and out of the brokerage account.
package account

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/stocktrader/internal/api"
	"github.com/aristath/stocktrader/internal/domain"
	"github.com/aristath/stocktrader/internal/events"
)

// Result is what the funds dialog shows. Exactly one of Message and Error is set.
type Result struct {
	Success bool
	Message string
	Error   string
	Warning string // set when the balance could not be reconciled afterwards
}

// Service validates and submits fund transfers
type Service struct {
	client  domain.FundsClient
	session domain.SessionProvider
	events  events.Emitter
	log     zerolog.Logger
}

// NewService creates an account service
func NewService(client domain.FundsClient, session domain.SessionProvider, emitter events.Emitter, log zerolog.Logger) *Service {
	return &Service{
		client:  client,
		session: session,
		events:  emitter,
		log:     log.With().Str("service", "account").Logger(),
	}
}

// AddFunds deposits the amount typed by the user
func (s *Service) AddFunds(ctx context.Context, input string) Result {
	amount, ok := ParseAmount(input)
	if !ok {
		return Result{Error: "Please enter a valid amount"}
	}

	resp, err := s.client.AddFunds(ctx, amount)
	if err != nil {
		s.log.Warn().Err(err).Float64("amount", amount).Msg("Deposit failed")
		return Result{Error: api.ErrorMessage(err, "Failed to add funds")}
	}

	res := Result{Success: true, Message: fmt.Sprintf("Successfully added $%.2f", amount)}
	s.reconcile(ctx, &res)
	s.events.Emit("account", &events.FundsChangedData{Direction: "deposit", Amount: amount, Balance: resp.User.Balance})
	return res
}

// Withdraw removes the amount typed by the user. Amounts above the cached
// balance are rejected without a backend call.
func (s *Service) Withdraw(ctx context.Context, input string) Result {
	amount, ok := ParseAmount(input)
	if !ok {
		return Result{Error: "Please enter a valid amount"}
	}

	var balance float64
	if sess, ok := s.session.Current(); ok {
		balance = sess.Balance
	}
	if amount > balance {
		return Result{Error: "Insufficient balance"}
	}

	resp, err := s.client.WithdrawFunds(ctx, amount)
	if err != nil {
		s.log.Warn().Err(err).Float64("amount", amount).Msg("Withdrawal failed")
		return Result{Error: api.ErrorMessage(err, "Failed to withdraw funds")}
	}

	res := Result{Success: true, Message: fmt.Sprintf("Successfully withdrew $%.2f", amount)}
	s.reconcile(ctx, &res)
	s.events.Emit("account", &events.FundsChangedData{Direction: "withdrawal", Amount: amount, Balance: resp.User.Balance})
	return res
}

func (s *Service) reconcile(ctx context.Context, res *Result) {
	if err := s.session.Refresh(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Balance refresh after transfer failed")
		res.Warning = "Balance may be out of date"
	}
}

// ParseAmount reads a positive, finite decimal amount
func ParseAmount(input string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}
