package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/aristath/stocktrader/internal/domain"
)

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	var resp domain.AuthResponse
	return resp, c.post(ctx, "/auth/register", nil, req, &resp)
}

// Login checks a username/password pair and returns the profile
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	var resp domain.AuthResponse
	return resp, c.post(ctx, "/auth/login", nil, req, &resp)
}

// CurrentUser returns the authoritative profile for the cached credential
func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	var u domain.User
	return u, c.get(ctx, "/auth/me", &u)
}

// AddFunds deposits amount into the cash balance
func (c *Client) AddFunds(ctx context.Context, amount float64) (domain.AuthResponse, error) {
	var resp domain.AuthResponse
	return resp, c.post(ctx, "/auth/add-funds", amountQuery(amount), nil, &resp)
}

// WithdrawFunds removes amount from the cash balance
func (c *Client) WithdrawFunds(ctx context.Context, amount float64) (domain.AuthResponse, error) {
	var resp domain.AuthResponse
	return resp, c.post(ctx, "/auth/withdraw-funds", amountQuery(amount), nil, &resp)
}

func amountQuery(amount float64) url.Values {
	return url.Values{"amount": {strconv.FormatFloat(amount, 'f', -1, 64)}}
}
