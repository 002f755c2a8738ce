// Package watchlist manages the user's tracked symbols.
package watchlist

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aristath/stocktrader/internal/api"
	"github.com/aristath/stocktrader/internal/clientdata"
	"github.com/aristath/stocktrader/internal/domain"
	"github.com/aristath/stocktrader/internal/events"
)

// Confirmer asks the user to approve a destructive action
type Confirmer func() bool

// Confirmed and Declined are fixed answers for callers that already asked
var (
	Confirmed Confirmer = func() bool { return true }
	Declined  Confirmer = func() bool { return false }
)

// Result is the list after a mutation. Items is nil when the follow-up
// re-fetch failed; Error carries the text to show for a failed mutation.
type Result struct {
	Items   []domain.WatchlistItem
	Changed bool
	Error   string
}

// Stats summarises the list for the header cards
type Stats struct {
	Total   int
	Gainers int
	Losers  int
}

// Service wraps watchlist calls. Every successful mutation is followed by a
// full re-fetch that bypasses the cache.
type Service struct {
	client domain.WatchlistClient
	cache  *clientdata.Cache
	events events.Emitter
	log    zerolog.Logger
}

// NewService creates a watchlist service. cache may be nil.
func NewService(client domain.WatchlistClient, cache *clientdata.Cache, emitter events.Emitter, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		events: emitter,
		log:    log.With().Str("service", "watchlist").Logger(),
	}
}

// List returns the tracked symbols, served from the cache when fresh
func (s *Service) List(ctx context.Context) ([]domain.WatchlistItem, error) {
	return clientdata.Fetch(ctx, s.cache, clientdata.KeyWatchlist, clientdata.TTLWatchlist, s.client.Watchlist)
}

// Reload re-fetches the list from the backend
func (s *Service) Reload(ctx context.Context) ([]domain.WatchlistItem, error) {
	if s.cache != nil {
		s.cache.Invalidate(clientdata.KeyWatchlist)
	}
	items, err := s.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load watchlist")
		return nil, err
	}
	return items, nil
}

// Add tracks symbol. Blank input is ignored without a backend call.
func (s *Service) Add(ctx context.Context, symbol string) Result {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return Result{}
	}

	if _, err := s.client.AddToWatchlist(ctx, symbol); err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to add to watchlist")
		return Result{Error: api.ErrorMessage(err, "Failed to add to watchlist")}
	}
	return s.afterMutation(ctx, "add", symbol)
}

// Remove stops tracking symbol. Failures are logged only.
func (s *Service) Remove(ctx context.Context, symbol string) Result {
	symbol = domain.NormalizeSymbol(symbol)
	if _, err := s.client.RemoveFromWatchlist(ctx, symbol); err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to remove from watchlist")
		return Result{}
	}
	return s.afterMutation(ctx, "remove", symbol)
}

// ClearAll removes every symbol, but only after confirm approves.
func (s *Service) ClearAll(ctx context.Context, confirm Confirmer) Result {
	if confirm == nil || !confirm() {
		return Result{}
	}

	if _, err := s.client.ClearWatchlist(ctx); err != nil {
		s.log.Error().Err(err).Msg("Failed to clear watchlist")
		return Result{Error: api.ErrorMessage(err, "Failed to clear watchlist")}
	}
	return s.afterMutation(ctx, "clear", "")
}

// IsWatched reports membership. Failures are logged and read as false.
func (s *Service) IsWatched(ctx context.Context, symbol string) bool {
	check, err := s.client.CheckWatchlist(ctx, symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to check watchlist")
		return false
	}
	return check.InWatchlist
}

// Toggle adds symbol when not watched and removes it otherwise
func (s *Service) Toggle(ctx context.Context, symbol string, watched bool) Result {
	if watched {
		return s.Remove(ctx, symbol)
	}
	return s.Add(ctx, symbol)
}

func (s *Service) afterMutation(ctx context.Context, action, symbol string) Result {
	s.events.Emit("watchlist", &events.WatchlistChangedData{Action: action, Symbol: symbol})

	items, err := s.Reload(ctx)
	if err != nil {
		return Result{Changed: true}
	}
	return Result{Items: items, Changed: true}
}

// ComputeStats counts positive and negative movers. Items without a
// change value count toward the total only.
func ComputeStats(items []domain.WatchlistItem) Stats {
	st := Stats{Total: len(items)}
	for _, item := range items {
		if item.Change == nil {
			continue
		}
		switch {
		case *item.Change > 0:
			st.Gainers++
		case *item.Change < 0:
			st.Losers++
		}
	}
	return st
}

// IsPositive reports whether an item renders as up. Unknown change counts as up.
func IsPositive(item domain.WatchlistItem) bool {
	return item.ChangeValue() >= 0
}
