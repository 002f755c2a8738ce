package clientdata

import (
	"github.com/rs/zerolog"

	"github.com/aristath/stocktrader/internal/events"
)

// Invalidator drops cached resources when the events that change them fire
type Invalidator struct {
	cache *Cache
	log   zerolog.Logger
}

// NewInvalidator creates an invalidator for cache
func NewInvalidator(cache *Cache, log zerolog.Logger) *Invalidator {
	return &Invalidator{
		cache: cache,
		log:   log.With().Str("component", "cache-invalidator").Logger(),
	}
}

// Register subscribes to bus
func (i *Invalidator) Register(bus *events.Bus) {
	bus.Subscribe(events.TradeExecuted, i.dropPortfolio)
	bus.Subscribe(events.FundsChanged, i.dropPortfolio)
	bus.Subscribe(events.WatchlistChanged, func(e events.Event) {
		i.cache.Invalidate(KeyWatchlist)
		i.log.Debug().Str("event_type", string(e.Type)).Msg("Watchlist cache dropped")
	})
	bus.Subscribe(events.LoggedOut, func(e events.Event) {
		i.cache.Clear()
		i.log.Debug().Msg("Cache cleared on logout")
	})
	bus.Subscribe(events.SessionChanged, func(e events.Event) {
		// A login may be a different user; a refresh leaves data alone.
		if data, ok := e.Data.(*events.SessionChangedData); ok && data.Reason == "login" {
			i.cache.Clear()
		}
	})
}

func (i *Invalidator) dropPortfolio(e events.Event) {
	n := i.cache.InvalidatePrefix(KeyPortfolio)
	i.log.Debug().
		Str("event_type", string(e.Type)).
		Int("dropped", n).
		Msg("Portfolio cache dropped")
}
