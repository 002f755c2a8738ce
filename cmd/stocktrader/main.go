// Package main is the entry point for the stocktrader terminal client.
//
// Startup order: configuration, file logger, local state database, API client
// with the session store as its credential source, event bus and cache,
// session bootstrap, background jobs, then the TUI on the alternate screen.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/aristath/stocktrader/internal/api"
	"github.com/aristath/stocktrader/internal/clientdata"
	"github.com/aristath/stocktrader/internal/config"
	"github.com/aristath/stocktrader/internal/database"
	"github.com/aristath/stocktrader/internal/events"
	"github.com/aristath/stocktrader/internal/modules/account"
	"github.com/aristath/stocktrader/internal/modules/market"
	"github.com/aristath/stocktrader/internal/modules/portfolio"
	"github.com/aristath/stocktrader/internal/modules/trading"
	"github.com/aristath/stocktrader/internal/modules/watchlist"
	"github.com/aristath/stocktrader/internal/scheduler"
	"github.com/aristath/stocktrader/internal/session"
	"github.com/aristath/stocktrader/internal/ui"
	"github.com/aristath/stocktrader/pkg/logger"
)

func main() {
	apiURL := flag.String("api-url", "", "Backend API URL (overrides STOCKTRADER_API_URL)")
	logoutOnly := flag.Bool("logout", false, "Erase the saved session and exit")
	flag.Parse()

	if err := run(*apiURL, *logoutOnly); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(apiURL string, logoutOnly bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	logger.SetGlobalLogger(log)
	log.Info().Str("api_url", cfg.APIBaseURL).Msg("Starting stocktrader")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	stateDB, err := database.New(database.Config{
		Path:    cfg.StatePath(),
		Profile: database.ProfileState,
		Name:    "state",
	})
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer stateDB.Close()

	if err := stateDB.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate state database: %w", err)
	}
	if err := stateDB.QuickCheck(ctx); err != nil {
		log.Warn().Err(err).Msg("State database integrity check failed")
	}

	bus := events.NewBus(log)
	eventManager := events.NewManager(bus, log)

	client := api.NewClient(cfg.APIBaseURL, nil, log, api.WithTimeout(cfg.HTTPTimeout))
	store := session.NewStore(client, session.NewRepository(stateDB.Conn()), eventManager, log)
	client.SetCredentialSource(store)

	if logoutOnly {
		store.Logout()
		fmt.Println("Logged out")
		return nil
	}

	cache := clientdata.New()
	clientdata.NewInvalidator(cache, log).Register(bus)

	if err := store.Bootstrap(ctx); err != nil {
		// A corrupt record is not fatal: start logged out.
		log.Error().Err(err).Msg("Failed to restore session")
	}

	sched := scheduler.New(log)
	if err := registerJobs(sched, cfg, store, cache, stateDB, log); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	services := ui.Services{
		Session:   store,
		Portfolio: portfolio.NewService(client, cache, log),
		Market:    market.NewService(client, log),
		Watchlist: watchlist.NewService(client, cache, eventManager, log),
		Account:   account.NewService(client, store, eventManager, log),
		Trade:     trading.NewWorkflow(client, store, eventManager, cfg.TradeCloseDelay, log),
	}

	model := ui.NewModel(ctx, services, ui.Options{FundsCloseDelay: cfg.TradeCloseDelay, Log: log})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	ui.Forward(bus, p.Send)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}

	log.Info().Msg("Stocktrader stopped")
	return nil
}

func registerJobs(sched *scheduler.Scheduler, cfg *config.Config, store *session.Store, cache *clientdata.Cache, stateDB *database.DB, log zerolog.Logger) error {
	refresh := scheduler.NewSessionRefreshJob(store, cfg.HTTPTimeout)
	refresh.SetLogger(log)
	if err := sched.AddJob(cfg.RefreshSchedule, refresh); err != nil {
		return fmt.Errorf("failed to register session refresh job: %w", err)
	}

	if err := sched.AddJob(cfg.CachePruneSchedule, clientdata.NewCleanupJob(cache, log)); err != nil {
		return fmt.Errorf("failed to register cache cleanup job: %w", err)
	}

	wal := scheduler.NewCheckWALCheckpointsJob(stateDB)
	wal.SetLogger(log)
	if err := sched.AddJob(cfg.WALCheckpointSchedule, wal); err != nil {
		return fmt.Errorf("failed to register WAL checkpoint job: %w", err)
	}
	return nil
}
