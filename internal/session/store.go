package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/stocktrader/internal/api"
	"github.com/aristath/stocktrader/internal/domain"
	"github.com/aristath/stocktrader/internal/events"
)

// ErrNotAuthenticated is returned by operations that need a logged-in user
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthClient is the part of the API client the store needs
type AuthClient interface {
	Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error)
	CurrentUser(ctx context.Context) (domain.User, error)
}

// Result is the outcome of a login or registration attempt
type Result struct {
	Success bool
	Error   string
}

// Staleness records the last failed refresh
type Staleness struct {
	Err error
	At  time.Time
}

// Store holds the current session. All methods are safe for concurrent use.
type Store struct {
	client AuthClient
	repo   *Repository
	events events.Emitter
	log    zerolog.Logger

	mu      sync.RWMutex
	current *domain.Session
	stale   *Staleness

	// persistMu orders writes to the repository. Taken before mu, never after.
	persistMu     sync.Mutex
	beforePersist func()
}

// NewStore creates a store with no session; call Bootstrap to hydrate it
func NewStore(client AuthClient, repo *Repository, emitter events.Emitter, log zerolog.Logger) *Store {
	return &Store{
		client: client,
		repo:   repo,
		events: emitter,
		log:    log.With().Str("component", "session").Logger(),
	}
}

// Bootstrap hydrates the session from the state database.
// A missing record leaves the store unauthenticated.
func (s *Store) Bootstrap(ctx context.Context) error {
	sess, found, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	if !found {
		s.log.Debug().Msg("No persisted session")
		return nil
	}

	s.mu.Lock()
	s.current = &sess
	s.stale = nil
	s.mu.Unlock()

	s.log.Info().Str("username", sess.Username).Msg("Session restored")
	s.emitChanged(sess, "bootstrap")
	return nil
}

// Login authenticates and caches the profile with the credential.
// On failure the existing session is left untouched.
func (s *Store) Login(ctx context.Context, username, password string) Result {
	resp, err := s.client.Login(ctx, domain.LoginRequest{Username: username, Password: password})
	if err != nil {
		s.log.Debug().Err(err).Str("username", username).Msg("Login failed")
		return Result{Error: api.ErrorMessage(err, "Login failed")}
	}

	sess := domain.NewSession(resp.User, username, password)
	s.set(ctx, sess)

	s.log.Info().Str("username", sess.Username).Msg("Logged in")
	s.emitChanged(sess, "login")
	return Result{Success: true}
}

// Register creates an account and logs into it; the first failure wins
func (s *Store) Register(ctx context.Context, username, email, password string) Result {
	_, err := s.client.Register(ctx, domain.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		s.log.Debug().Err(err).Str("username", username).Msg("Registration failed")
		return Result{Error: api.ErrorMessage(err, "Registration failed")}
	}
	return s.Login(ctx, username, password)
}

// Logout clears the session in memory and on disk. No backend call is made.
func (s *Store) Logout() {
	s.persistMu.Lock()
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.stale = nil
	s.mu.Unlock()

	if err := s.repo.Delete(context.Background()); err != nil {
		s.log.Error().Err(err).Msg("Failed to erase persisted session")
	}
	s.persistMu.Unlock()

	username := ""
	if prev != nil {
		username = prev.Username
	}
	s.log.Info().Str("username", username).Msg("Logged out")
	s.events.Emit("session", &events.LoggedOutData{Username: username})
}

// Refresh re-fetches the profile with the cached credential and re-persists it.
// On failure the previous session is kept, the failure is recorded as
// staleness and the error is returned.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.RLock()
	if s.current == nil {
		s.mu.RUnlock()
		return ErrNotAuthenticated
	}
	cached := *s.current
	s.mu.RUnlock()

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("username", cached.Username).Msg("Session refresh failed")
		s.mu.Lock()
		if s.current != nil && s.current.Username == cached.Username {
			s.stale = &Staleness{Err: err, At: time.Now()}
		}
		s.mu.Unlock()
		return err
	}

	sess := domain.NewSession(user, cached.Username, cached.Password)

	s.mu.Lock()
	// A logout or a different login happened while the call was in flight.
	if s.current == nil || s.current.Username != cached.Username {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	current := &sess
	s.current = current
	s.stale = nil
	s.mu.Unlock()

	s.persist(ctx, current)

	s.log.Debug().Float64("balance", sess.Balance).Msg("Session refreshed")
	s.emitChanged(sess, "refresh")
	return nil
}

// Current returns a copy of the session
func (s *Store) Current() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Session{}, false
	}
	return *s.current, true
}

// IsAuthenticated reports whether a session exists
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Credentials implements api.CredentialSource
func (s *Store) Credentials() (username, password string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return "", "", false
	}
	return s.current.Username, s.current.Password, true
}

// Stale returns the last refresh failure, if the session is out of date
func (s *Store) Stale() (Staleness, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stale == nil {
		return Staleness{}, false
	}
	return *s.stale, true
}

func (s *Store) set(ctx context.Context, sess domain.Session) {
	current := &sess
	s.mu.Lock()
	s.current = current
	s.stale = nil
	s.mu.Unlock()

	s.persist(ctx, current)
}

// persist saves sess unless a logout or a newer session replaced it first
func (s *Store) persist(ctx context.Context, sess *domain.Session) {
	if s.beforePersist != nil {
		s.beforePersist()
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	latest := s.current == sess
	s.mu.RUnlock()
	if !latest {
		s.log.Debug().Str("username", sess.Username).Msg("Session replaced before it was persisted")
		return
	}

	if err := s.repo.Save(ctx, *sess); err != nil {
		s.log.Error().Err(err).Msg("Failed to persist session")
	}
}

func (s *Store) emitChanged(sess domain.Session, reason string) {
	s.events.Emit("session", &events.SessionChangedData{
		Username: sess.Username,
		Balance:  sess.Balance,
		Reason:   reason,
	})
}
