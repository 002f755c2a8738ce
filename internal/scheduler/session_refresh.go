package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SessionRefresher is the part of the session store the refresh job needs
type SessionRefresher interface {
	IsAuthenticated() bool
	Refresh(ctx context.Context) error
}

// SessionRefreshJob reconciles the cached session with the backend
type SessionRefreshJob struct {
	JobBase
	log     zerolog.Logger
	store   SessionRefresher
	timeout time.Duration
}

// NewSessionRefreshJob creates a new SessionRefreshJob. timeout of 0 means none.
func NewSessionRefreshJob(store SessionRefresher, timeout time.Duration) *SessionRefreshJob {
	return &SessionRefreshJob{
		log:     zerolog.Nop(),
		store:   store,
		timeout: timeout,
	}
}

// SetLogger sets the logger for the job
func (j *SessionRefreshJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *SessionRefreshJob) Name() string {
	return "session_refresh"
}

// Run refreshes the session when someone is logged in.
// The store records failures as staleness; they are returned for the scheduler log.
func (j *SessionRefreshJob) Run() error {
	if !j.store.IsAuthenticated() {
		j.log.Debug().Msg("No session to refresh")
		return nil
	}

	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}
	return j.store.Refresh(ctx)
}
