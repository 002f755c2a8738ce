package clientdata

import (
	"github.com/rs/zerolog"

	"github.com/aristath/stocktrader/internal/scheduler/base"
)

// CleanupJob removes expired entries from the cache.
type CleanupJob struct {
	base.JobBase
	cache *Cache
	log   zerolog.Logger
}

// NewCleanupJob creates a new cache cleanup job.
func NewCleanupJob(cache *Cache, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		cache: cache,
		log:   log.With().Str("job", "client_data_cleanup").Logger(),
	}
}

// Run executes the cleanup job.
func (j *CleanupJob) Run() error {
	removed := j.cache.Prune()
	if removed > 0 {
		j.log.Debug().
			Int("removed", removed).
			Int("remaining", j.cache.Len()).
			Msg("Cleaned up expired cache entries")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "client_data_cleanup"
}
