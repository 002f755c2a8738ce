package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/stocktrader/internal/database"
)

// walTruncateThreshold is the WAL size in frames above which the job truncates
const walTruncateThreshold = 1000

// CheckWALCheckpointsJob keeps the state database's WAL small
type CheckWALCheckpointsJob struct {
	JobBase
	log     zerolog.Logger
	stateDB *database.DB
}

// NewCheckWALCheckpointsJob creates a new CheckWALCheckpointsJob
func NewCheckWALCheckpointsJob(stateDB *database.DB) *CheckWALCheckpointsJob {
	return &CheckWALCheckpointsJob{
		log:     zerolog.Nop(),
		stateDB: stateDB,
	}
}

// SetLogger sets the logger for the job
func (j *CheckWALCheckpointsJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *CheckWALCheckpointsJob) Name() string {
	return "check_wal_checkpoints"
}

// Run executes the check WAL checkpoints job
func (j *CheckWALCheckpointsJob) Run() error {
	if j.stateDB == nil {
		return nil
	}

	// PRAGMA wal_checkpoint returns: busy, log, checkpointed
	var busy, log, checkpointed int
	err := j.stateDB.Conn().QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &log, &checkpointed)
	if err != nil {
		j.log.Warn().
			Err(err).
			Str("database", j.stateDB.Name()).
			Msg("Failed to check WAL checkpoint")
		return nil
	}

	if log > walTruncateThreshold {
		j.log.Warn().
			Str("database", j.stateDB.Name()).
			Int("wal_frames", log).
			Int("checkpointed", checkpointed).
			Msg("WAL file is large, truncating")
		return j.stateDB.WALCheckpoint("TRUNCATE")
	}

	j.log.Debug().
		Str("database", j.stateDB.Name()).
		Int("wal_frames", log).
		Msg("WAL checkpoint status OK")
	return nil
}
