// Package base provides base implementation for scheduler jobs.
package base

import (
	"sync"
	"time"
)

// JobBase records the outcome of a job's most recent run.
// Jobs embed it; the scheduler calls RecordRun after every execution.
type JobBase struct {
	mu      sync.Mutex
	lastRun time.Time
	lastErr error
	runs    int
}

// RecordRun stores the outcome of one execution
func (j *JobBase) RecordRun(at time.Time, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lastRun = at
	j.lastErr = err
	j.runs++
}

// LastRun returns when the job last ran and how it ended. Zero time if never.
func (j *JobBase) LastRun() (time.Time, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRun, j.lastErr
}

// Runs returns how many times the job has run
func (j *JobBase) Runs() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}
