// Package progress keeps the live percent/status of running upload jobs so
// pollers can follow a batch while it is being reconciled.
package progress

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/codyseavey/tcg-inventory-sync/internal/metrics"
)

// StatusStarting is reported for jobs that have not published anything yet
const StatusStarting = "Starting..."

// State is the last published progress of one job
type State struct {
	JobID     string    `json:"upload_id"`
	Percent   int       `json:"progress"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	// Found is false when the job has never published or its entry expired
	Found bool `json:"-"`
}

// Tracker is a bounded, expiring table of job progress. Entries are evicted
// least-recently-published first once capacity is reached, and expire ttl
// after their last publish.
type Tracker struct {
	cache *expirable.LRU[string, State]
	now   func() time.Time
}

// NewTracker creates a tracker holding at most capacity jobs
func NewTracker(capacity int, ttl time.Duration) *Tracker {
	if capacity < 1 {
		capacity = 1
	}
	return &Tracker{
		cache: expirable.NewLRU[string, State](capacity, nil, ttl),
		now:   time.Now,
	}
}

// Publish records the progress of jobID, clamping percent to 0..100
func (t *Tracker) Publish(jobID string, percent int, status string) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	t.cache.Add(jobID, State{
		JobID:     jobID,
		Percent:   percent,
		Status:    status,
		Timestamp: t.now(),
		Found:     true,
	})
	metrics.ProgressEntries.Set(float64(t.cache.Len()))
}

// Read returns the last published state, or a zero-percent "Starting..."
// state for unknown jobs.
func (t *Tracker) Read(jobID string) State {
	if state, ok := t.cache.Get(jobID); ok {
		return state
	}
	return t.Starting(jobID)
}

// Starting is the state reported for a job with nothing published
func (t *Tracker) Starting(jobID string) State {
	return State{JobID: jobID, Status: StatusStarting, Timestamp: t.now()}
}

// Len is the number of live entries
func (t *Tracker) Len() int {
	return t.cache.Len()
}
