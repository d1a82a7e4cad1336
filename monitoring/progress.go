package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how many requests of a batch have been answered.
type ProgressBar struct {
	sync.Mutex
	ID         string
	Name       string
	StartTime  time.Time
	Total      uint64
	Finished   uint64
	InProgress uint64
}

// ProgressSnapshot is the state of a progress bar at one moment.
type ProgressSnapshot struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress adds the number of in-progress requests.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished adds to the number of answered requests.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress requests by a
// certain amount and increases the answered requests by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

// Snapshot copies the counters.
func (b *ProgressBar) Snapshot() ProgressSnapshot {
	b.Lock()
	defer b.Unlock()

	return ProgressSnapshot{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
}
