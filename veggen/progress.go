package veggen

import (
	"slices"
	"sync"
	"time"
)

// Snapshot is a read-only view of a running batch. Values are copied out
// under the tracker lock, so a reader never sees a half-updated state.
type Snapshot struct {
	CurrentRow   int      `json:"current_row"`
	TotalRows    int      `json:"total_rows"`
	CreatedItems int      `json:"created_items"`
	Errors       []string `json:"errors"`
	// Percentage of processed rows, 0-100.
	Percentage                float64 `json:"percentage"`
	ElapsedSeconds            float64 `json:"elapsed_seconds"`
	EstimatedRemainingSeconds float64 `json:"estimated_remaining_seconds"`
	Finished                  bool    `json:"is_finished"`
}

// Tracker accumulates progress for one batch run. The generator is its only
// writer; any number of goroutines may call Snapshot concurrently. An
// optional notify callback pushes a fresh snapshot after every mutation.
type Tracker struct {
	mu           sync.Mutex
	currentRow   int
	totalRows    int
	createdItems int
	errors       []string
	startTime    time.Time
	endTime      time.Time
	notify       func(Snapshot)
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// OnProgress registers the push callback. Must be set before Start.
func (t *Tracker) OnProgress(fn func(Snapshot)) {
	t.notify = fn
}

func (t *Tracker) Start(totalRows int) {
	t.mu.Lock()
	t.currentRow = 0
	t.totalRows = totalRows
	t.createdItems = 0
	t.errors = nil
	t.startTime = time.Now()
	t.endTime = time.Time{}
	t.emitLocked()
	t.mu.Unlock()
}

func (t *Tracker) RowDone() {
	t.mu.Lock()
	t.currentRow++
	t.emitLocked()
	t.mu.Unlock()
}

func (t *Tracker) AddItems(n int) {
	t.mu.Lock()
	t.createdItems += n
	t.emitLocked()
	t.mu.Unlock()
}

func (t *Tracker) AddError(msg string) {
	t.mu.Lock()
	t.errors = append(t.errors, msg)
	t.emitLocked()
	t.mu.Unlock()
}

func (t *Tracker) Finish() {
	t.mu.Lock()
	t.endTime = time.Now()
	t.emitLocked()
	t.mu.Unlock()
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) emitLocked() {
	if t.notify != nil {
		t.notify(t.snapshotLocked())
	}
}

func (t *Tracker) snapshotLocked() Snapshot {
	s := Snapshot{
		CurrentRow:   t.currentRow,
		TotalRows:    t.totalRows,
		CreatedItems: t.createdItems,
		Errors:       slices.Clone(t.errors),
	}

	if t.totalRows > 0 {
		s.Percentage = float64(t.currentRow) / float64(t.totalRows) * 100
	}

	if !t.startTime.IsZero() {
		end := t.endTime
		if end.IsZero() {
			end = time.Now()
		}
		s.ElapsedSeconds = end.Sub(t.startTime).Seconds()
	}

	// Simple rows-per-second average; good enough for a file-sized ETA.
	if t.currentRow > 0 && t.currentRow < t.totalRows && t.endTime.IsZero() {
		rate := float64(t.currentRow) / time.Since(t.startTime).Seconds()
		if rate > 0 {
			s.EstimatedRemainingSeconds = float64(t.totalRows-t.currentRow) / rate
		}
	}

	s.Finished = !t.endTime.IsZero() || (t.totalRows > 0 && t.currentRow >= t.totalRows)

	return s
}
