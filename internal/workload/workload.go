// Package workload tracks shop capacity and the queue of pending services,
// and derives worker availability and a workload percentage from them.
package workload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

type EntryStatus string

const (
	StatusWaiting   EntryStatus = "waiting"
	StatusCompleted EntryStatus = "completed"
)

var ErrInvalidWorkers = errors.New("invalid worker configuration")

type Entry struct {
	ServiceID  string      `json:"service_id"`
	EnqueuedAt time.Time   `json:"timestamp"`
	Status     EntryStatus `json:"status"`
}

func (e *Entry) ToJSON() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func EntryFromJSON(data string) (*Entry, error) {
	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

// Snapshot is derived on every call and never cached.
type Snapshot struct {
	TotalWorkers       int     `json:"total_workers"`
	CurrentWorkload    int     `json:"current_workload"`
	QueueLength        int     `json:"queue_length"`
	WorkerAvailability int     `json:"worker_availability"`
	WorkloadPercentage float64 `json:"workload_percentage"`
}

// Derive computes availability and load. A queue longer than 10 costs four
// more workers, longer than 5 costs two; the two penalties never stack.
func Derive(total, active, queueLen int) Snapshot {
	available := max(0, total-active)
	if queueLen > 10 {
		available = max(0, available-4)
	} else if queueLen > 5 {
		available = max(0, available-2)
	}

	percentage := 100.0
	if total > 0 {
		percentage = min(100, float64(active)/float64(total)*100+float64(queueLen)*5)
	}

	return Snapshot{
		TotalWorkers:       total,
		CurrentWorkload:    active,
		QueueLength:        queueLen,
		WorkerAvailability: available,
		WorkloadPercentage: math.Round(percentage*10) / 10,
	}
}

// Backend stores queue entries in arrival order.
type Backend interface {
	// Push appends an entry and returns the new queue length.
	Push(ctx context.Context, entry Entry) (int, error)
	Remove(ctx context.Context, serviceID string) (Entry, bool, error)
	Len(ctx context.Context) (int, error)
	List(ctx context.Context) ([]Entry, error)
	Close() error
}

type Tracker struct {
	totalWorkers int
	active       int
	backend      Backend
	now          func() time.Time
}

// NewTracker fixes capacity and the active workload for the tracker's
// lifetime. A nil backend selects an in-memory queue.
func NewTracker(totalWorkers, active int, backend Backend) (*Tracker, error) {
	if totalWorkers <= 0 {
		return nil, fmt.Errorf("%w: total workers must be positive, got %d", ErrInvalidWorkers, totalWorkers)
	}
	if active < 0 {
		return nil, fmt.Errorf("%w: active workload cannot be negative, got %d", ErrInvalidWorkers, active)
	}
	if backend == nil {
		backend = NewMemoryQueue()
	}

	return &Tracker{
		totalWorkers: totalWorkers,
		active:       active,
		backend:      backend,
		now:          time.Now,
	}, nil
}

func (t *Tracker) TotalWorkers() int {
	return t.totalWorkers
}

func (t *Tracker) ActiveWorkload() int {
	return t.active
}

func (t *Tracker) Snapshot(ctx context.Context) (Snapshot, error) {
	n, err := t.backend.Len(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read queue length: %w", err)
	}

	return Derive(t.totalWorkers, t.active, n), nil
}

// Enqueue appends a waiting entry and returns its 1-based position.
func (t *Tracker) Enqueue(ctx context.Context, serviceID string) (int, error) {
	entry := Entry{
		ServiceID:  serviceID,
		EnqueuedAt: t.now(),
		Status:     StatusWaiting,
	}

	position, err := t.backend.Push(ctx, entry)
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue service %s: %w", serviceID, err)
	}

	return position, nil
}

// Complete removes the matching entry. An unknown id is not an error and
// reports false.
func (t *Tracker) Complete(ctx context.Context, serviceID string) (Entry, bool, error) {
	entry, ok, err := t.backend.Remove(ctx, serviceID)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to complete service %s: %w", serviceID, err)
	}
	if !ok {
		return Entry{}, false, nil
	}

	entry.Status = StatusCompleted
	return entry, true, nil
}

func (t *Tracker) Entries(ctx context.Context) ([]Entry, error) {
	return t.backend.List(ctx)
}

func (t *Tracker) Close() error {
	return t.backend.Close()
}

// Rand is satisfied by *rand.Rand from math/rand/v2.
type Rand interface {
	IntN(n int) int
}

// SimulatedWorkload picks a busy-worker count uniformly in [2, 6].
func SimulatedWorkload(rng Rand) int {
	return 2 + rng.IntN(5)
}
