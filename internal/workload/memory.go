package workload

import (
	"context"
	"sync"
)

type MemoryQueue struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Push(_ context.Context, entry Entry) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, entry)
	return len(q.entries), nil
}

func (q *MemoryQueue) Remove(_ context.Context, serviceID string) (Entry, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.entries {
		if e.ServiceID == serviceID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return e, true, nil
		}
	}

	return Entry{}, false, nil
}

func (q *MemoryQueue) Len(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries), nil
}

func (q *MemoryQueue) List(_ context.Context) ([]Entry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := make([]Entry, len(q.entries))
	copy(entries, q.entries)
	return entries, nil
}

func (q *MemoryQueue) Close() error {
	return nil
}
