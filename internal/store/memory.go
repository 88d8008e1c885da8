package store

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process store with the same behavior as DB. Setting
// FailWrites makes every Set return that error.
type Memory struct {
	mu         sync.Mutex
	data       map[string][]byte
	milestones []Milestone
	writes     int

	FailWrites error
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.data[key] = append([]byte(nil), value...)
	m.writes++
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	m.milestones = nil
	return nil
}

func (m *Memory) BytesInUse(_ context.Context) (Quota, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := Quota{Keys: len(m.data), Milestones: len(m.milestones)}
	for k, v := range m.data {
		q.BytesInUse += int64(len(k) + len(v))
	}
	return q, nil
}

func (m *Memory) AppendMilestone(_ context.Context, band float64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.milestones = append(m.milestones, Milestone{Band: band, ReachedAt: at.UTC()})
	return nil
}

func (m *Memory) Milestones(_ context.Context) ([]Milestone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Milestone(nil), m.milestones...), nil
}

// Writes counts successful Set calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *Memory) Close() error { return nil }
