package crontab

import (
	"context"
	"sync"
)

// Store is a scheduler holding tagged jobs. Changes are buffered until Persist.
type Store interface {
	List(tag string) []Job
	RemoveByTag(tag string) int
	Add(job Job) error
	Persist(ctx context.Context) error
}

// Memory is an in-process Store used by dry runs and tests.
type Memory struct {
	mu       sync.Mutex
	jobs     []Job
	persists int
}

func NewMemory(jobs ...Job) *Memory {
	return &Memory{jobs: append([]Job(nil), jobs...)}
}

func (m *Memory) List(tag string) []Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return filter(m.jobs, tag)
}

func (m *Memory) RemoveByTag(tag string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.jobs[:0]
	removed := 0
	for _, j := range m.jobs {
		if j.Tag == tag {
			removed++
			continue
		}
		kept = append(kept, j)
	}
	m.jobs = kept
	return removed
}

func (m *Memory) Add(job Job) error {
	if err := Validate(job.Spec()); err != nil {
		return err
	}
	m.mu.Lock()
	m.jobs = append(m.jobs, job)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Persist(context.Context) error {
	m.mu.Lock()
	m.persists++
	m.mu.Unlock()
	return nil
}

// Jobs returns every job, tagged or not, in insertion order.
func (m *Memory) Jobs() []Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Job(nil), m.jobs...)
}

// Persists reports how many times Persist was called.
func (m *Memory) Persists() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persists
}

func filter(jobs []Job, tag string) []Job {
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		if tag == "" || j.Tag == tag {
			out = append(out, j)
		}
	}
	return out
}
