// Package observability tracks per-operation counters for the persistence gateway.
package observability

import (
	"sort"
	"sync"
	"time"
)

// OpStats counts calls, failures, rows and latency per store operation.
type OpStats struct {
	mu  sync.RWMutex
	ops map[string]*opCounter
}

type opCounter struct {
	calls     int64
	failures  int64
	rows      int64
	total     time.Duration
	lastError string
	lastSeen  time.Time
}

// OpSnapshot is a point-in-time copy of one operation's counters.
type OpSnapshot struct {
	Op        string        `json:"op"`
	Calls     int64         `json:"calls"`
	Failures  int64         `json:"failures"`
	Rows      int64         `json:"rows"`
	Total     time.Duration `json:"total_ns"`
	LastError string        `json:"last_error,omitempty"`
	LastSeen  time.Time     `json:"last_seen"`
}

// NewOpStats creates an empty tracker.
func NewOpStats() *OpStats {
	return &OpStats{
		ops: make(map[string]*opCounter),
	}
}

// Record adds one call of op that touched rows rows and took elapsed.
// A non-nil err counts as a failure.
// This method is O(1) and thread-safe.
func (s *OpStats) Record(op string, rows int, elapsed time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.ops[op]
	if !exists {
		c = &opCounter{}
		s.ops[op] = c
	}

	c.calls++
	c.rows += int64(rows)
	c.total += elapsed
	c.lastSeen = time.Now()
	if err != nil {
		c.failures++
		c.lastError = err.Error()
	}
}

// Failures returns the failure count for op.
func (s *OpStats) Failures(op string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.ops[op]; ok {
		return c.failures
	}
	return 0
}

// Calls returns the call count for op.
func (s *OpStats) Calls(op string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.ops[op]; ok {
		return c.calls
	}
	return 0
}

// Snapshot returns a copy of all counters sorted by calls (descending),
// ties broken by operation name.
func (s *OpStats) Snapshot() []OpSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]OpSnapshot, 0, len(s.ops))
	for op, c := range s.ops {
		out = append(out, OpSnapshot{
			Op:        op,
			Calls:     c.calls,
			Failures:  c.failures,
			Rows:      c.rows,
			Total:     c.total,
			LastError: c.lastError,
			LastSeen:  c.lastSeen,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Op < out[j].Op
	})
	return out
}

// Reset clears all counters.
func (s *OpStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ops = make(map[string]*opCounter)
}
