// Package state holds the authoritative runtime picture of the supervised
// kernel: which cores have been sighted, where processes were placed, and
// whether a session is active. The store is the single shared mutable
// resource; the monitoring loop writes, queries read.
package state

import (
	"sync"
	"time"

	"github.com/PiusTetteh/301-GroupProject/internal/events"
	"github.com/PiusTetteh/301-GroupProject/internal/models"
)

// Store applies events to the system snapshot and serves copy-out queries.
// Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	running   bool
	startTime time.Time
	cores     map[int]models.CoreRecord
	processes []models.ProcessRecord
	stats     map[int]models.StatMap
	messages  []models.MessageRecord
}

// NewStore returns an empty store. One store is created at startup and
// injected into every component that needs it.
func NewStore() *Store {
	return &Store{
		cores: make(map[int]models.CoreRecord),
		stats: make(map[int]models.StatMap),
	}
}

// Apply folds one event into the snapshot.
func (s *Store) Apply(ev events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := ev.(type) {
	case events.ProcessCreated:
		rec := s.cores[e.Core]
		rec.Load = e.Load
		rec.Processes = append(rec.Processes, e.Pid)
		s.cores[e.Core] = rec
		s.processes = append(s.processes, models.ProcessRecord{
			Pid:       e.Pid,
			Core:      e.Core,
			Timestamp: time.Now(),
		})

	case events.CoreStatsHeader:
		if _, ok := s.stats[e.Core]; !ok {
			s.stats[e.Core] = models.StatMap{}
		}

	case events.LogLine:
		// Log lines go to observers only; they carry no state.
	}
}

// MarkStarted flips the session to running and stamps the start time.
func (s *Store) MarkStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.startTime = time.Now()
}

// MarkStopped flips the session to stopped. The start time of the last run
// is kept until the next start.
func (s *Store) MarkStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// Running reports whether a session is active.
func (s *Store) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Reset discards everything accumulated by previous sessions. Collections
// otherwise carry over from run to run; callers opt into resetting.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cores = make(map[int]models.CoreRecord)
	s.processes = nil
	s.stats = make(map[int]models.StatMap)
	s.messages = nil
	s.startTime = time.Time{}
}

// Status returns the summary snapshot.
func (s *Store) Status() models.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := models.Status{
		Running:   s.running,
		Cores:     len(s.cores),
		Processes: len(s.processes),
	}
	if !s.startTime.IsZero() {
		t := s.startTime
		st.StartTime = &t
	}
	return st
}

// Stats returns the detailed report. All maps and slices are copies; the
// caller may hold them as long as it likes.
func (s *Store) Stats() models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.Stats{
		Cores:          copyCores(s.cores),
		Stats:          copyStats(s.stats),
		TotalProcesses: len(s.processes),
		TotalMessages:  len(s.messages),
	}
}

// Cores returns a copy of the per-core records.
func (s *Store) Cores() map[int]models.CoreRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCores(s.cores)
}

// Processes returns a copy of the placement history in arrival order.
func (s *Store) Processes() []models.ProcessRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ProcessRecord, len(s.processes))
	copy(out, s.processes)
	return out
}

func copyCores(src map[int]models.CoreRecord) map[int]models.CoreRecord {
	out := make(map[int]models.CoreRecord, len(src))
	for id, rec := range src {
		pids := make([]int, len(rec.Processes))
		copy(pids, rec.Processes)
		out[id] = models.CoreRecord{Load: rec.Load, Processes: pids}
	}
	return out
}

func copyStats(src map[int]models.StatMap) map[int]models.StatMap {
	out := make(map[int]models.StatMap, len(src))
	for id, m := range src {
		sm := make(models.StatMap, len(m))
		for k, v := range m {
			sm[k] = v
		}
		out[id] = sm
	}
	return out
}
