// Package cooldown keeps per-command-per-caller invocation timestamps and
// answers how long a caller still has to wait. Records evict themselves on a
// timer tied to first use; a repeat use refreshes the timestamp but never the
// timer (see Touch).
package cooldown

import (
	"fmt"
	"sync"
	"time"
)

// Lookup resolves a command name to its configured cooldown window in
// seconds. The store calls it on every check so a changed definition takes
// effect on the next check, not the next record.
type Lookup func(command string) (seconds float64, ok bool)

type Store struct {
	mu      sync.Mutex
	lookup  Lookup
	records map[string]time.Time
	timers  map[string]*time.Timer
	now     func() time.Time
	closed  bool
}

func NewStore(lookup Lookup) *Store {
	return &Store{
		lookup:  lookup,
		records: make(map[string]time.Time),
		timers:  make(map[string]*time.Timer),
		now:     time.Now,
	}
}

func key(command, caller string) string {
	return command + "\x00" + caller
}

// Touch stamps now as the last use of command by caller and schedules the
// record's eviction. If an eviction timer already governs the key, the stamp
// is refreshed but the original timer keeps its original deadline; only one
// timer ever governs a key.
func (s *Store) Touch(command, caller string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	k := key(command, caller)
	s.records[k] = s.now()

	if _, pending := s.timers[k]; pending {
		return
	}
	window, ok := s.lookup(command)
	if !ok || window <= 0 {
		return
	}
	s.timers[k] = time.AfterFunc(time.Duration(window*float64(time.Second)), func() {
		s.evict(k)
	})
}

func (s *Store) evict(k string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, k)
	delete(s.timers, k)
}

// Remaining returns the fractional seconds left on the cooldown, or 0 once
// expired. An unknown command is a configuration error and reads as 0. A
// caller with no record gets one stamped for free and reads as 0; after that,
// repeated calls never mutate state.
func (s *Store) Remaining(command, caller string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window, ok := s.lookup(command)
	if !ok {
		return 0, fmt.Errorf("no cooldown window registered for command %q", command)
	}

	k := key(command, caller)
	last, exists := s.records[k]
	if !exists {
		if s.closed {
			return 0, nil
		}
		s.records[k] = s.now()
		if window > 0 {
			if _, pending := s.timers[k]; !pending {
				s.timers[k] = time.AfterFunc(time.Duration(window*float64(time.Second)), func() {
					s.evict(k)
				})
			}
		}
		return 0, nil
	}

	elapsed := s.now().Sub(last).Seconds()
	if left := window - elapsed; left > 0 {
		return left, nil
	}
	return 0, nil
}

// Close cancels every pending eviction timer.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for k, t := range s.timers {
		t.Stop()
		delete(s.timers, k)
	}
}
