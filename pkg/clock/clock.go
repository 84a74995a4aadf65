package clock

import (
	"sync"
	"time"
)

// Clock supplies the current timestamp in seconds.
// Successive calls never go backwards.
type Clock interface {
	Now() uint64
}

// System reads the wall clock, holding the last value if the wall clock steps back.
type System struct {
	mu   sync.Mutex
	last uint64
	now  func() time.Time
}

// NewSystem creates a System clock.
func NewSystem() *System {
	return &System{now: time.Now}
}

func (s *System) Now() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := uint64(s.now().Unix())
	if ts < s.last {
		return s.last
	}
	s.last = ts
	return ts
}

// Manual is a Clock moved by hand.
type Manual struct {
	mu  sync.Mutex
	now uint64
}

// NewManual creates a Manual clock reading start.
func NewManual(start uint64) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d seconds.
func (m *Manual) Advance(d uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
}

// Set moves the clock to ts. Values behind the current reading are ignored.
func (m *Manual) Set(ts uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ts > m.now {
		m.now = ts
	}
}
