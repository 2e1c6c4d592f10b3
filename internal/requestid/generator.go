// Package requestid generates the durable identifiers requests are keyed by.
package requestid

import (
	"fmt"
	"sync"
	"time"
)

// Generator produces identifiers of the form REQ-YYYYMMDD-HHMMSS-XXX where
// XXX is a per-second counter. Identifiers generated by one Generator are
// unique and sort by creation time; generation never fails. When the 1000
// ids of one second are exhausted the generator rolls into the next second's
// value instead of emitting a duplicate.
//
// The counter is owned by the instance, not the process, so tests can reset
// state by constructing a fresh Generator.
type Generator struct {
	mu      sync.Mutex
	loc     *time.Location
	now     func() time.Time
	second  int64 // unix second the counter belongs to
	counter int
}

// New creates a Generator stamping ids in the given location. A nil
// location means UTC.
func New(loc *time.Location) *Generator {
	return NewWithClock(loc, time.Now)
}

// NewWithClock creates a Generator with an injected clock.
func NewWithClock(loc *time.Location, now func() time.Time) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{loc: loc, now: now}
}

// Next returns the next identifier. Safe for concurrent use.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	sec := g.now().Unix()
	switch {
	case sec > g.second:
		g.second = sec
		g.counter = 0
	case g.counter > 999:
		// Counter space for g.second is exhausted; roll into the next
		// second rather than reuse a disambiguator. The wall clock may
		// still be behind g.second, ordering stays monotonic either way.
		g.second++
		g.counter = 0
	}

	stamp := time.Unix(g.second, 0).In(g.loc)
	id := fmt.Sprintf("REQ-%s-%03d", stamp.Format("20060102-150405"), g.counter)
	g.counter++
	return id
}
