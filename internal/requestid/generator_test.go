package requestid

import (
	"regexp"
	"sync"
	"testing"
	"time"
)

var idPattern = regexp.MustCompile(`^REQ-\d{8}-\d{6}-\d{3}$`)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNextFormat(t *testing.T) {
	clock := fixedClock(time.Date(2025, 10, 22, 14, 30, 5, 0, time.UTC))
	g := NewWithClock(time.UTC, clock)

	id := g.Next()
	if !idPattern.MatchString(id) {
		t.Fatalf("Next() = %q, does not match REQ-YYYYMMDD-HHMMSS-XXX", id)
	}
	if id != "REQ-20251022-143005-000" {
		t.Errorf("Next() = %q, expected REQ-20251022-143005-000", id)
	}
}

func TestNextUniqueWithinSameSecond(t *testing.T) {
	clock := fixedClock(time.Date(2025, 10, 22, 14, 30, 5, 0, time.UTC))
	g := NewWithClock(time.UTC, clock)

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := g.Next()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q at iteration %d", id, i)
		}
		seen[id] = struct{}{}
	}
}

func TestNextRollsIntoNextSecondWhenExhausted(t *testing.T) {
	clock := fixedClock(time.Date(2025, 10, 22, 14, 30, 59, 0, time.UTC))
	g := NewWithClock(time.UTC, clock)

	for i := 0; i < 1000; i++ {
		g.Next()
	}

	// The 1001st id of one wall-clock second must carry the next second's
	// stamp, never a reused disambiguator.
	id := g.Next()
	if id != "REQ-20251022-143100-000" {
		t.Errorf("Next() after exhaustion = %q, expected REQ-20251022-143100-000", id)
	}
}

func TestNextCounterResetsOnNewSecond(t *testing.T) {
	now := time.Date(2025, 10, 22, 14, 30, 5, 0, time.UTC)
	g := NewWithClock(time.UTC, func() time.Time { return now })

	g.Next()
	g.Next()
	now = now.Add(time.Second)

	if id := g.Next(); id != "REQ-20251022-143006-000" {
		t.Errorf("Next() = %q, expected counter reset on new second", id)
	}
}

func TestNextSortsByGenerationOrder(t *testing.T) {
	now := time.Date(2025, 10, 22, 14, 30, 59, 0, time.UTC)
	g := NewWithClock(time.UTC, func() time.Time { return now })

	prev := g.Next()
	for i := 0; i < 2500; i++ {
		if i%3 == 0 {
			now = now.Add(time.Second)
		}
		id := g.Next()
		if id <= prev {
			t.Fatalf("ids out of order: %q then %q", prev, id)
		}
		prev = id
	}
}

func TestNextConcurrent(t *testing.T) {
	g := New(time.UTC)

	const workers = 50
	ids := make([]string, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ids[n] = g.Next()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, workers)
	for _, id := range ids {
		if !idPattern.MatchString(id) {
			t.Errorf("concurrent Next() = %q, bad format", id)
		}
		if _, dup := seen[id]; dup {
			t.Errorf("concurrent Next() produced duplicate %q", id)
		}
		seen[id] = struct{}{}
	}
}
