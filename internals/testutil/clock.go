package testutil

import (
	"sync"
	"time"
)

// Clock: jam yang bisa dimajukan manual; Now aman dipanggil paralel.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Sunday07 = Minggu 2026-10-18 07:00 UTC, titik awal default di test.
var Sunday07 = time.Date(2026, 10, 18, 7, 0, 0, 0, time.UTC)
