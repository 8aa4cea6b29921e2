package order

import (
	"strconv"
	"sync"
	"time"
)

const IDPrefix = "ORD"

// IDGenerator issues "ORD<epochMillis>" ids. When two ids would fall in the
// same millisecond the later one is bumped forward, so ids from one generator
// never repeat.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Seed makes the generator continue after ids already present in a ledger.
func (g *IDGenerator) Seed(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		if len(id) <= len(IDPrefix) || id[:len(IDPrefix)] != IDPrefix {
			continue
		}
		if ms, err := strconv.ParseInt(id[len(IDPrefix):], 10, 64); err == nil && ms > g.last {
			g.last = ms
		}
	}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return IDPrefix + strconv.FormatInt(ms, 10)
}
