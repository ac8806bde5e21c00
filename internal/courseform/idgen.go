package courseform

import (
	"sync"
	"time"
)

// IDGenerator hands out client side course ids derived from the wall clock in
// milliseconds. Ids are strictly increasing for the lifetime of the generator, so
// rapid successive creates never collide.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator returns a generator backed by time.Now.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns the next id.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
