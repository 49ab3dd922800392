package snowflake

import (
	"sync"
	"time"
)

// Generator issues unique, strictly increasing IDs. The low 16 bits carry a
// per-millisecond sequence; when the sequence overflows the generator spins
// into the next millisecond. Safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	lastMS int64
	seq    int64

	now func() time.Time
}

// NewGenerator creates a Generator backed by the wall clock.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// NextID returns the next ID. IDs never go backwards, even if the wall
// clock does.
func (g *Generator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UTC().Sub(Epoch).Milliseconds()
	if ms < g.lastMS {
		ms = g.lastMS
	}
	if ms == g.lastMS {
		g.seq++
		if g.seq >= 1<<timestampShift {
			ms++
			g.seq = 0
		}
	} else {
		g.seq = 0
	}
	g.lastMS = ms

	return ms<<timestampShift | g.seq
}
