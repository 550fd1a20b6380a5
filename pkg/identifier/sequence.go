package identifier

import (
	"math/rand"
	"sync"
	"sync/atomic"
)

// Sequencer supplies the raw sequence number for a new id.
type Sequencer interface {
	Next() int
}

// Counter is a running sequence, safe for concurrent use.
type Counter struct {
	n atomic.Int64
}

// NewCounter returns a Counter whose first Next call yields start+1.
func NewCounter(start int) *Counter {
	c := &Counter{}
	c.n.Store(int64(start))
	return c
}

func (c *Counter) Next() int {
	return int(c.n.Add(1))
}

// Random draws sequence numbers in [0, 10000).
type Random struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{rnd: rand.New(rand.NewSource(seed))}
}

func (r *Random) Next() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(10000)
}
