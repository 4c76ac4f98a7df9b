package core

import (
	"math/rand/v2"
	"sync"
)

const DefaultMaxID = 10000

// IDGenerator hands out identifiers that were neither issued nor reserved
// before.
type IDGenerator interface {
	Next() (int, error)
	Reserve(id int)
}

var (
	_ IDGenerator = (*RandomIDGenerator)(nil)
	_ IDGenerator = (*SequenceIDGenerator)(nil)
)

// RandomIDGenerator draws identifiers uniformly from [1, max] and rejects
// any it has already issued.
type RandomIDGenerator struct {
	mu     sync.Mutex
	max    int
	issued map[int]struct{}
}

func NewRandomIDGenerator(max int) *RandomIDGenerator {
	if max <= 0 {
		max = DefaultMaxID
	}

	return &RandomIDGenerator{
		max:    max,
		issued: make(map[int]struct{}),
	}
}

func (g *RandomIDGenerator) Next() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.issued) >= g.max {
		return 0, ErrIDsExhausted
	}

	for {
		id := rand.IntN(g.max) + 1
		if _, used := g.issued[id]; !used {
			g.issued[id] = struct{}{}
			return id, nil
		}
	}
}

// Reserve marks id as taken. Identifiers outside [1, max] are never drawn and
// are ignored.
func (g *RandomIDGenerator) Reserve(id int) {
	if id < 1 || id > g.max {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.issued[id] = struct{}{}
}

type SequenceIDGenerator struct {
	mu       sync.Mutex
	last     int
	reserved map[int]struct{}
}

func NewSequenceIDGenerator() *SequenceIDGenerator {
	return &SequenceIDGenerator{reserved: make(map[int]struct{})}
}

func (g *SequenceIDGenerator) Next() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		g.last++

		if _, taken := g.reserved[g.last]; !taken {
			return g.last, nil
		}

		delete(g.reserved, g.last)
	}
}

// Reserve makes Next skip id.
func (g *SequenceIDGenerator) Reserve(id int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id > g.last {
		g.reserved[id] = struct{}{}
	}
}
