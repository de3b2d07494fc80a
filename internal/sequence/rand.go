package sequence

import (
	"math/rand/v2"
	"sync"
)

// RandSource supplies the randomness used for pool shuffling and candidate picks.
type RandSource interface {
	// IntN returns a uniform int in [0, n). n must be > 0.
	IntN(n int) int
	// Shuffle permutes n elements using swap.
	Shuffle(n int, swap func(i, j int))
}

// lockedRand guards a *rand.Rand so one source can be shared across goroutines.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

// NewRand returns a goroutine-safe source. A zero seed draws a random one.
func NewRand(seed uint64) RandSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}
