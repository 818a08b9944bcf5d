package sim

import (
	"hash/fnv"
	"math/rand"
)

// RNGFactory derives independent, reproducible sub-generators from a
// single top-level seed, one named stream each for mobility, event
// generation, and routers. Each named stream is deterministic given
// the same master seed and name,
// regardless of call order, because the sub-seed is a hash of the
// master seed and the name rather than a counter.
type RNGFactory struct {
	masterSeed int64
}

// NewRNGFactory creates a factory rooted at the given master seed.
func NewRNGFactory(seed int64) *RNGFactory {
	return &RNGFactory{masterSeed: seed}
}

// Sub returns a new *rand.Rand for the named stream, e.g. "mobility",
// "events.0", "router.7.coin".
func (f *RNGFactory) Sub(name string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	sum := h.Sum64()
	seed := f.masterSeed ^ int64(sum)
	return rand.New(rand.NewSource(seed))
}
