package sampler

import (
	"math/rand/v2"
	"time"
)

// seedMix decorrelates the second PCG word from the first so that nearby
// seeds do not produce correlated streams.
const seedMix = 0x9e3779b97f4a7c15

// NewRand returns a deterministic generator for seed. Two generators built
// from the same seed produce identical sequences.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^seedMix))
}

// RandomSeed derives a seed from the wall clock for runs that do not ask for
// reproducibility.
func RandomSeed() uint64 {
	return uint64(time.Now().UnixNano())
}
