package factorial

import (
	"fmt"
	"math/rand/v2"
)

// Generator produces a coverage-balanced sequence of assignments: within
// every block of Total() consecutive draws each combination appears exactly
// once.
type Generator struct {
	factors []Factor
	pins    Pins
	combos  []Assignment
	pool    []Assignment
}

// NewGenerator enumerates every combination of factors with pins applied.
func NewGenerator(factors []Factor, pins Pins) (*Generator, error) {
	var seen [NumFactors]bool
	for _, f := range factors {
		if !f.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrUnknownFactor, int(f))
		}
		if seen[f] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFactor, f)
		}
		seen[f] = true
	}
	for _, f := range pins.Pinned() {
		if !seen[f] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPin, f)
		}
	}

	g := &Generator{
		factors: append([]Factor(nil), factors...),
		pins:    pins,
		combos:  enumerate(factors, pins),
	}

	want := 1 << (len(factors) - pins.Len())
	if len(g.combos) != want {
		panic(fmt.Sprintf("factorial: %d distinct combinations after pinning, want %d", len(g.combos), want))
	}
	return g, nil
}

// enumerate walks the full cross product, bit i of the counter driving
// factors[i], and keeps the first occurrence of each pinned result.
func enumerate(factors []Factor, pins Pins) []Assignment {
	total := 1 << len(factors)
	seen := make(map[Assignment]struct{}, total)
	out := make([]Assignment, 0, total>>pins.Len())
	for c := 0; c < total; c++ {
		var a Assignment
		for i, f := range factors {
			a[f] = c&(1<<i) != 0
		}
		a = pins.apply(a)
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

// Factors returns the factors the generator varies or pins.
func (g *Generator) Factors() []Factor { return append([]Factor(nil), g.factors...) }

// Pins returns the pinned values.
func (g *Generator) Pins() Pins { return g.pins }

// Total returns the number of distinct combinations.
func (g *Generator) Total() int { return len(g.combos) }

// Combinations returns a copy of the distinct combinations in enumeration order.
func (g *Generator) Combinations() []Assignment {
	return append([]Assignment(nil), g.combos...)
}

// Remaining returns how many draws are left before the pool refills.
func (g *Generator) Remaining() int { return len(g.pool) }

// Next draws one assignment without replacement, refilling the pool once it
// is empty.
func (g *Generator) Next(r *rand.Rand) Assignment {
	if len(g.pool) == 0 {
		g.pool = append(g.pool[:0], g.combos...)
		r.Shuffle(len(g.pool), func(i, j int) {
			g.pool[i], g.pool[j] = g.pool[j], g.pool[i]
		})
	}
	a := g.pool[len(g.pool)-1]
	g.pool = g.pool[:len(g.pool)-1]
	return a
}

// Generate draws n assignments. A negative n yields none.
func (g *Generator) Generate(n int, r *rand.Rand) []Assignment {
	out := make([]Assignment, max(n, 0))
	for i := range out {
		out[i] = g.Next(r)
	}
	return out
}

// Reset discards the partially consumed pool.
func (g *Generator) Reset() { g.pool = g.pool[:0] }

// Generate is a one-shot helper around NewGenerator.
func Generate(n int, factors []Factor, pins Pins, r *rand.Rand) ([]Assignment, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeCount, n)
	}
	g, err := NewGenerator(factors, pins)
	if err != nil {
		return nil, err
	}
	return g.Generate(n, r), nil
}
