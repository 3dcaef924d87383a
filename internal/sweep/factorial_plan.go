package sweep

import (
	"math/rand/v2"
	"strconv"

	"github.com/banshee-data/bitmapbench/internal/factorial"
	"github.com/banshee-data/bitmapbench/internal/probe"
)

// FactorialPlan schedules boolean factor combinations and derives concrete
// bitmap shapes for each.
type FactorialPlan struct {
	gen *factorial.Generator
}

// NewFactorialPlan wraps a generator.
func NewFactorialPlan(gen *factorial.Generator) *FactorialPlan {
	return &FactorialPlan{gen: gen}
}

// Generator returns the underlying generator.
func (p *FactorialPlan) Generator() *factorial.Generator { return p.gen }

func (p *FactorialPlan) Mode() string { return ModeFactorial }

func (p *FactorialPlan) Header() []string {
	return append(factorial.Names(), "size1", "universe1", "size2", "universe2")
}

func (p *FactorialPlan) Next(r *rand.Rand) (Trial, error) {
	a := p.gen.Next(r)
	s1, s2 := a.Shapes(r)
	args := probe.Args{
		Size1:         s1.Size,
		Universe1:     s1.Universe,
		Size2:         s2.Size,
		Universe2:     s2.Universe,
		CopyOnWrite:   a.Get(factorial.CopyOnWrite),
		RunContainers: a.Get(factorial.RunContainers),
	}
	fields := append(a.Fields(),
		strconv.FormatUint(s1.Size, 10),
		strconv.FormatUint(s1.Universe, 10),
		strconv.FormatUint(s2.Size, 10),
		strconv.FormatUint(s2.Universe, 10),
	)
	return Trial{
		Build: probe.BuildOptions{
			Amalgamation: a.Get(factorial.Amalgamation),
			Optimize:     a.Get(factorial.Optimize),
			AVX:          a.Get(factorial.AVX),
		},
		Args:   args,
		Fields: fields,
	}, nil
}
