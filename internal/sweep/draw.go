package sweep

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/banshee-data/bitmapbench/internal/probe"
	"github.com/banshee-data/bitmapbench/internal/sampler"
)

var drawHeader = []string{"size1", "density1", "universe1", "size2", "density2", "universe2"}

// DrawSpec describes a size/density batch. Size2 and Density2 default to
// copies of the first bitmap's samplers.
type DrawSpec struct {
	Size1    sampler.Sampler
	Density1 sampler.Sampler
	Size2    sampler.Sampler
	Density2 sampler.Sampler

	CopyOnWrite   bool
	RunContainers bool
	Build         probe.BuildOptions
}

// DrawPlan samples sizes and densities directly for every trial.
type DrawPlan struct {
	spec DrawSpec
}

// NewDrawPlan validates both size/density pairs before any trial is drawn.
func NewDrawPlan(spec DrawSpec) (*DrawPlan, error) {
	if spec.Size1 == nil || spec.Density1 == nil {
		return nil, errors.New("sweep: size1 and density1 are required")
	}
	if spec.Size2 == nil {
		spec.Size2 = sampler.NewCopy(spec.Size1)
	}
	if spec.Density2 == nil {
		spec.Density2 = sampler.NewCopy(spec.Density1)
	}
	if err := sampler.Validate(spec.Size1, spec.Density1); err != nil {
		return nil, fmt.Errorf("bitmap 1: %w", err)
	}
	if err := sampler.Validate(spec.Size2, spec.Density2); err != nil {
		return nil, fmt.Errorf("bitmap 2: %w", err)
	}
	return &DrawPlan{spec: spec}, nil
}

func (p *DrawPlan) Mode() string     { return ModeSample }
func (p *DrawPlan) Header() []string { return append([]string(nil), drawHeader...) }

// Next samples size1, density1, size2, density2 in that order so copies
// always follow their source.
func (p *DrawPlan) Next(r *rand.Rand) (Trial, error) {
	s1 := p.spec.Size1.Sample(r)
	d1 := p.spec.Density1.Sample(r)
	s2 := p.spec.Size2.Sample(r)
	d2 := p.spec.Density2.Sample(r)

	u1 := uint64(s1 / d1)
	u2 := uint64(s2 / d2)
	args := probe.Args{
		Size1:         uint64(s1),
		Universe1:     u1,
		Size2:         uint64(s2),
		Universe2:     u2,
		CopyOnWrite:   p.spec.CopyOnWrite,
		RunContainers: p.spec.RunContainers,
	}
	return Trial{
		Build: p.spec.Build,
		Args:  args,
		Fields: []string{
			strconv.FormatUint(args.Size1, 10),
			formatFloat(d1),
			strconv.FormatUint(u1, 10),
			strconv.FormatUint(args.Size2, 10),
			formatFloat(d2),
			strconv.FormatUint(u2, 10),
		},
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
