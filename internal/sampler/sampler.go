// Package sampler provides bounded, repeatable random value sources used to
// draw benchmark parameters.
//
// Every draw takes its randomness from a caller-owned *rand.Rand so that two
// runs seeded identically observe identical sequences.
package sampler

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Variant identifies the concrete kind of a Sampler.
type Variant int

const (
	VariantDiscrete Variant = iota
	VariantContinuous
	VariantCopy
)

func (v Variant) String() string {
	switch v {
	case VariantDiscrete:
		return "discrete"
	case VariantContinuous:
		return "continuous"
	case VariantCopy:
		return "copy"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// Sampler is a value source with bounds known before any draw.
type Sampler interface {
	// Sample draws the next value and records it as the most recent draw.
	Sample(r *rand.Rand) float64
	// Last returns the most recent draw and whether one exists.
	Last() (float64, bool)
	// Min and Max bound every value Sample can return.
	Min() float64
	Max() float64
	Variant() Variant
	String() string
}

type last struct {
	value float64
	ok    bool
}

func (l *last) record(v float64) float64 {
	l.value = v
	l.ok = true
	return v
}

// Last returns the most recent draw.
func (l *last) Last() (float64, bool) { return l.value, l.ok }

// Discrete draws uniformly by position from an explicit list, or from an
// inclusive integer range that is never materialised.
type Discrete struct {
	last
	values   []float64
	lo, hi   int64
	isRange  bool
	min, max float64
}

// NewDiscrete builds a sampler over values. Duplicates are kept, so a value
// listed twice is drawn twice as often.
func NewDiscrete(values ...float64) (*Discrete, error) {
	if len(values) == 0 {
		return nil, ErrEmptySampler
	}
	d := &Discrete{
		values: append([]float64(nil), values...),
		min:    values[0],
		max:    values[0],
	}
	for _, v := range values[1:] {
		d.min = math.Min(d.min, v)
		d.max = math.Max(d.max, v)
	}
	return d, nil
}

// NewDiscreteRange builds a sampler over the integers lo..hi inclusive.
func NewDiscreteRange(lo, hi int64) (*Discrete, error) {
	if hi < lo {
		return nil, ErrEmptySampler
	}
	return &Discrete{
		lo:      lo,
		hi:      hi,
		isRange: true,
		min:     float64(lo),
		max:     float64(hi),
	}, nil
}

// Len returns the number of positions a draw chooses between.
func (d *Discrete) Len() uint64 {
	if d.isRange {
		return uint64(d.hi) - uint64(d.lo) + 1
	}
	return uint64(len(d.values))
}

func (d *Discrete) Sample(r *rand.Rand) float64 {
	if d.isRange {
		n := uint64(d.hi) - uint64(d.lo)
		var off uint64
		if n == math.MaxUint64 {
			off = r.Uint64()
		} else {
			off = r.Uint64N(n + 1)
		}
		return d.record(float64(d.lo + int64(off)))
	}
	return d.record(d.values[r.IntN(len(d.values))])
}

func (d *Discrete) Min() float64     { return d.min }
func (d *Discrete) Max() float64     { return d.max }
func (d *Discrete) Variant() Variant { return VariantDiscrete }

func (d *Discrete) String() string {
	if d.isRange {
		return fmt.Sprintf("%d:%d", d.lo, d.hi)
	}
	parts := make([]string, len(d.values))
	for i, v := range d.values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Continuous draws uniformly from the half-open interval [start, stop). A
// zero-width interval always yields start.
type Continuous struct {
	last
	start, stop float64
}

// NewContinuous builds a sampler over [start, stop).
func NewContinuous(start, stop float64) (*Continuous, error) {
	if stop < start {
		return nil, ErrEmptySampler
	}
	return &Continuous{start: start, stop: stop}, nil
}

func (c *Continuous) Sample(r *rand.Rand) float64 {
	if c.start == c.stop {
		return c.record(c.start)
	}
	var v float64
	if math.IsInf(c.stop-c.start, 0) {
		// The width overflows float64; interpolate so neither term does.
		u := r.Float64()
		v = c.start*(1-u) + c.stop*u
	} else {
		v = distuv.Uniform{Min: c.start, Max: c.stop, Src: r}.Rand()
	}
	if v < c.start {
		v = c.start
	}
	// Rounding in Min+x*(Max-Min) can land on Max.
	if v >= c.stop {
		v = math.Nextafter(c.stop, c.start)
	}
	return c.record(v)
}

func (c *Continuous) Min() float64     { return c.start }
func (c *Continuous) Max() float64     { return c.stop }
func (c *Continuous) Variant() Variant { return VariantContinuous }

func (c *Continuous) String() string {
	return strconv.FormatFloat(c.start, 'f', -1, 64) + ":" + strconv.FormatFloat(c.stop, 'f', -1, 64)
}

// Copy mirrors the most recent draw of another sampler. The source must be
// sampled before the Copy within the same round.
type Copy struct {
	last
	source Sampler
}

// NewCopy returns a sampler that repeats source's latest value.
func NewCopy(source Sampler) *Copy {
	return &Copy{source: source}
}

// Source returns the mirrored sampler.
func (c *Copy) Source() Sampler { return c.source }

// Sample returns the source's latest value and ignores r. It panics with
// ErrSourceNotSampled when the source has never been sampled, since that is a
// call-order defect in the caller.
func (c *Copy) Sample(_ *rand.Rand) float64 {
	v, ok := c.source.Last()
	if !ok {
		panic(ErrSourceNotSampled)
	}
	return c.record(v)
}

func (c *Copy) Min() float64     { return c.source.Min() }
func (c *Copy) Max() float64     { return c.source.Max() }
func (c *Copy) Variant() Variant { return VariantCopy }
func (c *Copy) String() string   { return "copy(" + c.source.String() + ")" }
