// Package factorial enumerates boolean benchmark factors and schedules their
// combinations so every combination is visited before any repeats.
package factorial

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Factor is one boolean experimental dimension.
type Factor int

// Factors in column order.
const (
	Large1 Factor = iota
	Dense1
	Large2
	Dense2
	CopyOnWrite
	RunContainers
	Amalgamation
	Optimize
	AVX
)

// NumFactors is the number of defined factors.
const NumFactors = int(AVX) + 1

var factorNames = [NumFactors]string{
	Large1:        "large1",
	Dense1:        "dense1",
	Large2:        "large2",
	Dense2:        "dense2",
	CopyOnWrite:   "copy-on-write",
	RunContainers: "run-containers",
	Amalgamation:  "amalgamation-build",
	Optimize:      "optimize",
	AVX:           "avx",
}

// aliases accepted by ParseFactor in addition to the canonical names.
var factorAliases = map[string]Factor{
	"copy_on_write":    CopyOnWrite,
	"cow":              CopyOnWrite,
	"run_containers":   RunContainers,
	"run":              RunContainers,
	"amalgamation":     Amalgamation,
	"amalg":            Amalgamation,
	"gcc_optimization": Optimize,
	"gcc":              Optimize,
	"avx_enabled":      AVX,
}

// Errors returned for invalid factor lists, pins and counts.
var (
	ErrUnknownFactor   = errors.New("factorial: unknown factor")
	ErrDuplicateFactor = errors.New("factorial: duplicate factor")
	ErrUnknownPin      = errors.New("factorial: pinned factor is not in the factor list")
	ErrBadPin          = errors.New("factorial: pin must be name=bool")
	ErrNegativeCount   = errors.New("factorial: negative assignment count")
)

func (f Factor) String() string {
	if f < 0 || int(f) >= NumFactors {
		return fmt.Sprintf("factor(%d)", int(f))
	}
	return factorNames[f]
}

// Valid reports whether f is a defined factor.
func (f Factor) Valid() bool { return f >= 0 && int(f) < NumFactors }

// ParseFactor resolves a factor by name.
func ParseFactor(name string) (Factor, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range factorNames {
		if n == name {
			return Factor(i), nil
		}
	}
	if f, ok := factorAliases[name]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFactor, name)
}

// ParseFactors resolves a list of factor names.
func ParseFactors(names []string) ([]Factor, error) {
	out := make([]Factor, 0, len(names))
	for _, n := range names {
		f, err := ParseFactor(n)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// AllFactors returns every factor in column order.
func AllFactors() []Factor {
	out := make([]Factor, NumFactors)
	for i := range out {
		out[i] = Factor(i)
	}
	return out
}

// Names returns the column names for every factor.
func Names() []string {
	return append([]string(nil), factorNames[:]...)
}

// Assignment holds one value per factor. Factors outside a generator's list
// stay false. Assignments are comparable, so equality is structural.
type Assignment [NumFactors]bool

// Get returns the value of f.
func (a Assignment) Get(f Factor) bool { return a[f] }

// With returns a copy of a with f set to v.
func (a Assignment) With(f Factor, v bool) Assignment {
	a[f] = v
	return a
}

// Fields renders every factor value in column order.
func (a Assignment) Fields() []string {
	out := make([]string, NumFactors)
	for i, v := range a {
		out[i] = strconv.FormatBool(v)
	}
	return out
}

func (a Assignment) String() string {
	var b strings.Builder
	for i, v := range a {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(factorNames[i])
		b.WriteByte('=')
		b.WriteString(strconv.FormatBool(v))
	}
	return b.String()
}

// Pins fixes a subset of factors to constant values.
type Pins struct {
	mask  [NumFactors]bool
	value [NumFactors]bool
}

// Pin fixes f to v. f must be a defined factor; anything else is a
// programming error and panics.
func (p *Pins) Pin(f Factor, v bool) {
	if !f.Valid() {
		panic(fmt.Sprintf("factorial: Pin of undefined factor %d", int(f)))
	}
	p.mask[f] = true
	p.value[f] = v
}

// IsPinned reports whether f is pinned. Undefined factors never are.
func (p Pins) IsPinned(f Factor) bool { return f.Valid() && p.mask[f] }

// Value returns the pinned value of f and whether f is pinned.
func (p Pins) Value(f Factor) (bool, bool) {
	if !f.Valid() {
		return false, false
	}
	return p.value[f], p.mask[f]
}

// Len returns the number of pinned factors.
func (p Pins) Len() int {
	n := 0
	for _, m := range p.mask {
		if m {
			n++
		}
	}
	return n
}

// Pinned returns the pinned factors in column order.
func (p Pins) Pinned() []Factor {
	var out []Factor
	for i, m := range p.mask {
		if m {
			out = append(out, Factor(i))
		}
	}
	return out
}

func (p Pins) apply(a Assignment) Assignment {
	for i, m := range p.mask {
		if m {
			a[i] = p.value[i]
		}
	}
	return a
}

func (p Pins) String() string {
	parts := make([]string, 0, NumFactors)
	for _, f := range p.Pinned() {
		parts = append(parts, f.String()+"="+strconv.FormatBool(p.value[f]))
	}
	return strings.Join(parts, ",")
}

// DefaultPins matches the usual factorial sweep: both bitmaps large and an
// optimised build.
func DefaultPins() Pins {
	var p Pins
	p.Pin(Large1, true)
	p.Pin(Large2, true)
	p.Pin(Optimize, true)
	return p
}

// Restrict drops pins on factors not in factors.
func (p Pins) Restrict(factors []Factor) Pins {
	var out Pins
	for _, f := range factors {
		if v, ok := p.Value(f); ok {
			out.Pin(f, v)
		}
	}
	return out
}

// ParsePins reads "name=bool" entries.
func ParsePins(entries []string) (Pins, error) {
	var p Pins
	for _, e := range entries {
		name, val, ok := strings.Cut(e, "=")
		if !ok {
			return Pins{}, fmt.Errorf("%w: %q", ErrBadPin, e)
		}
		f, err := ParseFactor(name)
		if err != nil {
			return Pins{}, err
		}
		v, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return Pins{}, fmt.Errorf("%w: %q", ErrBadPin, e)
		}
		p.Pin(f, v)
	}
	return p, nil
}

// PinsFromMap builds Pins from a name to value mapping.
func PinsFromMap(m map[string]bool) (Pins, error) {
	var p Pins
	for name, v := range m {
		f, err := ParseFactor(name)
		if err != nil {
			return Pins{}, err
		}
		p.Pin(f, v)
	}
	return p, nil
}
