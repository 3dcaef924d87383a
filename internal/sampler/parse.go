package sampler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind selects how numeric tokens in a spec are interpreted.
type Kind int

const (
	Integer Kind = iota
	Real
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Real:
		return "real"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	listSep  = ","
	rangeSep = ":"
)

// Parse turns a value spec into a Sampler.
//
//	"1,4,9"   explicit list, drawn uniformly by position
//	"10:20"   inclusive range; integers stay discrete, reals become [10,20)
//	"7"       single value
//
// List and range separators may not be mixed.
func Parse(spec string, kind Kind) (Sampler, error) {
	hasList := strings.Contains(spec, listSep)
	hasRange := strings.Contains(spec, rangeSep)

	switch {
	case hasList && hasRange:
		return nil, &FormatError{Spec: spec, Err: ErrMixedSeparators}
	case hasRange:
		return parseRange(spec, kind)
	default:
		return parseList(spec, kind)
	}
}

// MustParse is like Parse but panics on error. It is intended for literals.
func MustParse(spec string, kind Kind) Sampler {
	s, err := Parse(spec, kind)
	if err != nil {
		panic(err)
	}
	return s
}

func parseRange(spec string, kind Kind) (Sampler, error) {
	fields := strings.Split(spec, rangeSep)
	if len(fields) > 2 {
		return nil, &FormatError{Spec: spec, Err: ErrMalformedRange}
	}
	if len(fields) == 1 {
		fields = append(fields, fields[0])
	}

	if kind == Integer {
		lo, err := parseInt(spec, fields[0])
		if err != nil {
			return nil, err
		}
		hi, err := parseInt(spec, fields[1])
		if err != nil {
			return nil, err
		}
		if hi < lo {
			return nil, &FormatError{Spec: spec, Err: ErrEmptyRange}
		}
		d, err := NewDiscreteRange(lo, hi)
		if err != nil {
			return nil, &FormatError{Spec: spec, Err: err}
		}
		return d, nil
	}

	lo, err := parseFloat(spec, fields[0])
	if err != nil {
		return nil, err
	}
	hi, err := parseFloat(spec, fields[1])
	if err != nil {
		return nil, err
	}
	if hi < lo {
		return nil, &FormatError{Spec: spec, Err: ErrEmptyRange}
	}
	c, err := NewContinuous(lo, hi)
	if err != nil {
		return nil, &FormatError{Spec: spec, Err: err}
	}
	return c, nil
}

func parseList(spec string, kind Kind) (Sampler, error) {
	tokens := strings.Split(spec, listSep)
	values := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		var v float64
		if kind == Integer {
			n, err := parseInt(spec, tok)
			if err != nil {
				return nil, err
			}
			v = float64(n)
		} else {
			f, err := parseFloat(spec, tok)
			if err != nil {
				return nil, err
			}
			v = f
		}
		values = append(values, v)
	}
	d, err := NewDiscrete(values...)
	if err != nil {
		return nil, &FormatError{Spec: spec, Err: err}
	}
	return d, nil
}

func parseInt(spec, tok string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
	if err != nil {
		return 0, &FormatError{Spec: spec, Token: tok, Err: ErrInvalidNumber}
	}
	return n, nil
}

func parseFloat(spec, tok string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &FormatError{Spec: spec, Token: tok, Err: ErrInvalidNumber}
	}
	return f, nil
}
