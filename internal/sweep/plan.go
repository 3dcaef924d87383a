// Package sweep drives a batch of benchmark trials: it draws one parameter
// assignment per trial, hands it to the probe and records the measurement.
package sweep

import (
	"math/rand/v2"

	"github.com/banshee-data/bitmapbench/internal/probe"
)

// Plan modes.
const (
	ModeSample    = "sample"
	ModeFactorial = "factorial"
)

// Trial is one fully drawn experiment assignment.
type Trial struct {
	Seq    int
	Build  probe.BuildOptions
	Args   probe.Args
	Fields []string
}

// Plan produces the trials of a batch. Header names the columns of
// Trial.Fields and never changes over the life of a plan.
type Plan interface {
	Mode() string
	Header() []string
	Next(r *rand.Rand) (Trial, error)
}
