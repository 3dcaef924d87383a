package probe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxArg is the exclusive bound on sizes and universes the probe accepts.
const MaxArg = 1 << 32

var (
	ErrArgRange    = errors.New("probe: argument does not fit in 32 bits")
	ErrBadOutput   = errors.New("probe: output is not a number")
	ErrNegativeRun = errors.New("probe: negative elapsed time")
)

// Args are the parameters of one probe invocation.
type Args struct {
	Size1         uint64
	Universe1     uint64
	Size2         uint64
	Universe2     uint64
	CopyOnWrite   bool
	RunContainers bool
}

// Validate checks that every numeric argument fits the probe's 32-bit domain.
func (a Args) Validate() error {
	for _, v := range []struct {
		name string
		val  uint64
	}{
		{"size1", a.Size1},
		{"universe1", a.Universe1},
		{"size2", a.Size2},
		{"universe2", a.Universe2},
	} {
		if v.val >= MaxArg {
			return fmt.Errorf("%w: %s=%d", ErrArgRange, v.name, v.val)
		}
	}
	return nil
}

// Argv renders the probe's command line arguments.
func (a Args) Argv() []string {
	b := func(v bool) string {
		if v {
			return "1"
		}
		return "0"
	}
	return []string{
		strconv.FormatUint(a.Size1, 10),
		strconv.FormatUint(a.Universe1, 10),
		strconv.FormatUint(a.Size2, 10),
		strconv.FormatUint(a.Universe2, 10),
		b(a.CopyOnWrite),
		b(a.RunContainers),
	}
}

// RunError reports a probe run whose output was not a usable elapsed time.
type RunError struct {
	Output string
	Err    error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("probe output %q: %v", e.Output, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Executable is a built probe in its build directory.
type Executable struct {
	Dir      string
	Commands CommandBuilder
}

// Run executes the probe once and returns the elapsed seconds it reports.
func (e *Executable) Run(ctx context.Context, args Args) (float64, error) {
	if err := args.Validate(); err != nil {
		return 0, err
	}
	argv := args.Argv()
	cmd := e.Commands.BuildCommand(ctx, "./"+probeBinary, argv...)
	cmd.SetDir(e.Dir)
	cmd.SetEnv("LD_LIBRARY_PATH=" + e.Dir)

	out, err := cmd.Output()
	if err != nil {
		return 0, &CommandError{
			Cmd:    strings.Join(append([]string{"./" + probeBinary}, argv...), " "),
			Output: out,
			Err:    err,
		}
	}
	return parseElapsed(out)
}

func parseElapsed(out []byte) (float64, error) {
	s := strings.TrimSpace(string(out))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &RunError{Output: s, Err: ErrBadOutput}
	}
	if v < 0 {
		return 0, &RunError{Output: s, Err: ErrNegativeRun}
	}
	return v, nil
}

// DryRun builds nothing and runs nothing; every measurement is zero. It lets
// a plan be exercised end to end without a C toolchain.
type DryRun struct{}

func (DryRun) Build(context.Context, BuildOptions) (Runner, error) { return DryRun{}, nil }

func (DryRun) Run(_ context.Context, args Args) (float64, error) {
	if err := args.Validate(); err != nil {
		return 0, err
	}
	return 0, nil
}
