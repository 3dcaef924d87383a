package probe

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/bitmapbench/internal/fsutil"
	"github.com/banshee-data/bitmapbench/internal/monitoring"
)

// Default locations, relative to the working directory.
const (
	DefaultSourceDir   = "CRoaring"
	DefaultWorkDir     = "build"
	DefaultProbeSource = "roaring_op.c"
	probeBinary        = "roaring_op"
)

// CommandError reports a build or probe command that exited unsuccessfully.
type CommandError struct {
	Cmd    string
	Output []byte
	Err    error
}

func (e *CommandError) Error() string {
	out := strings.TrimSpace(string(e.Output))
	if out == "" {
		return fmt.Sprintf("command %q: %v", e.Cmd, e.Err)
	}
	return fmt.Sprintf("command %q: %v: %s", e.Cmd, e.Err, out)
}

func (e *CommandError) Unwrap() error { return e.Err }

// BuildOptions selects how the library and probe are compiled.
type BuildOptions struct {
	Amalgamation bool
	Optimize     bool
	AVX          bool
}

// Key names the build directory for these options.
func (o BuildOptions) Key() string {
	flag := func(on bool, name string) string {
		if on {
			return name
		}
		return "no" + name
	}
	return strings.Join([]string{
		flag(o.Amalgamation, "amalg"),
		flag(o.Optimize, "opt"),
		flag(o.AVX, "avx"),
	}, "-")
}

func (o BuildOptions) optLevel() string {
	if o.Optimize {
		return "-O3"
	}
	return "-O0"
}

// Runner executes one measurement.
type Runner interface {
	Run(ctx context.Context, args Args) (float64, error)
}

// Builder prepares a Runner for a set of build options.
type Builder interface {
	Build(ctx context.Context, opts BuildOptions) (Runner, error)
}

// Toolchain compiles CRoaring and the probe with the system C toolchain.
type Toolchain struct {
	SourceDir   string
	WorkDir     string
	ProbeSource string
	Commands    CommandBuilder
	FS          fsutil.FileSystem
}

// NewToolchain returns a Toolchain using the real command runner and
// filesystem. Empty paths take the package defaults.
func NewToolchain(sourceDir, workDir, probeSource string) *Toolchain {
	if sourceDir == "" {
		sourceDir = DefaultSourceDir
	}
	if workDir == "" {
		workDir = DefaultWorkDir
	}
	if probeSource == "" {
		probeSource = DefaultProbeSource
	}
	return &Toolchain{
		SourceDir:   sourceDir,
		WorkDir:     workDir,
		ProbeSource: probeSource,
		Commands:    NewRealCommandBuilder(),
		FS:          fsutil.OSFileSystem{},
	}
}

// Build compiles the library and probe into a fresh directory under WorkDir.
func (t *Toolchain) Build(ctx context.Context, opts BuildOptions) (Runner, error) {
	src, err := filepath.Abs(t.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolve source dir: %w", err)
	}
	dir, err := filepath.Abs(filepath.Join(t.WorkDir, opts.Key()))
	if err != nil {
		return nil, fmt.Errorf("resolve build dir: %w", err)
	}
	if !t.FS.Exists(src) {
		return nil, fmt.Errorf("source dir %s: %w", src, errNotFound)
	}
	if err := fsutil.ResetDir(t.FS, dir); err != nil {
		return nil, err
	}

	monitoring.Logf("building %s in %s", opts.Key(), dir)
	if opts.Amalgamation {
		err = t.buildAmalgamation(ctx, src, dir, opts)
	} else {
		err = t.buildMake(ctx, src, dir, opts)
	}
	if err != nil {
		return nil, err
	}
	if err := t.buildProbe(ctx, dir, opts); err != nil {
		return nil, err
	}
	return &Executable{Dir: dir, Commands: t.Commands}, nil
}

var errNotFound = errors.New("not found")

func (t *Toolchain) buildAmalgamation(ctx context.Context, src, dir string, opts BuildOptions) error {
	if err := t.run(ctx, dir, "bash", filepath.Join(src, "amalgamation.sh")); err != nil {
		return err
	}
	if err := t.FS.MkdirAll(filepath.Join(dir, "roaring"), 0o755); err != nil {
		return fmt.Errorf("create header dir: %w", err)
	}
	if err := fsutil.CopyFile(t.FS, filepath.Join(dir, "roaring.h"), filepath.Join(dir, "roaring", "roaring.h")); err != nil {
		return err
	}
	args := []string{opts.optLevel()}
	if !opts.AVX {
		args = append(args, "-DDISABLE_AVX=ON")
	}
	args = append(args, "-march=native", "-std=c11", "-shared", "-o", "libroaring.so", "-fPIC", "roaring.c")
	return t.run(ctx, dir, "cc", args...)
}

func (t *Toolchain) buildMake(ctx context.Context, src, dir string, opts BuildOptions) error {
	var args []string
	if !opts.Optimize {
		args = append(args, "-DCMAKE_BUILD_TYPE=Debug")
	}
	if !opts.AVX {
		args = append(args, "-DDISABLE_AVX=ON")
	}
	args = append(args, src)
	if err := t.run(ctx, dir, "cmake", args...); err != nil {
		return err
	}
	if err := t.run(ctx, dir, "make", "-j", "4"); err != nil {
		return err
	}
	return fsutil.CopyDir(t.FS, filepath.Join(src, "include", "roaring"), filepath.Join(dir, "roaring"))
}

func (t *Toolchain) buildProbe(ctx context.Context, dir string, opts BuildOptions) error {
	if err := fsutil.CopyFile(t.FS, t.ProbeSource, filepath.Join(dir, probeBinary+".c")); err != nil {
		return err
	}
	return t.run(ctx, dir, "cc", opts.optLevel(), "-std=c11", "-Wall",
		"-o", probeBinary, probeBinary+".c", "-lroaring", "-L", ".", "-I", ".")
}

func (t *Toolchain) run(ctx context.Context, dir, name string, args ...string) error {
	line := strings.Join(append([]string{name}, args...), " ")
	monitoring.Debugf("%s", line)
	cmd := t.Commands.BuildCommand(ctx, name, args...)
	cmd.SetDir(dir)
	out, err := cmd.Run()
	if err != nil {
		return &CommandError{Cmd: line, Output: out, Err: err}
	}
	return nil
}
