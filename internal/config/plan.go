package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/bitmapbench/internal/factorial"
	"github.com/banshee-data/bitmapbench/internal/probe"
	"github.com/banshee-data/bitmapbench/internal/sampler"
	"github.com/banshee-data/bitmapbench/internal/sweep"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Defaults used when a plan omits a value.
const (
	DefaultRuns    = 1000
	DefaultSize    = "1024"
	DefaultDensity = "0.5"
	DefaultWorkDir = "build"
	DefaultProbe   = "roaring_op.c"
	DefaultSource  = "CRoaring"
)

// Plan is a benchmark batch read from a YAML or JSON file. Pointer fields
// distinguish "unset" from the zero value so getters can apply defaults.
type Plan struct {
	Mode      string  `yaml:"mode" json:"mode"`
	Runs      *int    `yaml:"runs,omitempty" json:"runs,omitempty"`
	Seed      *uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`
	Output    string  `yaml:"output,omitempty" json:"output,omitempty"`
	Database  string  `yaml:"database,omitempty" json:"database,omitempty"`
	SourceDir string  `yaml:"source_dir,omitempty" json:"source_dir,omitempty"`
	WorkDir   string  `yaml:"work_dir,omitempty" json:"work_dir,omitempty"`
	Probe     string  `yaml:"probe,omitempty" json:"probe,omitempty"`
	DryRun    bool    `yaml:"dry_run,omitempty" json:"dry_run,omitempty"`

	Sample    SampleSection    `yaml:"sample,omitempty" json:"sample,omitempty"`
	Factorial FactorialSection `yaml:"factorial,omitempty" json:"factorial,omitempty"`
}

// SampleSection holds the size/density specs and fixed build switches of a
// sample-mode batch.
type SampleSection struct {
	Size1         string `yaml:"size1,omitempty" json:"size1,omitempty"`
	Density1      string `yaml:"density1,omitempty" json:"density1,omitempty"`
	Size2         string `yaml:"size2,omitempty" json:"size2,omitempty"`
	Density2      string `yaml:"density2,omitempty" json:"density2,omitempty"`
	CopyOnWrite   *bool  `yaml:"copy_on_write,omitempty" json:"copy_on_write,omitempty"`
	RunContainers *bool  `yaml:"run_containers,omitempty" json:"run_containers,omitempty"`
	Amalgamation  *bool  `yaml:"amalgamation,omitempty" json:"amalgamation,omitempty"`
	Optimize      *bool  `yaml:"optimize,omitempty" json:"optimize,omitempty"`
	AVX           *bool  `yaml:"avx,omitempty" json:"avx,omitempty"`
}

// FactorialSection lists the factors to vary and the ones held fixed. A nil
// Pinned map means the default pins; an empty map pins nothing.
type FactorialSection struct {
	Factors []string        `yaml:"factors,omitempty" json:"factors,omitempty"`
	Pinned  map[string]bool `yaml:"pinned,omitempty" json:"pinned,omitempty"`
}

// LoadPlan reads and validates a plan file. JSON is accepted because it is
// a subset of YAML.
func LoadPlan(path string) (*Plan, error) {
	cleanPath := filepath.Clean(path)
	switch ext := filepath.Ext(cleanPath); ext {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("plan file must have .yaml, .yml or .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat plan file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("plan file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes and validates plan bytes.
func ParsePlan(data []byte) (*Plan, error) {
	p := &Plan{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return p, nil
}

// Validate checks the mode, run count and every spec the plan names, so a
// bad plan fails before anything is built.
func (p *Plan) Validate() error {
	if p.Runs != nil && *p.Runs <= 0 {
		return fmt.Errorf("runs must be positive, got %d", *p.Runs)
	}
	switch p.Mode {
	case sweep.ModeSample:
		_, err := p.DrawSpec()
		return err
	case sweep.ModeFactorial:
		_, err := p.Generator()
		return err
	case "":
		return errors.New("mode is required")
	default:
		return fmt.Errorf("unknown mode %q (want %s or %s)", p.Mode, sweep.ModeSample, sweep.ModeFactorial)
	}
}

// GetRuns returns runs or the mode default: 1000 trials for sample mode and
// one full cover for factorial mode.
func (p *Plan) GetRuns() int {
	if p.Runs != nil {
		return *p.Runs
	}
	if p.Mode == sweep.ModeFactorial {
		if gen, err := p.Generator(); err == nil {
			return gen.Total()
		}
	}
	return DefaultRuns
}

// GetSeed returns the seed and whether one was set.
func (p *Plan) GetSeed() (uint64, bool) {
	if p.Seed == nil {
		return 0, false
	}
	return *p.Seed, true
}

func (p *Plan) GetSourceDir() string { return orDefault(p.SourceDir, DefaultSource) }
func (p *Plan) GetWorkDir() string   { return orDefault(p.WorkDir, DefaultWorkDir) }
func (p *Plan) GetProbe() string     { return orDefault(p.Probe, DefaultProbe) }

// DrawSpec parses the sample section. Empty size2/density2 become copies of
// the first bitmap's samplers.
func (p *Plan) DrawSpec() (sweep.DrawSpec, error) {
	s := p.Sample
	var spec sweep.DrawSpec
	var err error
	if spec.Size1, err = sampler.Parse(orDefault(s.Size1, DefaultSize), sampler.Integer); err != nil {
		return spec, fmt.Errorf("size1: %w", err)
	}
	if spec.Density1, err = sampler.Parse(orDefault(s.Density1, DefaultDensity), sampler.Real); err != nil {
		return spec, fmt.Errorf("density1: %w", err)
	}
	if s.Size2 != "" {
		if spec.Size2, err = sampler.Parse(s.Size2, sampler.Integer); err != nil {
			return spec, fmt.Errorf("size2: %w", err)
		}
	}
	if s.Density2 != "" {
		if spec.Density2, err = sampler.Parse(s.Density2, sampler.Real); err != nil {
			return spec, fmt.Errorf("density2: %w", err)
		}
	}
	spec.CopyOnWrite = boolOr(s.CopyOnWrite, true)
	spec.RunContainers = boolOr(s.RunContainers, true)
	spec.Build = probe.BuildOptions{
		Amalgamation: boolOr(s.Amalgamation, true),
		Optimize:     boolOr(s.Optimize, true),
		AVX:          boolOr(s.AVX, true),
	}

	if _, err := sweep.NewDrawPlan(spec); err != nil {
		return spec, err
	}
	return spec, nil
}

// Generator builds the factorial generator for the factorial section.
func (p *Plan) Generator() (*factorial.Generator, error) {
	factors := factorial.AllFactors()
	if len(p.Factorial.Factors) > 0 {
		var err error
		if factors, err = factorial.ParseFactors(p.Factorial.Factors); err != nil {
			return nil, err
		}
	}
	pins := factorial.DefaultPins().Restrict(factors)
	if p.Factorial.Pinned != nil {
		var err error
		if pins, err = factorial.PinsFromMap(p.Factorial.Pinned); err != nil {
			return nil, err
		}
	}
	return factorial.NewGenerator(factors, pins)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
