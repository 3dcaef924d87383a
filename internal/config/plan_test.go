package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/bitmapbench/internal/factorial"
	"github.com/banshee-data/bitmapbench/internal/probe"
	"github.com/banshee-data/bitmapbench/internal/sampler"
)

func writePlan(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write plan: %v", err)
	}
	return path
}

func TestLoadSamplePlan(t *testing.T) {
	path := writePlan(t, "sample.yaml", `
mode: sample
runs: 50
seed: 7
output: out.csv
database: bench.db
sample:
  size1: "1000:2000"
  density1: "0.001,0.01,0.1"
  size2: "5000"
  copy_on_write: false
  avx: false
`)
	p, err := LoadPlan(path)
	if err != nil {
		t.Fatalf("LoadPlan: %v", err)
	}
	if p.GetRuns() != 50 {
		t.Errorf("GetRuns() = %d, want 50", p.GetRuns())
	}
	if seed, ok := p.GetSeed(); !ok || seed != 7 {
		t.Errorf("GetSeed() = %d,%v want 7,true", seed, ok)
	}
	if p.Output != "out.csv" || p.Database != "bench.db" {
		t.Errorf("unexpected output/database: %q %q", p.Output, p.Database)
	}

	spec, err := p.DrawSpec()
	if err != nil {
		t.Fatalf("DrawSpec: %v", err)
	}
	if spec.Size1.Min() != 1000 || spec.Size1.Max() != 2000 {
		t.Errorf("size1 bounds = [%v, %v]", spec.Size1.Min(), spec.Size1.Max())
	}
	if spec.Size2 == nil || spec.Size2.Variant() != sampler.VariantDiscrete {
		t.Errorf("size2 should be an explicit discrete sampler, got %v", spec.Size2)
	}
	if spec.Density2 != nil {
		t.Errorf("density2 should be left for the draw plan to copy, got %v", spec.Density2)
	}
	if spec.CopyOnWrite {
		t.Error("copy_on_write should be false")
	}
	if !spec.RunContainers {
		t.Error("run_containers should default to true")
	}
	want := probe.BuildOptions{Amalgamation: true, Optimize: true, AVX: false}
	if spec.Build != want {
		t.Errorf("Build = %+v, want %+v", spec.Build, want)
	}
}

func TestSamplePlanDefaults(t *testing.T) {
	p, err := ParsePlan([]byte("mode: sample\n"))
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	if p.GetRuns() != DefaultRuns {
		t.Errorf("GetRuns() = %d, want %d", p.GetRuns(), DefaultRuns)
	}
	if _, ok := p.GetSeed(); ok {
		t.Error("seed should be unset")
	}
	if p.GetSourceDir() != DefaultSource || p.GetWorkDir() != DefaultWorkDir || p.GetProbe() != DefaultProbe {
		t.Errorf("unexpected toolchain defaults: %q %q %q", p.GetSourceDir(), p.GetWorkDir(), p.GetProbe())
	}
	spec, err := p.DrawSpec()
	if err != nil {
		t.Fatalf("DrawSpec: %v", err)
	}
	if spec.Size1.Min() != 1024 || spec.Density1.Min() != 0.5 {
		t.Errorf("defaults not applied: size1=%v density1=%v", spec.Size1, spec.Density1)
	}
}

func TestFactorialPlan(t *testing.T) {
	path := writePlan(t, "factorial.json", `{
  "mode": "factorial",
  "factorial": {"factors": ["large1", "dense1", "cow"], "pinned": {"large1": false}}
}`)
	p, err := LoadPlan(path)
	if err != nil {
		t.Fatalf("LoadPlan: %v", err)
	}
	gen, err := p.Generator()
	if err != nil {
		t.Fatalf("Generator: %v", err)
	}
	if gen.Total() != 4 {
		t.Errorf("Total() = %d, want 4", gen.Total())
	}
	if p.GetRuns() != 4 {
		t.Errorf("GetRuns() = %d, want one full cover of 4", p.GetRuns())
	}
	for _, a := range gen.Combinations() {
		if a.Get(factorial.Large1) {
			t.Errorf("large1 pinned false but got %s", a)
		}
	}
}

func TestFactorialPlanDefaultPins(t *testing.T) {
	p, err := ParsePlan([]byte("mode: factorial\n"))
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	if got, want := p.GetRuns(), 1<<(factorial.NumFactors-3); got != want {
		t.Errorf("GetRuns() = %d, want %d", got, want)
	}

	// Default pins on factors outside the list are dropped.
	p, err = ParsePlan([]byte("mode: factorial\nfactorial:\n  factors: [dense1, avx]\n"))
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	if p.GetRuns() != 4 {
		t.Errorf("GetRuns() = %d, want 4", p.GetRuns())
	}

	// An explicit empty map pins nothing.
	p, err = ParsePlan([]byte("mode: factorial\nfactorial:\n  factors: [large1, avx]\n  pinned: {}\n"))
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	if p.GetRuns() != 4 {
		t.Errorf("GetRuns() = %d, want 4", p.GetRuns())
	}
}

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "missing mode", body: "runs: 3\n"},
		{name: "unknown mode", body: "mode: random\n"},
		{name: "zero runs", body: "mode: sample\nruns: 0\n"},
		{name: "bad size", body: "mode: sample\nsample:\n  size1: \"a:b\"\n", wantErr: sampler.ErrInvalidNumber},
		{name: "density over one", body: "mode: sample\nsample:\n  density1: \"0.5:2\"\n", wantErr: sampler.ErrDensityRange},
		{name: "unknown factor", body: "mode: factorial\nfactorial:\n  factors: [turbo]\n", wantErr: factorial.ErrUnknownFactor},
		{name: "pin outside list", body: "mode: factorial\nfactorial:\n  factors: [avx]\n  pinned: {dense1: true}\n", wantErr: factorial.ErrUnknownPin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlan([]byte(tt.body))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error %v is not %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadPlanRejectsExtension(t *testing.T) {
	_, err := LoadPlan("/some/path/plan.toml")
	if err == nil || !strings.Contains(err.Error(), "extension") {
		t.Errorf("expected extension error, got %v", err)
	}
}

func TestLoadPlanRejectsLargeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "large.yaml")
	if err := os.WriteFile(path, make([]byte, 2*1024*1024), 0644); err != nil {
		t.Fatalf("Failed to write large file: %v", err)
	}
	if _, err := LoadPlan(path); err == nil {
		t.Error("Expected error for file size > 1MB, got nil")
	}
}

func TestLoadPlanMissing(t *testing.T) {
	if _, err := LoadPlan("/nonexistent/plan.yaml"); err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}
