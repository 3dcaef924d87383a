package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/banshee-data/bitmapbench/internal/config"
	"github.com/banshee-data/bitmapbench/internal/factorial"
	"github.com/banshee-data/bitmapbench/internal/monitoring"
	"github.com/banshee-data/bitmapbench/internal/probe"
	"github.com/banshee-data/bitmapbench/internal/sampler"
	"github.com/banshee-data/bitmapbench/internal/storage/sqlite"
	"github.com/banshee-data/bitmapbench/internal/sweep"
	"github.com/banshee-data/bitmapbench/internal/version"
)

// batch is one fully resolved run request.
type batch struct {
	plan   sweep.Plan
	runs   int
	seed   uint64
	output string
	dbPath string
	params interface{}
}

func runSample(cmd *cobra.Command, o *options, f *sampleFlags, args []string) error {
	spec := sweep.DrawSpec{
		CopyOnWrite:   f.cow.value(),
		RunContainers: f.run.value(),
		Build: probe.BuildOptions{
			Amalgamation: f.amalg.value(),
			Optimize:     f.gcc.value(),
			AVX:          f.avx.value(),
		},
	}
	var err error
	if spec.Size1, err = sampler.Parse(f.size1, sampler.Integer); err != nil {
		return fmt.Errorf("--size1: %w", err)
	}
	if spec.Density1, err = sampler.Parse(f.density1, sampler.Real); err != nil {
		return fmt.Errorf("--density1: %w", err)
	}
	if f.size2 != "" {
		if spec.Size2, err = sampler.Parse(f.size2, sampler.Integer); err != nil {
			return fmt.Errorf("--size2: %w", err)
		}
	}
	if f.density2 != "" {
		if spec.Density2, err = sampler.Parse(f.density2, sampler.Real); err != nil {
			return fmt.Errorf("--density2: %w", err)
		}
	}
	plan, err := sweep.NewDrawPlan(spec)
	if err != nil {
		return err
	}
	if f.runs <= 0 {
		return fmt.Errorf("--runs must be positive, got %d", f.runs)
	}

	params := map[string]interface{}{
		"size1": f.size1, "density1": f.density1,
		"size2": f.size2, "density2": f.density2,
		"copy_on_write": spec.CopyOnWrite, "run_containers": spec.RunContainers,
		"amalgamation": spec.Build.Amalgamation, "optimize": spec.Build.Optimize, "avx": spec.Build.AVX,
	}
	return execute(cmd, o, batch{
		plan:   plan,
		runs:   f.runs,
		seed:   o.seed,
		output: firstArg(args),
		dbPath: o.dbPath,
		params: params,
	})
}

func runFactorial(cmd *cobra.Command, o *options, f *factorialFlags, args []string) error {
	factors := factorial.AllFactors()
	if len(f.factors) > 0 {
		var err error
		if factors, err = factorial.ParseFactors(f.factors); err != nil {
			return err
		}
	}
	pins := factorial.DefaultPins().Restrict(factors)
	if cmd.Flags().Changed("pin") {
		var err error
		if pins, err = factorial.ParsePins(f.pins); err != nil {
			return err
		}
	}
	gen, err := factorial.NewGenerator(factors, pins)
	if err != nil {
		return err
	}
	runs := f.runs
	if runs == 0 {
		runs = gen.Total()
	}
	if runs < 0 {
		return fmt.Errorf("--runs must be positive, got %d", runs)
	}

	names := make([]string, len(factors))
	for i, fa := range factors {
		names[i] = fa.String()
	}
	return execute(cmd, o, batch{
		plan:   sweep.NewFactorialPlan(gen),
		runs:   runs,
		seed:   o.seed,
		output: firstArg(args),
		dbPath: o.dbPath,
		params: map[string]interface{}{"factors": names, "pins": pins.String()},
	})
}

// runPlan runs a plan file. Persistent flags given on the command line
// override the file.
func runPlan(cmd *cobra.Command, o *options, path string) error {
	p, err := config.LoadPlan(path)
	if err != nil {
		return err
	}

	var plan sweep.Plan
	switch p.Mode {
	case sweep.ModeSample:
		spec, err := p.DrawSpec()
		if err != nil {
			return err
		}
		if plan, err = sweep.NewDrawPlan(spec); err != nil {
			return err
		}
	default:
		gen, err := p.Generator()
		if err != nil {
			return err
		}
		plan = sweep.NewFactorialPlan(gen)
	}

	flags := cmd.Flags()
	b := batch{plan: plan, runs: p.GetRuns(), output: p.Output, dbPath: p.Database, params: p}
	b.seed, _ = p.GetSeed()
	if flags.Changed("seed") {
		b.seed = o.seed
	}
	if flags.Changed("db") {
		b.dbPath = o.dbPath
	}
	local := *o
	if !flags.Changed("source") {
		local.sourceDir = p.GetSourceDir()
	}
	if !flags.Changed("work") {
		local.workDir = p.GetWorkDir()
	}
	if !flags.Changed("probe") {
		local.probe = p.GetProbe()
	}
	if !flags.Changed("dry-run") {
		local.dryRun = p.DryRun
	}
	return execute(cmd, &local, b)
}

// execute runs a resolved batch: it opens the CSV output and optional store,
// runs every trial and records how the run ended.
func execute(cmd *cobra.Command, o *options, b batch) error {
	seed := b.seed
	if seed == 0 {
		seed = sampler.RandomSeed()
	}
	monitoring.Logf("%s batch: %d trials, seed %d", b.plan.Mode(), b.runs, seed)

	out := cmd.OutOrStdout()
	if b.output != "" && b.output != "-" {
		file, err := os.Create(b.output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", b.output, err)
		}
		defer file.Close()
		out = file
	}
	sinks := sweep.MultiSink{sweep.NewCSVSink(out)}

	var (
		db    *sqlite.DB
		run   *sqlite.Run
		store *sweep.StoreSink
		err   error
	)
	if b.dbPath != "" {
		if db, err = sqlite.Open(b.dbPath); err != nil {
			return err
		}
		defer db.Close()

		params, err := json.Marshal(b.params)
		if err != nil {
			return fmt.Errorf("encode params: %w", err)
		}
		run = &sqlite.Run{
			Mode:       b.plan.Mode(),
			Seed:       seed,
			Planned:    b.runs,
			ParamsJSON: params,
			Version:    version.String(),
		}
		if err := db.Runs().Insert(run); err != nil {
			return err
		}
		store = sweep.NewStoreSink(db, run.RunID)
		sinks = append(sinks, store)
		monitoring.Logf("recording run %s in %s", run.RunID, b.dbPath)
	}

	var builder probe.Builder = probe.DryRun{}
	if !o.dryRun {
		builder = probe.NewToolchain(o.sourceDir, o.workDir, o.probe)
	}

	runner := sweep.NewRunner(builder, sinks)
	summary, runErr := runner.Run(cmd.Context(), b.plan, b.runs, sampler.NewRand(seed))

	if run != nil {
		status, msg := sqlite.RunStatusComplete, ""
		if runErr != nil {
			status, msg = sqlite.RunStatusError, runErr.Error()
		}
		if err := db.Runs().Complete(run.RunID, status, store.Written(), msg); err != nil {
			monitoring.Logf("failed to complete run %s: %v", run.RunID, err)
		}
	}
	if runErr != nil {
		return runErr
	}

	monitoring.Logf("done: %d trials in %s, %d builds, mean %.6gs sd %.6gs min %.6gs max %.6gs",
		summary.Trials, summary.Wall, runner.Builds(), summary.Mean, summary.StdDev, summary.Min, summary.Max)
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func printVersion(cmd *cobra.Command, _ []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "bitmapbench %s\n", version.String())
}
