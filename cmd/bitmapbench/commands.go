package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/banshee-data/bitmapbench/internal/config"
	"github.com/banshee-data/bitmapbench/internal/monitoring"
)

// options holds the persistent flags shared by every command.
type options struct {
	seed      uint64
	dbPath    string
	sourceDir string
	workDir   string
	probe     string
	dryRun    bool
	verbose   bool
}

// sampleFlags are the size/density specs and build switches of `sample`.
type sampleFlags struct {
	size1, density1, size2, density2 string
	runs                             int
	cow, run, amalg, gcc, avx        switchFlag
}

type factorialFlags struct {
	runs    int
	factors []string
	pins    []string
}

type reportFlags struct {
	x       string
	groupBy string
	png     string
	html    string
	runID   string
}

// switchFlag is a boolean exposed as a --name/--no-name pair. The negative
// form wins when both are given.
type switchFlag struct {
	on, off bool
}

func (s switchFlag) value() bool { return s.on && !s.off }

func addSwitch(fs *pflag.FlagSet, s *switchFlag, name, usage string) {
	fs.BoolVar(&s.on, name, true, usage)
	fs.BoolVar(&s.off, "no-"+name, false, "disable --"+name)
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "bitmapbench",
		Short: "Design and run roaring bitmap benchmark batches",
		Long: `bitmapbench draws benchmark parameters from size/density specs or a
two-level factorial design, builds the probe for each build configuration and
records one CSV row per measured trial.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			monitoring.SetVerbose(o.verbose)
		},
	}

	pf := root.PersistentFlags()
	pf.Uint64Var(&o.seed, "seed", 0, "random seed (0 picks one and logs it)")
	pf.StringVar(&o.dbPath, "db", "", "optional sqlite database recording runs and results")
	pf.StringVar(&o.sourceDir, "source", config.DefaultSource, "CRoaring source directory")
	pf.StringVar(&o.workDir, "work", config.DefaultWorkDir, "directory for build outputs")
	pf.StringVar(&o.probe, "probe", config.DefaultProbe, "probe C source file")
	pf.BoolVar(&o.dryRun, "dry-run", false, "skip building and running the probe; every time is zero")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "log every trial")

	root.AddCommand(
		newSampleCmd(o),
		newFactorialCmd(o),
		newPlanCmd(o),
		newReportCmd(o),
		newRunsCmd(o),
		newVersionCmd(),
	)
	return root
}

func newSampleCmd(o *options) *cobra.Command {
	f := &sampleFlags{}
	cmd := &cobra.Command{
		Use:   "sample [output.csv]",
		Short: "Run trials with sizes and densities drawn from specs",
		Long: `Specs are a single number, a comma-separated list ("1,2,3") or a
range ("a:b"). Integer ranges are inclusive; real ranges are [a, b).
Omitted --size2/--density2 copy the values drawn for the first bitmap.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(cmd, o, f, args)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&f.size1, "size1", "", "size spec of the first bitmap")
	fs.StringVar(&f.density1, "density1", "", "density spec of the first bitmap")
	fs.StringVar(&f.size2, "size2", "", "size spec of the second bitmap")
	fs.StringVar(&f.density2, "density2", "", "density spec of the second bitmap")
	fs.IntVarP(&f.runs, "runs", "n", config.DefaultRuns, "number of trials")
	addSwitch(fs, &f.cow, "cow", "copy-on-write")
	addSwitch(fs, &f.run, "run", "run containers")
	addSwitch(fs, &f.amalg, "amalg", "amalgamated build")
	addSwitch(fs, &f.gcc, "gcc", "optimised build")
	addSwitch(fs, &f.avx, "avx", "AVX instructions")
	_ = cmd.MarkFlagRequired("size1")
	_ = cmd.MarkFlagRequired("density1")
	return cmd
}

func newFactorialCmd(o *options) *cobra.Command {
	f := &factorialFlags{}
	cmd := &cobra.Command{
		Use:   "factorial [output.csv]",
		Short: "Run a randomised two-level factorial design",
		Long: `Each block of 2^k trials, k being the number of free factors, covers every
combination exactly once in random order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFactorial(cmd, o, f, args)
		},
	}
	fs := cmd.Flags()
	fs.IntVarP(&f.runs, "runs", "n", 0, "number of trials (default one full cover)")
	fs.StringArrayVar(&f.factors, "factor", nil, "factor to vary, repeatable (default all)")
	fs.StringArrayVar(&f.pins, "pin", nil, "name=bool pin, repeatable (default large1=true,large2=true,optimize=true)")
	return cmd
}

func newPlanCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan FILE",
		Short: "Run a batch described by a YAML or JSON plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, o, args[0])
		},
	}
}

func newReportCmd(o *options) *cobra.Command {
	f := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "report [results.csv]",
		Short: "Summarise and plot measured times",
		Long:  "Reads a results CSV, or a stored run with --db and --run.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, o, f, args)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&f.x, "x", "size1", "column plotted against time")
	fs.StringVar(&f.groupBy, "group-by", "", "column to group by")
	fs.StringVar(&f.png, "png", "", "write a PNG scatter plot to this path")
	fs.StringVar(&f.html, "html", "", "write an HTML scatter plot to this path")
	fs.StringVar(&f.runID, "run", "", "stored run ID to read instead of a CSV")
	return cmd
}

func newRunsCmd(o *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRuns(cmd, o, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run:   printVersion,
	}
}
