package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/san-kum/stiffode/internal/config"
)

var (
	dataDir     string
	verbose     bool
	showMetrics bool

	integrator string
	start      float64
	end        float64
	steps      int
	x0         float64
	tol        float64
	solverTol  float64
	maxIter    int
	params     map[string]string
	configFile string
	preset     string

	plotFlag bool
	noPlot   bool
	pngPath  string
	outPath  string
)

// main registers the commands and executes the root command under a
// context cancelled by an interrupt.
func main() {
	rootCmd := &cobra.Command{
		Use:           "stiffode",
		Short:         "fixed-step ODE integrators with stiffness switching",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".stiffode", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every step at debug level")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print the prometheus step counters after the run")

	runCmd := &cobra.Command{
		Use:   "run [problem]",
		Short: "integrate a problem and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProblem,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&plotFlag, "plot", false, "draw the trajectory in the terminal")
	runCmd.Flags().StringVar(&pngPath, "png", "", "render the trajectory to an image file (png, svg, pdf)")

	compareCmd := &cobra.Command{
		Use:   "compare [problem] [integrator1] [integrator2] ...",
		Short: "run several integrators on the same problem",
		Long: "Runs every listed integrator concurrently on the same grid and reports\n" +
			"accuracy against the exact solution. With no integrators, all are compared.",
		Args: cobra.MinimumNArgs(1),
		RunE: compareIntegrators,
	}
	addRunFlags(compareCmd)
	compareCmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the terminal chart")
	compareCmd.Flags().StringVar(&pngPath, "png", "", "render the trajectories to an image file (png, svg, pdf)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pngPath, "png", "", "render to an image file instead of the terminal")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "power spectrum of a stored run's error",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [problem]",
		Short: "list available presets for a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for problem: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		runCmd,
		compareCmd,
		listCmd,
		plotCmd,
		analyzeCmd,
		exportCSVCmd,
		exportJSONCmd,
		presetsCmd,
		newConvergenceCmd(),
		newSweepCmd(),
		newTuneCmd(),
		newScenarioCmd(),
		newMonteCarloCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().Float64Var(&start, "a", config.DefaultStart, "interval start")
	cmd.Flags().Float64Var(&end, "b", config.DefaultEnd, "interval end")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of grid points")
	cmd.Flags().Float64Var(&x0, "x0", config.DefaultX0, "initial state")
	cmd.Flags().Float64Var(&tol, "tol", config.DefaultTol, "stiffness threshold for switching")
	cmd.Flags().Float64Var(&solverTol, "solver-tol", config.DefaultSolverT, "root finder tolerance")
	cmd.Flags().IntVar(&maxIter, "max-iter", config.DefaultMaxIter, "root finder iteration limit")
	cmd.Flags().StringToStringVar(&params, "param", nil, "problem parameter, e.g. --param rate=50")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order. A problem argument overrides all of them.
func resolveConfig(cmd *cobra.Command, problem string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if problem != "" {
		cfg.Problem = problem
	}

	if preset != "" {
		p := config.GetPreset(cfg.Problem, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Problem))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if problem != "" {
			cfg.Problem = problem
		}
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("a") {
		cfg.Start = start
	}
	if flags.Changed("b") {
		cfg.End = end
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("x0") {
		cfg.X0 = x0
	}
	if flags.Changed("tol") {
		cfg.Tol = tol
	}
	if flags.Changed("solver-tol") {
		cfg.Solver.Tol = solverTol
	}
	if flags.Changed("max-iter") {
		cfg.Solver.MaxIter = maxIter
	}
	for name, raw := range params {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		if err := cfg.Set(name, v); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
