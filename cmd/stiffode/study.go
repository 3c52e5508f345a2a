package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/san-kum/stiffode/internal/analysis"
	"github.com/san-kum/stiffode/internal/automation"
	"github.com/san-kum/stiffode/internal/experiment"
	"github.com/san-kum/stiffode/internal/optim"
	"github.com/san-kum/stiffode/internal/viz"
)

func newConvergenceCmd() *cobra.Command {
	var levels int

	cmd := &cobra.Command{
		Use:   "convergence [problem]",
		Short: "measure the observed order of accuracy by halving h",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args[0])
			if err != nil {
				return err
			}

			exp := experiment.New(cfg)
			if err := exp.Setup(experiment.NewRegistry()); err != nil {
				return err
			}
			solution := exp.Solution()
			if solution == nil {
				return fmt.Errorf("problem %s has no exact solution", cfg.Problem)
			}

			integ := exp.GetSimulator().Integrator()
			lvls, err := analysis.Convergence(cmd.Context(), integ, exp.System().Derive, solution, cfg.Run(), levels)

			rows := make([][]string, 0, len(lvls))
			for _, l := range lvls {
				rows = append(rows, []string{strconv.Itoa(l.N), fmtFloat(l.H), fmtFloat(l.MaxErr), fmtFloat(l.Order)})
			}
			fmt.Println(viz.Title.Render(fmt.Sprintf("%s · %s convergence", cfg.Problem, integ.Name())))
			fmt.Print(viz.Table([]string{"N", "h", "max err", "order"}, rows))
			return err
		},
	}
	addRunFlags(cmd)
	cmd.Flags().IntVar(&levels, "levels", 5, "number of refinements")
	return cmd
}

func newSweepCmd() *cobra.Command {
	var (
		param     string
		lo, hi    float64
		points    int
		geometric bool
	)

	cmd := &cobra.Command{
		Use:   "sweep [problem]",
		Short: "vary one setting and report accuracy and work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args[0])
			if err != nil {
				return err
			}

			sweep := &automation.ParameterSweep{
				Base:   cfg,
				Param:  param,
				Min:    lo,
				Max:    hi,
				Points: points,
				Log:    geometric,
			}
			results, err := automation.RunSweep(cmd.Context(), sweep, experiment.NewRegistry(), slog.Default())

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{
					fmtFloat(r.Value),
					status(r.Err),
					fmtFloat(r.Final),
					fmtFloat(r.MaxError),
					strconv.Itoa(r.Evaluations),
					fmt.Sprintf("%.0f%%", 100*r.ImplicitShare),
				})
			}
			fmt.Println(viz.Title.Render(fmt.Sprintf("%s · %s sweep over %s", cfg.Problem, cfg.Integrator, param)))
			fmt.Print(viz.Table([]string{param, "status", "final x", "max err", "evals", "implicit"}, rows))
			return err
		},
	}
	addRunFlags(cmd)
	cmd.Flags().StringVar(&param, "vary", "steps", "setting to vary (steps, tol, x0, b, solver.tol or a problem parameter)")
	cmd.Flags().Float64Var(&lo, "min", 10, "first value")
	cmd.Flags().Float64Var(&hi, "max", 1000, "last value")
	cmd.Flags().IntVar(&points, "points", 5, "number of values")
	cmd.Flags().BoolVar(&geometric, "log", false, "space values geometrically")
	return cmd
}

func newTuneCmd() *cobra.Command {
	var (
		tols      []float64
		stepGrid  []int
		objective string
		weight    float64
	)

	cmd := &cobra.Command{
		Use:   "tune [problem]",
		Short: "grid search over tol and steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("integrator") && cfg.Integrator == "rk4" {
				cfg.Integrator = "lsoda"
			}

			var obj optim.Objective
			switch objective {
			case "error":
				obj = optim.MaxError
			case "balanced":
				obj = optim.Balanced(weight)
			default:
				obj = optim.MetricObjective(objective)
			}

			stepValues := make([]float64, len(stepGrid))
			for i, n := range stepGrid {
				stepValues[i] = float64(n)
			}

			gs := optim.NewGridSearch([]string{"steps", "tol"}, [][]float64{stepValues, tols})
			res, err := gs.Search(cmd.Context(), optim.ConfigBuilder(cfg, experiment.NewRegistry()), obj)
			if res == nil {
				return err
			}

			rows := make([][]string, 0, len(res.Trials))
			for _, trial := range res.Trials {
				rows = append(rows, []string{
					fmtFloat(trial.Params["steps"]),
					fmtFloat(trial.Params["tol"]),
					status(trial.Err),
					fmtFloat(trial.Value),
				})
			}
			fmt.Println(viz.Title.Render(fmt.Sprintf("%s · %s grid search (%s)", cfg.Problem, cfg.Integrator, objective)))
			fmt.Print(viz.Table([]string{"steps", "tol", "status", "objective"}, rows))
			if err != nil {
				return err
			}

			fmt.Printf("\nbest: steps=%s tol=%s objective=%s\n",
				viz.MetricValue.Render(fmtFloat(res.Best["steps"])),
				viz.MetricValue.Render(fmtFloat(res.Best["tol"])),
				viz.MetricValue.Render(fmtFloat(res.Value)),
			)
			return nil
		},
	}
	addRunFlags(cmd)
	cmd.Flags().Float64SliceVar(&tols, "tols", []float64{1e-4, 1e-3, 1e-2, 1e-1, 1}, "stiffness thresholds to try")
	cmd.Flags().IntSliceVar(&stepGrid, "grid-steps", []int{50, 100, 200, 400}, "step counts to try")
	cmd.Flags().StringVar(&objective, "objective", "error", "error, balanced or a metric name")
	cmd.Flags().Float64Var(&weight, "weight", 1, "work weight for the balanced objective")
	return cmd
}

func newScenarioCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of several runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}

			outcomes, err := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry(), automation.Options{
				Logger: slog.Default(),
				OutDir: outDir,
			})

			rows := make([][]string, 0, len(outcomes))
			for _, o := range outcomes {
				final := "-"
				if o.Result != nil {
					final = fmtFloat(o.Result.Trajectory.Last())
				}
				rows = append(rows, []string{o.Name, o.Config.Integrator, status(o.Err), final, fmtFloat(o.MaxError), o.Saved})
			}

			title := sc.Name
			if title == "" {
				title = args[0]
			}
			fmt.Println(viz.Title.Render(title))
			if sc.Description != "" {
				fmt.Println(viz.Subtle.Render(sc.Description))
			}
			fmt.Print(viz.Table([]string{"run", "integrator", "status", "final x", "max err", "saved"}, rows))
			return err
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "directory for save_as outputs")
	return cmd
}

func newMonteCarloCmd() *cobra.Command {
	var (
		trials  int
		perturb float64
		seed    int64
		bound   float64
	)

	cmd := &cobra.Command{
		Use:   "montecarlo [problem]",
		Short: "perturb x0 randomly and count bounded runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args[0])
			if err != nil {
				return err
			}

			mc := &automation.MonteCarloConfig{
				Base:         cfg,
				Perturbation: perturb,
				Trials:       trials,
				Seed:         seed,
				Bound:        bound,
			}
			results, err := automation.RunMonteCarlo(cmd.Context(), mc, experiment.NewRegistry(), slog.Default())
			if err != nil {
				return err
			}

			stable, unstable := automation.MonteCarloStats(results)
			fmt.Println(viz.Title.Render(fmt.Sprintf("%s · %s monte carlo", cfg.Problem, cfg.Integrator)))
			fmt.Print(viz.Table([]string{"trials", "stable", "unstable"}, [][]string{{
				strconv.Itoa(len(results)),
				viz.StatusOK.Render(strconv.Itoa(stable)),
				viz.StatusFail.Render(strconv.Itoa(unstable)),
			}}))
			return nil
		},
	}
	addRunFlags(cmd)
	cmd.Flags().IntVar(&trials, "trials", 100, "number of runs")
	cmd.Flags().Float64Var(&perturb, "perturb", 0.5, "half-width of the uniform x0 perturbation")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().Float64Var(&bound, "bound", 1e6, "largest final |x| counted as stable")
	return cmd
}
