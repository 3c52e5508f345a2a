package main

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/spf13/cobra"

	"github.com/san-kum/stiffode/internal/analysis"
	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/experiment"
	"github.com/san-kum/stiffode/internal/viz"
)

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	names := args[1:]
	if len(names) == 0 {
		names = registry.ListIntegrators()
	}

	collector := newCollector()

	var (
		exps   []*experiment.Experiment
		sims   []*dynamo.Simulator
		traces []*trace
	)
	for _, name := range names {
		c := cfg.Clone()
		c.Integrator = name

		exp := experiment.New(c)
		if err := exp.Setup(registry); err != nil {
			slog.Warn("skipping", "integrator", name, "err", err)
			continue
		}
		exps = append(exps, exp)
		sims = append(sims, exp.GetSimulator())
		traces = append(traces, attachObservers(exp.GetSimulator(), name, collector))
	}
	if len(sims) == 0 {
		return fmt.Errorf("no integrator to compare")
	}

	run := cfg.Run()
	fmt.Println(viz.Title.Render(fmt.Sprintf("%s on [%g, %g), N=%d, h=%s, tol=%g",
		cfg.Problem, run.A, run.B, run.N, fmtFloat(run.StepSize()), run.Tol)))

	// problems are stateless, so every run can share the first system's
	// right-hand side
	outcomes := dynamo.Compare(cmd.Context(), exps[0].System().Derive, run, sims...)
	solution := exps[0].Solution()

	rows := make([][]string, 0, len(outcomes))
	series := make([]viz.Series, 0, len(outcomes)+1)
	var failed int
	for i, out := range outcomes {
		name := sims[i].Integrator().Name()
		if out.Result == nil {
			failed++
			rows = append(rows, []string{name, status(out.Err), "-", "-", "-", "-", "-", "-"})
			slog.Warn("run rejected", "integrator", name, "err", out.Err)
			continue
		}
		if out.Err != nil {
			failed++
			slog.Warn("run stopped early", "integrator", name, "err", out.Err)
		}

		tr := out.Result.Trajectory
		maxErr, rmsErr := math.NaN(), math.NaN()
		if solution != nil {
			maxErr = analysis.MaxAbsError(tr, solution)
			rmsErr = analysis.RMSError(tr, solution)
		}

		rows = append(rows, []string{
			name,
			status(out.Err),
			fmtFloat(tr.Last()),
			fmtFloat(maxErr),
			fmtFloat(rmsErr),
			fmt.Sprintf("%d", out.Result.Evaluations),
			fmt.Sprintf("%.0f%%", 100*out.Result.Metrics["implicit_share"]),
			fmt.Sprintf("%.2fms", float64(out.Result.Elapsed.Microseconds())/1000),
		})
		series = append(series, viz.Series{Name: name, Times: tr.Times, Values: tr.States})
	}

	fmt.Print(viz.Table(
		[]string{"integrator", "status", "final x", "max err", "rms err", "evals", "implicit", "time"},
		rows,
	))

	for i, tr := range traces {
		if tr.hasStiffness() {
			fmt.Printf("\n%s\n", viz.Subtle.Render(sims[i].Integrator().Name()))
			printStrips(tr)
		}
	}

	if solution != nil {
		grid := dynamo.NewTrajectory(run.N)
		for n := 0; n < run.N; n++ {
			grid.Append(run.TimeAt(n), 0)
		}
		series = append(series, viz.Series{Name: "exact", Times: grid.Times, Values: analysis.Exact(grid, solution)})
	}

	if !noPlot && len(series) > 0 {
		opts := viz.DefaultChartOptions()
		opts.Caption = fmt.Sprintf("x(t), %s", cfg.Problem)
		fmt.Println()
		fmt.Println(viz.PlotMany(series, opts))
	}

	if pngPath != "" {
		if err := viz.SavePlot(pngPath, cfg.Problem, series); err != nil {
			return err
		}
		slog.Info("plot written", "path", pngPath)
	}

	if err := printSnapshot(collector); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(outcomes))
	}
	return nil
}
