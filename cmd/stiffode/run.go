package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/san-kum/stiffode/internal/analysis"
	"github.com/san-kum/stiffode/internal/experiment"
	"github.com/san-kum/stiffode/internal/storage"
	"github.com/san-kum/stiffode/internal/viz"
)

func runProblem(cmd *cobra.Command, args []string) error {
	problem := ""
	if len(args) > 0 {
		problem = args[0]
	}

	cfg, err := resolveConfig(cmd, problem)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg)
	if err := exp.Setup(registry); err != nil {
		return err
	}

	collector := newCollector()
	tr := attachObservers(exp.GetSimulator(), cfg.Integrator, collector)

	slog.Info("running",
		"problem", cfg.Problem,
		"integrator", cfg.Integrator,
		"a", cfg.Start,
		"b", cfg.End,
		"steps", cfg.Steps,
	)

	result, runErr := exp.Run(cmd.Context())
	if result == nil {
		return runErr
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg, result, runErr)
	if err != nil {
		return err
	}

	run := cfg.Run()
	rows := [][]string{
		{viz.MetricLabel.Render("status"), status(runErr)},
		{viz.MetricLabel.Render("points"), fmt.Sprintf("%d/%d", result.Trajectory.Len(), run.N)},
		{viz.MetricLabel.Render("h"), fmtFloat(run.StepSize())},
		{viz.MetricLabel.Render("final x"), viz.MetricValue.Render(fmtFloat(result.Trajectory.Last()))},
		{viz.MetricLabel.Render("evaluations"), fmt.Sprintf("%d", result.Evaluations)},
		{viz.MetricLabel.Render("elapsed"), result.Elapsed.String()},
	}

	solution := exp.Solution()
	if solution != nil {
		rows = append(rows,
			[]string{viz.MetricLabel.Render("max error"), viz.MetricValue.Render(fmtFloat(analysis.MaxAbsError(result.Trajectory, solution)))},
			[]string{viz.MetricLabel.Render("rms error"), viz.MetricValue.Render(fmtFloat(analysis.RMSError(result.Trajectory, solution)))},
		)
	}
	rows = append(rows, metricRows(result.Metrics)...)

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s · %s", cfg.Problem, result.Integrator)))
	fmt.Print(viz.Table([]string{"quantity", "value"}, rows))
	printStrips(tr)
	fmt.Printf("\nrun id: %s\n", runID)

	if runErr != nil {
		fmt.Println(viz.StatusFail.Render(runErr.Error()))
	}

	series := []viz.Series{{
		Name:   result.Integrator,
		Times:  result.Trajectory.Times,
		Values: result.Trajectory.States,
	}}
	if solution != nil {
		series = append(series, viz.Series{
			Name:   "exact",
			Times:  result.Trajectory.Times,
			Values: analysis.Exact(result.Trajectory, solution),
		})
	}

	if plotFlag {
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

	return runErr
}
