package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/stiffode/internal/analysis"
	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/experiment"
	"github.com/san-kum/stiffode/internal/storage"
	"github.com/san-kum/stiffode/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		state := viz.StatusOK.Render("ok")
		if run.Error != "" {
			state = viz.StatusFail.Render("partial")
		}
		rows = append(rows, []string{
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Problem,
			run.Integrator,
			fmt.Sprintf("[%g, %g)", run.Start, run.End),
			strconv.Itoa(run.Steps),
			state,
		})
	}

	fmt.Print(viz.Table([]string{"ID", "TIME", "PROBLEM", "INTEG", "INTERVAL", "STEPS", "STATUS"}, rows))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	if tr.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	series := []viz.Series{{Name: meta.Integrator, Times: tr.Times, Values: tr.States}}

	if pngPath != "" {
		if err := viz.SavePlot(pngPath, meta.Problem, series); err != nil {
			return err
		}
		slog.Info("plot written", "path", pngPath)
		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("problem: %s\n", meta.Problem)
	fmt.Printf("samples: %d\n\n", tr.Len())

	opts := viz.DefaultChartOptions()
	opts.Caption = fmt.Sprintf("x(t), %s with %s", meta.Problem, meta.Integrator)
	fmt.Println(viz.Plot(tr.States, opts))

	return nil
}

// output returns the writer for --out, defaulting to stdout.
func output() (io.Writer, func() error, error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, tr); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	cfg := meta.Config()
	result := meta.Result(tr)

	var exact []float64
	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry()); err == nil {
		if sol := exp.Solution(); sol != nil {
			exact = analysis.Exact(tr, sol)
		}
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.EncodeJSON(w, storage.NewExportData(cfg, result, exact)); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	if tr.Len() < 3 {
		return fmt.Errorf("need at least 3 samples, run has %d", tr.Len())
	}

	values, source := detrended(meta, tr)
	ps := analysis.PowerSpectrum(values)
	freq, bin := analysis.PeakFrequency(values, meta.Config().Run().StepSize())

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("problem: %s, integrator: %s\n\n", meta.Problem, meta.Integrator)

	opts := viz.DefaultChartOptions()
	opts.Caption = fmt.Sprintf("power spectrum of %s (DC removed)", source)
	fmt.Println(viz.Plot(ps[1:], opts))
	fmt.Println()

	rows := [][]string{
		{"peak bin", strconv.Itoa(bin)},
		{"peak frequency", fmtFloat(freq)},
		{"high freq share", fmtFloat(analysis.HighFrequencyShare(values))},
	}
	fmt.Print(viz.Table([]string{"SPECTRUM", "VALUE"}, rows))
	return nil
}

// detrended returns the residual against the exact solution when the
// problem has one, otherwise the states with their mean removed.
func detrended(meta *storage.RunMetadata, tr *dynamo.Trajectory) ([]float64, string) {
	exp := experiment.New(meta.Config())
	if err := exp.Setup(experiment.NewRegistry()); err == nil {
		if sol := exp.Solution(); sol != nil {
			return analysis.Residuals(tr, sol), "residual"
		}
	}

	out := make([]float64, tr.Len())
	copy(out, tr.States)
	floats.AddConst(-floats.Sum(out)/float64(len(out)), out)
	return out, "x(t)"
}
