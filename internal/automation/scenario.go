package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/stiffode/internal/analysis"
	"github.com/san-kum/stiffode/internal/config"
	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/experiment"
	"github.com/san-kum/stiffode/internal/storage"
	"github.com/san-kum/stiffode/internal/viz"
)

// Scenario is a scripted batch of runs. Every run starts from Defaults and
// overrides only the fields it names.
type Scenario struct {
	Name        string
	Description string
	Defaults    *config.Config
	Runs        []Run
}

// Run is one entry of a scenario. SaveAs, when set, writes the run to a
// .csv, .json or image file chosen by extension.
type Run struct {
	config.Config `yaml:",inline"`
	Name          string `yaml:"name"`
	SaveAs        string `yaml:"save_as"`
}

type scenarioFile struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Defaults    yaml.Node   `yaml:"defaults"`
	Runs        []yaml.Node `yaml:"runs"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var raw scenarioFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	defaults := config.DefaultConfig()
	if !raw.Defaults.IsZero() {
		if err := raw.Defaults.Decode(defaults); err != nil {
			return nil, fmt.Errorf("defaults: %w", err)
		}
	}

	sc := &Scenario{
		Name:        raw.Name,
		Description: raw.Description,
		Defaults:    defaults,
		Runs:        make([]Run, 0, len(raw.Runs)),
	}
	for i := range raw.Runs {
		run := Run{Config: *defaults.Clone()}
		if err := raw.Runs[i].Decode(&run); err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		if run.Name == "" {
			run.Name = fmt.Sprintf("%s/%s", run.Problem, run.Integrator)
		}
		sc.Runs = append(sc.Runs, run)
	}

	return sc, nil
}

type Options struct {
	Logger *slog.Logger
	// OutDir is prepended to relative SaveAs paths.
	OutDir string
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Outcome is the result of one scenario run. Result may hold a partial
// trajectory when Err is set.
type Outcome struct {
	Name     string
	Config   *config.Config
	Result   *dynamo.Result
	MaxError float64
	Saved    string
	Err      error
}

// RunScenario executes the runs in order. Unknown problems, integrators or
// parameters abort the scenario; integration failures are recorded in the
// run's Outcome and the scenario continues.
func RunScenario(ctx context.Context, sc *Scenario, reg *experiment.Registry, opts Options) ([]Outcome, error) {
	log := opts.logger()
	outcomes := make([]Outcome, 0, len(sc.Runs))

	for i, run := range sc.Runs {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		cfg := run.Config.Clone()
		exp := experiment.New(cfg)
		if err := exp.Setup(reg); err != nil {
			return outcomes, fmt.Errorf("run %d (%s): %w", i+1, run.Name, err)
		}

		log.Info("scenario run",
			"run", i+1,
			"of", len(sc.Runs),
			"name", run.Name,
			"problem", cfg.Problem,
			"integrator", cfg.Integrator,
			"steps", cfg.Steps,
		)

		res, err := exp.Run(ctx)
		out := Outcome{
			Name:     run.Name,
			Config:   cfg,
			Result:   res,
			MaxError: math.NaN(),
			Err:      err,
		}

		solution := exp.Solution()
		if res != nil && solution != nil {
			out.MaxError = analysis.MaxAbsError(res.Trajectory, solution)
		}

		if err != nil {
			log.Warn("run failed", "name", run.Name, "err", err)
		}

		if run.SaveAs != "" && res != nil {
			path := run.SaveAs
			if opts.OutDir != "" && !filepath.IsAbs(path) {
				path = filepath.Join(opts.OutDir, path)
			}
			if err := save(path, cfg, res, solution); err != nil {
				return outcomes, fmt.Errorf("run %d (%s): save: %w", i+1, run.Name, err)
			}
			out.Saved = path
			log.Info("saved", "name", run.Name, "path", path)
		}

		outcomes = append(outcomes, out)
	}

	return outcomes, nil
}

func save(path string, cfg *config.Config, res *dynamo.Result, solution func(float64) float64) error {
	var exact []float64
	if solution != nil {
		exact = analysis.Exact(res.Trajectory, solution)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return storage.ExportCSV(path, res.Trajectory)
	case ".json":
		return storage.ExportJSON(path, storage.NewExportData(cfg, res, exact))
	default:
		series := []viz.Series{{
			Name:   res.Integrator,
			Times:  res.Trajectory.Times,
			Values: res.Trajectory.States,
		}}
		if exact != nil {
			series = append(series, viz.Series{Name: "exact", Times: res.Trajectory.Times, Values: exact})
		}
		return viz.SavePlot(path, cfg.Problem, series)
	}
}
