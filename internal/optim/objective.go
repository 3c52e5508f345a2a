package optim

import (
	"fmt"
	"math"

	"github.com/san-kum/stiffode/internal/analysis"
	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/experiment"
)

// Objective scores a finished run; lower is better.
type Objective func(exp *experiment.Experiment, res *dynamo.Result) (float64, error)

// MaxError scores a run by its maximum deviation from the exact solution.
func MaxError(exp *experiment.Experiment, res *dynamo.Result) (float64, error) {
	sol := exp.Solution()
	if sol == nil {
		return 0, fmt.Errorf("problem %s has no exact solution", exp.System().Name())
	}
	return analysis.MaxAbsError(res.Trajectory, sol), nil
}

// Balanced trades accuracy against work:
// log10(max error) + weight*log10(derivative evaluations).
func Balanced(weight float64) Objective {
	return func(exp *experiment.Experiment, res *dynamo.Result) (float64, error) {
		e, err := MaxError(exp, res)
		if err != nil {
			return 0, err
		}
		evals := math.Max(float64(res.Evaluations), 1)
		return math.Log10(math.Max(e, 1e-300)) + weight*math.Log10(evals), nil
	}
}

// MetricObjective scores a run by one of its recorded metrics.
func MetricObjective(name string) Objective {
	return func(_ *experiment.Experiment, res *dynamo.Result) (float64, error) {
		v, ok := res.Metrics[name]
		if !ok {
			return 0, fmt.Errorf("metric %s not recorded", name)
		}
		return v, nil
	}
}
