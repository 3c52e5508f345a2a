package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/integrators"
	"github.com/san-kum/stiffode/internal/metrics"
	"github.com/san-kum/stiffode/internal/problems"
	"github.com/san-kum/stiffode/internal/rootfind"
)

type Registry struct {
	problems    map[string]func() dynamo.System
	integrators map[string]func(rootfind.Solver) dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		problems:    make(map[string]func() dynamo.System),
		integrators: make(map[string]func(rootfind.Solver) dynamo.Integrator),
	}

	r.problems["cosine"] = func() dynamo.System { return problems.NewCosine() }
	r.problems["stiff"] = func() dynamo.System { return problems.NewStiff() }
	r.problems["decay"] = func() dynamo.System { return problems.NewDecay() }
	r.problems["constant"] = func() dynamo.System { return problems.NewConstant() }
	r.problems["quadratic"] = func() dynamo.System { return problems.NewQuadratic() }
	r.problems["growth"] = func() dynamo.System { return problems.NewGrowth() }

	r.integrators["euler"] = func(rootfind.Solver) dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk2"] = func(rootfind.Solver) dynamo.Integrator { return integrators.NewRK2() }
	r.integrators["rk4"] = func(rootfind.Solver) dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["ab2"] = func(rootfind.Solver) dynamo.Integrator { return integrators.NewAB2() }
	r.integrators["radau"] = func(s rootfind.Solver) dynamo.Integrator { return integrators.NewRadau(s) }
	r.integrators["bdf2"] = func(s rootfind.Solver) dynamo.Integrator { return integrators.NewBDF2(s) }
	r.integrators["lsoda"] = func(s rootfind.Solver) dynamo.Integrator { return integrators.NewSwitching(s) }

	return r
}

func (r *Registry) GetProblem(name string) (dynamo.System, error) {
	fn, ok := r.problems[name]
	if !ok {
		return nil, fmt.Errorf("unknown problem: %s", name)
	}
	return fn(), nil
}

// GetIntegrator builds the named integrator. solver is only used by implicit
// schemes; nil selects the default Newton solver.
func (r *Registry) GetIntegrator(name string, solver rootfind.Solver) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(solver), nil
}

func (r *Registry) ListProblems() []string {
	return sortedKeys(r.problems)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return metrics.Defaults()
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
