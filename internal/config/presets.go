package config

import "sort"

// Presets are named starting points per problem.
var Presets = map[string]map[string]*Config{
	"cosine": {
		"reference": {
			Problem: "cosine", Integrator: "rk4", Start: 0, End: 5, Steps: 100, Tol: 1e-3,
		},
		"coarse": {
			Problem: "cosine", Integrator: "euler", Start: 0, End: 5, Steps: 20, Tol: 1e-3,
		},
		"long": {
			Problem: "cosine", Integrator: "lsoda", Start: 0, End: 50, Steps: 1000, Tol: 1e-3,
		},
	},
	"stiff": {
		"implicit": {
			Problem: "stiff", Integrator: "bdf2", Start: 0, End: 5, Steps: 50, X0: 1, Tol: 1e-3,
		},
		"unstable": {
			Problem: "stiff", Integrator: "euler", Start: 0, End: 5, Steps: 50, X0: 1, Tol: 1e-3,
		},
		"switching": {
			Problem: "stiff", Integrator: "lsoda", Start: 0, End: 5, Steps: 500, X0: 1, Tol: 1.0,
		},
	},
	"decay": {
		"unit": {
			Problem: "decay", Integrator: "radau", Start: 0, End: 10, Steps: 100, X0: 1, Tol: 1e-3,
		},
	},
	"quadratic": {
		"unit": {
			Problem: "quadratic", Integrator: "bdf2", Start: 0, End: 10, Steps: 200, X0: 1, Tol: 1e-3,
		},
		"blowup": {
			Problem: "quadratic", Integrator: "rk4", Start: 0, End: 2, Steps: 200, X0: -1, Tol: 1e-3,
		},
	},
	"growth": {
		"unit": {
			Problem: "growth", Integrator: "rk4", Start: 0, End: 3, Steps: 60, Tol: 1e-3,
		},
	},
}

// GetPreset returns a copy of the named preset with solver defaults filled in.
func GetPreset(problem, preset string) *Config {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	cfg, ok := problemPresets[preset]
	if !ok {
		return nil
	}
	out := *cfg
	if out.Solver.Tol == 0 {
		out.Solver.Tol = DefaultSolverT
	}
	if out.Solver.MaxIter == 0 {
		out.Solver.MaxIter = DefaultMaxIter
	}
	return &out
}

func ListPresets(problem string) []string {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(problemPresets))
	for name := range problemPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
