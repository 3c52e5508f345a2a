package config

import (
	"fmt"
	"maps"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/rootfind"
)

const (
	DefaultStart   = 0.0
	DefaultEnd     = 5.0
	DefaultSteps   = 100
	DefaultX0      = 0.0
	DefaultTol     = dynamo.DefaultTolerance
	DefaultSolverT = rootfind.DefaultTol
	DefaultMaxIter = rootfind.DefaultMaxIter
)

type Config struct {
	Problem    string             `yaml:"problem"`
	Integrator string             `yaml:"integrator"`
	Start      float64            `yaml:"a"`
	End        float64            `yaml:"b"`
	Steps      int                `yaml:"steps"`
	X0         float64            `yaml:"x0"`
	Tol        float64            `yaml:"tol"`
	Solver     SolverConfig       `yaml:"solver"`
	Params     map[string]float64 `yaml:"params,omitempty"`
}

type SolverConfig struct {
	Tol     float64 `yaml:"tol"`
	MaxIter int     `yaml:"max_iter"`
}

func DefaultConfig() *Config {
	return &Config{
		Problem:    "cosine",
		Integrator: "rk4",
		Start:      DefaultStart,
		End:        DefaultEnd,
		Steps:      DefaultSteps,
		X0:         DefaultX0,
		Tol:        DefaultTol,
		Solver: SolverConfig{
			Tol:     DefaultSolverT,
			MaxIter: DefaultMaxIter,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Run returns the integration parameters.
func (c *Config) Run() dynamo.Config {
	return dynamo.Config{
		A:   c.Start,
		B:   c.End,
		N:   c.Steps,
		X0:  c.X0,
		Tol: c.Tol,
	}
}

// NewSolver builds the root finder used by implicit integrators.
func (c *Config) NewSolver() *rootfind.Newton {
	return &rootfind.Newton{
		Tol:     c.Solver.Tol,
		MaxIter: c.Solver.MaxIter,
	}
}

func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = maps.Clone(c.Params)
	}
	return &out
}

// Set assigns a run field by its YAML name. Any other name is stored as a
// problem parameter and checked when the experiment is set up.
func (c *Config) Set(name string, value float64) error {
	switch name {
	case "problem", "integrator":
		return fmt.Errorf("config: %s is not numeric", name)
	case "a":
		c.Start = value
	case "b":
		c.End = value
	case "steps":
		c.Steps = int(math.Round(value))
	case "x0":
		c.X0 = value
	case "tol":
		c.Tol = value
	case "solver.tol":
		c.Solver.Tol = value
	case "solver.max_iter":
		c.Solver.MaxIter = int(math.Round(value))
	default:
		if c.Params == nil {
			c.Params = make(map[string]float64)
		}
		c.Params[name] = value
	}
	return nil
}
