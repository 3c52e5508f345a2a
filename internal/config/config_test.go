package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Problem != "cosine" {
		t.Errorf("expected problem cosine, got %s", cfg.Problem)
	}
	if cfg.Steps <= 0 {
		t.Error("steps should be positive")
	}
	if cfg.End <= cfg.Start {
		t.Error("interval should be non-empty")
	}
	if cfg.Tol != 1e-3 {
		t.Errorf("expected tol 1e-3, got %g", cfg.Tol)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("stiff", "implicit")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.X0 != 1 {
		t.Errorf("expected x0 1, got %f", cfg.X0)
	}
	if cfg.Solver.MaxIter != DefaultMaxIter {
		t.Errorf("expected solver defaults, got %+v", cfg.Solver)
	}

	cfg.Steps = 1
	if Presets["stiff"]["implicit"].Steps == 1 {
		t.Error("preset should be returned as a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("cosine", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "reference")
	if cfg != nil {
		t.Error("expected nil for nonexistent problem")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("cosine")
	if len(presets) != 3 {
		t.Errorf("expected 3 presets for cosine, got %d", len(presets))
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent problem")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.Integrator = "lsoda"
	cfg.Tol = 0.5
	cfg.Params = map[string]float64{"rate": 20}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Integrator != "lsoda" || loaded.Tol != 0.5 || loaded.Params["rate"] != 20 {
		t.Errorf("unexpected round trip: %+v", loaded)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("problem: decay\nsteps: 10\nsolver:\n  max_iter: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Problem != "decay" || loaded.Steps != 10 || loaded.Solver.MaxIter != 7 {
		t.Errorf("unexpected config: %+v", loaded)
	}
	if loaded.End != DefaultEnd || loaded.Tol != DefaultTol || loaded.Integrator != "rk4" {
		t.Errorf("absent keys should keep defaults: %+v", loaded)
	}
	if loaded.Solver.Tol != DefaultSolverT {
		t.Errorf("absent solver tol should keep default, got %g", loaded.Solver.Tol)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRunConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.X0 = 2
	run := cfg.Run()
	if run.A != 0 || run.B != 5 || run.N != 100 || run.X0 != 2 || run.Tol != 1e-3 {
		t.Errorf("unexpected run config: %+v", run)
	}
	if err := run.Validate(1); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	solver := cfg.NewSolver()
	if solver.MaxIter != DefaultMaxIter {
		t.Errorf("unexpected solver: %+v", solver)
	}
}

func TestSetAndClone(t *testing.T) {
	base := DefaultConfig()
	base.Params = map[string]float64{"rate": 2}

	cfg := base.Clone()
	for name, v := range map[string]float64{
		"steps":           49.6,
		"tol":             0.5,
		"x0":              1,
		"b":               7,
		"solver.max_iter": 10,
		"rate":            3,
	} {
		if err := cfg.Set(name, v); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	if cfg.Steps != 50 {
		t.Errorf("expected steps rounded to 50, got %d", cfg.Steps)
	}
	if cfg.Tol != 0.5 || cfg.X0 != 1 || cfg.End != 7 || cfg.Solver.MaxIter != 10 {
		t.Errorf("unexpected config after set: %+v", cfg)
	}
	if cfg.Params["rate"] != 3 {
		t.Errorf("expected rate param 3, got %f", cfg.Params["rate"])
	}
	if base.Params["rate"] != 2 || base.Steps != DefaultSteps {
		t.Error("clone should not share state with the original")
	}

	if err := cfg.Set("integrator", 1); err == nil {
		t.Error("expected error setting a string field")
	}
}
