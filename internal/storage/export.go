package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/san-kum/stiffode/internal/config"
	"github.com/san-kum/stiffode/internal/dynamo"
)

type ExportData struct {
	Problem     string             `json:"problem"`
	Integrator  string             `json:"integrator"`
	Start       float64            `json:"start"`
	End         float64            `json:"end"`
	Steps       int                `json:"steps"`
	StepSize    float64            `json:"h"`
	X0          float64            `json:"x0"`
	Tol         float64            `json:"tol"`
	Evaluations int                `json:"evaluations"`
	Times       []float64          `json:"times"`
	States      []float64          `json:"states"`
	Exact       []float64          `json:"exact,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

// NewExportData flattens a run for JSON output. exact may be nil for
// problems without a closed-form solution; it is dropped when it contains
// values JSON cannot represent.
func NewExportData(cfg *config.Config, result *dynamo.Result, exact []float64) ExportData {
	run := cfg.Run()
	if !allFinite(exact) {
		exact = nil
	}
	return ExportData{
		Problem:     cfg.Problem,
		Integrator:  result.Integrator,
		Start:       run.A,
		End:         run.B,
		Steps:       run.N,
		StepSize:    run.StepSize(),
		X0:          run.X0,
		Tol:         run.Tol,
		Evaluations: result.Evaluations,
		Times:       result.Trajectory.Times,
		States:      result.Trajectory.States,
		Exact:       exact,
		Metrics:     result.Metrics,
	}
}

func EncodeJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := EncodeJSON(file, data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func ExportCSV(path string, tr *dynamo.Trajectory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteCSV(file, tr); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
