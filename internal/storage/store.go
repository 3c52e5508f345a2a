package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/stiffode/internal/config"
	"github.com/san-kum/stiffode/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Problem     string             `json:"problem"`
	Integrator  string             `json:"integrator"`
	Timestamp   time.Time          `json:"timestamp"`
	Start       float64            `json:"start"`
	End         float64            `json:"end"`
	Steps       int                `json:"steps"`
	X0          float64            `json:"x0"`
	Tol         float64            `json:"tol"`
	Params      map[string]float64 `json:"params,omitempty"`
	Points      int                `json:"points"`
	Evaluations int                `json:"evaluations"`
	Metrics     map[string]float64 `json:"metrics"`
	Error       string             `json:"error,omitempty"`
}

// Save writes a run directory holding metadata.json and states.csv. runErr
// records why a partial trajectory stopped early; it may be nil.
func (s *Store) Save(cfg *config.Config, result *dynamo.Result, runErr error) (string, error) {
	if result == nil || result.Trajectory == nil {
		return "", errors.New("storage: nothing to save")
	}

	runID := fmt.Sprintf("%s_%s_%s", cfg.Problem, result.Integrator, uuid.NewString())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Problem:     cfg.Problem,
		Integrator:  result.Integrator,
		Timestamp:   time.Now(),
		Start:       cfg.Start,
		End:         cfg.End,
		Steps:       cfg.Steps,
		X0:          cfg.X0,
		Tol:         cfg.Tol,
		Params:      cfg.Params,
		Points:      result.Trajectory.Len(),
		Evaluations: result.Evaluations,
		Metrics:     result.Metrics,
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}

	if err := writeRun(runDir, meta, result.Trajectory); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}

	return runID, nil
}

// writeRun writes the states before the metadata, so a directory that List
// can see always has its trajectory.
func writeRun(runDir string, meta RunMetadata, tr *dynamo.Trajectory) error {
	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return err
	}
	if err := WriteCSV(csvFile, tr); err != nil {
		csvFile.Close()
		return err
	}
	if err := csvFile.Close(); err != nil {
		return err
	}

	return writeJSON(filepath.Join(runDir, metadataFile), meta)
}

// List returns the metadata of every stored run, newest first. Directories
// without readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// Config rebuilds the run configuration recorded in the metadata.
func (m *RunMetadata) Config() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Problem = m.Problem
	cfg.Integrator = m.Integrator
	cfg.Start = m.Start
	cfg.End = m.End
	cfg.Steps = m.Steps
	cfg.X0 = m.X0
	cfg.Tol = m.Tol
	if len(m.Params) > 0 {
		cfg.Params = maps.Clone(m.Params)
	}
	return cfg
}

// Result pairs the recorded metadata with a loaded trajectory.
func (m *RunMetadata) Result(tr *dynamo.Trajectory) *dynamo.Result {
	return &dynamo.Result{
		Integrator:  m.Integrator,
		Trajectory:  tr,
		Metrics:     m.Metrics,
		Evaluations: m.Evaluations,
	}
}

func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// WriteCSV writes a time,x table with full float64 precision.
func WriteCSV(w io.Writer, tr *dynamo.Trajectory) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"time", "x"}); err != nil {
		return err
	}

	for i := range tr.States {
		row := []string{
			strconv.FormatFloat(tr.Times[i], 'g', -1, 64),
			strconv.FormatFloat(tr.States[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the table written by WriteCSV.
func ReadCSV(r io.Reader) (*dynamo.Trajectory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return dynamo.NewTrajectory(0), nil
	}

	tr := dynamo.NewTrajectory(len(records) - 1)
	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: time: %w", i+1, err)
		}
		x, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: state: %w", i+1, err)
		}
		tr.Append(t, x)
	}

	return tr, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
