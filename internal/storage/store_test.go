package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/stiffode/internal/config"
	"github.com/san-kum/stiffode/internal/dynamo"
)

func testResult() *dynamo.Result {
	tr := dynamo.NewTrajectory(3)
	tr.Append(0, 0)
	tr.Append(0.05, 0.05)
	tr.Append(0.1, 1.0/3.0)
	return &dynamo.Result{
		Integrator:  "bdf2",
		Trajectory:  tr,
		Metrics:     map[string]float64{"root_iterations": 7},
		Evaluations: 42,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg := config.DefaultConfig()
	cfg.Integrator = "bdf2"

	runID, err := st.Save(cfg, testResult(), nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "cosine_bdf2_"), runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "cosine", meta.Problem)
	assert.Equal(t, "bdf2", meta.Integrator)
	assert.Equal(t, 3, meta.Points)
	assert.Equal(t, 42, meta.Evaluations)
	assert.Equal(t, 7.0, meta.Metrics["root_iterations"])
	assert.Empty(t, meta.Error)

	tr, err := st.LoadTrajectory(runID)
	require.NoError(t, err)
	assert.Equal(t, testResult().Trajectory.Times, tr.Times)
	assert.Equal(t, testResult().Trajectory.States, tr.States)
}

func TestStoreSaveFailureLeavesNoRun(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	// encoding/json rejects NaN, so the metadata write fails after the
	// states file already exists
	result := testResult()
	result.Metrics["observed_order"] = math.NaN()

	_, err := st.Save(config.DefaultConfig(), result, nil)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreSavePartialRun(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runErr := &dynamo.StepError{Step: 3, Wrapped: dynamo.ErrConvergence}
	runID, err := st.Save(config.DefaultConfig(), testResult(), runErr)
	require.NoError(t, err)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Contains(t, meta.Error, "did not converge")
}

func TestStoreSaveNil(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Save(config.DefaultConfig(), nil, errors.New("boom"))
	assert.Error(t, err)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, st.Init())
	_, err = st.Save(config.DefaultConfig(), testResult(), nil)
	require.NoError(t, err)
	_, err = st.Save(config.DefaultConfig(), testResult(), nil)
	require.NoError(t, err)

	// directories without metadata are ignored
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "stray"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.NotEqual(t, runs[0].ID, runs[1].ID)
}

func TestCSVRoundTripPrecision(t *testing.T) {
	tr := dynamo.NewTrajectory(2)
	tr.Append(0.1, math.Pi)
	tr.Append(0.2, -1e-17)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tr))
	assert.True(t, strings.HasPrefix(buf.String(), "time,x\n"))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, tr.States, got.States)
	assert.Equal(t, tr.Times, got.Times)
}

func TestReadCSVRejectsGarbage(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("time,x\n0,abc\n"))
	assert.Error(t, err)
}

func TestExportJSON(t *testing.T) {
	cfg := config.DefaultConfig()
	res := testResult()
	data := NewExportData(cfg, res, []float64{0, 0.05, 0.3})

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, ExportJSON(path, data))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded ExportData
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "cosine", decoded.Problem)
	assert.Equal(t, "bdf2", decoded.Integrator)
	assert.Equal(t, 100, decoded.Steps)
	assert.InDelta(t, 0.05, decoded.StepSize, 1e-15)
	assert.Equal(t, res.Trajectory.States, decoded.States)
	assert.Len(t, decoded.Exact, 3)
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	require.NoError(t, ExportCSV(path, testResult().Trajectory))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	tr, err := ReadCSV(f)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Len())
}

func TestExportDropsNonFiniteExact(t *testing.T) {
	data := NewExportData(config.DefaultConfig(), testResult(), []float64{0, math.Inf(1), 1})
	assert.Nil(t, data.Exact)

	var buf bytes.Buffer
	assert.NoError(t, EncodeJSON(&buf, data))
}

func TestMetadataConfig(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg := config.DefaultConfig()
	cfg.Problem = "stiff"
	cfg.X0 = 1
	cfg.Params = map[string]float64{"rate": 20}

	runID, err := st.Save(cfg, testResult(), nil)
	require.NoError(t, err)

	meta, err := st.Load(runID)
	require.NoError(t, err)

	rebuilt := meta.Config()
	assert.Equal(t, "stiff", rebuilt.Problem)
	assert.Equal(t, "bdf2", rebuilt.Integrator)
	assert.Equal(t, 1.0, rebuilt.X0)
	assert.Equal(t, cfg.Steps, rebuilt.Steps)
	assert.Equal(t, 20.0, rebuilt.Params["rate"])

	tr, err := st.LoadTrajectory(runID)
	require.NoError(t, err)
	res := meta.Result(tr)
	assert.Equal(t, "bdf2", res.Integrator)
	assert.Equal(t, 42, res.Evaluations)
	assert.Equal(t, 3, res.Trajectory.Len())
}
