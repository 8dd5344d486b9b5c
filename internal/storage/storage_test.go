package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/san-kum/boatsim/internal/dynamo"
)

func testResult() *dynamo.Result {
	return &dynamo.Result{
		States: []dynamo.State{
			{0, 0, -0.3},
			{0.05, 0, -0.3},
		},
		Controls: []dynamo.Control{
			{1, 0, 0},
		},
		Times:      []float64{0.0, 0.01},
		StepsTaken: 1,
		Metrics: map[string]float64{
			"max_speed": 5.5,
		},
	}
}

func testInfo() RunInfo {
	return RunInfo{
		Preset:         "runabout",
		Integrator:     "rk4",
		Controller:     "manual",
		Unit:           "m",
		Dt:             0.01,
		Duration:       0.01,
		Seed:           42,
		StateColumns:   []string{"pos_x", "pos_y", "pos_z"},
		ControlColumns: []string{"throttle", "steering", "handbrake"},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if meta.ID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(meta.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Preset != "runabout" {
		t.Errorf("expected preset 'runabout', got '%s'", loaded.Preset)
	}
	if loaded.Seed != 42 {
		t.Errorf("expected seed 42, got %d", loaded.Seed)
	}
	if loaded.Metrics["max_speed"] != 5.5 {
		t.Errorf("expected max_speed 5.5, got %f", loaded.Metrics["max_speed"])
	}

	states, times, err := st.LoadStates(meta.ID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != 2 || len(times) != 2 {
		t.Fatalf("expected 2 rows, got %d states and %d times", len(states), len(times))
	}
	if len(states[0]) != 3 {
		t.Errorf("control columns should be dropped, got %d state columns", len(states[0]))
	}
	if states[1][0] != 0.05 || states[1][2] != -0.3 {
		t.Errorf("unexpected state row %v", states[1])
	}
}

func TestStoreSaveFailureLeavesNoRun(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	result := testResult()
	result.Metrics["max_speed"] = math.NaN() // not representable in JSON
	if _, err := st.Save(testInfo(), result); err == nil {
		t.Fatal("expected save to fail")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("partial run left behind: %v", entries)
	}
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("List shows %d runs, want 0", len(runs))
	}
}

func TestStoreUniqueIDs(t *testing.T) {
	st := New(t.TempDir())
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		meta, err := st.Save(testInfo(), testResult())
		if err != nil {
			t.Fatal(err)
		}
		if seen[meta.ID] {
			t.Fatalf("duplicate run id %s", meta.ID)
		}
		seen[meta.ID] = true
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 5 {
		t.Errorf("expected 5 runs, got %d", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(t.TempDir() + "/absent").List()
	if err != nil || len(runs) != 0 {
		t.Errorf("got %v, %v; want empty list", runs, err)
	}
}

func TestWriteCSVHeader(t *testing.T) {
	var buf bytes.Buffer
	info := RunInfo{StateColumns: []string{"pos_x"}}
	if err := WriteCSV(&buf, info, testResult()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "time,pos_x,x1,x2,u0,u1,u2" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	// final state has no control applied
	if !strings.HasSuffix(lines[2], ",0,0,0") {
		t.Errorf("last row = %q", lines[2])
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, testInfo(), testResult()); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Steps != 2 || data.Preset != "runabout" || len(data.Controls) != 1 {
		t.Errorf("unexpected export %+v", data)
	}
}

func TestCatalog(t *testing.T) {
	cat, err := OpenCatalog(t.TempDir() + "/runs.db")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer cat.Close()

	for i, speed := range []float64{4, 9, 6} {
		meta := &RunMetadata{
			ID:      "run" + string(rune('a'+i)),
			Metrics: map[string]float64{"max_speed": speed},
			RunInfo: testInfo(),
		}
		if i == 2 {
			meta.Preset = "barge"
		}
		if err := cat.Record(meta); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	runs, err := cat.Runs("runabout", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runabout runs, got %d", len(runs))
	}

	best, err := cat.Best("max_speed", false)
	if err != nil {
		t.Fatal(err)
	}
	if best.RunID != "runb" {
		t.Errorf("fastest run = %s, want runb", best.RunID)
	}
	m, err := best.MetricMap()
	if err != nil || m["max_speed"] != 9 {
		t.Errorf("metrics = %v, %v", m, err)
	}

	slowest, err := cat.Best("max_speed", true)
	if err != nil {
		t.Fatal(err)
	}
	if slowest.RunID != "runa" {
		t.Errorf("slowest run = %s, want runa", slowest.RunID)
	}

	if _, err := cat.Best("max_speed'; drop table run_records; --", false); err == nil {
		t.Error("expected error for invalid metric name")
	}
}

func TestCatalogInMemory(t *testing.T) {
	cat, err := OpenCatalog("")
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	if err := cat.Record(&RunMetadata{ID: "only", RunInfo: testInfo()}); err != nil {
		t.Fatal(err)
	}
	runs, err := cat.Runs("", 10)
	if err != nil || len(runs) != 1 {
		t.Errorf("got %d runs, %v", len(runs), err)
	}
}

func TestStoreWithCatalog(t *testing.T) {
	cat, err := OpenCatalog("")
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	st := New(t.TempDir()).WithCatalog(cat)
	meta, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != meta.ID {
		t.Fatalf("catalog listing = %+v", runs)
	}
	if runs[0].Metrics["max_speed"] != 5.5 || runs[0].Integrator != "rk4" {
		t.Errorf("catalog lost fields: %+v", runs[0])
	}
}
