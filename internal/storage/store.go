package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/boatsim/internal/dynamo"
)

// Store keeps one directory per run holding metadata.json and states.csv.
type Store struct {
	baseDir string
	catalog *Catalog
	log     zerolog.Logger
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, log: zerolog.Nop()}
}

// WithCatalog mirrors every save into c and serves List from it.
func (s *Store) WithCatalog(c *Catalog) *Store {
	s.catalog = c
	return s
}

// Catalog returns the attached catalog, or nil.
func (s *Store) Catalog() *Catalog { return s.catalog }

func (s *Store) WithLogger(l zerolog.Logger) *Store {
	s.log = l
	return s
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunInfo describes how a run was produced.
type RunInfo struct {
	Preset     string             `json:"preset"`
	Integrator string             `json:"integrator"`
	Controller string             `json:"controller"`
	Unit       string             `json:"unit"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Seed       int64              `json:"seed"`
	Params     map[string]float64 `json:"params,omitempty"`

	// StateColumns and ControlColumns name the CSV columns; unnamed columns
	// fall back to x0.. and u0...
	StateColumns   []string `json:"state_columns,omitempty"`
	ControlColumns []string `json:"control_columns,omitempty"`
}

// withColumns fills in a name for every state and control column of result.
func (info RunInfo) withColumns(result *dynamo.Result) RunInfo {
	if len(result.States) > 0 {
		info.StateColumns = columnNames(info.StateColumns, len(result.States[0]), "x")
	}
	numControls := len(info.ControlColumns)
	if numControls == 0 && len(result.Controls) > 0 {
		numControls = len(result.Controls[0])
	}
	info.ControlColumns = columnNames(info.ControlColumns, numControls, "u")
	return info
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Steps     int                `json:"steps"`
	Metrics   map[string]float64 `json:"metrics"`
	Errors    []string           `json:"errors,omitempty"`
	RunInfo
}

func (s *Store) Save(info RunInfo, result *dynamo.Result) (*RunMetadata, error) {
	info = info.withColumns(result)
	now := time.Now()
	runID, runDir, err := s.allocate(info.Preset, now)
	if err != nil {
		return nil, err
	}

	meta := &RunMetadata{
		ID:        runID,
		Timestamp: now,
		Steps:     result.StepsTaken,
		Metrics:   result.Metrics,
		RunInfo:   info,
	}
	for _, e := range result.Errors {
		meta.Errors = append(meta.Errors, e.Error())
	}

	if err := writeRun(runDir, meta, info, result); err != nil {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("run", runID).Msg("removing partial run")
		}
		return nil, fmt.Errorf("write run %s: %w", runID, err)
	}

	if s.catalog != nil {
		if err := s.catalog.Record(meta); err != nil {
			return meta, fmt.Errorf("catalog %s: %w", runID, err)
		}
	}
	s.log.Debug().Str("run", runID).Int("steps", meta.Steps).Msg("run saved")
	return meta, nil
}

func writeRun(runDir string, meta *RunMetadata, info RunInfo, result *dynamo.Result) error {
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return err
	}
	if err := WriteCSV(csvFile, info, result); err != nil {
		csvFile.Close()
		return err
	}
	return csvFile.Close()
}

// allocate creates a fresh run directory, suffixing the ID when two runs
// land on the same timestamp.
func (s *Store) allocate(preset string, now time.Time) (string, string, error) {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%s", preset, now.Format("20060102_150405.000000"))
	runID := base
	for i := 1; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s-%d", base, i)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (s *Store) List() ([]RunMetadata, error) {
	if s.catalog != nil {
		return s.catalog.Metadata()
	}

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

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadStates reads back the state columns of a run. Control columns are
// dropped using the width recorded in the metadata.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	stateCols := len(records[0]) - 1 - len(meta.ControlColumns)
	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i, err)
		}
		times = append(times, t)

		state := make([]float64, 0, stateCols)
		for j := 1; j <= stateCols && j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d col %d: %w", i, j, err)
			}
			state = append(state, val)
		}
		states = append(states, state)
	}

	return states, times, nil
}
