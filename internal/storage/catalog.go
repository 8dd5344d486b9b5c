package storage

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var metricName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// RunRecord is the catalog row for one saved run.
type RunRecord struct {
	gorm.Model
	RunID      string `gorm:"size:127;uniqueIndex"`
	Preset     string `gorm:"size:64;index:idx_run_preset"`
	Integrator string `gorm:"size:16"`
	Controller string `gorm:"size:32"`
	Unit       string `gorm:"size:16"`
	Dt         float64
	Duration   float64
	Seed       int64
	Steps      int
	RanAt      time.Time
	Metrics    datatypes.JSON
	Params     datatypes.JSON
}

// MetricMap decodes the stored metrics column.
func (r *RunRecord) MetricMap() (map[string]float64, error) {
	out := map[string]float64{}
	if len(r.Metrics) == 0 {
		return out, nil
	}
	err := json.Unmarshal(r.Metrics, &out)
	return out, err
}

// Catalog indexes runs in a SQLite database so they can be queried by preset
// and metric without walking the run directories.
type Catalog struct {
	db *gorm.DB
}

// OpenCatalog opens or creates the catalog at path. An empty path gives an
// in-memory catalog.
func OpenCatalog(path string) (*Catalog, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog %q: %w", path, err)
	}
	if path == "" {
		// every new connection would see a fresh empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record adds a saved run to the catalog.
func (c *Catalog) Record(meta *RunMetadata) error {
	metrics, err := json.Marshal(meta.Metrics)
	if err != nil {
		return err
	}
	params, err := json.Marshal(meta.Params)
	if err != nil {
		return err
	}

	rec := RunRecord{
		RunID:      meta.ID,
		Preset:     meta.Preset,
		Integrator: meta.Integrator,
		Controller: meta.Controller,
		Unit:       meta.Unit,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Seed:       meta.Seed,
		Steps:      meta.Steps,
		RanAt:      meta.Timestamp,
		Metrics:    datatypes.JSON(metrics),
		Params:     datatypes.JSON(params),
	}
	return c.db.Create(&rec).Error
}

// Runs lists catalogued runs, newest first. An empty preset matches all.
func (c *Catalog) Runs(preset string, limit int) ([]RunRecord, error) {
	q := c.db.Order("ran_at desc, id desc")
	if preset != "" {
		q = q.Where("preset = ?", preset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []RunRecord
	err := q.Find(&out).Error
	return out, err
}

// Best returns the run with the highest (or lowest) value of metric.
func (c *Catalog) Best(metric string, lowest bool) (*RunRecord, error) {
	if !metricName.MatchString(metric) {
		return nil, fmt.Errorf("invalid metric name %q", metric)
	}
	expr := datatypes.JSONQuery("metrics").HasKey(metric)
	order := fmt.Sprintf("json_extract(metrics, '$.%s') desc", metric)
	if lowest {
		order = fmt.Sprintf("json_extract(metrics, '$.%s') asc", metric)
	}

	var rec RunRecord
	err := c.db.Where(expr).Order(order).First(&rec).Error
	if err != nil {
		return nil, fmt.Errorf("best run by %s: %w", metric, err)
	}
	return &rec, nil
}

// Metadata returns every catalogued run as RunMetadata, oldest first.
func (c *Catalog) Metadata() ([]RunMetadata, error) {
	var recs []RunRecord
	if err := c.db.Order("ran_at asc, id asc").Find(&recs).Error; err != nil {
		return nil, err
	}

	out := make([]RunMetadata, 0, len(recs))
	for i := range recs {
		r := &recs[i]
		metrics, err := r.MetricMap()
		if err != nil {
			return nil, fmt.Errorf("run %s metrics: %w", r.RunID, err)
		}
		var params map[string]float64
		if len(r.Params) > 0 {
			if err := json.Unmarshal(r.Params, &params); err != nil {
				return nil, fmt.Errorf("run %s params: %w", r.RunID, err)
			}
		}
		out = append(out, RunMetadata{
			ID:        r.RunID,
			Timestamp: r.RanAt,
			Steps:     r.Steps,
			Metrics:   metrics,
			RunInfo: RunInfo{
				Preset:     r.Preset,
				Integrator: r.Integrator,
				Controller: r.Controller,
				Unit:       r.Unit,
				Dt:         r.Dt,
				Duration:   r.Duration,
				Seed:       r.Seed,
				Params:     params,
			},
		})
	}
	return out, nil
}
