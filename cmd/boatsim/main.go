package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/san-kum/boatsim/internal/config"
	"github.com/san-kum/boatsim/internal/dynamo"
	"github.com/san-kum/boatsim/internal/experiment"
	"github.com/san-kum/boatsim/internal/logging"
	"github.com/san-kum/boatsim/internal/physics"
	"github.com/san-kum/boatsim/internal/storage"
	"github.com/san-kum/boatsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	themeName  string
	logJSON    bool

	preset      string
	dt          float64
	duration    float64
	seed        int64
	integrator  string
	controller  string
	throttle    float64
	steering    float64
	handbrake   bool
	heading     float64
	speed       float64
	initHeading float64
	initSpeed   float64
	kp          float64
	ki          float64
	kd          float64
	adaptive    bool
	params      map[string]string

	log      = logging.New(os.Stderr, zerolog.InfoLevel, false)
	registry = experiment.NewRegistry()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "boatsim",
		Short:         "boat dynamics simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logJSON {
				log = logging.NewJSON(os.Stderr, logging.ParseLevel(logLevel))
				return
			}
			log = logging.New(os.Stderr, logging.ParseLevel(logLevel), false)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "harbour", "report theme")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON lines")

	rootCmd.AddCommand(
		newRunCmd(), newCompareCmd(), newBenchCmd(),
		newListCmd(), newPlotCmd(), newExportCmd(), newExportCSVCmd(), newExportJSONCmd(), newExportSVGCmd(), newAnalyzeCmd(),
		newPresetsCmd(), newSweepCmd(), newSteadyCmd(), newTuneCmd(), newScenarioCmd(), newConfigCmd(),
		newDriveCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("boatsim failed")
		os.Exit(1)
	}
}

// simFlags registers the flags shared by every command that builds a run.
func simFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&preset, "preset", config.DefaultPreset, "vessel preset")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.StringVar(&integrator, "integrator", "rk4", "integrator")
	f.StringVar(&controller, "controller", "manual", "controller: none, manual, autopilot, schedule")
	f.Float64Var(&throttle, "throttle", 1, "manual throttle [-1, 1]")
	f.Float64Var(&steering, "steering", 0, "manual steering [-1, 1]")
	f.BoolVar(&handbrake, "handbrake", false, "manual handbrake")
	f.Float64Var(&heading, "heading", 0, "autopilot target heading, degrees")
	f.Float64Var(&speed, "speed", 0, "autopilot target speed, m/s")
	f.Float64Var(&initHeading, "init-heading", 0, "initial heading, degrees")
	f.Float64Var(&initSpeed, "init-speed", 0, "initial forward speed, m/s")
	f.Float64Var(&kp, "kp", 0, "autopilot heading kp (0 keeps the default)")
	f.Float64Var(&ki, "ki", 0, "autopilot heading ki")
	f.Float64Var(&kd, "kd", 0, "autopilot heading kd")
	f.BoolVar(&adaptive, "adaptive", false, "adaptive step size")
	f.StringToStringVar(&params, "set", nil, "vessel parameter overrides, name=value")
}

// loadConfig resolves the preset, layers the config file and environment on
// top, then applies the flags the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	name := config.DefaultPreset
	if f := cmd.Flags().Lookup("preset"); f != nil {
		name = f.Value.String()
	}
	base, err := registry.GetPreset(name)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %v)", err, registry.ListPresets())
	}

	cfg, err := config.LoadFrom(base, configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	changed := cmd.Flags().Changed
	if changed("dt") {
		cfg.Sim.Dt = dt
	}
	if changed("time") {
		cfg.Sim.Duration = duration
	}
	if changed("seed") {
		cfg.Sim.Seed = seed
	}
	if changed("integrator") {
		cfg.Sim.Integrator = integrator
	}
	if changed("adaptive") {
		cfg.Sim.Adaptive = adaptive
	}
	if changed("controller") {
		cfg.Controller.Type = controller
	}
	if changed("throttle") {
		cfg.Controller.Throttle = throttle
	}
	if changed("steering") {
		cfg.Controller.Steering = steering
	}
	if changed("handbrake") {
		cfg.Controller.Handbrake = handbrake
	}
	if changed("heading") {
		cfg.Controller.TargetHeadingDeg = heading
	}
	if changed("speed") {
		cfg.Controller.TargetSpeed = speed
	}
	if changed("kp") {
		cfg.Controller.Kp = kp
	}
	if changed("ki") {
		cfg.Controller.Ki = ki
	}
	if changed("kd") {
		cfg.Controller.Kd = kd
	}
	if changed("init-heading") {
		cfg.Init.HeadingDeg = initHeading
	}
	if changed("init-speed") {
		cfg.Init.Speed = initSpeed
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, cfg.Validate()
}

func paramOverrides() (map[string]float64, error) {
	out := make(map[string]float64, len(params))
	for name, raw := range params {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// openStore opens the run store, with the SQLite catalog when configured.
// The returned func closes the catalog.
func openStore(cfg *config.Config) (*storage.Store, func(), error) {
	dir := cfg.DataDir
	if dataDir != "" {
		dir = dataDir
	}
	st := storage.New(dir).WithLogger(log)
	if err := st.Init(); err != nil {
		return nil, nil, err
	}
	if cfg.Catalog == "" {
		return st, func() {}, nil
	}

	cat, err := storage.OpenCatalog(cfg.Catalog)
	if err != nil {
		return nil, nil, err
	}
	return st.WithCatalog(cat), func() {
		if err := cat.Close(); err != nil {
			log.Warn().Err(err).Msg("closing catalog")
		}
	}, nil
}

// storeFromFlags opens the store for commands that only read runs.
func storeFromFlags() (*storage.Store, func(), error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	return openStore(cfg)
}

// loadRun reads a stored run back together with a vessel carrying the
// parameters it ran with.
func loadRun(st *storage.Store, runID string) (*storage.RunMetadata, *dynamo.Result, *physics.Vessel, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(states) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s has no data", runID)
	}

	cfg := config.DefaultConfig()
	cfg.Sim.HostUnits = meta.Unit
	v, err := cfg.NewVessel()
	if err != nil {
		return nil, nil, nil, err
	}
	for name, value := range meta.Params {
		if err := v.SetParam(name, value); err != nil {
			log.Warn().Err(err).Str("run", runID).Msg("ignoring stored param")
		}
	}

	result := &dynamo.Result{
		States:  make([]dynamo.State, len(states)),
		Times:   times,
		Metrics: meta.Metrics,
	}
	for i, s := range states {
		result.States[i] = s
	}
	return meta, result, v, nil
}

func report() *viz.Report {
	return viz.NewReport(viz.GetTheme(themeName))
}
