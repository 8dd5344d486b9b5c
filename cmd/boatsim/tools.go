package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/boatsim/internal/analysis"
	"github.com/san-kum/boatsim/internal/automation"
	"github.com/san-kum/boatsim/internal/config"
	"github.com/san-kum/boatsim/internal/dynamo"
	"github.com/san-kum/boatsim/internal/experiment"
	"github.com/san-kum/boatsim/internal/optim"
	"github.com/san-kum/boatsim/internal/storage"
	"github.com/san-kum/boatsim/internal/viz"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	sweepParam    string
	sweepMin      float64
	sweepMax      float64
	sweepSteps    int
	sweepDt       float64
	steadyParam   string
	steadyMin     float64
	steadyMax     float64
	steadySteps   int
	steadyProbe   string
	steadySettle  float64
	steadyRecord  float64
	tuneGrid      []string
	tuneMetric    string
	tuneMaximize  bool
	scenarioSave  bool
	configOutPath string
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available vessel presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tUNITS\tMASS\tTHRUST\tRUDDER\tDRAFT")
			for _, name := range registry.ListPresets() {
				cfg, err := registry.GetPreset(name)
				if err != nil {
					return err
				}
				v, err := cfg.NewVessel()
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%.0f kg\t%.0f N\t%.0f\t%.3f m\n",
					name, cfg.Sim.HostUnits, cfg.Hull.Mass,
					cfg.Vessel.MaxForwardThrust, cfg.Vessel.RudderTorque, v.EquilibriumDraft())
			}
			return w.Flush()
		},
	}
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one vessel parameter and measure speed, turning and stopping",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	cmd.Flags().StringVar(&preset, "preset", config.DefaultPreset, "vessel preset")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().Float64Var(&sweepDt, "dt", 0.02, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration of each manoeuvre")
	cmd.Flags().StringVar(&sweepParam, "param", "rudder_torque", "parameter to sweep")
	cmd.Flags().Float64Var(&sweepMin, "min", 200, "first value")
	cmd.Flags().Float64Var(&sweepMax, "max", 800, "last value")
	cmd.Flags().IntVar(&sweepSteps, "steps", 7, "number of values")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	sw := automation.Sweep{
		Preset:     preset,
		Integrator: integrator,
		Param:      sweepParam,
		Min:        sweepMin,
		Max:        sweepMax,
		Steps:      sweepSteps,
		Dt:         sweepDt,
		Duration:   duration,
	}
	log.Info().Str("param", sw.Param).Int("values", sw.Steps).Msg("sweeping")

	results, err := automation.RunSweep(cmd.Context(), sw, registry)
	if err != nil {
		return err
	}

	top := 0.0
	for _, r := range results {
		top = max(top, r.TopSpeed)
	}

	r := report()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tTOP SPEED\t\tTURN DIAMETER\tSTOP DISTANCE\tSTOP TIME\n", strings.ToUpper(sw.Param))
	for _, res := range results {
		frac := 0.0
		if top > 0 {
			frac = res.TopSpeed / top
		}
		fmt.Fprintf(w, "%s\t%.3f m/s\t%s\t%s\t%s\t%s\n",
			viz.FormatValue(res.Value),
			res.TopSpeed,
			r.Bar(frac, 20),
			viz.FormatValue(res.TurningDiameter),
			viz.FormatValue(res.StoppingDistance),
			viz.FormatValue(res.StoppingTime),
		)
		if res.Err != nil {
			log.Warn().Err(res.Err).Float64("value", res.Value).Msg("sweep point incomplete")
		}
	}
	return w.Flush()
}

func newSteadyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steady",
		Short: "settled response to fixed inputs while one parameter varies",
		Long: `steady holds the --throttle, --steering and --handbrake inputs, lets each
run settle for --settle seconds and then records --probe for --record seconds.`,
		Args: cobra.NoArgs,
		RunE: runSteady,
	}
	simFlags(cmd)
	cmd.Flags().StringVar(&steadyParam, "param", "max_forward_thrust", "parameter to vary")
	cmd.Flags().Float64Var(&steadyMin, "min", 10000, "first value")
	cmd.Flags().Float64Var(&steadyMax, "max", 40000, "last value")
	cmd.Flags().IntVar(&steadySteps, "steps", 7, "number of values")
	cmd.Flags().StringVar(&steadyProbe, "probe", "speed", "recorded quantity: speed, yaw_rate, draft")
	cmd.Flags().Float64Var(&steadySettle, "settle", 40, "settling time, seconds")
	cmd.Flags().Float64Var(&steadyRecord, "record", 10, "recording window, seconds")
	return cmd
}

func runSteady(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	overrides, err := paramOverrides()
	if err != nil {
		return err
	}
	v, err := cfg.NewVessel()
	if err != nil {
		return err
	}
	for name, value := range overrides {
		if err := v.SetParam(name, value); err != nil {
			return err
		}
	}
	integ, err := registry.GetIntegrator(cfg.Sim.Integrator)
	if err != nil {
		return err
	}

	var probe func(x dynamo.State) float64
	switch steadyProbe {
	case "speed":
		probe = v.Speed
	case "yaw_rate":
		probe = v.YawRate
	case "draft":
		probe = v.Depth
	default:
		return fmt.Errorf("unknown probe: %s", steadyProbe)
	}

	hb := 0.0
	if cfg.Controller.Handbrake {
		hb = 1
	}
	points, err := analysis.SteadyStateSweep(v, integ, cfg.InitialState(v), analysis.SteadyState{
		Param:     steadyParam,
		From:      steadyMin,
		To:        steadyMax,
		Steps:     steadySteps,
		Control:   dynamo.Control{cfg.Controller.Throttle, cfg.Controller.Steering, hb},
		Probe:     probe,
		Dt:        cfg.Sim.Dt,
		Transient: steadySettle,
		Record:    steadyRecord,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN\tMIN\tMAX\n", strings.ToUpper(steadyParam))
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			viz.FormatValue(p.Param), viz.FormatValue(p.Mean), viz.FormatValue(p.Min), viz.FormatValue(p.Max))
	}
	return w.Flush()
}

func newTuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search vessel or hull parameters against a metric",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	simFlags(cmd)
	cmd.Flags().StringArrayVar(&tuneGrid, "grid", nil, "parameter grid, name=v1,v2,... (repeatable)")
	cmd.Flags().StringVar(&tuneMetric, "metric", "distance", "metric to optimise")
	cmd.Flags().BoolVar(&tuneMaximize, "maximize", false, "maximize instead of minimize")
	return cmd
}

func parseGrid(entries []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, entry := range entries {
		name, list, ok := strings.Cut(entry, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("bad grid %q, want name=v1,v2", entry)
		}
		var values []float64
		for _, raw := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %s: %w", name, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	if len(tuneGrid) == 0 {
		return fmt.Errorf("at least one --grid is required")
	}
	names, ranges, err := parseGrid(tuneGrid)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	overrides, err := paramOverrides()
	if err != nil {
		return err
	}

	g := optim.NewGridSearch(names, ranges)
	g.Maximize = tuneMaximize
	log.Info().Int("points", g.Size()).Str("metric", tuneMetric).Msg("tuning")

	build := func(p map[string]float64) (*experiment.Experiment, error) {
		c := *cfg
		merged := make(map[string]float64, len(overrides)+len(p))
		for k, v := range overrides {
			merged[k] = v
		}
		for k, v := range p {
			merged[k] = v
		}
		exp := experiment.New(&c)
		if err := exp.Setup(registry, merged); err != nil {
			return nil, err
		}
		return exp, nil
	}

	best, value, err := g.Search(cmd.Context(), build, tuneMetric)
	if err != nil {
		return err
	}

	r := report()
	fmt.Println(r.Panel(fmt.Sprintf("best %s = %s", tuneMetric, viz.FormatValue(value)), r.Metrics(best)))
	return nil
}

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	cmd.Flags().BoolVar(&scenarioSave, "save", true, "store steps that set save_as")
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if scenarioSave {
		s, closeStore, err := storeFromFlags()
		if err != nil {
			return err
		}
		defer closeStore()
		st = s
	}

	results, err := automation.RunScenario(cmd.Context(), sc, registry, st, log)
	if err != nil {
		return err
	}

	r := report()
	fmt.Println(r.Panel(sc.Name, r.Note(sc.Description)))
	for i, res := range results {
		title := fmt.Sprintf("%d. %s", i+1, res.Name)
		if res.Saved != nil {
			title += " → " + res.Saved.ID
		}
		fmt.Println(r.Panel(title, r.Metrics(res.Result.Metrics)))
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "show or write configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(out)
			return err
		},
	}
	show.Flags().StringVar(&preset, "preset", config.DefaultPreset, "vessel preset")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "write a preset as a config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := registry.GetPreset(preset)
			if err != nil {
				return err
			}
			if err := config.Save(configOutPath, cfg); err != nil {
				return err
			}
			log.Info().Str("path", configOutPath).Str("preset", preset).Msg("config written")
			return nil
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", config.DefaultPreset, "vessel preset")
	initCmd.Flags().StringVarP(&configOutPath, "out", "o", "boatsim.yaml", "output path")

	cmd.AddCommand(show, initCmd)
	return cmd
}
