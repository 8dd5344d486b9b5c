package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/san-kum/boatsim/internal/boat"
	"github.com/san-kum/boatsim/internal/dynamo"
	"github.com/san-kum/boatsim/internal/experiment"
	"github.com/san-kum/boatsim/internal/integrators"
	"github.com/san-kum/boatsim/internal/metrics"
	"github.com/san-kum/boatsim/internal/viz"
	"github.com/spf13/cobra"
)

var noSave bool

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	simFlags(cmd)
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	overrides, err := paramOverrides()
	if err != nil {
		return err
	}

	exp := experiment.New(cfg).WithLogger(log)
	if err := exp.Setup(registry, overrides); err != nil {
		return err
	}

	log.Info().
		Str("preset", cfg.Preset).
		Str("integrator", cfg.Sim.Integrator).
		Str("controller", cfg.Controller.Type).
		Float64("duration", cfg.Sim.Duration).
		Msg("running simulation")

	start := time.Now()
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID := "-"
	if !noSave {
		st, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		meta, err := st.Save(exp.Info(), result)
		if err != nil {
			return err
		}
		runID = meta.ID
	}

	r := report()
	final := result.Final()
	summary := r.Table([]viz.Row{
		{Key: "run id", Value: runID},
		{Key: "preset", Value: cfg.Preset},
		{Key: "integrator", Value: cfg.Sim.Integrator},
		{Key: "controller", Value: cfg.Controller.Type},
		{Key: "steps", Value: fmt.Sprint(result.StepsTaken)},
		{Key: "elapsed", Value: elapsed.Round(time.Microsecond).String()},
		{Key: "heading", Value: fmt.Sprintf("%.1f°", exp.Vessel.Heading(final)*180/math.Pi)},
		{Key: "speed", Value: fmt.Sprintf("%.2f m/s", exp.Vessel.Speed(final))},
	})
	fmt.Println(viz.Side(r.Panel("run", summary), r.Panel("metrics", r.Metrics(result.Metrics))))

	speeds := make([]float64, len(result.States))
	for i, x := range result.States {
		speeds[i] = exp.Vessel.Speed(x)
	}
	fmt.Println(r.Note("speed " + viz.Sparkline(speeds, 60)))

	if n := len(result.Controls); n > 0 {
		fmt.Println(r.Panel("forces at end", r.Table(stageRows(exp.Vessel.Breakdown(final, result.Controls[n-1])))))
	}

	for _, e := range result.Errors {
		fmt.Println(r.Status(false, e.Error()))
	}
	return nil
}

// stageRows lists each stage's force and torque magnitude.
func stageRows(b boat.Breakdown) []viz.Row {
	names := []string{"thrust", "rudder", "hydrodynamics", "buoyancy", "handbrake"}
	rows := make([]viz.Row, 0, len(names))
	for i, w := range b.Stages() {
		value := "inactive"
		if w.Active {
			value = fmt.Sprintf("%.1f N  %.1f N·m", w.Force.Len(), w.Torque.Len())
		}
		rows = append(rows, viz.Row{Key: names[i], Value: value})
	}
	return rows
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same run",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	simFlags(cmd)
	return cmd
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	overrides, err := paramOverrides()
	if err != nil {
		return err
	}

	type outcome struct {
		name    string
		result  *dynamo.Result
		elapsed time.Duration
		exp     *experiment.Experiment
	}
	outcomes := make([]outcome, 0, len(args))

	for _, name := range args {
		c := *cfg
		c.Sim.Integrator = name
		exp := experiment.New(&c).WithLogger(log)
		if err := exp.Setup(registry, overrides); err != nil {
			return err
		}
		exp.Simulator().AddMetric(metrics.NewEnergyDrift(exp.Vessel))
		start := time.Now()
		result, err := exp.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		outcomes = append(outcomes, outcome{name, result, time.Since(start), exp})
	}

	ref := outcomes[0]
	refPos := ref.exp.Vessel.Position(ref.result.Final())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "INTEGRATOR\tSTEPS\tTIME\tMAX SPEED\tDISTANCE\tENERGY DRIFT\tDRIFT VS %s\n", ref.name)
	for _, o := range outcomes {
		pos := o.exp.Vessel.Position(o.result.Final())
		fmt.Fprintf(w, "%s\t%d\t%v\t%.4f\t%.4f\t%.3e\t%.3e\n",
			o.name,
			o.result.StepsTaken,
			o.elapsed.Round(time.Microsecond),
			o.result.Metrics["max_speed"],
			o.result.Metrics["distance"],
			o.result.Metrics["energy_drift"],
			pos.Sub(refPos).Len(),
		)
	}
	return w.Flush()
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark integrators on a preset",
		Args:  cobra.NoArgs,
		RunE:  benchPreset,
	}
	cmd.Flags().StringVar(&preset, "preset", "runabout", "vessel preset")
	return cmd
}

func benchPreset(cmd *cobra.Command, args []string) error {
	durations := []float64{1.0, 10.0}
	dts := []float64{0.001, 0.01, 0.05}

	fmt.Printf("benchmarking %s\n\n", preset)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tDURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, integ := range integrators.Names() {
		for _, dur := range durations {
			for _, step := range dts {
				cfg, err := registry.GetPreset(preset)
				if err != nil {
					return err
				}
				cfg.Sim.Integrator = integ
				cfg.Sim.Duration = dur
				cfg.Sim.Dt = step
				cfg.Controller.Type = "manual"
				cfg.Controller.Throttle, cfg.Controller.Steering = 1, 0.5

				exp := experiment.New(cfg)
				if err := exp.Setup(registry, nil); err != nil {
					return err
				}

				start := time.Now()
				result, err := exp.Run(cmd.Context())
				if err != nil {
					return err
				}
				elapsed := time.Since(start)

				fmt.Fprintf(w, "%s\t%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
					integ, dur, step, result.StepsTaken, elapsed.Round(time.Microsecond),
					float64(result.StepsTaken)/elapsed.Seconds())
			}
		}
	}
	return w.Flush()
}
