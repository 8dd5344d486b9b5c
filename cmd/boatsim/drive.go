package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/boatsim/internal/dynamo"
	"github.com/san-kum/boatsim/internal/physics"
	"github.com/san-kum/boatsim/internal/vehicle"
	"github.com/spf13/cobra"
)

var (
	driveSteps   int
	driveMaxTime float64
)

func newDriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drive",
		Short: "drive a boat from JSON control records on stdin",
		Long: `drive reads one JSON control record per line from stdin, for example
  {"throttle": 1, "steering": 0.2, "brake": 0, "handbrake": false}
advances the boat --steps integration steps under it and answers with one JSON
vehicle state per line on stdout.`,
		Args: cobra.NoArgs,
		RunE: runDrive,
	}
	simFlags(cmd)
	cmd.Flags().IntVar(&driveSteps, "steps", 10, "integration steps per control record")
	cmd.Flags().Float64Var(&driveMaxTime, "max-time", 3600, "stop after this much simulated time")
	return cmd
}

// driver is the pilot of a drive session: every `every` steps it reports the
// current state for the previous record and reads the next one.
type driver struct {
	vessel  *physics.Vessel
	adapter *vehicle.Adapter
	in      *json.Decoder
	out     *json.Encoder
	every   int

	n    int
	done bool
	err  error
}

func (d *driver) Compute(x dynamo.State, t float64) dynamo.Control {
	if d.n%d.every == 0 {
		if d.n > 0 {
			d.report(x)
		}
		d.next()
	}
	d.n++

	m := d.vessel.Model
	hb := 0.0
	if m.Handbrake() {
		hb = 1
	}
	return dynamo.Control{m.Throttle(), m.Steering(), hb}
}

func (d *driver) report(x dynamo.State) {
	d.vessel.LoadState(x)
	if err := d.out.Encode(d.adapter.State()); err != nil {
		d.fail(err)
	}
}

func (d *driver) next() {
	if d.done {
		return
	}
	var c vehicle.Controls
	if err := d.in.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			d.done = true
			return
		}
		d.fail(fmt.Errorf("control record %d: %w", d.n/d.every+1, err))
		return
	}
	d.adapter.SetControls(c)
}

func (d *driver) fail(err error) {
	d.err = err
	d.done = true
}

func runDrive(cmd *cobra.Command, args []string) error {
	if driveSteps < 1 {
		return fmt.Errorf("--steps must be at least 1")
	}
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

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	d := &driver{
		vessel:  v,
		adapter: vehicle.NewAdapter(v.Model),
		in:      json.NewDecoder(os.Stdin),
		out:     json.NewEncoder(out),
		every:   driveSteps,
	}

	sim := dynamo.New(v, integ, d, dynamo.WithLogger(log))
	simCfg := cfg.DynamoConfig()
	simCfg.Duration = driveMaxTime

	err = sim.RunWithCallback(cmd.Context(), cfg.InitialState(v), simCfg, func(x dynamo.State, u dynamo.Control, t float64) bool {
		// an interactive driver waits for each answer
		if err := out.Flush(); err != nil {
			d.fail(err)
		}
		return !d.done
	})
	if err != nil {
		return err
	}
	return d.err
}
