package automation

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/san-kum/boatsim/internal/experiment"
	"github.com/san-kum/boatsim/internal/storage"
)

const harbourScenario = `
name: harbour
description: leave the slip, idle, then brake
steps:
  - preset: runabout
    duration: 6
    commands:
      - start: 0
        throttle: 1
      - start: 3
        throttle: 0
        handbrake: true
    save_as: departure
  - preset: jetski
    duration: 2
    dt: 0.02
    controller:
      type: autopilot
      target_speed: 5
    params:
      max_forward_thrust: 3000
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(harbourScenario))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "harbour" || len(sc.Steps) != 2 {
		t.Fatalf("scenario = %+v", sc)
	}
	if len(sc.Steps[0].Commands) != 2 || !sc.Steps[0].Commands[1].Handbrake {
		t.Errorf("commands = %+v", sc.Steps[0].Commands)
	}

	cfg, err := sc.Steps[0].Config(experiment.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Controller.Type != "schedule" || cfg.Sim.Duration != 6 {
		t.Errorf("resolved config = %+v", cfg)
	}

	if _, err := ParseScenario([]byte("name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(harbourScenario))
	if err != nil {
		t.Fatal(err)
	}

	store := storage.New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), store, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	first := results[0]
	if first.Name != "departure" || first.Saved == nil {
		t.Fatalf("first step = %+v", first)
	}
	if len(first.Result.States) != 601 {
		t.Errorf("expected 601 states, got %d", len(first.Result.States))
	}
	if u := first.Result.Controls[len(first.Result.Controls)-1]; u[0] != 0 || u[2] != 1 {
		t.Errorf("last control = %v, want the braking leg", u)
	}

	if results[1].Info.Params["max_forward_thrust"] != 3000 {
		t.Errorf("params = %v", results[1].Info.Params)
	}
	if results[1].Saved != nil {
		t.Error("step without save_as must not be stored")
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Preset != "departure" {
		t.Errorf("stored runs = %+v", runs)
	}
}

func TestRunScenario_UnknownPreset(t *testing.T) {
	sc := &Scenario{Name: "bad", Steps: []ScenarioStep{{Preset: "submarine"}}}
	if _, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), nil, zerolog.Nop()); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestSweepValues(t *testing.T) {
	got := Sweep{Min: 1, Max: 2, Steps: 5}.Values()
	want := []float64{1, 1.25, 1.5, 1.75, 2}
	if len(got) != len(want) {
		t.Fatalf("values = %v", got)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("values[%d] = %f, want %f", i, got[i], want[i])
		}
	}

	if got := (Sweep{Min: 3, Steps: 1}).Values(); len(got) != 1 || got[0] != 3 {
		t.Errorf("single value = %v", got)
	}
}

func TestRunSweep_RudderTorque(t *testing.T) {
	sw := Sweep{
		Preset:   "runabout",
		Param:    "rudder_torque",
		Min:      300,
		Max:      600,
		Steps:    2,
		Dt:       0.05,
		Duration: 20,
	}

	results, err := RunSweep(context.Background(), sw, experiment.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("value %f: %v", r.Value, r.Err)
		}
		if r.TopSpeed < 10 || r.TopSpeed > 11.5 {
			t.Errorf("value %f: top speed %f", r.Value, r.TopSpeed)
		}
		if !(r.StoppingDistance > 0) || !(r.StoppingTime > 0) {
			t.Errorf("value %f: stop %f m in %f s", r.Value, r.StoppingDistance, r.StoppingTime)
		}
	}

	if math.Abs(results[0].TopSpeed-results[1].TopSpeed) > 1e-9 {
		t.Error("rudder torque must not change straight-line speed")
	}
	if !(results[1].TurningDiameter < results[0].TurningDiameter) {
		t.Errorf("stronger rudder should turn tighter: %f vs %f", results[1].TurningDiameter, results[0].TurningDiameter)
	}
}

func TestRunSweep_UnknownParam(t *testing.T) {
	sw := Sweep{Param: "warp_factor", Min: 1, Max: 2, Steps: 2}
	if _, err := RunSweep(context.Background(), sw, experiment.NewRegistry()); err == nil {
		t.Error("expected error for unknown parameter")
	}
}
