package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/boatsim/internal/boat"
	"github.com/san-kum/boatsim/internal/dynamo"
	"github.com/san-kum/boatsim/internal/integrators"
	"github.com/san-kum/boatsim/internal/physics"
)

func TestPowerSpectrumLength(t *testing.T) {
	if got := len(PowerSpectrum(make([]float64, 8))); got != 5 {
		t.Errorf("len = %d, want 5", got)
	}
	if PowerSpectrum(nil) != nil {
		t.Error("empty input should give nil")
	}
}

func TestDominantFrequency(t *testing.T) {
	dt := 0.01
	data := make([]float64, 500)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*2*float64(i)*dt)
	}

	f, err := DominantFrequency(data, dt)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f-2) > 1e-9 {
		t.Errorf("dominant frequency = %f Hz, want 2", f)
	}

	if _, err := DominantFrequency(data[:3], dt); err == nil {
		t.Error("expected error for too few samples")
	}
}

func circleTrack(radius float64, degrees int) *Track {
	tr := &Track{}
	for d := 0; d <= degrees; d++ {
		a := float64(d) * math.Pi / 180
		tr.Times = append(tr.Times, float64(d))
		tr.X = append(tr.X, radius*math.Sin(a))
		tr.Y = append(tr.Y, radius*(1-math.Cos(a)))
		tr.Headings = append(tr.Headings, a)
		tr.Speeds = append(tr.Speeds, 1)
	}
	return tr
}

func TestTurningDiameter(t *testing.T) {
	d, err := TurningDiameter(circleTrack(10, 400))
	if err != nil {
		t.Fatal(err)
	}
	// sampled once per degree, so the pair may be a degree off opposite
	if math.Abs(d-20) > 1e-2 {
		t.Errorf("diameter = %f, want 20", d)
	}

	if _, err := TurningDiameter(circleTrack(10, 200)); !errors.Is(err, ErrNoFullTurn) {
		t.Errorf("short turn: got %v, want ErrNoFullTurn", err)
	}
}

func TestStoppingDistance(t *testing.T) {
	tr := &Track{
		Times:  []float64{0, 1, 2, 3},
		X:      []float64{0, 3, 5, 6},
		Y:      []float64{0, 0, 0, 0},
		Speeds: []float64{3, 2, 0.05, 0},
	}
	d, dur, err := StoppingDistance(tr, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if d != 5 || dur != 2 {
		t.Errorf("got distance %f in %f s, want 5 in 2 s", d, dur)
	}

	if _, _, err := StoppingDistance(tr, -1); !errors.Is(err, ErrNeverStops) {
		t.Errorf("got %v, want ErrNeverStops", err)
	}
}

// spinner heads along x[0] radians, wrapped to (-π, π].
type spinner struct{}

func (spinner) Position(x dynamo.State) mgl64.Vec3 { return mgl64.Vec3{} }
func (spinner) Heading(x dynamo.State) float64     { return math.Remainder(x[0], 2*math.Pi) }
func (spinner) Speed(x dynamo.State) float64       { return 0 }

func TestNewTrack_UnwrapsHeading(t *testing.T) {
	r := &dynamo.Result{}
	for i := 0; i <= 40; i++ {
		r.States = append(r.States, dynamo.State{float64(i) * 0.25})
		r.Times = append(r.Times, float64(i))
	}

	tr := NewTrack(spinner{}, r)
	if got := tr.Headings[tr.Len()-1]; math.Abs(got-10) > 1e-9 {
		t.Errorf("final unwrapped heading = %f, want 10", got)
	}
}

func TestTrackToASCII(t *testing.T) {
	out := TrackToASCII(circleTrack(5, 180), 20, 10)
	if !strings.Contains(out, "S") || !strings.Contains(out, "E") {
		t.Errorf("plot should mark start and end:\n%s", out)
	}
	if TrackToASCII(nil, 20, 10) != "" {
		t.Error("nil track should render empty")
	}
}

func TestSteadyStateSweep_TerminalSpeed(t *testing.T) {
	v := physics.NewVessel(physics.DefaultHull(), boat.New())
	x0 := v.InitialState(0, 0, 0, 0)

	points, err := SteadyStateSweep(v, integrators.NewRK4(), x0, SteadyState{
		Param:     "max_forward_thrust",
		From:      10000,
		To:        25000,
		Steps:     2,
		Control:   dynamo.Control{1, 0, 0},
		Probe:     v.Speed,
		Dt:        0.02,
		Transient: 30,
		Record:    2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}

	c := boat.DefaultCoefficients()
	lin, quad := c.LinearWaterDragCoefficient, c.QuadraticWaterDragCoefficient
	for _, p := range points {
		want := (-lin + math.Sqrt(lin*lin+4*quad*p.Param)) / (2 * quad)
		if math.Abs(p.Mean-want) > 1e-2 {
			t.Errorf("thrust %.0f: speed %f, want %f", p.Param, p.Mean, want)
		}
	}

	if v.Model.MaxForwardThrust != c.MaxForwardThrust {
		t.Errorf("parameter not restored: %f", v.Model.MaxForwardThrust)
	}
}

func TestSteadyStateSweep_UnknownParam(t *testing.T) {
	v := physics.NewVessel(physics.DefaultHull(), boat.New())
	_, err := SteadyStateSweep(v, integrators.NewRK4(), v.InitialState(0, 0, 0, 0), SteadyState{
		Param: "keel", Dt: 0.1, Record: 1, Probe: v.Speed,
	})
	if !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("got %v, want ErrUnknownParam", err)
	}
}
