package vehicle_test

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/boatsim/internal/boat"
	"github.com/san-kum/boatsim/internal/rigid"
	"github.com/san-kum/boatsim/internal/units"
	"github.com/san-kum/boatsim/internal/vehicle"
)

var _ = Describe("Adapter", func() {
	var (
		pilot   *fakePilot
		adapter *vehicle.Adapter
		clock   time.Time
	)

	BeforeEach(func() {
		pilot = &fakePilot{}
		clock = time.Unix(1700000000, 250)
		adapter = vehicle.NewAdapter(pilot, vehicle.WithClock(func() time.Time { return clock }))
	})

	Describe("SetControls", func() {
		It("forwards throttle minus brake", func() {
			adapter.SetControls(vehicle.Controls{Throttle: 0.8, Brake: 0.3, Steering: -0.4})
			Expect(pilot.throttle).To(BeNumerically("~", 0.5, 1e-12))
			Expect(pilot.steering).To(Equal(-0.4))
			Expect(pilot.handbrake).To(BeFalse())
		})

		It("forwards the handbrake both ways", func() {
			adapter.SetControls(vehicle.Controls{Handbrake: true})
			Expect(pilot.handbrake).To(BeTrue())
			adapter.SetControls(vehicle.Controls{Handbrake: false})
			Expect(pilot.handbrake).To(BeFalse())
		})

		It("stores the record verbatim", func() {
			c := vehicle.Controls{Throttle: 2, Brake: 0.1, IsManualGear: true, ManualGear: 3}
			adapter.SetControls(c)
			Expect(adapter.Controls()).To(Equal(c))
		})

		It("stores controls without a pilot", func() {
			a := vehicle.NewAdapter(nil)
			a.SetControls(vehicle.Controls{Throttle: 1})
			Expect(a.Controls().Throttle).To(Equal(1.0))
			Expect(a.State().Speed).To(BeZero())
		})
	})

	Describe("State", func() {
		DescribeTable("gear follows the sign of the effective throttle",
			func(throttle, brake float64, gear int) {
				adapter.SetControls(vehicle.Controls{Throttle: throttle, Brake: brake})
				Expect(adapter.State().Gear).To(Equal(gear))
			},
			Entry("ahead", 0.5, 0.0, 1),
			Entry("idle", 0.0, 0.0, 1),
			Entry("balanced", 0.4, 0.4, 1),
			Entry("astern", 0.2, 0.6, -1),
		)

		It("reports the pilot's forward speed", func() {
			pilot.speed = 4.2
			Expect(adapter.State().Speed).To(Equal(4.2))
		})

		It("converts host units to m/s", func() {
			pilot.speed = 350
			a := vehicle.NewAdapter(pilot, vehicle.WithSpeedUnit(units.Centimeters))
			Expect(a.State().Speed).To(BeNumerically("~", 3.5, 1e-12))
		})

		It("stamps the injected clock in nanoseconds", func() {
			Expect(adapter.State().Timestamp).To(Equal(uint64(1700000000*1e9 + 250)))
		})

		It("never carries RC data", func() {
			Expect(adapter.State().RCData).To(Equal(vehicle.RCData{}))
		})
	})

	Describe("stub surface", func() {
		It("has no effect on the pilot", func() {
			adapter.EnableAPIControl(false)
			adapter.Reset()
			adapter.SetRCData(vehicle.RCData{Throttle: 1, IsValid: true})
			Expect(adapter.IsAPIControlEnabled()).To(BeTrue())
			Expect(pilot.calls).To(BeZero())
		})
	})

	It("drives a real boat model", func() {
		body := rigid.New(1000, mgl64.Vec3{1, 1, 1})
		body.Velocity[0] = 3
		model := boat.New()
		model.Bind(body.Handle())

		a := vehicle.NewAdapter(model)
		a.SetControls(vehicle.Controls{Throttle: 1, Brake: 1.5, Steering: 2, Handbrake: true})

		Expect(model.Throttle()).To(Equal(-0.5))
		Expect(model.Steering()).To(Equal(1.0))
		Expect(model.Handbrake()).To(BeTrue())

		s := a.State()
		Expect(s.Speed).To(BeNumerically("~", 3, 1e-12))
		Expect(s.Gear).To(Equal(-1))
	})
})
