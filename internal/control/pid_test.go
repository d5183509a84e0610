package control_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fixpid/internal/control"
)

var motorGains = control.Gains{
	Kp: 0.0165, Ki: 1.6452, Kd: 0,
	B: 1, C: 1, N: 100,
	SampleFreq: 50,
	OutputMin:  -12, OutputMax: 12,
}

func mustConfig(g control.Gains) *control.Config {
	cfg, err := control.NewConfig(g)
	Expect(err).NotTo(HaveOccurred())
	return cfg
}

var _ = Describe("Step", func() {
	var cfg *control.Config

	BeforeEach(func() {
		cfg = mustConfig(motorGains)
	})

	It("is deterministic for identical inputs", func() {
		s := control.State{Integrator: 1.5, Differentiator: -0.25, PrevError: 3}

		out1, next1 := control.Step(s, cfg, 100, 42)
		out2, next2 := control.Step(s, cfg, 100, 42)

		Expect(out1).To(Equal(out2))
		Expect(next1).To(Equal(next2))
	})

	It("returns zero and the same state without a config", func() {
		s := control.State{Integrator: 7, Differentiator: 1, PrevError: 2}

		out, next := control.Step(s, nil, 100, 0)

		Expect(out).To(BeZero())
		Expect(next).To(Equal(s))
	})

	It("weights the setpoint in the proportional path", func() {
		cfg := mustConfig(control.Gains{Kp: 2, B: 0.5, C: 1, SampleFreq: 10, OutputMin: -100, OutputMax: 100})

		t, _ := control.StepTerms(control.State{}, cfg, 4, 1)

		Expect(t.P).To(BeNumerically("~", 2, 1e-12))
		Expect(t.I).To(BeZero())
	})

	It("filters the derivative of the weighted error", func() {
		cfg := mustConfig(control.Gains{Kd: 1, N: 10, B: 1, C: 1, SampleFreq: 10, OutputMin: -100, OutputMax: 100})
		Expect(cfg.Coefficients().DerCoeff1).To(BeNumerically("~", 10, 1e-12))
		Expect(cfg.Coefficients().DerCoeff2).To(BeNumerically("~", 0.5, 1e-12))

		t, s := control.StepTerms(control.State{}, cfg, 1, 0)
		Expect(t.D).To(BeNumerically("~", 5, 1e-12))
		Expect(s.PrevError).To(BeNumerically("~", 1, 1e-12))

		t, _ = control.StepTerms(s, cfg, 1, 0)
		Expect(t.D).To(BeNumerically("~", 2.5, 1e-12))
	})

	It("uses an independent setpoint weight for the derivative path", func() {
		cfg := mustConfig(control.Gains{Kd: 1, N: 10, B: 1, C: 0, SampleFreq: 10, OutputMin: -100, OutputMax: 100})

		t, s := control.StepTerms(control.State{}, cfg, 1, 0)

		Expect(t.D).To(BeZero())
		Expect(s.PrevError).To(BeZero())
	})

	DescribeTable("clamps the output to the saturation bounds",
		func(setpoint, feedback, want float64) {
			cfg := mustConfig(control.Gains{Kp: 10, B: 1, C: 1, SampleFreq: 50, OutputMin: -12, OutputMax: 12})

			t, _ := control.StepTerms(control.State{}, cfg, setpoint, feedback)

			Expect(t.Output).To(Equal(want))
			Expect(t.Saturated()).To(Equal(t.Raw != want))
		},
		Entry("above the maximum", 100.0, 0.0, 12.0),
		Entry("below the minimum", 0.0, 100.0, -12.0),
		Entry("inside the range", 1.0, 0.5, 5.0),
	)

	DescribeTable("skips non-finite samples without touching the state",
		func(setpoint, feedback float64) {
			s := control.State{Integrator: 3, Differentiator: 0.5, PrevError: 1}

			out, next := control.Step(s, cfg, setpoint, feedback)
			Expect(out).To(BeZero())
			Expect(next).To(Equal(s))

			out, _ = control.Step(next, cfg, 100, 0)
			Expect(math.IsNaN(out)).To(BeFalse())
			Expect(out).To(BeNumerically("<=", cfg.OutputMax()))
		},
		Entry("infinite setpoint", math.Inf(1), 0.0),
		Entry("NaN setpoint", math.NaN(), 0.0),
		Entry("negative infinite feedback", 100.0, math.Inf(-1)),
		Entry("NaN feedback", 100.0, math.NaN()),
	)

	It("follows the integrator recurrence", func() {
		const setpoint = 10.0
		feedback := []float64{0, 2, 5, 7, 9, 11, 10.5}
		ic := cfg.Coefficients().IntCoeff

		s := control.State{}
		want := 0.0
		for _, fb := range feedback {
			want = ic*(setpoint-fb) + want
			_, s = control.Step(s, cfg, setpoint, fb)
			Expect(s.Integrator).To(BeNumerically("~", want, 1e-12))
		}
	})

	It("keeps integrating while the output is saturated", func() {
		s := control.State{}
		var out float64
		for i := 0; i < 200; i++ {
			out, s = control.Step(s, cfg, 1000, 0)
		}

		Expect(out).To(Equal(cfg.OutputMax()))
		Expect(s.Integrator).To(BeNumerically(">", 10*cfg.OutputMax()))
	})
})

var _ = Describe("PID", func() {
	It("requires a config and channels", func() {
		_, err := control.New(nil, control.NewChannels())
		Expect(err).To(MatchError(control.ErrNilController))

		_, err = control.New(mustConfig(motorGains), nil)
		Expect(err).To(MatchError(control.ErrNilController))
	})

	It("returns zero from a nil handle", func() {
		var p *control.PID

		out, err := p.Step()

		Expect(out).To(BeZero())
		Expect(err).To(MatchError(control.ErrNilController))
	})

	It("reads the channels and publishes the output", func() {
		cfg := mustConfig(motorGains)
		io := control.NewChannels()
		p, err := control.New(cfg, io)
		Expect(err).NotTo(HaveOccurred())

		io.Setpoint.Store(100)
		io.Feedback.Store(20)

		out, err := p.Step()
		Expect(err).NotTo(HaveOccurred())

		want, next := control.Step(control.State{}, cfg, 100, 20)
		Expect(out).To(Equal(want))
		Expect(io.Output.Load()).To(Equal(want))
		Expect(p.State()).To(Equal(next))
		Expect(p.Terms().Output).To(Equal(want))
	})

	It("rejects a non-finite sample and keeps the previous output", func() {
		cfg := mustConfig(motorGains)
		io := control.NewChannels()
		p, err := control.New(cfg, io)
		Expect(err).NotTo(HaveOccurred())

		io.Setpoint.Store(100)
		io.Feedback.Store(20)
		first, err := p.Step()
		Expect(err).NotTo(HaveOccurred())
		state := p.State()

		io.Feedback.Store(math.Inf(1))
		out, err := p.Step()
		Expect(err).To(MatchError(control.ErrInvalidSample))
		Expect(out).To(BeZero())
		Expect(p.State()).To(Equal(state))
		Expect(io.Output.Load()).To(Equal(first))
	})

	It("starts from a zero state", func() {
		p, err := control.New(mustConfig(motorGains), control.NewChannels())
		Expect(err).NotTo(HaveOccurred())
		Expect(p.State()).To(Equal(control.State{}))
	})
})
