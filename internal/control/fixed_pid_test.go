package control_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fixpid/internal/control"
	"github.com/san-kum/fixpid/internal/fixed"
)

var _ = Describe("FixedPID", func() {
	var (
		cfg  *control.Config
		fcfg *control.FixedConfig
	)

	BeforeEach(func() {
		var err error
		cfg = mustConfig(motorGains)
		fcfg, err = control.NewFixedConfig(cfg, fixed.Q14)
		Expect(err).NotTo(HaveOccurred())
	})

	It("tracks the floating-point controller", func() {
		io := control.NewChannels()
		p, err := control.NewFixed(fcfg, io)
		Expect(err).NotTo(HaveOccurred())

		io.Setpoint.Store(100)
		s := control.State{}
		for _, fb := range []float64{0, 10, 40, 80, 95, 101, 99} {
			io.Feedback.Store(fb)

			got, err := p.Step()
			Expect(err).NotTo(HaveOccurred())

			var want float64
			want, s = control.Step(s, cfg, 100, fb)
			Expect(got).To(BeNumerically("~", want, 0.05))
			Expect(io.Output.Load()).To(Equal(got))
		}
		Expect(p.State().Float(fixed.Q14).Integrator).To(BeNumerically("~", s.Integrator, 0.05))
	})

	It("reports overflow without updating state or output", func() {
		big := mustConfig(control.Gains{Kp: 1000, B: 1, C: 1, SampleFreq: 50, OutputMin: -12, OutputMax: 12})
		fbig, err := control.NewFixedConfig(big, fixed.Q14)
		Expect(err).NotTo(HaveOccurred())

		io := control.NewChannels()
		io.Output.Store(42)
		io.Setpoint.Store(100000)
		p, err := control.NewFixed(fbig, io)
		Expect(err).NotTo(HaveOccurred())

		out, err := p.Step()

		Expect(out).To(BeZero())
		Expect(errors.Is(err, fixed.ErrOverflow)).To(BeTrue())
		var te *control.TermError
		Expect(errors.As(err, &te)).To(BeTrue())
		Expect(te.Term).To(Equal(control.TermProportional))
		Expect(p.State()).To(Equal(control.FixedState{}))
		Expect(io.Output.Load()).To(Equal(42.0))
	})

	It("rejects samples outside the format", func() {
		io := control.NewChannels()
		io.Feedback.Store(1e9)
		p, err := control.NewFixed(fcfg, io)
		Expect(err).NotTo(HaveOccurred())

		_, err = p.Step()

		Expect(err).To(MatchError(control.ErrUnrepresentable))
		var te *control.TermError
		Expect(errors.As(err, &te)).To(BeTrue())
		Expect(te.Term).To(Equal(control.TermFeedback))
	})

	It("rejects coefficients outside the format", func() {
		g := motorGains
		g.Kp = 1e6

		_, err := control.NewFixedConfig(mustConfig(g), fixed.Q14)
		Expect(err).To(MatchError(control.ErrUnrepresentable))
	})

	It("returns zero from a nil handle", func() {
		var p *control.FixedPID
		out, err := p.Step()
		Expect(out).To(BeZero())
		Expect(err).To(MatchError(control.ErrNilController))
	})

	It("clamps in fixed point", func() {
		sp, _ := fixed.Q14.FromFloat(100000)
		out, _, err := control.StepFixed(control.FixedState{}, fcfg, sp, 0)
		Expect(err).NotTo(HaveOccurred())
		max, _ := fixed.Q14.FromFloat(12)
		Expect(out).To(Equal(max))
	})
})
