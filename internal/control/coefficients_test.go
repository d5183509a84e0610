package control_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/multierr"

	"github.com/san-kum/fixpid/internal/control"
	"github.com/san-kum/fixpid/internal/fixed"
)

var _ = Describe("Derive", func() {
	It("computes the runtime coefficients", func() {
		k, err := control.Derive(motorGains)
		Expect(err).NotTo(HaveOccurred())

		Expect(k.SampleTime).To(BeNumerically("~", 0.02, 1e-15))
		Expect(k.IntCoeff).To(BeNumerically("~", 0.032904, 1e-12))
		Expect(k.DerCoeff1).To(BeZero())
		Expect(k.DerCoeff2).To(BeNumerically("~", 1.0/3.0, 1e-12))
	})

	It("reports every invalid field", func() {
		g := motorGains
		g.SampleFreq = 0
		g.OutputMin = 20

		_, err := control.Derive(g)

		Expect(err).To(MatchError(control.ErrInvalidGains))
		Expect(multierr.Errors(err)).To(HaveLen(2))
	})

	It("rejects non-finite gains", func() {
		g := motorGains
		g.Kp = math.NaN()

		_, err := control.NewConfig(g)
		Expect(err).To(MatchError(control.ErrInvalidGains))
	})

	It("keeps the gains it was built from", func() {
		cfg := mustConfig(motorGains)
		Expect(cfg.Gains()).To(Equal(motorGains))
		Expect(cfg.SampleTime()).To(Equal(cfg.Coefficients().SampleTime))
	})
})

var _ = Describe("ToIncremental", func() {
	It("converts parallel gains to velocity form", func() {
		inc, err := control.ToIncremental(0.1, 2, 1, 0.5)
		Expect(err).NotTo(HaveOccurred())

		Expect(inc.Ti).To(BeNumerically("~", 2, 1e-12))
		Expect(inc.Td).To(BeNumerically("~", 0.25, 1e-12))
		Expect(inc.Q0).To(BeNumerically("~", 7, 1e-12))
		Expect(inc.Q1).To(BeNumerically("~", -11.9, 1e-12))
		Expect(inc.Q2).To(BeNumerically("~", 5, 1e-12))
	})

	It("rejects a zero integral gain", func() {
		_, err := control.ToIncremental(0.1, 2, 0, 0.5)
		Expect(err).To(MatchError(control.ErrInvalidGains))
	})
})

var _ = Describe("HardwareConstants", func() {
	It("folds the gains into Q16 and Q8 words", func() {
		consts, err := control.HardwareConstants(motorGains, control.Datapath{
			ClockFreq: 50e6, TicksPerRev: 5462.22, SatVoltage: 12,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(consts).To(HaveLen(9))

		byName := map[string]control.HardwareConstant{}
		for _, c := range consts {
			byName[c.Name] = c
		}

		Expect(byName["K_p1"].Word).To(Equal(fixed.Fixed(0x439)))
		Expect(byName["K_i1"].Word).To(Equal(fixed.Fixed(2156)))
		Expect(byName["K_d1"].Word).To(BeZero())
		Expect(byName["K_d3"].Word).To(Equal(fixed.Fixed(21845)))
		Expect(byName["voltageOffset"].Word).To(Equal(fixed.Fixed(36 << 16)))
		Expect(byName["voltageCoeff"].Format).To(Equal(fixed.Q8))
		Expect(byName["voltageCoeff"].Word).To(Equal(fixed.Fixed(533333)))
		Expect(byName["K_p2"].Line()).To(HavePrefix("wire signed [W-1:0] K_p2 = 32'h0000_0439;"))
		Expect(byName["tickCoeff"].Line()).To(HavePrefix("wire signed [31:0] tickCoeff = "))
	})
})
