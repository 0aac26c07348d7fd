package reactor_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kinsens/internal/kinerr"
	"github.com/san-kum/kinsens/internal/kinetics"
	"github.com/san-kum/kinsens/internal/mechanism"
	"github.com/san-kum/kinsens/internal/mechanism/mechtest"
	"github.com/san-kum/kinsens/internal/metrics"
	"github.com/san-kum/kinsens/internal/reactor"
)

func solutionOf(src string) *kinetics.Solution {
	m, err := mechanism.Parse([]byte(src), "test")
	Expect(err).NotTo(HaveOccurred())
	sol, err := kinetics.FromMechanism(m)
	Expect(err).NotTo(HaveOccurred())
	return sol
}

func unitConditions() reactor.Conditions {
	cond := reactor.DefaultConditions()
	cond.Temperature = 300
	cond.Composition = map[string]float64{"A": 1}
	cond.Duration = 1
	cond.Dt = 1e-3
	cond.Tolerance = 1e-9
	return cond
}

var _ = Describe("Conditions", func() {
	DescribeTable("rejects invalid values",
		func(mutate func(*reactor.Conditions)) {
			cond := unitConditions()
			mutate(&cond)
			err := cond.Validate()
			Expect(kinerr.IsKind(err, kinerr.KindValue)).To(BeTrue())
		},
		Entry("zero temperature", func(c *reactor.Conditions) { c.Temperature = 0 }),
		Entry("infinite pressure", func(c *reactor.Conditions) { c.Pressure = math.Inf(1) }),
		Entry("NaN duration", func(c *reactor.Conditions) { c.Duration = math.NaN() }),
		Entry("negative tolerance", func(c *reactor.Conditions) { c.Tolerance = -1 }),
		Entry("unknown integrator", func(c *reactor.Conditions) { c.Integrator = "leapfrog" }),
		Entry("negative fraction", func(c *reactor.Conditions) { c.Composition = map[string]float64{"A": -1} }),
		Entry("empty composition", func(c *reactor.Conditions) { c.Composition = nil }),
	)

	It("uses the ideal-gas total concentration", func() {
		cond := reactor.DefaultConditions()
		want := cond.Pressure / (mechanism.GasConstant * cond.Temperature)
		Expect(cond.TotalConcentration()).To(BeNumerically("~", want, 1e-12))
	})
})

var _ = Describe("Reactor", func() {
	It("normalizes the initial composition", func() {
		cond := unitConditions()
		cond.Composition = map[string]float64{"A": 2, "AR": 2}
		r, err := reactor.New(solutionOf(mechtest.Decay), cond)
		Expect(err).NotTo(HaveOccurred())

		x0 := r.InitialState()
		ctot := cond.TotalConcentration()
		Expect(x0[0]).To(BeNumerically("~", ctot/2, 1e-9))
		Expect(x0[1]).To(Equal(0.0))
		Expect(x0[2]).To(BeNumerically("~", ctot/2, 1e-9))
		Expect(r.SpeciesNames()).To(Equal([]string{"A", "B", "AR"}))
		Expect(r.Elements()).To(Equal([]string{"Ar", "X"}))
		Expect(r.ElementCounts("X")).To(Equal([]float64{1, 1, 0}))
	})

	It("rejects composition species missing from the solution", func() {
		cond := unitConditions()
		cond.Composition = map[string]float64{"Z": 1}
		_, err := reactor.New(solutionOf(mechtest.Decay), cond)
		Expect(kinerr.IsKind(err, kinerr.KindValue)).To(BeTrue())
	})

	It("follows first-order decay", func() {
		r, err := reactor.New(solutionOf(mechtest.Decay), unitConditions())
		Expect(err).NotTo(HaveOccurred())

		res, err := r.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Times[len(res.Times)-1]).To(BeNumerically("~", 1.0, 1e-12))

		x := metrics.MoleFractions(res.Final())
		Expect(x[0]).To(BeNumerically("~", math.Exp(-1), 1e-6))
		Expect(x[1]).To(BeNumerically("~", 1-math.Exp(-1), 1e-6))
	})

	It("conserves moles along a chain", func() {
		r, err := reactor.New(solutionOf(mechtest.Chain), unitConditions())
		Expect(err).NotTo(HaveOccurred())

		res, err := r.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		ctot := unitConditions().TotalConcentration()
		for _, x := range res.States {
			sum := x[0] + x[1] + x[2]
			Expect(sum).To(BeNumerically("~", ctot, 1e-6*ctot))
		}

		// analytic A->B->C with k1 = 2, k2 = 1
		final := metrics.MoleFractions(res.Final())
		wantB := 2 * (math.Exp(-1) - math.Exp(-2))
		Expect(final[0]).To(BeNumerically("~", math.Exp(-2), 1e-6))
		Expect(final[1]).To(BeNumerically("~", wantB, 1e-6))
	})

	It("converges at fourth order with fixed rk4 steps", func() {
		finalA := func(dt float64) float64 {
			cond := unitConditions()
			cond.Integrator = "rk4"
			cond.Tolerance = 0
			cond.Dt = dt
			r, err := reactor.New(solutionOf(mechtest.Decay), cond)
			Expect(err).NotTo(HaveOccurred())
			res, err := r.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			return metrics.MoleFractions(res.Final())[0]
		}

		coarse := math.Abs(finalA(0.1) - math.Exp(-1))
		fine := math.Abs(finalA(0.05) - math.Exp(-1))
		// halving the step cuts the error by about 2^4
		Expect(coarse / fine).To(BeNumerically("~", 16, 2))
	})

	It("stops when the context is cancelled", func() {
		r, err := reactor.New(solutionOf(mechtest.Decay), unitConditions())
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = r.Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("integrates a three-body mechanism at flame conditions", func() {
		cond := reactor.DefaultConditions()
		cond.Composition = map[string]float64{"H2": 2, "O2": 1, "H": 0.01, "OH": 0.01, "N2": 3.76}
		cond.Duration = 1e-5

		r, err := reactor.New(solutionOf(mechtest.ThreeReactions), cond)
		Expect(err).NotTo(HaveOccurred())

		res, err := r.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Final().IsValid()).To(BeTrue())
		for _, c := range res.Final() {
			Expect(c).To(BeNumerically(">=", -1e-9*cond.TotalConcentration()))
		}
	})
})

var _ = Describe("Observables", func() {
	var sol *kinetics.Solution

	BeforeEach(func() {
		sol = solutionOf(mechtest.Decay)
	})

	It("reports the final mole fraction", func() {
		v, err := reactor.FinalMoleFraction("A", unitConditions())(sol)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeNumerically("~", math.Exp(-1), 1e-6))
	})

	It("reports the peak mole fraction", func() {
		v, err := reactor.PeakMoleFraction("A", unitConditions())(sol)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeNumerically("~", 1.0, 1e-12))

		peakB, err := reactor.PeakMoleFraction("B", unitConditions())(solutionOf(mechtest.Chain))
		Expect(err).NotTo(HaveOccurred())
		// B peaks at t = ln 2 with x_B = 1/2
		Expect(peakB).To(BeNumerically("~", 0.5, 2e-3))
		Expect(peakB).To(BeNumerically("<=", 0.5+1e-6))
	})

	It("reports the consumption time", func() {
		v, err := reactor.ConsumptionTime("A", 0.5, unitConditions())(sol)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeNumerically("~", math.Ln2, 5e-3))
	})

	It("fails when consumption is not reached", func() {
		cond := unitConditions()
		cond.Duration = 0.1
		_, err := reactor.ConsumptionTime("A", 0.5, cond)(sol)
		Expect(err).To(MatchError(ContainSubstring("not below 0.5")))
	})

	It("rejects fractions outside (0, 1)", func() {
		_, err := reactor.ConsumptionTime("A", 1.5, unitConditions())(sol)
		Expect(kinerr.IsKind(err, kinerr.KindValue)).To(BeTrue())
	})

	It("rejects unknown species", func() {
		_, err := reactor.FinalMoleFraction("Q", unitConditions())(sol)
		Expect(kinerr.IsKind(err, kinerr.KindValue)).To(BeTrue())
	})

	It("profiles a species over time", func() {
		tr, err := reactor.Profile(context.Background(), sol, unitConditions(), "B")
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Times).To(HaveLen(len(tr.Fractions)))
		Expect(tr.Steps).To(Equal(len(tr.Times) - 1))
		Expect(tr.Fractions[0]).To(Equal(0.0))
		for i, t := range tr.Times {
			Expect(tr.Fractions[i]).To(BeNumerically("~", 1-math.Exp(-t), 1e-6))
		}

		Expect(tr.Drift).To(HaveKey("X"))
		Expect(tr.Drift).To(HaveKey("Ar"))
		Expect(tr.Drift["X"]).To(BeNumerically("<", 1e-9))
	})

	It("rejects profiling an unknown species", func() {
		_, err := reactor.Profile(context.Background(), sol, unitConditions(), "Q")
		Expect(kinerr.IsKind(err, kinerr.KindValue)).To(BeTrue())
	})
})
