package sensitivity_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kinsens/internal/kinerr"
	"github.com/san-kum/kinsens/internal/kinetics"
	"github.com/san-kum/kinsens/internal/mechanism"
	"github.com/san-kum/kinsens/internal/mechanism/mechtest"
	"github.com/san-kum/kinsens/internal/reactor"
	"github.com/san-kum/kinsens/internal/sensitivity"
)

func solutionOf(src string) *kinetics.Solution {
	m, err := mechanism.Parse([]byte(src), "test")
	Expect(err).NotTo(HaveOccurred())
	sol, err := kinetics.FromMechanism(m)
	Expect(err).NotTo(HaveOccurred())
	return sol
}

// rateOf observes the pre-exponential factor of reaction i.
func rateOf(i int) sensitivity.Observable {
	return func(sol *kinetics.Solution) (float64, error) {
		r, err := sol.Reaction(i)
		if err != nil {
			return 0, err
		}
		return r.Rate.A, nil
	}
}

var _ = Describe("SingleReaction", func() {
	var sol *kinetics.Solution

	BeforeEach(func() {
		sol = solutionOf(mechtest.ThreeReactions)
	})

	It("is one for an observable proportional to the perturbed rate", func() {
		s, err := sensitivity.SingleReaction(sol, 1, rateOf(1), 0.01)
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeNumerically("~", 1.0, 1e-9))
	})

	It("is zero for an observable of another reaction", func() {
		s, err := sensitivity.SingleReaction(sol, 1, rateOf(0), 0.01)
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(0.0))
	})

	It("is exactly zero for a constant observable", func() {
		constant := func(*kinetics.Solution) (float64, error) { return 3.5, nil }
		s, err := sensitivity.SingleReaction(sol, 2, constant, 0.01)
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(0.0))
	})

	It("accepts negative perturbations", func() {
		s, err := sensitivity.SingleReaction(sol, 0, rateOf(0), -0.05)
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeNumerically("~", 1.0, 1e-9))
	})

	DescribeTable("rejects out-of-range indices without evaluating f",
		func(idx int) {
			calls := 0
			f := func(*kinetics.Solution) (float64, error) {
				calls++
				return 1, nil
			}
			_, err := sensitivity.SingleReaction(sol, idx, f, 0.01)
			Expect(errors.Is(err, kinerr.ErrIndex)).To(BeTrue())
			Expect(calls).To(BeZero())
		},
		Entry("negative", -1),
		Entry("one past the end", 3),
		Entry("far past the end", 100),
	)

	DescribeTable("rejects unusable perturbations",
		func(dk float64) {
			calls := 0
			f := func(*kinetics.Solution) (float64, error) {
				calls++
				return 1, nil
			}
			_, err := sensitivity.SingleReaction(sol, 0, f, dk)
			Expect(kinerr.IsKind(err, kinerr.KindValue)).To(BeTrue())
			Expect(calls).To(BeZero())
		},
		Entry("zero", 0.0),
		Entry("NaN", math.NaN()),
		Entry("infinite", math.Inf(1)),
	)

	It("stays exactly zero for a constant observable under a tiny perturbation", func() {
		tiny := func(*kinetics.Solution) (float64, error) { return 1e-30, nil }
		s, err := sensitivity.SingleReaction(sol, 0, tiny, 1e-300)
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(0.0))
	})

	It("rejects a coefficient that overflows", func() {
		calls := 0
		f := func(*kinetics.Solution) (float64, error) {
			calls++
			if calls == 1 {
				return 1e-5, nil
			}
			return 1e300, nil
		}
		s, err := sensitivity.SingleReaction(sol, 2, f, 1e-5)
		Expect(s).To(Equal(0.0))

		var ke *kinerr.Error
		Expect(errors.As(err, &ke)).To(BeTrue())
		Expect(ke.Kind).To(Equal(kinerr.KindValue))
		Expect(ke.Index).NotTo(BeNil())
		Expect(*ke.Index).To(Equal(2))
	})

	It("checks the index before the perturbation", func() {
		_, err := sensitivity.SingleReaction(sol, 7, rateOf(0), 0)
		Expect(kinerr.KindOf(err)).To(Equal(kinerr.KindIndex))
	})

	It("refuses to normalize by a zero baseline", func() {
		zero := func(*kinetics.Solution) (float64, error) { return 0, nil }
		_, err := sensitivity.SingleReaction(sol, 0, zero, 0.01)
		Expect(errors.Is(err, kinerr.ErrDivisionByZero)).To(BeTrue())
	})

	It("reports a baseline failure", func() {
		boom := errors.New("boom")
		calls := 0
		f := func(*kinetics.Solution) (float64, error) {
			calls++
			return 0, boom
		}
		_, err := sensitivity.SingleReaction(sol, 0, f, 0.01)

		var ke *kinerr.Error
		Expect(errors.As(err, &ke)).To(BeTrue())
		Expect(ke.Kind).To(Equal(kinerr.KindObservable))
		Expect(ke.Phase).To(Equal(kinerr.PhaseBaseline))
		Expect(errors.Is(err, boom)).To(BeTrue())
		Expect(calls).To(Equal(1))
	})

	It("reports a perturbed failure", func() {
		calls := 0
		f := func(*kinetics.Solution) (float64, error) {
			calls++
			if calls == 2 {
				return 0, errors.New("solver diverged")
			}
			return 1, nil
		}
		_, err := sensitivity.SingleReaction(sol, 0, f, 0.01)

		var ke *kinerr.Error
		Expect(errors.As(err, &ke)).To(BeTrue())
		Expect(ke.Kind).To(Equal(kinerr.KindObservable))
		Expect(ke.Phase).To(Equal(kinerr.PhasePerturbed))
		Expect(err.Error()).To(ContainSubstring("solver diverged"))
	})

	It("treats a non-finite observable as a failure", func() {
		nan := func(*kinetics.Solution) (float64, error) { return math.NaN(), nil }
		_, err := sensitivity.SingleReaction(sol, 0, nan, 0.01)
		Expect(kinerr.IsKind(err, kinerr.KindObservable)).To(BeTrue())
	})

	It("leaves the baseline solution untouched", func() {
		before := sol.Reactions()
		_, err := sensitivity.SingleReaction(sol, 1, rateOf(1), 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Reactions()).To(Equal(before))
	})
})

var _ = Describe("Compute", func() {
	It("reports the values behind the coefficient", func() {
		sol := solutionOf(mechtest.ThreeReactions)
		res, err := sensitivity.Compute(sol, 1, rateOf(1))
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Index).To(Equal(1))
		Expect(res.Equation).To(Equal("O + H2 <=> H + OH"))
		Expect(res.Dk).To(Equal(sensitivity.DefaultPerturbation))
		Expect(res.F0).To(Equal(res.K0))
		Expect(res.F1).To(BeNumerically("~", res.K0*1.01, 1e-12))
		Expect(res.Coefficient).To(BeNumerically("~", 1.0, 1e-9))
	})

	It("matches the analytic sensitivity of first-order decay", func() {
		sol := solutionOf(mechtest.Decay)
		cond := reactor.DefaultConditions()
		cond.Temperature = 300
		cond.Composition = map[string]float64{"A": 1}
		cond.Duration = 1
		cond.Dt = 1e-3
		cond.Tolerance = 1e-10

		res, err := sensitivity.Compute(sol, 0, reactor.FinalMoleFraction("A", cond), sensitivity.WithPerturbation(0.01))
		Expect(err).NotTo(HaveOccurred())

		want := (math.Exp(-0.01) - 1) / 0.01
		Expect(res.F0).To(BeNumerically("~", math.Exp(-1), 1e-7))
		Expect(res.Coefficient).To(BeNumerically("~", want, 1e-4))
	})
})
