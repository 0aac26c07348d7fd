package kinetics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kinsens/internal/kinerr"
	"github.com/san-kum/kinsens/internal/kinetics"
	"github.com/san-kum/kinsens/internal/mechanism"
	"github.com/san-kum/kinsens/internal/mechanism/mechtest"
)

var _ = Describe("Solution", func() {
	var sol *kinetics.Solution

	BeforeEach(func() {
		m, err := mechanism.Parse([]byte(mechtest.ThreeReactions), "three")
		Expect(err).NotTo(HaveOccurred())
		sol, err = kinetics.FromMechanism(m)
		Expect(err).NotTo(HaveOccurred())
	})

	It("indexes species by name", func() {
		i, ok := sol.SpeciesIndex("OH")
		Expect(ok).To(BeTrue())
		Expect(i).To(Equal(4))
		_, ok = sol.SpeciesIndex("oh")
		Expect(ok).To(BeFalse())
	})

	It("scales one pre-exponential factor on a copy", func() {
		before, err := sol.Reaction(1)
		Expect(err).NotTo(HaveOccurred())

		scaled, err := sol.WithScaledRate(1, 1.01)
		Expect(err).NotTo(HaveOccurred())

		r, _ := scaled.Reaction(1)
		Expect(r.Rate.A).To(BeNumerically("~", before.Rate.A*1.01, 1e-12))
		Expect(r.Rate.B).To(Equal(before.Rate.B))
		Expect(r.Rate.Ea).To(Equal(before.Rate.Ea))

		after, _ := sol.Reaction(1)
		Expect(after.Rate.A).To(Equal(before.Rate.A))

		other, _ := scaled.Reaction(0)
		orig, _ := sol.Reaction(0)
		Expect(other.Rate).To(Equal(orig.Rate))
	})

	It("hands out copies of reactions", func() {
		r, err := sol.Reaction(0)
		Expect(err).NotTo(HaveOccurred())
		r.Reactants[0].Species = "XX"
		r.Rate.A = -1

		again, _ := sol.Reaction(0)
		Expect(again.Reactants[0].Species).To(Equal("H2"))
		Expect(again.Rate.A).To(BeNumerically(">", 0))
	})

	It("hands out copies of species", func() {
		sp := sol.Species()
		Expect(sp).To(HaveLen(7))
		Expect(sp[5].Name).To(Equal("H2O"))
		Expect(sp[5].Composition).To(Equal(map[string]float64{"H": 2, "O": 1}))

		sp[5].Composition["H"] = 9
		Expect(sol.Species()[5].Composition["H"]).To(Equal(2.0))
	})

	DescribeTable("rejects out-of-range reaction indices",
		func(i int) {
			_, err := sol.Reaction(i)
			Expect(kinerr.IsKind(err, kinerr.KindIndex)).To(BeTrue())
			_, err = sol.WithScaledRate(i, 2)
			Expect(err).To(MatchError(kinerr.ErrIndex))
		},
		Entry("negative", -1),
		Entry("one past the end", 3),
		Entry("far past the end", 100),
	)

	It("rejects reactions over unknown species", func() {
		m, _ := mechanism.Parse([]byte(mechtest.ThreeReactions), "three")
		_, err := kinetics.NewSolution(kinetics.IdealGas, m.Species[:2], m.Reactions)
		Expect(kinerr.IsKind(err, kinerr.KindValue)).To(BeTrue())
	})

	It("rejects other thermo models", func() {
		_, err := kinetics.NewSolution("ideal-solid", nil, nil)
		Expect(kinerr.IsKind(err, kinerr.KindValue)).To(BeTrue())
	})
})
