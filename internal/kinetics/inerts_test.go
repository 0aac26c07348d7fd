package kinetics_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kinsens/internal/kinerr"
	"github.com/san-kum/kinsens/internal/kinetics"
	"github.com/san-kum/kinsens/internal/mechanism"
	"github.com/san-kum/kinsens/internal/mechanism/mechtest"
	"github.com/san-kum/kinsens/internal/species"
)

var _ = Describe("SolutionWithInerts", func() {
	var path string

	BeforeEach(func() {
		var err error
		path, err = mechtest.Write(GinkgoT().TempDir(), "three.yaml", mechtest.ThreeReactions)
		Expect(err).NotTo(HaveOccurred())
	})

	It("keeps every reaction for an empty inert set", func() {
		sol, err := kinetics.SolutionWithInerts(path, []string{})
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.NReactions()).To(Equal(3))
		Expect(sol.NSpecies()).To(Equal(7))
		Expect(sol.Thermo()).To(Equal(kinetics.IdealGas))
	})

	It("drops only the reaction involving O", func() {
		sol, err := kinetics.SolutionWithInerts(path, "O")
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.NReactions()).To(Equal(2))

		eqs := []string{}
		for _, r := range sol.Reactions() {
			eqs = append(eqs, r.Equation)
		}
		Expect(eqs).To(Equal([]string{"H2 + OH => H2O + H", "H + OH + M <=> H2O + M"}))
	})

	It("uppercases the inert names", func() {
		sol, err := kinetics.SolutionWithInerts(path, []string{"o"})
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.NReactions()).To(Equal(2))
	})

	DescribeTable("keeps the full species list",
		func(inert any) {
			sol, err := kinetics.SolutionWithInerts(path, inert)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.NSpecies()).To(Equal(7))
			Expect(sol.SpeciesNames()).To(ContainElements("O", "OH", "H2O"))
			Expect(sol.NReactions()).To(BeNumerically("<=", 3))
		},
		Entry("none", []string{}),
		Entry("one", "O"),
		Entry("several", species.Many("O", "OH")),
		Entry("all", []any{"H2", "O2", "H", "O", "OH", "H2O", "N2"}),
	)

	It("removes everything a set of species touches", func() {
		sol, err := kinetics.SolutionWithInerts(path, species.Many("OH"))
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.NReactions()).To(Equal(0))
		Expect(sol.NSpecies()).To(Equal(7))
	})

	It("matches reaction species exactly unless case folding is requested", func() {
		lower, err := mechtest.Write(GinkgoT().TempDir(), "lower.yaml", `
units: {length: m, quantity: mol, activation-energy: J/mol}
species: [{name: ar}, {name: A}, {name: B}]
reactions:
- equation: A + ar => B + ar
  rate-constant: {A: 1, b: 0, Ea: 0}
- equation: A => B
  rate-constant: {A: 1, b: 0, Ea: 0}
`)
		Expect(err).NotTo(HaveOccurred())

		exact, err := kinetics.SolutionWithInerts(lower, "ar")
		Expect(err).NotTo(HaveOccurred())
		Expect(exact.NReactions()).To(Equal(2))

		folded, err := kinetics.SolutionWithInerts(lower, "ar", kinetics.WithCaseFold())
		Expect(err).NotTo(HaveOccurred())
		Expect(folded.NReactions()).To(Equal(1))
	})

	It("rejects a bad inert type before touching the mechanism", func() {
		_, err := kinetics.SolutionWithInerts(filepath.Join(GinkgoT().TempDir(), "missing.yaml"), 42)
		Expect(kinerr.IsKind(err, kinerr.KindType)).To(BeTrue())
	})

	It("surfaces mechanism load failures", func() {
		_, err := kinetics.SolutionWithInerts(filepath.Join(GinkgoT().TempDir(), "missing.yaml"), "O")
		Expect(err).To(MatchError(kinerr.ErrMechanismLoad))
	})

	It("reports a phase that repeats a species as a load failure", func() {
		dup, err := mechtest.Write(GinkgoT().TempDir(), "dup.yaml", `
phases:
- {name: gas, thermo: ideal-gas, species: [A, B, A]}
species: [{name: A}, {name: B}]
reactions:
- equation: A => B
  rate-constant: {A: 1, b: 0, Ea: 0}
`)
		Expect(err).NotTo(HaveOccurred())

		_, err = kinetics.SolutionWithInerts(dup, []string{})
		Expect(kinerr.KindOf(err)).To(Equal(kinerr.KindMechanismLoad))
		Expect(err.Error()).To(ContainSubstring(`species "A" twice`))
	})
})

var _ = Describe("FilterInerts", func() {
	It("does not modify its input", func() {
		m, err := mechanism.Parse([]byte(mechtest.ThreeReactions), "three")
		Expect(err).NotTo(HaveOccurred())

		kept := kinetics.FilterInerts(m.Reactions, []string{"O"}, false)
		Expect(kept).To(HaveLen(2))
		Expect(m.Reactions).To(HaveLen(3))
		Expect(m.Reactions[1].Equation).To(Equal("O + H2 <=> H + OH"))
	})
})
