// Package kinetics builds chemical solutions from mechanisms.
//
// A [Solution] bundles a thermodynamic model name, an ordered species list
// and an ordered reaction list. Solutions are treated as values: deriving a
// new one ([Solution.Clone], [Solution.WithScaledRate]) copies the reaction
// data, so a baseline solution is never changed by work done on a derived
// one.
package kinetics

import (
	"fmt"

	"github.com/san-kum/kinsens/internal/kinerr"
	"github.com/san-kum/kinsens/internal/mechanism"
)

// IdealGas is the only thermodynamic model supported.
const IdealGas = "ideal-gas"

type Solution struct {
	thermo    string
	species   []mechanism.Species
	reactions []mechanism.Reaction
	index     map[string]int
}

// NewSolution copies species and reactions into a new Solution. Every
// species a reaction refers to must be in species.
func NewSolution(thermo string, species []mechanism.Species, reactions []mechanism.Reaction) (*Solution, error) {
	if thermo != IdealGas {
		return nil, kinerr.New("kinetics.new_solution", kinerr.KindValue, "unsupported thermo model %q", thermo)
	}

	s := &Solution{
		thermo:    thermo,
		species:   make([]mechanism.Species, len(species)),
		reactions: make([]mechanism.Reaction, len(reactions)),
		index:     make(map[string]int, len(species)),
	}
	for i, sp := range species {
		if _, dup := s.index[sp.Name]; dup {
			return nil, kinerr.New("kinetics.new_solution", kinerr.KindValue, "species %q listed twice", sp.Name)
		}
		s.species[i] = sp.Clone()
		s.index[sp.Name] = i
	}
	for i, r := range reactions {
		for _, name := range r.Species() {
			if _, ok := s.index[name]; !ok {
				return nil, kinerr.New("kinetics.new_solution", kinerr.KindValue,
					"reaction %d (%s) refers to unknown species %q", i, r.Equation, name).AtIndex(i)
			}
		}
		s.reactions[i] = r.Clone()
	}
	return s, nil
}

// FromMechanism builds an unfiltered ideal-gas solution.
func FromMechanism(m *mechanism.Mechanism) (*Solution, error) {
	return NewSolution(IdealGas, m.Species, m.Reactions)
}

func (s *Solution) Thermo() string  { return s.thermo }
func (s *Solution) NSpecies() int   { return len(s.species) }
func (s *Solution) NReactions() int { return len(s.reactions) }

// SpeciesNames returns the species names in solution order.
func (s *Solution) SpeciesNames() []string {
	names := make([]string, len(s.species))
	for i, sp := range s.species {
		names[i] = sp.Name
	}
	return names
}

// Species returns copies of the species in solution order.
func (s *Solution) Species() []mechanism.Species {
	out := make([]mechanism.Species, len(s.species))
	for i, sp := range s.species {
		out[i] = sp.Clone()
	}
	return out
}

// SpeciesIndex returns the position of name.
func (s *Solution) SpeciesIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Reaction returns a copy of reaction i.
func (s *Solution) Reaction(i int) (mechanism.Reaction, error) {
	if err := s.checkIndex("kinetics.reaction", i); err != nil {
		return mechanism.Reaction{}, err
	}
	return s.reactions[i].Clone(), nil
}

// Reactions returns copies of all reactions in order.
func (s *Solution) Reactions() []mechanism.Reaction {
	out := make([]mechanism.Reaction, len(s.reactions))
	for i, r := range s.reactions {
		out[i] = r.Clone()
	}
	return out
}

// Clone returns an independent copy of s.
func (s *Solution) Clone() *Solution {
	c := &Solution{
		thermo:    s.thermo,
		species:   make([]mechanism.Species, len(s.species)),
		reactions: make([]mechanism.Reaction, len(s.reactions)),
		index:     make(map[string]int, len(s.index)),
	}
	for i, sp := range s.species {
		c.species[i] = sp.Clone()
	}
	for i, r := range s.reactions {
		c.reactions[i] = r.Clone()
	}
	for k, v := range s.index {
		c.index[k] = v
	}
	return c
}

// WithScaledRate returns a copy of s in which the pre-exponential factor of
// reaction i is multiplied by factor. s is not modified.
func (s *Solution) WithScaledRate(i int, factor float64) (*Solution, error) {
	if err := s.checkIndex("kinetics.scale_rate", i); err != nil {
		return nil, err
	}
	c := s.Clone()
	c.reactions[i].Rate = c.reactions[i].Rate.Scaled(factor)
	return c, nil
}

func (s *Solution) checkIndex(op string, i int) error {
	if i < 0 || i >= len(s.reactions) {
		return kinerr.New(op, kinerr.KindIndex, "index %d not in [0, %d)", i, len(s.reactions)).AtIndex(i)
	}
	return nil
}

func (s *Solution) String() string {
	return fmt.Sprintf("Solution(%s, %d species, %d reactions)", s.thermo, len(s.species), len(s.reactions))
}
