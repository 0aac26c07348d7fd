// Package mechanism models reaction mechanisms and loads them from YAML.
//
// A [Mechanism] is an ordered list of [Species] and an ordered list of
// [Reaction]s. Rate parameters are stored in SI units (m, mol, s, J/mol)
// regardless of the units block of the source file.
//
// # Loading
//
//	m, err := mechanism.Load("h2o2.yaml")
//	if err != nil {
//	    // kinerr.KindMechanismLoad
//	}
//
// A name that does not resolve to a file is looked up in the bundled library
// (see [Library]).
//
// # Values
//
// Reactions hold slices and maps. Use [Reaction.Clone] before changing one
// that is shared.
package mechanism

import "math"

// GasConstant in J/(mol K).
const GasConstant = 8.314462618

// Avogadro constant in 1/mol.
const Avogadro = 6.02214076e23

// ReactionType selects the rate expression.
type ReactionType string

const (
	Elementary ReactionType = "elementary"
	ThreeBody  ReactionType = "three-body"
)

// Species is a named chemical species with its elemental composition.
type Species struct {
	Name        string
	Composition map[string]float64
}

// Clone returns a deep copy of s.
func (s Species) Clone() Species {
	c := Species{Name: s.Name}
	if s.Composition != nil {
		c.Composition = make(map[string]float64, len(s.Composition))
		for k, v := range s.Composition {
			c.Composition[k] = v
		}
	}
	return c
}

// Arrhenius holds modified Arrhenius parameters: k = A T^B exp(-Ea/(R T)).
type Arrhenius struct {
	A  float64
	B  float64
	Ea float64 // J/mol
}

// K evaluates the rate constant at temperature T (K).
func (a Arrhenius) K(T float64) float64 {
	k := a.A
	if a.B != 0 {
		k *= math.Pow(T, a.B)
	}
	if a.Ea != 0 {
		k *= math.Exp(-a.Ea / (GasConstant * T))
	}
	return k
}

// Scaled returns a with the pre-exponential factor multiplied by factor.
func (a Arrhenius) Scaled(factor float64) Arrhenius {
	a.A *= factor
	return a
}

// Term is one species on one side of a reaction equation.
type Term struct {
	Species string
	Coeff   float64
}

// Reaction is a single reaction of a mechanism.
type Reaction struct {
	Equation          string
	Type              ReactionType
	Reactants         []Term
	Products          []Term
	Rate              Arrhenius
	Reversible        bool
	Duplicate         bool
	Efficiencies      map[string]float64
	DefaultEfficiency float64
}

// Species returns the union of reactant and product names in order of
// first appearance.
func (r Reaction) Species() []string {
	seen := make(map[string]struct{}, len(r.Reactants)+len(r.Products))
	names := make([]string, 0, len(r.Reactants)+len(r.Products))
	for _, side := range [][]Term{r.Reactants, r.Products} {
		for _, t := range side {
			if _, ok := seen[t.Species]; ok {
				continue
			}
			seen[t.Species] = struct{}{}
			names = append(names, t.Species)
		}
	}
	return names
}

// Involves reports whether name is a reactant or product of r. The
// comparison is exact.
func (r Reaction) Involves(name string) bool {
	for _, side := range [][]Term{r.Reactants, r.Products} {
		for _, t := range side {
			if t.Species == name {
				return true
			}
		}
	}
	return false
}

// Order is the sum of reactant coefficients, plus one for the third body.
func (r Reaction) Order() float64 {
	order := 0.0
	for _, t := range r.Reactants {
		order += t.Coeff
	}
	if r.Type == ThreeBody {
		order++
	}
	return order
}

// Efficiency returns the third-body efficiency of name.
func (r Reaction) Efficiency(name string) float64 {
	if e, ok := r.Efficiencies[name]; ok {
		return e
	}
	return r.DefaultEfficiency
}

// Clone returns a deep copy of r.
func (r Reaction) Clone() Reaction {
	c := r
	c.Reactants = append([]Term(nil), r.Reactants...)
	c.Products = append([]Term(nil), r.Products...)
	if r.Efficiencies != nil {
		c.Efficiencies = make(map[string]float64, len(r.Efficiencies))
		for k, v := range r.Efficiencies {
			c.Efficiencies[k] = v
		}
	}
	return c
}

// Mechanism is a parsed reaction mechanism.
type Mechanism struct {
	Source    string
	Thermo    string
	Elements  []string
	Species   []Species
	Reactions []Reaction
}

// SpeciesNames returns the species names in mechanism order.
func (m *Mechanism) SpeciesNames() []string {
	names := make([]string, len(m.Species))
	for i, s := range m.Species {
		names[i] = s.Name
	}
	return names
}
