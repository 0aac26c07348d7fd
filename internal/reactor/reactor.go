// Package reactor integrates an isothermal, constant-volume ideal-gas batch
// reactor over a kinetics.Solution and derives scalar observables from the
// trajectory.
//
// The state vector holds molar concentrations (mol/m^3) in solution species
// order. Rates of progress use mass-action kinetics with modified Arrhenius
// rate constants evaluated once at the reactor temperature:
//
//	q = k(T) * prod(C_i^nu_i)          elementary
//	q = k(T) * [M] * prod(C_i^nu_i)    three-body, [M] = sum(eff_i * C_i)
//
// Only forward rates are evaluated; reversible reactions contribute their
// forward direction.
package reactor

import (
	"context"
	"math"
	"sort"

	"github.com/san-kum/kinsens/internal/integrators"
	"github.com/san-kum/kinsens/internal/kinerr"
	"github.com/san-kum/kinsens/internal/kinetics"
	"github.com/san-kum/kinsens/internal/mechanism"
	"github.com/san-kum/kinsens/internal/sim"
)

const gasConstant = mechanism.GasConstant

type stoich struct {
	idx int
	nu  float64
}

type compiledReaction struct {
	k         float64
	reactants []stoich
	products  []stoich
	thirdBody []float64 // per-species efficiency, nil for elementary
}

// Reactor implements sim.Dynamics.
type Reactor struct {
	cond      Conditions
	names     []string
	species   []mechanism.Species
	reactions []compiledReaction
	x0        sim.State
}

// New compiles sol at the conditions in cond.
func New(sol *kinetics.Solution, cond Conditions) (*Reactor, error) {
	if err := cond.Validate(); err != nil {
		return nil, err
	}

	r := &Reactor{
		cond:    cond,
		names:   sol.SpeciesNames(),
		species: sol.Species(),
		x0:      make(sim.State, sol.NSpecies()),
	}

	total := 0.0
	for _, x := range cond.Composition {
		total += x
	}
	ctot := cond.TotalConcentration()
	for name, x := range cond.Composition {
		i, ok := sol.SpeciesIndex(name)
		if !ok {
			return nil, kinerr.New("reactor.new", kinerr.KindValue, "composition names unknown species %q", name)
		}
		r.x0[i] = x / total * ctot
	}

	for _, rxn := range sol.Reactions() {
		cr := compiledReaction{k: rxn.Rate.K(cond.Temperature)}
		for _, t := range rxn.Reactants {
			i, _ := sol.SpeciesIndex(t.Species)
			cr.reactants = append(cr.reactants, stoich{idx: i, nu: t.Coeff})
		}
		for _, t := range rxn.Products {
			i, _ := sol.SpeciesIndex(t.Species)
			cr.products = append(cr.products, stoich{idx: i, nu: t.Coeff})
		}
		if rxn.Type == mechanism.ThreeBody {
			cr.thirdBody = make([]float64, len(r.names))
			for i, name := range r.names {
				cr.thirdBody[i] = rxn.Efficiency(name)
			}
		}
		r.reactions = append(r.reactions, cr)
	}

	return r, nil
}

func (r *Reactor) StateDim() int { return len(r.names) }

func (r *Reactor) Derivative(x sim.State, t float64) sim.State {
	dx := make(sim.State, len(x))
	for _, cr := range r.reactions {
		q := cr.k
		for _, s := range cr.reactants {
			q *= power(x[s.idx], s.nu)
		}
		if cr.thirdBody != nil {
			m := 0.0
			for i, eff := range cr.thirdBody {
				m += eff * math.Max(x[i], 0)
			}
			q *= m
		}
		for _, s := range cr.reactants {
			dx[s.idx] -= s.nu * q
		}
		for _, s := range cr.products {
			dx[s.idx] += s.nu * q
		}
	}
	return dx
}

// power is c^nu with negative concentrations treated as zero.
func power(c, nu float64) float64 {
	if c <= 0 {
		return 0
	}
	switch nu {
	case 1:
		return c
	case 2:
		return c * c
	}
	return math.Pow(c, nu)
}

// InitialState returns a copy of the initial concentrations.
func (r *Reactor) InitialState() sim.State { return r.x0.Clone() }

// SpeciesNames returns the species order of the state vector.
func (r *Reactor) SpeciesNames() []string { return append([]string(nil), r.names...) }

// Elements returns the elements present in the species compositions,
// sorted.
func (r *Reactor) Elements() []string {
	seen := make(map[string]struct{})
	for _, sp := range r.species {
		for el := range sp.Composition {
			seen[el] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for el := range seen {
		out = append(out, el)
	}
	sort.Strings(out)
	return out
}

// ElementCounts returns the atoms of element per species, in state order.
func (r *Reactor) ElementCounts(element string) []float64 {
	counts := make([]float64, len(r.species))
	for i, sp := range r.species {
		counts[i] = sp.Composition[element]
	}
	return counts
}

// Run integrates the reactor over cond.Duration, feeding each recorded
// state to metrics.
func (r *Reactor) Run(ctx context.Context, metrics ...sim.Metric) (*sim.Result, error) {
	integ, err := integrators.New(r.cond.Integrator)
	if err != nil {
		return nil, kinerr.Wrap("reactor.run", kinerr.KindValue, err)
	}
	if rk, ok := integ.(*integrators.RK45); ok {
		rk.WithAbsoluteFloor(1e-12 * r.cond.TotalConcentration())
	}

	s := sim.New(r, integ)
	for _, m := range metrics {
		s.AddMetric(m)
	}

	cfg := sim.Config{
		Dt:            r.cond.Dt,
		Duration:      r.cond.Duration,
		Tolerance:     r.cond.Tolerance,
		MinDt:         r.cond.Duration * 1e-15,
		MaxDt:         r.cond.Duration / 10,
		Adaptive:      r.cond.Tolerance > 0,
		ValidateState: true,
	}
	return s.Run(ctx, r.x0, cfg)
}
