package reactor

import (
	"context"
	"fmt"

	"github.com/san-kum/kinsens/internal/kinerr"
	"github.com/san-kum/kinsens/internal/kinetics"
	"github.com/san-kum/kinsens/internal/metrics"
	"github.com/san-kum/kinsens/internal/sim"
)

// FinalMoleFraction observes the mole fraction of species at the end of the
// run.
func FinalMoleFraction(species string, cond Conditions) func(*kinetics.Solution) (float64, error) {
	return func(sol *kinetics.Solution) (float64, error) {
		return evaluate(sol, cond, species, func(idx int) sim.Metric {
			return metrics.NewFinalFraction(species, idx)
		})
	}
}

// PeakMoleFraction observes the largest mole fraction of species reached
// during the run.
func PeakMoleFraction(species string, cond Conditions) func(*kinetics.Solution) (float64, error) {
	return func(sol *kinetics.Solution) (float64, error) {
		return evaluate(sol, cond, species, func(idx int) sim.Metric {
			return metrics.NewPeakFraction(species, idx)
		})
	}
}

// ConsumptionTime observes the time at which the mole fraction of species
// first falls below fraction of its initial value. It fails if that does not
// happen within cond.Duration.
func ConsumptionTime(species string, fraction float64, cond Conditions) func(*kinetics.Solution) (float64, error) {
	return func(sol *kinetics.Solution) (float64, error) {
		if !(fraction > 0 && fraction < 1) {
			return 0, kinerr.New("reactor.consumption_time", kinerr.KindValue, "fraction must be in (0, 1), got %g", fraction)
		}
		m, err := observe(sol, cond, species, func(idx int) sim.Metric {
			return metrics.NewConsumptionTime(species, idx, fraction)
		})
		if err != nil {
			return 0, err
		}
		if !m.(*metrics.ConsumptionTime).Reached() {
			return 0, fmt.Errorf("%s: %s not below %g of its initial value within %g s", m.Name(), species, fraction, cond.Duration)
		}
		return m.Value(), nil
	}
}

func evaluate(sol *kinetics.Solution, cond Conditions, species string, metric func(idx int) sim.Metric) (float64, error) {
	m, err := observe(sol, cond, species, metric)
	if err != nil {
		return 0, err
	}
	return m.Value(), nil
}

func observe(sol *kinetics.Solution, cond Conditions, species string, metric func(idx int) sim.Metric) (sim.Metric, error) {
	idx, ok := sol.SpeciesIndex(species)
	if !ok {
		return nil, kinerr.New("reactor.observe", kinerr.KindValue, "unknown species %q", species)
	}

	r, err := New(sol, cond)
	if err != nil {
		return nil, err
	}

	m := metric(idx)
	if _, err := r.Run(context.Background(), m); err != nil {
		return nil, err
	}
	return m, nil
}

// Trajectory is the mole fraction history of one species.
type Trajectory struct {
	Species   string
	Times     []float64
	Fractions []float64
	Steps     int
	Drift     map[string]float64 // max relative element imbalance
}

// Profile runs the reactor and records the mole fraction of species at
// every accepted step, along with the element balance drift.
func Profile(ctx context.Context, sol *kinetics.Solution, cond Conditions, species string) (*Trajectory, error) {
	idx, ok := sol.SpeciesIndex(species)
	if !ok {
		return nil, kinerr.New("reactor.profile", kinerr.KindValue, "unknown species %q", species)
	}

	r, err := New(sol, cond)
	if err != nil {
		return nil, err
	}

	var drifts []sim.Metric
	for _, el := range r.Elements() {
		drifts = append(drifts, metrics.NewElementDrift(el, r.ElementCounts(el)))
	}

	res, err := r.Run(ctx, drifts...)
	if err != nil {
		return nil, err
	}

	tr := &Trajectory{
		Species:   species,
		Times:     res.Times,
		Fractions: make([]float64, len(res.States)),
		Steps:     res.StepsTaken,
		Drift:     make(map[string]float64, len(drifts)),
	}
	for i, x := range res.States {
		tr.Fractions[i] = metrics.MoleFraction(x, idx)
	}
	for _, el := range r.Elements() {
		tr.Drift[el] = res.Metrics["drift_"+el]
	}
	return tr, nil
}
