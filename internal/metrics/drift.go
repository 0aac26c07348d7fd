package metrics

import (
	"math"

	"github.com/san-kum/kinsens/internal/sim"
)

// ElementDrift tracks the largest relative change in the total amount of
// one element. counts[i] is the number of atoms of the element in species
// i. A closed reactor keeps this at round-off level, so growth points at a
// step size or tolerance that is too loose.
type ElementDrift struct {
	name     string
	counts   []float64
	initial  float64
	maxDrift float64
	samples  int
}

func NewElementDrift(element string, counts []float64) *ElementDrift {
	return &ElementDrift{
		name:   "drift_" + element,
		counts: counts,
	}
}

func (e *ElementDrift) Name() string { return e.name }

func (e *ElementDrift) Observe(x sim.State, t float64) {
	amount := 0.0
	for i, n := range e.counts {
		amount += n * x[i]
	}

	if e.samples == 0 {
		e.initial = amount
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(amount-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *ElementDrift) Value() float64 {
	return e.maxDrift
}

func (e *ElementDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
