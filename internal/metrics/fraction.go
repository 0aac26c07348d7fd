// Package metrics provides sim.Metric implementations over concentration
// states.
package metrics

import (
	"math"

	"github.com/san-kum/kinsens/internal/sim"
)

// MoleFractions converts concentrations to mole fractions. Negative
// concentrations count as zero.
func MoleFractions(x sim.State) []float64 {
	out := make([]float64, len(x))
	sum := positiveSum(x)
	if sum == 0 {
		return out
	}
	for i, c := range x {
		out[i] = math.Max(c, 0) / sum
	}
	return out
}

// MoleFraction is the mole fraction of component i of x.
func MoleFraction(x sim.State, i int) float64 {
	sum := positiveSum(x)
	if sum == 0 {
		return 0
	}
	return math.Max(x[i], 0) / sum
}

func positiveSum(x sim.State) float64 {
	sum := 0.0
	for _, c := range x {
		sum += math.Max(c, 0)
	}
	return sum
}

// FinalFraction is the mole fraction of one species at the last observed
// state.
type FinalFraction struct {
	name  string
	idx   int
	value float64
}

func NewFinalFraction(species string, idx int) *FinalFraction {
	return &FinalFraction{name: "final_x_" + species, idx: idx}
}

func (m *FinalFraction) Name() string { return m.name }

func (m *FinalFraction) Observe(x sim.State, t float64) {
	m.value = MoleFraction(x, m.idx)
}

func (m *FinalFraction) Value() float64 { return m.value }
func (m *FinalFraction) Reset()         { m.value = 0 }

// PeakFraction is the largest observed mole fraction of one species.
type PeakFraction struct {
	name  string
	idx   int
	value float64
}

func NewPeakFraction(species string, idx int) *PeakFraction {
	return &PeakFraction{name: "peak_x_" + species, idx: idx}
}

func (m *PeakFraction) Name() string { return m.name }

func (m *PeakFraction) Observe(x sim.State, t float64) {
	m.value = math.Max(m.value, MoleFraction(x, m.idx))
}

func (m *PeakFraction) Value() float64 { return m.value }
func (m *PeakFraction) Reset()         { m.value = 0 }

// ConsumptionTime records when the mole fraction of a species first drops
// below fraction times its first observed value, interpolating linearly
// between observations. Value is NaN until that happens.
type ConsumptionTime struct {
	name      string
	idx       int
	fraction  float64
	threshold float64
	samples   int
	prevT     float64
	prevX     float64
	value     float64
}

func NewConsumptionTime(species string, idx int, fraction float64) *ConsumptionTime {
	return &ConsumptionTime{
		name:     "consumption_time_" + species,
		idx:      idx,
		fraction: fraction,
		value:    math.NaN(),
	}
}

func (m *ConsumptionTime) Name() string { return m.name }

func (m *ConsumptionTime) Observe(x sim.State, t float64) {
	xi := MoleFraction(x, m.idx)
	m.samples++
	if m.samples == 1 {
		m.threshold = m.fraction * xi
		m.prevT, m.prevX = t, xi
		return
	}
	if !math.IsNaN(m.value) {
		return
	}
	if xi < m.threshold {
		m.value = t
		if m.prevX != xi {
			m.value = m.prevT + (m.threshold-m.prevX)*(t-m.prevT)/(xi-m.prevX)
		}
	}
	m.prevT, m.prevX = t, xi
}

func (m *ConsumptionTime) Value() float64 { return m.value }

// Reached reports whether the threshold was crossed.
func (m *ConsumptionTime) Reached() bool { return !math.IsNaN(m.value) }

func (m *ConsumptionTime) Reset() {
	m.samples = 0
	m.threshold = 0
	m.value = math.NaN()
}
