package integrators

import "github.com/san-kum/kinsens/internal/sim"

// Euler is the explicit first-order method. It is only useful as a baseline
// for the higher-order steppers.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn sim.Dynamics, x sim.State, t float64, dt float64) sim.State {
	return x.Add(dyn.Derivative(x, t).Scale(dt))
}
