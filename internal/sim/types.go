package sim

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for simulation runs.
var (
	ErrInvalidConfig = errors.New("sim: invalid config")
	ErrStepTooSmall  = errors.New("sim: adaptive timestep below minimum")
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Dynamics is an autonomous or time-dependent ODE system dx/dt = f(x, t).
type Dynamics interface {
	Derivative(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn Dynamics, x State, t float64, dt float64) State
}

// AdaptiveIntegrator also proposes the next step size from an error estimate.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn Dynamics, x State, t, dt, tol float64) (State, float64, error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	Tolerance     float64
	MaxDt         float64
	MinDt         float64
	Adaptive      bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1e-6,
		Duration:      1e-3,
		Tolerance:     1e-6,
		MaxDt:         1e-4,
		MinDt:         1e-14,
		Adaptive:      false,
		ValidateState: true,
	}
}

type Result struct {
	States     []State
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
}

// Final returns the last recorded state.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4g): %s", e.Step, e.Time, e.Message)
}
