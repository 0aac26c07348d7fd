package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrStepRejected is returned by an AdaptiveIntegrator whose error estimate
// exceeds the tolerance. The returned step size is the suggested retry.
var ErrStepRejected = errors.New("sim: step rejected")

type Simulator struct {
	dyn        Dynamics
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(dyn Dynamics, integrator Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates from x0 over [0, cfg.Duration]. The last step is shortened
// so the run ends exactly at Duration. A NaN or Inf state stops the run with
// a SimError; the partial result is returned alongside it.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(x0, cfg); err != nil {
		return nil, err
	}

	result := &Result{
		States:  make([]State, 0, 64),
		Times:   make([]float64, 0, 64),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt
	eps := 1e-12 * cfg.Duration

	s.record(result, x, t)

	for step := 0; cfg.Duration-t > eps; step++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		h := math.Min(dt, cfg.Duration-t)

		var newX State
		used := h
		if cfg.Adaptive {
			var next float64
			var err error
			newX, used, next, err = s.adaptiveStep(x, t, h, cfg)
			if err != nil {
				return result, SimError{Time: t, Step: step, Message: err.Error()}
			}
			dt = next
		} else {
			newX = s.integrator.Step(s.dyn, x, t, h)
		}

		if cfg.ValidateState && !newX.IsValid() {
			return result, SimError{Time: t, Step: step, Message: "invalid state (NaN/Inf)"}
		}

		x = newX
		t += used
		result.StepsTaken++

		s.record(result, x, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) record(result *Result, x State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, t)
	}
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)
}

func (s *Simulator) validateConfig(x0 State, cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive for adaptive stepping", ErrInvalidConfig)
	}
	if len(x0) != s.dyn.StateDim() {
		return fmt.Errorf("%w: state has %d components, system expects %d", ErrInvalidConfig, len(x0), s.dyn.StateDim())
	}
	return nil
}

// adaptiveStep advances one accepted step starting from trial size dt. It
// returns the new state, the step actually taken and the next trial size.
func (s *Simulator) adaptiveStep(x State, t, dt float64, cfg Config) (State, float64, float64, error) {
	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		for {
			newX, next, err := adaptive.StepAdaptive(s.dyn, x, t, dt, cfg.Tolerance)
			if errors.Is(err, ErrStepRejected) {
				if next < cfg.MinDt || next <= 0 {
					return nil, 0, 0, ErrStepTooSmall
				}
				dt = next
				continue
			}
			if err != nil {
				return nil, 0, 0, err
			}
			return newX, dt, clampDt(next, cfg), nil
		}
	}

	// step doubling for integrators without an error estimate
	for {
		x1 := s.integrator.Step(s.dyn, x, t, dt)
		xHalf := s.integrator.Step(s.dyn, x, t, dt/2)
		x2 := s.integrator.Step(s.dyn, xHalf, t+dt/2, dt/2)

		errNorm := x1.Sub(x2).Norm() / math.Max(x2.Norm(), 1e-300)

		if errNorm > cfg.Tolerance {
			if dt/2 < cfg.MinDt {
				return nil, 0, 0, ErrStepTooSmall
			}
			dt /= 2
			continue
		}

		next := dt
		if errNorm < cfg.Tolerance/10 {
			next = dt * 2
		}
		return x2, dt, clampDt(next, cfg), nil
	}
}

func clampDt(dt float64, cfg Config) float64 {
	if cfg.MaxDt > 0 && dt > cfg.MaxDt {
		dt = cfg.MaxDt
	}
	if dt < cfg.MinDt {
		dt = cfg.MinDt
	}
	return dt
}
