package reactor

import (
	"math"

	"github.com/san-kum/kinsens/internal/integrators"
	"github.com/san-kum/kinsens/internal/kinerr"
)

const (
	DefaultTemperature = 1200.0   // K
	DefaultPressure    = 101325.0 // Pa
	DefaultDuration    = 1e-3     // s
	DefaultDt          = 1e-8     // s
	DefaultTolerance   = 1e-6
	DefaultIntegrator  = "rk45"
)

// Conditions describes the initial state of an isothermal, constant-volume
// batch reactor and how long to integrate it.
type Conditions struct {
	Temperature float64            // K
	Pressure    float64            // Pa
	Composition map[string]float64 // mole fractions; normalized before use
	Duration    float64            // s
	Dt          float64            // initial step, s
	Integrator  string
	Tolerance   float64 // relative; zero selects fixed steps
}

func DefaultConditions() Conditions {
	return Conditions{
		Temperature: DefaultTemperature,
		Pressure:    DefaultPressure,
		Duration:    DefaultDuration,
		Dt:          DefaultDt,
		Integrator:  DefaultIntegrator,
		Tolerance:   DefaultTolerance,
	}
}

// Validate checks the scalar fields. Species names are checked against a
// solution by New.
func (c Conditions) Validate() error {
	const op = "reactor.conditions"
	positive := []struct {
		name string
		v    float64
	}{
		{"temperature", c.Temperature},
		{"pressure", c.Pressure},
		{"duration", c.Duration},
		{"dt", c.Dt},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return kinerr.New(op, kinerr.KindValue, "%s must be positive and finite, got %g", p.name, p.v)
		}
	}
	if c.Tolerance < 0 {
		return kinerr.New(op, kinerr.KindValue, "tolerance must not be negative, got %g", c.Tolerance)
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		return kinerr.Wrap(op, kinerr.KindValue, err)
	}

	total := 0.0
	for name, x := range c.Composition {
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return kinerr.New(op, kinerr.KindValue, "mole fraction of %s is %g", name, x)
		}
		total += x
	}
	if total <= 0 {
		return kinerr.New(op, kinerr.KindValue, "composition is empty")
	}
	return nil
}

// TotalConcentration is P / (R T) in mol/m^3.
func (c Conditions) TotalConcentration() float64 {
	return c.Pressure / (gasConstant * c.Temperature)
}
