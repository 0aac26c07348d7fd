package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/kinsens/internal/kinerr"
	"github.com/san-kum/kinsens/internal/kinetics"
	"github.com/san-kum/kinsens/internal/reactor"
	"github.com/san-kum/kinsens/internal/sensitivity"
	"github.com/san-kum/kinsens/internal/species"
)

const (
	DefaultMechanism  = "h2o2.yaml"
	DefaultReaction   = 0
	DefaultObservable = ObservablePeak
	DefaultSpecies    = "OH"
	DefaultFraction   = 0.5
)

// Observable kinds.
const (
	ObservableFinal       = "final"
	ObservablePeak        = "peak"
	ObservableConsumption = "consumption"
)

// Config describes one sensitivity run.
type Config struct {
	Mechanism    string           `yaml:"mechanism"`
	Inert        any              `yaml:"inert,omitempty"` // a name or a list of names
	FoldCase     bool             `yaml:"fold_case,omitempty"`
	Reaction     int              `yaml:"reaction"`
	Perturbation float64          `yaml:"perturbation"`
	Observable   ObservableConfig `yaml:"observable"`
	Reactor      ReactorConfig    `yaml:"reactor"`
}

type ObservableConfig struct {
	Kind     string  `yaml:"kind"`
	Species  string  `yaml:"species"`
	Fraction float64 `yaml:"fraction"` // consumption only
}

type ReactorConfig struct {
	Temperature float64            `yaml:"temperature"`
	Pressure    float64            `yaml:"pressure"`
	Composition map[string]float64 `yaml:"composition"`
	Duration    float64            `yaml:"duration"`
	Dt          float64            `yaml:"dt"`
	Integrator  string             `yaml:"integrator"`
	Tolerance   float64            `yaml:"tolerance"`
}

func DefaultConfig() *Config {
	return &Config{
		Mechanism:    DefaultMechanism,
		Reaction:     DefaultReaction,
		Perturbation: sensitivity.DefaultPerturbation,
		Observable: ObservableConfig{
			Kind:     DefaultObservable,
			Species:  DefaultSpecies,
			Fraction: DefaultFraction,
		},
		Reactor: ReactorConfig{
			Temperature: reactor.DefaultTemperature,
			Pressure:    reactor.DefaultPressure,
			Composition: map[string]float64{"H2": 2, "O2": 1, "N2": 3.76},
			Duration:    reactor.DefaultDuration,
			Dt:          reactor.DefaultDt,
			Integrator:  reactor.DefaultIntegrator,
			Tolerance:   reactor.DefaultTolerance,
		},
	}
}

// Load reads a YAML config from path. Fields missing from the file keep
// their defaults. A composition in the file replaces the default one
// instead of being merged into it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	defaultComposition := cfg.Reactor.Composition
	cfg.Reactor.Composition = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Reactor.Composition == nil {
		cfg.Reactor.Composition = defaultComposition
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks everything that can be checked without loading the
// mechanism.
func (c *Config) Validate() error {
	const op = "config.validate"
	if c.Mechanism == "" {
		return kinerr.New(op, kinerr.KindValue, "mechanism is required")
	}
	if _, err := c.InertSpecies(); err != nil {
		return err
	}
	if c.Reaction < 0 {
		return kinerr.New(op, kinerr.KindIndex, "reaction index %d is negative", c.Reaction).AtIndex(c.Reaction)
	}
	if c.Perturbation == 0 || math.IsNaN(c.Perturbation) || math.IsInf(c.Perturbation, 0) {
		return kinerr.New(op, kinerr.KindValue, "perturbation must be finite and non-zero, got %g", c.Perturbation)
	}
	if c.Observable.Species == "" {
		return kinerr.New(op, kinerr.KindValue, "observable species is required")
	}
	switch c.Observable.Kind {
	case ObservableFinal, ObservablePeak:
	case ObservableConsumption:
		if !(c.Observable.Fraction > 0 && c.Observable.Fraction < 1) {
			return kinerr.New(op, kinerr.KindValue, "consumption fraction must be in (0, 1), got %g", c.Observable.Fraction)
		}
	default:
		return kinerr.New(op, kinerr.KindValue, "unknown observable kind %q", c.Observable.Kind)
	}
	return c.Conditions().Validate()
}

// InertSpecies returns the normalized inert set. An absent inert field is an
// empty set.
func (c *Config) InertSpecies() ([]string, error) {
	if c.Inert == nil {
		return []string{}, nil
	}
	return species.Normalize(c.Inert)
}

// Conditions converts the reactor section.
func (c *Config) Conditions() reactor.Conditions {
	comp := make(map[string]float64, len(c.Reactor.Composition))
	for k, v := range c.Reactor.Composition {
		comp[k] = v
	}
	return reactor.Conditions{
		Temperature: c.Reactor.Temperature,
		Pressure:    c.Reactor.Pressure,
		Composition: comp,
		Duration:    c.Reactor.Duration,
		Dt:          c.Reactor.Dt,
		Integrator:  c.Reactor.Integrator,
		Tolerance:   c.Reactor.Tolerance,
	}
}

// Solution builds the inert-filtered solution the run works on.
func (c *Config) Solution() (*kinetics.Solution, error) {
	inert, err := c.InertSpecies()
	if err != nil {
		return nil, err
	}
	var opts []kinetics.BuildOption
	if c.FoldCase {
		opts = append(opts, kinetics.WithCaseFold())
	}
	return kinetics.SolutionWithInerts(c.Mechanism, inert, opts...)
}

// BuildObservable returns the observable named by the observable section.
func (c *Config) BuildObservable() (sensitivity.Observable, error) {
	cond := c.Conditions()
	o := c.Observable
	switch o.Kind {
	case ObservableFinal:
		return reactor.FinalMoleFraction(o.Species, cond), nil
	case ObservablePeak:
		return reactor.PeakMoleFraction(o.Species, cond), nil
	case ObservableConsumption:
		return reactor.ConsumptionTime(o.Species, o.Fraction, cond), nil
	}
	return nil, kinerr.New("config.observable", kinerr.KindValue, "unknown observable kind %q", o.Kind)
}

// Describe is a one-line summary of the observable.
func (o ObservableConfig) Describe() string {
	switch o.Kind {
	case ObservableFinal:
		return fmt.Sprintf("final X(%s)", o.Species)
	case ObservablePeak:
		return fmt.Sprintf("peak X(%s)", o.Species)
	case ObservableConsumption:
		return fmt.Sprintf("time to %g X0(%s)", o.Fraction, o.Species)
	}
	return o.Kind
}
