package config

import "sort"

// Presets are bundled runs keyed by mechanism and preset name.
var Presets = map[string]map[string]*Config{
	"h2o2": {
		"stoichiometric": {
			Mechanism: "h2o2.yaml", Reaction: 0, Perturbation: 0.01,
			Observable: ObservableConfig{Kind: ObservablePeak, Species: "OH"},
			Reactor: ReactorConfig{
				Temperature: 1200, Pressure: 101325, Duration: 1e-3, Dt: 1e-8,
				Integrator: "rk45", Tolerance: 1e-6,
				Composition: map[string]float64{"H2": 2, "O2": 1, "N2": 3.76},
			},
		},
		"lean": {
			Mechanism: "h2o2.yaml", Reaction: 0, Perturbation: 0.01,
			Observable: ObservableConfig{Kind: ObservableFinal, Species: "H2O"},
			Reactor: ReactorConfig{
				Temperature: 1200, Pressure: 101325, Duration: 1e-3, Dt: 1e-8,
				Integrator: "rk45", Tolerance: 1e-6,
				Composition: map[string]float64{"H2": 1, "O2": 1, "N2": 3.76},
			},
		},
		"hot": {
			Mechanism: "h2o2.yaml", Reaction: 2, Perturbation: 0.01,
			Observable: ObservableConfig{Kind: ObservableConsumption, Species: "H2", Fraction: 0.5},
			Reactor: ReactorConfig{
				Temperature: 1500, Pressure: 101325, Duration: 1e-2, Dt: 1e-9,
				Integrator: "rk45", Tolerance: 1e-6,
				Composition: map[string]float64{"H2": 2, "O2": 1, "AR": 7},
			},
		},
		"no-atomic-o": {
			Mechanism: "h2o2.yaml", Inert: []string{"O"}, Reaction: 0, Perturbation: 0.01,
			Observable: ObservableConfig{Kind: ObservableFinal, Species: "H2O"},
			Reactor: ReactorConfig{
				Temperature: 1200, Pressure: 101325, Duration: 1e-3, Dt: 1e-8,
				Integrator: "rk45", Tolerance: 1e-6,
				Composition: map[string]float64{"H2": 2, "O2": 1, "H": 0.01, "N2": 3.76},
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(mechanism, preset string) *Config {
	mechPresets, ok := Presets[mechanism]
	if !ok {
		return nil
	}
	cfg, ok := mechPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	if inert, ok := cfg.Inert.([]string); ok {
		c.Inert = append([]string(nil), inert...)
	}
	c.Reactor.Composition = make(map[string]float64, len(cfg.Reactor.Composition))
	for k, v := range cfg.Reactor.Composition {
		c.Reactor.Composition[k] = v
	}
	return &c
}

// ListPresets returns the preset names for mechanism in sorted order.
func ListPresets(mechanism string) []string {
	mechPresets, ok := Presets[mechanism]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(mechPresets))
	for name := range mechPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mechanisms returns the mechanisms that have presets, sorted.
func Mechanisms() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
