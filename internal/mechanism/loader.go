package mechanism

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/san-kum/kinsens/internal/kinerr"
	"gopkg.in/yaml.v3"
)

const loadOp = "mechanism.load"

// Load reads the mechanism at path. A path that does not exist on disk is
// resolved against the bundled library before giving up. All failures are
// kinerr.KindMechanismLoad errors carrying the path.
func Load(path string) (*Mechanism, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, loadError(path, err)
		}
		libData, libErr := readLibrary(filepath.Base(path))
		if libErr != nil {
			return nil, loadError(path, err)
		}
		data = libData
	}

	return Parse(data, path)
}

// Parse decodes mechanism YAML. source is only used in error messages.
func Parse(data []byte, source string) (*Mechanism, error) {
	var dto yamlMechanism
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, loadError(source, err)
	}

	m, err := mapMechanism(source, dto)
	if err != nil {
		return nil, loadError(source, err)
	}
	return m, nil
}

func loadError(path string, err error) error {
	e := kinerr.Wrap(loadOp, kinerr.KindMechanismLoad, err)
	e.Path = path
	return e
}

func mapMechanism(source string, dto yamlMechanism) (*Mechanism, error) {
	if len(dto.Species) == 0 {
		return nil, errors.New("no species defined")
	}

	units := dto.Units.withDefaults()

	m := &Mechanism{Source: source, Thermo: "ideal-gas"}

	byName := make(map[string]yamlSpecies, len(dto.Species))
	for _, s := range dto.Species {
		if s.Name == "" {
			return nil, errors.New("species without a name")
		}
		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("species %q defined twice", s.Name)
		}
		byName[s.Name] = s
	}

	order := make([]string, 0, len(dto.Species))
	if len(dto.Phases) > 0 {
		ph := dto.Phases[0]
		if ph.Thermo != "" {
			m.Thermo = ph.Thermo
		}
		m.Elements = append([]string(nil), ph.Elements...)
		if len(ph.Species) == 1 && ph.Species[0] == "all" {
			ph.Species = nil
		}
		listed := make(map[string]struct{}, len(ph.Species))
		for _, name := range ph.Species {
			if _, ok := byName[name]; !ok {
				return nil, fmt.Errorf("phase %q lists undefined species %q", ph.Name, name)
			}
			if _, dup := listed[name]; dup {
				return nil, fmt.Errorf("phase %q lists species %q twice", ph.Name, name)
			}
			listed[name] = struct{}{}
			order = append(order, name)
		}
	}
	if len(order) == 0 {
		for _, s := range dto.Species {
			order = append(order, s.Name)
		}
	}

	known := make(map[string]struct{}, len(order))
	for _, name := range order {
		s := byName[name]
		m.Species = append(m.Species, Species{Name: s.Name, Composition: s.Composition}.Clone())
		known[name] = struct{}{}
	}

	m.Reactions = make([]Reaction, 0, len(dto.Reactions))
	for i, rd := range dto.Reactions {
		r, err := mapReaction(rd, units, known)
		if err != nil {
			return nil, fmt.Errorf("reaction %d: %w", i, err)
		}
		m.Reactions = append(m.Reactions, r)
	}

	return m, nil
}

func mapReaction(rd yamlReaction, units Units, known map[string]struct{}) (Reaction, error) {
	eq, err := parseEquation(rd.Equation)
	if err != nil {
		return Reaction{}, err
	}

	r := Reaction{
		Equation:          rd.Equation,
		Type:              Elementary,
		Reactants:         eq.reactants,
		Products:          eq.products,
		Reversible:        eq.reversible,
		Duplicate:         rd.Duplicate,
		DefaultEfficiency: 1,
	}

	switch rd.Type {
	case "", string(Elementary):
		if eq.thirdBody {
			return Reaction{}, fmt.Errorf("%q has a third body but type %q", rd.Equation, rd.Type)
		}
	case string(ThreeBody):
		if !eq.thirdBody {
			return Reaction{}, fmt.Errorf("%q: three-body reaction needs M on both sides", rd.Equation)
		}
		r.Type = ThreeBody
	default:
		return Reaction{}, fmt.Errorf("%q: unsupported reaction type %q", rd.Equation, rd.Type)
	}
	if eq.falloff {
		return Reaction{}, fmt.Errorf("%q: falloff reactions are not supported", rd.Equation)
	}

	for _, name := range r.Species() {
		if _, ok := known[name]; !ok {
			return Reaction{}, fmt.Errorf("%q: undeclared species %q", rd.Equation, name)
		}
	}

	if r.Type == ThreeBody {
		if len(rd.Efficiencies) > 0 {
			r.Efficiencies = make(map[string]float64, len(rd.Efficiencies))
			for name, e := range rd.Efficiencies {
				// efficiencies for species outside the phase are ignored
				if _, ok := known[name]; ok {
					r.Efficiencies[name] = e
				}
			}
		}
		if rd.DefaultEfficiency != nil {
			r.DefaultEfficiency = *rd.DefaultEfficiency
		}
	}

	if rd.RateConstant == nil || rd.RateConstant.A == nil {
		return Reaction{}, fmt.Errorf("%q: missing rate-constant", rd.Equation)
	}
	af, err := units.preExponentialFactor(r.Order())
	if err != nil {
		return Reaction{}, err
	}
	ea, err := rd.RateConstant.Ea.energy(units.ActivationEnergy)
	if err != nil {
		return Reaction{}, err
	}
	r.Rate = Arrhenius{
		A:  *rd.RateConstant.A * af,
		B:  rd.RateConstant.B,
		Ea: ea,
	}

	return r, nil
}
