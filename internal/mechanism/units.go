package mechanism

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Units is the units block of a mechanism file. Zero fields take the
// mechanism defaults (m, kmol, J/kmol).
type Units struct {
	Length           string `yaml:"length"`
	Quantity         string `yaml:"quantity"`
	ActivationEnergy string `yaml:"activation-energy"`
}

func (u Units) withDefaults() Units {
	if u.Length == "" {
		u.Length = "m"
	}
	if u.Quantity == "" {
		u.Quantity = "kmol"
	}
	if u.ActivationEnergy == "" {
		u.ActivationEnergy = "J/kmol"
	}
	return u
}

// lengthFactor returns metres per unit.
func lengthFactor(unit string) (float64, error) {
	switch unit {
	case "m":
		return 1, nil
	case "cm":
		return 1e-2, nil
	case "mm":
		return 1e-3, nil
	}
	return 0, fmt.Errorf("unsupported length unit %q", unit)
}

// quantityFactor returns moles per unit.
func quantityFactor(unit string) (float64, error) {
	switch unit {
	case "mol":
		return 1, nil
	case "kmol":
		return 1e3, nil
	case "molec":
		return 1 / Avogadro, nil
	}
	return 0, fmt.Errorf("unsupported quantity unit %q", unit)
}

// energyFactor returns J/mol per unit.
func energyFactor(unit string) (float64, error) {
	switch unit {
	case "J/mol":
		return 1, nil
	case "kJ/mol":
		return 1e3, nil
	case "J/kmol":
		return 1e-3, nil
	case "cal/mol":
		return 4.184, nil
	case "kcal/mol":
		return 4184, nil
	case "K":
		return GasConstant, nil
	case "eV":
		return 96485.33212, nil
	}
	return 0, fmt.Errorf("unsupported activation-energy unit %q", unit)
}

// preExponentialFactor converts A of a reaction of the given order to
// m^3/mol based units.
func (u Units) preExponentialFactor(order float64) (float64, error) {
	l, err := lengthFactor(u.Length)
	if err != nil {
		return 0, err
	}
	q, err := quantityFactor(u.Quantity)
	if err != nil {
		return 0, err
	}
	return math.Pow(l*l*l/q, order-1), nil
}

// quantity is a number optionally followed by a unit, e.g. "15.3 kcal/mol".
type quantity struct {
	Value float64
	Unit  string
}

func (q *quantity) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", node.Line)
	}
	fields := strings.Fields(node.Value)
	if len(fields) == 0 || len(fields) > 2 {
		return fmt.Errorf("line %d: bad quantity %q", node.Line, node.Value)
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return fmt.Errorf("line %d: bad quantity %q", node.Line, node.Value)
	}
	q.Value = v
	if len(fields) == 2 {
		q.Unit = fields[1]
	}
	return nil
}

func (q quantity) energy(defaultUnit string) (float64, error) {
	unit := q.Unit
	if unit == "" {
		unit = defaultUnit
	}
	f, err := energyFactor(unit)
	if err != nil {
		return 0, err
	}
	return q.Value * f, nil
}
