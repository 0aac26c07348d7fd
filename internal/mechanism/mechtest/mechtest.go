// Package mechtest holds mechanism fixtures shared by tests.
package mechtest

import (
	"os"
	"path/filepath"
)

// ThreeReactions has three reactions; only the second involves O.
const ThreeReactions = `
units: {length: cm, quantity: mol, activation-energy: cal/mol}
phases:
- name: gas
  thermo: ideal-gas
  elements: [O, H, N]
  species: [H2, O2, H, O, OH, H2O, N2]
species:
- {name: H2, composition: {H: 2}}
- {name: O2, composition: {O: 2}}
- {name: H, composition: {H: 1}}
- {name: O, composition: {O: 1}}
- {name: OH, composition: {O: 1, H: 1}}
- {name: H2O, composition: {H: 2, O: 1}}
- {name: N2, composition: {N: 2}}
reactions:
- equation: H2 + OH => H2O + H
  rate-constant: {A: 2.16e+08, b: 1.51, Ea: 3430.0}
- equation: O + H2 <=> H + OH
  rate-constant: {A: 5.08e+04, b: 2.67, Ea: 6290.0}
- equation: H + OH + M <=> H2O + M
  type: three-body
  rate-constant: {A: 3.8e+22, b: -2.0, Ea: 0.0}
  efficiencies: {H2: 2.5, H2O: 12.0}
`

// Decay is the first-order isomerization A => B with k = 1/s, plus an
// inert diluent.
const Decay = `
units: {length: m, quantity: mol, activation-energy: J/mol}
species:
- {name: A, composition: {X: 1}}
- {name: B, composition: {X: 1}}
- {name: AR, composition: {Ar: 1}}
reactions:
- equation: A => B
  rate-constant: {A: 1.0, b: 0.0, Ea: 0.0}
`

// Chain is A => B => C with rate constants 2/s and 1/s.
const Chain = `
units: {length: m, quantity: mol, activation-energy: J/mol}
species:
- {name: A, composition: {X: 1}}
- {name: B, composition: {X: 1}}
- {name: C, composition: {X: 1}}
reactions:
- equation: A => B
  rate-constant: {A: 2.0, b: 0.0, Ea: 0.0}
- equation: B => C
  rate-constant: {A: 1.0, b: 0.0, Ea: 0.0}
`

// Write stores content as name under dir and returns the path.
func Write(dir, name, content string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
