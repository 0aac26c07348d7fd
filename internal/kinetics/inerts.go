package kinetics

import (
	"strings"

	"github.com/san-kum/kinsens/internal/logging"
	"github.com/san-kum/kinsens/internal/mechanism"
	"github.com/san-kum/kinsens/internal/species"
)

type buildOptions struct {
	caseFold bool
}

// BuildOption configures SolutionWithInerts.
type BuildOption func(*buildOptions)

// WithCaseFold uppercases reaction-side species names before matching them
// against the inert set. Without it the match is exact.
func WithCaseFold() BuildOption {
	return func(o *buildOptions) { o.caseFold = true }
}

// SolutionWithInerts loads mech and returns an ideal-gas solution holding
// every species of the mechanism but only the reactions that involve none
// of the inert species. inert is anything species.FromAny accepts.
func SolutionWithInerts(mech string, inert any, opts ...BuildOption) (*Solution, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	names, err := species.Normalize(inert)
	if err != nil {
		return nil, err
	}

	m, err := mechanism.Load(mech)
	if err != nil {
		return nil, err
	}

	kept := FilterInerts(m.Reactions, names, o.caseFold)

	logging.L().Debugw("filtered inert reactions",
		"mechanism", mech,
		"inert", names,
		"species", len(m.Species),
		"reactions", len(m.Reactions),
		"kept", len(kept),
	)

	return NewSolution(IdealGas, m.Species, kept)
}

// FilterInerts returns the reactions that involve none of inert, in their
// original order. The input slice is not modified.
func FilterInerts(reactions []mechanism.Reaction, inert []string, caseFold bool) []mechanism.Reaction {
	set := make(map[string]struct{}, len(inert))
	for _, n := range inert {
		set[n] = struct{}{}
	}

	kept := make([]mechanism.Reaction, 0, len(reactions))
	for _, r := range reactions {
		if involvesAny(r, set, caseFold) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func involvesAny(r mechanism.Reaction, set map[string]struct{}, caseFold bool) bool {
	for _, name := range r.Species() {
		if caseFold {
			name = strings.ToUpper(name)
		}
		if _, ok := set[name]; ok {
			return true
		}
	}
	return false
}
