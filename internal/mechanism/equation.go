package mechanism

import (
	"fmt"
	"strconv"
	"strings"
)

type parsedEquation struct {
	reactants  []Term
	products   []Term
	reversible bool
	thirdBody  bool
	falloff    bool
}

// parseEquation splits an equation such as "2 O + M <=> O2 + M" into its
// sides. Supported arrows are "<=>", "=" (reversible) and "=>".
func parseEquation(eq string) (parsedEquation, error) {
	var p parsedEquation

	lhs, rhs, arrow, ok := splitArrow(eq)
	if !ok {
		return p, fmt.Errorf("equation %q has no reaction arrow", eq)
	}
	p.reversible = arrow != "=>"

	var lhsM, rhsM bool
	var err error
	p.reactants, lhsM, p.falloff, err = parseSide(lhs)
	if err != nil {
		return p, fmt.Errorf("equation %q: %w", eq, err)
	}
	var rhsFalloff bool
	p.products, rhsM, rhsFalloff, err = parseSide(rhs)
	if err != nil {
		return p, fmt.Errorf("equation %q: %w", eq, err)
	}
	if lhsM != rhsM {
		return p, fmt.Errorf("equation %q: third body on one side only", eq)
	}
	p.thirdBody = lhsM
	p.falloff = p.falloff || rhsFalloff

	if len(p.reactants) == 0 || len(p.products) == 0 {
		return p, fmt.Errorf("equation %q: empty side", eq)
	}
	return p, nil
}

func splitArrow(eq string) (lhs, rhs, arrow string, ok bool) {
	for _, a := range []string{"<=>", "=>", "="} {
		if i := strings.Index(eq, a); i >= 0 {
			return eq[:i], eq[i+len(a):], a, true
		}
	}
	return "", "", "", false
}

func parseSide(side string) (terms []Term, thirdBody, falloff bool, err error) {
	side = strings.TrimSpace(side)
	if strings.Contains(side, "(+") {
		falloff = true
		side = stripFalloff(side)
	}

	for _, raw := range strings.Split(side, " + ") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if raw == "M" {
			thirdBody = true
			continue
		}

		fields := strings.Fields(raw)
		var t Term
		switch len(fields) {
		case 1:
			t = Term{Species: fields[0], Coeff: 1}
		case 2:
			c, perr := strconv.ParseFloat(fields[0], 64)
			if perr != nil || c <= 0 {
				return nil, false, false, fmt.Errorf("bad stoichiometric coefficient %q", fields[0])
			}
			t = Term{Species: fields[1], Coeff: c}
		default:
			return nil, false, false, fmt.Errorf("cannot parse term %q", raw)
		}
		terms = addTerm(terms, t)
	}
	return terms, thirdBody, falloff, nil
}

// addTerm merges repeated species ("H + H") into one term.
func addTerm(terms []Term, t Term) []Term {
	for i := range terms {
		if terms[i].Species == t.Species {
			terms[i].Coeff += t.Coeff
			return terms
		}
	}
	return append(terms, t)
}

func stripFalloff(side string) string {
	i := strings.Index(side, "(+")
	j := strings.Index(side[i:], ")")
	if j < 0 {
		return side[:i]
	}
	return side[:i] + side[i+j+1:]
}
