// Package sensitivity estimates how strongly a scalar observable depends on
// the rate of a single reaction.
//
// The normalized sensitivity of f to reaction i is approximated with a
// one-sided finite difference on the Arrhenius pre-exponential factor:
//
//	s = (f(k0 * (1 + dk)) - f(k0)) / (f(k0) * dk)
package sensitivity

import (
	"math"

	"github.com/san-kum/kinsens/internal/kinerr"
	"github.com/san-kum/kinsens/internal/kinetics"
	"github.com/san-kum/kinsens/internal/logging"
)

// DefaultPerturbation is the relative change applied to the pre-exponential
// factor when none is given.
const DefaultPerturbation = 0.01

// Observable evaluates a scalar quantity of interest for a solution. It must
// not modify sol.
type Observable func(sol *kinetics.Solution) (float64, error)

// Result is a sensitivity coefficient together with the values it was
// derived from.
type Result struct {
	Index       int
	Equation    string
	K0          float64 // unperturbed pre-exponential factor, SI
	F0          float64 // baseline observable
	F1          float64 // perturbed observable
	Dk          float64
	Coefficient float64
}

type options struct {
	dk float64
}

type Option func(*options)

// WithPerturbation sets the relative perturbation dk.
func WithPerturbation(dk float64) Option {
	return func(o *options) { o.dk = dk }
}

// SingleReaction returns the normalized sensitivity of f to the
// pre-exponential factor of reaction idx in sol.
func SingleReaction(sol *kinetics.Solution, idx int, f Observable, dk float64) (float64, error) {
	res, err := Compute(sol, idx, f, WithPerturbation(dk))
	if err != nil {
		return 0, err
	}
	return res.Coefficient, nil
}

// Compute is SingleReaction with options and a full Result. sol is never
// modified; the perturbed evaluation runs on a copy.
func Compute(sol *kinetics.Solution, idx int, f Observable, opts ...Option) (Result, error) {
	const op = "sensitivity.single_reaction"

	o := options{dk: DefaultPerturbation}
	for _, opt := range opts {
		opt(&o)
	}

	rxn, err := sol.Reaction(idx)
	if err != nil {
		return Result{}, err
	}

	if o.dk == 0 || math.IsNaN(o.dk) || math.IsInf(o.dk, 0) {
		return Result{}, kinerr.New(op, kinerr.KindValue, "perturbation must be finite and non-zero, got %g", o.dk).AtIndex(idx)
	}

	f0, err := evaluate(op, f, sol, idx, kinerr.PhaseBaseline)
	if err != nil {
		return Result{}, err
	}
	if f0 == 0 {
		return Result{}, kinerr.New(op, kinerr.KindDivisionByZero, "baseline observable is zero").AtIndex(idx)
	}

	perturbed, err := sol.WithScaledRate(idx, 1+o.dk)
	if err != nil {
		return Result{}, err
	}

	f1, err := evaluate(op, f, perturbed, idx, kinerr.PhasePerturbed)
	if err != nil {
		return Result{}, err
	}

	// divide in two steps so f0*dk cannot underflow to zero
	s := ((f1 - f0) / f0) / o.dk
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return Result{}, kinerr.New(op, kinerr.KindValue,
			"coefficient is not finite (f0=%g, f1=%g, dk=%g)", f0, f1, o.dk).AtIndex(idx)
	}

	res := Result{
		Index:       idx,
		Equation:    rxn.Equation,
		K0:          rxn.Rate.A,
		F0:          f0,
		F1:          f1,
		Dk:          o.dk,
		Coefficient: s,
	}

	logging.L().Debugw("sensitivity computed",
		"reaction", idx,
		"equation", rxn.Equation,
		"k0", res.K0,
		"f0", f0,
		"f1", f1,
		"dk", o.dk,
		"s", res.Coefficient,
	)

	return res, nil
}

func evaluate(op string, f Observable, sol *kinetics.Solution, idx int, phase kinerr.Phase) (float64, error) {
	v, err := f(sol)
	if err != nil {
		e := kinerr.Wrap(op, kinerr.KindObservable, err).AtIndex(idx)
		e.Phase = phase
		return 0, e
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		e := kinerr.New(op, kinerr.KindObservable, "observable returned %g", v).AtIndex(idx)
		e.Phase = phase
		return 0, e
	}
	return v, nil
}
