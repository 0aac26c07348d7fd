// Package species canonicalizes user-supplied species names.
package species

import (
	"fmt"
	"strings"

	"github.com/san-kum/kinsens/internal/kinerr"
)

const op = "species.normalize"

// Spec is either a single species name or an ordered list of names.
type Spec struct {
	names  []string
	single bool
}

// One returns a Spec holding a single name.
func One(name string) Spec {
	return Spec{names: []string{name}, single: true}
}

// Many returns a Spec holding names in order. Duplicates are kept.
func Many(names ...string) Spec {
	c := make([]string, len(names))
	copy(c, names)
	return Spec{names: c}
}

// IsSingle reports whether s was built from a single name.
func (s Spec) IsSingle() bool { return s.single }

// Len returns the number of names in s.
func (s Spec) Len() int { return len(s.names) }

// Normalize returns the names uppercased, in input order.
func (s Spec) Normalize() []string {
	out := make([]string, len(s.names))
	for i, n := range s.names {
		out[i] = strings.ToUpper(n)
	}
	return out
}

func (s Spec) validate() error {
	for i, n := range s.names {
		if strings.TrimSpace(n) == "" {
			return kinerr.New(op, kinerr.KindValue, "species name at position %d is empty", i)
		}
	}
	return nil
}

// FromAny converts a dynamically typed value into a Spec. Accepted inputs are
// string, []string, []any holding only strings, and Spec itself.
func FromAny(v any) (Spec, error) {
	var s Spec
	switch val := v.(type) {
	case Spec:
		s = val
	case string:
		s = One(val)
	case []string:
		s = Many(val...)
	case []any:
		names := make([]string, len(val))
		for i, e := range val {
			str, ok := e.(string)
			if !ok {
				return Spec{}, kinerr.New(op, kinerr.KindType, "bad species type at position %d: %T", i, e)
			}
			names[i] = str
		}
		s = Many(names...)
	default:
		return Spec{}, kinerr.New(op, kinerr.KindType, "bad species type: %s", typeName(v))
	}

	if err := s.validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// Normalize validates v and returns its names uppercased.
func Normalize(v any) ([]string, error) {
	s, err := FromAny(v)
	if err != nil {
		return nil, err
	}
	return s.Normalize(), nil
}

// Parse splits a comma-separated flag value into a Spec.
func Parse(csv string) Spec {
	if strings.TrimSpace(csv) == "" {
		return Many()
	}
	parts := strings.Split(csv, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 1 {
		return One(parts[0])
	}
	return Many(parts...)
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
