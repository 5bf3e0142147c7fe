// Package weight holds the ternary activation an intent assigns to a
// concept or perspective.
//
// Activation is deliberately unrelated to graph.JoinCost: the two share the
// word "weight" in seed documents and nothing else.
package weight

import (
	"fmt"

	"github.com/teranos/schemalens/lenserr"
)

// Activation is one of Suppressed, Neutral or Elevated.
// The zero value is Neutral.
type Activation int8

const (
	Neutral Activation = iota
	Suppressed
	Elevated
)

// ParseActivation converts the wire integer (-1, 0, 1).
func ParseActivation(v int) (Activation, error) {
	switch v {
	case -1:
		return Suppressed, nil
	case 0:
		return Neutral, nil
	case 1:
		return Elevated, nil
	}
	return Neutral, lenserr.New(lenserr.KindInvalidWeightValue,
		"weight %d is not one of -1, 0, 1", v).
		With(lenserr.KeyValue, fmt.Sprint(v))
}

// Int returns the wire integer.
func (a Activation) Int() int {
	switch a {
	case Suppressed:
		return -1
	case Elevated:
		return 1
	}
	return 0
}

func (a Activation) String() string {
	switch a {
	case Suppressed:
		return "suppressed"
	case Elevated:
		return "elevated"
	}
	return "neutral"
}

// MarshalText renders the activation by name in JSON and YAML output.
func (a Activation) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}
