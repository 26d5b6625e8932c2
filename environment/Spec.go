package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SpecType names the quantity a Spec describes
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

func (s SpecType) String() string {
	switch s {
	case Action:
		return "Action"
	case Observation:
		return "Observation"
	case Discount:
		return "Discount"
	default:
		return "Reward"
	}
}

// Cardinality tells whether the values of a Spec are discrete or
// continuous
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec describes the layout of the actions, observations or discounts
// of an environment: the length of the vectors, their element-wise
// bounds, and whether they take discrete or continuous values.
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec returns a new Spec. Panics if the bounds do not have the
// length of shape.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() || shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("newSpec: %v spec of length %d has bounds of "+
			"length %d and %d", t, shape.Len(), lowerBound.Len(),
			upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// Actions returns the number of actions described by a discrete,
// 1-dimensional action Spec whose actions are numbered from 0
func (s Spec) Actions() (int, error) {
	if s.Type != Action {
		return 0, fmt.Errorf("actions: %v spec does not describe actions",
			s.Type)
	}
	if s.Shape.Len() != 1 {
		return 0, fmt.Errorf("actions: actions must be 1-dimensional "+
			"(action dim = %d)", s.Shape.Len())
	}
	if s.Cardinality != Discrete {
		return 0, fmt.Errorf("actions: actions must be discrete")
	}
	if s.LowerBound.AtVec(0) != 0 {
		return 0, fmt.Errorf("actions: actions must be numbered from 0")
	}
	return int(s.UpperBound.AtVec(0)) + 1, nil
}
