// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	ts "github.com/samuelfneumann/snakeql/timestep"
	"gonum.org/v1/gonum/mat"
)

// Ender determines whether an episode should end on some TimeStep
type Ender interface {
	// End returns whether the episode should end on the argument
	// TimeStep. If so, End sets the StepType of the TimeStep to
	// timestep.Last and records the reason the episode ended.
	End(*ts.TimeStep) bool
}

// Environment implements a simulated environment
type Environment interface {
	// Reset resets the environment between episodes and returns the
	// first TimeStep of the new episode
	Reset() (ts.TimeStep, error)

	// Step takes a single environmental step given some action and
	// returns the next TimeStep and whether the episode has ended
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)

	// CurrentTimeStep returns the most recent TimeStep
	CurrentTimeStep() ts.TimeStep

	ObservationSpec() Spec
	ActionSpec() Spec
	DiscountSpec() Spec
}

// Scorer is an Environment which keeps a game score separately from
// the reward signal. Training loops report the score of Scorers as
// the outcome of an episode.
type Scorer interface {
	Environment
	Score() int
}
