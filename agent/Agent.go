// Package agent defines an agent interface
package agent

import (
	"github.com/samuelfneumann/snakeql/environment"
	"github.com/samuelfneumann/snakeql/timestep"
	"gonum.org/v1/gonum/mat"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns action values, and a
// Policy which chooses actions in each state. The Policy chooses which
// actions are taken, and the Learner uses these actions to update the
// Policy.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how action
// values are updated.
//
// The Learner and Policy of an Agent should share the same value table
// so that any changes the Learner makes are reflected in the actions
// the Policy chooses.
type Learner interface {
	// Step performs a single update to the learner
	Step() error

	// Observe records that an action lead to some timestep
	Observe(action mat.Vector, nextObs timestep.TimeStep) error

	// ObserveFirst records the first timestep in an episode
	ObserveFirst(timestep.TimeStep) error

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. In evaluation mode a
// policy acts greedily with respect to its values.
type Policy interface {
	SelectAction(t timestep.TimeStep) *mat.VecDense
	Eval()        // Set policy to evaluation mode
	Train()       // Set policy to training mode
	IsEval() bool // Indicates if in evaluation mode
}

// Explorer is an Agent with an adjustable exploration rate. Curricula
// use it to raise exploration when the environment changes.
type Explorer interface {
	Agent
	Epsilon() float64
	SetEpsilon(float64)
}

// Saver is an Agent whose learned values can be persisted to a file
type Saver interface {
	Agent
	Save(path string) error
}

// Config holds the hyperparameters of an agent and builds agents
// from them
type Config interface {
	CreateAgent(env environment.Environment, seed uint64) (Agent, error)

	// ValidAgent returns whether a could have been built by the Config
	ValidAgent(a Agent) bool

	Validate() error
}
