package qlearning

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/snakeql/agent/tabular"
	"github.com/samuelfneumann/snakeql/timestep"
	"gonum.org/v1/gonum/mat"
)

// explorer is a policy whose exploration rate decays over time
type explorer interface {
	Epsilon() float64
	SetEpsilon(float64)
}

// QLearner implements the update functionality for the Q-Learning
// algorithm. After each episode, the QLearner decays the exploration
// rate of the policy it learns for.
type QLearner struct {
	table        *tabular.Table
	policy       explorer
	learningRate float64
	discount     float64
	epsilonMin   float64
	epsilonDecay float64

	step     timestep.TimeStep
	action   int
	nextStep timestep.TimeStep
	observed bool
}

// NewQLearner creates a new QLearner which updates table and decays
// the exploration rate of policy
func NewQLearner(table *tabular.Table, policy explorer, c Config,
	discount float64) *QLearner {
	return &QLearner{
		table:        table,
		policy:       policy,
		learningRate: c.LearningRate,
		discount:     discount,
		epsilonMin:   c.EpsilonMin,
		epsilonDecay: c.EpsilonDecay,
	}
}

// ObserveFirst observes and records the first episodic timestep
func (q *QLearner) ObserveFirst(t timestep.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observeFirst: timestep %d is not the first "+
			"of an episode", t.Number)
	}
	q.step = timestep.TimeStep{}
	q.nextStep = t
	q.observed = false
	return nil
}

// Observe observes and records any timestep other than the first timestep
func (q *QLearner) Observe(action mat.Vector, nextStep timestep.TimeStep) error {
	if action.Len() != 1 {
		return fmt.Errorf("observe: value-based methods cannot have "+
			"multi-dimensional actions (action dim = %d)", action.Len())
	}
	if q.nextStep.Observation == nil {
		return fmt.Errorf("observe: no first timestep observed")
	}

	q.step = q.nextStep
	q.action = int(action.AtVec(0))
	q.nextStep = nextStep
	q.observed = true
	return nil
}

// Step updates the action value of the last observed transition.
// Transitions into a terminal state do not bootstrap; transitions cut
// off by a step limit do.
func (q *QLearner) Step() error {
	if !q.observed {
		return fmt.Errorf("step: no transition observed")
	}
	q.observed = false

	terminal := q.nextStep.Last() &&
		q.nextStep.EndType() != timestep.Cutoff
	q.Update(q.step.Observation, q.action, q.nextStep.Reward,
		q.nextStep.Observation, terminal)

	if q.nextStep.Last() && !terminal {
		q.decay()
	}
	return nil
}

// Update moves the value of taking action in obs towards the target
// reward + γ max_a Q(nextObs, a), or towards reward alone if done. If
// done, the exploration rate is decayed.
func (q *QLearner) Update(obs mat.Vector, action int, reward float64,
	nextObs mat.Vector, done bool) {
	values := q.table.GetOrInsert(tabular.Discretize(obs))

	target := reward
	if !done {
		target += q.discount * q.table.Max(tabular.Discretize(nextObs))
	}
	values[action] += q.learningRate * (target - values[action])

	if done {
		q.decay()
	}
}

// TdError returns the TD error of a transition without updating
func (q *QLearner) TdError(obs mat.Vector, action int, reward float64,
	nextObs mat.Vector, done bool) float64 {
	target := reward
	if !done {
		target += q.discount * q.table.Max(tabular.Discretize(nextObs))
	}
	return target - q.table.GetOrInsert(tabular.Discretize(obs))[action]
}

// decay multiplies the exploration rate by the decay factor, never
// dropping it below the minimum
func (q *QLearner) decay() {
	if q.policy == nil {
		return
	}
	e := math.Max(q.epsilonMin, q.policy.Epsilon()*q.epsilonDecay)
	q.policy.SetEpsilon(e)
}

// EndEpisode performs cleanup at the end of an episode
func (q *QLearner) EndEpisode() {
	q.step = timestep.TimeStep{}
	q.nextStep = timestep.TimeStep{}
	q.observed = false
}
