// Package policy implements policies over tabular action values
package policy

import (
	"fmt"

	"github.com/samuelfneumann/snakeql/agent/tabular"
	"github.com/samuelfneumann/snakeql/environment"
	"github.com/samuelfneumann/snakeql/timestep"
	"github.com/samuelfneumann/snakeql/utils/floatutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// EGreedy implements an ε-greedy policy over a tabular.Table
type EGreedy struct {
	table   *tabular.Table
	epsilon float64
	eval    bool
	seed    rand.Source // Seed for random number generation
}

// NewEGreedy constructs a new EGreedy policy, where e=epislon is the
// probability with which a random action is selected. The policy
// selects actions for env using the values stored in table, which
// is shared with the learner updating it.
func NewEGreedy(e float64, seed uint64, env environment.Environment,
	table *tabular.Table) (*EGreedy, error) {
	if e < 0 || e > 1 {
		return nil, fmt.Errorf("newEGreedy: epsilon %v ∉ [0, 1]", e)
	}

	actions, err := env.ActionSpec().Actions()
	if err != nil {
		return nil, fmt.Errorf("newEGreedy: %w", err)
	}
	if actions != table.Actions() {
		return nil, fmt.Errorf("newEGreedy: environment has %d actions "+
			"but table has %d", actions, table.Actions())
	}

	return &EGreedy{
		table:   table,
		epsilon: e,
		seed:    rand.NewSource(seed),
	}, nil
}

// Action returns the action index selected in the state described by
// obs. With probability ε the action is drawn uniformly at random,
// otherwise the action with the largest value is chosen, breaking ties
// in favour of the lowest index.
func (p *EGreedy) Action(obs mat.Vector) int {
	values := p.table.GetOrInsert(tabular.Discretize(obs))
	greedyAction := floatutils.ArgMax(values)
	if p.eval || p.epsilon == 0 {
		return greedyAction
	}

	// Calculate the ε probability of choosing any action at random
	numActions := len(values)
	prob := p.epsilon / float64(numActions)
	actionProbabilities := make([]float64, numActions)
	for i := range actionProbabilities {
		actionProbabilities[i] = prob
	}

	// Adjust the probability of choosing the greedy action
	actionProbabilities[greedyAction] += 1.0 - p.epsilon

	// Sample an action from the categorical distribution over actions
	dist := distuv.NewCategorical(actionProbabilities, p.seed)
	return int(dist.Rand())
}

// SelectAction selects an action from an ε-greedy policy
func (p *EGreedy) SelectAction(t timestep.TimeStep) *mat.VecDense {
	action := p.Action(t.Observation)
	return mat.NewVecDense(1, []float64{float64(action)})
}

// Epsilon returns the probability of selecting a random action
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// SetEpsilon sets the probability of selecting a random action
func (p *EGreedy) SetEpsilon(e float64) {
	p.epsilon = floatutils.Clip(e, 0, 1)
}

// Table returns the action values the policy acts on
func (p *EGreedy) Table() *tabular.Table {
	return p.table
}

// Eval sets the policy to evaluation mode, in which it always selects
// the greedy action
func (p *EGreedy) Eval() {
	p.eval = true
}

// Train sets the policy to training mode
func (p *EGreedy) Train() {
	p.eval = false
}

// IsEval returns whether the policy is in evaluation mode
func (p *EGreedy) IsEval() bool {
	return p.eval
}
