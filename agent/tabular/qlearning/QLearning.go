// Package qlearning implements the tabular Q-Learning algorithm with
// an ε-greedy behaviour policy.
//
// The learner and policy share a single tabular.Table. The exploration
// rate decays multiplicatively at the end of every episode down to a
// minimum.
package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/snakeql/agent/tabular"
	"github.com/samuelfneumann/snakeql/agent/tabular/policy"
	"github.com/samuelfneumann/snakeql/environment"
)

// QLearning implements the Q-Learning algorithm
type QLearning struct {
	*QLearner
	*policy.EGreedy
	table *tabular.Table
	seed  uint64
}

// New creates a new QLearning agent for env. If table is nil, the
// agent starts from an empty table; otherwise it continues learning
// the values in table.
func New(env environment.Environment, c Config, table *tabular.Table,
	seed uint64) (*QLearning, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	if table == nil {
		actions, err := env.ActionSpec().Actions()
		if err != nil {
			return nil, fmt.Errorf("new: %w", err)
		}
		table = tabular.NewTable(actions)
	}

	behaviour, err := policy.NewEGreedy(c.Epsilon, seed, env, table)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	discount := env.DiscountSpec().LowerBound.AtVec(0)
	learner := NewQLearner(table, behaviour, c, discount)

	return &QLearning{learner, behaviour, table, seed}, nil
}

// Table returns the action values learned by the agent
func (q *QLearning) Table() *tabular.Table {
	return q.table
}

// Save persists the learned action values to path
func (q *QLearning) Save(path string) error {
	return q.table.Save(path)
}

func (q *QLearning) String() string {
	return fmt.Sprintf("QLearning  |  States: %d  |  ε: %.4f",
		q.table.Len(), q.Epsilon())
}
