package policy

import (
	"github.com/samuelfneumann/snakeql/agent/tabular"
	"github.com/samuelfneumann/snakeql/environment"
)

// NewGreedy creates a new Greedy policy
func NewGreedy(seed uint64, env environment.Environment,
	table *tabular.Table) (*EGreedy, error) {
	return NewEGreedy(0.0, seed, env, table)
}
