package policy

import (
	"testing"

	"github.com/samuelfneumann/snakeql/agent/tabular"
	"github.com/samuelfneumann/snakeql/environment/snake"
	"github.com/stretchr/testify/require"
)

func newEnv(t *testing.T) *snake.Snake {
	t.Helper()
	env, _, err := snake.New(snake.DefaultConfig(), 0)
	require.NoError(t, err)
	return env
}

func TestGreedyEmptyTable(t *testing.T) {
	env := newEnv(t)
	table := tabular.NewTable(snake.NumActions)
	p, err := NewEGreedy(0, 1, env, table)
	require.NoError(t, err)

	step := env.CurrentTimeStep()
	for i := 0; i < 50; i++ {
		require.Equal(t, 0, p.Action(step.Observation))
		require.Equal(t, 0.0, p.SelectAction(step).AtVec(0))
	}
	require.Equal(t, 1, table.Len())
}

func TestGreedyFollowsTable(t *testing.T) {
	env := newEnv(t)
	table := tabular.NewTable(snake.NumActions)
	p, err := NewGreedy(1, env, table)
	require.NoError(t, err)

	obs := env.CurrentTimeStep().Observation
	row := table.GetOrInsert(tabular.Discretize(obs))
	row[int(snake.Left)] = 1
	row[int(snake.Right)] = 1
	require.Equal(t, int(snake.Left), p.Action(obs))

	row[int(snake.Right)] = 1.5
	require.Equal(t, int(snake.Right), p.Action(obs))
}

func TestEGreedyExplores(t *testing.T) {
	env := newEnv(t)
	table := tabular.NewTable(snake.NumActions)
	p, err := NewEGreedy(1, 3, env, table)
	require.NoError(t, err)

	obs := env.CurrentTimeStep().Observation
	table.GetOrInsert(tabular.Discretize(obs))[0] = 10

	counts := make([]int, snake.NumActions)
	const n = 4000
	for i := 0; i < n; i++ {
		counts[p.Action(obs)]++
	}
	for a, c := range counts {
		require.InDelta(t, n/snake.NumActions, c, n/10,
			"action %d selected %d times", a, c)
	}

	// Evaluation mode never explores
	p.Eval()
	require.True(t, p.IsEval())
	for i := 0; i < 100; i++ {
		require.Equal(t, 0, p.Action(obs))
	}
	p.Train()
	require.False(t, p.IsEval())
}

func TestSetEpsilon(t *testing.T) {
	p, err := NewEGreedy(0.5, 0, newEnv(t), tabular.NewTable(snake.NumActions))
	require.NoError(t, err)

	p.SetEpsilon(0.1)
	require.Equal(t, 0.1, p.Epsilon())
	p.SetEpsilon(2)
	require.Equal(t, 1.0, p.Epsilon())
}

func TestNewEGreedyErrors(t *testing.T) {
	env := newEnv(t)

	_, err := NewEGreedy(-0.1, 0, env, tabular.NewTable(snake.NumActions))
	require.Error(t, err)

	_, err = NewEGreedy(0.1, 0, env, tabular.NewTable(3))
	require.Error(t, err)
}
