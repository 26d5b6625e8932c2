package envconfig

import (
	"testing"
	"time"

	"github.com/samuelfneumann/snakeql/environment/snake"
	ts "github.com/samuelfneumann/snakeql/timestep"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

func TestPresets(t *testing.T) {
	for _, c := range []Config{NoPoison(), DelayedPoison(), ImmediatePoison()} {
		require.NoError(t, c.Validate(), c.String())
	}

	require.False(t, NoPoison().Poison)
	require.True(t, DelayedPoison().Poison)
	require.False(t, DelayedPoison().PoisonImmediate)
	require.True(t, ImmediatePoison().PoisonImmediate)

	cfg := NoPoison().SnakeConfig()
	require.Equal(t, snake.DefaultConfig(), cfg)
	require.Equal(t, 5*time.Second, cfg.Lifetime)
}

func TestDecodeYAML(t *testing.T) {
	doc := `
size: 12
poison: true
poison_immediate: true
lifetime_ms: 2000
blink_ms: 1000
poison_delay_ms: 0
clock: step
step_period_ms: 50
episode_cutoff: 3
discount: 0.9
`
	var c Config
	require.NoError(t, yaml.Unmarshal([]byte(doc), &c))
	require.Equal(t, 12, c.Size)
	require.Equal(t, 2*time.Second, c.SnakeConfig().Lifetime)

	s, step, err := c.Create(1)
	require.NoError(t, err)
	require.True(t, step.First())
	require.True(t, s.Snapshot().Poison.Present)

	// The episode is cut off after EpisodeCutoff steps
	actions := []snake.Action{snake.Down, snake.Left, snake.Up}
	var done bool
	for i, a := range actions {
		require.False(t, done, "episode ended early at step %d", i)
		step, done, err = s.Step(mat.NewVecDense(1, []float64{float64(a)}))
		require.NoError(t, err)
	}
	require.True(t, done)
	require.True(t, step.Last())
	require.Equal(t, ts.Cutoff, step.EndType())
}

func TestValidate(t *testing.T) {
	c := NoPoison()
	c.Clock = "sundial"
	require.ErrorIs(t, c.Validate(), snake.ErrInvalidConfig)

	c = NoPoison()
	c.PoisonImmediate = true
	_, _, err := c.Create(0)
	require.ErrorIs(t, err, snake.ErrInvalidConfig)
}
