package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/snakeql/agent"
	"github.com/samuelfneumann/snakeql/environment"
)

// Config represents a configuration for the QLearning agent
type Config struct {
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate"`

	// Epsilon is the initial probability of a random action. It is
	// multiplied by EpsilonDecay at the end of every episode, but never
	// drops below EpsilonMin.
	Epsilon      float64 `yaml:"epsilon" json:"epsilon"`
	EpsilonMin   float64 `yaml:"epsilon_min" json:"epsilon_min"`
	EpsilonDecay float64 `yaml:"epsilon_decay" json:"epsilon_decay"`
}

// DefaultConfig returns the default hyperparameters
func DefaultConfig() Config {
	return Config{
		LearningRate: 0.05,
		Epsilon:      1.0,
		EpsilonMin:   0.01,
		EpsilonDecay: 0.998,
	}
}

// CreateAgent creates the agent from the Config with an empty table
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	return New(env, c, nil, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*QLearning)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("validate: learning rate %v ∉ (0, 1]",
			c.LearningRate)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("validate: epsilon %v ∉ [0, 1]", c.Epsilon)
	}
	if c.EpsilonMin < 0 || c.EpsilonMin > c.Epsilon {
		return fmt.Errorf("validate: minimum epsilon %v ∉ [0, %v]",
			c.EpsilonMin, c.Epsilon)
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("validate: epsilon decay %v ∉ (0, 1]",
			c.EpsilonDecay)
	}
	return nil
}
