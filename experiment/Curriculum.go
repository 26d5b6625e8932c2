package experiment

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/snakeql/agent"
	"github.com/samuelfneumann/snakeql/environment"
	"github.com/samuelfneumann/snakeql/environment/envconfig"
	"github.com/samuelfneumann/snakeql/experiment/tracker"
)

// FinalCheckpoint is the name of the table saved after the last phase
// of a curriculum
const FinalCheckpoint = "qtable_final.zst"

// Trainee is an agent that a Curriculum can train: its exploration
// rate can be adjusted between phases and its values saved after each
// phase
type Trainee interface {
	agent.Explorer
	Save(path string) error
}

// Phase is a single stage of a curriculum
type Phase struct {
	Name     string
	Env      environment.Scorer
	Episodes int

	// Epsilon is the exploration rate set before the phase starts.
	// Values <= 0 leave the exploration rate unchanged.
	Epsilon float64

	// EpsilonAfter is the exploration rate set after the phase ends.
	// Values <= 0 leave the exploration rate unchanged.
	EpsilonAfter float64
}

// PhaseResult summarizes a finished curriculum phase
type PhaseResult struct {
	Phase string
	Result
	Checkpoint string
}

// Curriculum trains a single agent on a sequence of environments.
// The agent's values are carried from one phase to the next.
type Curriculum struct {
	agent  Trainee
	phases []Phase
	dir    string
	opts   []Option

	logger   *slog.Logger
	trackers []tracker.Tracker
}

// NewCurriculum returns a Curriculum which trains agent on each phase
// in order, saving a checkpoint of the agent's values to dir after
// each phase. The options are applied to the experiment of each phase.
func NewCurriculum(agent Trainee, phases []Phase, dir string,
	opts ...Option) (*Curriculum, error) {
	if agent == nil {
		return nil, fmt.Errorf("newCurriculum: agent must not be nil")
	}
	if len(phases) == 0 {
		return nil, fmt.Errorf("newCurriculum: no phases")
	}

	seen := make(map[string]bool, len(phases))
	for i, p := range phases {
		if p.Name == "" {
			return nil, fmt.Errorf("newCurriculum: phase %d has no name", i)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("newCurriculum: duplicate phase %q",
				p.Name)
		}
		seen[p.Name] = true

		if p.Env == nil {
			return nil, fmt.Errorf("newCurriculum: phase %q has no "+
				"environment", p.Name)
		}
		if p.Episodes < 1 {
			return nil, fmt.Errorf("newCurriculum: phase %q must have "+
				"a positive number of episodes", p.Name)
		}
		if p.Epsilon > 1 || p.EpsilonAfter > 1 {
			return nil, fmt.Errorf("newCurriculum: phase %q exploration "+
				"rates must not exceed 1", p.Name)
		}
	}

	// Trackers are shared between phases; collect them once so that
	// they are saved once
	probe := &Episodic{logger: slog.Default()}
	for _, opt := range opts {
		opt(probe)
	}

	return &Curriculum{
		agent:    agent,
		phases:   phases,
		dir:      dir,
		opts:     opts,
		logger:   probe.logger,
		trackers: probe.trackers,
	}, nil
}

// Checkpoint returns the path of the table saved after the named phase
func (c *Curriculum) Checkpoint(phase string) string {
	return filepath.Join(c.dir, "qtable_"+phase+".zst")
}

// Run runs all phases in order. Before each phase the exploration rate
// of the agent is raised to the phase's Epsilon; after it, the rate is
// lowered to EpsilonAfter and the agent's values are saved. After the
// last phase, the values are also saved to FinalCheckpoint.
func (c *Curriculum) Run() ([]PhaseResult, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("run: could not create checkpoint "+
			"directory: %w", err)
	}

	results := make([]PhaseResult, 0, len(c.phases))
	for i, p := range c.phases {
		if p.Epsilon > 0 {
			c.agent.SetEpsilon(p.Epsilon)
		}
		c.logger.Info("starting phase", "phase", p.Name,
			"env", fmt.Sprint(p.Env), "episodes", p.Episodes,
			"epsilon", fmt.Sprintf("%.3f", c.agent.Epsilon()))

		opts := append([]Option{WithPhase(p.Name)}, c.opts...)
		exp, err := NewEpisodic(p.Env, c.agent, p.Episodes, opts...)
		if err != nil {
			return results, fmt.Errorf("run: phase %q: %w", p.Name, err)
		}
		result, err := exp.Run()
		if err != nil {
			return results, fmt.Errorf("run: phase %q: %w", p.Name, err)
		}

		if p.EpsilonAfter > 0 {
			c.agent.SetEpsilon(p.EpsilonAfter)
		}

		path := c.Checkpoint(p.Name)
		if err := c.agent.Save(path); err != nil {
			return results, fmt.Errorf("run: phase %q: could not save "+
				"checkpoint: %w", p.Name, err)
		}
		results = append(results, PhaseResult{p.Name, result, path})
		c.logger.Info("finished phase", "phase", p.Name,
			"best_score", result.Best(), "checkpoint", path)

		if i == len(c.phases)-1 {
			final := filepath.Join(c.dir, FinalCheckpoint)
			if err := c.agent.Save(final); err != nil {
				return results, fmt.Errorf("run: could not save final "+
					"table: %w", err)
			}
		}
	}
	return results, nil
}

// Save saves all the data cached by the Trackers to disk
func (c *Curriculum) Save() error {
	for _, t := range c.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	return nil
}

// PhaseConfig configures a single curriculum phase
type PhaseConfig struct {
	Name         string           `yaml:"name" json:"name"`
	Episodes     int              `yaml:"episodes" json:"episodes"`
	Epsilon      float64          `yaml:"epsilon" json:"epsilon"`
	EpsilonAfter float64          `yaml:"epsilon_after" json:"epsilon_after"`
	Env          envconfig.Config `yaml:"env" json:"env"`
}

// DefaultPhaseConfigs returns the three-phase curriculum: food only,
// poison after a delay, and poison from the start. Each phase runs
// the given number of episodes. Exploration is raised at the start of
// the poison phases, when the dynamics of the environment change.
func DefaultPhaseConfigs(episodes int) []PhaseConfig {
	return []PhaseConfig{
		{
			Name:     "no-poison",
			Episodes: episodes,
			Env:      envconfig.NoPoison(),
		},
		{
			Name:         "delayed-poison",
			Episodes:     episodes,
			Epsilon:      0.5,
			EpsilonAfter: 0.1,
			Env:          envconfig.DelayedPoison(),
		},
		{
			Name:         "immediate-poison",
			Episodes:     episodes,
			Epsilon:      0.3,
			EpsilonAfter: 0.01,
			Env:          envconfig.ImmediatePoison(),
		},
	}
}

// Phases creates the environments of the configured phases. The
// environment of phase i is seeded with seed+i.
func Phases(configs []PhaseConfig, seed uint64) ([]Phase, error) {
	phases := make([]Phase, 0, len(configs))
	for i, pc := range configs {
		env, _, err := pc.Env.Create(seed + uint64(i))
		if err != nil {
			return nil, fmt.Errorf("phases: phase %q: %w", pc.Name, err)
		}
		phases = append(phases, Phase{
			Name:         pc.Name,
			Env:          env,
			Episodes:     pc.Episodes,
			Epsilon:      pc.Epsilon,
			EpsilonAfter: pc.EpsilonAfter,
		})
	}
	return phases, nil
}
