// Package envconfig provides configuration structs for configuring
// Snake environments with default item timings and rewards.
// Environment configurations in this package are YAML and JSON
// serializable.
package envconfig

import (
	"fmt"
	"time"

	env "github.com/samuelfneumann/snakeql/environment"
	"github.com/samuelfneumann/snakeql/environment/snake"
	ts "github.com/samuelfneumann/snakeql/timestep"
)

// ClockName names the clock an environment reads simulated time from
type ClockName string

const (
	// Step advances simulated time by StepPeriodMs on every Reset and
	// Step, so item lifecycles depend only on the number of moves
	Step ClockName = "step"

	// Wall uses real elapsed time, for interactive replays
	Wall ClockName = "wall"
)

// Config implements a specific configuration of the Snake environment.
// Durations are stored in milliseconds so that configuration files
// stay readable.
type Config struct {
	Size            int       `yaml:"size" json:"size"`
	Poison          bool      `yaml:"poison" json:"poison"`
	PoisonImmediate bool      `yaml:"poison_immediate" json:"poison_immediate"`
	LifetimeMs      int64     `yaml:"lifetime_ms" json:"lifetime_ms"`
	BlinkMs         int64     `yaml:"blink_ms" json:"blink_ms"`
	PoisonDelayMs   int64     `yaml:"poison_delay_ms" json:"poison_delay_ms"`
	Clock           ClockName `yaml:"clock" json:"clock"`
	StepPeriodMs    int64     `yaml:"step_period_ms" json:"step_period_ms"`
	EpisodeCutoff   uint      `yaml:"episode_cutoff" json:"episode_cutoff"`
	Discount        float64   `yaml:"discount" json:"discount"`
}

// DefaultEpisodeCutoff is the number of steps after which training
// episodes are cut off, so that a policy which circles forever without
// eating still finishes its episodes
const DefaultEpisodeCutoff uint = 10_000

// NoPoison returns the configuration of the first curriculum stage:
// food only
func NoPoison() Config {
	cfg := snake.DefaultConfig()
	return Config{
		Size:          cfg.Size,
		LifetimeMs:    cfg.Lifetime.Milliseconds(),
		BlinkMs:       cfg.Blink.Milliseconds(),
		PoisonDelayMs: cfg.PoisonDelay.Milliseconds(),
		Clock:         Step,
		StepPeriodMs:  snake.DefaultStepPeriod.Milliseconds(),
		EpisodeCutoff: DefaultEpisodeCutoff,
		Discount:      cfg.Discount,
	}
}

// DelayedPoison returns the configuration of the second curriculum
// stage: poison appears once the poison delay has elapsed
func DelayedPoison() Config {
	c := NoPoison()
	c.Poison = true
	return c
}

// ImmediatePoison returns the configuration of the final curriculum
// stage: poison is on the grid from the start of each episode
func ImmediatePoison() Config {
	c := DelayedPoison()
	c.PoisonImmediate = true
	return c
}

// SnakeConfig converts c into the configuration of the environment
func (c Config) SnakeConfig() snake.Config {
	return snake.Config{
		Size:            c.Size,
		Poison:          c.Poison,
		PoisonImmediate: c.PoisonImmediate,
		Lifetime:        time.Duration(c.LifetimeMs) * time.Millisecond,
		Blink:           time.Duration(c.BlinkMs) * time.Millisecond,
		PoisonDelay:     time.Duration(c.PoisonDelayMs) * time.Millisecond,
		Discount:        c.Discount,
	}
}

// Validate returns an error if the Config cannot be used to create an
// environment
func (c Config) Validate() error {
	if err := c.SnakeConfig().Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	switch c.Clock {
	case Step, "":
		if c.StepPeriodMs < 0 {
			return fmt.Errorf("validate: %w: step period %vms < 0",
				snake.ErrInvalidConfig, c.StepPeriodMs)
		}
	case Wall:
	default:
		return fmt.Errorf("validate: %w: no such clock %q",
			snake.ErrInvalidConfig, c.Clock)
	}
	return nil
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment. Further options are applied
// after the ones implied by the Config.
func (c Config) Create(seed uint64, opts ...snake.Option) (*snake.Snake,
	ts.TimeStep, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}

	var clock env.Clock
	if c.Clock == Wall {
		clock = env.NewWallClock()
	} else {
		clock = env.NewStepClock(time.Duration(c.StepPeriodMs) *
			time.Millisecond)
	}

	options := []snake.Option{snake.WithClock(clock)}
	if c.EpisodeCutoff > 0 {
		options = append(options,
			snake.WithEnder(env.NewStepLimit(int(c.EpisodeCutoff))))
	}
	options = append(options, opts...)

	s, step, err := snake.New(c.SnakeConfig(), seed, options...)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}
	return s, step, nil
}

// String returns a short description of the configuration
func (c Config) String() string {
	poison := "none"
	if c.PoisonImmediate {
		poison = "immediate"
	} else if c.Poison {
		poison = fmt.Sprintf("after %vms", c.PoisonDelayMs)
	}
	return fmt.Sprintf("Snake %dx%d | poison: %v", c.Size, c.Size, poison)
}
