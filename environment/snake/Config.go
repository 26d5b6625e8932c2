package snake

import (
	"fmt"
	"time"
)

const (
	DefaultSize        int           = 20
	DefaultLifetime    time.Duration = 5 * time.Second
	DefaultBlink       time.Duration = 3 * time.Second
	DefaultPoisonDelay time.Duration = 10 * time.Second
	DefaultDiscount    float64       = 0.95

	// MinSize is the smallest grid which fits the starting body plus
	// a free cell on each side
	MinSize int = 4
)

// Config describes a single Snake environment
type Config struct {
	// Size is the number of cells per side of the square grid
	Size int

	// Poison enables the poison item
	Poison bool

	// PoisonImmediate places poison at the start of each episode
	// rather than after PoisonDelay has elapsed
	PoisonImmediate bool

	// Lifetime is how long an item stays Active before it starts
	// blinking, and Blink is how long it blinks before it is moved
	Lifetime time.Duration
	Blink    time.Duration

	// PoisonDelay is the time after the start of an episode at which
	// delayed poison first appears
	PoisonDelay time.Duration

	Discount float64
}

// DefaultConfig returns the default configuration: a 20x20 grid with
// poison disabled
func DefaultConfig() Config {
	return Config{
		Size:        DefaultSize,
		Lifetime:    DefaultLifetime,
		Blink:       DefaultBlink,
		PoisonDelay: DefaultPoisonDelay,
		Discount:    DefaultDiscount,
	}
}

// Validate returns an error wrapping ErrInvalidConfig if the
// configuration cannot describe a playable environment
func (c Config) Validate() error {
	if c.Size < MinSize {
		return fmt.Errorf("validate: %w: size %d < %d", ErrInvalidConfig,
			c.Size, MinSize)
	}
	if c.Lifetime < 0 || c.Blink < 0 || c.PoisonDelay < 0 {
		return fmt.Errorf("validate: %w: durations must be non-negative "+
			"(lifetime %v, blink %v, poison delay %v)", ErrInvalidConfig,
			c.Lifetime, c.Blink, c.PoisonDelay)
	}
	if c.PoisonImmediate && !c.Poison {
		return fmt.Errorf("validate: %w: immediate poison requires poison "+
			"to be enabled", ErrInvalidConfig)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: %w: discount %v ∉ [0, 1]",
			ErrInvalidConfig, c.Discount)
	}
	return nil
}
