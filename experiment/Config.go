package experiment

import (
	"errors"
	"fmt"
	"os"

	"github.com/samuelfneumann/snakeql/agent/tabular/qlearning"
	"github.com/samuelfneumann/snakeql/environment/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration of a training run. Single-stage
// training uses Env; curriculum training uses Phases and ignores Env.
type Config struct {
	Seed            uint64 `yaml:"seed" json:"seed"`
	Episodes        int    `yaml:"episodes" json:"episodes"`
	ReportEvery     int    `yaml:"report_every" json:"report_every"`
	CheckpointEvery int    `yaml:"checkpoint_every" json:"checkpoint_every"`

	// OutputDir holds saved tables, tracked data and charts
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// Database is the path of the SQLite run log. An empty path
	// disables the run log.
	Database string `yaml:"database" json:"database"`

	Env    envconfig.Config `yaml:"env" json:"env"`
	Agent  qlearning.Config `yaml:"agent" json:"agent"`
	Phases []PhaseConfig    `yaml:"phases" json:"phases"`
}

// DefaultConfig returns the configuration of a 10,000 episode training
// run on the food-only environment, followed by the default curriculum
// if curriculum training is requested
func DefaultConfig() Config {
	return Config{
		Seed:        1,
		Episodes:    10_000,
		ReportEvery: DefaultReportEvery,
		OutputDir:   "out",
		Env:         envconfig.NoPoison(),
		Agent:       qlearning.DefaultConfig(),
		Phases:      DefaultPhaseConfigs(10_000),
	}
}

// LoadConfig reads a YAML configuration from path. Fields missing from
// the file keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}

	c := DefaultConfig()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("loadConfig: could not decode "+
				"%v: %w", path, err)
		}
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}
	return c, nil
}

// Validate returns an error describing every invalid field of the
// Config
func (c Config) Validate() error {
	var errs []error
	if c.Episodes < 1 {
		errs = append(errs, fmt.Errorf("episodes %d < 1", c.Episodes))
	}
	if c.CheckpointEvery < 0 {
		errs = append(errs, fmt.Errorf("checkpoint_every %d < 0",
			c.CheckpointEvery))
	}
	if err := c.Env.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("env: %w", err))
	}
	if err := c.Agent.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("agent: %w", err))
	}

	seen := make(map[string]bool, len(c.Phases))
	for i, p := range c.Phases {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("phase %d has no name", i))
		} else if seen[p.Name] {
			errs = append(errs, fmt.Errorf("duplicate phase %q", p.Name))
		}
		seen[p.Name] = true

		if p.Episodes < 1 {
			errs = append(errs, fmt.Errorf("phase %q: episodes %d < 1",
				p.Name, p.Episodes))
		}
		if p.Epsilon < 0 || p.Epsilon > 1 || p.EpsilonAfter < 0 ||
			p.EpsilonAfter > 1 {
			errs = append(errs, fmt.Errorf("phase %q: exploration rates "+
				"must be in [0, 1]", p.Name))
		}
		if err := p.Env.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("phase %q: env: %w", p.Name, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}
