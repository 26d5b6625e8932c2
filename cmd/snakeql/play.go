package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/samuelfneumann/snakeql/agent/tabular"
	"github.com/samuelfneumann/snakeql/agent/tabular/policy"
	"github.com/samuelfneumann/snakeql/environment/envconfig"
	"github.com/samuelfneumann/snakeql/experiment"
	"github.com/samuelfneumann/snakeql/render"
)

// loadModel loads a trained table, describing the two ways in which
// loading can fail
func loadModel(path string) (*tabular.Table, error) {
	table, err := tabular.Load(path)
	switch {
	case errors.Is(err, tabular.ErrTableNotFound):
		return nil, fmt.Errorf("trained model not found at %v, run "+
			"`snakeql train` or `snakeql curriculum` first", path)
	case errors.Is(err, tabular.ErrCorruptTable):
		return nil, fmt.Errorf("model file %v is corrupt: %w", path, err)
	case err != nil:
		return nil, err
	}
	return table, nil
}

// envPreset returns the environment configuration named by poison
func envPreset(poison string) (envconfig.Config, error) {
	switch poison {
	case "none":
		return envconfig.NoPoison(), nil
	case "delayed":
		return envconfig.DelayedPoison(), nil
	case "immediate":
		return envconfig.ImmediatePoison(), nil
	}
	return envconfig.Config{}, fmt.Errorf("unknown poison mode %q", poison)
}

func playCmd(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("play", stderr)
	model := fs.String("model", "out/"+experiment.FinalCheckpoint, "trained table")
	episodes := fs.Int("episodes", 1, "games to play")
	seed := fs.Uint64("seed", 1, "random seed")
	poison := fs.String("poison", "immediate", "poison mode: none, delayed or immediate")
	size := fs.Int("size", 0, "grid size (default 20)")
	maxSteps := fs.Uint("max-steps", envconfig.DefaultEpisodeCutoff, "steps after which a game is cut off (0 for no limit)")
	fast := fs.Bool("fast", false, "replay without pacing, on simulated time")
	pause := fs.Duration("pause", 3*time.Second, "pause after each game over")
	noColour := fs.Bool("no-color", false, "disable colours")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *episodes < 1 {
		return fmt.Errorf("play: episodes must be positive")
	}

	table, err := loadModel(*model)
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}

	cfg, err := envPreset(*poison)
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}
	if *size > 0 {
		cfg.Size = *size
	}
	cfg.EpisodeCutoff = *maxSteps
	if !*fast {
		cfg.Clock = envconfig.Wall
	}

	env, step, err := cfg.Create(*seed)
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}
	greedy, err := policy.NewGreedy(*seed, env, table)
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}
	greedy.Eval()

	term := render.NewTerminal(stdout, render.WithColours(!*noColour),
		render.WithClear(!*fast))
	for i := 0; i < *episodes; i++ {
		if i > 0 {
			if step, err = env.Reset(); err != nil {
				return fmt.Errorf("play: %w", err)
			}
		}

		for {
			if err := term.Render(env.Snapshot()); err != nil {
				return fmt.Errorf("play: %w", err)
			}
			if step.Last() {
				break
			}
			if !*fast {
				time.Sleep(render.FrameDelay(env.Score()))
			}

			step, _, err = env.Step(greedy.SelectAction(step))
			if err != nil {
				return fmt.Errorf("play: %w", err)
			}
		}

		fmt.Fprintf(stdout, "game %d: score %d in %d steps (%v)\n", i+1,
			env.Score(), step.Number, step.EndType())
		if !*fast && *pause > 0 {
			time.Sleep(*pause)
		}
	}
	return nil
}

func inspectCmd(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("inspect", stderr)
	model := fs.String("model", "out/"+experiment.FinalCheckpoint, "trained table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	table, err := loadModel(*model)
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}

	stats := table.Stats()
	fmt.Fprintf(stdout, "table:   %v\n", *model)
	fmt.Fprintf(stdout, "actions: %d\n", table.Actions())
	fmt.Fprintf(stdout, "states:  %d (%d visited)\n", stats.States,
		stats.Visited)
	fmt.Fprintf(stdout, "values:  min %.3f | max %.3f | mean %.3f ± %.3f\n",
		stats.Min, stats.Max, stats.Mean, stats.StdDev)
	return nil
}
