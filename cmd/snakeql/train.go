package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/samuelfneumann/snakeql/agent/tabular"
	"github.com/samuelfneumann/snakeql/agent/tabular/qlearning"
	"github.com/samuelfneumann/snakeql/experiment"
	"github.com/samuelfneumann/snakeql/experiment/checkpointer"
	"github.com/samuelfneumann/snakeql/experiment/plot"
	"github.com/samuelfneumann/snakeql/experiment/tracker"
	"github.com/samuelfneumann/snakeql/experiment/trackers"
	"gopkg.in/yaml.v3"
)

// trainFlags are the flags shared by the train and curriculum commands
type trainFlags struct {
	config   *string
	seed     *uint64
	episodes *int
	out      *string
	resume   *string
	db       *string
	chart    *bool
	progress *bool
	verbose  *bool
}

func registerTrainFlags(fs *flag.FlagSet) trainFlags {
	return trainFlags{
		config:   fs.String("config", "", "YAML experiment configuration (optional)"),
		seed:     fs.Uint64("seed", 0, "random seed (overrides the configuration when non-zero)"),
		episodes: fs.Int("episodes", 0, "episodes per run or phase (overrides the configuration when non-zero)"),
		out:      fs.String("out", "", "output directory (overrides the configuration)"),
		resume:   fs.String("resume", "", "continue training the table saved at this path"),
		db:       fs.String("db", "", "SQLite run log (overrides the configuration)"),
		chart:    fs.Bool("chart", false, "write an HTML training curve to the output directory"),
		progress: fs.Bool("progress", false, "draw a progress bar"),
		verbose:  fs.Bool("v", false, "verbose logging"),
	}
}

// load returns the experiment configuration with flag overrides applied
func (f trainFlags) load() (experiment.Config, error) {
	cfg := experiment.DefaultConfig()
	if *f.config != "" {
		var err error
		if cfg, err = experiment.LoadConfig(*f.config); err != nil {
			return experiment.Config{}, err
		}
	}

	if *f.seed != 0 {
		cfg.Seed = *f.seed
	}
	if *f.episodes > 0 {
		cfg.Episodes = *f.episodes
		for i := range cfg.Phases {
			cfg.Phases[i].Episodes = *f.episodes
		}
	}
	if *f.out != "" {
		cfg.OutputDir = *f.out
	}
	if *f.db != "" {
		cfg.Database = *f.db
	}
	return cfg, cfg.Validate()
}

// resumeTable loads the table to continue training from. A missing
// table starts training from scratch; a corrupt one is an error.
func resumeTable(path string, logger *slog.Logger) (*tabular.Table, error) {
	if path == "" {
		return nil, nil
	}

	table, err := tabular.Load(path)
	if errors.Is(err, tabular.ErrTableNotFound) {
		logger.Warn("no table to resume from, starting from scratch",
			"path", path)
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	logger.Info("resuming training", "path", path, "states", table.Len())
	return table, nil
}

// runOptions returns the experiment options shared by train and
// curriculum. The returned function closes the run log.
func runOptions(cfg experiment.Config, f trainFlags, agent *qlearning.QLearning,
	logger *slog.Logger, stderr io.Writer) ([]experiment.Option,
	*trackers.Score, func() error, error) {
	score := trackers.NewScore(filepath.Join(cfg.OutputDir, "scores.bin"))
	opts := []experiment.Option{
		experiment.WithLogger(logger),
		experiment.WithReportEvery(cfg.ReportEvery),
		experiment.WithTrackers(
			score,
			trackers.NewReturn(filepath.Join(cfg.OutputDir, "returns.bin")),
			trackers.NewEpisodeLength(filepath.Join(cfg.OutputDir, "lengths.bin")),
		),
	}
	if *f.progress {
		opts = append(opts, experiment.WithProgressBar(stderr))
	}
	if cfg.CheckpointEvery > 0 {
		next := checkpointer.FilenameEnumerator(0,
			filepath.Join(cfg.OutputDir, "checkpoints", "qtable_"), ".zst")
		opts = append(opts, experiment.WithCheckpointers(
			checkpointer.NewNEpisode(cfg.CheckpointEvery, agent, next)))
	}

	closer := func() error { return nil }
	if cfg.Database != "" {
		desc, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, nil, nil, err
		}

		runLog, err := trackers.OpenSQLite(cfg.Database, uuid.New(),
			string(desc))
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("logging run", "db", cfg.Database, "run", runLog.RunID())
		opts = append(opts, experiment.WithTrackers(runLog))
		closer = runLog.Close
	}
	return opts, score, closer, nil
}

func trainCmd(args []string, stdout, stderr io.Writer) (err error) {
	fs := newFlagSet("train", stderr)
	f := registerTrainFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger := newLogger(stderr, *f.verbose)

	cfg, err := f.load()
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	env, _, err := cfg.Env.Create(cfg.Seed)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	table, err := resumeTable(*f.resume, logger)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	agent, err := qlearning.New(env, cfg.Agent, table, cfg.Seed)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	opts, score, closeLog, err := runOptions(cfg, f, agent, logger, stderr)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	defer func() {
		if cerr := closeLog(); cerr != nil && err == nil {
			err = fmt.Errorf("train: %w", cerr)
		}
	}()

	logger.Info("training", "env", cfg.Env.String(), "episodes",
		cfg.Episodes, "seed", cfg.Seed)
	exp, err := experiment.NewEpisodic(env, agent, cfg.Episodes, opts...)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	result, err := exp.Run()
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if err := exp.Save(); err != nil {
		return fmt.Errorf("train: %w", err)
	}

	final := filepath.Join(cfg.OutputDir, experiment.FinalCheckpoint)
	if err := agent.Save(final); err != nil {
		return fmt.Errorf("train: %w", err)
	}

	if *f.chart {
		every := reportBlock(cfg.ReportEvery, result.Episodes)
		chart := filepath.Join(cfg.OutputDir, "training.html")
		err := plot.Save(chart, "Snake Q-learning", every,
			plot.Series{Name: "train", Values: score.BlockAverages(every)})
		if err != nil {
			return fmt.Errorf("train: %w", err)
		}
	}

	fmt.Fprintf(stdout, "trained %d episodes | best score: %.0f | "+
		"states: %d | ε: %.3f\nsaved %v\n", result.Episodes, result.Best(),
		agent.Table().Len(), agent.Epsilon(), final)
	return nil
}

func curriculumCmd(args []string, stdout, stderr io.Writer) (err error) {
	fs := newFlagSet("curriculum", stderr)
	f := registerTrainFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger := newLogger(stderr, *f.verbose)

	cfg, err := f.load()
	if err != nil {
		return fmt.Errorf("curriculum: %w", err)
	}
	if len(cfg.Phases) == 0 {
		return fmt.Errorf("curriculum: no phases configured")
	}

	phases, err := experiment.Phases(cfg.Phases, cfg.Seed)
	if err != nil {
		return fmt.Errorf("curriculum: %w", err)
	}
	table, err := resumeTable(*f.resume, logger)
	if err != nil {
		return fmt.Errorf("curriculum: %w", err)
	}
	agent, err := qlearning.New(phases[0].Env, cfg.Agent, table, cfg.Seed)
	if err != nil {
		return fmt.Errorf("curriculum: %w", err)
	}

	opts, _, closeLog, err := runOptions(cfg, f, agent, logger, stderr)
	if err != nil {
		return fmt.Errorf("curriculum: %w", err)
	}
	defer func() {
		if cerr := closeLog(); cerr != nil && err == nil {
			err = fmt.Errorf("curriculum: %w", cerr)
		}
	}()

	for _, p := range cfg.Phases {
		scores := trackers.NewScore(filepath.Join(cfg.OutputDir,
			"scores_"+p.Name+".bin"))
		opts = append(opts, experiment.WithTrackers(
			tracker.ForPhase(scores, p.Name)))
	}

	c, err := experiment.NewCurriculum(agent, phases, cfg.OutputDir, opts...)
	if err != nil {
		return fmt.Errorf("curriculum: %w", err)
	}
	results, err := c.Run()
	if err != nil {
		return fmt.Errorf("curriculum: %w", err)
	}
	if err := c.Save(); err != nil {
		return fmt.Errorf("curriculum: %w", err)
	}

	if *f.chart {
		every := reportBlock(cfg.ReportEvery, phases[0].Episodes)
		series := plot.Phases(results)
		for i := range series {
			if len(series[i].Values) == 0 {
				series[i].Values = trackers.BlockAverages(results[i].Scores, every)
			}
		}
		chart := filepath.Join(cfg.OutputDir, "curriculum.html")
		if err := plot.Save(chart, "Snake Q-learning curriculum", every,
			series...); err != nil {
			return fmt.Errorf("curriculum: %w", err)
		}
	}

	for _, r := range results {
		fmt.Fprintf(stdout, "%-18s %6d episodes | best score: %.0f | "+
			"ε: %.3f | %v\n", r.Phase, r.Episodes, r.Best(), r.Epsilon,
			r.Checkpoint)
	}
	fmt.Fprintf(stdout, "saved %v\n",
		filepath.Join(cfg.OutputDir, experiment.FinalCheckpoint))
	return nil
}

// reportBlock returns the block size used to average scores for
// charts: the report interval, or a tenth of the run if reporting is
// disabled or the run is shorter than one report
func reportBlock(reportEvery, episodes int) int {
	if reportEvery > 0 && reportEvery <= episodes {
		return reportEvery
	}
	if episodes >= 10 {
		return episodes / 10
	}
	return 1
}
