package experiment

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/samuelfneumann/snakeql/agent"
	"github.com/samuelfneumann/snakeql/environment"
	"github.com/samuelfneumann/snakeql/experiment/checkpointer"
	"github.com/samuelfneumann/snakeql/experiment/tracker"
	"github.com/samuelfneumann/snakeql/utils/progressbar"
	"gonum.org/v1/gonum/stat"
)

// DefaultReportEvery is the default number of episodes averaged in
// each progress report
const DefaultReportEvery = 1000

// Option configures an Episodic experiment
type Option func(*Episodic)

// WithPhase labels all episodes of the experiment with a curriculum
// phase name
func WithPhase(name string) Option {
	return func(e *Episodic) {
		e.phase = name
	}
}

// WithReportEvery sets the number of episodes averaged in each
// progress report. Values < 1 disable reports.
func WithReportEvery(n int) Option {
	return func(e *Episodic) {
		e.reportEvery = n
	}
}

// WithLogger sets the logger that progress reports are written to
func WithLogger(l *slog.Logger) Option {
	return func(e *Episodic) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTrackers registers Trackers with the experiment
func WithTrackers(t ...tracker.Tracker) Option {
	return func(e *Episodic) {
		e.trackers = append(e.trackers, t...)
	}
}

// WithCheckpointers registers Checkpointers with the experiment
func WithCheckpointers(c ...checkpointer.Checkpointer) Option {
	return func(e *Episodic) {
		e.checkpointers = append(e.checkpointers, c...)
	}
}

// WithProgressBar draws a progress bar to out while the experiment
// runs
func WithProgressBar(out io.Writer) Option {
	return func(e *Episodic) {
		e.barOut = out
	}
}

// Episodic is an Experiment that runs an agent online for a fixed
// number of episodes. No offline evaluation is performed.
type Episodic struct {
	env      environment.Scorer
	agent    agent.Agent
	episodes int

	phase         string
	reportEvery   int
	logger        *slog.Logger
	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer
	barOut        io.Writer
	bar           *progressbar.ManualProgressBar

	current int
	steps   int
	scores  []float64
	blocks  []float64
}

// NewEpisodic creates and returns a new experiment which runs agent on
// env for the given number of episodes
func NewEpisodic(env environment.Scorer, agent agent.Agent, episodes int,
	opts ...Option) (*Episodic, error) {
	if env == nil || agent == nil {
		return nil, fmt.Errorf("newEpisodic: environment and agent must " +
			"not be nil")
	}
	if episodes < 1 {
		return nil, fmt.Errorf("newEpisodic: episodes must be positive "+
			"(episodes = %d)", episodes)
	}

	e := &Episodic{
		env:         env,
		agent:       agent,
		episodes:    episodes,
		reportEvery: DefaultReportEvery,
		logger:      slog.Default(),
		scores:      make([]float64, 0, episodes),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.barOut != nil {
		e.bar = progressbar.NewManualProgressBar(e.barOut, 40, episodes)
	}
	return e, nil
}

// Register registers a tracker.Tracker with the Experiment so that
// data generated during the experiment can be tracked and saved
func (e *Episodic) Register(t tracker.Tracker) {
	e.trackers = append(e.trackers, t)
}

// RunEpisode runs a single episode of the experiment and returns its
// summary
func (e *Episodic) RunEpisode() (tracker.Episode, error) {
	step, err := e.env.Reset()
	if err != nil {
		return tracker.Episode{}, fmt.Errorf("runEpisode: could not reset "+
			"environment: %w", err)
	}
	if err := e.agent.ObserveFirst(step); err != nil {
		return tracker.Episode{}, fmt.Errorf("runEpisode: %w", err)
	}

	var episodeReturn float64
	for !step.Last() {
		// Select action, step in environment
		action := e.agent.SelectAction(step)
		step, _, err = e.env.Step(action)
		if err != nil {
			return tracker.Episode{}, fmt.Errorf("runEpisode: could not "+
				"step environment: %w", err)
		}
		episodeReturn += step.Reward

		// Observe the timestep and step the agent
		if err := e.agent.Observe(action, step); err != nil {
			return tracker.Episode{}, fmt.Errorf("runEpisode: %w", err)
		}
		if err := e.agent.Step(); err != nil {
			return tracker.Episode{}, fmt.Errorf("runEpisode: %w", err)
		}
	}
	e.agent.EndEpisode()

	episode := tracker.Episode{
		Phase:   e.phase,
		Index:   e.current,
		Score:   e.env.Score(),
		Return:  episodeReturn,
		Steps:   step.Number,
		Epsilon: e.epsilon(),
		End:     step.EndType(),
	}
	e.current++
	e.steps += step.Number

	for _, t := range e.trackers {
		t.Track(episode)
	}
	for _, c := range e.checkpointers {
		if err := c.Checkpoint(episode); err != nil {
			return episode, fmt.Errorf("runEpisode: could not "+
				"checkpoint: %w", err)
		}
	}
	return episode, nil
}

// Run runs all remaining episodes of the experiment. Every
// reportEvery episodes, the mean score of the last reportEvery
// episodes is logged.
func (e *Episodic) Run() (Result, error) {
	if e.bar != nil {
		defer e.bar.Close()
	}

	for e.current < e.episodes {
		episode, err := e.RunEpisode()
		if err != nil {
			return e.result(), fmt.Errorf("run: episode %d: %w",
				e.current, err)
		}
		e.scores = append(e.scores, float64(episode.Score))

		if e.reportEvery > 0 && len(e.scores)%e.reportEvery == 0 {
			block := e.scores[len(e.scores)-e.reportEvery:]
			avg := stat.Mean(block, nil)
			e.blocks = append(e.blocks, avg)
			e.report(episode, avg)
		}

		if e.bar != nil {
			e.bar.Increment()
			e.bar.SetSuffix("score: %d  ε: %.3f", episode.Score,
				episode.Epsilon)
			e.bar.Display()
		}
	}
	return e.result(), nil
}

// report logs the mean score of the last reporting block
func (e *Episodic) report(episode tracker.Episode, avg float64) {
	attrs := []any{
		"episode", fmt.Sprintf("%d/%d", episode.Index+1, e.episodes),
		"avg_score", fmt.Sprintf("%.2f", avg),
		"block", e.reportEvery,
		"epsilon", fmt.Sprintf("%.3f", episode.Epsilon),
	}
	if e.phase != "" {
		attrs = append(attrs, "phase", e.phase)
	}
	e.logger.Info("training progress", attrs...)
}

// Save saves all the data cached by the Trackers to disk
func (e *Episodic) Save() error {
	for _, t := range e.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	return nil
}

func (e *Episodic) epsilon() float64 {
	if explorer, ok := e.agent.(agent.Explorer); ok {
		return explorer.Epsilon()
	}
	return 0
}

func (e *Episodic) result() Result {
	scores := make([]float64, len(e.scores))
	copy(scores, e.scores)
	blocks := make([]float64, len(e.blocks))
	copy(blocks, e.blocks)

	return Result{
		Episodes:      e.current,
		Steps:         e.steps,
		Scores:        scores,
		BlockAverages: blocks,
		Epsilon:       e.epsilon(),
	}
}
