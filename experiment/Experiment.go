// Package experiment implements functionality for running an experiment
package experiment

import "github.com/samuelfneumann/snakeql/experiment/tracker"

// Interface Experiment outlines structs that can run experiments.
// Experiments send each finished episode to their Trackers, which cache
// the episode data in RAM to be later saved to disk. The Save() function
// will then take all cached data and save it to disk. This is usually
// performed after an experiment has been run. The Run() method will
// run all episodes of the experiment, and the RunEpisode() function
// will run a single episode.
//
// New Trackers can be registered with an Experiment through the
// constructor or through an Experiment's Register() function.
type Experiment interface {
	Run() (Result, error)
	RunEpisode() (tracker.Episode, error)

	// Save all tracked data to disk
	Save() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)
}

// Result summarizes a finished experiment
type Result struct {
	Episodes int
	Steps    int

	// Scores holds the score of each episode in order
	Scores []float64

	// BlockAverages holds the mean score of each full reporting block
	BlockAverages []float64

	// Epsilon is the exploration rate of the agent after the last
	// episode, or 0 if the agent does not explore
	Epsilon float64
}

// Best returns the highest episode score, or 0 if no episode was run
func (r Result) Best() float64 {
	best := 0.0
	for i, s := range r.Scores {
		if i == 0 || s > best {
			best = s
		}
	}
	return best
}
