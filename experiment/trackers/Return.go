package trackers

import (
	"fmt"

	"github.com/samuelfneumann/snakeql/experiment/tracker"
)

// Return tracks and saves the episodic return in an experiment: the
// sum of the shaped rewards the agent received over each episode.
//
// Note: An episode must finish for this Tracker to save its data.
// If the last episode in an experiment does not finish, that episode's
// return will not be saved.
type Return struct {
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker
func NewReturn(filename string) *Return {
	return &Return{filename: filename}
}

// Track caches the return of a finished episode
func (r *Return) Track(e tracker.Episode) {
	r.episodeReturns = append(r.episodeReturns, e.Return)
}

// Data returns the returns tracked so far
func (r *Return) Data() []float64 {
	return r.episodeReturns
}

// Save saves the data tracked by the Return Tracker to disk.
func (r *Return) Save() error {
	if err := saveData(r.filename, r.episodeReturns); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
