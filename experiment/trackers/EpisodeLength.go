package trackers

import (
	"fmt"

	"github.com/samuelfneumann/snakeql/experiment/tracker"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment.
type EpisodeLength struct {
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength saver which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track caches the number of steps of a finished episode
func (e *EpisodeLength) Track(ep tracker.Episode) {
	e.episodeLengths = append(e.episodeLengths, float64(ep.Steps))
}

// Data returns the episode lengths tracked so far
func (e *EpisodeLength) Data() []float64 {
	return e.episodeLengths
}

// Save saves the data tracked by the EpisodeLength Tracker to disk.
func (e *EpisodeLength) Save() error {
	if err := saveData(e.filename, e.episodeLengths); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
