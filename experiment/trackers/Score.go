package trackers

import (
	"fmt"

	"github.com/samuelfneumann/snakeql/experiment/tracker"
	"gonum.org/v1/gonum/stat"
)

// Score tracks and saves the game score at the end of each episode
type Score struct {
	scores   []float64
	filename string
}

// NewScore returns a new Score Tracker saving to filename
func NewScore(filename string) *Score {
	return &Score{filename: filename}
}

// Track caches the final score of an episode
func (s *Score) Track(e tracker.Episode) {
	s.scores = append(s.scores, float64(e.Score))
}

// Data returns the scores tracked so far
func (s *Score) Data() []float64 {
	return s.scores
}

// BlockAverages returns the mean score of each consecutive block of
// size episodes. A trailing partial block is averaged over the
// episodes it holds.
func (s *Score) BlockAverages(size int) []float64 {
	return BlockAverages(s.scores, size)
}

// Save saves the scores to disk
func (s *Score) Save() error {
	if err := saveData(s.filename, s.scores); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// BlockAverages returns the mean of each consecutive block of size
// values of data
func BlockAverages(data []float64, size int) []float64 {
	if size < 1 {
		panic(fmt.Sprintf("blockAverages: block size must be positive, "+
			"have %d", size))
	}

	averages := make([]float64, 0, (len(data)+size-1)/size)
	for start := 0; start < len(data); start += size {
		end := start + size
		if end > len(data) {
			end = len(data)
		}
		averages = append(averages, stat.Mean(data[start:end], nil))
	}
	return averages
}
