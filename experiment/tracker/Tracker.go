// Package tracker defines Trackers, which keep track of experiment data
// and save the data after the experiment has finished
package tracker

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/samuelfneumann/snakeql/timestep"
)

// Episode summarizes a single finished episode of an experiment
type Episode struct {
	Phase   string // Curriculum phase, empty outside of curricula
	Index   int    // Index of the episode within its phase
	Score   int
	Return  float64
	Steps   int
	Epsilon float64 // Exploration rate at the end of the episode
	End     ts.EndType
}

// Interface Tracker keeps track of experiment data and saves the data
// after the experiment has finished
type Tracker interface {
	Track(e Episode)
	Save() error
}

// phaseTracker forwards only the episodes of a single phase
type phaseTracker struct {
	Tracker
	phase string
}

// ForPhase returns a Tracker which tracks only those episodes of a
// curriculum run in the named phase, forwarding them to t. Save calls
// the Save method of t.
func ForPhase(t Tracker, phase string) Tracker {
	return &phaseTracker{t, phase}
}

// Track forwards e to the wrapped Tracker if e belongs to the phase
func (p *phaseTracker) Track(e Episode) {
	if e.Phase == p.phase {
		p.Tracker.Track(e)
	}
}

// LoadData loads and returns the data saved by a Tracker
func LoadData(filename string) ([]float64, error) {
	// Open file
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadData: could not open data file: %w", err)
	}
	defer file.Close()

	// Create the decoder and the variable to store the data in
	dec := gob.NewDecoder(file)
	var data []float64

	// Decode the data
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("loadData: could not decode data: %w", err)
	}

	return data, nil
}
