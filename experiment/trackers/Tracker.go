// Package trackers implements Trackers, which track and save data in
// an experiment
package trackers

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/snakeql/experiment/tracker"
)

// Tracker is a tracker.Tracker, redeclared for brevity
type Tracker = tracker.Tracker

// saveData gob encodes data to filename
func saveData(filename string, data []float64) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	// Open the file to save to
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not open save file: %w", err)
	}
	defer file.Close()

	// Encode and save the file
	en := gob.NewEncoder(file)
	if err = en.Encode(data); err != nil {
		return fmt.Errorf("could not encode data: %w", err)
	}
	return file.Close()
}
