// Package checkpointer implements Checkpointers, which periodically
// save the learned state of an agent during an experiment
package checkpointer

import "github.com/samuelfneumann/snakeql/experiment/tracker"

// Serializable is an object that can be saved to a file
type Serializable interface {
	Save(path string) error
}

// Checkpointer checkpoints/saves serializable objects based on
// finished episodes
type Checkpointer interface {
	Checkpoint(tracker.Episode) error
}
