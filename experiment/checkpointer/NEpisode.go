package checkpointer

import (
	"fmt"

	"github.com/samuelfneumann/snakeql/experiment/tracker"
)

// nEpisode implements checkpointing every N episodes
type nEpisode struct {
	interval int
	object   Serializable // Object to save

	// filename returns the string filename of the file to save the object
	// in.
	//
	// If each serialized object should be saved in a separate file with
	// each file having an incremented number as a suffix (e.g.
	// qtable1.zst, qtable2.zst, ..., qtableK.zst), then simply use the
	// static function FilenameEnumerator, which will return a function
	// that will enumerate filenames. To overwrite a single file, use a
	// function returning a constant.
	filename func() string
}

// NewNEpisode returns a checkpointer that checkpoints every n episodes
// of each phase
func NewNEpisode(n int, object Serializable,
	filename func() string) Checkpointer {
	if n < 1 {
		panic(fmt.Sprintf("newNEpisode: interval must be positive, have %d",
			n))
	}
	return &nEpisode{
		interval: n,
		object:   object,
		filename: filename,
	}
}

// Checkpoint checkpoints the Checkpointer's tracked object by calling
// its Save() method after every interval episodes
func (n *nEpisode) Checkpoint(e tracker.Episode) error {
	if (e.Index+1)%n.interval == 0 {
		if err := n.object.Save(n.filename()); err != nil {
			return fmt.Errorf("checkpoint: %w", err)
		}
	}
	return nil
}
