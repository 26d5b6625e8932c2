package snake

// Snapshot is a read-only copy of the public state of a Snake
// environment. Renderers and the observation encoder work on
// Snapshots so that they never hold references into a running
// environment.
type Snapshot struct {
	Size          int
	Body          []Point
	Heading       Action
	Food          Item
	Poison        Item
	PoisonEnabled bool
	Score         int
	Steps         int
	Done          bool

	// LastAction is -1 before the first step of an episode
	LastAction Action
	LastReward float64
}

// Head returns the position of the snake's head
func (s Snapshot) Head() Point {
	return s.Body[0]
}

// PoisonPresent returns whether poison is on the grid and enabled
func (s Snapshot) PoisonPresent() bool {
	return s.PoisonEnabled && s.Poison.Present
}

// Occupied returns whether p is covered by any body segment other
// than the head
func (s Snapshot) Occupied(p Point) bool {
	for _, seg := range s.Body[1:] {
		if seg == p {
			return true
		}
	}
	return false
}
