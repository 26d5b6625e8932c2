package snake

import (
	"fmt"

	"github.com/samuelfneumann/snakeql/utils/intutils"
)

// Point is a cell of the grid. The origin is the top left corner with
// y increasing downwards.
type Point struct {
	X, Y int
}

// Add returns p translated by q
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Manhattan returns the L1 distance between p and q
func (p Point) Manhattan(q Point) int {
	return intutils.Manhattan(p.X, p.Y, q.X, q.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Action is a heading which the snake can be steered in
type Action int

const (
	Up Action = iota
	Down
	Left
	Right
)

// NumActions is the number of discrete actions
const NumActions int = 4

var vectors = [NumActions]Point{
	Up:    {0, -1},
	Down:  {0, 1},
	Left:  {-1, 0},
	Right: {1, 0},
}

// Vector returns the unit step of the heading
func (a Action) Vector() Point {
	return vectors[a]
}

// Reverse returns the opposite heading
func (a Action) Reverse() Action {
	switch a {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Valid returns whether a is one of the four headings
func (a Action) Valid() bool {
	return a >= Up && a <= Right
}

func (a Action) String() string {
	switch a {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}
