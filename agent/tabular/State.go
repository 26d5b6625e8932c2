// Package tabular implements value tables over a discretized snake
// observation, for use by tabular control algorithms
package tabular

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/snakeql/environment/snake"
	"github.com/samuelfneumann/snakeql/utils/floatutils"
	"gonum.org/v1/gonum/mat"
)

const (
	// Directions is the number of angular wedges directions are
	// bucketed into
	Directions int = 8

	// Levels is the number of bands the poison distance is bucketed
	// into
	Levels int = 3

	// NoPoisonDir and NoPoisonLevel are the buckets of observations
	// without poison
	NoPoisonDir   int = Directions
	NoPoisonLevel int = Levels
)

// State is a discretized observation. States are comparable and are
// used as keys of a Table.
type State struct {
	FoodDir     int // 0-7
	Danger      int // 0-255
	PoisonDir   int // 0-7, or NoPoisonDir
	PoisonLevel int // 0-2, or NoPoisonLevel
}

func (s State) String() string {
	return fmt.Sprintf("(food: %d, danger: %08b, poison: %d, level: %d)",
		s.FoodDir, s.Danger, s.PoisonDir, s.PoisonLevel)
}

// less orders States field by field
func (s State) less(o State) bool {
	if s.FoodDir != o.FoodDir {
		return s.FoodDir < o.FoodDir
	}
	if s.Danger != o.Danger {
		return s.Danger < o.Danger
	}
	if s.PoisonDir != o.PoisonDir {
		return s.PoisonDir < o.PoisonDir
	}
	return s.PoisonLevel < o.PoisonLevel
}

// Discretize maps an observation of the snake environment to a State:
// the direction to the food as one of 8 wedges, the four ray lengths
// packed into 2 bits each, and the direction and distance band of the
// poison if present
func Discretize(obs mat.Vector) State {
	if obs.Len() != snake.ObservationLen {
		panic(fmt.Sprintf("discretize: observation must have length %d, "+
			"have %d", snake.ObservationLen, obs.Len()))
	}

	s := State{
		FoodDir: direction(obs.AtVec(snake.FoodDX), obs.AtVec(snake.FoodDY)),
		Danger: ray(obs.AtVec(snake.RayUp))<<6 |
			ray(obs.AtVec(snake.RayDown))<<4 |
			ray(obs.AtVec(snake.RayLeft))<<2 |
			ray(obs.AtVec(snake.RayRight)),
		PoisonDir:   NoPoisonDir,
		PoisonLevel: NoPoisonLevel,
	}

	if obs.AtVec(snake.PoisonFlag) == 1 {
		s.PoisonDir = direction(obs.AtVec(snake.PoisonDX),
			obs.AtVec(snake.PoisonDY))

		level := int(obs.AtVec(snake.PoisonDistance) * float64(Levels))
		s.PoisonLevel = int(floatutils.Clip(float64(level), 0,
			float64(Levels-1)))
	}
	return s
}

// direction buckets the angle of (dx, dy) into one of Directions
// equal wedges
func direction(dx, dy float64) int {
	wedge := 2 * math.Pi / float64(Directions)
	return int((math.Atan2(dy, dx)+math.Pi)/wedge) % Directions
}

// ray converts a ray length into its 2 bit code
func ray(v float64) int {
	return int(floatutils.Clip(v, 0, float64(snake.MaxRay)))
}
