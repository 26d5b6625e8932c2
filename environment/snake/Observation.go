package snake

import (
	"github.com/samuelfneumann/snakeql/utils/intutils"
	"gonum.org/v1/gonum/mat"
)

const (
	// ObservationLen is the length of the observation vector
	ObservationLen int = 14

	// MaxRay is the largest distance reported by a ray
	MaxRay int = 3
)

// Indices into the observation vector
const (
	HeadX int = iota
	HeadY
	FoodX
	FoodY
	FoodDX
	FoodDY
	RayRight
	RayLeft
	RayDown
	RayUp
	PoisonFlag
	PoisonDX
	PoisonDY
	PoisonDistance
)

// rays are cast in the order they appear in the observation vector
var rays = [...]Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Encode maps the state of the environment to its observation vector.
// Positions and offsets are divided by the grid size; the poison
// distance is divided by twice the grid size. Each ray counts the free
// cells from the head in one direction until it meets a wall or a body
// segment, clipped to MaxRay. Food fields are zero when no food is on
// the grid and poison fields are zero when poison is absent.
func Encode(s Snapshot) *mat.VecDense {
	if len(s.Body) == 0 {
		panic("encode: snapshot has no body")
	}
	obs := make([]float64, ObservationLen)
	n := float64(s.Size)
	head := s.Head()

	obs[HeadX] = float64(head.X) / n
	obs[HeadY] = float64(head.Y) / n

	if s.Food.Present {
		food := s.Food.Pos
		obs[FoodX] = float64(food.X) / n
		obs[FoodY] = float64(food.Y) / n
		obs[FoodDX] = float64(food.X-head.X) / n
		obs[FoodDY] = float64(food.Y-head.Y) / n
	}

	for i, dir := range rays {
		obs[RayRight+i] = float64(ray(s, head, dir))
	}

	if s.PoisonPresent() {
		poison := s.Poison.Pos
		obs[PoisonFlag] = 1
		obs[PoisonDX] = float64(poison.X-head.X) / n
		obs[PoisonDY] = float64(poison.Y-head.Y) / n
		obs[PoisonDistance] = float64(head.Manhattan(poison)) / (2 * n)
	}

	return mat.NewVecDense(ObservationLen, obs)
}

// ray counts the free cells from start in direction dir
func ray(s Snapshot, start, dir Point) int {
	dist := 0
	for p := start.Add(dir); inBounds(p, s.Size) && !s.Occupied(p); p = p.Add(dir) {
		dist++
		if dist >= MaxRay {
			break
		}
	}
	return intutils.Min(dist, MaxRay)
}

func inBounds(p Point, size int) bool {
	return p.X >= 0 && p.X < size && p.Y >= 0 && p.Y < size
}
