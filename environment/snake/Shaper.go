package snake

import "math"

// Distances holds the Manhattan distances from the snake's head to the
// items before and after a plain move. A distance of -1 means the item
// was absent.
type Distances struct {
	Food, PrevFood     int
	Poison, PrevPoison int
}

// RewardShaper computes the shaping term added to the step reward of
// every plain move, i.e. a move which neither ate an item nor ended
// the episode
type RewardShaper interface {
	Shape(d Distances) float64
}

const (
	// Bonuses for being close to the food
	FoodAdjacentBonus float64 = 0.5
	FoodNearBonus     float64 = 0.2

	// Penalty for moving away from the food
	FoodRetreatPenalty float64 = -0.2

	// Penalties for being close to the poison
	PoisonAdjacentPenalty float64 = -1.0
	PoisonNearPenalty     float64 = -0.5
)

// DefaultShaper rewards approaching food and penalizes leaving food or
// nearing poison. Only the worse of the two penalties is applied on
// any single step.
type DefaultShaper struct{}

// Shape implements the RewardShaper interface
func (DefaultShaper) Shape(d Distances) float64 {
	var bonus float64
	switch d.Food {
	case 1:
		bonus = FoodAdjacentBonus
	case 2:
		bonus = FoodNearBonus
	}

	var foodPenalty float64
	if d.Food >= 0 && d.PrevFood >= 0 && d.Food > d.PrevFood {
		foodPenalty = FoodRetreatPenalty
	}

	var poisonPenalty float64
	if d.Poison >= 0 {
		if d.Poison <= 1 {
			poisonPenalty = PoisonAdjacentPenalty
		} else if d.Poison == 2 {
			poisonPenalty = PoisonNearPenalty
		}
	}

	return bonus + math.Min(foodPenalty, poisonPenalty)
}

// NoShaping is a RewardShaper which adds nothing to the step reward
type NoShaping struct{}

// Shape implements the RewardShaper interface
func (NoShaping) Shape(Distances) float64 {
	return 0
}
