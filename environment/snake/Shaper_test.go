package snake

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultShaper(t *testing.T) {
	tests := []struct {
		name string
		d    Distances
		want float64
	}{
		{"adjacent to food", Distances{1, 2, -1, -1}, FoodAdjacentBonus},
		{"near food", Distances{2, 3, -1, -1}, FoodNearBonus},
		{"far from food", Distances{5, 6, -1, -1}, 0},
		{"retreat", Distances{6, 5, -1, -1}, FoodRetreatPenalty},
		{"food just appeared", Distances{6, -1, -1, -1}, 0},
		{"no food", Distances{-1, 4, -1, -1}, 0},
		{"poison adjacent", Distances{4, 5, 1, 2}, PoisonAdjacentPenalty},
		{"poison near", Distances{4, 5, 2, 3}, PoisonNearPenalty},
		{"poison far", Distances{4, 5, 3, 4}, 0},
		{"worst of retreat and poison", Distances{6, 5, 1, 2},
			PoisonAdjacentPenalty},
		{"worst of retreat and far poison", Distances{6, 5, 2, 1},
			PoisonNearPenalty},
		{"bonus with poison", Distances{1, 2, 2, 3},
			FoodAdjacentBonus + PoisonNearPenalty},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := DefaultShaper{}.Shape(test.d)
			require.InDelta(t, test.want, got, 1e-12)
		})
	}
}

func TestShapingBounded(t *testing.T) {
	var worst float64
	for food := -1; food < 10; food++ {
		for prev := -1; prev < 10; prev++ {
			for poison := -1; poison < 10; poison++ {
				d := Distances{food, prev, poison, -1}
				worst = math.Max(worst, math.Abs(StepReward+
					DefaultShaper{}.Shape(d)))
			}
		}
	}

	require.Less(t, worst, math.Abs(FoodReward))
	require.Less(t, worst, math.Abs(PoisonReward))
	require.Less(t, worst, math.Abs(CollisionReward))
}

// recordingShaper remembers the distances it was asked to shape
type recordingShaper struct {
	calls []Distances
}

func (r *recordingShaper) Shape(d Distances) float64 {
	r.calls = append(r.calls, d)
	return 0
}

func TestShaperInjected(t *testing.T) {
	shaper := &recordingShaper{}
	s, _, err := New(DefaultConfig(), 2, WithShaper(shaper),
		WithClock(newFrozenClock()))
	require.NoError(t, err)
	s.food.place(Point{15, 10}, true, 0)
	s.prevFood = s.body[0].Manhattan(s.food.Pos)

	step, _, err := s.Step(act(Right))
	require.NoError(t, err)
	require.Equal(t, StepReward, step.Reward)

	_, _, err = s.Step(act(Right))
	require.NoError(t, err)

	require.Equal(t, []Distances{
		{Food: 4, PrevFood: 5, Poison: -1, PrevPoison: -1},
		{Food: 3, PrevFood: 4, Poison: -1, PrevPoison: -1},
	}, shaper.calls)
}

type frozenClock struct{}

func newFrozenClock() frozenClock { return frozenClock{} }

func (frozenClock) Now() time.Duration { return 0 }
