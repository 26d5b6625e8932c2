package snake

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	snap := Snapshot{
		Size:          10,
		Body:          []Point{{8, 1}, {7, 1}, {6, 1}},
		Heading:       Right,
		Food:          Item{Pos: Point{2, 4}, Present: true},
		Poison:        Item{Pos: Point{8, 3}, Present: true},
		PoisonEnabled: true,
	}

	want := []float64{
		0.8, 0.1, // head
		0.2, 0.4, // food
		-0.6, 0.3, // head to food
		1, 0, 3, 1, // rays right, left, down, up
		1, 0, 0.2, 0.1, // poison
	}
	obs := Encode(snap)
	require.Equal(t, ObservationLen, obs.Len())
	for i, w := range want {
		require.InDelta(t, w, obs.AtVec(i), 1e-12, "index %d", i)
	}
}

func TestEncodeRaysClipped(t *testing.T) {
	snap := Snapshot{
		Size: 20,
		Body: []Point{{10, 10}},
		Food: Item{Pos: Point{0, 0}, Present: true},
	}

	obs := Encode(snap)
	for i := RayRight; i <= RayUp; i++ {
		require.Equal(t, float64(MaxRay), obs.AtVec(i))
	}
}

func TestEncodeRaysStopAtBody(t *testing.T) {
	snap := Snapshot{
		Size: 20,
		Body: []Point{{5, 5}, {5, 6}, {6, 6}, {7, 6}, {7, 5}},
		Food: Item{Pos: Point{0, 0}, Present: true},
	}

	obs := Encode(snap)
	require.Equal(t, 1.0, obs.AtVec(RayRight))
	require.Equal(t, 3.0, obs.AtVec(RayLeft))
	require.Equal(t, 0.0, obs.AtVec(RayDown))
	require.Equal(t, 3.0, obs.AtVec(RayUp))
}

func TestEncodeAbsentItems(t *testing.T) {
	snap := Snapshot{
		Size:          20,
		Body:          []Point{{10, 10}, {9, 10}},
		Food:          Item{Pos: Point{3, 3}},
		Poison:        Item{Pos: Point{4, 4}, Present: true},
		PoisonEnabled: false,
	}

	obs := Encode(snap)
	for _, i := range []int{FoodX, FoodY, FoodDX, FoodDY, PoisonFlag,
		PoisonDX, PoisonDY, PoisonDistance} {
		require.Zero(t, obs.AtVec(i), "index %d", i)
	}
}

func TestEncodeDoesNotAlias(t *testing.T) {
	s, _, err := New(DefaultConfig(), 9)
	require.NoError(t, err)

	first := Encode(s.Snapshot())
	second := Encode(s.Snapshot())
	first.SetVec(0, -1)
	require.NotEqual(t, first.AtVec(0), second.AtVec(0))
}
