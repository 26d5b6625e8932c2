package snake

import (
	"errors"
	"testing"
	"time"

	env "github.com/samuelfneumann/snakeql/environment"
	ts "github.com/samuelfneumann/snakeql/timestep"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func act(a Action) *mat.VecDense {
	return mat.NewVecDense(1, []float64{float64(a)})
}

// newManual returns a Snake whose clock only moves when advanced
func newManual(t *testing.T, cfg Config) (*Snake, *env.ManualClock) {
	t.Helper()
	clock := env.NewManualClock(0)
	s, _, err := New(cfg, 1, WithClock(clock))
	require.NoError(t, err)
	return s, clock
}

func containsPoint(ps []Point, p Point) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

func TestNewInvalidConfig(t *testing.T) {
	bad := map[string]func(*Config){
		"small grid":       func(c *Config) { c.Size = 3 },
		"negative life":    func(c *Config) { c.Lifetime = -time.Second },
		"negative blink":   func(c *Config) { c.Blink = -time.Second },
		"negative delay":   func(c *Config) { c.PoisonDelay = -time.Second },
		"immediate only":   func(c *Config) { c.PoisonImmediate = true },
		"discount too big": func(c *Config) { c.Discount = 1.5 },
	}

	for name, modify := range bad {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			modify(&cfg)
			_, _, err := New(cfg, 0)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestReset(t *testing.T) {
	cfg := DefaultConfig()
	s, step, err := New(cfg, 42)
	require.NoError(t, err)

	require.True(t, step.First())
	require.Equal(t, ObservationLen, step.Observation.Len())

	snap := s.Snapshot()
	require.Equal(t, []Point{{10, 10}, {9, 10}, {8, 10}}, snap.Body)
	require.Equal(t, Right, snap.Heading)
	require.Zero(t, snap.Score)
	require.Zero(t, snap.Steps)
	require.False(t, snap.Done)
	require.True(t, snap.Food.Present)
	require.False(t, containsPoint(snap.Body, snap.Food.Pos))
	require.False(t, snap.Poison.Present)
	require.Zero(t, step.Observation.AtVec(PoisonFlag))
}

func TestResetImmediatePoison(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Poison = true
	cfg.PoisonImmediate = true

	for seed := uint64(0); seed < 50; seed++ {
		s, step, err := New(cfg, seed)
		require.NoError(t, err)

		snap := s.Snapshot()
		require.True(t, snap.Poison.Present)
		require.NotEqual(t, snap.Food.Pos, snap.Poison.Pos)
		require.False(t, containsPoint(snap.Body, snap.Poison.Pos))
		require.Equal(t, 1.0, step.Observation.AtVec(PoisonFlag))
	}
}

func TestEatFood(t *testing.T) {
	s, _ := newManual(t, DefaultConfig())
	s.food.place(Point{11, 10}, true, 0)

	step, done, err := s.Step(act(Right))
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, FoodReward, step.Reward)

	snap := s.Snapshot()
	require.Len(t, snap.Body, 4)
	require.Equal(t, Point{11, 10}, snap.Head())
	require.Equal(t, FoodScore, snap.Score)
	require.True(t, snap.Food.Present)
	require.False(t, containsPoint(snap.Body, snap.Food.Pos))
}

func TestEatPoison(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Poison = true
	cfg.PoisonImmediate = true
	s, _ := newManual(t, cfg)
	s.food.place(Point{0, 0}, true, 0)
	s.poison.place(Point{11, 10}, true, 0)

	step, done, err := s.Step(act(Right))
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, PoisonReward, step.Reward)

	snap := s.Snapshot()
	require.Len(t, snap.Body, 3)
	require.Equal(t, -PoisonScore, snap.Score)
	require.True(t, snap.Poison.Present)
	require.NotEqual(t, Point{11, 10}, snap.Poison.Pos)
	require.NotEqual(t, snap.Food.Pos, snap.Poison.Pos)
	require.False(t, containsPoint(snap.Body, snap.Poison.Pos))
}

func TestReversalRejected(t *testing.T) {
	s, _ := newManual(t, DefaultConfig())
	s.food.place(Point{0, 0}, true, 0)

	_, done, err := s.Step(act(Left))
	require.NoError(t, err)
	require.False(t, done)

	snap := s.Snapshot()
	require.Equal(t, Right, snap.Heading)
	require.Equal(t, Point{11, 10}, snap.Head())
	require.Equal(t, Left, snap.LastAction)
}

func TestReversalAcceptedForSingleSegment(t *testing.T) {
	s, _ := newManual(t, DefaultConfig())
	s.food.place(Point{0, 0}, true, 0)
	s.body = []Point{{10, 10}}

	_, _, err := s.Step(act(Left))
	require.NoError(t, err)
	require.Equal(t, Left, s.Snapshot().Heading)
	require.Equal(t, []Point{{9, 10}}, s.Snapshot().Body)
}

func TestWallCollision(t *testing.T) {
	s, _ := newManual(t, DefaultConfig())
	s.food.place(Point{0, 19}, true, 0)

	for i := 0; i < 10; i++ {
		_, done, err := s.Step(act(Up))
		require.NoError(t, err)
		require.False(t, done)
	}
	before := s.Snapshot()
	require.Equal(t, Point{10, 0}, before.Head())

	step, done, err := s.Step(act(Up))
	require.NoError(t, err)
	require.True(t, done)
	require.True(t, step.Last())
	require.Equal(t, ts.TerminalStateReached, step.EndType())
	require.Equal(t, CollisionReward, step.Reward)

	after := s.Snapshot()
	require.Equal(t, before.Body, after.Body)
	require.Equal(t, before.Score, after.Score)

	_, done, err = s.Step(act(Left))
	require.ErrorIs(t, err, ErrEpisodeOver)
	require.True(t, done)
	require.Equal(t, after, s.Snapshot())
}

func TestBoxedIn(t *testing.T) {
	// Head in the top left corner, walled in by the grid on two sides
	// and by its own body on the other two
	body := []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 2}}

	for a := Up; a <= Right; a++ {
		t.Run(a.String(), func(t *testing.T) {
			s, _ := newManual(t, DefaultConfig())
			s.food.place(Point{10, 10}, true, 0)
			s.body = append([]Point(nil), body...)
			s.heading = Left
			s.score = 30

			step, done, err := s.Step(act(a))
			require.NoError(t, err)
			require.True(t, done)
			require.Equal(t, CollisionReward, step.Reward)
			require.Equal(t, 30, s.Score())
			require.Equal(t, body, s.Snapshot().Body)
		})
	}
}

func TestMoveIntoTail(t *testing.T) {
	s, _ := newManual(t, DefaultConfig())
	s.food.place(Point{15, 15}, true, 0)
	s.body = []Point{{5, 5}, {6, 5}, {6, 6}, {5, 6}}
	s.heading = Left

	_, done, err := s.Step(act(Down))
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, []Point{{5, 6}, {5, 5}, {6, 5}, {6, 6}}, s.Snapshot().Body)
}

func TestInvalidAction(t *testing.T) {
	s, _, err := New(DefaultConfig(), 3)
	require.NoError(t, err)
	before := s.Snapshot()

	actions := []*mat.VecDense{
		mat.NewVecDense(1, []float64{4}),
		mat.NewVecDense(1, []float64{-1}),
		mat.NewVecDense(1, []float64{1.5}),
		mat.NewVecDense(2, []float64{0, 1}),
		nil,
	}
	for _, a := range actions {
		_, _, err := s.Step(a)
		require.ErrorIs(t, err, ErrInvalidAction)
		require.Equal(t, before, s.Snapshot())
	}
}

func TestFoodLifecycle(t *testing.T) {
	cfg := DefaultConfig()
	s, clock := newManual(t, cfg)
	s.food.place(Point{0, 0}, true, 0)

	// Circles a 2x2 square without ever running into itself
	loop := []Action{Down, Left, Up, Right}
	i := 0
	step := func() {
		t.Helper()
		_, done, err := s.Step(act(loop[i%len(loop)]))
		require.NoError(t, err)
		require.False(t, done)
		i++
	}

	clock.Set(cfg.Lifetime)
	step()
	require.Equal(t, Active, s.food.Phase)

	clock.Advance(time.Millisecond)
	step()
	require.Equal(t, Blinking, s.food.Phase)
	require.Equal(t, Point{0, 0}, s.food.Pos)
	blinkAt := clock.Now()
	require.Equal(t, blinkAt, s.food.BlinkAt)

	clock.Advance(cfg.Blink)
	step()
	require.Equal(t, Blinking, s.food.Phase)

	clock.Advance(time.Millisecond)
	step()
	require.Equal(t, Active, s.food.Phase)
	require.Equal(t, clock.Now(), s.food.SpawnedAt)
	require.True(t, s.food.Present)
	require.False(t, containsPoint(s.body, s.food.Pos))
}

func TestPoisonDelay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Poison = true
	cfg.Lifetime = time.Hour
	s, clock := newManual(t, cfg)
	s.food.place(Point{0, 0}, true, 0)

	loop := []Action{Down, Left, Up, Right}
	for i := 0; i < 8; i++ {
		clock.Advance(cfg.PoisonDelay / 8)
		_, _, err := s.Step(act(loop[i%len(loop)]))
		require.NoError(t, err)
		require.False(t, s.poison.Present)
	}

	clock.Advance(time.Millisecond)
	step, _, err := s.Step(act(Down))
	require.NoError(t, err)
	require.True(t, s.poison.Present)
	require.NotEqual(t, s.food.Pos, s.poison.Pos)
	require.False(t, containsPoint(s.body, s.poison.Pos))
	require.Equal(t, 1.0, step.Observation.AtVec(PoisonFlag))
}

// TestRandomPlay checks the grid invariants over many random episodes
// with items expiring quickly
func TestRandomPlay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = 8
	cfg.Poison = true
	cfg.PoisonImmediate = true
	cfg.Lifetime = 300 * time.Millisecond
	cfg.Blink = 200 * time.Millisecond

	s, _, err := New(cfg, 7, WithEnder(env.NewStepLimit(500)))
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(11))

	for episode := 0; episode < 200; episode++ {
		_, err := s.Reset()
		require.NoError(t, err)

		for done := false; !done; {
			before := s.Snapshot()

			var step ts.TimeStep
			step, done, err = s.Step(act(Action(rng.Intn(NumActions))))
			require.NoError(t, err)
			after := s.Snapshot()

			seen := make(map[Point]bool)
			for _, p := range after.Body {
				require.False(t, seen[p], "body overlaps itself at %v", p)
				seen[p] = true
			}
			if after.Food.Present {
				require.False(t, seen[after.Food.Pos])
			}
			if after.Poison.Present {
				require.False(t, seen[after.Poison.Pos])
				require.False(t, after.Food.Present &&
					after.Food.Pos == after.Poison.Pos)
			}

			switch step.Reward {
			case FoodReward:
				require.Len(t, after.Body, len(before.Body)+1)
				require.Equal(t, before.Score+FoodScore, after.Score)
			case PoisonReward:
				require.Len(t, after.Body, len(before.Body))
				require.Equal(t, before.Score-PoisonScore, after.Score)
			case CollisionReward:
				require.True(t, done)
				require.Equal(t, before.Body, after.Body)
				require.Equal(t, before.Score, after.Score)
			default:
				require.Len(t, after.Body, len(before.Body))
				require.Equal(t, before.Score, after.Score)
			}
		}
	}
}

func TestStepLimitCutoff(t *testing.T) {
	s, _, err := New(DefaultConfig(), 5, WithClock(env.NewManualClock(0)),
		WithEnder(env.NewStepLimit(2)))
	require.NoError(t, err)
	s.food.place(Point{0, 0}, true, 0)

	_, done, err := s.Step(act(Down))
	require.NoError(t, err)
	require.False(t, done)

	step, done, err := s.Step(act(Left))
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, ts.Cutoff, step.EndType())

	_, _, err = s.Step(act(Up))
	require.True(t, errors.Is(err, ErrEpisodeOver))
}

func TestFreeCellFullBoard(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = MinSize
	s, _ := newManual(t, cfg)

	s.body = s.body[:0]
	for y := 0; y < cfg.Size; y++ {
		for x := 0; x < cfg.Size; x++ {
			s.body = append(s.body, Point{x, y})
		}
	}
	_, ok := s.freeCell()
	require.False(t, ok)

	s.body = s.body[1:]
	p, ok := s.freeCell()
	require.True(t, ok)
	require.Equal(t, Point{0, 0}, p)
}

func TestSpecs(t *testing.T) {
	s, _, err := New(DefaultConfig(), 0)
	require.NoError(t, err)

	require.Equal(t, ObservationLen, s.ObservationSpec().Shape.Len())
	require.Equal(t, env.Discrete, s.ActionSpec().Cardinality)
	require.Equal(t, float64(Right), s.ActionSpec().UpperBound.AtVec(0))
	require.Equal(t, DefaultDiscount, s.DiscountSpec().LowerBound.AtVec(0))
}
