// Package snake implements the snake grid world. A snake is steered
// around a square grid, growing when it eats food and losing score
// when it eats poison. Food and poison expire: each item blinks after
// a fixed lifetime and is then moved to a new cell. Running into a wall
// or into the body ends the episode.
package snake

import (
	"errors"
	"fmt"
	"strings"
	"time"

	env "github.com/samuelfneumann/snakeql/environment"
	ts "github.com/samuelfneumann/snakeql/timestep"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrInvalidAction = errors.New("invalid action")
	ErrEpisodeOver   = errors.New("episode is over")
)

const (
	CollisionReward float64 = -20
	FoodReward      float64 = 10
	PoisonReward    float64 = -8
	StepReward      float64 = -0.1

	FoodScore   int = 10
	PoisonScore int = 5

	// DefaultStepPeriod is the simulated time which passes on each
	// transition of the default clock
	DefaultStepPeriod time.Duration = 100 * time.Millisecond
)

// Option configures optional collaborators of a Snake environment
type Option func(*Snake)

// WithClock sets the clock used for item lifecycles. The default is
// an environment.StepClock with period DefaultStepPeriod.
func WithClock(c env.Clock) Option {
	return func(s *Snake) { s.clock = c }
}

// WithShaper sets the reward shaping applied to plain moves. The
// default is DefaultShaper.
func WithShaper(r RewardShaper) Option {
	return func(s *Snake) { s.shaper = r }
}

// WithEnder sets an additional episode ender, e.g. an
// environment.StepLimit cutting off episodes which never collide
func WithEnder(e env.Ender) Option {
	return func(s *Snake) { s.ender = e }
}

// Snake implements the snake environment. Observations are the
// 14-dimensional vectors produced by Encode. Actions are 1-dimensional
// vectors holding one of Up, Down, Left, or Right.
type Snake struct {
	cfg    Config
	rng    *rand.Rand
	clock  env.Clock
	shaper RewardShaper
	ender  env.Ender

	body    []Point
	heading Action
	food    Item
	poison  Item
	start   time.Duration

	score      int
	steps      int
	done       bool
	lastAction Action
	lastReward float64

	// Distances from the head to the items as of the last transition,
	// -1 if the item was absent
	prevFood, prevPoison int

	lastStep ts.TimeStep
}

// New creates a new Snake environment seeded with seed and returns it
// along with the first TimeStep of its first episode
func New(cfg Config, seed uint64, opts ...Option) (*Snake, ts.TimeStep,
	error) {
	if err := cfg.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
	}

	s := &Snake{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		clock:  env.NewStepClock(DefaultStepPeriod),
		shaper: DefaultShaper{},
	}
	for _, opt := range opts {
		opt(s)
	}

	step, err := s.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
	}
	return s, step, nil
}

// Reset starts a new episode with a three segment snake in the middle
// of the grid heading Right
func (s *Snake) Reset() (ts.TimeStep, error) {
	mid := s.cfg.Size / 2
	s.body = []Point{{mid, mid}, {mid - 1, mid}, {mid - 2, mid}}
	s.heading = Right

	s.score = 0
	s.steps = 0
	s.done = false
	s.lastAction = -1
	s.lastReward = 0

	s.start = s.clock.Now()
	s.poison = Item{}
	s.spawnFood(s.start)
	if s.cfg.Poison && s.cfg.PoisonImmediate {
		s.spawnPoison(s.start)
	}
	s.prevFood, s.prevPoison = s.foodDistance(), s.poisonDistance()

	s.lastStep = ts.New(ts.First, 0, s.cfg.Discount, Encode(s.Snapshot()), 0)
	return s.lastStep, nil
}

// Step takes one environmental step given a 1-dimensional action
// vector. An invalid action or an action taken after the episode has
// ended is rejected without changing the environment.
func (s *Snake) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	a, err := toAction(action)
	if err != nil {
		return s.lastStep, s.done, fmt.Errorf("step: %w", err)
	}
	if s.done {
		return s.lastStep, true, fmt.Errorf("step: %w", ErrEpisodeOver)
	}

	if len(s.body) <= 1 || a != s.heading.Reverse() {
		s.heading = a
	}
	head := s.body[0].Add(s.heading.Vector())

	now := s.clock.Now()
	s.tick(now)

	var reward float64
	switch {
	case s.collides(head):
		s.done = true
		reward = CollisionReward

	case s.food.Present && head == s.food.Pos:
		s.body = append([]Point{head}, s.body...)
		s.score += FoodScore
		reward = FoodReward
		s.spawnFood(now)

	case s.cfg.Poison && s.poison.Present && head == s.poison.Pos:
		s.body = append([]Point{head}, s.body[:len(s.body)-1]...)
		s.score -= PoisonScore
		reward = PoisonReward
		s.spawnPoison(now)

	default:
		s.body = append([]Point{head}, s.body[:len(s.body)-1]...)
		reward = StepReward + s.shaper.Shape(Distances{
			Food:       s.foodDistance(),
			PrevFood:   s.prevFood,
			Poison:     s.poisonDistance(),
			PrevPoison: s.prevPoison,
		})
	}

	if !s.done {
		s.prevFood, s.prevPoison = s.foodDistance(), s.poisonDistance()
	}
	s.steps++
	s.lastAction = a
	s.lastReward = reward

	step := ts.New(ts.Mid, reward, s.cfg.Discount, Encode(s.Snapshot()),
		s.lastStep.Number+1)
	if s.done {
		step.StepType = ts.Last
		step.SetEnd(ts.TerminalStateReached)
	} else if s.ender != nil && s.ender.End(&step) {
		s.done = true
	}
	s.lastStep = step

	return step, s.done, nil
}

// tick advances the item lifecycles to time now. Absent items are
// placed as soon as they are allowed on the grid and a free cell
// exists.
func (s *Snake) tick(now time.Duration) {
	if s.food.Present {
		s.food.tick(now, s.cfg.Lifetime, s.cfg.Blink, s.foodCell)
	} else {
		s.spawnFood(now)
	}

	if !s.cfg.Poison {
		return
	}
	if s.poison.Present {
		s.poison.tick(now, s.cfg.Lifetime, s.cfg.Blink, s.poisonCell)
	} else if s.cfg.PoisonImmediate || now-s.start > s.cfg.PoisonDelay {
		s.spawnPoison(now)
	}
}

func (s *Snake) spawnFood(now time.Duration) {
	pos, ok := s.foodCell()
	s.food.place(pos, ok, now)
}

func (s *Snake) spawnPoison(now time.Duration) {
	pos, ok := s.poisonCell()
	s.poison.place(pos, ok, now)
}

// foodCell draws a free cell for the food, avoiding the poison
func (s *Snake) foodCell() (Point, bool) {
	if s.poison.Present {
		return s.freeCell(s.poison.Pos)
	}
	return s.freeCell()
}

// poisonCell draws a free cell for the poison, avoiding the food
func (s *Snake) poisonCell() (Point, bool) {
	if s.food.Present {
		return s.freeCell(s.food.Pos)
	}
	return s.freeCell()
}

// freeCell draws a uniformly random cell covered neither by the body
// nor by any of the excluded points. If no such cell exists, freeCell
// returns false.
func (s *Snake) freeCell(exclude ...Point) (Point, bool) {
	taken := make(map[Point]bool, len(s.body)+len(exclude))
	for _, p := range s.body {
		taken[p] = true
	}
	for _, p := range exclude {
		taken[p] = true
	}

	free := make([]Point, 0, s.cfg.Size*s.cfg.Size-len(taken))
	for y := 0; y < s.cfg.Size; y++ {
		for x := 0; x < s.cfg.Size; x++ {
			if p := (Point{x, y}); !taken[p] {
				free = append(free, p)
			}
		}
	}

	if len(free) == 0 {
		return Point{}, false
	}
	return free[s.rng.Intn(len(free))], true
}

// collides returns whether moving the head to p ends the episode. The
// tail is excluded since it moves out of the way on the same step.
func (s *Snake) collides(p Point) bool {
	if !inBounds(p, s.cfg.Size) {
		return true
	}
	for _, seg := range s.body[:len(s.body)-1] {
		if seg == p {
			return true
		}
	}
	return false
}

func (s *Snake) foodDistance() int {
	if !s.food.Present {
		return -1
	}
	return s.body[0].Manhattan(s.food.Pos)
}

func (s *Snake) poisonDistance() int {
	if !s.cfg.Poison || !s.poison.Present {
		return -1
	}
	return s.body[0].Manhattan(s.poison.Pos)
}

// toAction converts an action vector into an Action
func toAction(v *mat.VecDense) (Action, error) {
	if v == nil || v.Len() != 1 {
		return 0, fmt.Errorf("%w: action must be a 1-dimensional vector",
			ErrInvalidAction)
	}
	f := v.AtVec(0)
	a := Action(int(f))
	if float64(int(f)) != f || !a.Valid() {
		return 0, fmt.Errorf("%w: %v ∉ {0, 1, 2, 3}", ErrInvalidAction, f)
	}
	return a, nil
}

// Snapshot returns a copy of the public state of the environment
func (s *Snake) Snapshot() Snapshot {
	body := make([]Point, len(s.body))
	copy(body, s.body)

	return Snapshot{
		Size:          s.cfg.Size,
		Body:          body,
		Heading:       s.heading,
		Food:          s.food,
		Poison:        s.poison,
		PoisonEnabled: s.cfg.Poison,
		Score:         s.score,
		Steps:         s.steps,
		Done:          s.done,
		LastAction:    s.lastAction,
		LastReward:    s.lastReward,
	}
}

// Score returns the game score of the current episode
func (s *Snake) Score() int {
	return s.score
}

// Config returns the configuration of the environment
func (s *Snake) Config() Config {
	return s.cfg
}

// CurrentTimeStep returns the last TimeStep that occurred in the
// environment
func (s *Snake) CurrentTimeStep() ts.TimeStep {
	return s.lastStep
}

// ObservationSpec returns the observation specification of the
// environment
func (s *Snake) ObservationSpec() env.Spec {
	shape := mat.NewVecDense(ObservationLen, nil)

	lower := make([]float64, ObservationLen)
	upper := make([]float64, ObservationLen)
	for i := range lower {
		switch i {
		case HeadX, HeadY, FoodX, FoodY, PoisonFlag, PoisonDistance:
			lower[i], upper[i] = 0, 1
		case RayRight, RayLeft, RayDown, RayUp:
			lower[i], upper[i] = 0, float64(MaxRay)
		default:
			lower[i], upper[i] = -1, 1
		}
	}

	return env.NewSpec(shape, env.Observation,
		mat.NewVecDense(ObservationLen, lower),
		mat.NewVecDense(ObservationLen, upper), env.Continuous)
}

// ActionSpec returns the action specification of the environment
func (s *Snake) ActionSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lower := mat.NewVecDense(1, []float64{float64(Up)})
	upper := mat.NewVecDense(1, []float64{float64(Right)})

	return env.NewSpec(shape, env.Action, lower, upper, env.Discrete)
}

// DiscountSpec returns the discounting specification of the environment
func (s *Snake) DiscountSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	bound := mat.NewVecDense(1, []float64{s.cfg.Discount})

	return env.NewSpec(shape, env.Discount, bound, bound, env.Continuous)
}

// String returns a string representation of the environment
func (s *Snake) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Snake  |  Length: %v  |  Score: %v  |  Steps: %v",
		len(s.body), s.score, s.steps)
	if s.done {
		b.WriteString("  |  Done")
	}
	return b.String()
}
