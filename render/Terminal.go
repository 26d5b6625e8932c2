// Package render draws Snake environments.
//
// Renderers only read snake.Snapshot values, so an environment runs
// identically with or without one.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/samuelfneumann/snakeql/environment/snake"
)

// Renderer draws a single frame of an environment
type Renderer interface {
	Render(snake.Snapshot) error
}

// Glyphs used by the Terminal renderer
const (
	Wall           = '#'
	Head           = '@'
	Body           = 'o'
	Food           = '*'
	FoodBlinking   = '+'
	Poison         = 'X'
	PoisonBlinking = 'x'
	Empty          = ' '
)

// Terminal renders frames as ASCII art, optionally coloured with ANSI
// escape codes
type Terminal struct {
	out   io.Writer
	au    aurora.Aurora
	clear bool
}

// TerminalOption configures a Terminal renderer
type TerminalOption func(*Terminal)

// WithColours enables or disables ANSI colours
func WithColours(on bool) TerminalOption {
	return func(t *Terminal) {
		t.au = aurora.NewAurora(on)
	}
}

// WithClear clears the terminal before each frame
func WithClear(on bool) TerminalOption {
	return func(t *Terminal) {
		t.clear = on
	}
}

// NewTerminal returns a Terminal renderer writing to out. Colours are
// enabled by default.
func NewTerminal(out io.Writer, opts ...TerminalOption) *Terminal {
	t := &Terminal{out: out, au: aurora.NewAurora(true)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Render writes a frame of s to the renderer's writer
func (t *Terminal) Render(s snake.Snapshot) error {
	var b strings.Builder
	if t.clear {
		b.WriteString("\033[H\033[2J")
	}
	b.WriteString(t.Frame(s))

	if _, err := io.WriteString(t.out, b.String()); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Frame returns the text of a single frame of s, including a status
// line
func (t *Terminal) Frame(s snake.Snapshot) string {
	grid := make([][]string, s.Size)
	for y := range grid {
		grid[y] = make([]string, s.Size)
		for x := range grid[y] {
			grid[y][x] = string(Empty)
		}
	}

	set := func(p snake.Point, v string) {
		if p.X >= 0 && p.X < s.Size && p.Y >= 0 && p.Y < s.Size {
			grid[p.Y][p.X] = v
		}
	}

	if s.Food.Present {
		if s.Food.Phase == snake.Blinking {
			set(s.Food.Pos,
				t.au.Blink(t.au.BrightGreen(string(FoodBlinking))).String())
		} else {
			set(s.Food.Pos, t.au.Green(string(Food)).String())
		}
	}
	if s.PoisonPresent() {
		if s.Poison.Phase == snake.Blinking {
			set(s.Poison.Pos,
				t.au.Blink(t.au.BrightRed(string(PoisonBlinking))).String())
		} else {
			set(s.Poison.Pos, t.au.Red(string(Poison)).String())
		}
	}
	for i := len(s.Body) - 1; i >= 0; i-- {
		if i == 0 {
			set(s.Body[i], t.au.Bold(t.au.Yellow(string(Head))).String())
		} else {
			set(s.Body[i], t.au.Yellow(string(Body)).String())
		}
	}

	var b strings.Builder
	border := t.au.Gray(12, strings.Repeat(string(Wall), s.Size+2)).String()
	b.WriteString(border + "\n")
	for _, row := range grid {
		b.WriteString(t.au.Gray(12, string(Wall)).String())
		b.WriteString(strings.Join(row, ""))
		b.WriteString(t.au.Gray(12, string(Wall)).String())
		b.WriteString("\n")
	}
	b.WriteString(border + "\n")

	b.WriteString(fmt.Sprintf("Score: %d  Length: %d  Steps: %d",
		s.Score, len(s.Body), s.Steps))
	if s.LastAction >= 0 {
		b.WriteString(fmt.Sprintf("  Last: %v (%+.1f)", s.LastAction,
			s.LastReward))
	}
	b.WriteString("\n")
	if s.Done {
		b.WriteString(t.au.Bold(t.au.Red("GAME OVER")).String() + "\n")
	}
	return b.String()
}

// FramesPerSecond returns the replay speed for a score: faster replays
// for higher scoring snakes
func FramesPerSecond(score int) int {
	switch {
	case score >= 180:
		return 10
	case score >= 150:
		return 9
	case score >= 120:
		return 8
	case score >= 90:
		return 7
	case score >= 70:
		return 6
	case score >= 40:
		return 5
	case score >= 20:
		return 4
	default:
		return 3
	}
}

// FrameDelay returns the time between frames of a replay at score
func FrameDelay(score int) time.Duration {
	return time.Second / time.Duration(FramesPerSecond(score))
}
