package tabular

import (
	"fmt"
	"sort"

	"github.com/samuelfneumann/snakeql/utils/floatutils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Table maps States to one action value per action. Rows are created
// with all values zero the first time a State is accessed with
// GetOrInsert.
type Table struct {
	actions int
	values  map[State][]float64
}

// NewTable returns an empty Table with the given number of actions
func NewTable(actions int) *Table {
	if actions < 1 {
		panic(fmt.Sprintf("newTable: actions must be positive, have %d",
			actions))
	}
	return &Table{actions: actions, values: make(map[State][]float64)}
}

// Actions returns the number of actions per State
func (t *Table) Actions() int {
	return t.actions
}

// Len returns the number of States in the table
func (t *Table) Len() int {
	return len(t.values)
}

// GetOrInsert returns the action values of s, inserting a row of zeros
// if s has never been accessed. The returned slice aliases the table.
func (t *Table) GetOrInsert(s State) []float64 {
	row, ok := t.values[s]
	if !ok {
		row = make([]float64, t.actions)
		t.values[s] = row
	}
	return row
}

// Lookup returns the action values of s without inserting a row
func (t *Table) Lookup(s State) ([]float64, bool) {
	row, ok := t.values[s]
	return row, ok
}

// Max returns the largest action value of s
func (t *Table) Max(s State) float64 {
	return floats.Max(t.GetOrInsert(s))
}

// Argmax returns the action with the largest value in s. Ties are
// broken in favour of the lowest action.
func (t *Table) Argmax(s State) int {
	return floatutils.ArgMax(t.GetOrInsert(s))
}

// States returns all States in the table in a fixed order
func (t *Table) States() []State {
	states := make([]State, 0, len(t.values))
	for s := range t.values {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].less(states[j])
	})
	return states
}

// Stats summarizes the contents of a Table
type Stats struct {
	States  int
	Visited int // States with at least one non-zero value
	Min     float64
	Max     float64
	Mean    float64
	StdDev  float64
}

// Stats computes summary statistics over all action values
func (t *Table) Stats() Stats {
	stats := Stats{States: len(t.values)}
	if len(t.values) == 0 {
		return stats
	}

	all := make([]float64, 0, len(t.values)*t.actions)
	for _, row := range t.values {
		all = append(all, row...)
		if floats.Norm(row, 1) != 0 {
			stats.Visited++
		}
	}

	stats.Min = floats.Min(all)
	stats.Max = floats.Max(all)
	stats.Mean, stats.StdDev = stat.MeanStdDev(all, nil)
	return stats
}
