// Package intutils provides utilities for working with ints
package intutils

// Abs returns the absolute value of x
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Min calculates and returns the minimum integer in a list
func Min(ints ...int) int {
	min := ints[0]
	for _, val := range ints {
		if val < min {
			min = val
		}
	}
	return min
}

// Manhattan returns the L1 distance between (x1, y1) and (x2, y2)
func Manhattan(x1, y1, x2, y2 int) int {
	return Abs(x1-x2) + Abs(y1-y2)
}
