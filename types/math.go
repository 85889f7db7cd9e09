package types

import "golang.org/x/exp/constraints"

// Number is satisfied by all the scalar types used in geometry code.
type Number interface {
	constraints.Integer | constraints.Float
}

// Clamp v to the [lo, hi] range.
func Clamp[T Number](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
