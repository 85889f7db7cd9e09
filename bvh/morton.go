package bvh

import "github.com/achilleasa/raycast/types"

const (
	mortonBits  = 10
	mortonScale = 1 << mortonBits

	// Total number of bits in an encoded Morton code.
	mortonCodeBits = 3 * mortonBits
)

type mortonPrimitive struct {
	index int
	code  uint32
}

// leftShift3 spreads the low 10 bits of x so that two zero bits separate each
// pair of consecutive input bits.
func leftShift3(x uint32) uint32 {
	if x >= mortonScale {
		x = mortonScale - 1
	}
	x = (x | (x << 16)) & 0x030000ff
	x = (x | (x << 8)) & 0x0300f00f
	x = (x | (x << 4)) & 0x030c30c3
	x = (x | (x << 2)) & 0x09249249
	return x
}

// encodeMorton3 interleaves the bits of a point whose components are in the
// [0, mortonScale] range. Bit 3k holds the k-th X bit, bit 3k+1 the k-th Y
// bit and bit 3k+2 the k-th Z bit.
func encodeMorton3(v types.Vec3) uint32 {
	x := types.Clamp(v[0], 0, mortonScale-1)
	y := types.Clamp(v[1], 0, mortonScale-1)
	z := types.Clamp(v[2], 0, mortonScale-1)
	return leftShift3(uint32(z))<<2 | leftShift3(uint32(y))<<1 | leftShift3(uint32(x))
}

// bitAxis returns the axis whose coordinate is stored at the given code bit.
func bitAxis(bit int) types.Axis {
	return types.Axis(bit % 3)
}
