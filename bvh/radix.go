package bvh

import "golang.org/x/exp/constraints"

const (
	radixBitsPerPass = 6
	radixPasses      = mortonCodeBits / radixBitsPerPass
)

// radixSortBy performs a stable least-significant-digit radix sort of items
// over the low passes*bitsPerPass bits of their key.
func radixSortBy[T any, K constraints.Unsigned](items []T, key func(*T) K, bitsPerPass, passes int) {
	if len(items) < 2 {
		return
	}

	nBuckets := 1 << bitsPerPass
	bitMask := K(nBuckets - 1)
	counts := make([]int, nBuckets)
	tmp := make([]T, len(items))

	in, out := items, tmp
	for pass := 0; pass < passes; pass++ {
		shift := pass * bitsPerPass
		for i := range counts {
			counts[i] = 0
		}
		for i := range in {
			counts[int((key(&in[i])>>shift)&bitMask)]++
		}

		// Turn counts into output start offsets.
		offset := 0
		for i, c := range counts {
			counts[i] = offset
			offset += c
		}

		for i := range in {
			bucket := int((key(&in[i]) >> shift) & bitMask)
			out[counts[bucket]] = in[i]
			counts[bucket]++
		}
		in, out = out, in
	}

	if passes%2 == 1 {
		copy(items, in)
	}
}

func radixSortMorton(prims []mortonPrimitive) {
	radixSortBy(prims, func(p *mortonPrimitive) uint32 { return p.code }, radixBitsPerPass, radixPasses)
}
