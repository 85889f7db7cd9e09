//go:build debug

package bvh

import "fmt"

// assert panics when cond does not hold. Assertions are only compiled in
// when building with the debug tag.
func assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("bvh: "+format, args...))
	}
}
