//go:build !debug

package bvh

func assert(bool, string, ...interface{}) {}
