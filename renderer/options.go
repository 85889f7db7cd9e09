package renderer

import "github.com/achilleasa/raycast/tracer"

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of cpu tracers; defaults to the number of cpus.
	Workers int

	// Trace pixel tiles as ray packets.
	Packet bool

	// Block scheduler; defaults to the perfect scheduler.
	Scheduler tracer.BlockScheduler
}
