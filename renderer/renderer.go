package renderer

import "image"

type Renderer interface {
	// Render frame.
	Render() error

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats

	// Get the frame buffer holding the last rendered frame.
	Frame() *image.RGBA
}
