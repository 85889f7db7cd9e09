package tracer

import (
	"image"
	"time"
)

type UpdateType uint8

const (
	UpdateIndex UpdateType = iota
	UpdateCamera
	UpdateLight
)

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Frame dimensions.
	FrameW uint32
	FrameH uint32

	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// Trace 8x8 pixel tiles as ray packets instead of individual rays.
	Packet bool

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height
	BlockH uint32

	// The time for rendering this block
	RenderTime time.Duration

	// Number of rays traced for this block.
	PrimaryRays uint64
	ShadowRays  uint64
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Get the tracers computation speed estimate compared to a single
	// cpu core.
	SpeedEstimate() float32

	// Attach the frame buffer that rendered blocks are written to and
	// start processing requests.
	Setup(frame *image.RGBA) error

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Append a change to the tracer's update buffer. Changes are applied
	// before the next block is rendered.
	Update(UpdateType, interface{})

	// Retrieve last frame statistics.
	Stats() *Stats
}
