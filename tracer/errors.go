package tracer

import "errors"

var (
	ErrNoIndex          = errors.New("tracer: no index attached")
	ErrNoCamera         = errors.New("tracer: no camera attached")
	ErrNoFrameBuffer    = errors.New("tracer: no frame buffer attached")
	ErrBlockOutOfBounds = errors.New("tracer: block request exceeds frame buffer dimensions")
)
