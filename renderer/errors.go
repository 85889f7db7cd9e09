package renderer

import "errors"

var (
	ErrNoTracers        = errors.New("renderer: no tracers attached")
	ErrIndexNotDefined  = errors.New("renderer: no index defined")
	ErrCameraNotDefined = errors.New("renderer: no camera defined")
	ErrInvalidFrameSize = errors.New("renderer: frame dimensions must be positive")
	ErrUnsupportedImage = errors.New("renderer: unsupported image format")
)
