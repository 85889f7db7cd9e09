package renderer

import (
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Encode frame using the image format implied by the file extension.
func EncodeFrame(w io.Writer, frame image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, frame)
	case ".tif", ".tiff":
		return tiff.Encode(w, frame, &tiff.Options{Compression: tiff.Deflate})
	case ".bmp":
		return bmp.Encode(w, frame)
	}
	return ErrUnsupportedImage
}

// Save frame to a png, tiff or bmp file.
func SaveFrame(frame image.Image, imgFile string) error {
	ext := strings.ToLower(filepath.Ext(imgFile))
	switch ext {
	case ".png", ".tif", ".tiff", ".bmp":
	default:
		return ErrUnsupportedImage
	}

	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}

	err = EncodeFrame(f, frame, ext)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}
