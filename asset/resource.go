package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Resources whose path ends with this suffix are transparently decompressed.
const compressedSuffix = ".zst"

// The Resource type wraps a streamable local file or remote resource.
type Resource struct {
	io.ReadCloser
	url        *url.URL
	compressed bool
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Ext returns the lower-case extension of the resource path, ignoring the
// compression suffix. For example, "scene.obj.zst" yields ".obj".
func (r *Resource) Ext() string {
	p := strings.ToLower(r.url.Path)
	p = strings.TrimSuffix(p, compressedSuffix)
	return path.Ext(p)
}

// Returns true if the resource stream is zstd-decompressed on the fly.
func (r *Resource) IsCompressed() bool {
	return r.compressed
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Create a new Resource data stream. If relTo is specified and pathToResource
// does not define a scheme, then the path to the new Resource will be generated
// by concatenating the base path of relTo and pathToResource.
//
// This function can handle http/https URLs by delegating to the net/http package.
// Paths ending in .zst are decompressed while reading. The caller must close
// the returned Resource.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	resURL, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	// If this is a relative url, clone parent url and adjust its path
	if resURL.Scheme == "" && relTo != nil && !filepath.IsAbs(resURL.Path) {
		relPath := resURL.Path
		resURL, _ = url.Parse(relTo.url.String())
		prefix := resURL.Path
		if resURL.Scheme == "" {
			prefix, err = filepath.Abs(relTo.url.String())
			if err != nil {
				return nil, fmt.Errorf("resource: could not detect abs path for %s: %s", relTo.url.String(), err)
			}
		}
		resURL.Path = filepath.Dir(prefix) + "/" + relPath
	}

	var reader io.ReadCloser
	switch resURL.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(resURL.Path))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		resp, err := http.Get(resURL.String())
		if err != nil {
			return nil, fmt.Errorf("resource: could not fetch '%s': %s", resURL.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("resource: could not fetch '%s': status %d", resURL.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", resURL.Scheme)
	}

	return wrap(reader, resURL)
}

// Create a resource from a reader. If name ends in .zst the stream is
// decompressed while reading.
func NewResourceFromStream(name string, source io.Reader) (*Resource, error) {
	resURL, err := url.Parse(name)
	if err != nil {
		return nil, err
	}
	return wrap(io.NopCloser(source), resURL)
}

func wrap(reader io.ReadCloser, resURL *url.URL) (*Resource, error) {
	if !strings.HasSuffix(strings.ToLower(resURL.Path), compressedSuffix) {
		return &Resource{ReadCloser: reader, url: resURL}, nil
	}

	dec, err := zstd.NewReader(reader)
	if err != nil {
		reader.Close()
		return nil, fmt.Errorf("resource: could not create zstd decoder for '%s': %s", resURL.String(), err)
	}
	return &Resource{
		ReadCloser: &zstdReadCloser{Decoder: dec, src: reader},
		url:        resURL,
		compressed: true,
	}, nil
}

// zstdReadCloser releases both the decoder and the compressed source.
type zstdReadCloser struct {
	*zstd.Decoder
	src io.Closer
}

func (z *zstdReadCloser) Close() error {
	z.Decoder.Close()
	return z.src.Close()
}

// Compress encodes data using zstd. It is used to produce .zst resources.
func Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}
