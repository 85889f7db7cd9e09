package renderer

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/raycast/bvh"
	"github.com/achilleasa/raycast/scene"
	"github.com/achilleasa/raycast/tracer"
	"github.com/achilleasa/raycast/types"
)

func TestNewDefaultErrors(t *testing.T) {
	sc := scene.Grid(2)
	index := bvh.New(sc.Primitives, bvh.DefaultOptions())

	type spec struct {
		index    *bvh.Index
		camera   *scene.Camera
		opts     Options
		expError error
	}
	specs := []spec{
		{nil, sc.Camera, Options{FrameW: 8, FrameH: 8}, ErrIndexNotDefined},
		{index, nil, Options{FrameW: 8, FrameH: 8}, ErrCameraNotDefined},
		{index, sc.Camera, Options{FrameW: 0, FrameH: 8}, ErrInvalidFrameSize},
	}

	for idx, s := range specs {
		_, err := NewDefault(s.index, s.camera, sc.Light, s.opts)
		if err != s.expError {
			t.Fatalf("[spec %d] expected to get error %v; got %v", idx, s.expError, err)
		}
	}
}

func renderFrame(t *testing.T, sc *scene.Scene, opts Options) ([]byte, FrameStats) {
	index := bvh.New(sc.Primitives, bvh.DefaultOptions())
	r, err := NewDefault(index, sc.Camera, sc.Light, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	// Render twice so the perfect scheduler uses feedback from the first frame
	for i := 0; i < 2; i++ {
		if err = r.Render(); err != nil {
			t.Fatal(err)
		}
	}
	return append([]byte(nil), r.Frame().Pix...), r.Stats()
}

func TestRenderWorkerCountDoesNotAffectOutput(t *testing.T) {
	sc := scene.RandomSpheres(32, 3)

	single, stats := renderFrame(t, sc, Options{FrameW: 32, FrameH: 24, Workers: 1})
	if len(stats.Tracers) != 1 {
		t.Fatalf("expected stats for 1 tracer; got %d", len(stats.Tracers))
	}

	for _, packet := range []bool{false, true} {
		multi, stats := renderFrame(t, sc, Options{FrameW: 32, FrameH: 24, Workers: 4, Packet: packet, Scheduler: tracer.NaiveScheduler()})
		if !bytes.Equal(single, multi) {
			t.Fatalf("[packet: %t] expected frames rendered with 1 and 4 workers to be identical", packet)
		}

		var rows uint32
		var primaryRays uint64
		for _, stat := range stats.Tracers {
			rows += stat.BlockH
			primaryRays += stat.PrimaryRays
		}
		if rows != 24 {
			t.Fatalf("[packet: %t] expected tracer blocks to cover 24 rows; got %d", packet, rows)
		}
		if primaryRays != 32*24 {
			t.Fatalf("[packet: %t] expected %d primary rays; got %d", packet, 32*24, primaryRays)
		}
	}
}

func TestRenderMoreWorkersThanRows(t *testing.T) {
	sc := scene.Grid(1)
	_, stats := renderFrame(t, sc, Options{FrameW: 4, FrameH: 2, Workers: 8})
	if len(stats.Tracers) > 2 {
		t.Fatalf("expected at most 2 active tracers; got %d", len(stats.Tracers))
	}
}

func TestRenderEmptyIndex(t *testing.T) {
	sc := scene.NewScene()
	sc.SetCamera(scene.DefaultCamera(types.EmptyBBox()))

	pix, _ := renderFrame(t, sc, Options{FrameW: 8, FrameH: 8, Workers: 2})

	// Every pixel shows the background
	frame := &image.RGBA{Pix: pix, Stride: 8 * 4, Rect: image.Rect(0, 0, 8, 8)}
	for y := 0; y < 8; y++ {
		c0 := frame.RGBAAt(0, y)
		for x := 1; x < 8; x++ {
			if frame.RGBAAt(x, y) != c0 {
				t.Fatalf("expected row %d to have a uniform background color", y)
			}
		}
	}
}

func TestFrameStatsTable(t *testing.T) {
	sc := scene.Grid(2)
	_, stats := renderFrame(t, sc, Options{FrameW: 16, FrameH: 16, Workers: 2})

	table := stats.Table()
	for _, exp := range []string{"Tracer", "cpu-0", "cpu-1", "MRays/s"} {
		if !strings.Contains(table, exp) {
			t.Fatalf("expected stats table to contain %q:\n%s", exp, table)
		}
	}
}

func TestSaveFrame(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 4, 4))
	dir := t.TempDir()

	for _, name := range []string{"frame.png", "frame.tiff", "frame.bmp"} {
		imgFile := filepath.Join(dir, name)
		if err := SaveFrame(frame, imgFile); err != nil {
			t.Fatalf("[%s] %v", name, err)
		}

		f, err := os.Open(imgFile)
		if err != nil {
			t.Fatal(err)
		}
		_, format, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Fatalf("[%s] could not decode image: %v", name, err)
		}
		expFormat := strings.TrimPrefix(filepath.Ext(name), ".")
		if format != expFormat {
			t.Fatalf("[%s] expected format %q; got %q", name, expFormat, format)
		}
	}

	if err := SaveFrame(frame, filepath.Join(dir, "frame.jpg")); err != ErrUnsupportedImage {
		t.Fatalf("expected to get error %v; got %v", ErrUnsupportedImage, err)
	}
}
