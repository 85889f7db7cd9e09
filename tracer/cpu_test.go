package tracer

import (
	"bytes"
	"image"
	"testing"
	"time"

	"github.com/achilleasa/raycast/bvh"
	"github.com/achilleasa/raycast/scene"
)

func setupTracer(t *testing.T, sc *scene.Scene, frameW, frameH int) (*CPUTracer, *image.RGBA) {
	frame := image.NewRGBA(image.Rect(0, 0, frameW, frameH))
	tr := NewCPUTracer("test")
	if err := tr.Setup(frame); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(tr.Close)

	sc.Camera.SetupProjection(float32(frameW) / float32(frameH))
	tr.Update(UpdateIndex, bvh.New(sc.Primitives, bvh.DefaultOptions()))
	tr.Update(UpdateCamera, sc.Camera)
	tr.Update(UpdateLight, sc.Light)
	return tr, frame
}

func renderBlock(t *testing.T, tr Tracer, req BlockRequest) error {
	doneChan := make(chan uint32, 1)
	errChan := make(chan error, 1)
	req.DoneChan = doneChan
	req.ErrChan = errChan
	tr.Enqueue(req)

	select {
	case rows := <-doneChan:
		if rows != req.BlockH {
			t.Fatalf("expected tracer to report %d completed rows; got %d", req.BlockH, rows)
		}
		return nil
	case err := <-errChan:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for block to render")
	}
	return nil
}

func TestCPUTracerPacketModeMatchesSingleRays(t *testing.T) {
	frameW, frameH := 40, 30
	sc := scene.RandomSpheres(64, 7)

	tr, frame := setupTracer(t, sc, frameW, frameH)
	req := BlockRequest{FrameW: uint32(frameW), FrameH: uint32(frameH), BlockY: 0, BlockH: uint32(frameH)}
	if err := renderBlock(t, tr, req); err != nil {
		t.Fatal(err)
	}
	singleRays := append([]byte(nil), frame.Pix...)
	stats := *tr.Stats()

	req.Packet = true
	if err := renderBlock(t, tr, req); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(singleRays, frame.Pix) {
		t.Fatal("expected packet and single ray rendering to produce identical frames")
	}

	expRays := uint64(frameW * frameH)
	if stats.PrimaryRays != expRays {
		t.Fatalf("expected %d primary rays; got %d", expRays, stats.PrimaryRays)
	}
	if stats.ShadowRays == 0 {
		t.Fatal("expected shadow rays to be traced")
	}
	if stats.BlockH != uint32(frameH) {
		t.Fatalf("expected block height %d; got %d", frameH, stats.BlockH)
	}
}

func TestCPUTracerRendersOnlyRequestedRows(t *testing.T) {
	frameW, frameH := 16, 16
	tr, frame := setupTracer(t, scene.Grid(2), frameW, frameH)

	req := BlockRequest{FrameW: uint32(frameW), FrameH: uint32(frameH), BlockY: 4, BlockH: 6, Packet: true}
	if err := renderBlock(t, tr, req); err != nil {
		t.Fatal(err)
	}

	for y := 0; y < frameH; y++ {
		alpha := frame.RGBAAt(0, y).A
		inBlock := y >= 4 && y < 10
		if inBlock && alpha != 255 {
			t.Fatalf("expected row %d to be rendered", y)
		} else if !inBlock && alpha != 0 {
			t.Fatalf("expected row %d not to be rendered", y)
		}
	}
}

func TestCPUTracerErrors(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 8, 8))
	tr := NewCPUTracer("test")
	if err := tr.Setup(nil); err != ErrNoFrameBuffer {
		t.Fatalf("expected to get error %v; got %v", ErrNoFrameBuffer, err)
	}
	if err := tr.Setup(frame); err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	req := BlockRequest{FrameW: 8, FrameH: 8, BlockH: 8}
	if err := renderBlock(t, tr, req); err != ErrNoIndex {
		t.Fatalf("expected to get error %v; got %v", ErrNoIndex, err)
	}

	sc := scene.Grid(1)
	tr.Update(UpdateIndex, bvh.New(sc.Primitives, bvh.DefaultOptions()))
	if err := renderBlock(t, tr, req); err != ErrNoCamera {
		t.Fatalf("expected to get error %v; got %v", ErrNoCamera, err)
	}

	tr.Update(UpdateCamera, sc.Camera)
	req.BlockY = 4
	if err := renderBlock(t, tr, req); err != ErrBlockOutOfBounds {
		t.Fatalf("expected to get error %v; got %v", ErrBlockOutOfBounds, err)
	}
}
