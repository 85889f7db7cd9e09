package renderer

import (
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/achilleasa/raycast/bvh"
	"github.com/achilleasa/raycast/log"
	"github.com/achilleasa/raycast/scene"
	"github.com/achilleasa/raycast/tracer"
	"github.com/achilleasa/raycast/types"
)

// The default renderer splits each frame into row blocks and renders them
// concurrently using a pool of cpu tracers.
type defaultRenderer struct {
	logger log.Logger

	tracers   []tracer.Tracer
	scheduler tracer.BlockScheduler

	frame *image.RGBA
	opts  Options
	stats FrameStats
}

// Create a new renderer for the given index. All tracers share the index,
// camera and light position.
func NewDefault(index *bvh.Index, camera *scene.Camera, light types.Vec3, opts Options) (Renderer, error) {
	switch {
	case index == nil:
		return nil, ErrIndexNotDefined
	case camera == nil:
		return nil, ErrCameraNotDefined
	case opts.FrameW == 0 || opts.FrameH == 0:
		return nil, ErrInvalidFrameSize
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Workers > int(opts.FrameH) {
		opts.Workers = int(opts.FrameH)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = tracer.PerfectScheduler()
	}

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		scheduler: opts.Scheduler,
		frame:     image.NewRGBA(image.Rect(0, 0, int(opts.FrameW), int(opts.FrameH))),
		opts:      opts,
	}

	camera.SetupProjection(float32(opts.FrameW) / float32(opts.FrameH))
	for i := 0; i < opts.Workers; i++ {
		tr := tracer.NewCPUTracer(fmt.Sprintf("cpu-%d", i))
		if err := tr.Setup(r.frame); err != nil {
			tr.Close()
			r.Close()
			return nil, err
		}
		tr.Update(tracer.UpdateIndex, index)
		tr.Update(tracer.UpdateCamera, camera)
		tr.Update(tracer.UpdateLight, light)
		r.tracers = append(r.tracers, tr)
	}

	if len(r.tracers) == 0 {
		return nil, ErrNoTracers
	}

	r.logger.Infof("attached %d cpu tracers (packet mode: %t)", len(r.tracers), opts.Packet)
	return r, nil
}

// Shutdown all tracers.
func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}

// Get last frame stats.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

// Get the frame buffer.
func (r *defaultRenderer) Frame() *image.RGBA {
	return r.frame
}

// Render a frame.
func (r *defaultRenderer) Render() error {
	if len(r.tracers) == 0 {
		return ErrNoTracers
	}

	start := time.Now()
	blockAssignment := r.scheduler.Schedule(r.tracers, r.opts.FrameH)

	doneChan := make(chan uint32, len(r.tracers))
	errChan := make(chan error, len(r.tracers))
	var blockY uint32 = 0
	pending := 0
	for idx, tr := range r.tracers {
		if blockAssignment[idx] == 0 {
			continue
		}

		tr.Enqueue(tracer.BlockRequest{
			FrameW:   r.opts.FrameW,
			FrameH:   r.opts.FrameH,
			BlockY:   blockY,
			BlockH:   blockAssignment[idx],
			Packet:   r.opts.Packet,
			DoneChan: doneChan,
			ErrChan:  errChan,
		})
		blockY += blockAssignment[idx]
		pending++
	}

	// Wait for all tracers to finish; report the first error after every
	// tracer has replied so no tracer is left writing to the frame buffer.
	var err error
	for ; pending > 0; pending-- {
		select {
		case <-doneChan:
		case trErr := <-errChan:
			if err == nil {
				err = trErr
			}
		}
	}
	if err != nil {
		return err
	}

	r.stats = r.collectStats(blockAssignment, time.Since(start))
	r.logger.Debugf("rendered frame in %d ms", r.stats.RenderTime.Nanoseconds()/1e6)
	return nil
}

func (r *defaultRenderer) collectStats(blockAssignment []uint32, renderTime time.Duration) FrameStats {
	stats := FrameStats{
		Tracers:    make([]TracerStat, 0, len(r.tracers)),
		RenderTime: renderTime,
	}
	for idx, tr := range r.tracers {
		if blockAssignment[idx] == 0 {
			continue
		}
		trStats := tr.Stats()
		stats.Tracers = append(stats.Tracers, TracerStat{
			Id:           tr.Id(),
			BlockH:       trStats.BlockH,
			FramePercent: 100.0 * float32(trStats.BlockH) / float32(r.opts.FrameH),
			RenderTime:   trStats.RenderTime,
			PrimaryRays:  trStats.PrimaryRays,
			ShadowRays:   trStats.ShadowRays,
		})
	}
	return stats
}
