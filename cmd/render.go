package cmd

import (
	"time"

	"github.com/achilleasa/raycast/renderer"
	"github.com/achilleasa/raycast/tracer"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	idxOpts, err := indexOptions(ctx)
	if err != nil {
		return err
	}
	index := buildIndex(sc, idxOpts)

	opts := renderer.Options{
		FrameW:  uint32(ctx.Int("width")),
		FrameH:  uint32(ctx.Int("height")),
		Workers: ctx.Int("workers"),
		Packet:  ctx.Bool("packet"),
	}
	switch ctx.String("scheduler") {
	case "naive":
		opts.Scheduler = tracer.NaiveScheduler()
	default:
		opts.Scheduler = tracer.PerfectScheduler()
	}

	r, err := renderer.NewDefault(index, sc.Camera, sc.Light, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	for frame := 0; frame < max(1, ctx.Int("frames")); frame++ {
		if err = r.Render(); err != nil {
			return err
		}
		logger.Noticef("frame %d statistics\n%s", frame, r.Stats().Table())
	}

	imgFile := ctx.String("out")
	start := time.Now()
	if err = renderer.SaveFrame(r.Frame(), imgFile); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s in %d ms", imgFile, time.Since(start).Nanoseconds()/1e6)
	return nil
}
