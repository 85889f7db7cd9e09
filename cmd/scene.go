package cmd

import (
	"errors"
	"time"

	"github.com/achilleasa/raycast/bvh"
	"github.com/achilleasa/raycast/scene"
	"github.com/achilleasa/raycast/scene/reader"
	"github.com/urfave/cli"
)

// Flags shared by all commands that load a scene and build an index.
var SceneFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "spheres",
		Usage: "generate a scene with this many random spheres instead of reading a scene file",
	},
	cli.Int64Flag{
		Name:  "seed",
		Value: 1,
		Usage: "random seed for generated scenes",
	},
	cli.IntFlag{
		Name:  "grid",
		Usage: "generate a N x N x N grid of boxes instead of reading a scene file",
	},
	cli.StringFlag{
		Name:  "split",
		Value: bvh.SplitSAH.String(),
		Usage: "BVH split policy: sah, middle, equal or hlbvh",
	},
	cli.IntFlag{
		Name:  "max-leaf",
		Value: 4,
		Usage: "max primitives per BVH leaf (1-255)",
	},
	cli.StringFlag{
		Name:  "lanes",
		Value: bvh.LaneRanged.String(),
		Usage: "packet lane strategy: ranged, first or partition",
	},
}

// Read the scene file argument or generate a procedural scene.
func loadScene(ctx *cli.Context) (*scene.Scene, error) {
	switch {
	case ctx.Int("spheres") > 0:
		logger.Noticef("generating scene with %d random spheres (seed %d)", ctx.Int("spheres"), ctx.Int64("seed"))
		return scene.RandomSpheres(ctx.Int("spheres"), ctx.Int64("seed")), nil
	case ctx.Int("grid") > 0:
		logger.Noticef("generating %d^3 box grid", ctx.Int("grid"))
		return scene.Grid(ctx.Int("grid")), nil
	case ctx.NArg() != 1:
		return nil, errors.New("missing scene file argument")
	}

	return reader.ReadScene(ctx.Args().First())
}

// Parse index options from the command line.
func indexOptions(ctx *cli.Context) (bvh.Options, error) {
	split, err := bvh.ParseSplitPolicy(ctx.String("split"))
	if err != nil {
		return bvh.Options{}, err
	}
	lanes, err := bvh.ParseLaneStrategy(ctx.String("lanes"))
	if err != nil {
		return bvh.Options{}, err
	}

	return bvh.Options{
		MaxPrimsInLeaf: ctx.Int("max-leaf"),
		Split:          split,
		Lanes:          lanes,
	}, nil
}

// Build an index for the scene primitives.
func buildIndex(sc *scene.Scene, opts bvh.Options) *bvh.Index {
	logger.Noticef("building BVH for %d primitives using %s split policy", len(sc.Primitives), opts.Split)
	start := time.Now()
	index := bvh.New(sc.Primitives, opts)
	logger.Noticef("built BVH in %d ms", time.Since(start).Nanoseconds()/1e6)
	return index
}
