package main

import (
	"os"

	"github.com/achilleasa/raycast/cmd"
	"github.com/achilleasa/raycast/log"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "raycast"
	app.Usage = "build BVH indices and trace rays against them"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "set log level: debug, info, notice, warning or error",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build a BVH for a scene and display its statistics",
			Description: `
Parse a scene from a wavefront obj or gltf/glb file (optionally zstd compressed)
or generate a procedural one, build a BVH using the selected split policy and
display statistics about the generated tree.`,
			ArgsUsage: "scene_file",
			Flags: append([]cli.Flag{
				cli.BoolFlag{
					Name:  "validate",
					Usage: "check the structural invariants of the built index",
				},
			}, cmd.SceneFlags...),
			Action: cmd.BuildIndex,
		},
		{
			Name:        "render",
			Usage:       "render a single frame",
			Description: `Render a single frame using a pool of cpu tracers.`,
			ArgsUsage:   "scene_file",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "workers, w",
					Usage: "number of cpu tracers (defaults to the number of cpus)",
				},
				cli.BoolFlag{
					Name:  "packet",
					Usage: "trace 8x8 pixel tiles as ray packets",
				},
				cli.StringFlag{
					Name:  "scheduler",
					Value: "perfect",
					Usage: "block scheduler: naive or perfect",
				},
				cli.IntFlag{
					Name:  "frames",
					Value: 1,
					Usage: "number of frames to render; the last one is saved",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame (png, tiff or bmp)",
				},
			}, cmd.SceneFlags...),
			Action: cmd.RenderFrame,
		},
		{
			Name:  "compare",
			Usage: "compare SAH and HLBVH query results for a scene",
			Description: `
Build a SAH and a HLBVH index for the same scene, cast random rays against
both and report any rays for which the nearest or any hit results differ.`,
			ArgsUsage: "scene_file",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "rays",
					Value: 100000,
					Usage: "number of random rays to cast",
				},
			}, cmd.SceneFlags...),
			Action: cmd.CompareIndices,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.New("raycast").Error(err.Error())
		os.Exit(1)
	}
}
