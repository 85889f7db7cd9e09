package cmd

import (
	"github.com/urfave/cli"
)

// Build a BVH for a scene and display its statistics.
func BuildIndex(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}
	logger.Noticef("scene information:\n%s", sc.Stats())

	opts, err := indexOptions(ctx)
	if err != nil {
		return err
	}
	index := buildIndex(sc, opts)

	if ctx.Bool("validate") {
		if err = index.Validate(); err != nil {
			return err
		}
		logger.Notice("index passed validation")
	}

	logger.Noticef("index statistics:\n%s", index.Stats().Table())
	logger.Noticef("index fingerprint: %016x", index.Fingerprint())
	return nil
}
