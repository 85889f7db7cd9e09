package cmd

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/achilleasa/raycast/bvh"
	"github.com/achilleasa/raycast/scene"
	"github.com/achilleasa/raycast/types"
	"github.com/urfave/cli"
)

// Compare the nearest and any hit results of SAH and HLBVH indices built
// for the same scene.
func CompareIndices(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	opts, err := indexOptions(ctx)
	if err != nil {
		return err
	}

	opts.Split = bvh.SplitSAH
	sahIndex := buildIndex(sc, opts)
	opts.Split = bvh.SplitHLBVH
	hlbvhIndex := buildIndex(sc, opts)

	logger.Noticef("SAH index statistics:\n%s", sahIndex.Stats().Table())
	logger.Noticef("HLBVH index statistics:\n%s", hlbvhIndex.Stats().Table())

	rays := randomRays(sc, ctx.Int("rays"), ctx.Int64("seed"))
	mismatches := compareIndices(sahIndex, hlbvhIndex, rays)
	if mismatches > 0 {
		return fmt.Errorf("compare: %d of %d rays produced different results", mismatches, len(rays))
	}

	logger.Noticef("all %d rays produced identical results", len(rays))
	return nil
}

// Count rays for which the two indices disagree.
func compareIndices(a, b *bvh.Index, rays []types.Ray) int {
	mismatches := 0
	for i := range rays {
		hitA, foundA := a.NearestHit(&rays[i])
		hitB, foundB := b.NearestHit(&rays[i])

		switch {
		case foundA != foundB:
			logger.Warningf("ray %d: hit mismatch (%t vs %t)", i, foundA, foundB)
			mismatches++
		case foundA && !sameDistance(hitA.T, hitB.T):
			logger.Warningf("ray %d: distance mismatch (%f vs %f)", i, hitA.T, hitB.T)
			mismatches++
		case a.AnyHit(&rays[i], math.MaxFloat32) != b.AnyHit(&rays[i], math.MaxFloat32):
			logger.Warningf("ray %d: any hit mismatch", i)
			mismatches++
		}
	}
	return mismatches
}

// Relative tolerance for hit distances reported by the two indices.
const distanceTolerance = 1e-5

func sameDistance(a, b float32) bool {
	diff := math.Abs(float64(a) - float64(b))
	return diff <= distanceTolerance*math.Max(1, math.Max(math.Abs(float64(a)), math.Abs(float64(b))))
}

// Generate rays with origins scattered around the scene bounds and uniformly
// distributed directions.
func randomRays(sc *scene.Scene, count int, seed int64) []types.Ray {
	rng := rand.New(rand.NewSource(seed))
	bounds := sc.Bounds()
	if bounds.IsEmpty() {
		bounds = types.NewBBox(types.Vec3{-1, -1, -1}, types.Vec3{1, 1, 1})
	}
	center := bounds.Center()
	extent := bounds.Diagonal()

	rays := make([]types.Ray, count)
	for i := range rays {
		var origin, dir types.Vec3
		for axis := 0; axis < 3; axis++ {
			origin[axis] = center[axis] + (rng.Float32()-0.5)*extent[axis]*1.5
		}
		for dir.Len() < 1e-3 {
			dir = types.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
		}
		rays[i] = types.NewRay(origin, dir.Normalize())
	}
	return rays
}
