package bvh

import (
	"testing"

	"github.com/achilleasa/raycast/scene"
	"github.com/achilleasa/raycast/types"
)

func BenchmarkBuildSAH(b *testing.B)   { benchmarkBuild(b, SplitSAH) }
func BenchmarkBuildHLBVH(b *testing.B) { benchmarkBuild(b, SplitHLBVH) }

func benchmarkBuild(b *testing.B, policy SplitPolicy) {
	prims := randomPrimitives(20000, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		New(prims, Options{Split: policy})
	}
}

func BenchmarkNearestHit(b *testing.B) {
	idx := New(randomPrimitives(20000, 1), DefaultOptions())
	rays := randomRays(1024, 2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.NearestHit(&rays[i%len(rays)])
	}
}

func BenchmarkAnyHit(b *testing.B) {
	idx := New(randomPrimitives(20000, 1), DefaultOptions())
	rays := randomRays(1024, 2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.AnyHit(&rays[i%len(rays)], 50)
	}
}

func BenchmarkBatchNearestHitRanged(b *testing.B)    { benchmarkBatch(b, LaneRanged) }
func BenchmarkBatchNearestHitPartition(b *testing.B) { benchmarkBatch(b, LanePartition) }

func benchmarkBatch(b *testing.B, lanes LaneStrategy) {
	idx := New(randomPrimitives(20000, 1), Options{Lanes: lanes})

	cam := scene.NewCamera(60)
	cam.Position = types.Vec3{0, 0, 90}
	cam.SetupProjection(1)

	type tile struct {
		rays    []types.Ray
		frustum *types.Frustum
	}
	var tiles []tile
	for y := 0; y < 64; y += 8 {
		for x := 0; x < 64; x += 8 {
			rays, frustum := cameraPacket(cam, x, y, 64, 64)
			tiles = append(tiles, tile{rays, frustum})
		}
	}

	hits := make([]Hit, MaxPacketSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tl := tiles[i%len(tiles)]
		idx.BatchNearestHit(tl.rays, tl.frustum, hits)
	}
}
