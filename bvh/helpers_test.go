package bvh

import (
	"math"
	"math/rand"

	"github.com/achilleasa/raycast/scene"
	"github.com/achilleasa/raycast/types"
)

var allPolicies = []SplitPolicy{SplitSAH, SplitMiddle, SplitEqualCounts, SplitHLBVH}

// randomPrimitives returns a reproducible mix of spheres, boxes and triangles
// scattered inside a 100 unit cube. A few primitives are duplicated so that
// some centroids coincide.
func randomPrimitives(count int, seed int64) []scene.Primitive {
	rng := rand.New(rand.NewSource(seed))
	mat := scene.NewMaterial("test", types.Vec3{1, 1, 1})

	randVec := func(scale float32) types.Vec3 {
		return types.Vec3{
			(rng.Float32()*2 - 1) * scale,
			(rng.Float32()*2 - 1) * scale,
			(rng.Float32()*2 - 1) * scale,
		}
	}

	prims := make([]scene.Primitive, 0, count)
	for i := 0; i < count; i++ {
		center := randVec(50)
		switch i % 3 {
		case 0:
			prims = append(prims, scene.NewSphere(center, 0.2+rng.Float32()*2, mat))
		case 1:
			dims := types.Vec3{0.2 + rng.Float32()*3, 0.2 + rng.Float32()*3, 0.2 + rng.Float32()*3}
			prims = append(prims, scene.NewBox(center, dims, mat))
		default:
			prims = append(prims, scene.NewTriangle([3]types.Vec3{
				center.Add(randVec(3)),
				center.Add(randVec(3)),
				center.Add(randVec(3)),
			}, mat))
		}
	}

	// Stack a few identical spheres on top of existing ones.
	for i := 0; i < count/20; i++ {
		if s, ok := prims[i*3].(*scene.Sphere); ok {
			prims = append(prims, scene.NewSphere(s.Center, s.Radius*0.5, mat))
		}
	}
	return prims
}

// randomRays returns rays whose origins lie inside a 120 unit cube.
func randomRays(count int, seed int64) []types.Ray {
	rng := rand.New(rand.NewSource(seed))
	rays := make([]types.Ray, count)
	for i := range rays {
		origin := types.Vec3{
			(rng.Float32()*2 - 1) * 60,
			(rng.Float32()*2 - 1) * 60,
			(rng.Float32()*2 - 1) * 60,
		}
		// Aim at a random point near the center so most rays cross the scene.
		target := types.Vec3{
			(rng.Float32()*2 - 1) * 30,
			(rng.Float32()*2 - 1) * 30,
			(rng.Float32()*2 - 1) * 30,
		}
		rays[i] = types.NewRay(origin, target.Sub(origin).Normalize())
	}
	return rays
}

// bruteForceNearest tests the ray against every primitive.
func bruteForceNearest(prims []scene.Primitive, ray *types.Ray) (scene.Intersection, scene.Primitive) {
	var (
		best    scene.Intersection
		bestHit scene.Primitive
	)
	best.T = float32(math.Inf(1))
	for _, prim := range prims {
		if isect, ok := prim.Intersect(ray, best.T); ok {
			best, bestHit = isect, prim
		}
	}
	return best, bestHit
}

// cameraPacket returns the rays of an 8x8 pixel tile and their frustum.
func cameraPacket(cam *scene.Camera, tileX, tileY, frameW, frameH int) ([]types.Ray, *types.Frustum) {
	rays := make([]types.Ray, 0, 64)
	for y := tileY; y < tileY+8; y++ {
		for x := tileX; x < tileX+8; x++ {
			rays = append(rays, cam.PixelRay(x, y, frameW, frameH))
		}
	}
	return rays, types.FrustumFromRays(rays)
}
