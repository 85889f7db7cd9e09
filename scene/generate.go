package scene

import (
	"math/rand"

	"github.com/achilleasa/raycast/types"
)

// RandomSpheres generates a scene with count spheres of random size scattered
// above a ground box. Every eighth sphere uses a material that does not cast
// shadows. The same seed always yields the same scene.
func RandomSpheres(count int, seed int64) *Scene {
	rng := rand.New(rand.NewSource(seed))
	sc := NewScene()

	ground := NewMaterial("ground", types.Vec3{0.6, 0.6, 0.6})
	solid := NewMaterial("solid", types.Vec3{0.8, 0.3, 0.2})
	glass := NewMaterial("glass", types.Vec3{0.3, 0.5, 0.9})
	glass.NoShadow = true
	for _, mat := range []*Material{ground, solid, glass} {
		sc.AddMaterial(mat)
	}

	sc.AddPrimitive(NewBox(types.Vec3{0, -0.5, 0}, types.Vec3{40, 1, 40}, ground))
	for i := 0; i < count; i++ {
		radius := 0.1 + rng.Float32()*0.6
		center := types.Vec3{
			rng.Float32()*30 - 15,
			radius + rng.Float32()*4,
			rng.Float32()*30 - 15,
		}
		mat := solid
		if i%8 == 7 {
			mat = glass
		}
		sc.AddPrimitive(NewSphere(center, radius, mat))
	}

	sc.Light = types.Vec3{10, 25, 10}
	sc.SetCamera(defaultCamera(types.Vec3{0, 12, 28}, types.Vec3{0, 1, 0}))
	return sc
}

// Grid generates an n x n x n lattice of unit boxes spaced two units apart.
func Grid(n int) *Scene {
	sc := NewScene()
	mat := NewMaterial("grid", types.Vec3{0.7, 0.7, 0.7})
	sc.AddMaterial(mat)

	offset := float32(n-1) * -1.0
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				center := types.Vec3{
					offset + float32(2*x),
					offset + float32(2*y),
					offset + float32(2*z),
				}
				sc.AddPrimitive(NewBox(center, types.Vec3{1, 1, 1}, mat))
			}
		}
	}

	sc.Light = types.Vec3{float32(3 * n), float32(4 * n), float32(5 * n)}
	sc.SetCamera(defaultCamera(types.Vec3{0, float32(n), float32(4*n + 2)}, types.Vec3{}))
	return sc
}

// DefaultCamera returns a camera with a 45 degree FOV looking at the given
// point. It is used when a scene file does not define one.
func DefaultCamera(bounds types.BBox) *Camera {
	if bounds.IsEmpty() {
		return defaultCamera(types.Vec3{0, 0, 5}, types.Vec3{})
	}
	center := bounds.Center()
	radius := bounds.Diagonal().Len() * 0.5
	return defaultCamera(center.Add(types.Vec3{0, radius * 0.5, radius * 2.5}), center)
}

func defaultCamera(eye, lookAt types.Vec3) *Camera {
	cam := NewCamera(45)
	cam.Position = eye
	cam.LookAt = lookAt
	cam.SetupProjection(1)
	return cam
}
