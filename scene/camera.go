package scene

import (
	"fmt"

	"github.com/achilleasa/raycast/types"
	"github.com/go-gl/mathgl/mgl32"
)

// Corner ray indices.
const (
	TopLeft = iota
	TopRight
	BottomLeft
	BottomRight
)

// Corners stores the ray directions at the four corners of the camera view.
// Per pixel rays are generated by interpolating them.
type Corners [4]types.Vec3

func (c Corners) String() string {
	return fmt.Sprintf(
		"Corner Rays:\nTL : (%3.3f, %3.3f, %3.3f)\nTR : (%3.3f, %3.3f, %3.3f)\nBL : (%3.3f, %3.3f, %3.3f)\nBR : (%3.3f, %3.3f, %3.3f)",
		c[0][0], c[0][1], c[0][2],
		c[1][0], c[1][1], c[1][2],
		c[2][0], c[2][1], c[2][2],
		c[3][0], c[3][1], c[3][2],
	)
}

// The camera type generates primary rays for the tracers.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3
	Pitch    float32
	Yaw      float32

	ViewMat mgl32.Mat4
	ProjMat mgl32.Mat4
	Corners Corners

	// Vertical field of view in degrees.
	FOV float32
}

func NewCamera(fov float32) *Camera {
	return &Camera{
		ViewMat:  mgl32.Ident4(),
		ProjMat:  mgl32.Ident4(),
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
	}
}

// Setup camera projection matrix.
func (c *Camera) SetupProjection(aspect float32) {
	c.ProjMat = mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, 1, 1000)
	c.Update()
}

// Update applies any pending pitch/yaw rotation and recalculates the view
// matrix and corner rays.
func (c *Camera) Update() {
	up := mgl32.Vec3(c.Up)
	dir := mgl32.Vec3(c.LookAt.Sub(c.Position).Normalize())

	if c.Pitch != 0 || c.Yaw != 0 {
		pitchQuat := mgl32.QuatRotate(c.Pitch, dir.Cross(up).Normalize())
		yawQuat := mgl32.QuatRotate(c.Yaw, up)
		dir = pitchQuat.Mul(yawQuat).Normalize().Rotate(dir)
		c.LookAt = c.Position.Add(types.Vec3(dir))
		c.Pitch, c.Yaw = 0, 0
	}

	c.ViewMat = mgl32.LookAtV(mgl32.Vec3(c.Position), mgl32.Vec3(c.LookAt), up)
	c.updateCorners()
}

// Generate a ray vector for each corner of the view by multiplying clip
// space vectors for each corner with the inv proj/view matrix, applying
// perspective and subtracting the camera eye position.
func (c *Camera) updateCorners() {
	invProjViewMat := c.ProjMat.Mul4(c.ViewMat).Inv()
	clip := [4]mgl32.Vec4{
		TopLeft:     {-1, 1, -1, 1},
		TopRight:    {1, 1, -1, 1},
		BottomLeft:  {-1, -1, -1, 1},
		BottomRight: {1, -1, -1, 1},
	}
	for i, v := range clip {
		v = invProjViewMat.Mul4x1(v)
		c.Corners[i] = types.Vec3(v.Vec3().Mul(1.0 / v.W())).Sub(c.Position)
	}
}

// Ray returns the primary ray through the normalized view coordinates (u, v)
// where (0, 0) is the top-left corner and (1, 1) the bottom-right one.
func (c *Camera) Ray(u, v float32) types.Ray {
	top := c.Corners[TopLeft].Add(c.Corners[TopRight].Sub(c.Corners[TopLeft]).Mul(u))
	bottom := c.Corners[BottomLeft].Add(c.Corners[BottomRight].Sub(c.Corners[BottomLeft]).Mul(u))
	dir := top.Add(bottom.Sub(top).Mul(v)).Normalize()
	return types.NewRay(c.Position, dir)
}

// PixelRay returns the ray through the center of pixel (x, y) of a frameW x
// frameH frame.
func (c *Camera) PixelRay(x, y, frameW, frameH int) types.Ray {
	return c.Ray(
		(float32(x)+0.5)/float32(frameW),
		(float32(y)+0.5)/float32(frameH),
	)
}

// Frustum returns the pyramid enclosing all primary rays.
func (c *Camera) Frustum() *types.Frustum {
	return types.NewFrustum(c.Position, [4]types.Vec3{
		c.Corners[TopLeft],
		c.Corners[TopRight],
		c.Corners[BottomRight],
		c.Corners[BottomLeft],
	})
}
