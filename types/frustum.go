package types

// Plane is the set of points p for which Normal·p + D == 0. Points with a
// positive signed distance lie on the inner side.
type Plane struct {
	Normal Vec3
	D      float32
}

// Distance returns the signed distance of p from the plane, scaled by the
// length of the plane normal.
func (p Plane) Distance(pt Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum is a convex volume bounded by inward facing planes that encloses a
// set of rays. A frustum without planes is unbounded and accepts everything.
type Frustum struct {
	Planes []Plane
}

// NewFrustum builds the pyramid with its apex at origin whose edges run along
// the four corner directions. The corners must be supplied in winding order
// (either clockwise or counter-clockwise).
func NewFrustum(origin Vec3, corners [4]Vec3) *Frustum {
	var center Vec3
	for _, c := range corners {
		center = center.Add(c.Normalize())
	}

	f := &Frustum{Planes: make([]Plane, 0, 4)}
	for i := 0; i < 4; i++ {
		n := corners[i].Cross(corners[(i+1)%4])
		if n.Dot(center) < 0 {
			n = n.Neg()
		}
		f.Planes = append(f.Planes, Plane{Normal: n, D: -n.Dot(origin)})
	}
	return f
}

// FrustumFromRays returns a frustum that encloses every ray in the set. If the
// rays do not share a common origin, or they do not all point into the same
// half-space, an unbounded frustum is returned.
func FrustumFromRays(rays []Ray) *Frustum {
	if len(rays) == 0 {
		return &Frustum{}
	}

	origin := rays[0].Origin
	var avgDir Vec3
	for i := range rays {
		if !rays[i].Origin.ApproxEqual(origin, floatCmpEpsilon) {
			return &Frustum{}
		}
		avgDir = avgDir.Add(rays[i].Dir.Normalize())
	}
	if avgDir.Len() < floatCmpEpsilon {
		return &Frustum{}
	}
	w := avgDir.Normalize()

	// Build an orthonormal basis around the average direction and project all
	// directions onto the plane at unit distance along it.
	up := Vec3{0, 1, 0}
	if abs32(w[1]) > 0.9 {
		up = Vec3{1, 0, 0}
	}
	u := up.Cross(w).Normalize()
	v := w.Cross(u)

	uMin, uMax := float32(0), float32(0)
	vMin, vMax := float32(0), float32(0)
	for i := range rays {
		d := rays[i].Dir.Normalize()
		dw := d.Dot(w)
		if dw < floatCmpEpsilon {
			return &Frustum{}
		}
		pu, pv := d.Dot(u)/dw, d.Dot(v)/dw
		uMin, uMax = min(uMin, pu), max(uMax, pu)
		vMin, vMax = min(vMin, pv), max(vMax, pv)
	}

	// Pad the rectangle so rays lying exactly on an edge stay inside.
	pad := 1e-4 * (1 + max(uMax-uMin, vMax-vMin))
	uMin, uMax, vMin, vMax = uMin-pad, uMax+pad, vMin-pad, vMax+pad

	return NewFrustum(origin, [4]Vec3{
		w.Add(u.Mul(uMin)).Add(v.Mul(vMin)),
		w.Add(u.Mul(uMax)).Add(v.Mul(vMin)),
		w.Add(u.Mul(uMax)).Add(v.Mul(vMax)),
		w.Add(u.Mul(uMin)).Add(v.Mul(vMax)),
	})
}

// Unbounded returns true if the frustum accepts every box.
func (f *Frustum) Unbounded() bool {
	return f == nil || len(f.Planes) == 0
}

// IntersectsBBox performs a conservative frustum/box test. It may report an
// overlap for boxes that sit just outside a frustum corner but never rejects
// a box that overlaps the frustum.
func (f *Frustum) IntersectsBBox(b BBox) bool {
	if f == nil {
		return true
	}
	for _, p := range f.Planes {
		// Test the box corner furthest along the plane normal.
		var pv Vec3
		for axis := 0; axis < 3; axis++ {
			if p.Normal[axis] >= 0 {
				pv[axis] = b.Max[axis]
			} else {
				pv[axis] = b.Min[axis]
			}
		}
		if p.Distance(pv) < 0 {
			return false
		}
	}
	return true
}
