package scene

import "github.com/achilleasa/raycast/types"

// Defines a scene material. Shading is handled by the tracer; the index only
// looks at the shadow flag.
type Material struct {
	Name string

	// Diffuse color.
	Diffuse types.Vec3

	// Emissive color (if material is light).
	Emissive types.Vec3

	// Surfaces using this material are invisible to shadow rays.
	NoShadow bool
}

// Create a diffuse material.
func NewMaterial(name string, diffuse types.Vec3) *Material {
	return &Material{Name: name, Diffuse: diffuse}
}

// CastsShadow returns true if primitives using this material block shadow
// rays. A nil material is treated as opaque.
func (m *Material) CastsShadow() bool {
	return m == nil || !m.NoShadow
}
