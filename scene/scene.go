package scene

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/achilleasa/raycast/types"
	"github.com/olekukonko/tablewriter"
)

var (
	ErrMaterialAlreadyAdded  = errors.New("scene: material already added")
	ErrPrimitiveNoMaterial   = errors.New("scene: no material assigned to primitive")
	ErrPrimitiveUnknownMat   = errors.New("scene: primitive references unknown material; ensure that the material is added to the scene before adding the primitive")
	ErrPrimitiveDegenerateBB = errors.New("scene: primitive has an empty bounding box")
)

// Scene is a flat list of primitives plus the camera and point light used to
// render them.
type Scene struct {
	Camera *Camera

	Materials  []*Material
	Primitives []Primitive

	// Position of the point light used for shadow rays.
	Light types.Vec3

	matIndex map[*Material]struct{}
}

func NewScene() *Scene {
	return &Scene{
		Materials:  make([]*Material, 0),
		Primitives: make([]Primitive, 0),
		matIndex:   make(map[*Material]struct{}),
	}
}

// Attach a camera to the scene.
func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

// Add a material to the scene.
func (s *Scene) AddMaterial(material *Material) error {
	if _, exists := s.matIndex[material]; exists {
		return ErrMaterialAlreadyAdded
	}
	s.matIndex[material] = struct{}{}
	s.Materials = append(s.Materials, material)
	return nil
}

// Add a primitive to the scene. Its material must have been added first.
func (s *Scene) AddPrimitive(primitive Primitive) error {
	mat := primitive.Material()
	if mat == nil {
		return ErrPrimitiveNoMaterial
	}
	if _, known := s.matIndex[mat]; !known {
		return ErrPrimitiveUnknownMat
	}
	if primitive.BBox().IsEmpty() {
		return ErrPrimitiveDegenerateBB
	}
	s.Primitives = append(s.Primitives, primitive)
	return nil
}

// Bounds returns the union of all primitive bounding boxes.
func (s *Scene) Bounds() types.BBox {
	bounds := types.EmptyBBox()
	for _, prim := range s.Primitives {
		bounds = bounds.Union(prim.BBox())
	}
	return bounds
}

// Build a tabular representation of scene statistics.
func (s *Scene) Stats() string {
	var spheres, boxes, triangles, other, noShadow int
	for _, prim := range s.Primitives {
		switch prim.(type) {
		case *Sphere:
			spheres++
		case *Box:
			boxes++
		case *Triangle:
			triangles++
		default:
			other++
		}
		if !prim.Material().CastsShadow() {
			noShadow++
		}
	}

	bounds := s.Bounds()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count"})
	table.Append([]string{"Geometry", "Spheres", fmt.Sprint(spheres)})
	table.Append([]string{"", "Boxes", fmt.Sprint(boxes)})
	table.Append([]string{"", "Triangles", fmt.Sprint(triangles)})
	if other > 0 {
		table.Append([]string{"", "Other", fmt.Sprint(other)})
	}
	table.Append([]string{"", "No shadow", fmt.Sprint(noShadow)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Materials", "---", fmt.Sprint(len(s.Materials))})
	if len(s.Primitives) > 0 {
		table.Append([]string{"Bounds", "Min", fmt.Sprintf("(%.2f, %.2f, %.2f)", bounds.Min[0], bounds.Min[1], bounds.Min[2])})
		table.Append([]string{"", "Max", fmt.Sprintf("(%.2f, %.2f, %.2f)", bounds.Max[0], bounds.Max[1], bounds.Max[2])})
	}
	table.SetFooter([]string{"Total", " ", fmt.Sprint(len(s.Primitives))})

	table.Render()
	return buf.String()
}
