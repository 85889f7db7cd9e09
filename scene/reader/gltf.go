package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/achilleasa/raycast/asset"
	"github.com/achilleasa/raycast/log"
	"github.com/achilleasa/raycast/scene"
	"github.com/achilleasa/raycast/types"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Material extras key that disables shadow casting.
const gltfNoShadowKey = "noShadow"

type gltfSceneReader struct {
	logger log.Logger

	doc *gltf.Document
	sc  *scene.Scene

	// Scene materials indexed by gltf material index; allocated lazily.
	materials  []*scene.Material
	defaultMat *scene.Material
}

func newGltfReader() *gltfSceneReader {
	return &gltfSceneReader{
		logger: log.New("gltf scene reader"),
	}
}

// Read a gltf/glb scene. Only triangle primitives are imported; node
// transforms are baked into the emitted triangles.
func (r *gltfSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	var dec *gltf.Decoder
	if sceneRes.IsRemote() {
		dec = gltf.NewDecoder(sceneRes)
	} else {
		dec = gltf.NewDecoderFS(sceneRes, os.DirFS(filepath.Dir(sceneRes.Path())))
	}

	r.doc = new(gltf.Document)
	if err := dec.Decode(r.doc); err != nil {
		return nil, fmt.Errorf("gltf reader: could not decode %q: %s", sceneRes.Path(), err)
	}

	r.sc = scene.NewScene()
	r.materials = make([]*scene.Material, len(r.doc.Materials))

	roots, err := r.rootNodes()
	if err != nil {
		return nil, err
	}
	for _, nodeIndex := range roots {
		if err = r.visitNode(nodeIndex, mgl32.Ident4(), 0); err != nil {
			return nil, err
		}
	}

	applySceneDefaults(r.sc, false)

	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return r.sc, nil
}

// Return the root nodes of the default scene. Documents without scenes
// treat every node as a root.
func (r *gltfSceneReader) rootNodes() ([]uint32, error) {
	if len(r.doc.Scenes) == 0 {
		roots := make([]uint32, len(r.doc.Nodes))
		for i := range roots {
			roots[i] = uint32(i)
		}
		return roots, nil
	}

	sceneIndex := uint32(0)
	if r.doc.Scene != nil {
		sceneIndex = *r.doc.Scene
	}
	if int(sceneIndex) >= len(r.doc.Scenes) {
		return nil, fmt.Errorf("gltf reader: default scene index %d out of range", sceneIndex)
	}
	return r.doc.Scenes[sceneIndex].Nodes, nil
}

func (r *gltfSceneReader) visitNode(nodeIndex uint32, parent mgl32.Mat4, depth int) error {
	if int(nodeIndex) >= len(r.doc.Nodes) {
		return fmt.Errorf("gltf reader: node index %d out of range", nodeIndex)
	}
	if depth > len(r.doc.Nodes) {
		return fmt.Errorf("gltf reader: node hierarchy contains a cycle")
	}

	node := r.doc.Nodes[nodeIndex]
	world := parent.Mul4(nodeTransform(node))

	if node.Mesh != nil {
		if err := r.emitMesh(*node.Mesh, world); err != nil {
			return err
		}
	}

	for _, child := range node.Children {
		if err := r.visitNode(child, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (r *gltfSceneReader) emitMesh(meshIndex uint32, world mgl32.Mat4) error {
	if int(meshIndex) >= len(r.doc.Meshes) {
		return fmt.Errorf("gltf reader: mesh index %d out of range", meshIndex)
	}
	mesh := r.doc.Meshes[meshIndex]

	emitted := 0
	for primIndex, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			r.logger.Warningf(`skipping primitive %d of mesh "%s": unsupported mode %v`, primIndex, mesh.Name, prim.Mode)
			continue
		}

		posIndex, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			return fmt.Errorf(`gltf reader: primitive %d of mesh "%s" has no POSITION attribute`, primIndex, mesh.Name)
		}
		positions, err := modeler.ReadPosition(r.doc, r.doc.Accessors[posIndex], nil)
		if err != nil {
			return fmt.Errorf(`gltf reader: could not read positions for mesh "%s": %s`, mesh.Name, err)
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(r.doc, r.doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf(`gltf reader: could not read indices for mesh "%s": %s`, mesh.Name, err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		mat, err := r.material(prim.Material)
		if err != nil {
			return err
		}

		for i := 0; i+2 < len(indices); i += 3 {
			var tri [3]types.Vec3
			for v := 0; v < 3; v++ {
				if int(indices[i+v]) >= len(positions) {
					return fmt.Errorf(`gltf reader: index %d out of range in mesh "%s"`, indices[i+v], mesh.Name)
				}
				p := positions[indices[i+v]]
				tri[v] = types.Vec3(mgl32.TransformCoordinate(mgl32.Vec3{p[0], p[1], p[2]}, world))
			}

			err = r.sc.AddPrimitive(scene.NewTriangle(tri, mat))
			if err == scene.ErrPrimitiveDegenerateBB {
				continue
			} else if err != nil {
				return err
			}
			emitted++
		}
	}

	if emitted == 0 {
		r.logger.Warningf(`dropping mesh "%s" as it contains no polygons`, mesh.Name)
	}
	return nil
}

// Map a gltf material index to a scene material, registering it with the
// scene on first use.
func (r *gltfSceneReader) material(index *uint32) (*scene.Material, error) {
	if index == nil {
		if r.defaultMat == nil {
			r.defaultMat = scene.NewMaterial("default", types.Vec3{0.7, 0.7, 0.7})
			if err := r.sc.AddMaterial(r.defaultMat); err != nil {
				return nil, err
			}
		}
		return r.defaultMat, nil
	}

	if int(*index) >= len(r.doc.Materials) {
		return nil, fmt.Errorf("gltf reader: material index %d out of range", *index)
	}
	if mat := r.materials[*index]; mat != nil {
		return mat, nil
	}

	src := r.doc.Materials[*index]
	diffuse := types.Vec3{1, 1, 1}
	if src.PBRMetallicRoughness != nil && src.PBRMetallicRoughness.BaseColorFactor != nil {
		base := src.PBRMetallicRoughness.BaseColorFactor
		diffuse = types.Vec3{base[0], base[1], base[2]}
	}

	mat := scene.NewMaterial(src.Name, diffuse)
	mat.Emissive = types.Vec3(src.EmissiveFactor)
	if extras, ok := src.Extras.(map[string]interface{}); ok {
		if noShadow, ok := extras[gltfNoShadowKey].(bool); ok {
			mat.NoShadow = noShadow
		}
	}

	if err := r.sc.AddMaterial(mat); err != nil {
		return nil, err
	}
	r.materials[*index] = mat
	return mat, nil
}

// Build the local transform of a node. An explicit matrix takes precedence
// over the TRS properties.
func nodeTransform(node *gltf.Node) mgl32.Mat4 {
	if node.Matrix != [16]float32{} && node.Matrix != gltf.DefaultMatrix {
		return mgl32.Mat4(node.Matrix)
	}

	transform := mgl32.Translate3D(node.Translation[0], node.Translation[1], node.Translation[2])
	if rot := node.Rotation; rot != [4]float32{} {
		q := mgl32.Quat{W: rot[3], V: mgl32.Vec3{rot[0], rot[1], rot[2]}}
		transform = transform.Mul4(q.Normalize().Mat4())
	}
	if scale := node.Scale; scale != [3]float32{} {
		transform = transform.Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
	}
	return transform
}
