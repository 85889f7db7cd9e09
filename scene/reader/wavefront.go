package reader

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/raycast/asset"
	"github.com/achilleasa/raycast/log"
	"github.com/achilleasa/raycast/scene"
	"github.com/achilleasa/raycast/types"
)

type wavefrontMaterial struct {
	*scene.Material

	// True once the material has been added to the scene.
	Used bool
}

type wavefrontCamera struct {
	fov     float32
	eye     types.Vec3
	look    types.Vec3
	up      types.Vec3
	defined bool
}

type wavefrontSceneReader struct {
	logger log.Logger

	// The parsed scene.
	sc *scene.Scene

	// A map of material names to parsed wavefront materials
	matNameToIndex map[string]int

	// Currently selected material.
	curMaterial *wavefrontMaterial

	// Parsed wavefront materials.
	materials []*wavefrontMaterial

	// Vertex coordinates. Normals and uv coords are only counted so that
	// face indices referencing them can be validated.
	vertexList  []types.Vec3
	normalCount int
	uvCount     int

	// The object currently being parsed and the number of primitives
	// emitted for it.
	curObject     string
	curObjectPrim int

	camera   wavefrontCamera
	lightSet bool

	// An error stack that provides additional error information when
	// scene files include other files (models, mat libs e.t.c)
	errStack []string
}

// Create a new text scene reader.
func newWavefrontReader() *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:         log.New("wavefront scene reader"),
		sc:             scene.NewScene(),
		matNameToIndex: make(map[string]int, 0),
		vertexList:     make([]types.Vec3, 0),
		camera: wavefrontCamera{
			fov: 45,
			up:  types.Vec3{0, 1, 0},
		},
		errStack: make([]string, 0),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}

	if r.camera.defined {
		cam := scene.NewCamera(r.camera.fov)
		cam.Position = r.camera.eye
		cam.LookAt = r.camera.look
		cam.Up = r.camera.up
		cam.SetupProjection(1)
		r.sc.SetCamera(cam)
	}
	applySceneDefaults(r.sc, r.lightSet)

	if unused := len(r.materials) - len(r.sc.Materials); unused > 0 {
		r.logger.Infof("skipped %d unused materials", unused)
	}

	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return r.sc, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n"))
	} else {
		errMsg = fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n"))
	}

	return errors.New(strings.Trim(errMsg, "\n"))
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Create and select a default material for surfaces not using one.
func (r *wavefrontSceneReader) defaultMaterial() *wavefrontMaterial {
	matName := ""

	matIndex, exists := r.matNameToIndex[matName]
	if !exists {
		r.materials = append(r.materials, &wavefrontMaterial{
			Material: scene.NewMaterial("default", types.Vec3{0.7, 0.7, 0.7}),
		})
		matIndex = len(r.materials) - 1
		r.matNameToIndex[matName] = matIndex
	}
	r.curMaterial = r.materials[matIndex]
	return r.curMaterial
}

// Add a primitive using the current material to the scene. The material is
// registered with the scene the first time a primitive references it.
func (r *wavefrontSceneReader) addPrimitive(prim scene.Primitive) error {
	if !r.curMaterial.Used {
		if err := r.sc.AddMaterial(r.curMaterial.Material); err != nil {
			return err
		}
		r.curMaterial.Used = true
	}

	err := r.sc.AddPrimitive(prim)
	if err == scene.ErrPrimitiveDegenerateBB {
		r.logger.Warningf(`skipping degenerate primitive in object "%s"`, r.curObject)
		return nil
	} else if err != nil {
		return err
	}
	r.curObjectPrim++
	return nil
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex/uv/normal offsets we can apply them
	// while parsing faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)
	relUvOffset := r.uvCount
	relNormalOffset := r.normalCount

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call", "mtllib":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}

			switch lineTokens[0] {
			case "call":
				err = r.parse(incRes)
			case "mtllib":
				err = r.parseMaterials(incRes)
			}
			incRes.Close()

			if err != nil {
				return err
			}
			r.popFrame()
		case "usemtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for 'usemtl'; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			matName := lineTokens[1]
			matIndex, exists := r.matNameToIndex[matName]
			if !exists {
				return r.emitError(res.Path(), lineNum, `undefined material with name "%s"`, matName)
			}

			r.curMaterial = r.materials[matIndex]
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			if _, err := parseVec3(lineTokens); err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.normalCount++
		case "vt":
			if _, err := parseVec2(lineTokens); err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.uvCount++
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.verifyLastParsedObject()
			r.curObject = lineTokens[1]
			r.curObjectPrim = 0
		case "f":
			triList, err := r.parseFace(lineTokens, relVertexOffset, relUvOffset, relNormalOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}

			for _, tri := range triList {
				if err = r.addPrimitive(scene.NewTriangle(tri, r.curMaterial.Material)); err != nil {
					return r.emitError(res.Path(), lineNum, err.Error())
				}
			}
		case "sphere":
			center, radius, err := parseSphere(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			if r.curMaterial == nil {
				r.defaultMaterial()
			}
			if err = r.addPrimitive(scene.NewSphere(center, radius, r.curMaterial.Material)); err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		case "light":
			r.sc.Light, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.lightSet = true
		case "camera_fov":
			r.camera.fov, err = parseFloat32(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		case "camera_eye":
			r.camera.eye, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.camera.defined = true
		case "camera_look":
			r.camera.look, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.camera.defined = true
		case "camera_up":
			r.camera.up, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		}
	}

	if err = scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, err.Error())
	}

	r.verifyLastParsedObject()
	return nil
}

// Warn about named objects that did not produce any primitives.
func (r *wavefrontSceneReader) verifyLastParsedObject() {
	if r.curObject != "" && r.curObjectPrim == 0 {
		r.logger.Warningf(`dropping mesh "%s" as it contains no polygons`, r.curObject)
	}
}

// Parse face definition. Each face definitions consists of 3 arguments,
// one for each vertex. Each one of the vertex arguments is comprised of
// 1, 2 or 3 args separated by a slash character. The following formats are
// supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate
// an offset off the end of the vertex/uv list.
//
// Quad faces are split into two triangles sharing the first vertex.
func (r *wavefrontSceneReader) parseFace(lineTokens []string, relVertexOffset, relUvOffset, relNormalOffset int) ([][3]types.Vec3, error) {
	if len(lineTokens) < 4 || len(lineTokens) > 5 {
		return nil, fmt.Errorf(`unsupported syntax for "f"; expected 3 arguments for triangular face or 4 arguments for a quad face; got %d. Select the triangulation option in your exporter`, len(lineTokens)-1)
	}

	var vertices [4]types.Vec3
	expIndices := 0
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return nil, fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		if vTokens[0] == "" {
			return nil, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return nil, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices[arg] = r.vertexList[vOffset]

		if expIndices > 1 && vTokens[1] != "" {
			if _, err = selectFaceCoordIndex(vTokens[1], r.uvCount, relUvOffset); err != nil {
				return nil, fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
		}

		if expIndices > 2 && vTokens[2] != "" {
			if _, err = selectFaceCoordIndex(vTokens[2], r.normalCount, relNormalOffset); err != nil {
				return nil, fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
		}
	}

	if r.curMaterial == nil {
		r.defaultMaterial()
	}

	indiceList := [][3]int{{0, 1, 2}}
	if len(lineTokens) == 5 {
		indiceList = append(indiceList, [3]int{0, 2, 3})
	}

	triangles := make([][3]types.Vec3, 0, len(indiceList))
	for _, indices := range indiceList {
		var tri [3]types.Vec3
		for triIndex, selectIndex := range indices {
			tri[triIndex] = vertices[selectIndex]
		}
		triangles = append(triangles, tri)
	}

	return triangles, nil
}

// Parse a wavefront material library.
func (r *wavefrontSceneReader) parseMaterials(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	r.logger.Infof(`parsing material library "%s"`, res.Path())

	scanner := bufio.NewScanner(res)

	var curMaterial *wavefrontMaterial = nil

	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "newmtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "newmtl"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			matName := lineTokens[1]
			if _, exists := r.matNameToIndex[matName]; exists {
				return r.emitError(res.Path(), lineNum, `material "%s" already defined`, matName)
			}

			curMaterial = &wavefrontMaterial{Material: scene.NewMaterial(matName, types.Vec3{})}
			r.materials = append(r.materials, curMaterial)
			r.matNameToIndex[matName] = len(r.materials) - 1
		default:
			if curMaterial == nil {
				return r.emitError(res.Path(), lineNum, `got "%s" without a "newmtl"`, lineTokens[0])
			}

			switch lineTokens[0] {
			case "include":
				if len(lineTokens) < 2 {
					return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
				}

				baseMaterialIndex, exists := r.matNameToIndex[lineTokens[1]]
				if !exists {
					return r.emitError(res.Path(), lineNum, `could not include unknown material "%s"`, lineTokens[1])
				}

				// Overwrite material but keep the original name
				matName := curMaterial.Name
				*curMaterial.Material = *r.materials[baseMaterialIndex].Material
				curMaterial.Name = matName
			case "Kd":
				curMaterial.Diffuse, err = parseVec3(lineTokens)
			case "Ke":
				curMaterial.Emissive, err = parseVec3(lineTokens)
			case "no_shadow":
				curMaterial.NoShadow = true
			}

			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		}
	}

	if err = scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, err.Error())
	}
	return nil
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a sphere definition: sphere cX cY cZ radius
func parseSphere(lineTokens []string) (types.Vec3, float32, error) {
	if len(lineTokens) != 5 {
		return types.Vec3{}, 0, fmt.Errorf(`unsupported syntax for "sphere"; expected 4 arguments: cX cY cZ radius; got %d`, len(lineTokens)-1)
	}

	center, err := parseVec3(lineTokens[:4])
	if err != nil {
		return types.Vec3{}, 0, err
	}
	radius, err := parseFloat32([]string{lineTokens[0], lineTokens[4]})
	if err != nil {
		return types.Vec3{}, 0, err
	}
	if radius <= 0 {
		return types.Vec3{}, 0, fmt.Errorf("sphere radius must be positive; got %v", radius)
	}
	return center, radius, nil
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf(`unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a uv row.
func parseVec2(lineTokens []string) ([2]float32, error) {
	if len(lineTokens) < 3 {
		return [2]float32{}, fmt.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := [2]float32{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
