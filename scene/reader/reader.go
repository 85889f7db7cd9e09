package reader

import (
	"fmt"

	"github.com/achilleasa/raycast/asset"
	"github.com/achilleasa/raycast/scene"
	"github.com/achilleasa/raycast/types"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from file. Files ending in .zst are decompressed on the fly.
func ReadScene(filename string) (*scene.Scene, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	reader, err := readerFor(res)
	if err != nil {
		return nil, err
	}
	return reader.Read(res)
}

// Select reader based on the resource extension.
func readerFor(res *asset.Resource) (Reader, error) {
	switch res.Ext() {
	case ".obj":
		return newWavefrontReader(), nil
	case ".gltf", ".glb":
		return newGltfReader(), nil
	}
	return nil, fmt.Errorf("readScene: unsupported file format")
}

// Assign a camera and a light to scenes that do not define them.
func applySceneDefaults(sc *scene.Scene, lightSet bool) {
	bounds := sc.Bounds()
	if sc.Camera == nil {
		sc.SetCamera(scene.DefaultCamera(bounds))
	}
	if !lightSet && !bounds.IsEmpty() {
		sc.Light = bounds.Center().Add(types.Vec3{0, bounds.Diagonal().Len(), 0})
	}
}
