package tracer

import (
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"github.com/achilleasa/raycast/bvh"
	"github.com/achilleasa/raycast/log"
	"github.com/achilleasa/raycast/scene"
	"github.com/achilleasa/raycast/types"
)

const (
	// Packet tile dimensions; tileSize * tileSize must not exceed bvh.MaxPacketSize.
	tileSize = 8

	// Shading constants.
	ambientTerm   float32 = 0.1
	shadowEpsilon float32 = 1e-3
)

var (
	defaultDiffuse = types.Vec3{0.7, 0.7, 0.7}
	skyTop         = types.Vec3{0.5, 0.7, 1.0}
	skyBottom      = types.Vec3{1.0, 1.0, 1.0}
)

// CPUTracer renders frame blocks on a single goroutine. Several tracers can
// share the same index as long as they render disjoint blocks.
type CPUTracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The tracer id.
	id string

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateBuffer map[UpdateType]interface{}

	// A channel for receiving block requests from the renderer.
	blockReqChan chan BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered block.
	stats *Stats

	index  *bvh.Index
	camera *scene.Camera
	light  types.Vec3
	frame  *image.RGBA
}

// Create a new cpu tracer.
func NewCPUTracer(id string) *CPUTracer {
	return &CPUTracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		id:           id,
		blockReqChan: make(chan BlockRequest, 1),
		updateBuffer: make(map[UpdateType]interface{}, 0),
		stats:        &Stats{},
	}
}

// Get tracer id.
func (tr *CPUTracer) Id() string {
	return tr.id
}

// Each tracer uses a single core.
func (tr *CPUTracer) SpeedEstimate() float32 {
	return 1.0
}

// Attach frame buffer and start the worker.
func (tr *CPUTracer) Setup(frame *image.RGBA) error {
	if frame == nil {
		return ErrNoFrameBuffer
	}

	tr.Lock()
	defer tr.Unlock()

	tr.frame = frame
	if tr.closeChan == nil {
		tr.startWorker()
	}
	return nil
}

// Shutdown and cleanup tracer.
func (tr *CPUTracer) Close() {
	tr.Lock()
	closeChan := tr.closeChan
	tr.closeChan = nil
	tr.Unlock()

	// If the worker is running shut it down
	if closeChan != nil {
		closeChan <- struct{}{}

		// wait for worker to ack close and shutdown channel
		<-closeChan
		close(closeChan)
	}
	tr.wg.Wait()

	tr.Lock()
	tr.index = nil
	tr.frame = nil
	tr.Unlock()
}

// Enqueue block request.
func (tr *CPUTracer) Enqueue(blockReq BlockRequest) {
	select {
	case tr.blockReqChan <- blockReq:
	default:
		// drop the request if worker is not listening
		tr.logger.Error("request processor did not receive block request")
		blockReq.ErrChan <- fmt.Errorf("tracer %s: block request dropped", tr.id)
	}
}

// Append a change to the tracer's update buffer.
func (tr *CPUTracer) Update(updateType UpdateType, data interface{}) {
	tr.Lock()
	defer tr.Unlock()
	tr.updateBuffer[updateType] = data
}

// Retrieve last frame statistics.
func (tr *CPUTracer) Stats() *Stats {
	return tr.stats
}

// Commit queued changes.
func (tr *CPUTracer) commitUpdates() error {
	tr.Lock()
	defer tr.Unlock()

	for updateType, data := range tr.updateBuffer {
		switch updateType {
		case UpdateIndex:
			tr.index = data.(*bvh.Index)
		case UpdateCamera:
			tr.camera = data.(*scene.Camera)
		case UpdateLight:
			tr.light = data.(types.Vec3)
		default:
			return fmt.Errorf("unsupported update type %d", updateType)
		}
	}

	tr.updateBuffer = make(map[UpdateType]interface{}, 0)
	return nil
}

// Spawn a go-routine to process block render requests.
func (tr *CPUTracer) startWorker() {
	tr.closeChan = make(chan struct{}, 0)
	closeChan := tr.closeChan

	readyChan := make(chan struct{}, 0)
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		var blockReq BlockRequest
		var err error
		close(readyChan)
		for {
			select {
			case blockReq = <-tr.blockReqChan:
				startTime := time.Now()

				// Apply any pending changes
				if err = tr.commitUpdates(); err != nil {
					blockReq.ErrChan <- err
					continue
				}

				// Render block and reply with our completion status
				stats, err := tr.renderBlock(&blockReq)
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}

				stats.RenderTime = time.Since(startTime)
				tr.stats = stats

				blockReq.DoneChan <- blockReq.BlockH
			case <-closeChan:
				// Ack close
				closeChan <- struct{}{}
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}

// Render block.
func (tr *CPUTracer) renderBlock(blockReq *BlockRequest) (*Stats, error) {
	switch {
	case tr.index == nil:
		return nil, ErrNoIndex
	case tr.camera == nil:
		return nil, ErrNoCamera
	case tr.frame == nil:
		return nil, ErrNoFrameBuffer
	}

	frameBounds := tr.frame.Bounds()
	if int(blockReq.FrameW) != frameBounds.Dx() || int(blockReq.FrameH) != frameBounds.Dy() ||
		blockReq.BlockY+blockReq.BlockH > blockReq.FrameH {
		return nil, ErrBlockOutOfBounds
	}

	stats := &Stats{BlockH: blockReq.BlockH}
	if blockReq.Packet {
		tr.renderPackets(blockReq, stats)
	} else {
		tr.renderRays(blockReq, stats)
	}
	tr.logger.Debugf("rendered rows [%d, %d) in packet mode: %t", blockReq.BlockY, blockReq.BlockY+blockReq.BlockH, blockReq.Packet)
	return stats, nil
}

// Trace one ray per pixel. The leaf hit by the previous pixel of a row seeds
// the search for the next one.
func (tr *CPUTracer) renderRays(blockReq *BlockRequest, stats *Stats) {
	frameW, frameH := int(blockReq.FrameW), int(blockReq.FrameH)
	for y := int(blockReq.BlockY); y < int(blockReq.BlockY+blockReq.BlockH); y++ {
		hint := -1
		for x := 0; x < frameW; x++ {
			ray := tr.camera.PixelRay(x, y, frameW, frameH)
			hit, found := tr.index.NearestHitFrom(&ray, hint)
			if found {
				hint = hit.Node
			}
			stats.PrimaryRays++
			tr.setPixel(x, y, tr.shade(&ray, &hit, found, frameH, y, stats))
		}
	}
}

// Trace tileSize x tileSize pixel tiles as packets.
func (tr *CPUTracer) renderPackets(blockReq *BlockRequest, stats *Stats) {
	var (
		rays   [tileSize * tileSize]types.Ray
		hits   [tileSize * tileSize]bvh.Hit
		pixels [tileSize * tileSize][2]int
	)

	frameW, frameH := int(blockReq.FrameW), int(blockReq.FrameH)
	blockEnd := int(blockReq.BlockY + blockReq.BlockH)
	for tileY := int(blockReq.BlockY); tileY < blockEnd; tileY += tileSize {
		for tileX := 0; tileX < frameW; tileX += tileSize {
			count := 0
			for y := tileY; y < tileY+tileSize && y < blockEnd; y++ {
				for x := tileX; x < tileX+tileSize && x < frameW; x++ {
					rays[count] = tr.camera.PixelRay(x, y, frameW, frameH)
					pixels[count] = [2]int{x, y}
					count++
				}
			}

			frustum := types.FrustumFromRays(rays[:count])
			tr.index.BatchNearestHit(rays[:count], frustum, hits[:count])
			stats.PrimaryRays += uint64(count)

			for lane := 0; lane < count; lane++ {
				x, y := pixels[lane][0], pixels[lane][1]
				tr.setPixel(x, y, tr.shade(&rays[lane], &hits[lane], hits[lane].Found(), frameH, y, stats))
			}
		}
	}
}

// Lambert shading with a single shadow ray towards the point light.
func (tr *CPUTracer) shade(ray *types.Ray, hit *bvh.Hit, found bool, frameH, y int, stats *Stats) types.Vec3 {
	if !found {
		t := float32(y) / float32(frameH)
		return skyTop.Mul(1 - t).Add(skyBottom.Mul(t))
	}

	diffuse := defaultDiffuse
	var emissive types.Vec3
	if mat := hit.Primitive.Material(); mat != nil {
		diffuse = mat.Diffuse
		emissive = mat.Emissive
	}

	normal := hit.Normal
	if normal.Dot(ray.Dir) > 0 {
		normal = normal.Neg()
	}

	toLight := tr.light.Sub(hit.Point)
	lightDist := toLight.Len()
	lightDir := toLight.Normalize()

	intensity := ambientTerm
	if lambert := normal.Dot(lightDir); lambert > 0 {
		origin := hit.Point.Add(normal.Mul(shadowEpsilon))
		shadowRay := types.NewRay(origin, lightDir)
		stats.ShadowRays++
		if !tr.index.AnyHit(&shadowRay, lightDist-shadowEpsilon) {
			intensity += (1 - ambientTerm) * lambert
		}
	}

	return diffuse.Mul(intensity).Add(emissive)
}

func (tr *CPUTracer) setPixel(x, y int, color types.Vec3) {
	offset := tr.frame.PixOffset(x, y)
	pix := tr.frame.Pix[offset : offset+4 : offset+4]
	pix[0] = toByte(color[0])
	pix[1] = toByte(color[1])
	pix[2] = toByte(color[2])
	pix[3] = 255
}

func toByte(v float32) uint8 {
	return uint8(types.Clamp(float32(math.Round(float64(v)*255)), 0, 255))
}
