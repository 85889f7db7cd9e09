package bvh

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/olekukonko/tablewriter"
)

// Stats summarizes the shape of a built index.
type Stats struct {
	Policy     SplitPolicy
	Primitives int

	Nodes    int
	Leaves   int
	MaxDepth int

	// Largest and average number of primitives per leaf.
	MaxLeafPrims int
	AvgLeafPrims float32

	// Number of treelets; only set for SplitHLBVH.
	Treelets int

	// Expected cost of a random ray query according to the SAH cost model.
	SAHCost float32

	BuildTime time.Duration
}

func collectStats(nodes []LinearNode, primCount int) Stats {
	s := Stats{Primitives: primCount, Nodes: len(nodes)}
	if len(nodes) == 0 {
		return s
	}

	rootArea := nodes[0].Bounds.SurfaceArea()
	var invRootArea float32
	if rootArea > 0 {
		invRootArea = 1 / rootArea
	}

	type pending struct {
		node  uint32
		depth int
	}
	stack := []pending{{0, 0}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &nodes[cur.node]
		s.MaxDepth = max(s.MaxDepth, cur.depth)
		areaRatio := node.Bounds.SurfaceArea() * invRootArea
		if node.Kind == LeafNode {
			s.Leaves++
			s.MaxLeafPrims = max(s.MaxLeafPrims, int(node.PrimitiveCount))
			s.SAHCost += areaRatio * float32(node.PrimitiveCount)
			continue
		}
		s.SAHCost += areaRatio * sahTraversalCost
		stack = append(stack, pending{cur.node + 1, cur.depth + 1}, pending{node.SecondChildOffset, cur.depth + 1})
	}
	s.AvgLeafPrims = float32(primCount) / float32(s.Leaves)
	return s
}

// Table renders the stats as a text table.
func (s Stats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Split policy", s.Policy.String()})
	table.Append([]string{"Primitives", fmt.Sprint(s.Primitives)})
	table.Append([]string{"Nodes", fmt.Sprint(s.Nodes)})
	table.Append([]string{"Leaves", fmt.Sprint(s.Leaves)})
	table.Append([]string{"Max depth", fmt.Sprint(s.MaxDepth)})
	table.Append([]string{"Prims/leaf (max)", fmt.Sprint(s.MaxLeafPrims)})
	table.Append([]string{"Prims/leaf (avg)", fmt.Sprintf("%.2f", s.AvgLeafPrims)})
	if s.Policy == SplitHLBVH {
		table.Append([]string{"Treelets", fmt.Sprint(s.Treelets)})
	}
	table.Append([]string{"SAH cost", fmt.Sprintf("%.3f", s.SAHCost)})
	table.SetFooter([]string{"Build time", s.BuildTime.String()})
	table.Render()
	return buf.String()
}

// Fingerprint returns a hash of the node array and the primitive order. Two
// indices built from the same input with the same options always share the
// same fingerprint.
func (idx *Index) Fingerprint() uint64 {
	digest := xxhash.New()

	var buf [4]byte
	writeUint32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:], v)
		digest.Write(buf[:])
	}

	for i := range idx.nodes {
		node := &idx.nodes[i]
		for axis := 0; axis < 3; axis++ {
			writeUint32(math.Float32bits(node.Bounds.Min[axis]))
			writeUint32(math.Float32bits(node.Bounds.Max[axis]))
		}
		writeUint32(uint32(node.Kind))
		if node.Kind == LeafNode {
			writeUint32(node.PrimitivesOffset)
			writeUint32(node.PrimitiveCount)
		} else {
			writeUint32(uint32(node.Axis))
			writeUint32(node.SecondChildOffset)
		}
	}
	for _, inputIndex := range idx.primOrder {
		writeUint32(uint32(inputIndex))
	}
	return digest.Sum64()
}
