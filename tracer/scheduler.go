package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of tracers using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each tracer
	// in the input list.
	Schedule(tracers []Tracer, frameH uint32) []uint32
}

// The naive scheduler splits the frame rows proportionally to each tracer's
// speed estimate.
type naiveScheduler struct {
	blockAssignment []uint32
}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	if len(sch.blockAssignment) != len(tracers) {
		sch.blockAssignment = make([]uint32, len(tracers))
	}

	var total float64 = 0.0
	for _, tr := range tracers {
		total += float64(tr.SpeedEstimate())
	}
	scaler := float64(frameH) / total

	for idx, tr := range tracers {
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(tr.SpeedEstimate())*scaler)))
	}

	return balanceRows(sch.blockAssignment, frameH)
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	naiveScheduler
}

// Create a new perfect scheduler instance
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool
// of tracers using feedback collected from previous frames.
//
// This function returns the block height assignment for each tracer in the
// input list. When previous frame information is available the scheduler
// uses the following formula for estimating the workload for tracer w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	// If this is the first time we try to schedule or the number of tracers
	// has changed we need to reset the block assignments
	if len(sch.blockAssignment) != len(tracers) {
		return sch.naiveScheduler.Schedule(tracers, frameH)
	}

	// Use last frame statistics
	var total float64 = 0.0
	rates := make([]float64, len(tracers))
	for idx, tr := range tracers {
		stats := tr.Stats()
		renderTime := math.Max(1.0, float64(stats.RenderTime.Nanoseconds()))
		rates[idx] = float64(stats.BlockH) / renderTime
		total += rates[idx]
	}

	// No usable feedback; fall back to speed estimates
	if total == 0 {
		return sch.naiveScheduler.Schedule(tracers, frameH)
	}

	scaler := float64(frameH) / total
	for idx := range tracers {
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(rates[idx]*scaler)))
	}

	return balanceRows(sch.blockAssignment, frameH)
}

// Adjust the assignment so that rows add up to the frame height. Missing rows
// are appended to the first tracer; excess rows are removed from the tracers
// with the largest blocks.
func balanceRows(blockAssignment []uint32, frameH uint32) []uint32 {
	var scheduledRows uint32 = 0
	for _, rows := range blockAssignment {
		scheduledRows += rows
	}

	if scheduledRows <= frameH {
		blockAssignment[0] += frameH - scheduledRows
		return blockAssignment
	}

	for excess := scheduledRows - frameH; excess > 0; excess-- {
		largest := 0
		for idx, rows := range blockAssignment {
			if rows > blockAssignment[largest] {
				largest = idx
			}
		}
		if blockAssignment[largest] == 0 {
			break
		}
		blockAssignment[largest]--
	}
	return blockAssignment
}
