// Package telemetry implements the telemetry sample and stats
// snapshot, grounded on src/audio_stats.go's windowed aggregation and the
// original source's VUMeter.h/Diagnostics.h/TaskStats.h field lists.
package telemetry

import (
	"math"
	"runtime"
	"time"
)

// VUSample is produced once per block and put in the mailbox every block;
// the mailbox keeps only the latest, so the consumer's refresh interval
// decides how often one is read.
type VUSample struct {
	LRMS, RRMS   float64
	LPeak, RPeak float32
	LDbfs, RDbfs float64
	Frames       int
	Ts           time.Time
}

// StageID names the nine DSP stages whose per-iteration wall time is
// folded into the stats snapshot, in pipeline order.
type StageID int

const (
	StageDecodeMeter StageID = iota
	StagePreemphasis
	StageNotch
	StageUpsample
	StageMatrix
	StageNCO
	StageMPX
	StageRDSInject
	StageEncode
	stageCount
)

// StageTiming is the running current/min/max microseconds for one stage.
type StageTiming struct {
	CurUs, MinUs, MaxUs float64
	samples             int
}

func (s *StageTiming) observe(us float64) {
	s.CurUs = us
	if s.samples == 0 || us < s.MinUs {
		s.MinUs = us
	}
	if us > s.MaxUs {
		s.MaxUs = us
	}
	s.samples++
}

// StatsSnapshot is the telemetry stats snapshot: per-stage timing, CPU
// load, watermarks, loop/error counters. Go has no stack-watermark
// primitive, so StackWatermarkWords is a caller-supplied synthetic value
// and GoroutineCount stands in for the heap/stack watermark the original
// firmware reports.
type StatsSnapshot struct {
	Stages              [stageCount]StageTiming
	CPUPercent          float64
	GoroutineCount      int
	StackWatermarkWords int
	LoopCount           uint64
	ErrorCount          uint64
	Ts                  time.Time
}

// Collector accumulates per-stage timings across one block and rolls them
// into a running snapshot, emitted every statsInterval (~5s) by the
// caller.
type Collector struct {
	snap     StatsSnapshot
	lastEmit time.Time
}

func NewCollector() *Collector {
	return &Collector{lastEmit: time.Time{}}
}

// Observe folds one stage's wall-clock duration for the current block
// into the running snapshot.
func (c *Collector) Observe(stage StageID, d time.Duration) {
	c.snap.Stages[stage].observe(float64(d.Microseconds()))
}

func (c *Collector) IncLoop()  { c.snap.LoopCount++ }
func (c *Collector) IncError() { c.snap.ErrorCount++ }

// Due reports whether statsInterval has elapsed since the last emitted
// snapshot, following src/audio_stats.go's "suppress unless interval
// elapsed" gate (minus its first-sample suppression quirk, which existed
// there to dodge a non-second-aligned start; this collector's first
// interval is a real measurement instead).
func (c *Collector) Due(now time.Time, interval time.Duration) bool {
	return c.lastEmit.IsZero() || !now.Before(c.lastEmit.Add(interval))
}

// Snapshot returns a copy of the current accumulated stats, stamps it,
// and marks "now" as the last emit time.
func (c *Collector) Snapshot(now time.Time) StatsSnapshot {
	c.snap.CPUPercent = estimateCPUPercent()
	c.snap.GoroutineCount = runtime.NumGoroutine()
	c.snap.Ts = now
	c.lastEmit = now
	return c.snap
}

// estimateCPUPercent has no portable cheap equivalent of the source's
// per-core load reading on a general-purpose OS. The value only needs to
// be reported "if available", so 0 is a legitimate answer here and real
// measurement is left to platform-specific glue outside this package's
// scope (the peripheral/scheduler boundary).
func estimateCPUPercent() float64 { return 0 }

// Sample builds a VUSample from one block's channel meters.
func Sample(lRMS, rRMS float64, lPeak, rPeak float32, frames int, ts time.Time) VUSample {
	return VUSample{
		LRMS: lRMS, RRMS: rRMS,
		LPeak: lPeak, RPeak: rPeak,
		LDbfs: dbfs(lRMS), RDbfs: dbfs(rRMS),
		Frames: frames, Ts: ts,
	}
}

func dbfs(linear float64) float64 {
	const floor = -120.0
	if linear <= 0 {
		return floor
	}
	db := 20 * math.Log10(linear)
	if db < floor {
		return floor
	}
	return db
}
