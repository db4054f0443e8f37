package rds

import (
	"time"

	"github.com/doismellburning/fmrdsd/internal/fabric"
	"github.com/doismellburning/fmrdsd/internal/rdsconfig"
)

// Assembler is the bit producer, run as a cooperative loop on the
// non-audio core. It owns its own working Record snapshot, refreshed
// from Staging at group boundaries, and pushes 26 bits per block into the
// bit FIFO, dropping the oldest bit on overflow.
type Assembler struct {
	staging *rdsconfig.Staging
	working rdsconfig.Record
	bits    *fabric.BitFIFO

	schedulePos  int
	psIndex      int
	afPairIndex  int
	diSegment    bool
	lastRotation time.Time

	rtListIndex     int
	lastListAdvance time.Time

	overflowLogged bool
}

// NewAssembler builds an assembler reading staged mutations from staging
// and producing bits into bits.
func NewAssembler(staging *rdsconfig.Staging, bits *fabric.BitFIFO) *Assembler {
	return &Assembler{staging: staging, bits: bits, lastRotation: time.Time{}}
}

// schedule is the representative rotation [0A, 0A, 2A, (4A every >=60s)]
// so PS/flags run roughly twice as often as RadioText.
var schedule = []GroupType{Group0A, Group0A, Group2A}

const clockGroupInterval = 60 * time.Second

// RunGroup advances one group of the schedule: snapshots staging if
// dirty, applies any due RT rotation, builds the group's four blocks, and
// pushes their 104 bits into the FIFO. now is the caller's clock, used
// only for RT rotation and 4A scheduling; RDSAssemblerTask passes its
// ticker's time. The on-air bit timing is set by Synth, which pops bits at
// the audio sample clock.
func (a *Assembler) RunGroup(now time.Time) {
	a.staging.SnapshotIfDirty(&a.working)
	a.applyRotation(now)

	gt := a.nextGroupType(now)
	var blocks [4]Block
	switch gt {
	case Group0A:
		afPair := EncodeAF(a.working.AF, a.afPairIndex)
		blocks = BuildGroup0A(&a.working, a.psIndex, afPair, a.diSegment)
		a.psIndex = (a.psIndex + 1) % 4
		a.afPairIndex = (a.afPairIndex + 1) % AFPairCount(a.working.AF)
		a.diSegment = !a.diSegment
	case Group2A:
		blocks = BuildGroup2A(&a.working, a.working.RTSegment())
		a.working.AdvanceRTSegment()
	case Group4A:
		blocks = BuildGroup4A(&a.working)
	}

	for _, blk := range blocks {
		for _, bit := range blk.Bits26() {
			a.pushBit(bit)
		}
	}
}

// nextGroupType walks the representative rotation, interleaving a 4A
// group whenever clockGroupInterval has elapsed and CT is enabled.
func (a *Assembler) nextGroupType(now time.Time) GroupType {
	if a.working.CTEnabled && (a.lastRotation.IsZero() || !now.Before(a.lastRotation.Add(clockGroupInterval))) {
		a.lastRotation = now
		return Group4A
	}
	gt := schedule[a.schedulePos%len(schedule)]
	a.schedulePos++
	return gt
}

// applyRotation advances the RT rotation list on dwell expiry: a
// monotonic time source moves the active index, triggers a text_AB
// toggle, and resets RT_segment to 0. An empty list disables rotation
// and holds the last set RT.
func (a *Assembler) applyRotation(now time.Time) {
	if len(a.working.RTList) == 0 {
		return
	}
	if a.working.RTPeriod <= 0 {
		return
	}
	if a.lastListAdvance.IsZero() {
		a.lastListAdvance = now
		return
	}
	if now.Before(a.lastListAdvance.Add(a.working.RTPeriod)) {
		return
	}
	a.rtListIndex = (a.rtListIndex + 1) % len(a.working.RTList)
	a.working.RT = a.working.RTList[a.rtListIndex]
	a.working.TextAB = !a.working.TextAB
	// AdvanceRTSegment wraps at the new RT's segment count, so this
	// always reaches segment 0.
	for a.working.RTSegment() != 0 {
		a.working.AdvanceRTSegment()
	}
	a.lastListAdvance = now
}

func (a *Assembler) pushBit(bit byte) {
	a.bits.Push(bit)
}

// Overflow returns the bit FIFO's cumulative overflow count, surfaced to
// telemetry so the first occurrence can be logged once.
func (a *Assembler) Overflow() uint64 { return a.bits.Overflow() }
