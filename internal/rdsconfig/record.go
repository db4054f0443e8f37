// Package rdsconfig is the RDS configuration record: the canonical
// state the assembler encodes into groups, a single-writer mutation
// surface for the control surface, and a YAML persistence codec.
// Grounded on original_source/RDSAssembler.h's private field list and
// src/deviceid.go's persisted-record pattern.
package rdsconfig

import "time"

// ClockTime is the 4A group payload: MJD/hh/mm plus a local UTC offset
// in half-hour units, sign carried separately as the source does.
type ClockTime struct {
	MJD          uint32
	Hour, Minute uint8
	OffsetNeg    bool
	OffsetHalfH  uint8
}

// Record is the canonical RDS configuration, owned by the assembler.
// Text and list fields are ordinary Go strings and slices; Staging's
// setters enforce the length limits (PS 8, RT 64, AF 25), and RTList has
// no length limit.
type Record struct {
	PI  uint16
	PTY uint8
	TP  bool
	TA  bool
	MS  bool // true = Music, false = Speech

	PS string // <=8 chars, space-padded
	RT string // <=64 chars
	TextAB bool

	RTList     []string
	RTPeriod   time.Duration
	rtIndex    int
	rtSegment  int
	rtNextFlip time.Time

	AF []uint8 // encoded AF codes, <=25

	CTEnabled bool // disabled by default
	CT        ClockTime
}

// NewRecord returns a record in its post-init defaults: PTY=0, MS=true
// (music), empty PS/RT, CT disabled (matches RDSAssembler.h's
// ct_enabled_ = false default), RT rotation period 30s (the source's
// rt_period_s_ default).
func NewRecord() *Record {
	return &Record{
		MS:       true,
		RTPeriod: 30 * time.Second,
	}
}

// RTSegment returns the current 2A RT segment index (0..15).
func (r *Record) RTSegment() int { return r.rtSegment }

// AdvanceRTSegment moves to the next RT segment, wrapping at the padded
// length of the current RT string divided into 4-character chunks
// (capped at 16 segments, enough for a full 64-character RadioText).
func (r *Record) AdvanceRTSegment() {
	segments := RTSegmentCount(r.RT)
	if segments == 0 {
		segments = 1
	}
	r.rtSegment = (r.rtSegment + 1) % segments
}

// RTSegmentCount returns how many 4-character segments the padded RT
// occupies, capped at 16.
func RTSegmentCount(rt string) int {
	n := (len(rt) + 3) / 4
	if n > 16 {
		n = 16
	}
	return n
}

// PaddedRT returns rt padded with spaces to a multiple of 4 characters.
func PaddedRT(rt string) string {
	rem := len(rt) % 4
	if rem == 0 {
		return rt
	}
	pad := 4 - rem
	for i := 0; i < pad; i++ {
		rt += " "
	}
	return rt
}

// RTSegmentChars returns the 4 characters of RT segment idx (space-padded
// past the string's end).
func RTSegmentChars(rt string, idx int) [4]byte {
	padded := PaddedRT(rt)
	var out [4]byte
	for i := 0; i < 4; i++ {
		pos := idx*4 + i
		if pos < len(padded) {
			out[i] = padded[pos]
		} else {
			out[i] = ' '
		}
	}
	return out
}
