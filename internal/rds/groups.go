package rds

import "github.com/doismellburning/fmrdsd/internal/rdsconfig"

// GroupType names the three group shapes the core supports.
type GroupType int

const (
	Group0A GroupType = iota
	Group2A
	Group4A
)

func groupTypeVersionBits(t GroupType) uint16 {
	switch t {
	case Group0A:
		return 0 << 1 // type 0, version A
	case Group2A:
		return 2 << 1 // type 2, version A
	case Group4A:
		return 4 << 1 // type 4, version A
	}
	return 0
}

// blockBHeader packs the group-type/version, TP, and PTY fields shared by
// every group's block B: bits 15-11 type+version, bit 10 TP, bits 9-5 PTY.
func blockBHeader(t GroupType, tp bool, pty uint8) uint16 {
	var b uint16
	b |= groupTypeVersionBits(t) << 11
	if tp {
		b |= 1 << 10
	}
	b |= uint16(pty&0x1F) << 5
	return b
}

// BuildGroup0A builds the four blocks of one 0A group (PS + flags + AF)
// for the given PS segment index (0..3): block B low 5 bits = TA, MS,
// DI_segment, PS_index(2); block C = the AF pair (or header) for this
// call; block D = the two PS characters at [2*psIndex, 2*psIndex+1].
func BuildGroup0A(rec *rdsconfig.Record, psIndex int, afPair [2]uint8, diSegment bool) [4]Block {
	b := blockBHeader(Group0A, rec.TP, rec.PTY)
	if rec.TA {
		b |= 1 << 4
	}
	if rec.MS {
		b |= 1 << 3
	}
	if diSegment {
		b |= 1 << 2
	}
	b |= uint16(psIndex & 0x3)

	c := uint16(afPair[0])<<8 | uint16(afPair[1])

	ps := rec.PS
	for len(ps) < 8 {
		ps += " "
	}
	i0 := 2 * psIndex
	d := uint16(ps[i0])<<8 | uint16(ps[i0+1])

	return [4]Block{
		NewBlock(rec.PI, OffsetA),
		NewBlock(b, OffsetB),
		NewBlock(c, OffsetC),
		NewBlock(d, OffsetD),
	}
}

// BuildGroup2A builds the four blocks of one 2A group (a 4-character
// RadioText segment): block B low 5 bits = text_AB, RT_segment(4); blocks
// C/D = the four RT characters of that segment.
func BuildGroup2A(rec *rdsconfig.Record, segment int) [4]Block {
	b := blockBHeader(Group2A, rec.TP, rec.PTY)
	if rec.TextAB {
		b |= 1 << 4
	}
	b |= uint16(segment & 0xF)

	chars := rdsconfig.RTSegmentChars(rec.RT, segment)
	c := uint16(chars[0])<<8 | uint16(chars[1])
	d := uint16(chars[2])<<8 | uint16(chars[3])

	return [4]Block{
		NewBlock(rec.PI, OffsetA),
		NewBlock(b, OffsetB),
		NewBlock(c, OffsetC),
		NewBlock(d, OffsetD),
	}
}

// BuildGroup4A builds the Clock-Time group. Neither the distilled
// requirements nor the retrieved original_source/RDSAssembler.cpp pins
// down the exact 4A bit positions (the real ETSI layout interleaves MJD
// bits across B/C/D in a way the retrieved reference code doesn't
// document), so this uses a documented, internally-consistent packing:
// block C carries the low 16 bits of MJD; block D carries
// hour(5)/minute(6)/offset-sign(1)/offset-half-hours(4).
func BuildGroup4A(rec *rdsconfig.Record) [4]Block {
	b := blockBHeader(Group4A, rec.TP, rec.PTY)

	c := uint16(rec.CT.MJD & 0xFFFF)

	var d uint16
	d |= uint16(rec.CT.Hour&0x1F) << 11
	d |= uint16(rec.CT.Minute&0x3F) << 5
	if rec.CT.OffsetNeg {
		d |= 1 << 4
	}
	d |= uint16(rec.CT.OffsetHalfH & 0xF)

	return [4]Block{
		NewBlock(rec.PI, OffsetA),
		NewBlock(b, OffsetB),
		NewBlock(c, OffsetC),
		NewBlock(d, OffsetD),
	}
}

// EncodeAF builds the block-C AF pair for position pairIndex
// (0..AFPairCount(af)-1) of the AF list: a leading 0xE0+count header followed
// by pairs, padded with 0xCD filler. The header always precedes the
// first pair, even when count is 0; subsequent pairs carry two AF codes
// each, with a trailing 0xCD filler if the list length is odd.
func EncodeAF(af []uint8, pairIndex int) [2]uint8 {
	count := len(af)
	if pairIndex == 0 {
		header := uint8(0xE0 + count)
		if count == 0 {
			return [2]uint8{header, 0xCD}
		}
		return [2]uint8{header, af[0]}
	}
	// pairIndex >= 1 addresses af[2*(pairIndex-1) : 2*(pairIndex-1)+2].
	lo := 2 * (pairIndex - 1)
	a := uint8(0xCD)
	b := uint8(0xCD)
	if lo < count {
		a = af[lo]
	}
	if lo+1 < count {
		b = af[lo+1]
	}
	return [2]uint8{a, b}
}

// AFPairCount returns how many EncodeAF calls (including the header pair)
// are needed to transmit the whole AF list.
func AFPairCount(af []uint8) int {
	if len(af) == 0 {
		return 1
	}
	return 1 + (len(af)+1)/2
}
