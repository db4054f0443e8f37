package rds

import (
	"testing"
	"time"

	"github.com/doismellburning/fmrdsd/internal/fabric"
	"github.com/doismellburning/fmrdsd/internal/rdsconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCRC10MatchesBlockInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		info := uint16(rapid.IntRange(0, 0xFFFF).Draw(rt, "info"))
		offset := uint16(rapid.IntRange(0, 0x3FF).Draw(rt, "offset"))
		blk := NewBlock(info, offset)
		assert.Equal(t, CRC10(info)^offset, blk.Check)
	})
}

func TestBlockBits26MSBFirst(t *testing.T) {
	blk := NewBlock(0x1234, OffsetA)
	bits := blk.Bits26()
	assert.Equal(t, byte(0), bits[0])
	assert.Equal(t, byte(1), bits[3])
}

func TestPS4ConsecutiveGroupsContainAllChars(t *testing.T) {
	rec := rdsconfig.NewRecord()
	rec.PS = "TEST1234"
	var seen [8]byte
	for idx := 0; idx < 4; idx++ {
		blocks := BuildGroup0A(rec, idx, EncodeAF(nil, 0), false)
		d := blocks[3].Info
		seen[2*idx] = byte(d >> 8)
		seen[2*idx+1] = byte(d)
		assert.True(t, verifyCRC(blocks))
	}
	assert.Equal(t, "TEST1234", string(seen[:]))
}

func TestGroup0APSIndexDoesNotToggleAB(t *testing.T) {
	rec := rdsconfig.NewRecord()
	rec.PS = "TEST1234"
	before := rec.TextAB
	for idx := 0; idx < 4; idx++ {
		BuildGroup0A(rec, idx, EncodeAF(nil, 0), false)
	}
	assert.Equal(t, before, rec.TextAB)
}

func verifyCRC(blocks [4]Block) bool {
	offsets := [4]uint16{OffsetA, OffsetB, OffsetC, OffsetD}
	for i, b := range blocks {
		if CRC10(b.Info)^b.Check != offsets[i] {
			return false
		}
	}
	return true
}

func TestEncodeAFHeaderAlwaysPresent(t *testing.T) {
	pair := EncodeAF(nil, 0)
	assert.Equal(t, uint8(0xE0), pair[0])
	assert.Equal(t, uint8(0xCD), pair[1])

	af := []uint8{1, 2, 3}
	pair0 := EncodeAF(af, 0)
	assert.Equal(t, uint8(0xE0+3), pair0[0])
	pair1 := EncodeAF(af, 1)
	assert.Equal(t, [2]uint8{1, 2}, pair1)
	pair2 := EncodeAF(af, 2)
	assert.Equal(t, [2]uint8{3, 0xCD}, pair2)
}

func TestBitFIFOOverflowScenario(t *testing.T) {
	bits := fabric.NewBitFIFO(1024)
	staging := rdsconfig.NewStaging(rdsconfig.NewRecord())
	require.NoError(t, staging.SetPS("TEST1234"))
	a := NewAssembler(staging, bits)

	now := time.Now()
	for bits.Len() < 1024 {
		a.RunGroup(now)
	}
	before := bits.Overflow()
	a.RunGroup(now)
	assert.Greater(t, bits.Overflow(), before)
}

func TestRTRotationTogglesAB(t *testing.T) {
	staging := rdsconfig.NewStaging(rdsconfig.NewRecord())
	require.NoError(t, staging.RTListAdd("A"))
	require.NoError(t, staging.RTListAdd("B"))
	require.NoError(t, staging.RTPeriod(1))
	bits := fabric.NewBitFIFO(4096)
	a := NewAssembler(staging, bits)

	now := time.Now()
	a.RunGroup(now)
	firstAB := a.working.TextAB
	a.RunGroup(now.Add(2 * time.Second))
	assert.NotEqual(t, firstAB, a.working.TextAB)
}

func TestSynthIdlePolicyEmitsOne(t *testing.T) {
	bits := fabric.NewBitFIFO(16)
	s := NewSynth(bits, 192000)
	carrier := make([]float32, 200)
	for i := range carrier {
		carrier[i] = 1
	}
	out := make([]float32, 200)
	s.Process(carrier, 0.04, out, 200)
	assert.Equal(t, byte(1), s.lastDiff)
}

func TestSynthResetIdempotence(t *testing.T) {
	bits := fabric.NewBitFIFO(16)
	s := NewSynth(bits, 192000)
	out := make([]float32, 10)
	carrier := make([]float32, 10)
	s.Process(carrier, 0.04, out, 10)
	s.Reset()
	fresh := NewSynth(bits, 192000)
	assert.Equal(t, fresh.symPhase, s.symPhase)
	assert.Equal(t, fresh.stateA, s.stateA)
}
