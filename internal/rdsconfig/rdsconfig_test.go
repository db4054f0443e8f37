package rdsconfig

import (
	"errors"
	"testing"
	"time"

	"github.com/doismellburning/fmrdsd/internal/perr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct{ data []byte }

func (m *memStore) Load() ([]byte, error)  { return m.data, nil }
func (m *memStore) Save(b []byte) error    { m.data = b; return nil }

func TestNewRecordDefaults(t *testing.T) {
	r := NewRecord()
	assert.False(t, r.CTEnabled)
	assert.True(t, r.MS)
	assert.Equal(t, 30*time.Second, r.RTPeriod)
}

func TestSetRTTogglesABEveryCall(t *testing.T) {
	s := NewStaging(NewRecord())
	require.NoError(t, s.SetRT("HELLO"))
	var dst Record
	s.SnapshotIfDirty(&dst)
	first := dst.TextAB

	require.NoError(t, s.SetRT("HELLO"))
	s.SnapshotIfDirty(&dst)
	assert.NotEqual(t, first, dst.TextAB)
}

func TestSetPTYRejectsOutOfRange(t *testing.T) {
	s := NewStaging(NewRecord())
	err := s.SetPTY(32)
	require.Error(t, err)
	var pe *perr.Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, perr.KindParameter, pe.Kind)
}

func TestSetAFEncodesMethodA(t *testing.T) {
	s := NewStaging(NewRecord())
	require.NoError(t, s.SetAF([]float64{87.6, 107.9}))
	var dst Record
	s.SnapshotIfDirty(&dst)
	require.Len(t, dst.AF, 2)
	assert.Equal(t, uint8(1), dst.AF[0])
	assert.Equal(t, uint8(204), dst.AF[1])
}

func TestRTSegmentCountPadding(t *testing.T) {
	assert.Equal(t, 1, RTSegmentCount("AB"))
	assert.Equal(t, 2, RTSegmentCount("ABCDE"))
	assert.Equal(t, "AB  ", PaddedRT("AB"))
}

func TestPersistRoundTrip(t *testing.T) {
	store := &memStore{}
	rec := NewRecord()
	rec.PI = 0x1234
	rec.PS = "TEST1234"
	require.NoError(t, Save(store, rec, AudioParams{PreemphUs: 75, Pilot: 0.09, RDSAmp: 0.04}))

	loaded, audio, err := Load(store)
	require.NoError(t, err)
	assert.Equal(t, rec.PI, loaded.PI)
	assert.Equal(t, rec.PS, loaded.PS)
	assert.Equal(t, 0.09, audio.Pilot)
}
