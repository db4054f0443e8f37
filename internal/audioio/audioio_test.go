package audioio

import (
	"testing"

	"github.com/doismellburning/fmrdsd/internal/dspblock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeDeviceReadThenSilence(t *testing.T) {
	dev := NewFakeDevice([]dspblock.WireFrame{{L: 1, R: 2}})
	buf := make([]dspblock.WireFrame, 2)
	n, err := dev.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, dspblock.WireFrame{L: 1, R: 2}, buf[0])
	assert.Equal(t, dspblock.WireFrame{}, buf[1])
}

func TestFakeDeviceShortWrite(t *testing.T) {
	dev := NewFakeDevice(nil)
	dev.ShortWriteAfter = 1
	frames := make([]dspblock.WireFrame, 4)
	n, err := dev.Write(frames)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = dev.Write(frames)
	assert.ErrorIs(t, err, ErrShortWrite)
	assert.Equal(t, 2, n)
}

func TestFakeDeviceReadFailure(t *testing.T) {
	dev := NewFakeDevice(nil)
	dev.FailReadAfter = 1
	buf := make([]dspblock.WireFrame, 1)
	_, err := dev.Read(buf)
	require.NoError(t, err)
	_, err = dev.Read(buf)
	assert.Error(t, err)
}
