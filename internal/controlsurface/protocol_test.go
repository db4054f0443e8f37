package controlsurface

import (
	"testing"

	"github.com/doismellburning/fmrdsd/internal/rdsconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher() (*Dispatcher, *rdsconfig.Staging, *AudioParams) {
	staging := rdsconfig.NewStaging(rdsconfig.NewRecord())
	audio := NewAudioParams(75, 0.09, 0.04)
	return NewDispatcher(staging, audio), staging, audio
}

func TestDispatchSetPS(t *testing.T) {
	d, staging, _ := newTestDispatcher()
	resp := d.Dispatch("RDS:PS TEST1234")
	require.True(t, resp.OK)
	var rec rdsconfig.Record
	staging.SnapshotIfDirty(&rec)
	assert.Equal(t, "TEST1234", rec.PS)
}

func TestDispatchRejectsOutOfRangePTY(t *testing.T) {
	d, _, _ := newTestDispatcher()
	resp := d.Dispatch("RDS:PTY 99")
	assert.False(t, resp.OK)
	assert.Contains(t, resp.PlainText(), "ERR")
}

func TestDispatchAudioPreemph(t *testing.T) {
	d, _, audio := newTestDispatcher()
	resp := d.Dispatch("AUDIO:PREEMPH 50US")
	require.True(t, resp.OK)
	us, _, _ := audio.Snapshot()
	assert.Equal(t, 50.0, us)
}

func TestDispatchUnknownCommand(t *testing.T) {
	d, _, _ := newTestDispatcher()
	resp := d.Dispatch("NOPE:WHAT 1")
	assert.False(t, resp.OK)
}

func TestDispatchQueryStats(t *testing.T) {
	d, _, _ := newTestDispatcher()
	d.OnStats(func() string { return "ok" })
	resp := d.Dispatch("SYST:STATS?")
	require.True(t, resp.OK)
	assert.Equal(t, "ok", resp.Value)
}

func TestDispatchRDSCTNotifiesClockTimeHook(t *testing.T) {
	d, _, _ := newTestDispatcher()
	var got string
	d.OnClockTime(func(s string) { got = s })
	resp := d.Dispatch("RDS:CT 2024-01-01 12:00 +00:00")
	require.True(t, resp.OK)
	assert.NotEmpty(t, got)
}

func TestJSONResponseShape(t *testing.T) {
	d, _, _ := newTestDispatcher()
	resp := d.Dispatch("RDS:PS TEST1234")
	assert.Contains(t, resp.JSON(), `"ok":true`)

	bad := d.Dispatch("RDS:PTY 99")
	assert.Contains(t, bad.JSON(), `"ok":false`)
}

func TestParseClockTimeToMJD(t *testing.T) {
	ct, parsed, err := parseClockTime("2024-01-01 12:00 +00:00")
	require.NoError(t, err)
	assert.Equal(t, uint32(60310), ct.MJD)
	assert.Equal(t, uint8(12), ct.Hour)
	assert.Equal(t, 2024, parsed.Year())
}
