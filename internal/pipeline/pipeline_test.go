package pipeline

import (
	"math"
	"testing"

	"github.com/doismellburning/fmrdsd/internal/audioio"
	"github.com/doismellburning/fmrdsd/internal/controlsurface"
	"github.com/doismellburning/fmrdsd/internal/dspblock"
	"github.com/doismellburning/fmrdsd/internal/fabric"
	"github.com/doismellburning/fmrdsd/internal/obslog"
	"github.com/doismellburning/fmrdsd/internal/rdsconfig"
	"github.com/doismellburning/fmrdsd/internal/telemetry"
	"github.com/doismellburning/fmrdsd/internal/xmit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(in []dspblock.WireFrame) (*Orchestrator, *audioio.FakeDevice) {
	return newTestOrchestratorWithParams(in, controlsurface.NewAudioParams(75, 0.09, 0.04))
}

func newTestOrchestratorWithParams(in []dspblock.WireFrame, audioParams *controlsurface.AudioParams) (*Orchestrator, *audioio.FakeDevice) {
	dev := audioio.NewFakeDevice(in)
	logFifo := fabric.NewLogFIFO(64)
	logger := obslog.NewFIFOLogger(logFifo, obslog.LevelDebug)
	var stats fabric.Mailbox[telemetry.StatsSnapshot]
	var vu fabric.Mailbox[telemetry.VUSample]
	bits := fabric.NewBitFIFO(1024)
	o := New(DefaultParams(), dev, dev, logger, bits, &stats, &vu, audioParams, xmit.NopKeyer{})
	return o, dev
}

func dcInput(n int, value float32) []dspblock.WireFrame {
	frames := make([]dspblock.WireFrame, n)
	level := int32(value * dspblock.FullScale)
	for i := range frames {
		frames[i] = dspblock.WireFrame{L: level, R: level}
	}
	return frames
}

func TestFirstBlockAfterInitNoSpuriousImpulse(t *testing.T) {
	// Pilot and RDS injection set to zero so the output reflects only the
	// filter stages' initial state.
	o, dev := newTestOrchestratorWithParams(dcInput(64, 0), controlsurface.NewAudioParams(75, 0, 0))
	require.NoError(t, o.RunOnce())
	for _, f := range dev.Out {
		assert.Equal(t, int32(0), f.L)
		assert.Equal(t, int32(0), f.R)
	}
}

func TestUpsampleRateFromOrchestrator(t *testing.T) {
	o, dev := newTestOrchestrator(dcInput(64, 0.5))
	require.NoError(t, o.RunOnce())
	assert.Equal(t, 64*4, len(dev.Out))
}

func TestDCInputScenario(t *testing.T) {
	// Pre-emphasis off: the leaky differentiator would remove most of the
	// DC level (gain 1-alpha, about 0.24 at 75us).
	o, dev := newTestOrchestratorWithParams(dcInput(4800, 0.5), controlsurface.NewAudioParams(0, 0.09, 0.04))
	for i := 0; i < 75; i++ {
		require.NoError(t, o.RunOnce())
	}
	var sumSq float64
	for _, f := range dev.Out {
		v := float64(f.L) / dspblock.FullScale
		sumSq += v * v
	}
	rms := math.Sqrt(sumSq / float64(len(dev.Out)))
	assert.InDelta(t, 1.0, rms, 0.2)
}

func TestAudioParamsSnapshotAppliedAtBlockBoundary(t *testing.T) {
	audioParams := controlsurface.NewAudioParams(75, 0.09, 0.04)
	o, _ := newTestOrchestratorWithParams(dcInput(64, 0), audioParams)

	dispatcher := controlsurface.NewDispatcher(rdsconfig.NewStaging(rdsconfig.NewRecord()), audioParams)
	require.True(t, dispatcher.Dispatch("AUDIO:PILOT 0.2").OK)
	require.True(t, dispatcher.Dispatch("AUDIO:RDS:AMP 0.05").OK)
	require.NoError(t, o.RunOnce())

	assert.Equal(t, float32(0.2), o.mixer.PilotAmp)
	assert.Equal(t, 0.05, o.params.RDSAmp)
}

func TestAudioParamsPreemphDisableAppliedAtBlockBoundary(t *testing.T) {
	audioParams := controlsurface.NewAudioParams(75, 0.09, 0.04)
	o, _ := newTestOrchestratorWithParams(dcInput(64, 0), audioParams)

	dispatcher := controlsurface.NewDispatcher(rdsconfig.NewStaging(rdsconfig.NewRecord()), audioParams)
	require.True(t, dispatcher.Dispatch("AUDIO:PREEMPH OFF").OK)
	require.NoError(t, o.RunOnce())

	frames := []float32{1, 1, 0.5, 0.5}
	o.preemph.Process(frames)
	assert.Equal(t, float32(1), frames[0])
}

type recordingKeyer struct {
	events []bool
}

func (k *recordingKeyer) Key(on bool) error {
	k.events = append(k.events, on)
	return nil
}

func (k *recordingKeyer) Close() error { return nil }

func TestOrchestratorKeysPTTOnFirstRunAndOnClose(t *testing.T) {
	dev := audioio.NewFakeDevice(dcInput(64, 0))
	logFifo := fabric.NewLogFIFO(64)
	logger := obslog.NewFIFOLogger(logFifo, obslog.LevelDebug)
	var stats fabric.Mailbox[telemetry.StatsSnapshot]
	var vu fabric.Mailbox[telemetry.VUSample]
	bits := fabric.NewBitFIFO(1024)
	keyer := &recordingKeyer{}
	o := New(DefaultParams(), dev, dev, logger, bits, &stats, &vu, nil, keyer)

	require.NoError(t, o.RunOnce())
	require.NoError(t, o.RunOnce())
	require.NoError(t, o.Close())

	assert.Equal(t, []bool{true, false}, keyer.events)
}

func TestOrchestratorCloseWithoutRunOnceDoesNotKey(t *testing.T) {
	dev := audioio.NewFakeDevice(nil)
	logFifo := fabric.NewLogFIFO(64)
	logger := obslog.NewFIFOLogger(logFifo, obslog.LevelDebug)
	var stats fabric.Mailbox[telemetry.StatsSnapshot]
	var vu fabric.Mailbox[telemetry.VUSample]
	bits := fabric.NewBitFIFO(1024)
	keyer := &recordingKeyer{}
	o := New(DefaultParams(), dev, dev, logger, bits, &stats, &vu, nil, keyer)

	require.NoError(t, o.Close())
	assert.Empty(t, keyer.events)
}

func TestOutputWriteErrorIncrementsErrorCount(t *testing.T) {
	o, dev := newTestOrchestrator(dcInput(64, 0))
	dev.ShortWriteAfter = 1
	dev.FailReadAfter = 0
	require.NoError(t, o.RunOnce())
	require.NoError(t, o.RunOnce()) // second write is short
	assert.Equal(t, uint64(1), o.errorCount)
}
