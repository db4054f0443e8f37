// Package pipeline is the orchestrator: the READ -> STAGE1..9 -> WRITE
// loop wiring every DSP component in fixed order, plus the task
// functions for the RDS assembler and telemetry consumer.
package pipeline

import (
	"time"

	"github.com/doismellburning/fmrdsd/internal/audioio"
	"github.com/doismellburning/fmrdsd/internal/controlsurface"
	"github.com/doismellburning/fmrdsd/internal/dspblock"
	"github.com/doismellburning/fmrdsd/internal/dspfilter"
	"github.com/doismellburning/fmrdsd/internal/fabric"
	"github.com/doismellburning/fmrdsd/internal/mpx"
	"github.com/doismellburning/fmrdsd/internal/nco"
	"github.com/doismellburning/fmrdsd/internal/obslog"
	"github.com/doismellburning/fmrdsd/internal/perr"
	"github.com/doismellburning/fmrdsd/internal/rds"
	"github.com/doismellburning/fmrdsd/internal/stereo"
	"github.com/doismellburning/fmrdsd/internal/telemetry"
	"github.com/doismellburning/fmrdsd/internal/xmit"
)

// Params bundles the sample-rate/block-size constants that size every
// buffer the orchestrator owns.
type Params struct {
	FsIn  float64
	NIn   int
	L     int // upsample factor, always 4
	PilotAmp, SideAmp, RDSAmp float64
}

// DefaultParams gives the nominal defaults: 48kHz in, 64-frame blocks
// (1.333ms), 4x upsampling.
func DefaultParams() Params {
	return Params{
		FsIn: 48000, NIn: 64, L: 4,
		PilotAmp: 0.09, SideAmp: 0.09, RDSAmp: 0.04,
	}
}

// Orchestrator owns every stateful component on the audio path and runs
// the fixed READ -> STAGE1..9 -> WRITE loop. It is not safe for
// concurrent use: exactly one goroutine, the pinned audio task, calls
// RunOnce in a loop.
type Orchestrator struct {
	params Params

	input  audioio.Input
	output audioio.Output

	preemph    *dspfilter.Preemphasis
	notch      *dspfilter.Notch
	upsampler  *dspfilter.Upsampler
	oscillator *nco.NCO
	mixer      *mpx.Mixer
	rdsSynth   *rds.Synth
	rdsEnabled bool

	meter dspblock.StereoMeter

	audioParams *controlsurface.AudioParams

	keyer   xmit.Transmitter
	started bool

	logger     *obslog.Logger
	collector  *telemetry.Collector
	statsBox   *fabric.Mailbox[telemetry.StatsSnapshot]
	vuBox      *fabric.Mailbox[telemetry.VUSample]
	statsEvery time.Duration

	// scratch buffers, allocated once at construction: no dynamic
	// allocation on the audio path after init.
	wireIn     []dspblock.WireFrame
	realIn     []float32
	upsampled  []float32
	mono, side []float32
	pilot, sub, rdsCarrier []float32
	mpxOut     []float32
	rdsOut     []float32
	wireOut    []dspblock.WireFrame

	errorCount uint64
	loopCount  uint64
}

// New builds an orchestrator with every stage configured per
// SPEC_FULL.md's defaults and pre-allocates every scratch buffer.
func New(
	params Params,
	input audioio.Input,
	output audioio.Output,
	logger *obslog.Logger,
	bitFifo *fabric.BitFIFO,
	statsBox *fabric.Mailbox[telemetry.StatsSnapshot],
	vuBox *fabric.Mailbox[telemetry.VUSample],
	audioParams *controlsurface.AudioParams,
	keyer xmit.Transmitter,
) *Orchestrator {
	fsOut := params.FsIn * float64(params.L)
	nOut := params.NIn * params.L

	if keyer == nil {
		keyer = xmit.NopKeyer{}
	}

	return &Orchestrator{
		params:      params,
		input:       input,
		output:      output,
		preemph:     dspfilter.NewPreemphasis(75e-6, params.FsIn, 1.0),
		notch:       dspfilter.NewNotch(params.FsIn, 19000, 0),
		upsampler:   dspfilter.NewUpsampler(params.FsIn, 15000),
		oscillator:  nco.New(19000, fsOut),
		mixer:       mpx.New(float32(params.PilotAmp), float32(params.SideAmp)),
		rdsSynth:    rds.NewSynth(bitFifo, fsOut),
		rdsEnabled:  true,
		audioParams: audioParams,
		keyer:       keyer,
		logger:      logger,
		collector:   telemetry.NewCollector(),
		statsBox:    statsBox,
		vuBox:       vuBox,
		statsEvery:  5 * time.Second,

		wireIn:     make([]dspblock.WireFrame, params.NIn),
		realIn:     make([]float32, params.NIn*2),
		upsampled:  make([]float32, nOut*2),
		mono:       make([]float32, nOut),
		side:       make([]float32, nOut),
		pilot:      make([]float32, nOut),
		sub:        make([]float32, nOut),
		rdsCarrier: make([]float32, nOut),
		mpxOut:     make([]float32, nOut),
		rdsOut:     make([]float32, nOut),
		wireOut:    make([]dspblock.WireFrame, nOut),
	}
}

// RunOnce executes exactly one READ -> STAGE1..9 -> WRITE iteration, the
// audio task's loop body. It returns the error only for test
// observability; in steady-state operation the orchestrator logs and
// continues rather than propagating, since nothing on the audio path
// unwinds on error.
func (o *Orchestrator) RunOnce() error {
	o.loopCount++

	if !o.started {
		if err := o.keyer.Key(true); err != nil {
			o.logger.Warn("PTT key-on failed: %v", err)
		}
		o.started = true
	}

	if o.audioParams != nil {
		preemphUs, pilot, rdsAmp := o.audioParams.Snapshot()
		o.preemph.SetTau(preemphUs, o.params.FsIn)
		o.mixer.PilotAmp = float32(pilot)
		o.params.RDSAmp = rdsAmp
	}

	// READ
	n, err := o.input.Read(o.wireIn)
	if err != nil {
		o.errorCount++
		o.logger.Error("input read failed: %v", err)
		return perr.New(perr.KindPeripheralIO, "input read: %v", err)
	}

	stage := func(id telemetry.StageID, f func()) {
		start := time.Now()
		f()
		o.collector.Observe(id, time.Since(start))
	}

	// Stage 1: decode & meter.
	stage(telemetry.StageDecodeMeter, func() {
		dspblock.Decode(o.wireIn[:n], o.realIn[:n*2])
		o.meter.Reset()
		for i := 0; i < n; i++ {
			o.meter.AddFrame(o.realIn[2*i], o.realIn[2*i+1])
		}
	})

	// Stage 2: pre-emphasis.
	stage(telemetry.StagePreemphasis, func() {
		o.preemph.Process(o.realIn[:n*2])
	})

	// Stage 3: notch.
	stage(telemetry.StageNotch, func() {
		o.notch.Process(o.realIn[:n*2])
	})

	nOut := n * o.params.L

	// Stage 4: upsample.
	stage(telemetry.StageUpsample, func() {
		o.upsampler.Process(o.realIn[:n*2], o.upsampled[:nOut*2], n)
	})

	// Stage 5: matrix.
	stage(telemetry.StageMatrix, func() {
		stereo.Matrix(o.upsampled[:nOut*2], o.mono[:nOut], o.side[:nOut])
	})

	// Stage 6: NCO.
	stage(telemetry.StageNCO, func() {
		o.oscillator.Generate(o.pilot[:nOut], o.sub[:nOut], o.rdsCarrier[:nOut], nOut)
	})

	// Stage 7: MPX.
	stage(telemetry.StageMPX, func() {
		o.mixer.Process(o.mono[:nOut], o.side[:nOut], o.pilot[:nOut], o.sub[:nOut], o.mpxOut[:nOut], nOut)
	})

	// Stage 8: RDS injection (optional, additive).
	if o.rdsEnabled {
		stage(telemetry.StageRDSInject, func() {
			o.rdsSynth.Process(o.rdsCarrier[:nOut], float32(o.params.RDSAmp), o.rdsOut[:nOut], nOut)
			for i := 0; i < nOut; i++ {
				o.mpxOut[i] += o.rdsOut[i]
			}
		})
	}

	// Duplicate composite to both output channels (mono-on-both), then
	// Stage 9: single clamp and encode.
	stage(telemetry.StageEncode, func() {
		interleaved := o.upsampled[:nOut*2] // reuse scratch, no new allocation
		for i := 0; i < nOut; i++ {
			interleaved[2*i] = o.mpxOut[i]
			interleaved[2*i+1] = o.mpxOut[i]
		}
		dspblock.Encode(interleaved, o.wireOut[:nOut])
	})

	// WRITE
	written, werr := o.output.Write(o.wireOut[:nOut])
	if werr != nil {
		o.errorCount++
		o.logger.Warn("output underrun: wrote %d/%d frames", written, nOut)
	}

	o.publishTelemetry(n)
	return nil
}

// Close keys PTT off if the stream was ever started and releases the
// keyer. Safe to call even if RunOnce was never called.
func (o *Orchestrator) Close() error {
	if !o.started {
		return nil
	}
	if err := o.keyer.Key(false); err != nil {
		o.logger.Warn("PTT key-off failed: %v", err)
	}
	return o.keyer.Close()
}

func (o *Orchestrator) publishTelemetry(framesIn int) {
	now := time.Now()
	if o.vuBox != nil {
		sample := telemetry.Sample(
			o.meter.L.RMS(), o.meter.R.RMS(),
			o.meter.L.Peak(), o.meter.R.Peak(),
			framesIn, now,
		)
		o.vuBox.Put(sample)
	}
	if o.statsBox != nil && o.collector.Due(now, o.statsEvery) {
		o.collector.IncLoop()
		snap := o.collector.Snapshot(now)
		snap.LoopCount = o.loopCount
		snap.ErrorCount = o.errorCount
		o.statsBox.Put(snap)
	}
}
