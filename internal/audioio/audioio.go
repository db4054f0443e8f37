// Package audioio defines the input/output peripheral contracts as
// interfaces only (the actual driver is an external collaborator) plus a
// deterministic in-memory fake used by tests and tooling.
package audioio

import (
	"errors"

	"github.com/doismellburning/fmrdsd/internal/dspblock"
)

// ErrShortWrite is returned by Output.Write when fewer frames were
// accepted than requested, an underrun condition.
var ErrShortWrite = errors.New("audioio: short write")

// Input is the blocking input peripheral contract: reads interleaved
// stereo integer frames at Fs_in. Partial reads are tolerated; Read
// returns the number of whole frames actually read.
type Input interface {
	Read(frames []dspblock.WireFrame) (n int, err error)
}

// Output is the blocking output peripheral contract: writes interleaved
// stereo integer frames at Fs_out. Short writes are reported, not
// treated as hard errors (ErrShortWrite, not a general error).
type Output interface {
	Write(frames []dspblock.WireFrame) (n int, err error)
}

// FakeDevice is a deterministic in-memory Input/Output pair: Input yields
// frames from a preloaded buffer (looping silence once exhausted, so
// tests can run a pipeline for an arbitrary number of blocks), Output
// appends every written frame for later inspection.
type FakeDevice struct {
	in       []dspblock.WireFrame
	inCursor int
	Out      []dspblock.WireFrame

	ShortWriteAfter int // if >0, Write accepts fewer frames after this many calls
	writeCalls      int

	FailReadAfter int // if >0, Read fails after this many calls
	readCalls     int
}

// NewFakeDevice seeds the fake's input buffer; once exhausted, Read keeps
// returning silence (zero frames) rather than EOF, matching a real
// peripheral's steady-state "blocks forever on the last available
// sample" behavior closely enough for deterministic tests.
func NewFakeDevice(in []dspblock.WireFrame) *FakeDevice {
	return &FakeDevice{in: in}
}

func (f *FakeDevice) Read(frames []dspblock.WireFrame) (int, error) {
	f.readCalls++
	if f.FailReadAfter > 0 && f.readCalls > f.FailReadAfter {
		return 0, errors.New("audioio: simulated read failure")
	}
	n := 0
	for n < len(frames) {
		if f.inCursor < len(f.in) {
			frames[n] = f.in[f.inCursor]
			f.inCursor++
		} else {
			frames[n] = dspblock.WireFrame{}
		}
		n++
	}
	return n, nil
}

func (f *FakeDevice) Write(frames []dspblock.WireFrame) (int, error) {
	f.writeCalls++
	n := len(frames)
	if f.ShortWriteAfter > 0 && f.writeCalls > f.ShortWriteAfter {
		n = len(frames) / 2
		f.Out = append(f.Out, frames[:n]...)
		return n, ErrShortWrite
	}
	f.Out = append(f.Out, frames...)
	return n, nil
}
