// Package xmit is the optional transmitter keyer: when the pipeline
// starts or stops streaming, it keys an attached exciter's PTT line
// through Hamlib's rigctld protocol. Grounded on src/ptt.go's "Version
// 1.3: HAMLIB support", generalized from AX.25 TNC PTT to RDS-MPX
// exciter keying.
package xmit

import "github.com/xylo04/goHamlib"

// Transmitter is the interface internal/pipeline depends on, satisfied by
// both Keyer and NopKeyer.
type Transmitter interface {
	Key(on bool) error
	Close() error
}

// Keyer wraps a Hamlib rig handle and exposes the two operations the
// pipeline orchestrator needs at stream start/stop: it never runs on the
// audio task's hot path, only at block-boundary state transitions.
type Keyer struct {
	rig *goHamlib.Rig
}

// Open connects to rigctld (or a directly-supported rig model) and
// returns a Keyer. model follows Hamlib's numeric rig model convention;
// 2 selects the "NET rigctl" network backend, matching how src/ptt.go's
// HAMLIB support is typically wired to an external rigctld daemon.
func Open(model int, device string) (*Keyer, error) {
	rig := goHamlib.NewRig(model)
	if err := rig.SetConf("rig_pathname", device); err != nil {
		return nil, err
	}
	if err := rig.Open(); err != nil {
		return nil, err
	}
	return &Keyer{rig: rig}, nil
}

func (k *Keyer) Close() error { return k.rig.Close() }

// Key asserts or releases PTT, called once per stream start/stop
// transition, never per audio block.
func (k *Keyer) Key(on bool) error {
	if on {
		return k.rig.SetPTT(goHamlib.RigVFOCurr, goHamlib.RigPTTOn)
	}
	return k.rig.SetPTT(goHamlib.RigVFOCurr, goHamlib.RigPTTOff)
}

// NopKeyer satisfies the same role as Keyer for deployments with no
// attached exciter-control hardware; it does nothing, successfully.
type NopKeyer struct{}

func (NopKeyer) Key(bool) error { return nil }
func (NopKeyer) Close() error   { return nil }
