package rdsconfig

import (
	"time"

	"gopkg.in/yaml.v3"
)

// NonVolatileStore is the pluggable medium behind persistence; the actual
// flash/file storage is an external collaborator. A real deployment's
// init path supplies a concrete implementation (e.g. a small file on disk
// for development rigs).
type NonVolatileStore interface {
	Load() ([]byte, error)
	Save([]byte) error
}

// persisted is the persisted-state keyed blob, field-named to match a
// set of well-known keys (rds.pi, rds.ps, ...). Grounded on
// src/deviceid.go, which persists a small identity record the same way:
// marshal a plain struct to YAML and hand the bytes to a store.
type persisted struct {
	PI        uint16   `yaml:"rds.pi"`
	PTY       uint8    `yaml:"rds.pty"`
	TP        bool     `yaml:"rds.tp"`
	TA        bool     `yaml:"rds.ta"`
	MS        bool     `yaml:"rds.ms"`
	PS        string   `yaml:"rds.ps"`
	RT        string   `yaml:"rds.rt"`
	AF        []uint8  `yaml:"rds.af"`
	RTList    []string `yaml:"rds.rt_list"`
	RTPeriodS int      `yaml:"rds.rt_period"`

	PreemphUs float64 `yaml:"audio.preemph"`
	Pilot     float64 `yaml:"audio.pilot"`
	RDSAmp    float64 `yaml:"audio.rds_amp"`
}

// AudioParams are the bootstrap audio-side runtime parameters persisted
// alongside the RDS record: pre-emphasis time constant (microseconds,
// 0 meaning off), pilot injection, and RDS injection amplitude.
type AudioParams struct {
	PreemphUs float64
	Pilot     float64
	RDSAmp    float64
}

// Save marshals rec and audio to YAML and writes them through store.
func Save(store NonVolatileStore, rec *Record, audio AudioParams) error {
	p := persisted{
		PI: rec.PI, PTY: rec.PTY, TP: rec.TP, TA: rec.TA, MS: rec.MS,
		PS: rec.PS, RT: rec.RT, AF: rec.AF, RTList: rec.RTList,
		RTPeriodS: int(rec.RTPeriod.Seconds()),
		PreemphUs: audio.PreemphUs, Pilot: audio.Pilot, RDSAmp: audio.RDSAmp,
	}
	b, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return store.Save(b)
}

// Load reads through store and unmarshals into a fresh Record and
// AudioParams, populating the configuration record before the assembler
// starts.
func Load(store NonVolatileStore) (*Record, AudioParams, error) {
	b, err := store.Load()
	if err != nil {
		return nil, AudioParams{}, err
	}
	var p persisted
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, AudioParams{}, err
	}
	rec := NewRecord()
	rec.PI, rec.PTY, rec.TP, rec.TA, rec.MS = p.PI, p.PTY, p.TP, p.TA, p.MS
	rec.PS, rec.RT, rec.AF, rec.RTList = p.PS, p.RT, p.AF, p.RTList
	if p.RTPeriodS > 0 {
		rec.RTPeriod = time.Duration(p.RTPeriodS) * time.Second
	}
	audio := AudioParams{PreemphUs: p.PreemphUs, Pilot: p.Pilot, RDSAmp: p.RDSAmp}
	return rec, audio, nil
}
