package rdsconfig

import (
	"sync"
	"time"

	"github.com/doismellburning/fmrdsd/internal/perr"
)

// Staging is the single-writer mutation surface: the control surface
// posts updates here under a short critical section, and the assembler
// copies from it into its working Record between groups, with writes
// copied atomically under a short critical section. Staging never
// touches the assembler's copy directly, so the assembler never observes
// a torn multi-field write.
type Staging struct {
	mu      sync.Mutex
	pending Record
	dirty   bool
}

// NewStaging seeds a staging area with the given initial record.
func NewStaging(initial *Record) *Staging {
	return &Staging{pending: *initial}
}

// SnapshotIfDirty copies the staged record into dst if anything changed
// since the last snapshot, returning true when it did. The assembler
// calls this once per group boundary.
func (s *Staging) SnapshotIfDirty(dst *Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return false
	}
	rtList := append([]string(nil), s.pending.RTList...)
	af := append([]uint8(nil), s.pending.AF...)
	*dst = s.pending
	dst.RTList = rtList
	dst.AF = af
	s.dirty = false
	return true
}

func (s *Staging) mutate(f func(*Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := f(&s.pending); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// SetPI validates and stages a new Program Identification code. Any u16
// is accepted; PI has no reserved range.
func (s *Staging) SetPI(pi uint16) error {
	return s.mutate(func(r *Record) error {
		r.PI = pi
		return nil
	})
}

// SetPTY validates 0..31, matching `RDS:PTY <0..31 | name>`.
func (s *Staging) SetPTY(pty uint8) error {
	if pty > 31 {
		return perr.New(perr.KindParameter, "PTY %d out of range 0..31", pty)
	}
	return s.mutate(func(r *Record) error {
		r.PTY = pty
		return nil
	})
}

func (s *Staging) SetTP(v bool) error {
	return s.mutate(func(r *Record) error { r.TP = v; return nil })
}

func (s *Staging) SetTA(v bool) error {
	return s.mutate(func(r *Record) error { r.TA = v; return nil })
}

// SetMS sets Music(true)/Speech(false).
func (s *Staging) SetMS(v bool) error {
	return s.mutate(func(r *Record) error { r.MS = v; return nil })
}

// SetPS validates 1..8 characters.
func (s *Staging) SetPS(ps string) error {
	if len(ps) < 1 || len(ps) > 8 {
		return perr.New(perr.KindParameter, "PS length %d out of range 1..8", len(ps))
	}
	for len(ps) < 8 {
		ps += " "
	}
	return s.mutate(func(r *Record) error {
		r.PS = ps
		return nil
	})
}

// SetRT validates 1..64 characters and unconditionally toggles text_AB,
// even if the new text equals the current one, matching the source's
// unconditional toggle on every setRT call.
func (s *Staging) SetRT(rt string) error {
	if len(rt) < 1 || len(rt) > 64 {
		return perr.New(perr.KindParameter, "RT length %d out of range 1..64", len(rt))
	}
	return s.mutate(func(r *Record) error {
		r.RT = rt
		r.TextAB = !r.TextAB
		r.rtSegment = 0
		return nil
	})
}

func (s *Staging) RTListAdd(text string) error {
	return s.mutate(func(r *Record) error {
		r.RTList = append(r.RTList, text)
		return nil
	})
}

func (s *Staging) RTListDel(index int) error {
	return s.mutate(func(r *Record) error {
		if index < 0 || index >= len(r.RTList) {
			return perr.New(perr.KindParameter, "RT list index %d out of range", index)
		}
		r.RTList = append(r.RTList[:index], r.RTList[index+1:]...)
		return nil
	})
}

func (s *Staging) RTListClear() error {
	return s.mutate(func(r *Record) error {
		r.RTList = nil
		return nil
	})
}

// RTPeriod sets the rotation dwell in seconds, validated positive.
func (s *Staging) RTPeriod(seconds int) error {
	if seconds <= 0 {
		return perr.New(perr.KindParameter, "RT period %d must be positive", seconds)
	}
	return s.mutate(func(r *Record) error {
		r.RTPeriod = time.Duration(seconds) * time.Second
		return nil
	})
}

// SetAF encodes VHF FM Method A frequencies (MHz):
// code = round((f-87.5)/0.1) for 87.6<=f<=107.9; out-of-range frequencies
// are rejected and nothing is staged.
func (s *Staging) SetAF(freqsMHz []float64) error {
	codes := make([]uint8, 0, len(freqsMHz))
	for _, f := range freqsMHz {
		if f < 87.6 || f > 107.9 {
			return perr.New(perr.KindParameter, "AF frequency %.1f MHz out of range 87.6..107.9", f)
		}
		codes = append(codes, uint8(roundHalfAwayFromZero((f-87.5)/0.1)))
	}
	if len(codes) > 25 {
		return perr.New(perr.KindParameter, "AF list length %d exceeds 25", len(codes))
	}
	return s.mutate(func(r *Record) error {
		r.AF = codes
		return nil
	})
}

func (s *Staging) SetClock(ct ClockTime, enabled bool) error {
	return s.mutate(func(r *Record) error {
		r.CT = ct
		r.CTEnabled = enabled
		return nil
	})
}

func roundHalfAwayFromZero(x float64) int {
	if x >= 0 {
		return int(x + 0.5)
	}
	return -int(-x + 0.5)
}
