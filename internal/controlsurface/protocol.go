// Package controlsurface implements the text control protocol
// (`GROUP:ITEM <value>` / `GROUP:ITEM?`) over TCP and serial transports,
// grounded on src/kissutil.go/src/config.go's line-oriented parsing and
// src/serial_port.go's transport, plus src/dns_sd.go's mDNS announce
// pattern generalized to a new service name.
package controlsurface

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/doismellburning/fmrdsd/internal/obslog"
	"github.com/doismellburning/fmrdsd/internal/perr"
	"github.com/doismellburning/fmrdsd/internal/rdsconfig"
)

// AudioParams is the runtime-mutable audio-side subset of the protocol
// (AUDIO:PREEMPH, AUDIO:PILOT, AUDIO:RDS:AMP), staged the same way the RDS
// record is: the pipeline orchestrator reads a snapshot at block
// boundaries.
type AudioParams struct {
	mu        sync.RWMutex
	preemphUs float64 // 0 means OFF
	pilot     float64
	rdsAmp    float64
}

// NewAudioParams seeds the params with their boot-time defaults.
func NewAudioParams(preemphUs, pilot, rdsAmp float64) *AudioParams {
	return &AudioParams{preemphUs: preemphUs, pilot: pilot, rdsAmp: rdsAmp}
}

// Snapshot returns the current values for the pipeline orchestrator to
// apply at its own block boundary.
func (a *AudioParams) Snapshot() (preemphUs, pilot, rdsAmp float64) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.preemphUs, a.pilot, a.rdsAmp
}

// Dispatcher wires parsed commands to the RDS staging area and audio
// params, and is the unit this package's tests exercise directly (the
// transports in server.go/serial.go are thin line-reading loops around
// it).
type Dispatcher struct {
	staging *rdsconfig.Staging
	audio   *AudioParams
	logLvl  func(string) error
	stats   func() string
	save    func() error
	load    func() error
	clock   func(string)
}

func NewDispatcher(staging *rdsconfig.Staging, audio *AudioParams) *Dispatcher {
	return &Dispatcher{staging: staging, audio: audio}
}

// OnLogLevel, OnStats, OnSave, OnLoad register the SYST:* side effects
// that don't belong to rdsconfig, since logging level, stats snapshot
// text, and persistence triggers live in other packages wired by
// internal/pipeline.
func (d *Dispatcher) OnLogLevel(f func(string) error) { d.logLvl = f }
func (d *Dispatcher) OnStats(f func() string)         { d.stats = f }
func (d *Dispatcher) OnSave(f func() error)           { d.save = f }
func (d *Dispatcher) OnLoad(f func() error)           { d.load = f }

// OnClockTime registers a sink notified with the formatted Clock-Time
// text (obslog.FormatClockTime) whenever RDS:CT successfully sets a new
// clock reference.
func (d *Dispatcher) OnClockTime(f func(string)) { d.clock = f }

// Response is a GROUP:ITEM command's outcome, rendered either as plain
// text ("OK key=value" / "ERR code message") or as one of two JSON
// response shapes.
type Response struct {
	OK    bool
	Key   string
	Value string
	Err   error
}

func (r Response) PlainText() string {
	if r.OK {
		if r.Key == "" {
			return "OK"
		}
		return fmt.Sprintf("OK %s=%s", r.Key, r.Value)
	}
	code := "ERR"
	if pe, ok := r.Err.(*perr.Error); ok {
		code = pe.Kind.String()
	}
	return fmt.Sprintf("ERR %s %s", code, r.Err.Error())
}

func (r Response) JSON() string {
	if r.OK {
		return fmt.Sprintf(`{"ok":true,"data":{%s}}`, kv(r.Key, r.Value))
	}
	code := "ERR"
	if pe, ok := r.Err.(*perr.Error); ok {
		code = pe.Kind.String()
	}
	return fmt.Sprintf(`{"ok":false,"error":{"code":%q,"message":%q}}`, code, r.Err.Error())
}

func kv(k, v string) string {
	if k == "" {
		return ""
	}
	return fmt.Sprintf("%q:%q", k, v)
}

// Dispatch parses and executes one line of the GROUP:ITEM grammar.
// Items are case-insensitive; the value after the first space (if any)
// is passed through verbatim (strings keep their original case).
func (d *Dispatcher) Dispatch(line string) Response {
	line = strings.TrimSpace(line)
	if line == "" {
		return Response{OK: false, Err: perr.New(perr.KindParameter, "empty command")}
	}
	isQuery := strings.HasSuffix(line, "?")
	if isQuery {
		line = strings.TrimSuffix(line, "?")
	}
	var key, value string
	if sp := strings.IndexByte(line, ' '); sp >= 0 {
		key, value = line[:sp], strings.TrimSpace(line[sp+1:])
	} else {
		key = line
	}
	keyUpper := strings.ToUpper(key)

	if isQuery {
		return d.query(keyUpper)
	}
	return d.mutate(keyUpper, value)
}

func errResp(err error) Response { return Response{OK: false, Err: err} }
func okResp(key, value string) Response {
	return Response{OK: true, Key: key, Value: value}
}

func (d *Dispatcher) mutate(key, value string) Response {
	switch key {
	case "RDS:PI":
		v, err := strconv.ParseUint(value, 16, 16)
		if err != nil {
			return errResp(perr.New(perr.KindParameter, "bad PI hex %q", value))
		}
		if err := d.staging.SetPI(uint16(v)); err != nil {
			return errResp(err)
		}
	case "RDS:PTY":
		pty, err := parsePTY(value)
		if err != nil {
			return errResp(err)
		}
		if err := d.staging.SetPTY(pty); err != nil {
			return errResp(err)
		}
	case "RDS:TP":
		if err := d.staging.SetTP(value == "1"); err != nil {
			return errResp(err)
		}
	case "RDS:TA":
		if err := d.staging.SetTA(value == "1"); err != nil {
			return errResp(err)
		}
	case "RDS:MS":
		if err := d.staging.SetMS(strings.EqualFold(value, "M")); err != nil {
			return errResp(err)
		}
	case "RDS:PS":
		if err := d.staging.SetPS(value); err != nil {
			return errResp(err)
		}
	case "RDS:RT":
		if err := d.staging.SetRT(value); err != nil {
			return errResp(err)
		}
	case "RDS:RT:ADD":
		if err := d.staging.RTListAdd(value); err != nil {
			return errResp(err)
		}
	case "RDS:RT:DEL":
		idx, err := strconv.Atoi(value)
		if err != nil {
			return errResp(perr.New(perr.KindParameter, "bad index %q", value))
		}
		if err := d.staging.RTListDel(idx); err != nil {
			return errResp(err)
		}
	case "RDS:RT:CLEAR":
		if err := d.staging.RTListClear(); err != nil {
			return errResp(err)
		}
	case "RDS:RT:PERIOD":
		secs, err := strconv.Atoi(value)
		if err != nil {
			return errResp(perr.New(perr.KindParameter, "bad period %q", value))
		}
		if err := d.staging.RTPeriod(secs); err != nil {
			return errResp(err)
		}
	case "RDS:AF":
		freqs, err := parseFreqList(value)
		if err != nil {
			return errResp(err)
		}
		if err := d.staging.SetAF(freqs); err != nil {
			return errResp(err)
		}
	case "RDS:CT":
		ct, t, err := parseClockTime(value)
		if err != nil {
			return errResp(err)
		}
		if err := d.staging.SetClock(ct, true); err != nil {
			return errResp(err)
		}
		if d.clock != nil {
			d.clock(obslog.FormatClockTime(t))
		}
	case "AUDIO:PREEMPH":
		us, err := parsePreemph(value)
		if err != nil {
			return errResp(err)
		}
		d.audio.mu.Lock()
		d.audio.preemphUs = us
		d.audio.mu.Unlock()
	case "AUDIO:PILOT":
		v, err := parseRange(value, 0, 0.2)
		if err != nil {
			return errResp(err)
		}
		d.audio.mu.Lock()
		d.audio.pilot = v
		d.audio.mu.Unlock()
	case "AUDIO:RDS:AMP":
		v, err := parseRange(value, 0, 0.2)
		if err != nil {
			return errResp(err)
		}
		d.audio.mu.Lock()
		d.audio.rdsAmp = v
		d.audio.mu.Unlock()
	case "SYST:LOG:LEVEL":
		if d.logLvl == nil {
			return errResp(perr.New(perr.KindParameter, "log level sink not wired"))
		}
		if err := d.logLvl(value); err != nil {
			return errResp(err)
		}
	case "SYST:CONF:SAVE":
		if d.save == nil {
			return errResp(perr.New(perr.KindParameter, "save sink not wired"))
		}
		if err := d.save(); err != nil {
			return errResp(err)
		}
	case "SYST:CONF:LOAD":
		if d.load == nil {
			return errResp(perr.New(perr.KindParameter, "load sink not wired"))
		}
		if err := d.load(); err != nil {
			return errResp(err)
		}
	default:
		return errResp(perr.New(perr.KindParameter, "unknown command %q", key))
	}
	return okResp("", "")
}

func (d *Dispatcher) query(key string) Response {
	switch key {
	case "SYST:STATS":
		if d.stats == nil {
			return errResp(perr.New(perr.KindParameter, "stats sink not wired"))
		}
		return okResp("stats", d.stats())
	default:
		return errResp(perr.New(perr.KindParameter, "unknown query %q", key))
	}
}

func parsePTY(value string) (uint8, error) {
	if n, err := strconv.Atoi(value); err == nil {
		if n < 0 || n > 31 {
			return 0, perr.New(perr.KindParameter, "PTY %d out of range", n)
		}
		return uint8(n), nil
	}
	if pty, ok := ptyNames[strings.ToUpper(value)]; ok {
		return pty, nil
	}
	return 0, perr.New(perr.KindParameter, "unknown PTY name %q", value)
}

// ptyNames is a small subset of the RDS PTY name table; values beyond this
// set are still accepted numerically.
var ptyNames = map[string]uint8{
	"NONE": 0, "NEWS": 1, "INFORMATION": 2, "SPORT": 3, "WEATHER": 9,
	"POP": 10, "ROCK": 11, "CLASSICS": 14,
}

func parseFreqList(value string) ([]float64, error) {
	fields := strings.Fields(value)
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, perr.New(perr.KindParameter, "bad frequency %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

func parsePreemph(value string) (float64, error) {
	switch strings.ToUpper(value) {
	case "50US":
		return 50, nil
	case "75US":
		return 75, nil
	case "OFF":
		return 0, nil
	}
	return 0, perr.New(perr.KindParameter, "bad PREEMPH value %q", value)
}

func parseRange(value string, lo, hi float64) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, perr.New(perr.KindParameter, "bad numeric value %q", value)
	}
	if v < lo || v > hi {
		return 0, perr.New(perr.KindParameter, "value %v out of range %v..%v", v, lo, hi)
	}
	return v, nil
}

// parseClockTime parses "YYYY-MM-DD hh:mm +-hh:mm" into a ClockTime,
// converting the calendar date to Modified Julian Day. It also returns the
// parsed time.Time itself, for callers that want to render it (e.g. a log
// line) without re-deriving it from the MJD/hh/mm fields.
func parseClockTime(value string) (rdsconfig.ClockTime, time.Time, error) {
	fields := strings.Fields(value)
	if len(fields) != 3 {
		return rdsconfig.ClockTime{}, time.Time{}, perr.New(perr.KindParameter, "bad clock time %q", value)
	}
	t, err := time.Parse("2006-01-02 15:04", fields[0]+" "+fields[1])
	if err != nil {
		return rdsconfig.ClockTime{}, time.Time{}, perr.New(perr.KindParameter, "bad clock time %q", value)
	}
	neg := strings.HasPrefix(fields[2], "-")
	offsetStr := strings.TrimPrefix(strings.TrimPrefix(fields[2], "-"), "+")
	offParts := strings.SplitN(offsetStr, ":", 2)
	if len(offParts) != 2 {
		return rdsconfig.ClockTime{}, time.Time{}, perr.New(perr.KindParameter, "bad offset %q", fields[2])
	}
	offH, err1 := strconv.Atoi(offParts[0])
	offM, err2 := strconv.Atoi(offParts[1])
	if err1 != nil || err2 != nil {
		return rdsconfig.ClockTime{}, time.Time{}, perr.New(perr.KindParameter, "bad offset %q", fields[2])
	}
	halfHours := uint8(offH*2 + offM/30)

	return rdsconfig.ClockTime{
		MJD:         mjdFromTime(t),
		Hour:        uint8(t.Hour()),
		Minute:      uint8(t.Minute()),
		OffsetNeg:   neg,
		OffsetHalfH: halfHours,
	}, t, nil
}

// mjdFromTime converts a civil date to Modified Julian Day via the
// standard Fliegel-Van Flandern integer algorithm.
func mjdFromTime(t time.Time) uint32 {
	y, m, d := t.Date()
	a := (14 - int(m)) / 12
	y2 := y + 4800 - a
	m2 := int(m) + 12*a - 3
	jdn := d + (153*m2+2)/5 + 365*y2 + y2/4 - y2/100 + y2/400 - 32045
	return uint32(jdn - 2400001)
}
