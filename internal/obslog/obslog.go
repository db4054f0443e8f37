// Package obslog is the leveled logging chokepoint every subsystem writes
// through instead of ad-hoc fmt.Printf, generalized from
// src/textcolor.go's single text_color_set/dw_printf choke point into a
// small leveled logger. On the audio path, Logger writes through the log
// FIFO (drop-newest, non-blocking); the telemetry/console tasks, which
// are allowed to block briefly, use a direct stderr sink instead.
package obslog

import (
	"fmt"
	"io"
	"time"

	"github.com/doismellburning/fmrdsd/internal/fabric"
	"github.com/lestrrat-go/strftime"
)

// Level mirrors the control surface's SYST:LOG:LEVEL values.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "OFF"
	}
}

func ParseLevel(s string) (Level, bool) {
	switch s {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "OFF":
		return LevelOff, true
	}
	return 0, false
}

// Logger is the shared chokepoint. On the audio path, construct it with a
// FIFO sink (non-blocking, drop-newest); elsewhere, construct it with a
// direct io.Writer (e.g. os.Stderr), which is allowed to block briefly.
type Logger struct {
	level Level
	fifo  *fabric.LogFIFO
	out   io.Writer
}

// NewFIFOLogger writes through the audio path's log FIFO: never blocks,
// drops the newest record on overflow.
func NewFIFOLogger(fifo *fabric.LogFIFO, level Level) *Logger {
	return &Logger{level: level, fifo: fifo}
}

// NewDirectLogger writes straight to w (e.g. os.Stderr), for the
// telemetry/console tasks that are allowed to block briefly.
func NewDirectLogger(w io.Writer, level Level) *Logger {
	return &Logger{level: level, out: w}
}

func (l *Logger) SetLevel(level Level) { l.level = level }

func (l *Logger) log(level Level, format string, args ...any) {
	if level < l.level || l.level == LevelOff {
		return
	}
	text := fmt.Sprintf(format, args...)
	if len(text) > 160 {
		text = text[:160]
	}
	if l.fifo != nil {
		l.fifo.Push(fabric.LogRecord{
			Level: fabric.LogLevel(level),
			TsNs:  time.Now().UnixNano(),
			Text:  text,
		})
		return
	}
	fmt.Fprintf(l.out, "%s %s %s\n", time.Now().Format(time.RFC3339), level, text)
}

func (l *Logger) Debug(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.log(LevelError, format, args...) }

// Drain pops one queued record from the FIFO sink and writes it to w,
// returning false when the FIFO is empty or this logger has no FIFO
// (direct loggers have nothing to drain). The telemetry/console task owns
// calling this in a loop woken by fifo.Wake().
func (l *Logger) Drain(w io.Writer) bool {
	if l.fifo == nil {
		return false
	}
	rec, ok := l.fifo.Pop()
	if !ok {
		return false
	}
	ts := time.Unix(0, rec.TsNs)
	fmt.Fprintf(w, "%s %s %s\n", ts.Format(time.RFC3339), Level(rec.Level), rec.Text)
	return true
}

// clockTimeLayout is the strftime pattern used to render the Clock-Time
// fields (MJD/hh/mm/offset) for log display.
const clockTimeLayout = "%Y-%m-%d %H:%M %z"

// FormatClockTime renders t with clockTimeLayout; the control surface's
// RDS:CT hook uses it for its log line.
func FormatClockTime(t time.Time) string {
	f, err := strftime.New(clockTimeLayout)
	if err != nil {
		return t.Format(time.RFC3339)
	}
	return f.FormatString(t)
}
