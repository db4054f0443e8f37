package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/doismellburning/fmrdsd/internal/fabric"
	"github.com/doismellburning/fmrdsd/internal/obslog"
	"github.com/doismellburning/fmrdsd/internal/rds"
	"github.com/doismellburning/fmrdsd/internal/telemetry"
)

// RDSAssemblerTask runs the assembler as a cooperative loop on the
// non-audio core: one group per iteration, then a bounded sleep to pace
// bit production to the RDS bit rate (1187.5 bps -> ~87.6ms per 104-bit
// group), yielding between groups so console mutations can land. Returns
// when ctx is cancelled.
func RDSAssemblerTask(ctx context.Context, a *rds.Assembler) {
	const groupPeriod = 104 * 2 * time.Second / 2375 // 1187.5 bps = 2375/2; ~87.6ms per group
	ticker := time.NewTicker(groupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.RunGroup(now)
		}
	}
}

// TelemetryConsumerTask drains the log FIFO and telemetry mailboxes at
// its own cadence, never calling back into the audio task. w receives drained
// log lines; onStats/onVU are called with each fresh snapshot, if any.
func TelemetryConsumerTask(
	ctx context.Context,
	logger *obslog.Logger,
	w io.Writer,
	statsBox *fabric.Mailbox[telemetry.StatsSnapshot],
	vuBox *fabric.Mailbox[telemetry.VUSample],
	onStats func(telemetry.StatsSnapshot),
	onVU func(telemetry.VUSample),
	refresh time.Duration,
) {
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for logger.Drain(w) {
			}
			if statsBox != nil {
				if snap, ok := statsBox.Take(); ok && onStats != nil {
					onStats(snap)
				}
			}
			if vuBox != nil {
				if sample, ok := vuBox.Take(); ok && onVU != nil {
					onVU(sample)
				}
			}
		}
	}
}
