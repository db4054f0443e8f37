// Command fmrdsd runs the FM stereo/RDS baseband encoder pipeline: the
// audio task (pinned orchestrator loop), the RDS assembler task, the
// telemetry consumer task, and the control surface server, wired together
// the way src/direwolf's cmd/direwolf/main.go wires its own subsystems.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doismellburning/fmrdsd/internal/audioio"
	"github.com/doismellburning/fmrdsd/internal/controlsurface"
	"github.com/doismellburning/fmrdsd/internal/fabric"
	"github.com/doismellburning/fmrdsd/internal/obslog"
	"github.com/doismellburning/fmrdsd/internal/pipeline"
	"github.com/doismellburning/fmrdsd/internal/rds"
	"github.com/doismellburning/fmrdsd/internal/rdsconfig"
	"github.com/doismellburning/fmrdsd/internal/sched"
	"github.com/doismellburning/fmrdsd/internal/telemetry"
	"github.com/doismellburning/fmrdsd/internal/xmit"
	"github.com/spf13/pflag"
)

const telemetryRefresh = 1 * time.Second

func main() {
	var (
		listenAddr = pflag.StringP("listen", "l", ":8073", "control surface TCP listen address")
		logLevel   = pflag.String("log-level", "INFO", "initial log level: DEBUG|INFO|WARN|ERROR|OFF")
		jsonMode   = pflag.Bool("json", false, "control surface responds with JSON instead of plain text")
		audioCore  = pflag.Int("audio-core", 0, "CPU core to pin the audio task to")
		ctrlCore   = pflag.Int("control-core", 1, "CPU core to pin the telemetry/RDS tasks to")
		announce   = pflag.Bool("mdns", true, "advertise the control surface via mDNS")
		serviceTag = pflag.String("name", "fmrdsd", "mDNS service instance name")
		rigModel   = pflag.Int("rig-model", 0, "Hamlib rig model ID for PTT keying (0 disables PTT)")
		rigDevice  = pflag.String("rig-device", "", "Hamlib rig control device (e.g. /dev/ttyUSB0)")
	)
	pflag.Parse()

	level, ok := obslog.ParseLevel(*logLevel)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown log level %q\n", *logLevel)
		os.Exit(1)
	}

	logFifo := fabric.NewLogFIFO(64)
	logger := obslog.NewFIFOLogger(logFifo, level)
	directLogger := obslog.NewDirectLogger(os.Stderr, level)

	bits := fabric.NewBitFIFO(1024)
	var statsBox fabric.Mailbox[telemetry.StatsSnapshot]
	var vuBox fabric.Mailbox[telemetry.VUSample]

	staging := rdsconfig.NewStaging(rdsconfig.NewRecord())
	audioParams := controlsurface.NewAudioParams(75, 0.09, 0.04)

	dev := audioio.NewFakeDevice(nil) // real peripheral wiring is external glue

	var keyer xmit.Transmitter = xmit.NopKeyer{}
	if *rigModel != 0 {
		k, err := xmit.Open(*rigModel, *rigDevice)
		if err != nil {
			directLogger.Warn("PTT rig open failed, falling back to no-op keyer: %v", err)
		} else {
			keyer = k
		}
	}

	orch := pipeline.New(pipeline.DefaultParams(), dev, dev, logger, bits, &statsBox, &vuBox, audioParams, keyer)
	assembler := rds.NewAssembler(staging, bits)

	dispatcher := controlsurface.NewDispatcher(staging, audioParams)
	dispatcher.OnLogLevel(func(v string) error {
		lvl, ok := obslog.ParseLevel(v)
		if !ok {
			return fmt.Errorf("unknown level %q", v)
		}
		logger.SetLevel(lvl)
		directLogger.SetLevel(lvl)
		return nil
	})
	dispatcher.OnClockTime(func(formatted string) {
		directLogger.Info("RDS clock time set to %s", formatted)
	})

	mode := controlsurface.ResponsePlain
	if *jsonMode {
		mode = controlsurface.ResponseJSON
	}
	server := controlsurface.NewServer(dispatcher, mode)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ln, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		directLogger.Error("control surface listen failed: %v", err)
		os.Exit(1)
	}
	go server.Serve(ctx, ln)
	directLogger.Info("control surface listening on %s", *listenAddr)

	if *announce {
		if _, port, err := net.SplitHostPort(*listenAddr); err == nil {
			go func() {
				var p int
				fmt.Sscanf(port, "%d", &p)
				if err := controlsurface.Announce(ctx, *serviceTag, p); err != nil {
					directLogger.Warn("mDNS announce failed: %v", err)
				}
			}()
		}
	}

	go func() {
		if err := sched.PinCurrentThread(*ctrlCore); err != nil {
			directLogger.Warn("core pin (control) failed: %v", err)
		}
		pipeline.RDSAssemblerTask(ctx, assembler)
	}()

	go pipeline.TelemetryConsumerTask(ctx, logger, os.Stderr, &statsBox, &vuBox, nil, nil, telemetryRefresh)

	audioDone := make(chan struct{})
	go func() {
		defer close(audioDone)
		if err := sched.PinCurrentThread(*audioCore); err != nil {
			directLogger.Warn("core pin (audio) failed: %v", err)
		}
		for {
			select {
			case <-ctx.Done():
				return
			default:
				orch.RunOnce()
			}
		}
	}()

	<-ctx.Done()
	<-audioDone
	directLogger.Info("shutting down")
	if err := orch.Close(); err != nil {
		directLogger.Warn("PTT key-off / rig close failed: %v", err)
	}
}
