package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/b3nn0/gpsmon/common"
	"github.com/b3nn0/gpsmon/gps"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML settings")
		port       = flag.String("port", "", "Serial port, e.g. /dev/ttyUSB0 or COM3, or tcp://host:port")
		baud       = flag.Int("baud", 0, fmt.Sprintf("Baud rate, one of %v", common.SUPPORTED_BAUD_RATES))
		timezone   = flag.String("timezone", "", "Display time zone, IANA name or UTC+8 (default UTC+8)")
		showLog    = flag.Bool("log", false, "Print every received line")
		interval   = flag.Duration("interval", 0, "Snapshot print interval")
		metrics    = flag.String("metrics", "", "Serve /metrics and /healthz on this address")
		replay     = flag.String("replay", "", "Play back a recorded NMEA file instead of a serial port")
		list       = flag.Bool("list", false, "List candidate serial ports and exit")
		debug      = flag.Bool("debug", false, "Verbose logging")
	)
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if *list {
		ports := gps.CandidatePorts()
		if len(ports) == 0 {
			fmt.Println("no serial ports found")
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	settings, err := loadSettings(*configPath)
	if err != nil {
		log.Fatalf("settings load failed: %v", err)
	}
	given := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { given[f.Name] = true })
	applyFlags(&settings, given, flagValues{
		port: *port, baud: *baud, timezone: *timezone, showLog: *showLog, interval: *interval,
		metrics: *metrics, replay: *replay, debug: *debug,
	})
	if err := settings.validate(); err != nil {
		log.Fatalf("invalid settings: %v", err)
	}

	var logFile *os.File
	if settings.LogFile != "" {
		logFile, err = os.OpenFile(settings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("log file: %v", err)
		}
		log.SetOutput(io.MultiWriter(os.Stderr, logFile))
	}

	code := run(settings)
	if logFile != nil {
		logFile.Close()
	}
	os.Exit(code)
}

type flagValues struct {
	port, timezone, metrics, replay string
	baud                            int
	showLog, debug                  bool
	interval                        time.Duration
}

// applyFlags copies the flags given on the command line over the file settings.
func applyFlags(s *Settings, given map[string]bool, v flagValues) {
	if given["port"] {
		s.Port = v.port
	}
	if given["baud"] {
		s.Baud = v.baud
	}
	if given["timezone"] {
		s.Timezone = v.timezone
	}
	if given["log"] {
		s.ShowLog = v.showLog
	}
	if given["interval"] {
		s.Interval = v.interval
	}
	if given["metrics"] {
		s.MetricsAddr = v.metrics
	}
	if given["replay"] {
		s.Replay = v.replay
	}
	if given["debug"] {
		s.DEBUG = v.debug
	}
	// a file given as port is played back
	if s.Port != "" && s.Replay == "" && !common.IsSerialDeviceName(s.Port) {
		if _, err := os.Stat(s.Port); err == nil {
			s.Replay, s.Port = s.Port, ""
		}
	}
}

func newWorker(s Settings) *gps.Worker {
	zone, _ := parseZone(s.Timezone)
	cfg := gps.Config{
		ReadTimeout:    s.ReadTimeout,
		SilenceTimeout: s.SilenceTimeout,
		Zone:           zone,
		Debug:          s.DEBUG,
		Open:           gps.OpenSerial,
	}
	if s.Replay != "" {
		cfg.Open = gps.OpenReplay
	} else if gps.IsNetworkAddress(s.Port) {
		cfg.Open = gps.OpenNetwork
	}
	return gps.NewWorker(cfg)
}

func run(s Settings) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	worker := newWorker(s)
	if s.MetricsAddr != "" {
		srv := startMetricsServer(s.MetricsAddr, worker)
		defer srv.Close()
	}

	monitor := newGPSMonitor(worker, os.Stdout, s)
	events, unsubscribe := worker.Subscribe(gps.DEFAULT_SUBSCRIBER_BUFFER)
	defer unsubscribe()

	log.Printf("gpsmon starting")
	if err := worker.Start(monitor.port, s.Baud); err != nil {
		log.Printf("%s", err)
		if ports := gps.CandidatePorts(); len(ports) > 0 && !common.StringInSlice(monitor.port, ports) {
			log.Printf("available ports: %s", strings.Join(ports, ", "))
		}
		return 1
	}

	err := monitor.run(events, ctx.Done())
	worker.Stop()
	if err != nil {
		log.Printf("%s", err)
		return 1
	}
	log.Printf("gpsmon stopped")
	return 0
}
