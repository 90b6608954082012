/*
	Copyright (c) 2022 R. van Twisk
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	worker.go: Background reader that turns a NMEA stream into the latest fix.
*/

package gps

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/b3nn0/gpsmon/common"
	"github.com/b3nn0/gpsmon/nmea"
	"github.com/looplab/fsm"
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateStopped State = "stopped"
	StateFaulted State = "faulted"
)

const (
	startEvent = "start"
	stopEvent  = "stop"
	faultEvent = "fault"
)

var (
	ErrAlreadyRunning  = errors.New("worker already running")
	ErrUnsupportedBaud = errors.New("unsupported baud rate")
)

type Config struct {
	ReadTimeout    time.Duration // Bound of a single read, 1s when zero
	SilenceTimeout time.Duration // Report silence after this long, 5s when zero, disabled when negative
	Zone           *time.Location
	Debug          bool
	Open           Opener // OpenSerial when nil
}

// session is everything that belongs to one Start.
type session struct {
	port  string
	baud  int
	conn  Connection
	store *FixStore
	wd    *common.WatchDog // nil when silence reporting is disabled
	done  chan struct{}
}

// Worker reads sentences from one connection at a time on a background
// goroutine and keeps the latest fix. All methods are safe for concurrent use.
type Worker struct {
	DEBUG   bool
	cfg     Config
	decoder *nmea.Decoder
	hub     *eventHub
	eh      *common.ExitHelper
	fsm     *fsm.FSM

	mu sync.Mutex   // serializes Start and Stop
	sm sync.RWMutex // guards s
	s  *session
}

func NewWorker(cfg Config) *Worker {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = common.DEFAULT_READ_TIMEOUT
	}
	if cfg.SilenceTimeout == 0 {
		cfg.SilenceTimeout = common.DEFAULT_SILENCE_TIME
	}
	if cfg.Zone == nil {
		cfg.Zone = nmea.DefaultZone()
	}
	if cfg.Open == nil {
		cfg.Open = OpenSerial
	}

	w := &Worker{
		DEBUG: cfg.Debug,
		cfg:   cfg,
		hub:   newEventHub(cfg.Debug),
		eh:    common.NewExitHelper(),
	}
	w.decoder = nmea.NewDecoder(cfg.Zone)
	w.decoder.FieldError = w.fieldError

	w.fsm = fsm.NewFSM(
		string(StateIdle),
		fsm.Events{
			{Name: startEvent, Src: []string{string(StateIdle), string(StateStopped), string(StateFaulted)}, Dst: string(StateRunning)},
			{Name: faultEvent, Src: []string{string(StateRunning)}, Dst: string(StateFaulted)},
			{Name: stopEvent, Src: []string{string(StateIdle), string(StateRunning), string(StateFaulted)}, Dst: string(StateStopped)},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) {
				if w.DEBUG {
					log.Printf("worker state %s -> %s\n", e.Src, e.Dst)
				}
			},
		},
	)
	return w
}

func (w *Worker) session() *session {
	w.sm.RLock()
	defer w.sm.RUnlock()
	return w.s
}

// Start opens port at baud and starts reading. It fails with
// ErrAlreadyRunning while a session is active and with a *ConnectionError
// when the port cannot be used.
func (w *Worker) Start(port string, baud int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.State() == StateRunning {
		return ErrAlreadyRunning
	}
	if prev := w.session(); prev != nil {
		<-prev.done
	}

	if !common.IsSupportedBaudRate(baud) {
		return w.openFailed(&ConnectionError{Port: port, Baud: baud, Err: ErrUnsupportedBaud})
	}
	conn, err := w.cfg.Open(port, baud, w.cfg.ReadTimeout)
	if err != nil {
		return w.openFailed(&ConnectionError{Port: port, Baud: baud, Err: err})
	}

	s := &session{
		port:  port,
		baud:  baud,
		conn:  conn,
		store: NewFixStore(),
		done:  make(chan struct{}),
	}
	if w.cfg.SilenceTimeout > 0 {
		s.wd = common.NewWatchDog(w.cfg.SilenceTimeout)
	}
	w.sm.Lock()
	w.s = s
	w.sm.Unlock()

	if err := w.fsm.Event(startEvent); err != nil {
		conn.Close()
		return err
	}
	w.hub.status(fmt.Sprintf("connected to %s at %d baud", port, baud))

	quit := w.eh.Chan()
	w.eh.Add()
	go w.run(s)
	if s.wd != nil {
		w.eh.Add()
		go w.watchSilence(s, quit)
	}
	return nil
}

func (w *Worker) openFailed(err *ConnectionError) error {
	log.Printf("%s\n", err)
	w.hub.status(fmt.Sprintf("failed to open %s: %v", err.Port, err.Err))
	return err
}

// Stop ends the running session and waits for the reader to exit, which takes
// at most one read timeout. Calling it more than once, or without a session, is harmless.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	wasRunning := w.State() == StateRunning
	// fails when already stopped
	if err := w.fsm.Event(stopEvent); err != nil && w.DEBUG {
		log.Printf("worker stop: %s\n", err)
	}

	s := w.session()
	w.eh.ExitWith(func() {
		if s != nil {
			s.conn.Close()
		}
	})
	if wasRunning {
		w.hub.status("serial port closed by user")
	}
}

// fault ends the session after a connection loss. It loses against a
// concurrent Stop, in which case nothing is reported.
func (w *Worker) fault(s *session, reason string) {
	if err := w.fsm.Event(faultEvent); err != nil {
		return
	}
	s.conn.Close()
	sessionFaultsTotal.Inc()
	log.Printf("%s %s\n", s.port, reason)
	w.hub.status(reason)
}

func (w *Worker) run(s *session) {
	defer w.eh.Done()
	defer close(s.done)

	i := 0
	for {
		if w.eh.IsExit() {
			return
		}
		if !s.conn.IsOpen() {
			w.fault(s, "serial port closed")
			return
		}

		raw, err := s.conn.ReadLine()
		if err != nil {
			if w.eh.IsExit() {
				return
			}
			w.fault(s, fmt.Sprintf("read error: %s", err))
			return
		}
		if len(raw) == 0 {
			continue
		}
		line := common.SanitizeNMEALine(raw)
		if line == "" {
			continue
		}

		if s.wd != nil {
			s.wd.Poke()
		}
		i++
		if w.DEBUG && i%100 == 0 {
			log.Printf("reader loop iteration i=%d\n", i)
		}
		linesReadTotal.Inc()
		w.process(s, line)
		w.hub.line(line)
	}
}

func (w *Worker) watchSilence(s *session, quit <-chan struct{}) {
	defer w.eh.Done()
	wd := s.wd
	defer wd.Stop()

	wd.Poke()
	for {
		select {
		case <-quit:
			return
		case <-s.done:
			return
		case <-wd.C:
			if wd.IsTriggered() {
				w.hub.status(fmt.Sprintf("no data received for %s", wd.Timeout()))
			}
		}
	}
}

func (w *Worker) process(s *session, line string) {
	defer observeDecodeLatency(time.Now())

	t := nmea.Classify(line)
	var err error
	switch t {
	case nmea.TypeRMC:
		var r nmea.RMC
		if r, err = w.decoder.DecodeRMC(line); err == nil {
			s.store.Update(rmcUpdate(r))
		}
	case nmea.TypeGGA:
		var g nmea.GGA
		if g, err = w.decoder.DecodeGGA(line); err == nil {
			s.store.Update(ggaUpdate(g))
		}
	case nmea.TypeGSV:
		var g nmea.GSV
		if g, err = nmea.DecodeGSV(line); err == nil {
			w.satellitesInView(g)
		}
	default:
		err = nmea.ErrNoData
	}

	switch {
	case err == nil:
		sentencesDecodedTotal.WithLabelValues(t.String()).Inc()
	case errors.Is(err, nmea.ErrNoData):
		sentencesSkippedTotal.WithLabelValues(t.String()).Inc()
	default:
		decodeErrorsTotal.WithLabelValues(t.String()).Inc()
		log.Printf("dropped %s sentence: %s\n", t, err)
	}
}

// Only the first message of a GSV group is used, all of them repeat the count.
func (w *Worker) satellitesInView(g nmea.GSV) {
	if g.MessageIndex != "1" {
		return
	}
	n, err := strconv.Atoi(g.SatellitesInView)
	if err != nil {
		return
	}
	satellitesInView.WithLabelValues(string(g.Constellation)).Set(float64(n))
	if w.DEBUG {
		log.Printf("%s satellites in view: %d\n", g.Constellation, n)
	}
}

func (w *Worker) fieldError(t nmea.SentenceType, field string, err error) {
	fieldParseFailuresTotal.WithLabelValues(field).Inc()
	log.Printf("%s %s: %s\n", t, field, err)
}

// Subscribe registers a consumer of line and status events, see eventHub.Subscribe.
func (w *Worker) Subscribe(buffer int) (<-chan Event, func()) {
	return w.hub.Subscribe(buffer)
}

// Snapshot returns a copy of the latest fix of the current or last session.
func (w *Worker) Snapshot() Fix {
	if s := w.session(); s != nil {
		return s.store.Snapshot()
	}
	return NewFix()
}

func (w *Worker) State() State {
	return State(w.fsm.Current())
}

// IsOpen reports whether the connection of the current session is open.
func (w *Worker) IsOpen() bool {
	if s := w.session(); s != nil {
		return s.conn.IsOpen()
	}
	return false
}

// Done is closed when the reader of the current session has exited.
func (w *Worker) Done() <-chan struct{} {
	if s := w.session(); s != nil {
		return s.done
	}
	c := make(chan struct{})
	close(c)
	return c
}
