/*
	Copyright (c) 2015-2016 Christopher Young,
	Copyright (c) 2022 Refactored R. van Twisk
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	serialGPSDevice.go: Serial port connection and port discovery.
*/

package gps

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/tarm/serial"
	"github.com/tevino/abool/v2"
)

// NMEA sentences are at most 82 characters, anything much longer without a
// newline is a wrong baud rate or a binary protocol.
const maxPendingBytes = 4096

var (
	errPortClosed  = errors.New("serial port closed")
	errReadTimeout = errors.New("read timeout")
)

type serialPort interface {
	io.ReadWriteCloser
}

// emptyReadFilter sits between the port and bufio. tarm/serial reports a
// read timeout as (0, io.EOF) on posix and as (0, nil) on windows. A tty that
// hung up also returns empty reads, but immediately. Slow empty reads become
// errReadTimeout, repeated quick ones or a vanished device node become
// errPortClosed.
type emptyReadFilter struct {
	name    string
	r       io.Reader
	timeout time.Duration
	now     func() time.Time
	exists  func(name string) bool
	quick   int
}

func (f *emptyReadFilter) Read(b []byte) (int, error) {
	start := f.now()
	n, err := f.r.Read(b)
	if n > 0 {
		f.quick = 0
		if errors.Is(err, io.EOF) {
			err = nil
		}
		return n, err
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}

	if !f.exists(f.name) {
		return 0, errPortClosed
	}
	if f.now().Sub(start) < f.timeout/2 {
		f.quick++
		if f.quick >= 2 {
			return 0, errPortClosed
		}
	} else {
		f.quick = 0
	}
	return 0, errReadTimeout
}

type serialConnection struct {
	name    string
	port    serialPort
	filter  *emptyReadFilter
	reader  *bufio.Reader
	pending []byte
	open    *abool.AtomicBool
}

// OpenSerial opens a serial device 8N1 at baud. Every read is bounded by timeout.
func OpenSerial(port string, baud int, timeout time.Duration) (Connection, error) {
	if _, err := os.Stat(port); err != nil {
		return nil, err
	}

	serialConfig := serial.Config{Name: port, Baud: baud, ReadTimeout: timeout}
	p, err := serial.OpenPort(&serialConfig)
	if err != nil {
		return nil, err
	}
	log.Printf("Opened serial port %s with baud %d", port, baud)
	return newSerialConnection(port, p, timeout), nil
}

func newSerialConnection(name string, p serialPort, timeout time.Duration) *serialConnection {
	filter := &emptyReadFilter{
		name:    name,
		r:       p,
		timeout: timeout,
		now:     time.Now,
		exists: func(name string) bool {
			_, err := os.Stat(name)
			return err == nil
		},
	}
	return &serialConnection{
		name:   name,
		port:   p,
		filter: filter,
		reader: bufio.NewReader(filter),
		open:   abool.NewBool(true),
	}
}

// ReadLine returns one line without its line ending. Bytes of a line that is
// cut by the read timeout are kept and completed by the next call. A hang up,
// e.g. an unplugged USB receiver, closes the connection.
func (s *serialConnection) ReadLine() ([]byte, error) {
	if !s.open.IsSet() {
		return nil, errPortClosed
	}

	chunk, err := s.reader.ReadBytes('\n')
	s.pending = append(s.pending, chunk...)
	switch {
	case err == nil:
		line := bytes.TrimRight(s.pending, "\r\n")
		s.pending = nil
		return line, nil
	case errors.Is(err, errReadTimeout):
		if !s.open.IsSet() {
			return nil, errPortClosed
		}
		if len(s.pending) > maxPendingBytes {
			log.Printf("serial %s: discarding %d bytes without line ending\n", s.name, len(s.pending))
			s.pending = nil
		}
		return nil, nil
	case errors.Is(err, errPortClosed):
		if s.open.IsSet() {
			log.Printf("serial %s: device hung up\n", s.name)
			s.Close()
		}
	}
	return nil, fmt.Errorf("%s: %w", s.name, err)
}

func (s *serialConnection) IsOpen() bool {
	return s.open.IsSet()
}

func (s *serialConnection) Close() error {
	if !s.open.SetToIf(true, false) {
		return nil
	}
	return s.port.Close()
}

// Device nodes GNSS receivers show up as, the udev names first.
func candidatePortNames() []string {
	all := []string{"/dev/ublox9", "/dev/ublox8", "/dev/ublox7", "/dev/ublox6", "/dev/softrf_dongle"}
	for i := 0; i < 2; i++ {
		all = append(all, fmt.Sprintf("/dev/prolific%d", i))
		all = append(all, fmt.Sprintf("/dev/serial%d", i))
	}
	for _, prefix := range []string{"ttyUSB", "ttyACM", "ttyAMA"} {
		for i := 0; i < 10; i++ {
			all = append(all, fmt.Sprintf("/dev/%s%d", prefix, i))
		}
	}
	return all
}

func existingPorts(names []string, exists func(string) bool) []string {
	found := make([]string, 0)
	for _, name := range names {
		if exists(name) {
			found = append(found, name)
		}
	}
	return found
}

// CandidatePorts lists serial devices present on this machine that may carry NMEA data.
func CandidatePorts() []string {
	return existingPorts(candidatePortNames(), func(name string) bool {
		_, err := os.Stat(name)
		return err == nil
	})
}
