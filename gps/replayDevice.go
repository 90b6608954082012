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

	"github.com/tevino/abool/v2"
	"go.uber.org/ratelimit"
)

// A sentence with its line ending is about 70 characters, 10 bits per character on the wire.
const bitsPerSentence = 700

var ErrEndOfReplay = errors.New("end of replay file")

type replayConnection struct {
	name   string
	file   io.ReadCloser
	reader *bufio.Reader
	rl     ratelimit.Limiter
	open   *abool.AtomicBool
}

// ReplayRate is the number of sentences per second a receiver at baud delivers.
func ReplayRate(baud int) int {
	rate := baud / bitsPerSentence
	if rate < 1 {
		return 1
	}
	return rate
}

// OpenReplay plays back a recorded NMEA log as if it was read from a serial
// port at baud. The end of the file is reported as a read error, like a
// receiver that was unplugged.
func OpenReplay(path string, baud int, timeout time.Duration) (Connection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	log.Printf("Replaying %s at %d sentences/s\n", path, ReplayRate(baud))
	return newReplayConnection(path, f, ratelimit.New(ReplayRate(baud))), nil
}

func newReplayConnection(name string, r io.ReadCloser, rl ratelimit.Limiter) *replayConnection {
	return &replayConnection{
		name:   name,
		file:   r,
		reader: bufio.NewReader(r),
		rl:     rl,
		open:   abool.NewBool(true),
	}
}

func (r *replayConnection) ReadLine() ([]byte, error) {
	if !r.open.IsSet() {
		return nil, errPortClosed
	}
	r.rl.Take()

	line, err := r.reader.ReadBytes('\n')
	if err != nil {
		if len(line) > 0 && errors.Is(err, io.EOF) {
			return bytes.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", r.name, ErrEndOfReplay)
		}
		if !r.open.IsSet() {
			return nil, errPortClosed
		}
		return nil, fmt.Errorf("%s: %w", r.name, err)
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

func (r *replayConnection) IsOpen() bool {
	return r.open.IsSet()
}

func (r *replayConnection) Close() error {
	if !r.open.SetToIf(true, false) {
		return nil
	}
	return r.file.Close()
}
