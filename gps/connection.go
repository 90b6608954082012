// Package gps reads NMEA-0183 from serial, network or recorded sources and
// keeps the latest decoded fix.
package gps

import (
	"fmt"
	"time"
)

// Connection is a line oriented GNSS data source.
//
// ReadLine blocks for at most the read timeout given to the Opener. It returns
// (nil, nil) when no complete line arrived in time, and an error once the
// source is gone. The returned line excludes the terminating newline.
type Connection interface {
	ReadLine() ([]byte, error)
	IsOpen() bool
	Close() error
}

// Opener opens port at baud. timeout bounds every ReadLine.
type Opener func(port string, baud int, timeout time.Duration) (Connection, error)

// ConnectionError is returned by Worker.Start when the port cannot be opened.
type ConnectionError struct {
	Port string
	Baud int
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot open %s at %d baud: %v", e.Port, e.Baud, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
