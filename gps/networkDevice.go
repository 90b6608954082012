package gps

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/tevino/abool/v2"
)

const NETWORK_PREFIX = "tcp://"

type networkConnection struct {
	addr    string
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
	pending []byte
	open    *abool.AtomicBool
}

// IsNetworkAddress reports whether port names a NMEA over TCP source, e.g. "tcp://192.168.1.1:2000".
func IsNetworkAddress(port string) bool {
	return strings.HasPrefix(port, NETWORK_PREFIX)
}

// OpenNetwork connects to a receiver or bridge that streams NMEA over TCP,
// for example a SoftRF or OGN tracker. baud is ignored.
func OpenNetwork(port string, baud int, timeout time.Duration) (Connection, error) {
	addr := strings.TrimPrefix(port, NETWORK_PREFIX)
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected network GPS device %s\n", c.RemoteAddr().String())
	return &networkConnection{
		addr:    addr,
		conn:    c,
		reader:  bufio.NewReader(c),
		timeout: timeout,
		open:    abool.NewBool(true),
	}, nil
}

func (n *networkConnection) ReadLine() ([]byte, error) {
	if !n.open.IsSet() {
		return nil, errPortClosed
	}
	if err := n.conn.SetReadDeadline(time.Now().Add(n.timeout)); err != nil {
		return nil, fmt.Errorf("%s: %w", n.addr, err)
	}

	chunk, err := n.reader.ReadBytes('\n')
	n.pending = append(n.pending, chunk...)
	if err == nil {
		line := bytes.TrimRight(n.pending, "\r\n")
		n.pending = nil
		return line, nil
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		if len(n.pending) > maxPendingBytes {
			n.pending = nil
		}
		return nil, nil
	}
	if !n.open.IsSet() {
		return nil, errPortClosed
	}
	return nil, fmt.Errorf("%s: %w", n.addr, err)
}

func (n *networkConnection) IsOpen() bool {
	return n.open.IsSet()
}

func (n *networkConnection) Close() error {
	if !n.open.SetToIf(true, false) {
		return nil
	}
	log.Printf("Disconnecting network GPS device : %s\n", n.addr)
	return n.conn.Close()
}
