/*
	Copyright (c) 2015-2016 Christopher Young
	Copyright (c) 2022 Refactored R. van Twisk
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	gps.go: Terminal monitor showing the worker's events and the latest fix.
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/b3nn0/gpsmon/gps"
	"github.com/b3nn0/gpsmon/nmea"
	"github.com/dustin/go-humanize"
)

var errSessionFaulted = errors.New("gps session faulted")

const KNOTS_TO_KMH = 1.852

// knotsToKmh converts a speed field in knots, anything unparsable counts as 0.
func knotsToKmh(speed string) float64 {
	knots, err := strconv.ParseFloat(speed, 64)
	if err != nil {
		return 0
	}
	return knots * KNOTS_TO_KMH
}

// withUnit appends unit to a known value and leaves "unknown" alone.
func withUnit(value, unit string) string {
	if value == nmea.Unknown {
		return value
	}
	return value + unit
}

func formatSpeed(fix gps.Fix) string {
	return fmt.Sprintf("%.2f km/h", knotsToKmh(fix.Speed))
}

// summary is the one line log form of a fix after an RMC or GGA sentence, "" for anything else.
func summary(line string, fix gps.Fix) string {
	switch nmea.Classify(line) {
	case nmea.TypeRMC:
		return fmt.Sprintf("Time: %s Date: %s Longitude: %s Latitude: %s Speed: %s Course: %s",
			fix.Time, fix.Date, fix.Longitude, fix.Latitude, formatSpeed(fix), withUnit(fix.Course, "°"))
	case nmea.TypeGGA:
		return fmt.Sprintf("GGA -> Time: %s Latitude: %s Longitude: %s Satellites: %s Altitude: %s",
			fix.Time, fix.Latitude, fix.Longitude, fix.Satellites, withUnit(fix.Altitude, "m"))
	}
	return ""
}

// gpsMonitor prints what a worker reports. It only reads from the worker.
type gpsMonitor struct {
	worker   *gps.Worker
	out      io.Writer
	port     string
	baud     int
	showLog  bool
	interval time.Duration

	status   string
	lines    int64
	lastLine time.Time
}

func newGPSMonitor(w *gps.Worker, out io.Writer, s Settings) *gpsMonitor {
	port := s.Port
	if s.Replay != "" {
		port = s.Replay
	}
	return &gpsMonitor{
		worker:   w,
		out:      out,
		port:     port,
		baud:     s.Baud,
		showLog:  s.ShowLog,
		interval: s.Interval,
		status:   "not connected",
	}
}

func (m *gpsMonitor) handleEvent(e gps.Event) {
	switch e.Kind {
	case gps.EventLine:
		m.lines++
		m.lastLine = e.Time
		if m.showLog {
			text := summary(e.Text, m.worker.Snapshot())
			if text == "" {
				text = e.Text
			}
			fmt.Fprintf(m.out, "%s %s\n", e.Time.Format("15:04:05.000"), text)
		}
	case gps.EventStatus:
		m.status = e.Text
		fmt.Fprintf(m.out, "%s * %s\n", e.Time.Format("15:04:05.000"), e.Text)
	}
}

func (m *gpsMonitor) lastLineText() string {
	if m.lastLine.IsZero() {
		return "never"
	}
	return humanize.Time(m.lastLine)
}

// printSnapshot writes the connection state and the fix as a two column table.
func (m *gpsMonitor) printSnapshot() {
	fix := m.worker.Snapshot()
	connection := "closed"
	if m.worker.IsOpen() {
		connection = "open"
	}

	tw := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"Connection", fmt.Sprintf("%s (%s)", connection, m.worker.State())},
		{"Status", m.status},
		{"Port", m.port},
		{"Baud", strconv.Itoa(m.baud)},
		{"Time", fix.Time},
		{"Date", fix.Date},
		{"Latitude", fix.Latitude},
		{"Longitude", fix.Longitude},
		{"Altitude", withUnit(fix.Altitude, "m")},
		{"Speed", formatSpeed(fix)},
		{"Course", withUnit(fix.Course, "°")},
		{"Satellites", fix.Satellites},
		{"Lines", fmt.Sprintf("%s, last %s", humanize.Comma(m.lines), m.lastLineText())},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	tw.Flush()
	fmt.Fprintln(m.out)
}

// run prints events and periodic snapshots until quit is closed or the
// worker session ends by itself, which is reported as errSessionFaulted.
func (m *gpsMonitor) run(events <-chan gps.Event, quit <-chan struct{}) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	done := m.worker.Done()

	for {
		select {
		case <-quit:
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			m.handleEvent(e)
		case <-ticker.C:
			m.printSnapshot()
		case <-done:
			// print what the worker published before it exited
		drain:
			for {
				select {
				case e, ok := <-events:
					if !ok {
						break drain
					}
					m.handleEvent(e)
				default:
					break drain
				}
			}
			m.printSnapshot()
			if m.worker.State() == gps.StateFaulted {
				return fmt.Errorf("%w: %s", errSessionFaulted, m.status)
			}
			return nil
		}
	}
}
