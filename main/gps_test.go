package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/b3nn0/gpsmon/gps"
)

const capture = "$GNRMC,083519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A\r\n" +
	"$GNGGA,083519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47\r\n"

func TestMonitor_ReplayToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.nmea")
	if err := os.WriteFile(path, []byte(capture), 0644); err != nil {
		t.Fatal(err)
	}
	s := defaultSettings()
	s.Replay = path
	s.Baud = 115200
	s.ShowLog = true
	s.SilenceTimeout = -1
	if err := s.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	w := newWorker(s)
	var out bytes.Buffer
	m := newGPSMonitor(w, &out, s)
	events, unsubscribe := w.Subscribe(64)
	defer unsubscribe()

	if err := w.Start(m.port, s.Baud); err != nil {
		t.Fatalf("start: %v", err)
	}
	quit := make(chan struct{})
	result := make(chan error, 1)
	go func() { result <- m.run(events, quit) }()

	select {
	case err := <-result:
		if !errors.Is(err, errSessionFaulted) {
			t.Fatalf("expected errSessionFaulted, got %v", err)
		}
	case <-time.After(5 * time.Second):
		close(quit)
		t.Fatalf("monitor did not finish")
	}
	w.Stop()

	text := out.String()
	for _, want := range []string{
		"connected to " + path + " at 115200 baud",
		"Time: 16:35:19 Date: 23:03:94 Longitude: 11°31.000′ Latitude: 48°7.038′ Speed: 41.48 km/h Course: 084.4°",
		"GGA -> Time: ",
		" Satellites: 08 Altitude: 545.4m",
		"Latitude:    48°7.038′",
		"Longitude:   11°31.000′",
		"Altitude:    545.4m",
		"Speed:       41.48 km/h",
		"Course:      084.4°",
		"Satellites:  08",
		"Time:        16:35:19",
		"end of replay file",
		"Lines:       2, last",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output misses %q:\n%s", want, text)
		}
	}
}

func TestMonitor_QuitStopsRun(t *testing.T) {
	s := defaultSettings()
	s.Port = "/dev/ttyUSB0"
	w := gps.NewWorker(gps.Config{})
	m := newGPSMonitor(w, &bytes.Buffer{}, s)

	quit := make(chan struct{})
	close(quit)
	events := make(chan gps.Event)
	if err := m.run(events, quit); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestKnotsToKmh(t *testing.T) {
	tests := []struct {
		speed string
		want  string
	}{
		{"022.4", "41.48"},
		{"0", "0.00"},
		{"1", "1.85"},
		{"unknown", "0.00"},
		{"", "0.00"},
		{"12,5", "0.00"},
	}
	for _, tt := range tests {
		if got := fmt.Sprintf("%.2f", knotsToKmh(tt.speed)); got != tt.want {
			t.Fatalf("knotsToKmh(%q) = %s, want %s", tt.speed, got, tt.want)
		}
	}
}

func TestSummary(t *testing.T) {
	fix := gps.NewFix()
	if got := summary("$GPGSV,3,1,11", fix); got != "" {
		t.Fatalf("GSV summary %q", got)
	}
	got := summary("$GPRMC,1", fix)
	want := "Time: unknown Date: unknown Longitude: unknown Latitude: unknown Speed: 0.00 km/h Course: unknown"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	fix.Altitude, fix.Satellites = "12.0", "05"
	got = summary("$GNGGA,1", fix)
	want = "GGA -> Time: unknown Latitude: unknown Longitude: unknown Satellites: 05 Altitude: 12.0m"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMetricsHandler(t *testing.T) {
	h := metricsHandler(gps.NewWorker(gps.Config{}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "idle" {
		t.Fatalf("healthz %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "gpsmon_lines_read_total") {
		t.Fatalf("metrics %d", rec.Code)
	}
}
