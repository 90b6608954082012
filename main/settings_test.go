package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gpsmon.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSettings(t *testing.T) {
	path := writeSettings(t, `
port: /dev/ttyUSB0
baud: 115200
timezone: Asia/Shanghai
show_log: true
interval: 2s
metrics_addr: ":9100"
`)
	s, err := loadSettings(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if s.Port != "/dev/ttyUSB0" || s.Baud != 115200 || !s.ShowLog || s.Interval != 2*time.Second || s.MetricsAddr != ":9100" {
		t.Fatalf("unexpected %+v", s)
	}
	if s.ReadTimeout != time.Second || s.SilenceTimeout != 5*time.Second {
		t.Fatalf("defaults not applied: %+v", s)
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := loadSettings("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Baud != 9600 || s.Interval != time.Second {
		t.Fatalf("unexpected %+v", s)
	}
	if err := s.validate(); err == nil || !strings.Contains(err.Error(), "port or replay") {
		t.Fatalf("expected missing port error, got %v", err)
	}
}

func TestLoadSettings_Errors(t *testing.T) {
	if _, err := loadSettings(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := loadSettings(writeSettings(t, "baud: [1, 2")); err == nil {
		t.Fatalf("expected yaml error")
	}

	tests := []struct {
		name string
		s    Settings
	}{
		{"baud", Settings{Port: "/dev/ttyUSB0", Baud: 1200}},
		{"both sources", Settings{Port: "/dev/ttyUSB0", Replay: "capture.nmea"}},
		{"timezone", Settings{Port: "/dev/ttyUSB0", Timezone: "Mars/Olympus"}},
		{"offset", Settings{Port: "/dev/ttyUSB0", Timezone: "UTC+8:75"}},
	}
	for _, tt := range tests {
		if err := tt.s.validate(); err == nil {
			t.Fatalf("%s: expected validation error", tt.name)
		}
	}
}

func TestParseZone(t *testing.T) {
	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		offset int
	}{
		{"", 8 * 3600},
		{"UTC", 0},
		{"UTC+8", 8 * 3600},
		{"utc-3:30", -(3*3600 + 30*60)},
		{"Asia/Shanghai", 8 * 3600},
	}
	for _, tt := range tests {
		loc, err := parseZone(tt.name)
		if err != nil {
			t.Fatalf("parseZone(%q): %v", tt.name, err)
		}
		if _, off := ref.In(loc).Zone(); off != tt.offset {
			t.Fatalf("parseZone(%q) offset %d, want %d", tt.name, off, tt.offset)
		}
	}
}

func TestParseZone_RejectsBadOffsets(t *testing.T) {
	for _, name := range []string{"UTC+-3", "UTC-+3", "UTC+15", "UTC+", "UTC+3:60", "UTC+3:-5", "UTC+3:+5"} {
		if _, err := parseZone(name); err == nil {
			t.Fatalf("parseZone(%q) accepted", name)
		}
	}
}

func TestApplyFlags(t *testing.T) {
	s := Settings{Port: "/dev/ttyUSB0", Baud: 9600, ShowLog: true}
	applyFlags(&s, map[string]bool{"baud": true, "log": true}, flagValues{baud: 38400, port: "ignored"})
	if s.Port != "/dev/ttyUSB0" || s.Baud != 38400 || s.ShowLog {
		t.Fatalf("unexpected %+v", s)
	}

	capture := filepath.Join(t.TempDir(), "capture.nmea")
	if err := os.WriteFile(capture, nil, 0644); err != nil {
		t.Fatal(err)
	}
	s = Settings{}
	applyFlags(&s, map[string]bool{"port": true}, flagValues{port: capture})
	if s.Port != "" || s.Replay != capture {
		t.Fatalf("file port not turned into replay: %+v", s)
	}
}
