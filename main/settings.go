package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/b3nn0/gpsmon/common"
	"github.com/b3nn0/gpsmon/nmea"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	Port           string        `yaml:"port"`
	Baud           int           `yaml:"baud"`
	Replay         string        `yaml:"replay"` // NMEA log played back instead of Port
	Timezone       string        `yaml:"timezone"`
	ShowLog        bool          `yaml:"show_log"`
	Interval       time.Duration `yaml:"interval"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	SilenceTimeout time.Duration `yaml:"silence_timeout"`
	MetricsAddr    string        `yaml:"metrics_addr"`
	LogFile        string        `yaml:"log_file"`
	DEBUG          bool          `yaml:"debug"`
}

func defaultSettings() Settings {
	return Settings{
		Baud:           common.DEFAULT_BAUD_RATE,
		Interval:       time.Second,
		ReadTimeout:    common.DEFAULT_READ_TIMEOUT,
		SilenceTimeout: common.DEFAULT_SILENCE_TIME,
	}
}

// loadSettings reads the YAML file at path on top of the defaults. An empty
// path gives the defaults.
func loadSettings(path string) (Settings, error) {
	s := defaultSettings()
	if path == "" {
		return s, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Settings) validate() error {
	if s.Baud == 0 {
		s.Baud = common.DEFAULT_BAUD_RATE
	}
	if !common.IsSupportedBaudRate(s.Baud) {
		return fmt.Errorf("baud %d is not one of %v", s.Baud, common.SUPPORTED_BAUD_RATES)
	}
	if s.Interval <= 0 {
		s.Interval = time.Second
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = common.DEFAULT_READ_TIMEOUT
	}
	if s.Port == "" && s.Replay == "" {
		return errors.New("port or replay is required")
	}
	if s.Port != "" && s.Replay != "" {
		return errors.New("port and replay cannot both be set")
	}
	if _, err := parseZone(s.Timezone); err != nil {
		return err
	}
	return nil
}

// parseZone accepts "", an IANA name like "Asia/Shanghai" or a fixed offset
// like "UTC+8", "UTC-03:30" or "UTC".
func parseZone(name string) (*time.Location, error) {
	if name == "" {
		return nmea.DefaultZone(), nil
	}
	upper := strings.ToUpper(name)
	if upper == "UTC" || upper == "GMT" {
		return time.UTC, nil
	}
	if strings.HasPrefix(upper, "UTC") && len(upper) > 3 && (upper[3] == '+' || upper[3] == '-') {
		offset, err := parseOffset(upper[4:])
		if err != nil {
			return nil, fmt.Errorf("timezone %q: %w", name, err)
		}
		if upper[3] == '-' {
			offset = -offset
		}
		return time.FixedZone(name, offset), nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", name, err)
	}
	return loc, nil
}

func parseOffset(s string) (int, error) {
	hours, minutes := s, "0"
	if i := strings.IndexByte(s, ':'); i >= 0 {
		hours, minutes = s[:i], s[i+1:]
	}
	// the sign was already taken from the prefix
	if !unsigned(hours) || !unsigned(minutes) {
		return 0, fmt.Errorf("bad offset %q", s)
	}
	h, err := strconv.Atoi(hours)
	if err != nil || h < 0 || h > 14 {
		return 0, fmt.Errorf("bad hour offset %q", hours)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 || m >= 60 {
		return 0, fmt.Errorf("bad minute offset %q", minutes)
	}
	return h*3600 + m*60, nil
}

func unsigned(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}
