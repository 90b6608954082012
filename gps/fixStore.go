package gps

import (
	"sync"

	"github.com/b3nn0/gpsmon/nmea"
)

// Fix is the latest decoded position. Every field holds nmea.Unknown until a
// sentence carrying it has been decoded.
type Fix struct {
	Time       string `json:"time"`
	Date       string `json:"date"`
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
	Speed      string `json:"speed"`
	Course     string `json:"course"`
	Altitude   string `json:"altitude"`
	Satellites string `json:"satellites"`
}

func NewFix() Fix {
	return Fix{
		Time:       nmea.Unknown,
		Date:       nmea.Unknown,
		Latitude:   nmea.Unknown,
		Longitude:  nmea.Unknown,
		Speed:      nmea.Unknown,
		Course:     nmea.Unknown,
		Altitude:   nmea.Unknown,
		Satellites: nmea.Unknown,
	}
}

// Fields returns the fix keyed by the json names.
func (f Fix) Fields() map[string]string {
	return map[string]string{
		"time":       f.Time,
		"date":       f.Date,
		"latitude":   f.Latitude,
		"longitude":  f.Longitude,
		"speed":      f.Speed,
		"course":     f.Course,
		"altitude":   f.Altitude,
		"satellites": f.Satellites,
	}
}

// FixUpdate names the fields one sentence provides. Nil fields are left unchanged.
type FixUpdate struct {
	Time       *string
	Date       *string
	Latitude   *string
	Longitude  *string
	Speed      *string
	Course     *string
	Altitude   *string
	Satellites *string
}

func rmcUpdate(r nmea.RMC) FixUpdate {
	return FixUpdate{
		Time:      &r.Time,
		Date:      &r.Date,
		Latitude:  &r.Latitude,
		Longitude: &r.Longitude,
		Speed:     &r.Speed,
		Course:    &r.Course,
	}
}

// GGA position and time are decoded but RMC stays the source for them.
func ggaUpdate(g nmea.GGA) FixUpdate {
	return FixUpdate{
		Altitude:   &g.Altitude,
		Satellites: &g.Satellites,
	}
}

func (u FixUpdate) apply(f *Fix) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.Time, u.Time)
	set(&f.Date, u.Date)
	set(&f.Latitude, u.Latitude)
	set(&f.Longitude, u.Longitude)
	set(&f.Speed, u.Speed)
	set(&f.Course, u.Course)
	set(&f.Altitude, u.Altitude)
	set(&f.Satellites, u.Satellites)
}

// FixStore holds the fix shared between the reader goroutine and its consumers.
type FixStore struct {
	mu  sync.Mutex
	fix Fix
}

func NewFixStore() *FixStore {
	return &FixStore{fix: NewFix()}
}

func (s *FixStore) Update(u FixUpdate) {
	s.mu.Lock()
	u.apply(&s.fix)
	s.mu.Unlock()
}

func (s *FixStore) Snapshot() Fix {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fix
}
