/*
	Copyright (c) 2022 R. van Twisk
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	decoder.go: RMC, GGA and GSV sentence decoders.
*/
package nmea

import (
	"log"
	"time"
)

const (
	rmcMinFields = 12 // more than 11
	ggaMinFields = 10 // more than 9
	gsvMinFields = 4
)

// RMC - Recommended Minimum data
//
//	$GNRMC,083519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A
type RMC struct {
	Time      string // time of day in the target zone, "HH:MM:SS"
	Status    string // "valid" or "invalid"
	Valid     bool
	Latitude  string
	Longitude string
	Speed     string // knots, as received
	Course    string // degrees true, as received
	Date      string // "DD:MM:YY"
	FullTime  string // FullTimeLayout in the target zone
	Timestamp time.Time
}

// GGA - Global positioning system fix data
//
//	$GNGGA,083519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47
type GGA struct {
	Time       string // FullTimeLayout, date taken from the local clock
	Latitude   string
	Longitude  string
	FixQuality string
	Satellites string
	Altitude   string // meters MSL, as received
	Timestamp  time.Time
}

// GSV - GNSS satellites in view, one of MessageTotal messages.
type GSV struct {
	Constellation    Constellation
	MessageTotal     string
	MessageIndex     string
	SatellitesInView string
}

// Decoder turns single sentences into RMC, GGA or GSV values.
//
// A coordinate that cannot be parsed is replaced by Unknown and reported to
// FieldError; the rest of the sentence is still used. A bad timestamp drops the
// whole sentence with a *TimestampError. Short sentences give ErrNoData.
type Decoder struct {
	Time       TimeNormalizer
	FieldError func(sentence SentenceType, field string, err error)
}

func NewDecoder(zone *time.Location) *Decoder {
	return &Decoder{Time: TimeNormalizer{Zone: zone}}
}

func (d *Decoder) fieldError(t SentenceType, field string, err error) {
	if d.FieldError != nil {
		d.FieldError(t, field, err)
		return
	}
	log.Printf("nmea: %s %s: %s\n", t, field, err)
}

func (d *Decoder) latitude(t SentenceType, raw, hemisphere string) string {
	s, err := FormatLatitude(raw, hemisphere)
	if err != nil {
		d.fieldError(t, "latitude", err)
		return Unknown
	}
	return s
}

func (d *Decoder) longitude(t SentenceType, raw, hemisphere string) string {
	s, err := FormatLongitude(raw, hemisphere)
	if err != nil {
		d.fieldError(t, "longitude", err)
		return Unknown
	}
	return s
}

func (d *Decoder) DecodeRMC(line string) (RMC, error) {
	x := split(line)
	if len(x) < rmcMinFields {
		return RMC{}, ErrNoData
	}

	t, err := d.Time.RMC(x[9], x[1])
	if err != nil {
		return RMC{}, err
	}

	r := RMC{
		Time:      t.TimeOfDay,
		Status:    "invalid",
		Valid:     x[2] == "A",
		Latitude:  d.latitude(TypeRMC, x[3], x[4]),
		Longitude: d.longitude(TypeRMC, x[5], x[6]),
		Speed:     x[7],
		Course:    x[8],
		Date:      t.Date,
		FullTime:  t.Full,
		Timestamp: t.Timestamp,
	}
	if r.Valid {
		r.Status = "valid"
	}
	return r, nil
}

func (d *Decoder) DecodeGGA(line string) (GGA, error) {
	x := split(line)
	if len(x) < ggaMinFields {
		return GGA{}, ErrNoData
	}

	full, ts, err := d.Time.GGA(x[1])
	if err != nil {
		return GGA{}, err
	}

	return GGA{
		Time:       full,
		Latitude:   d.latitude(TypeGGA, x[2], x[3]),
		Longitude:  d.longitude(TypeGGA, x[4], x[5]),
		FixQuality: x[6],
		Satellites: x[7],
		Altitude:   x[9],
		Timestamp:  ts,
	}, nil
}

// DecodeGSV only reads the message header, the per satellite blocks are ignored.
func DecodeGSV(line string) (GSV, error) {
	x := split(line)
	if len(x) < gsvMinFields {
		return GSV{}, ErrNoData
	}
	return GSV{
		Constellation:    ConstellationOf(line),
		MessageTotal:     x[1],
		MessageIndex:     x[2],
		SatellitesInView: x[3],
	}, nil
}
