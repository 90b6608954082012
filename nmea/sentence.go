/*
	Copyright (c) 2022 R. van Twisk
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	sentence.go: Sentence identification for the NMEA-0183 decoders.
*/

// Package nmea decodes the RMC, GGA and GSV sentences of NMEA-0183 into display
// ready strings. The functions are stateless; the only configuration is the
// target time zone held by TimeNormalizer.
package nmea

import (
	"errors"
	"strings"
)

// Unknown is the value of every field that has not been decoded (yet).
const Unknown = "unknown"

// ErrNoData is returned for sentences that are too short or not handled.
// It is expected noise on a live serial line, not a failure.
var ErrNoData = errors.New("nmea: no data")

type SentenceType int

const (
	TypeUnknown SentenceType = iota
	TypeRMC
	TypeGGA
	TypeGSV
)

func (t SentenceType) String() string {
	switch t {
	case TypeRMC:
		return "RMC"
	case TypeGGA:
		return "GGA"
	case TypeGSV:
		return "GSV"
	default:
		return "unknown"
	}
}

// Classify identifies a sentence from its "$ttSSS" header, tt being the talker
// (GP, GN, GL, GB, ...) and SSS the sentence type.
func Classify(line string) SentenceType {
	header := Header(line)
	if len(header) != 5 {
		return TypeUnknown
	}
	switch header[2:] {
	case "RMC":
		return TypeRMC
	case "GGA":
		return TypeGGA
	case "GSV":
		return TypeGSV
	}
	return TypeUnknown
}

// Header returns the address field of a sentence without the leading '$',
// e.g. "GNRMC", or "" when line is not a sentence.
func Header(line string) string {
	if !strings.HasPrefix(line, "$") {
		return ""
	}
	header := line[1:]
	if i := strings.IndexByte(header, ','); i >= 0 {
		header = header[:i]
	}
	if i := strings.IndexByte(header, '*'); i >= 0 {
		header = header[:i]
	}
	return header
}

func split(line string) []string {
	return strings.Split(line, ",")
}
