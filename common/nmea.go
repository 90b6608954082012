package common

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SanitizeNMEALine turns raw bytes read from a device into a trimmed line.
// Bytes outside printable 7-bit ASCII (line noise, wrong baud rate) are replaced
// with utf8.RuneError instead of failing the read.
func SanitizeNMEALine(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		if c == '\t' || (c >= 0x20 && c < 0x7F) {
			b.WriteByte(c)
			continue
		}
		if c == '\r' || c == '\n' {
			continue
		}
		b.WriteRune(utf8.RuneError)
	}
	return strings.TrimSpace(b.String())
}

// Append checksum to nmea string
func AppendNmeaChecksum(nmea string) string {
	start := 0
	if len(nmea) > 0 && nmea[0] == '$' {
		start = 1
	}
	checksum := byte(0x00)
	for i := start; i < len(nmea); i++ {
		checksum = checksum ^ byte(nmea[i])
	}
	return fmt.Sprintf("%s*%02X", nmea, checksum)
}
