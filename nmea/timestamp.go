package nmea

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/b3nn0/gpsmon/common"
)

const (
	TimeOfDayLayout = "15:04:05"
	FullTimeLayout  = "2006-01-02 15:04:05-0700"

	dateTimeLayout = "020106150405" // DDMMYY + HHMMSS
)

// TimestampError means the date and time fields of a sentence do not form a
// valid calendar timestamp. The whole sentence is dropped.
type TimestampError struct {
	Sentence string
	Date     string
	Time     string
	Err      error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("nmea: %s: invalid timestamp date=%q time=%q: %v", e.Sentence, e.Date, e.Time, e.Err)
}

func (e *TimestampError) Unwrap() error {
	return e.Err
}

// DefaultZone is UTC+8, the civil time the monitor displays unless configured otherwise.
func DefaultZone() *time.Location {
	return time.FixedZone(common.DEFAULT_ZONE_NAME, common.DEFAULT_UTC_OFFSET)
}

// TimeNormalizer interprets sentence times as UTC and renders them in Zone.
// Now supplies the civil date for sentences that carry none (GGA); it defaults
// to time.Now.
type TimeNormalizer struct {
	Zone *time.Location
	Now  func() time.Time
}

// RMCTime is the normalized time information of one RMC sentence.
type RMCTime struct {
	TimeOfDay string    // "HH:MM:SS" in the target zone
	Date      string    // raw date colon joined "DD:MM:YY"
	Full      string    // FullTimeLayout in the target zone
	Timestamp time.Time // in the target zone
}

func (n TimeNormalizer) zone() *time.Location {
	if n.Zone == nil {
		return DefaultZone()
	}
	return n.Zone
}

func (n TimeNormalizer) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

// RMC combines the DDMMYY date field with the HHMMSS prefix of the time field.
// The date is displayed as received, only the time of day is zone shifted.
func (n TimeNormalizer) RMC(date, timeField string) (RMCTime, error) {
	ts, err := n.parseUTC(date, timeField)
	if err != nil {
		return RMCTime{}, &TimestampError{Sentence: "RMC", Date: date, Time: timeField, Err: err}
	}
	local := ts.In(n.zone())
	return RMCTime{
		TimeOfDay: local.Format(TimeOfDayLayout),
		Date:      date[0:2] + ":" + date[2:4] + ":" + date[4:6],
		Full:      local.Format(FullTimeLayout),
		Timestamp: local,
	}, nil
}

// GGA combines today's date (GGA has no date field) with the time field,
// including a fractional seconds suffix, and formats the full timestamp.
func (n TimeNormalizer) GGA(timeField string) (string, time.Time, error) {
	date := n.now().Format("020106")
	ts, err := n.parseUTC(date, timeField)
	if err != nil {
		return "", time.Time{}, &TimestampError{Sentence: "GGA", Date: date, Time: timeField, Err: err}
	}
	if i := strings.IndexByte(timeField, '.'); i >= 0 {
		frac := timeField[i+1:]
		if j := strings.IndexByte(frac, '.'); j >= 0 {
			frac = frac[:j]
		}
		f, err := strconv.ParseFloat("0."+frac, 64)
		if err != nil {
			return "", time.Time{}, &TimestampError{Sentence: "GGA", Date: date, Time: timeField, Err: err}
		}
		micros := int(f * 1e6)
		ts = ts.Add(time.Duration(micros) * time.Microsecond)
	}
	local := ts.In(n.zone())
	return local.Format(FullTimeLayout), local, nil
}

func (n TimeNormalizer) parseUTC(date, timeField string) (time.Time, error) {
	if len(date) != 6 || !isDigits(date) {
		return time.Time{}, fmt.Errorf("date must be DDMMYY")
	}
	if len(timeField) < 6 || !isDigits(timeField[:6]) {
		return time.Time{}, fmt.Errorf("time must start with HHMMSS")
	}
	return time.ParseInLocation(dateTimeLayout, date+timeField[:6], time.UTC)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
