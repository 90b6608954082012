package nmea

import "strings"

// Constellation is the satellite system a GSV sentence reports on, taken from its talker ID.
type Constellation string

const (
	ConstellationUnknown Constellation = Unknown
	ConstellationGPS     Constellation = "GPS"
	ConstellationGLONASS Constellation = "GLONASS"
	ConstellationBeiDou  Constellation = "BeiDou"
)

// Talkers tagged with a constellation. Everything else (GA, GQ, BD, ...) is unknown.
var gsvTalkers = map[string]Constellation{
	"$GPGSV": ConstellationGPS,
	"$GLGSV": ConstellationGLONASS,
	"$GBGSV": ConstellationBeiDou,
}

func ConstellationOf(line string) Constellation {
	for prefix, c := range gsvTalkers {
		if strings.HasPrefix(line, prefix) {
			return c
		}
	}
	return ConstellationUnknown
}
