package common

import "time"

const (
	DEFAULT_BAUD_RATE    = 9600
	DEFAULT_READ_TIMEOUT = 1 * time.Second // Bounds every serial read so a stop request is seen quickly
	DEFAULT_SILENCE_TIME = 5 * time.Second // No line for this long is reported as a status event
	DEFAULT_UTC_OFFSET   = 8 * 60 * 60     // Target civil zone in seconds east of UTC (China Standard Time)
	DEFAULT_ZONE_NAME    = "CST"
)

// Baud rates offered by common GNSS receivers, 9600 being the NMEA-0183 default
var SUPPORTED_BAUD_RATES = []int{4800, 9600, 19200, 38400, 57600, 115200}
