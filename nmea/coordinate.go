package nmea

import (
	"fmt"
	"log"
	"strconv"
)

const (
	latitudeDegreeDigits  = 2 // ddmm.mmmm
	longitudeDegreeDigits = 3 // dddmm.mmmm
)

// FormatLatitude turns "4807.038","N" into "48°7.038′". South is negative.
func FormatLatitude(raw, hemisphere string) (string, error) {
	return formatCoordinate(raw, hemisphere, latitudeDegreeDigits, "S")
}

// FormatLongitude turns "01131.000","E" into "11°31.000′". West is negative.
func FormatLongitude(raw, hemisphere string) (string, error) {
	return formatCoordinate(raw, hemisphere, longitudeDegreeDigits, "W")
}

// ConvertLatitude is FormatLatitude that degrades to Unknown on bad input.
func ConvertLatitude(raw, hemisphere string) string {
	s, err := FormatLatitude(raw, hemisphere)
	if err != nil {
		log.Printf("nmea: latitude conversion failed: %s\n", err)
		return Unknown
	}
	return s
}

// ConvertLongitude is FormatLongitude that degrades to Unknown on bad input.
func ConvertLongitude(raw, hemisphere string) string {
	s, err := FormatLongitude(raw, hemisphere)
	if err != nil {
		log.Printf("nmea: longitude conversion failed: %s\n", err)
		return Unknown
	}
	return s
}

func formatCoordinate(raw, hemisphere string, degreeDigits int, negative string) (string, error) {
	if len(raw) < degreeDigits {
		return "", fmt.Errorf("coordinate %q has less than %d degree digits", raw, degreeDigits)
	}
	degrees, err := strconv.Atoi(raw[:degreeDigits])
	if err != nil {
		return "", fmt.Errorf("coordinate %q: degrees: %w", raw, err)
	}
	minutes, err := strconv.ParseFloat(raw[degreeDigits:], 64)
	if err != nil {
		return "", fmt.Errorf("coordinate %q: minutes: %w", raw, err)
	}

	s := fmt.Sprintf("%d°%.3f′", degrees, minutes)
	if hemisphere == negative {
		s = "-" + s
	}
	return s, nil
}
