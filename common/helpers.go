package common

import "strings"

func StringInSlice(a string, list []string) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}
	return false
}

func IntInSlice(a int, list []int) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}
	return false
}

func IsSupportedBaudRate(baud int) bool {
	return IntInSlice(baud, SUPPORTED_BAUD_RATES)
}

// IsSerialDeviceName reports whether name looks like a serial device rather than a file
func IsSerialDeviceName(name string) bool {
	return strings.HasPrefix(name, "/dev/") || strings.HasPrefix(strings.ToUpper(name), "COM")
}
