package common

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestExitHelper_ExitWaitsAndResets(t *testing.T) {
	eh := NewExitHelper()
	var stopped int32
	for i := 0; i < 3; i++ {
		c := eh.Chan()
		eh.Add()
		go func() {
			defer eh.Done()
			<-c
			atomic.AddInt32(&stopped, 1)
		}()
	}

	released := false
	eh.ExitWith(func() {
		if !eh.IsExit() {
			t.Errorf("exit flag not raised before release")
		}
		released = true
	})
	if !released || atomic.LoadInt32(&stopped) != 3 {
		t.Fatalf("released=%t stopped=%d", released, stopped)
	}
	if eh.IsExit() {
		t.Fatalf("flag not reset after Exit")
	}
	select {
	case <-eh.Chan():
		t.Fatalf("channel of the next round already closed")
	default:
	}

	eh.Exit()
}

func TestWatchDog(t *testing.T) {
	wd := NewWatchDog(20 * time.Millisecond)
	select {
	case <-wd.C:
		t.Fatalf("disarmed watchdog fired")
	case <-time.After(50 * time.Millisecond):
	}

	wd.Poke()
	select {
	case <-wd.C:
	case <-time.After(time.Second):
		t.Fatalf("watchdog did not fire")
	}
	if !wd.IsTriggered() {
		t.Fatalf("not triggered")
	}

	wd.Poke()
	if wd.IsTriggered() {
		t.Fatalf("Poke did not clear the trigger")
	}
	wd.Stop()
	select {
	case <-wd.C:
		t.Fatalf("stopped watchdog fired")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSanitizeNMEALine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$GNRMC,1\r\n", "$GNRMC,1"},
		{"  $GPGGA,2 \n", "$GPGGA,2"},
		{"$GP\x00GSV\xff", "$GP�GSV�"},
		{"\r\n", ""},
	}
	for _, tt := range tests {
		if got := SanitizeNMEALine([]byte(tt.in)); got != tt.want {
			t.Fatalf("SanitizeNMEALine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAppendNmeaChecksum(t *testing.T) {
	got := AppendNmeaChecksum("$GPGLL,5057.970,N,00146.110,E,142451,A")
	if got != "$GPGLL,5057.970,N,00146.110,E,142451,A*27" {
		t.Fatalf("got %s", got)
	}
}

func TestBaudRatesAndDeviceNames(t *testing.T) {
	for _, b := range []int{4800, 9600, 19200, 38400, 57600, 115200} {
		if !IsSupportedBaudRate(b) {
			t.Fatalf("%d not supported", b)
		}
	}
	if IsSupportedBaudRate(1200) {
		t.Fatalf("1200 supported")
	}
	if !IsSerialDeviceName("/dev/ttyUSB0") || !IsSerialDeviceName("com3") || IsSerialDeviceName("capture.nmea") {
		t.Fatalf("device name detection")
	}
}
