package gps

import (
	"sync"
	"testing"

	"github.com/b3nn0/gpsmon/nmea"
)

func strp(s string) *string {
	return &s
}

func TestFixStore_StartsUnknown(t *testing.T) {
	s := NewFixStore()
	for k, v := range s.Snapshot().Fields() {
		if v != nmea.Unknown {
			t.Fatalf("%s = %q, want %q", k, v, nmea.Unknown)
		}
	}
	if n := len(s.Snapshot().Fields()); n != 8 {
		t.Fatalf("expected 8 fields, got %d", n)
	}
}

func TestFixStore_UpdateOnlyTouchesNamedFields(t *testing.T) {
	s := NewFixStore()
	s.Update(FixUpdate{Altitude: strp("545.4"), Satellites: strp("08")})
	s.Update(FixUpdate{Speed: strp("")})

	fix := s.Snapshot()
	if fix.Altitude != "545.4" || fix.Satellites != "08" {
		t.Fatalf("unexpected %+v", fix)
	}
	if fix.Speed != "" {
		t.Fatalf("empty speed must be stored as received, got %q", fix.Speed)
	}
	if fix.Time != nmea.Unknown || fix.Latitude != nmea.Unknown {
		t.Fatalf("unrelated fields changed: %+v", fix)
	}
}

func TestFixStore_SnapshotIsACopy(t *testing.T) {
	s := NewFixStore()
	s.Update(FixUpdate{Time: strp("16:35:19")})

	a := s.Snapshot()
	b := s.Snapshot()
	if a != b {
		t.Fatalf("two snapshots differ: %+v %+v", a, b)
	}

	a.Time = "changed"
	m := b.Fields()
	m["time"] = "changed"
	if s.Snapshot().Time != "16:35:19" {
		t.Fatalf("snapshot shares state with the store")
	}
}

func TestFixStore_ConcurrentSnapshotsSeeWholeUpdates(t *testing.T) {
	s := NewFixStore()
	pre := s.Snapshot()
	u := FixUpdate{
		Time:      strp("16:35:19"),
		Date:      strp("23:03:94"),
		Latitude:  strp("48°7.038′"),
		Longitude: strp("11°31.000′"),
		Speed:     strp("022.4"),
		Course:    strp("084.4"),
	}
	post := pre
	u.apply(&post)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if got := s.Snapshot(); got != pre && got != post {
					t.Errorf("torn snapshot %+v", got)
					return
				}
			}
		}()
	}
	s.Update(u)
	wg.Wait()
}
