package gps

import "time"

type EventKind int

const (
	EventLine   EventKind = iota // Text is a raw sentence as received
	EventStatus                  // Text describes a connection state change or fault
)

func (k EventKind) String() string {
	if k == EventLine {
		return "line"
	}
	return "status"
}

/**
Message sent by a Worker to its subscribers
*/
type Event struct {
	Kind EventKind
	Text string
	Time time.Time
}
