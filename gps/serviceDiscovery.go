/*
	Copyright (c) 2022 R. van Twisk
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	serviceDiscovery.go: Fan out of worker events to any number of subscribers.
*/
package gps

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

const DEFAULT_SUBSCRIBER_BUFFER = 64

type subscriber struct {
	C      chan Event
	mu     sync.Mutex
	closed bool
}

// send never blocks, a subscriber that does not keep up loses events.
func (s *subscriber) send(e Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.C <- e:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.C)
	}
}

type eventHub struct {
	DEBUG       bool
	subscribers cmap.ConcurrentMap[string, *subscriber]
	nextID      uint64
}

func newEventHub(debug bool) *eventHub {
	return &eventHub{
		DEBUG:       debug,
		subscribers: cmap.New[*subscriber](),
	}
}

// Subscribe returns a channel receiving all future events and a function that
// unsubscribes and closes the channel.
func (h *eventHub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DEFAULT_SUBSCRIBER_BUFFER
	}
	id := strconv.FormatUint(atomic.AddUint64(&h.nextID, 1), 10)
	s := &subscriber{C: make(chan Event, buffer)}
	h.subscribers.Set(id, s)

	return s.C, func() {
		if s, ok := h.subscribers.Pop(id); ok {
			s.close()
		}
	}
}

func (h *eventHub) publish(kind EventKind, text string) {
	e := Event{Kind: kind, Text: text, Time: time.Now()}
	for entry := range h.subscribers.IterBuffered() {
		if !entry.Val.send(e) {
			eventsDroppedTotal.Inc()
			if h.DEBUG {
				log.Printf("subscriber %s full, dropped %s event\n", entry.Key, kind)
			}
		}
	}
}

func (h *eventHub) status(text string) {
	if h.DEBUG {
		log.Printf("status: %s\n", text)
	}
	h.publish(EventStatus, text)
}

func (h *eventHub) line(text string) {
	h.publish(EventLine, text)
}
