/*
	Copyright (c) 2022 R. van Twisk
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	watchdog.go: Timer that fires once when it has not been poked for a while.
*/
package common

import (
	"sync/atomic"
	"time"
)

type WatchDog struct {
	t  *time.Timer
	d  time.Duration
	i  uint32 // armed: set by Poke, cleared by Stop
	tr uint32
	C  chan struct{}
}

// NewWatchDog creates a disarmed watchdog. It only starts counting after the first Poke.
func NewWatchDog(wdTime time.Duration) *WatchDog {
	wd := &WatchDog{
		d: wdTime,
		C: make(chan struct{}, 1),
	}

	wd.t = time.AfterFunc(wdTime, func() {
		if atomic.LoadUint32(&wd.i) != 0 {
			atomic.StoreUint32(&wd.tr, 1)
			select {
			case wd.C <- struct{}{}:
			default:
			}
		}
	})
	wd.t.Stop()

	return wd
}

func (w *WatchDog) Timeout() time.Duration {
	return w.d
}

func (w *WatchDog) IsTriggered() bool {
	return atomic.LoadUint32(&w.tr) != 0
}

// Poke re-arms the watchdog for another full period.
func (w *WatchDog) Poke() {
	atomic.StoreUint32(&w.i, 0)
	w.t.Stop()
	atomic.StoreUint32(&w.tr, 0)
	w.t.Reset(w.d)
	atomic.StoreUint32(&w.i, 1)
}

// Stop disarms the watchdog without triggering.
func (w *WatchDog) Stop() {
	atomic.StoreUint32(&w.i, 0)
	w.t.Stop()
}
