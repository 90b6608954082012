/*
	Copyright (c) 2022 R. van Twisk
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	exithelper.go: Signal a group of goroutines to stop and wait for them.
*/
package common

import (
	"sync"

	"github.com/tevino/abool/v2"
)

// ExitHelper is shared between a controller and the goroutines it starts.
// Goroutines register with Add/Done and watch C or IsExit; the controller calls
// Exit (or ExitWith) to stop them all. After Exit returns the helper is reset
// and can be used for the next batch of goroutines.
type ExitHelper struct {
	C chan struct{}
	w *sync.WaitGroup
	m sync.Mutex
	b *abool.AtomicBool
}

func NewExitHelper() *ExitHelper {
	return &ExitHelper{
		C: make(chan struct{}),
		w: new(sync.WaitGroup),
		b: abool.New(),
	}
}

func (a *ExitHelper) Add() {
	a.m.Lock()
	a.w.Add(1)
	a.m.Unlock()
}

func (a *ExitHelper) Done() {
	a.w.Done()
}

// Chan returns the channel that is closed on the next Exit.
// Goroutines should capture it once when they start, C is replaced on reset.
func (a *ExitHelper) Chan() <-chan struct{} {
	a.m.Lock()
	defer a.m.Unlock()
	return a.C
}

func (a *ExitHelper) IsExit() bool {
	return a.b.IsSet()
}

func (a *ExitHelper) Exit() {
	a.ExitWith(nil)
}

// ExitWith raises the exit flag, closes C, runs release (may be nil) and then
// waits for every registered goroutine. release runs after the flag is visible,
// so a goroutine that is woken up by it (for example by closing its reader)
// always sees IsExit() == true.
func (a *ExitHelper) ExitWith(release func()) {
	a.m.Lock()
	defer a.m.Unlock()
	a.b.Set()
	close(a.C)
	if release != nil {
		release()
	}
	a.w.Wait()
	a.C = make(chan struct{})
	a.w = new(sync.WaitGroup)
	a.b.UnSet()
}
