// Package worker implements the module's thread primitives: real-time
// scheduling attribute construction for reader goroutines and cooperative,
// bounded-retry shutdown in place of forced cancellation.
package worker

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// MaxFIFOPriority is the ceiling priority this module assigns; a worker's
// actual priority is MaxFIFOPriority - requested, so requested=0 is the
// highest-priority reader.
const MaxFIFOPriority = 30

// Worker is one cooperatively-shut-down goroutine: a per-thread continue
// flag the main goroutine clears, and a done channel the worker closes on
// return so Join can wait on it with a retry bound.
type Worker struct {
	name     string
	running  atomic.Bool
	done     chan struct{}
	priority int
}

// Spawn starts fn in a new goroutine locked to its own OS thread at FIFO
// scheduling priority MaxFIFOPriority-requested, and returns a handle used
// to request and await its shutdown. fn must observe (*Worker).Continue()
// between poll iterations and return promptly once it is false.
func Spawn(name string, requested int, fn func(w *Worker)) *Worker {
	w := &Worker{
		name:     name,
		done:     make(chan struct{}),
		priority: MaxFIFOPriority - requested,
	}
	w.running.Store(true)

	go func() {
		defer close(w.done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		if err := setFIFOPriority(w.priority); err != nil {
			// Non-fatal: falling back to the default scheduling class
			// still produces correct results, just without the
			// real-time guarantee.
			_ = err
		}
		fn(w)
	}()
	return w
}

// Continue reports whether the worker should keep polling. Workers call
// this at the top of each loop iteration.
func (w *Worker) Continue() bool {
	return w.running.Load()
}

// Stop clears the continue flag; it does not block for the worker to
// observe it. Use Join to wait for actual termination.
func (w *Worker) Stop() {
	w.running.Store(false)
}

// Join waits for the worker to return, retrying up to retries times
// spaced by period. It returns an error if the worker never finished.
func (w *Worker) Join(retries int, period time.Duration) error {
	for i := 0; i < retries; i++ {
		select {
		case <-w.done:
			return nil
		case <-time.After(period):
		}
	}
	select {
	case <-w.done:
		return nil
	default:
		return fmt.Errorf("worker %q: did not terminate after %d retries", w.name, retries)
	}
}

func setFIFOPriority(priority int) error {
	if priority < 1 {
		priority = 1
	}
	if priority > 99 {
		priority = 99
	}
	param := &unix.SchedParam{Priority: int32(priority)}
	return unix.SchedSetscheduler(0, unix.SCHED_FIFO, param)
}
