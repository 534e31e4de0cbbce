package pipeline

import (
	"os"
	"os/signal"
	"sync/atomic"
)

// WithSignalAbort registers a SIGINT handler and returns an Abort
// function plus a stop func to unregister it once the run completes,
// per spec.md §5's "A SIGINT handler sets an abort flag observed by
// the reader loop." Grounded on the teacher's own signal.Notify usage
// in clientserver/client.go (there for SIGWINCH; here for SIGINT).
func WithSignalAbort() (abort func() bool, stop func()) {
	var flag int32
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			atomic.StoreInt32(&flag, 1)
		case <-done:
		}
	}()

	abort = func() bool { return atomic.LoadInt32(&flag) != 0 }
	stop = func() {
		signal.Stop(sigCh)
		close(done)
	}
	return abort, stop
}
