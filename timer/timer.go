// Package timer provides the periodic scheduling primitive the
// transport loop uses to flush its per-type message counters.
package timer

import "time"

// Repeating calls f every interval until the returned stop function is
// called. It is used by the transport loop to periodically flush
// per-type message counters to the logger without coupling the
// dispatcher to wall-clock time.
func Repeating(interval time.Duration, f func()) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				f()
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}
