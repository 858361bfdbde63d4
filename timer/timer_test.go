package timer

import (
	"testing"
	"time"
)

func TestRepeating(t *testing.T) {
	ticks := make(chan struct{}, 8)
	stop := Repeating(50*time.Millisecond, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})
	time.Sleep(170 * time.Millisecond)
	stop()
	if len(ticks) < 2 {
		t.Errorf("expected Repeating to fire at least twice in 170ms, got %d", len(ticks))
	}
}

func TestRepeatingStopsFiring(t *testing.T) {
	var ticks int
	stop := Repeating(30*time.Millisecond, func() {
		ticks++
	})
	time.Sleep(100 * time.Millisecond)
	stop()
	seenAtStop := ticks
	time.Sleep(100 * time.Millisecond)
	if ticks != seenAtStop {
		t.Errorf("expected no further ticks after stop, got %d more", ticks-seenAtStop)
	}
}
