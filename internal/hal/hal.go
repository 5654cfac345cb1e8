// Package hal abstracts the sensors and actuators of the plant-care rig.
// Decision code depends only on the interfaces here; the concrete types
// implement either real pin-level I/O or the in-memory simulations used in
// tests and on development machines.
package hal

import "time"

// Clock supplies monotonic milliseconds for cooldown and timeout arithmetic.
// Values wrap around; consumers must compare with unsigned subtraction.
type Clock interface {
	NowMs() uint32
}

type monotonicClock struct {
	start time.Time
}

// NewClock returns a Clock backed by the runtime's monotonic clock.
func NewClock() Clock {
	return &monotonicClock{start: time.Now()}
}

func (c *monotonicClock) NowMs() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// ElapsedMs returns now-since in milliseconds. Plain unsigned subtraction
// keeps the result correct across counter wraparound.
func ElapsedMs(now, since uint32) uint32 {
	return now - since
}
