package main

import (
	"time"

	humanize "github.com/dustin/go-humanize"
)

// monotonic timestamps everything in the acquisition path. time.Time
// carries a monotonic clock reading since Go 1.9, so Since is immune to
// wall-clock steps from NTP or a flaky RTC.
type monotonic struct {
	start time.Time
}

func NewMonotonic() *monotonic {
	return &monotonic{start: time.Now()}
}

// Milliseconds since process start.
func (m *monotonic) Milliseconds() uint64 {
	return uint64(time.Since(m.start) / time.Millisecond)
}

func (m *monotonic) Uptime() string {
	return humanize.RelTime(m.start, time.Now(), "", "")
}
