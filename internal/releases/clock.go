package releases

import "time"

// Clock abstracts wall-clock reads and blocking sleeps so polling logic can be
// tested without real delays.
type Clock interface {
	Now() time.Time
	Sleep(duration time.Duration)
}

// SystemClock implements Clock using the time package.
type SystemClock struct{}

// NewSystemClock constructs the default wall-clock implementation.
func NewSystemClock() SystemClock {
	return SystemClock{}
}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep blocks the calling goroutine for the supplied duration.
func (SystemClock) Sleep(duration time.Duration) {
	time.Sleep(duration)
}
