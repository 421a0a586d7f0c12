package timing

import "time"

// Limiter paces emulated frames against wall time.
type Limiter interface {
	// WaitForNextFrame blocks until the next frame is due. It returns
	// immediately when emulation is behind schedule.
	WaitForNextFrame()

	// Reset restarts the schedule, used after a pause.
	Reset()
}

// NewNoOpLimiter returns a limiter that never waits, for headless runs.
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// The COSMAC VIP clock. Its 1861 frame is what every CHIP-8 timer and
// display refresh is paced on.
const (
	ClockFrequency = 1760640
	ClocksPerCycle = 8
	CyclesPerFrame = 3668
)

// TargetFPS is the VIP frame rate, 60 Hz.
func TargetFPS() float64 {
	return float64(ClockFrequency) / ClocksPerCycle / CyclesPerFrame
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}
