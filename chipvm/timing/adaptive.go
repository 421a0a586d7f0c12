package timing

import (
	"log/slog"
	"time"
)

const (
	// spinWindow is the tail of each frame spent busy-waiting, which
	// absorbs the scheduler's sleep granularity.
	spinWindow = time.Millisecond
	// maxLag is how far behind schedule a frame may start before the
	// schedule is dropped instead of caught up.
	maxLag = 5 * time.Millisecond
	// driftCheckFrames is how often accumulated drift is measured.
	driftCheckFrames = 60
	maxDrift         = 10 * time.Millisecond
)

// AdaptiveLimiter paces frames on an absolute schedule so rounding errors do
// not accumulate. It sleeps for most of a frame and spins the rest.
type AdaptiveLimiter struct {
	period time.Duration
	due    time.Time
	frames int64
	now    func() time.Time
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	a := &AdaptiveLimiter{period: FrameDuration(), now: time.Now}
	a.Reset()
	return a
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	switch wait := a.due.Sub(a.now()); {
	case wait > 0:
		a.sleepUntilDue(wait)
	case wait < -maxLag:
		slog.Debug("Frame schedule dropped", "behind_ms", (-wait).Milliseconds())
		a.due = a.now()
	}

	a.due = a.due.Add(a.period)
	a.frames++
	if a.frames%driftCheckFrames == 0 {
		a.correctDrift()
	}
}

func (a *AdaptiveLimiter) sleepUntilDue(wait time.Duration) {
	if wait > 2*spinWindow {
		time.Sleep(wait - spinWindow)
	}
	for a.now().Before(a.due) {
	}
}

// correctDrift pulls the schedule a tenth of the way toward wall time when
// the two have separated.
func (a *AdaptiveLimiter) correctDrift() {
	drift := a.now().Sub(a.due)
	if drift.Abs() <= maxDrift {
		return
	}
	a.due = a.due.Add(drift / 10)
	slog.Debug("Frame timing drift correction", "drift_ms", drift.Milliseconds(), "frames", a.frames)
}

func (a *AdaptiveLimiter) Reset() {
	a.due = a.now()
	a.frames = 0
}
