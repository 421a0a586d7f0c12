package timing

import "time"

// TickerLimiter paces frames off a time.Ticker. Coarser than
// AdaptiveLimiter, with no busy-waiting.
type TickerLimiter struct {
	ticker *time.Ticker
}

func NewTickerLimiter() *TickerLimiter {
	return &TickerLimiter{ticker: time.NewTicker(FrameDuration())}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ticker.C
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(FrameDuration())
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}

// ParseLimiter selects a limiter by name: "adaptive", "ticker" or "none".
func ParseLimiter(name string) (Limiter, bool) {
	switch name {
	case "", "adaptive":
		return NewAdaptiveLimiter(), true
	case "ticker":
		return NewTickerLimiter(), true
	case "none":
		return NewNoOpLimiter(), true
	}
	return nil, false
}
