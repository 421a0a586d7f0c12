package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRate(t *testing.T) {
	assert.InDelta(t, 60.0, TargetFPS(), 0.001)
	assert.InDelta(t, float64(time.Second/60), float64(FrameDuration()), float64(10*time.Microsecond))
}

func TestNoOpLimiterNeverBlocks(t *testing.T) {
	l := NewNoOpLimiter()
	start := time.Now()
	for i := 0; i < 1000; i++ {
		l.WaitForNextFrame()
	}
	l.Reset()
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestAdaptiveLimiterPaces(t *testing.T) {
	l := NewAdaptiveLimiter()
	start := time.Now()
	for i := 0; i < 4; i++ {
		l.WaitForNextFrame()
	}
	// the first frame is due immediately
	assert.GreaterOrEqual(t, time.Since(start), 3*FrameDuration())
}

func TestParseLimiter(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"", true},
		{"adaptive", true},
		{"ticker", true},
		{"none", true},
		{"vsync", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := ParseLimiter(tt.name)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			require.NotNil(t, l)
			if ticker, isTicker := l.(*TickerLimiter); isTicker {
				ticker.Stop()
			}
		})
	}
}
