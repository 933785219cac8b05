package auth

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"
)

// FailureDelay pads failed credential checks to a floor plus jitter so that
// "unknown email" and "wrong password" take about as long as each other.
type FailureDelay struct {
	base   time.Duration
	jitter time.Duration
	sleep  func(ctx context.Context, d time.Duration)
}

func NewFailureDelay(base, jitter time.Duration) *FailureDelay {
	return &FailureDelay{base: base, jitter: jitter, sleep: sleepContext}
}

// WaitFrom blocks until at least base+jitter has elapsed since start. A nil
// receiver never waits.
func (d *FailureDelay) WaitFrom(ctx context.Context, start time.Time) {
	if d == nil || d.base <= 0 {
		return
	}
	target := d.base + randomDuration(d.jitter)
	if remaining := target - time.Since(start); remaining > 0 {
		d.sleep(ctx, remaining)
	}
}

func randomDuration(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	return time.Duration(binary.BigEndian.Uint64(buf[:]) % uint64(max))
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
