package utils

import (
	"context"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Sleep pauses for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Jitter returns base plus a random duration in [0, spread)
func Jitter(base, spread time.Duration) time.Duration {
	if spread <= 0 {
		return base
	}
	return base + time.Duration(rand.Int63n(int64(spread)))
}

// RandomDelay pauses execution for a random time between min and max
func RandomDelay(ctx context.Context, min, max time.Duration) error {
	if min >= max {
		return Sleep(ctx, min)
	}
	return Sleep(ctx, Jitter(min, max-min))
}

// MouseJiggle simulates random mouse movements
func MouseJiggle(ctx context.Context, page playwright.Page) {
	//random position in viewport (100-900, 100-700)
	x := float64(rand.Intn(800) + 100)
	y := float64(rand.Intn(600) + 100)

	page.Mouse().Move(x, y)
	RandomDelay(ctx, 100*time.Millisecond, 300*time.Millisecond)
}

// SmoothScroll simulates human scrolling behavior
func SmoothScroll(ctx context.Context, page playwright.Page) {
	page.Mouse().Wheel(0, 500)
	RandomDelay(ctx, 500*time.Millisecond, time.Second)

	// human-like correction
	page.Mouse().Wheel(0, -200)
	RandomDelay(ctx, 300*time.Millisecond, 600*time.Millisecond)
}
