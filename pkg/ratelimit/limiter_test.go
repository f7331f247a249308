package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedIntervalAllow(t *testing.T) {
	t.Run("first request is always allowed", func(t *testing.T) {
		limiter := NewFixedInterval(time.Hour)
		assert.True(t, limiter.Allow())
	})

	t.Run("second request inside the interval is denied", func(t *testing.T) {
		limiter := NewFixedInterval(time.Hour)
		assert.True(t, limiter.Allow())
		assert.False(t, limiter.Allow())
	})

	t.Run("zero interval never throttles", func(t *testing.T) {
		limiter := NewFixedInterval(0)
		for i := 0; i < 5; i++ {
			assert.True(t, limiter.Allow())
		}
	})
}

func TestFixedIntervalWait(t *testing.T) {
	t.Run("first wait does not block", func(t *testing.T) {
		limiter := NewFixedInterval(time.Hour)

		start := time.Now()
		limiter.Wait()
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("second wait enforces the interval", func(t *testing.T) {
		interval := 50 * time.Millisecond
		limiter := NewFixedInterval(interval)

		start := time.Now()
		limiter.Wait()
		limiter.Wait()
		assert.GreaterOrEqual(t, time.Since(start), interval)
	})

	t.Run("zero interval waits return immediately", func(t *testing.T) {
		limiter := NewFixedInterval(0)

		start := time.Now()
		for i := 0; i < 10; i++ {
			limiter.Wait()
		}
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestFixedIntervalReset(t *testing.T) {
	limiter := NewFixedInterval(time.Hour)
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())

	limiter.Reset()
	assert.True(t, limiter.Allow())
}
