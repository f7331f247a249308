// Package ratelimit provides request throttling for the dynamics harvester.
//
// The feed is walked one page at a time with a configurable pause between
// page requests; batch mode applies the same throttle between users. All
// limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	limiter := ratelimit.NewFixedInterval(time.Second)
//
//	for hasMore {
//	    fetchPage()
//	    limiter.Wait()
//	}
package ratelimit
