// Package scheduler provides implementations of engine.Scheduler.
//
// Clock runs callbacks on real timers. Every callback first takes the
// sync.Locker handed to NewClock, so timer-driven ticks and hides are
// serialized with the requests that drive the same engine. Cancellation is
// checked under that lock: a callback cancelled while it was waiting for the
// lock never runs.
//
// Manual keeps a virtual clock that only moves when Advance is called. It
// fires due callbacks in order on the calling goroutine and is meant for
// tests and simulations.
//
// Usage:
//
//	var mu sync.Mutex
//	clock := scheduler.NewClock(&mu)
//	defer clock.Stop()
//
//	mu.Lock()
//	eng, err := engine.New(config, clock)
//	mu.Unlock()
package scheduler
