package scheduler

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/wricardo/mcp-training/memorycard/game/engine"
)

// Clock schedules callbacks on wall-clock timers
type Clock struct {
	lock sync.Locker

	mu      sync.Mutex
	next    engine.CancelToken
	entries map[engine.CancelToken]*entry
}

type entry struct {
	timer     *time.Timer
	ticker    *time.Ticker
	done      chan struct{}
	stopOnce  sync.Once
	cancelled atomic.Bool
}

func (e *entry) stop() {
	e.cancelled.Store(true)
	e.stopOnce.Do(func() {
		if e.timer != nil {
			e.timer.Stop()
		}
		if e.ticker != nil {
			e.ticker.Stop()
			close(e.done)
		}
	})
}

// NewClock creates a clock whose callbacks run while holding lock.
// A nil lock gets a private mutex.
func NewClock(lock sync.Locker) *Clock {
	if lock == nil {
		lock = &sync.Mutex{}
	}
	return &Clock{
		lock:    lock,
		entries: make(map[engine.CancelToken]*entry),
	}
}

// After runs fn once after d
func (c *Clock) After(d time.Duration, fn func()) engine.CancelToken {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next++
	token := c.next
	e := &entry{}
	c.entries[token] = e
	e.timer = time.AfterFunc(d, func() {
		c.run(token, e, fn, true)
	})
	return token
}

// Every runs fn every d until cancelled
func (c *Clock) Every(d time.Duration, fn func()) engine.CancelToken {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next++
	token := c.next
	e := &entry{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	c.entries[token] = e

	go func() {
		for {
			select {
			case <-e.ticker.C:
				c.run(token, e, fn, false)
			case <-e.done:
				return
			}
		}
	}()
	return token
}

// Cancel stops the callback behind token
func (c *Clock) Cancel(token engine.CancelToken) {
	c.mu.Lock()
	e, ok := c.entries[token]
	delete(c.entries, token)
	c.mu.Unlock()

	if ok {
		e.stop()
	}
}

// Stop cancels every pending callback
func (c *Clock) Stop() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[engine.CancelToken]*entry)
	c.mu.Unlock()

	for _, e := range entries {
		e.stop()
	}
}

// Pending returns the number of live callbacks
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Clock) run(token engine.CancelToken, e *entry, fn func(), once bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if e.cancelled.Load() {
		return
	}
	if once {
		c.mu.Lock()
		delete(c.entries, token)
		c.mu.Unlock()
		e.cancelled.Store(true)
	}
	fn()
}
