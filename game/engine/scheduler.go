package engine

import "time"

// CancelToken identifies a scheduled callback. The zero token is never issued.
type CancelToken uint64

// Scheduler runs callbacks later. Implementations must deliver callbacks
// serialized with every other call into the engine that owns them.
type Scheduler interface {
	// After runs fn once after d.
	After(d time.Duration, fn func()) CancelToken
	// Every runs fn each time d elapses until cancelled.
	Every(d time.Duration, fn func()) CancelToken
	// Cancel stops a pending callback. Unknown or fired tokens are ignored.
	Cancel(token CancelToken)
}

// nopScheduler never fires. An engine built on it is driven entirely by
// explicit Tick and OnMismatchTimeout calls.
type nopScheduler struct {
	next CancelToken
}

func (s *nopScheduler) After(time.Duration, func()) CancelToken {
	s.next++
	return s.next
}

func (s *nopScheduler) Every(time.Duration, func()) CancelToken {
	s.next++
	return s.next
}

func (s *nopScheduler) Cancel(CancelToken) {}
