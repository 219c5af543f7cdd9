package scheduler

import (
	"time"

	"github.com/wricardo/mcp-training/memorycard/game/engine"
)

// Manual is a virtual clock. Nothing fires until Advance is called.
type Manual struct {
	now   time.Duration
	next  engine.CancelToken
	tasks map[engine.CancelToken]*manualTask
}

type manualTask struct {
	due    time.Duration
	period time.Duration
	fn     func()
}

// NewManual creates a virtual clock at time zero
func NewManual() *Manual {
	return &Manual{tasks: make(map[engine.CancelToken]*manualTask)}
}

// After schedules fn at now+d
func (m *Manual) After(d time.Duration, fn func()) engine.CancelToken {
	m.next++
	m.tasks[m.next] = &manualTask{due: m.now + d, fn: fn}
	return m.next
}

// Every schedules fn at every multiple of d from now
func (m *Manual) Every(d time.Duration, fn func()) engine.CancelToken {
	if d <= 0 {
		d = time.Nanosecond
	}
	m.next++
	m.tasks[m.next] = &manualTask{due: m.now + d, period: d, fn: fn}
	return m.next
}

// Cancel drops the task behind token
func (m *Manual) Cancel(token engine.CancelToken) {
	delete(m.tasks, token)
}

// Advance moves the clock forward by d, firing due callbacks in time order.
// Callbacks due at the same instant fire in scheduling order.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		token, task := m.nextDue(target)
		if task == nil {
			break
		}
		m.now = task.due
		if task.period > 0 {
			task.due += task.period
		} else {
			delete(m.tasks, token)
		}
		task.fn()
	}
	m.now = target
}

// Now returns the virtual time elapsed since creation
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending returns the number of scheduled tasks
func (m *Manual) Pending() int {
	return len(m.tasks)
}

func (m *Manual) nextDue(target time.Duration) (engine.CancelToken, *manualTask) {
	var (
		bestToken engine.CancelToken
		best      *manualTask
	)
	for token, task := range m.tasks {
		if task.due > target {
			continue
		}
		if best == nil || task.due < best.due || (task.due == best.due && token < bestToken) {
			bestToken, best = token, task
		}
	}
	return bestToken, best
}
