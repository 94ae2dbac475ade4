// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// resolution is the scheduler wake-up cadence. Tick delivery is accurate to
// within one resolution interval.
const resolution = 100 * time.Millisecond

// countdown is one scheduled round clock. remaining counts whole seconds
// still to announce; after the 1-second announcement the next fire expires
// the countdown.
type countdown struct {
	id        int64
	fireAt    time.Time
	remaining int
	onTick    func(remaining int)
	onExpire  func()
	index     int
}

type countdownQueue []*countdown

func (q countdownQueue) Len() int { return len(q) }

func (q countdownQueue) Less(i, j int) bool {
	return q[i].fireAt.Before(q[j].fireAt)
}

func (q countdownQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *countdownQueue) Push(x interface{}) {
	n := len(*q)
	c := x.(*countdown)
	c.index = n
	*q = append(*q, c)
}

func (q *countdownQueue) Pop() interface{} {
	old := *q
	n := len(old)
	c := old[n-1]
	c.index = -1
	*q = old[0 : n-1]
	return c
}

// Manager schedules per-room round countdowns on a single goroutine.
// Callbacks run outside the manager lock, so they may take room locks and
// may call Cancel/Start themselves.
type Manager struct {
	queue  countdownQueue
	mutex  sync.Mutex
	nextID int64
	stop   chan struct{}
	once   sync.Once
}

func NewManager() *Manager {
	m := &Manager{
		queue:  make(countdownQueue, 0),
		nextID: 1,
		stop:   make(chan struct{}),
	}
	heap.Init(&m.queue)
	go m.process()
	return m
}

// Start schedules a countdown of the given number of seconds. onTick fires
// once per second with the remaining time, starting immediately with the
// full value; onExpire fires one second after onTick(1).
func (m *Manager) Start(seconds int, onTick func(remaining int), onExpire func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	c := &countdown{
		id:        m.nextID,
		fireAt:    time.Now(),
		remaining: seconds,
		onTick:    onTick,
		onExpire:  onExpire,
	}
	m.nextID++

	heap.Push(&m.queue, c)
	return c.id
}

// Cancel removes a countdown. Safe to call for an id that already expired.
func (m *Manager) Cancel(id int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, c := range m.queue {
		if c.id == id {
			heap.Remove(&m.queue, i)
			break
		}
	}
}

// Stop terminates the scheduler goroutine. Pending countdowns never fire.
func (m *Manager) Stop() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Manager) process() {
	ticker := time.NewTicker(resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.fireDue(time.Now())
		case <-m.stop:
			return
		}
	}
}

// fireDue pops every due countdown, reschedules the still-running ones and
// then invokes callbacks with the manager unlocked.
func (m *Manager) fireDue(now time.Time) {
	type firing struct {
		tick     int
		onTick   func(int)
		onExpire func()
	}
	var due []firing

	m.mutex.Lock()
	for m.queue.Len() > 0 {
		c := m.queue[0]
		if c.fireAt.After(now) {
			break
		}
		heap.Pop(&m.queue)

		if c.remaining > 0 {
			due = append(due, firing{tick: c.remaining, onTick: c.onTick})
			c.remaining--
			c.fireAt = now.Add(time.Second)
			heap.Push(&m.queue, c)
		} else {
			due = append(due, firing{onExpire: c.onExpire})
		}
	}
	m.mutex.Unlock()

	for _, f := range due {
		if f.onExpire != nil {
			f.onExpire()
		} else if f.onTick != nil {
			f.onTick(f.tick)
		}
	}
}
