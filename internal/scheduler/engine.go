package scheduler

import (
	"container/heap"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

var ErrInvalidFireTime = errors.New("scheduler: invalid fire time")

// Trigger is one scheduled local notification request. Scheduling a trigger
// with an existing ID replaces it.
type Trigger struct {
	ID      string
	FireAt  time.Time
	Repeats bool
	Title   string
	Body    string
}

type queueItem struct {
	id     string
	fireAt time.Time
}

type triggerQueue []queueItem

func (q triggerQueue) Len() int { return len(q) }

func (q triggerQueue) Less(i, j int) bool {
	return q[i].fireAt.Before(q[j].fireAt)
}

func (q triggerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *triggerQueue) Push(x any) {
	*q = append(*q, x.(queueItem))
}

func (q *triggerQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}

// Engine fires triggers at their scheduled time. Cancellation is lazy: the
// heap keeps stale entries and the live set in items decides what fires.
type Engine struct {
	mu      sync.Mutex
	items   map[string]Trigger
	queue   triggerQueue
	out     chan Trigger
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		items:  make(map[string]Trigger),
		queue:  make(triggerQueue, 0),
		out:    make(chan Trigger, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (e *Engine) C() <-chan Trigger {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Schedule registers tr, replacing any pending trigger with the same ID.
func (e *Engine) Schedule(tr Trigger) error {
	if tr.FireAt.IsZero() {
		return ErrInvalidFireTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return errors.New("scheduler: engine stopped")
	}

	e.items[tr.ID] = tr
	heap.Push(&e.queue, queueItem{id: tr.ID, fireAt: tr.FireAt})
	e.signalWakeup()
	return nil
}

// Cancel removes the pending trigger with the given ID. Unknown IDs are a
// no-op.
func (e *Engine) Cancel(id string) {
	e.mu.Lock()
	delete(e.items, id)
	e.signalWakeup()
	e.mu.Unlock()
}

func (e *Engine) CancelAll() {
	e.mu.Lock()
	e.items = make(map[string]Trigger)
	e.signalWakeup()
	e.mu.Unlock()
}

// Pending returns the IDs of all live triggers, sorted for determinism.
func (e *Engine) Pending() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.items))
	for id := range e.items {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.FireAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now().UTC())
			for _, tr := range due {
				select {
				case e.out <- tr:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

// peek returns the earliest live trigger, discarding heap entries that were
// cancelled or superseded by a reschedule.
func (e *Engine) peek() (Trigger, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.queue) > 0 {
		head := e.queue[0]
		live, ok := e.items[head.id]
		if ok && live.FireAt.Equal(head.fireAt) {
			return live, true
		}
		heap.Pop(&e.queue)
	}
	return Trigger{}, false
}

func (e *Engine) popDue(now time.Time) []Trigger {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Trigger, 0)
	for len(e.queue) > 0 {
		head := e.queue[0]
		live, ok := e.items[head.id]
		if !ok || !live.FireAt.Equal(head.fireAt) {
			heap.Pop(&e.queue)
			continue
		}
		if live.FireAt.After(now) {
			break
		}
		heap.Pop(&e.queue)
		delete(e.items, head.id)
		out = append(out, live)

		if live.Repeats {
			next := live
			next.FireAt = live.FireAt.AddDate(0, 0, 1)
			e.items[next.ID] = next
			heap.Push(&e.queue, queueItem{id: next.ID, fireAt: next.FireAt})
		}
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
