package schedule

import (
	"container/heap"
	"sync"
	"time"
)

// item is a scheduled callback ordered by due time, then by scheduling order
type item struct {
	at      time.Time
	seq     int64
	fn      func()
	index   int // maintained by the heap.Interface methods
	stopped bool
	fired   bool
}

// queue implements heap.Interface
type queue []*item

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *queue) Push(x interface{}) {
	it := x.(*item)
	it.index = len(*q)
	*q = append(*q, it)
}

func (q *queue) Pop() interface{} {
	old := *q
	n := len(old)
	it := old[n-1]
	it.index = -1 // for safety
	*q = old[:n-1]
	return it
}

// Virtual is a deterministic Scheduler driven by explicit clock advances.
// Callbacks due at the same instant run in the order they were scheduled.
type Virtual struct {
	mu    sync.Mutex
	now   time.Time
	queue queue
	seq   int64
}

// NewVirtual creates a virtual scheduler whose clock starts at start
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

// After schedules fn at Now()+d. A zero delay still waits for the next Advance or Flush.
func (v *Virtual) After(d time.Duration, fn func()) Timer {
	v.mu.Lock()
	defer v.mu.Unlock()

	if d < 0 {
		d = 0
	}
	v.seq++
	it := &item{at: v.now.Add(d), seq: v.seq, fn: fn}
	heap.Push(&v.queue, it)
	return &virtualTimer{v: v, it: it}
}

// Now returns the virtual clock
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// Pending returns the number of callbacks still waiting
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.queue.Len()
}

// Advance moves the clock forward by d, running every callback that falls due,
// including ones scheduled by callbacks along the way
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now.Add(d)
	v.mu.Unlock()

	for v.runNext(target) {
	}

	v.mu.Lock()
	if v.now.Before(target) {
		v.now = target
	}
	v.mu.Unlock()
}

// Flush runs callbacks until none remain, advancing the clock to each due time
func (v *Virtual) Flush() {
	for {
		v.mu.Lock()
		if v.queue.Len() == 0 {
			v.mu.Unlock()
			return
		}
		next := v.queue[0].at
		v.mu.Unlock()

		v.runNext(next)
	}
}

// runNext pops and runs the earliest callback due at or before limit.
// The callback runs without the lock held so it may schedule more work.
func (v *Virtual) runNext(limit time.Time) bool {
	v.mu.Lock()
	if v.queue.Len() == 0 || v.queue[0].at.After(limit) {
		v.mu.Unlock()
		return false
	}
	it := heap.Pop(&v.queue).(*item)
	if it.at.After(v.now) {
		v.now = it.at
	}
	it.fired = true
	v.mu.Unlock()

	it.fn()
	return true
}

type virtualTimer struct {
	v  *Virtual
	it *item
}

func (t *virtualTimer) Stop() bool {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()

	if t.it.fired || t.it.stopped {
		return false
	}
	t.it.stopped = true
	heap.Remove(&t.v.queue, t.it.index)
	return true
}
