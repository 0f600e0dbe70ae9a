package scheduler

import (
	"container/heap"
	"time"
)

type timer struct {
	due time.Time
	seq uint64
	fn  func()
}

// timerQueue is a min-heap ordered by due time, then by scheduling order.
type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q timerQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *timerQueue) Push(x any) { *q = append(*q, x.(*timer)) }

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

func (q *timerQueue) push(t *timer) { heap.Push(q, t) }

func (q *timerQueue) peek() (*timer, bool) {
	if len(*q) == 0 {
		return nil, false
	}
	return (*q)[0], true
}

func (q *timerQueue) pop() *timer { return heap.Pop(q).(*timer) }
