package scheduler

import (
	"container/heap"
	"time"
)

// task is a pending poll of one block.
type task struct {
	id    string
	due   time.Time
	seq   uint64
	index int
}

// taskQueue is a min-heap on due time; ties go to the earlier scheduled task.
type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	item := x.(*task)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// peek returns the earliest task without removing it.
func (q taskQueue) peek() (*task, bool) {
	if len(q) == 0 {
		return nil, false
	}
	return q[0], true
}

// popDue removes and returns every task due at or before now, earliest first.
func (q *taskQueue) popDue(now time.Time) []*task {
	var due []*task
	for {
		next, ok := q.peek()
		if !ok || next.due.After(now) {
			return due
		}
		due = append(due, heap.Pop(q).(*task))
	}
}
