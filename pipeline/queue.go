// File: pipeline/queue.go
package pipeline

// DefaultQueueCapacity is the capacity used when none is configured.
const DefaultQueueCapacity = 20

// BoundedQueue is a fixed-capacity FIFO of integers. A push onto a full
// queue evicts the oldest item. A BoundedQueue is not safe for concurrent
// use; QueueActor owns one and serialises access to it.
type BoundedQueue struct {
	items []int
	head  int
	size  int
}

// NewBoundedQueue returns an empty queue holding at most capacity items.
func NewBoundedQueue(capacity int) *BoundedQueue {
	if capacity < 1 {
		panic("pipeline: queue capacity must be positive")
	}
	return &BoundedQueue{items: make([]int, capacity)}
}

// Push appends v. When the queue is full the head is evicted first and
// returned with evicted set to true.
func (q *BoundedQueue) Push(v int) (dropped int, evicted bool) {
	if q.IsFull() {
		dropped = q.items[q.head]
		q.items[q.head] = v
		q.head = (q.head + 1) % len(q.items)
		return dropped, true
	}
	q.items[(q.head+q.size)%len(q.items)] = v
	q.size++
	return 0, false
}

// Pop removes and returns the head. ok is false on an empty queue.
func (q *BoundedQueue) Pop() (v int, ok bool) {
	if q.IsEmpty() {
		return 0, false
	}
	v = q.items[q.head]
	q.items[q.head] = 0
	q.head = (q.head + 1) % len(q.items)
	q.size--
	return v, true
}

// Len returns the number of queued items.
func (q *BoundedQueue) Len() int { return q.size }

// Cap returns the fixed capacity.
func (q *BoundedQueue) Cap() int { return len(q.items) }

// IsEmpty reports whether a Pop would find nothing.
func (q *BoundedQueue) IsEmpty() bool { return q.size == 0 }

// IsFull reports whether the next Push evicts the head.
func (q *BoundedQueue) IsFull() bool { return q.size == len(q.items) }

// Snapshot returns a copy of the contents, head first.
func (q *BoundedQueue) Snapshot() []int {
	out := make([]int, q.size)
	for i := 0; i < q.size; i++ {
		out[i] = q.items[(q.head+i)%len(q.items)]
	}
	return out
}
