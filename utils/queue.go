package utils

import (
	"sync"
)

type Item[T any] struct {
	Size uint64
	Data T
}

// Queue is an unbounded FIFO used as an ingestion buffer between network readers
// and a single consumer. Producers never block.
//
// Ring buffer layout inspired by Centrifugo, which in its turn inspired by
// http://blog.dubbelboer.com/2015/04/25/go-faster-queue.html (MIT)
type Queue[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	nodes   []Item[T]
	head    int
	tail    int
	cnt     int
	size    uint64
	closed  bool
	initCap int
}

// NewQueue returns a new queue with the initial capacity.
func NewQueue[T any](initialCapacity int) *Queue[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}

	q := &Queue[T]{
		initCap: initialCapacity,
		nodes:   make([]Item[T], initialCapacity),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Add puts an item to the back of the queue.
// Returns false (and drops the item) if the queue is closed.
func (q *Queue[T]) Add(i Item[T]) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	if q.cnt == len(q.nodes) {
		q.resize(q.cnt * 2)
	}

	q.nodes[q.tail] = i
	q.tail = (q.tail + 1) % len(q.nodes)
	q.size += i.Size
	q.cnt++
	q.cond.Signal()

	return true
}

// Close stops accepting new items. Items already queued stay available to Remove,
// so the consumer can process them to completion.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Closed returns true if the queue has been closed
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.closed
}

// Wait blocks until there is an item to remove.
// It returns false once the queue is closed and fully drained.
func (q *Queue[T]) Wait() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.cnt == 0 {
		if q.closed {
			return false
		}

		q.cond.Wait()
	}

	return true
}

// Remove takes an item from the front of the queue.
// The second value is false if the queue is empty.
func (q *Queue[T]) Remove() (Item[T], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cnt == 0 {
		return Item[T]{}, false
	}

	i := q.nodes[q.head]
	q.nodes[q.head] = Item[T]{}
	q.head = (q.head + 1) % len(q.nodes)
	q.cnt--
	q.size -= i.Size

	if n := len(q.nodes) / 2; n >= q.initCap && q.cnt <= n {
		q.resize(n)
	}

	return i, true
}

// Cap returns the capacity
func (q *Queue[T]) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return cap(q.nodes)
}

// Len returns the number of queued items
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.cnt
}

// Size returns the total size of queued items
func (q *Queue[T]) Size() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.size
}

func (q *Queue[T]) resize(n int) {
	nodes := make([]Item[T], n)

	if q.cnt > 0 {
		if q.head < q.tail {
			copy(nodes, q.nodes[q.head:q.tail])
		} else {
			copy(nodes, q.nodes[q.head:])
			copy(nodes[len(q.nodes)-q.head:], q.nodes[:q.tail])
		}
	}

	q.tail = q.cnt % n
	q.head = 0
	q.nodes = nodes
}
