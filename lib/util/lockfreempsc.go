package util

import (
	"runtime"
	"sync/atomic"
)

// node represents a single element in the queue
type node[T interface{}] struct {
	value *T
	next  atomic.Pointer[node[T]]
}

// LockFreeMPSC is a lock-free multi-producer single-consumer queue.
// Implementation uses a linked list of nodes with atomic operations
// for concurrent push operations without locks.
//
// Ordering: items pushed by one goroutine are popped in the order they were pushed.
// Under concurrent Push() operations the relative order of items from different
// producers is determined by which producer completes its append first.
type LockFreeMPSC[T interface{}] struct {
	head   atomic.Pointer[node[T]] // only touched by the consumer
	tail   atomic.Pointer[node[T]]
	size   atomic.Int64
	closed atomic.Bool
}

// NewLockFreeMPSC creates a new lock-free multi-producer single-consumer queue
func NewLockFreeMPSC[T interface{}]() *LockFreeMPSC[T] {
	// Create a sentinel node (dummy node at the beginning)
	sentinel := &node[T]{}

	q := &LockFreeMPSC[T]{}

	// Set the initial head and tail to the sentinel node
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	return q
}

// Push adds an item to the queue.
// Returns true if the item was added, or false if the queue is closed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *LockFreeMPSC[T]) Push(value *T) bool {

	if value == nil {
		return false
	}

	if q.closed.Load() {
		return false
	}

	newNode := &node[T]{value: value}

	var tailNode *node[T]
	var backoff uint8 = 0

	for {
		tailNode = q.tail.Load()

		// try to atomically append our node to the current tail
		next := tailNode.next.Load()
		if next == nil {
			// the tail has no next node yet, try to append our node
			if tailNode.next.CompareAndSwap(nil, newNode) {
				/*
				 Successfully appended, now try to update tail
				 Note: CAS may fail if another producer helps update tail,
				 but that's okay - tail will still be updated eventually
				*/
				q.tail.CompareAndSwap(tailNode, newNode)
				q.size.Add(1)
				return true
			}
		} else {
			// help update the tail pointer if another producer has already appended a node but hasn't updated the tail yet
			q.tail.CompareAndSwap(tailNode, next)
		}

		/*
		 Exponential backoff to handle contention
		  - At low contention (<10 retries): spin with Gosched to avoid thread scheduling overhead
		  - At higher contention: yield once per retry
		*/
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// TryPop removes the oldest item from the queue without blocking.
// It returns false if the queue is currently empty.
//
// Thread-safety: Only a single consumer goroutine may call TryPop and Drain.
func (q *LockFreeMPSC[T]) TryPop() (*T, bool) {
	head := q.head.Load()
	next := head.next.Load()
	if next == nil {
		return nil, false
	}

	// Capture value before moving the head, the old head becomes garbage
	value := next.value
	q.head.Store(next)

	// help go gc - the new head is the sentinel now
	next.value = nil
	q.size.Add(-1)

	return value, true
}

// Drain pops every item that is visible at the time of the call and passes it to fn
// in queue order. It returns the number of drained items.
//
// Thread-safety: Only a single consumer goroutine may call TryPop and Drain.
func (q *LockFreeMPSC[T]) Drain(fn func(*T)) int {
	n := 0
	for {
		value, ok := q.TryPop()
		if !ok {
			return n
		}
		fn(value)
		n++
	}
}

// Close closes the queue, preventing further writes.
// Any items already in the queue can still be popped by the consumer.
func (q *LockFreeMPSC[T]) Close() {
	q.closed.Store(true)
}

// IsClosed returns true if the queue is closed.
func (q *LockFreeMPSC[T]) IsClosed() bool {
	return q.closed.Load()
}

// IsEmpty reports whether the consumer would currently find no item.
func (q *LockFreeMPSC[T]) IsEmpty() bool {
	return q.head.Load().next.Load() == nil
}

// Len returns an approximate count of the number of items in the queue.
func (q *LockFreeMPSC[T]) Len() int {
	n := q.size.Load()
	if n < 0 {
		// a push linked its node but did not count it yet
		return 0
	}
	return int(n)
}
